package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/haivivi/kws/pkg/kws"
	"github.com/haivivi/kws/pkg/resultstore"
)

// Theme defines the color scheme for rendered reports.
type Theme struct {
	Primary lipgloss.Color // Detected keywords
	Dim     lipgloss.Color // Timestamps, empty windows and summaries
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title     lipgloss.Style
	Timestamp lipgloss.Style
	Label     lipgloss.Style
	None      lipgloss.Style
	Help      lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Timestamp: lipgloss.NewStyle().Foreground(t.Dim),
		Label:     lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		None:      lipgloss.NewStyle().Foreground(t.Dim),
		Help:      lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// PlainStyles returns styles that render text unchanged, for pipes and
// tests.
func PlainStyles() Styles {
	s := lipgloss.NewStyle()
	return Styles{Title: s, Timestamp: s, Label: s, None: s, Help: s}
}

// ResultLine renders one inference as "@<ts>s: <label> (<pct>%)" using its
// best candidate, or "<none>" when nothing cleared the threshold.
func ResultLine(r kws.Result, st Styles) string {
	label := st.None.Render("<none>")
	var pct int
	if len(r.Candidates) > 0 {
		label = st.Label.Render(r.Candidates[0].Label)
		pct = int(math.Round(float64(r.Candidates[0].Score) * 100))
	}
	return fmt.Sprintf("%s %s (%d%%)", st.Timestamp.Render(fmt.Sprintf("@%.2fs:", r.Timestamp)), label, pct)
}

// RenderResults renders a clip report: a header, the inference count, one
// line per inference and the per-candidate detail for windows with more
// than one candidate.
func RenderResults(report kws.ClipReport, st Styles) string {
	var b strings.Builder

	title := fmt.Sprintf("Clip %d", report.ClipIndex)
	if report.ClipName != "" {
		title += ": " + report.ClipName
	}
	b.WriteString(st.Title.Render(title))
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Total number of inferences: %d\n", len(report.Results))

	for _, r := range report.Results {
		b.WriteString(ResultLine(r, st))
		b.WriteByte('\n')
		if len(r.Candidates) > 1 {
			for i, c := range r.Candidates {
				b.WriteString(st.Help.Render(fmt.Sprintf("    %d) %s %s", i+1, c.Label, FormatPercent(c.Score))))
				b.WriteByte('\n')
			}
		}
	}

	if report.Stats.Windows > 0 {
		b.WriteString(st.Help.Render(fmt.Sprintf("%d windows, %d feature rows computed, %s per inference",
			report.Stats.Windows, report.Stats.TransformCalls, FormatDuration(report.Stats.MeanInference()))))
		b.WriteByte('\n')
	}
	return b.String()
}

// RecordLine renders a one-line summary of a stored run for listings.
func RecordLine(rec resultstore.Record, st Styles, width int) string {
	r := rec.Report
	detected := 0
	for _, res := range r.Results {
		if len(res.Candidates) > 0 {
			detected++
		}
	}
	line := fmt.Sprintf("%s  %s  clip %d  %d/%d detected  %s",
		r.RunID, rec.SavedAt.Format("2006-01-02 15:04:05"), r.ClipIndex, detected, len(r.Results), r.ClipName)
	if width > 1 && lipgloss.Width(line) > width {
		line = truncateString(line, width-1) + "…"
	}
	return st.Help.Render(line)
}

// truncateString safely truncates a string to the given width,
// handling multi-byte characters correctly.
func truncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	currentWidth := 0
	for i, r := range runes {
		w := lipgloss.Width(string(r))
		if currentWidth+w > width {
			return string(runes[:i])
		}
		currentWidth += w
	}
	return s
}
