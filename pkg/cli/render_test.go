package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/haivivi/kws/pkg/kws"
	"github.com/haivivi/kws/pkg/resultstore"
)

func sampleReport() kws.ClipReport {
	return kws.ClipReport{
		RunID:     "0b6e6d0c-run",
		ClipIndex: 2,
		ClipName:  "yes_01.wav",
		Results: []kws.Result{
			{Candidates: []kws.Candidate{{Label: "yes", Score: 0.95}}, Timestamp: 0, Index: 0},
			{Timestamp: 0.5, Index: 1},
			{Candidates: []kws.Candidate{{Label: "go", Score: 0.8}, {Label: "no", Score: 0.75}}, Timestamp: 1, Index: 2},
		},
		Stats: kws.Stats{Windows: 3, TransformCalls: 99, InferenceTime: 6 * time.Millisecond},
	}
}

func TestResultLine(t *testing.T) {
	st := PlainStyles()
	r := sampleReport().Results
	if got := ResultLine(r[0], st); got != "@0.00s: yes (95%)" {
		t.Errorf("ResultLine = %q", got)
	}
	if got := ResultLine(r[1], st); got != "@0.50s: <none> (0%)" {
		t.Errorf("ResultLine empty = %q", got)
	}
}

func TestRenderResults(t *testing.T) {
	got := RenderResults(sampleReport(), PlainStyles())
	want := []string{
		"Clip 2: yes_01.wav",
		"Total number of inferences: 3",
		"@0.00s: yes (95%)",
		"@0.50s: <none> (0%)",
		"@1.00s: go (80%)",
		"    1) go 80.00%",
		"    2) no 75.00%",
		"3 windows, 99 feature rows computed, 2ms per inference",
	}
	lines := strings.Split(strings.TrimSuffix(got, "\n"), "\n")
	if len(lines) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(want), got)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRenderResultsEmpty(t *testing.T) {
	got := RenderResults(kws.ClipReport{}, PlainStyles())
	if got != "Clip 0\nTotal number of inferences: 0\n" {
		t.Errorf("RenderResults = %q", got)
	}
}

func TestRecordLine(t *testing.T) {
	rec := resultstore.Record{SavedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.Local), Report: sampleReport()}
	got := RecordLine(rec, PlainStyles(), 0)
	want := "0b6e6d0c-run  2026-01-02 03:04:05  clip 2  2/3 detected  yes_01.wav"
	if got != want {
		t.Errorf("RecordLine = %q, want %q", got, want)
	}

	short := RecordLine(rec, PlainStyles(), 20)
	if !strings.HasSuffix(short, "…") || len([]rune(short)) != 20 {
		t.Errorf("truncated RecordLine = %q", short)
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("héllo", 3); got != "hél" {
		t.Errorf("truncateString = %q", got)
	}
	if got := truncateString("abc", 0); got != "" {
		t.Errorf("truncateString zero width = %q", got)
	}
	if got := truncateString("abc", 10); got != "abc" {
		t.Errorf("truncateString wide = %q", got)
	}
}
