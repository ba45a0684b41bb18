package cli

import (
	"fmt"
	"time"
)

// FormatDuration formats d to a short human readable string
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case ms < 1000:
		return fmt.Sprintf("%dms", ms)
	}
	secs := d.Seconds()
	if secs < 60 {
		return fmt.Sprintf("%.1fs", secs)
	}
	mins := int(secs / 60)
	secs -= float64(mins * 60)
	return fmt.Sprintf("%dm%.1fs", mins, secs)
}

// FormatPercent formats a [0,1] score as a percentage with two decimals.
func FormatPercent(score float32) string {
	return fmt.Sprintf("%.2f%%", float64(score)*100)
}

// FormatSeconds formats a clip offset in seconds.
func FormatSeconds(s float64) string {
	return fmt.Sprintf("%.2fs", s)
}
