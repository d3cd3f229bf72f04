package util

import (
	"fmt"
	"time"
)

// FormatDuration formats how long a job took, e.g. 350ms, 4.2s, 1m5s
func FormatDuration(duration time.Duration) string {
	switch {
	case duration < 0:
		return "0ms"
	case duration < time.Second:
		return fmt.Sprintf("%dms", duration.Milliseconds())
	case duration < 10*time.Second:
		return fmt.Sprintf("%.1fs", duration.Seconds())
	case duration < time.Minute:
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	}
	seconds := int(duration.Seconds())
	minutes := seconds / 60
	hours := minutes / 60
	if hours > 0 {
		return fmt.Sprintf("%dh%dm", hours, minutes%60)
	}
	return fmt.Sprintf("%dm%ds", minutes, seconds%60)
}
