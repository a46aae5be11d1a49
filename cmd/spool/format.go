package main

import (
	"fmt"
	"time"
)

func formatBytes(size int64) string {
	if size <= 0 {
		return "-"
	}
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	value := float64(size)
	exp := 0
	for value >= unit && exp < 3 {
		value /= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB"}
	return fmt.Sprintf("%.1f %s", value, suffixes[exp-1])
}

func formatJobDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}

// formatWhen renders a finish time relative to now for fresh entries and as
// a date for older ones.
func formatWhen(t time.Time) string {
	age := time.Since(t)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	case age < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	default:
		return t.Local().Format("2006-01-02")
	}
}
