// Package util provides utility functions for formatting and common operations.
package util

import "fmt"

const (
	KiB = 1024
	MiB = KiB * 1024
	GiB = MiB * 1024

	// SecondsPerMinute is the number of seconds in a minute.
	SecondsPerMinute = 60
	// SecondsPerHour is the number of seconds in an hour.
	SecondsPerHour = 3600
)

// FormatBytes formats bytes with appropriate binary units (B, KiB, MiB, GiB).
func FormatBytes(bytes uint64) string {
	bf := float64(bytes)
	switch {
	case bf >= GiB:
		return fmt.Sprintf("%.2f GiB", bf/GiB)
	case bf >= MiB:
		return fmt.Sprintf("%.2f MiB", bf/MiB)
	case bf >= KiB:
		return fmt.Sprintf("%.2f KiB", bf/KiB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatDurationFromSecs formats seconds as HH:MM:SS from an int64.
func FormatDurationFromSecs(secs int64) string {
	hours := secs / SecondsPerHour
	minutes := (secs % SecondsPerHour) / SecondsPerMinute
	seconds := secs % SecondsPerMinute
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatETA renders a stage estimate the way the progress tracker reports
// it: seconds under a minute, minutes+seconds under an hour, else hours+minutes.
func FormatETA(seconds float64) string {
	if seconds < 0 || seconds != seconds { // NaN guard
		return "unknown"
	}
	total := int64(seconds)
	switch {
	case total < 60:
		return fmt.Sprintf("%ds", total)
	case total < SecondsPerHour:
		return fmt.Sprintf("%dm %ds", total/SecondsPerMinute, total%SecondsPerMinute)
	default:
		h := total / SecondsPerHour
		m := (total % SecondsPerHour) / SecondsPerMinute
		return fmt.Sprintf("%dh %dm", h, m)
	}
}
