package models

import "fmt"

const (
	kib = 1024.0
	mib = kib * 1024
	gib = mib * 1024
)

// FormatBytes renders a byte count with binary (1024-based) units.
// Non-positive totals render as "0 B".
func FormatBytes(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}

	b := float64(bytes)
	switch {
	case b >= gib:
		return fmt.Sprintf("%.2f GB", b/gib)
	case b >= mib:
		return fmt.Sprintf("%.2f MB", b/mib)
	case b >= kib:
		return fmt.Sprintf("%.2f KB", b/kib)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// BytesToMB converts a byte count to mebibytes for chart points.
func BytesToMB(bytes uint64) float64 {
	return float64(bytes) / (1024 * 1024)
}
