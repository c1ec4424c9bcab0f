package format

import "fmt"

var byteUnits = []string{"KB", "MB", "GB", "TB"}

// FormatBytes formats b into a human-readable size, avoiding .00 for
// whole numbers.
func FormatBytes(b int64) string {
	if b < 1024 {
		return fmt.Sprintf("%dB", b)
	}

	val := float64(b)
	unit := ""
	for _, u := range byteUnits {
		if val < 1024 {
			break
		}
		val /= 1024
		unit = u
	}

	if val == float64(int64(val)) {
		return fmt.Sprintf("%.0f%s", val, unit)
	}
	return fmt.Sprintf("%.2f%s", val, unit)
}
