package timer

import "fmt"

// Format renders remaining seconds as "remaining: Xh MMmin SSs", dropping
// leading zero units.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := split(seconds)

	switch {
	case h > 0:
		return fmt.Sprintf("remaining: %dh %02dmin %02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("remaining: %02dmin %02ds", m, s)
	default:
		return fmt.Sprintf("remaining: %02ds", s)
	}
}

func split(seconds int) (h, m, s int) {
	return seconds / 3600, (seconds % 3600) / 60, seconds % 60
}
