package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Placeholder is shown for values that are absent.
const Placeholder = "---"

// FormatNumber formats an integer with locale-style comma separators.
// Example: 12345678 → "12,345,678".
// Uses strconv.FormatInt directly to avoid abs64 overflow for math.MinInt64.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	if n < 0 {
		return "-" + insertCommas(s[1:])
	}
	return insertCommas(s)
}

// FormatCount is FormatNumber for int counters.
func FormatCount(n int) string {
	return FormatNumber(int64(n))
}

// FormatPercent formats a percentage with one decimal place.
// Example: 34.5 → "34.5%".
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// FormatRatio formats part/whole as a percentage. A zero whole yields the
// placeholder.
func FormatRatio(part, whole int) string {
	if whole <= 0 {
		return Placeholder
	}
	return FormatPercent(float64(part) * 100 / float64(whole))
}

// FormatBool renders a flag as "yes" or "no".
func FormatBool(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// FormatTimestamp renders an RFC 3339 snapshot time as "2006-01-02 15:04 UTC".
// Values that do not parse are returned unchanged; empty ones become the
// placeholder.
func FormatTimestamp(s string) string {
	if s == "" {
		return Placeholder
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.UTC().Format("2006-01-02 15:04") + " UTC"
}

// FormatAge renders the time elapsed between an RFC 3339 timestamp and now
// in its largest whole unit: "45s", "12m", "5h", "3d". Unparseable values
// and future times yield the placeholder.
func FormatAge(s string, now time.Time) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Placeholder
	}
	d := now.Sub(t)
	switch {
	case d < 0:
		return Placeholder
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d/time.Second))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	}
}

// Truncate shortens s to at most n runes, marking the cut with "…".
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

// insertCommas inserts comma separators into a digit string every 3 digits from the right.
func insertCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var buf strings.Builder
	lead := n % 3
	if lead > 0 {
		buf.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(s[i : i+3])
	}
	return buf.String()
}
