package schema

import (
	"math"
	"strings"
	"time"
	"unicode"
)

// WeekKeyFormat is the ISO date layout used for week keys.
const WeekKeyFormat = "2006-01-02"

// WeekStart returns the Sunday-anchored start of the week containing t, at UTC midnight.
func WeekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// DayStart truncates t to UTC midnight.
func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekKey formats a week start as "2006-01-02".
func WeekKey(week time.Time) string {
	return week.Format(WeekKeyFormat)
}

// WeekLabel formats a week start as a short human label like "Dec 6".
func WeekLabel(week time.Time) string {
	return week.Format("Jan 2")
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// SafeDiv returns num / den, or 0 when den is 0.
func SafeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// NormalizeHeader produces the comparison key for a column header:
// trimmed, lower-cased, with spaces, underscores and hyphens removed.
func NormalizeHeader(h string) string {
	h = strings.TrimSpace(h)
	var b strings.Builder
	b.Grow(len(h))
	for _, r := range h {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Truncate shortens s to at most limit runes, appending an ellipsis when cut.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
