package load

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// dateLayouts are tried in order for string date cells.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"2006/01/02",
}

// excelEpoch is day zero of spreadsheet serial dates.
var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// Serial dates outside this range are not treated as dates (roughly 1900 to 2173).
const (
	minExcelSerial = 1
	maxExcelSerial = 100000
)

var pilotTruthy = map[string]struct{}{
	"1":    {},
	"true": {},
	"yes":  {},
	"y":    {},
}

// CellString renders a cell as trimmed text. Nil becomes the empty string.
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case []byte:
		return strings.TrimSpace(string(x))
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}

// ParsePilot classifies a pilot-flag cell. Booleans are used as-is, numbers
// are pilot when nonzero, and strings are pilot when one of 1/true/yes/y or
// a nonzero number ("2", "1.0"). Anything else, including a missing cell,
// is non-pilot.
func ParsePilot(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case float32:
		return x != 0
	case int64:
		return x != 0
	case int:
		return x != 0
	case int32:
		return x != 0
	case string, []byte:
		s := strings.ToLower(CellString(x))
		if _, ok := pilotTruthy[s]; ok {
			return true
		}
		f, err := strconv.ParseFloat(s, 64)
		return err == nil && f != 0 && !math.IsNaN(f)
	default:
		return false
	}
}

// ParseCount converts a cell to a non-negative integer. Fractions are
// truncated; blanks, garbage and negatives become 0.
func ParseCount(v any) int {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int64:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case string, []byte:
		s := CellString(x)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}

// ParseDate converts a date cell to a UTC time. Strings are tried against
// the known layouts; numbers are read as spreadsheet serial dates.
func ParseDate(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return x.UTC(), true
	case float64:
		return fromSerial(x)
	case float32:
		return fromSerial(float64(x))
	case int64:
		return fromSerial(float64(x))
	case int:
		return fromSerial(float64(x))
	case int32:
		return fromSerial(float64(x))
	case string, []byte:
		return parseDateString(CellString(x))
	default:
		return time.Time{}, false
	}
}

func parseDateString(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	// Serial numbers exported as text
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromSerial(f)
	}
	return time.Time{}, false
}

func fromSerial(serial float64) (time.Time, bool) {
	if math.IsNaN(serial) || serial < minExcelSerial || serial > maxExcelSerial {
		return time.Time{}, false
	}
	seconds := math.Round(serial * 24 * 60 * 60)
	return excelEpoch.Add(time.Duration(seconds) * time.Second), true
}

// isBlank reports whether a cell carries no value at all.
func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []byte:
		return strings.TrimSpace(string(x)) == ""
	case time.Time:
		return x.IsZero()
	case float64:
		return math.IsNaN(x)
	default:
		return false
	}
}
