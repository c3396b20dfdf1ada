package mapper

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Eastern-Arabic and Persian digit runes translated to ASCII. Sheet rows edited
// from Arabic keyboards routinely mix both with western digits.
var digitRunes = map[rune]rune{
	'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
	'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
	'۰': '0', '۱': '1', '۲': '2', '۳': '3', '۴': '4',
	'۵': '5', '۶': '6', '۷': '7', '۸': '8', '۹': '9',
}

// ToEnglishDigits translates Arabic-Indic digits to ASCII, leaving every other
// rune untouched.
func ToEnglishDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if d, ok := digitRunes[r]; ok {
			return d
		}
		return r
	}, s)
}

const dateOnly = "2006-01-02"

// Layouts tried in order when a row carries a date as text.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	dateOnly,
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
}

// NormalizeDate reduces a Date-like value (time.Time, ISO datetime string, plain
// date string) to YYYY-MM-DD. Calendar fields are preferred over string slicing:
// a parseable timestamp is formatted, not cut. Unrecognized input yields "".
func NormalizeDate(v any) string {
	switch value := v.(type) {
	case time.Time:
		if value.IsZero() {
			return ""
		}
		return value.Format(dateOnly)
	case string:
		s := strings.TrimSpace(ToEnglishDigits(value))
		if s == "" {
			return ""
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.Format(dateOnly)
			}
		}
		// Last resort for datetime-ish strings with odd offsets or sub-second
		// noise: keep the calendar prefix.
		if len(s) > len(dateOnly) && (s[10] == 'T' || s[10] == ' ') {
			if _, err := time.Parse(dateOnly, s[:10]); err == nil {
				return s[:10]
			}
		}
		return ""
	default:
		return ""
	}
}

// ParseTimestamp decodes a row's creation instant. Zero time on failure, which
// sorts the record last and keeps the merge deterministic.
func ParseTimestamp(v any) time.Time {
	switch value := v.(type) {
	case time.Time:
		return value
	case string:
		s := strings.TrimSpace(ToEnglishDigits(value))
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", dateOnly} {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
	case float64:
		// Unix milliseconds, the entry id scheme's native unit.
		return time.UnixMilli(int64(value)).UTC()
	}
	return time.Time{}
}

// ParseAmount coerces a loosely-typed cell into a decimal amount. Arabic digits
// and thousands separators are tolerated; anything unparseable is zero.
func ParseAmount(v any) decimal.Decimal {
	switch value := v.(type) {
	case float64:
		return decimal.NewFromFloat(value)
	case int:
		return decimal.NewFromInt(int64(value))
	case int64:
		return decimal.NewFromInt(value)
	case string:
		s := strings.TrimSpace(ToEnglishDigits(value))
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return decimal.Zero
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

// ParseBool accepts the bool spellings that show up in sheet cells.
func ParseBool(v any) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		switch strings.ToLower(strings.TrimSpace(value)) {
		case "true", "yes", "1", "نعم":
			return true
		}
	case float64:
		return value != 0
	}
	return false
}
