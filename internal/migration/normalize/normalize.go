// Package normalize holds the canonical cleaning policy for legacy
// spreadsheet values. The legacy system stored everything as free text, so
// every function here is total: bad input yields the type's absent value,
// never an error.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SentinelDate marks fields the legacy system flagged as completed without
// recording when.
var SentinelDate = time.Date(1999, time.September, 19, 0, 0, 0, 0, time.UTC)

// nullTokens are spreadsheet renderings of "no value".
var nullTokens = map[string]struct{}{
	"":     {},
	"nan":  {},
	"na":   {},
	"<na>": {},
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}

// Text trims v and treats empty strings and null-sentinel tokens as absent.
func Text(v any) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(stringify(v))
	if _, null := nullTokens[strings.ToLower(s)]; null {
		return nil
	}
	return &s
}

// IntegerString renders numeric identifiers that arrived as floats back to
// their canonical decimal form ("12345.0" -> "12345"). Non-numeric values
// pass through trimmed; they are legitimate alphanumeric codes.
func IntegerString(v any) *string {
	s := Text(v)
	if s == nil {
		return nil
	}
	f, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return s
	}
	n := strconv.FormatInt(int64(f), 10)
	return &n
}

var moneyReplacer = strings.NewReplacer("$", "", ",", "")

// Money strips currency symbols and thousands separators. Money fields are
// never absent, only zero.
func Money(v any) decimal.Decimal {
	s := Text(v)
	if s == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.TrimSpace(moneyReplacer.Replace(*s)))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Boolean maps the legacy truthy/falsy token set. Unrecognized or empty
// input is absent; the caller picks the default.
func Boolean(v any) *bool {
	if b, ok := v.(bool); ok {
		return &b
	}
	s := Text(v)
	if s == nil {
		return nil
	}
	switch strings.ToUpper(*s) {
	case "TRUE", "T", "YES", "Y", "1":
		b := true
		return &b
	case "FALSE", "F", "NO", "N", "0":
		b := false
		return &b
	}
	return nil
}

// dateLayouts are tried in order; day-before-month forms come first because
// the legacy sheets were authored with day-first dates.
var dateLayouts = []string{
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// Date passes already-typed times through and parses strings with day-first
// preference. Unparsable or empty input is absent.
func Date(v any) *time.Time {
	if t, ok := v.(time.Time); ok {
		if t.IsZero() {
			return nil
		}
		return &t
	}
	s := Text(v)
	if s == nil {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, *s); err == nil {
			return &t
		}
	}
	return nil
}

// CompletionTimestamp handles legacy timestamp columns overloaded with
// completion flags: a truthy token means "completed, exact date unknown" and
// resolves to SentinelDate, a falsy token means not completed, and anything
// else is treated as a regular date.
func CompletionTimestamp(v any) *time.Time {
	s := Text(v)
	if s == nil {
		return nil
	}
	switch strings.ToUpper(*s) {
	case "Y", "YES", "T", "TRUE", "COMP", "COMPLETE":
		d := SentinelDate
		return &d
	case "N", "NO", "F", "FALSE":
		return nil
	}
	return Date(v)
}

var multilineReplacer = strings.NewReplacer(`\n`, "\n", `\t`, " ", "\t", " ")

// MultilineText is Text plus unescaping of literal backslash sequences the
// spreadsheet export produced in comment fields.
func MultilineText(v any) *string {
	s := Text(v)
	if s == nil {
		return nil
	}
	out := multilineReplacer.Replace(*s)
	return &out
}

// ParseJobNumber splits a legacy job number into base and suffix.
// "12345-S1" -> ("12345", "S1"); "M207" -> ("M207", nil); empty -> (nil, nil).
func ParseJobNumber(v any) (base, suffix *string) {
	s := Text(v)
	if s == nil {
		return nil, nil
	}
	if i := strings.Index(*s, "-"); i >= 0 {
		b := strings.TrimSpace((*s)[:i])
		sx := strings.TrimSpace((*s)[i+1:])
		return &b, &sx
	}
	return s, nil
}
