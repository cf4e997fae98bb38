package statement

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// spanishMonths maps statement month abbreviations to months.
var spanishMonths = map[string]time.Month{
	"ENE": time.January,
	"FEB": time.February,
	"MAR": time.March,
	"ABR": time.April,
	"MAY": time.May,
	"JUN": time.June,
	"JUL": time.July,
	"AGO": time.August,
	"SEP": time.September,
	"OCT": time.October,
	"NOV": time.November,
	"DIC": time.December,
}

// ParseStatementDate accepts ISO dates plus the day-first layouts Mexican
// statements print: DD/MM/AAAA, DD-MM-AAAA and DD-MMM-AAAA ("15-ENE-2024").
// Dates without a year are rejected.
func ParseStatementDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if d, err := civil.ParseDate(s); err == nil {
		return d, nil
	}

	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 {
		return civil.Date{}, fmt.Errorf("unsupported date %q", s)
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return civil.Date{}, fmt.Errorf("unsupported date %q", s)
	}
	month, ok := parseMonth(parts[1])
	if !ok {
		return civil.Date{}, fmt.Errorf("unsupported date %q: unknown month %q", s, parts[1])
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return civil.Date{}, fmt.Errorf("unsupported date %q", s)
	}
	if len(parts[2]) == 2 {
		year += 2000
	}

	d := civil.Date{Year: year, Month: month, Day: day}
	if !d.IsValid() {
		return civil.Date{}, fmt.Errorf("invalid date %q", s)
	}
	return d, nil
}

func parseMonth(s string) (time.Month, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, false
		}
		return time.Month(n), true
	}
	s = strings.ToUpper(strings.TrimSuffix(s, "."))
	if len(s) < 3 {
		return 0, false
	}
	m, ok := spanishMonths[s[:3]]
	return m, ok
}
