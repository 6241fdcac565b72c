package date

import (
	"fmt"
	"strings"
	"time"
)

// Period names a trailing reporting window for performance series.
type Period int

const (
	// OneMonth covers the last calendar month.
	OneMonth Period = iota
	// YearToDate covers January 1st of the current year until today.
	YearToDate
	// OneYear covers the last calendar year.
	OneYear
)

func (p Period) String() string {
	switch p {
	case OneMonth:
		return "1M"
	case YearToDate:
		return "YTD"
	case OneYear:
		return "1Y"
	default:
		panic(fmt.Sprintf("unknown period %d", int(p)))
	}
}

// ParsePeriod parses a period tag, case-insensitively.
func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(s) {
	case "1m", "month":
		return OneMonth, nil
	case "ytd":
		return YearToDate, nil
	case "1y", "year":
		return OneYear, nil
	default:
		return OneMonth, fmt.Errorf("unknown period %q (want 1M, YTD or 1Y)", s)
	}
}

// WindowEnding resolves the calendar window for the period, ending on today.
//
// It returns the inclusive range and the number of days of price history to
// request for it: 30 for OneMonth, 365 for OneYear, and the exact number of
// whole days since January 1st for YearToDate.
//
// Month and year subtraction follow time.AddDate normalization: subtracting
// one month from the 31st rolls forward into the next month rather than
// clamping to the shorter month's last day.
func (p Period) WindowEnding(today Date) (Range, int) {
	switch p {
	case OneMonth:
		return Range{From: today.AddDate(0, -1, 0), To: today}, 30
	case YearToDate:
		from := New(today.Year(), time.January, 1)
		return Range{From: from, To: today}, from.DaysUntil(today)
	case OneYear:
		return Range{From: today.AddDate(-1, 0, 0), To: today}, 365
	default:
		panic(fmt.Sprintf("unknown period %d", int(p)))
	}
}
