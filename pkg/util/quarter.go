package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Quarter identifies a 13F reporting period (calendar year + quarter number).
type Quarter struct {
	Year int
	Q    int
}

// ParseQuarter parses "YYYYQn" (e.g. "2024Q4").
func ParseQuarter(s string) (Quarter, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	i := strings.IndexByte(s, 'Q')
	if i <= 0 || i != len(s)-2 {
		return Quarter{}, fmt.Errorf("invalid quarter %q: want YYYYQn", s)
	}
	year, err := strconv.Atoi(s[:i])
	if err != nil {
		return Quarter{}, fmt.Errorf("invalid quarter %q: bad year", s)
	}
	q, err := strconv.Atoi(s[i+1:])
	if err != nil || q < 1 || q > 4 {
		return Quarter{}, fmt.Errorf("invalid quarter %q: quarter must be 1-4", s)
	}
	return Quarter{Year: year, Q: q}, nil
}

func (q Quarter) String() string { return fmt.Sprintf("%dQ%d", q.Year, q.Q) }

func (q Quarter) IsZero() bool { return q.Year == 0 && q.Q == 0 }

func (q Quarter) Equal(o Quarter) bool { return q.Year == o.Year && q.Q == o.Q }

// Before reports whether q is strictly earlier than o.
func (q Quarter) Before(o Quarter) bool {
	if q.Year != o.Year {
		return q.Year < o.Year
	}
	return q.Q < o.Q
}

// StartDate returns the first day of the quarter.
func (q Quarter) StartDate() time.Time {
	return time.Date(q.Year, time.Month((q.Q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
}

// EndDate returns the last day of the quarter.
func (q Quarter) EndDate() time.Time {
	return q.StartDate().AddDate(0, 3, -1)
}

// Prev returns the preceding quarter.
func (q Quarter) Prev() Quarter {
	if q.Q == 1 {
		return Quarter{Year: q.Year - 1, Q: 4}
	}
	return Quarter{Year: q.Year, Q: q.Q - 1}
}

// QuarterOfDate returns the quarter containing d. Used for EDGAR reportDate
// values, which are quarter-end dates.
func QuarterOfDate(d time.Time) Quarter {
	return Quarter{Year: d.Year(), Q: (int(d.Month())-1)/3 + 1}
}

// ReportedQuarter maps a 13F filing date to the period the filing covers.
// 13Fs are due within 45 days of quarter end, so a January-March filing
// reports the previous year's Q4, April-June reports Q1, and so on.
func ReportedQuarter(filingDate time.Time) Quarter {
	switch m := filingDate.Month(); {
	case m <= 3:
		return Quarter{Year: filingDate.Year() - 1, Q: 4}
	case m <= 6:
		return Quarter{Year: filingDate.Year(), Q: 1}
	case m <= 9:
		return Quarter{Year: filingDate.Year(), Q: 2}
	default:
		return Quarter{Year: filingDate.Year(), Q: 3}
	}
}

// LatestQuarter returns the most recent fully elapsed quarter as of now.
func LatestQuarter(now time.Time) Quarter {
	return QuarterOfDate(now).Prev()
}
