// Package calendar holds the date arithmetic shared by the blocked-date parser
// and the duty engine. All dates are civil dates in UTC with no time component.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/models"
)

// ISODate is the boundary date layout
const ISODate = "2006-01-02"

// Month identifies a target month
type Month struct {
	Year  int
	Month time.Month
}

// New validates year and month and returns the target month
func New(year, month int) (Month, error) {
	if month < 1 || month > 12 {
		return Month{}, fmt.Errorf("%w: month %d outside 1-12", models.ErrInvalidInput, month)
	}
	if year < 1 || year > 9999 {
		return Month{}, fmt.Errorf("%w: year %d outside 1-9999", models.ErrInvalidInput, year)
	}
	return Month{Year: year, Month: time.Month(month)}, nil
}

// ParseMonth parses a "YYYY-MM" month identifier
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("%w: month %q is not YYYY-MM", models.ErrInvalidInput, s)
	}
	return New(t.Year(), int(t.Month()))
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label renders the month the way export file names use it, e.g. "Aug-2025"
func (m Month) Label() string {
	return m.First().Format("Jan-2006")
}

// First returns day 1 of the month
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Days returns the number of days in the month
func (m Month) Days() int {
	return m.First().AddDate(0, 1, -1).Day()
}

// Dates returns every day of the month in ascending order
func (m Month) Dates() []time.Time {
	first := m.First()
	dates := make([]time.Time, m.Days())
	for i := range dates {
		dates[i] = first.AddDate(0, 0, i)
	}
	return dates
}

// Date resolves a day-of-month; ok is false when the day does not exist
func Date(year int, month time.Month, day int) (time.Time, bool) {
	if day < 1 || month < time.January || month > time.December {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

// ISO formats a date as YYYY-MM-DD
func ISO(t time.Time) string {
	return t.Format(ISODate)
}

// Weekday returns the short weekday label, e.g. "Mon"
func Weekday(t time.Time) string {
	return t.Format("Mon")
}

// Week returns the ISO 8601 week number of t
func Week(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}

// Neighbours returns the ISO dates of the day before and the day after t
func Neighbours(t time.Time) (prev, next string) {
	return ISO(t.AddDate(0, 0, -1)), ISO(t.AddDate(0, 0, 1))
}

// MonthByName resolves English month names and their common abbreviations
func MonthByName(name string) (time.Month, bool) {
	name = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(name), "."))
	if name == "sept" {
		return time.September, true
	}
	for m := time.January; m <= time.December; m++ {
		full := strings.ToLower(m.String())
		if name == full || name == full[:3] {
			return m, true
		}
	}
	return 0, false
}
