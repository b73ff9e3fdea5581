// Package blocked turns free-text unavailability declarations such as
//
//	Dong Han: 3, 6, 20–22 Aug
//	Harshith: 4-9 Aug
//	Dervin: 2/8/25
//
// into per-person sets of ISO dates.
//
// Each line is "<name>: <token>[, <token>...]". A token is tried against a day
// range ("20-22", "20–22 Aug"), a single day ("4", "4 Aug") and an explicit
// short date ("2/8/25", "2/8/2025"), in that order. Tokens that match none of
// them are dropped, as are lines without a name or without dates.
package blocked

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/justinleeeeeeeeeee/DUTYPLANNER/internal/calendar"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/models"
)

var (
	lineBreak        = regexp.MustCompile(`\r\n|\r|\n`)
	dayRangePattern  = regexp.MustCompile(`^(\d{1,2})\s*[-–—]\s*(\d{1,2})(?:\s+([A-Za-z]+\.?))?$`)
	singleDayPattern = regexp.MustCompile(`^(\d{1,2})(?:\s+([A-Za-z]+\.?))?$`)
	shortDatePattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4}|\d{2})$`)
)

// ParseBlockedDates parses text against the target year and month
func ParseBlockedDates(text string, year, month int) (models.BlockedDateSet, error) {
	target, err := calendar.New(year, month)
	if err != nil {
		return nil, err
	}
	return Parse(text, target), nil
}

// Parse is ParseBlockedDates for an already validated month
func Parse(text string, target calendar.Month) models.BlockedDateSet {
	collected := make(map[models.NameKey]map[string]struct{})

	for _, line := range lineBreak.Split(text, -1) {
		key, dates, ok := parseLine(line, target)
		if !ok {
			continue
		}
		set, exists := collected[key]
		if !exists {
			set = make(map[string]struct{})
			collected[key] = set
		}
		for _, d := range dates {
			set[d] = struct{}{}
		}
	}

	result := make(models.BlockedDateSet, len(collected))
	for key, set := range collected {
		dates := make([]string, 0, len(set))
		for d := range set {
			dates = append(dates, d)
		}
		slices.Sort(dates)
		result[key] = dates
	}
	return result
}

func parseLine(line string, target calendar.Month) (models.NameKey, []string, bool) {
	name, expr, found := strings.Cut(line, ":")
	if !found {
		return "", nil, false
	}
	key := models.NewNameKey(name)
	expr = strings.TrimSpace(expr)
	if key == "" || expr == "" {
		return "", nil, false
	}

	var dates []string
	for _, token := range strings.Split(expr, ",") {
		dates = append(dates, parseToken(strings.TrimSpace(token), target)...)
	}
	return key, dates, true
}

func parseToken(token string, target calendar.Month) []string {
	if m := dayRangePattern.FindStringSubmatch(token); m != nil {
		month, ok := resolveMonth(m[3], target)
		if !ok {
			return nil
		}
		start, _ := strconv.Atoi(m[1])
		end, _ := strconv.Atoi(m[2])
		var dates []string
		for day := start; day <= end; day++ {
			if t, ok := calendar.Date(target.Year, month, day); ok {
				dates = append(dates, calendar.ISO(t))
			}
		}
		return dates
	}

	if m := singleDayPattern.FindStringSubmatch(token); m != nil {
		month, ok := resolveMonth(m[2], target)
		if !ok {
			return nil
		}
		day, _ := strconv.Atoi(m[1])
		if t, ok := calendar.Date(target.Year, month, day); ok {
			return []string{calendar.ISO(t)}
		}
		return nil
	}

	if m := shortDatePattern.FindStringSubmatch(token); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
		if t, ok := calendar.Date(year, time.Month(month), day); ok {
			return []string{calendar.ISO(t)}
		}
	}

	return nil
}

// resolveMonth picks the month named by a token, or the target month when the
// token carries none. An unrecognised name invalidates the token.
func resolveMonth(name string, target calendar.Month) (time.Month, bool) {
	if name == "" {
		return target.Month, true
	}
	return calendar.MonthByName(name)
}

// Describe renders one "name: 3 Aug, 6 Aug" line per key, sorted by key
func Describe(set models.BlockedDateSet) []string {
	lines := make([]string, 0, len(set))
	for _, key := range set.Keys() {
		labels := make([]string, 0, len(set[key]))
		for _, d := range set[key] {
			t, err := time.Parse(calendar.ISODate, d)
			if err != nil {
				labels = append(labels, d)
				continue
			}
			labels = append(labels, t.Format("2 Jan"))
		}
		lines = append(lines, fmt.Sprintf("%s: %s", key, strings.Join(labels, ", ")))
	}
	return lines
}
