package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/justinleeeeeeeeeee/DUTYPLANNER/internal/calendar"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/models"
)

// Scheduler assigns roster members to the daily duty slots of one month.
// It owns the roster state for the duration of a run and is not safe for
// concurrent use.
type Scheduler struct {
	Roster    []*models.Person
	Blocked   models.BlockedDateSet
	Rules     Rules
	Conflicts []models.ConflictReason
	Logger    *slog.Logger
}

// NewScheduler creates a new scheduler instance
func NewScheduler(roster []models.RosterEntry, blocked models.BlockedDateSet, rules Rules) (*Scheduler, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	people := make([]*models.Person, 0, len(roster))
	seen := make(map[models.NameKey]string, len(roster))
	for i, entry := range roster {
		p := models.NewPerson(entry)
		if p.Key == "" {
			return nil, fmt.Errorf("%w: roster entry %d has no name", models.ErrInvalidInput, i+1)
		}
		if math.IsNaN(p.BasePoints) || math.IsInf(p.BasePoints, 0) || p.BasePoints < 0 {
			return nil, fmt.Errorf("%w: %s has invalid points %v", models.ErrInvalidInput, p.Name, entry.Points)
		}
		if other, dup := seen[p.Key]; dup {
			return nil, fmt.Errorf("%w: %q and %q share the name key %q", models.ErrInvalidInput, other, p.Name, p.Key)
		}
		seen[p.Key] = p.Name
		people = append(people, p)
	}

	if blocked == nil {
		blocked = models.BlockedDateSet{}
	}

	return &Scheduler{
		Roster:  people,
		Blocked: blocked,
		Rules:   rules,
	}, nil
}

// GenerateSchedule builds a month's roster with the default rules
func GenerateSchedule(ctx context.Context, roster []models.RosterEntry, blocked models.BlockedDateSet, year, month int) (models.ScheduleMonth, error) {
	target, err := calendar.New(year, month)
	if err != nil {
		return nil, err
	}
	s, err := NewScheduler(roster, blocked, DefaultRules())
	if err != nil {
		return nil, err
	}
	return s.GenerateMonth(ctx, target)
}

// Generate validates year and month and runs GenerateMonth
func (s *Scheduler) Generate(ctx context.Context, year, month int) (models.ScheduleMonth, error) {
	target, err := calendar.New(year, month)
	if err != nil {
		return nil, err
	}
	return s.GenerateMonth(ctx, target)
}

// GenerateMonth fills every slot of every day of target in order. Each run
// starts from zero load; unfillable slots are left blank and reported in
// Conflicts. ctx is checked once per day.
func (s *Scheduler) GenerateMonth(ctx context.Context, target calendar.Month) (models.ScheduleMonth, error) {
	s.reset()
	logger := s.logger()

	schedule := make(models.ScheduleMonth, 0, target.Days())
	for _, date := range target.Dates() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("generating %s: %w", target, err)
		}

		day := models.NewDutyAssignmentDay(calendar.ISO(date), calendar.Weekday(date))
		for _, kind := range models.SlotOrder {
			if p := s.fill(date, kind); p != nil {
				day.Assign(kind, p.Name)
			}
		}
		schedule = append(schedule, day)
	}

	logger.Info("schedule generated",
		"month", target.String(),
		"people", len(s.Roster),
		"unfilled", schedule.UnfilledSlots(),
	)
	return schedule, nil
}

func (s *Scheduler) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Scheduler) reset() {
	for i, p := range s.Roster {
		s.Roster[i] = models.NewPerson(models.RosterEntry{Name: p.Name, Points: p.BasePoints})
	}
	s.Conflicts = nil
}

// Weight is the duty-point value of holding kind on date
func Weight(date time.Time, kind models.SlotKind) float64 {
	if !kind.IsPrimary() {
		return 0
	}
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return 2
	case time.Friday:
		if kind == models.SlotPM {
			return 1.5
		}
	}
	return 1
}

type slot struct {
	kind         models.SlotKind
	date         string
	prev, next   string
	week         int
	weight       float64
	reserveLimit int
}

// exclusions counts why candidates were filtered out of a slot
type exclusions struct {
	blocked  int
	booked   int
	adjacent int
	capped   int
	reserved int
}

func (s *Scheduler) fill(date time.Time, kind models.SlotKind) *models.Person {
	prev, next := calendar.Neighbours(date)
	sl := slot{
		kind:         kind,
		date:         calendar.ISO(date),
		prev:         prev,
		next:         next,
		week:         calendar.Week(date),
		weight:       Weight(date, kind),
		reserveLimit: s.Rules.ReserveWeeklyStart,
	}

	candidates, tally := s.eligible(sl)
	if kind.IsReserve() {
		// Raise the weekly limit one step at a time until the pool is big
		// enough or the ceiling is hit.
		for len(candidates) < reserveCandidatesWanted && sl.reserveLimit < s.Rules.ReserveWeeklyCeiling {
			sl.reserveLimit++
			candidates, tally = s.eligible(sl)
		}
	}

	best := leastLoaded(candidates)
	if best == nil {
		s.recordConflict(sl, tally)
		return nil
	}

	best.AssignedDates = append(best.AssignedDates, sl.date)
	if kind.IsPrimary() {
		best.DutyPoints += sl.weight
	} else {
		best.ReserveByWeek[sl.week]++
		best.ReserveDates = append(best.ReserveDates, sl.date)
	}
	return best
}

// eligible filters the roster, in roster order, against the current state
func (s *Scheduler) eligible(sl slot) ([]*models.Person, exclusions) {
	var candidates []*models.Person
	var tally exclusions

	for _, p := range s.Roster {
		ok := true
		if s.Blocked.IsBlocked(p.Key, sl.date) {
			tally.blocked++
			ok = false
		}
		if p.HoldsDate(sl.date) {
			tally.booked++
			ok = false
		}
		if p.HoldsDate(sl.prev) || p.HoldsDate(sl.next) {
			tally.adjacent++
			ok = false
		}
		if sl.kind.IsPrimary() && p.DutyPoints+sl.weight > s.Rules.Cap(p) {
			tally.capped++
			ok = false
		}
		if sl.kind.IsReserve() && p.ReserveByWeek[sl.week] >= sl.reserveLimit {
			tally.reserved++
			ok = false
		}
		if ok {
			candidates = append(candidates, p)
		}
	}
	return candidates, tally
}

// leastLoaded picks the smallest base+duty points; the earliest roster entry wins ties
func leastLoaded(candidates []*models.Person) *models.Person {
	var best *models.Person
	for _, p := range candidates {
		if best == nil || p.Load() < best.Load() {
			best = p
		}
	}
	return best
}

func (s *Scheduler) recordConflict(sl slot, tally exclusions) {
	var reasons []string
	if tally.blocked > 0 {
		reasons = append(reasons, fmt.Sprintf("%d people blocked this date", tally.blocked))
	}
	if tally.booked > 0 {
		reasons = append(reasons, fmt.Sprintf("%d people already on duty this day", tally.booked))
	}
	if tally.adjacent > 0 {
		reasons = append(reasons, fmt.Sprintf("%d people on duty the day before or after", tally.adjacent))
	}
	if tally.capped > 0 {
		reasons = append(reasons, fmt.Sprintf("%d people would exceed their monthly duty points", tally.capped))
	}
	if tally.reserved > 0 {
		reasons = append(reasons, fmt.Sprintf("%d people at the weekly reserve limit of %d", tally.reserved, sl.reserveLimit))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "roster is empty")
	}

	s.Conflicts = append(s.Conflicts, models.ConflictReason{
		Date:    sl.date,
		Slot:    sl.kind,
		Reasons: reasons,
	})
	s.logger().Debug("slot left unfilled", "date", sl.date, "slot", sl.kind.String(), "reasons", reasons)
}

// CalculateFairnessScore returns a percentage (0-100) representing how evenly
// duty points are spread. 100% is perfectly fair (Standard Deviation = 0).
func (s *Scheduler) CalculateFairnessScore() float64 {
	if len(s.Roster) == 0 {
		return 100.0
	}

	var sum float64
	for _, p := range s.Roster {
		sum += p.DutyPoints
	}

	if sum == 0 {
		return 100.0
	}

	mean := sum / float64(len(s.Roster))

	var varianceSum float64
	for _, p := range s.Roster {
		diff := p.DutyPoints - mean
		varianceSum += diff * diff
	}
	stdDev := math.Sqrt(varianceSum / float64(len(s.Roster)))

	score := (1.0 - (stdDev / mean)) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}

// Stats reports each person's load in roster order
func (s *Scheduler) Stats() []models.PersonStats {
	stats := make([]models.PersonStats, 0, len(s.Roster))
	for _, p := range s.Roster {
		stats = append(stats, models.PersonStats{
			Name:          p.Name,
			BasePoints:    p.BasePoints,
			DutyPoints:    p.DutyPoints,
			PrimarySlots:  p.PrimaryCount(),
			ReserveSlots:  len(p.ReserveDates),
			AssignedDates: append([]string{}, p.AssignedDates...),
		})
	}
	return stats
}
