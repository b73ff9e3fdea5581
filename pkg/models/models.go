package models

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NameKey is the case-insensitive lookup key of a roster member.
type NameKey string

// NewNameKey trims, collapses inner whitespace and lowercases a display name.
func NewNameKey(name string) NameKey {
	folded := strings.Join(strings.Fields(name), " ")
	return NameKey(cases.Lower(language.Und).String(folded))
}

// RosterEntry is one row of the points ledger
type RosterEntry struct {
	Name   string  `json:"name" validate:"required"`
	Points float64 `json:"points" validate:"gte=0"`
}

// Person represents a roster member and the load accumulated during one run
type Person struct {
	Name          string      `json:"name"`
	Key           NameKey     `json:"key"`
	BasePoints    float64     `json:"base_points"`
	DutyPoints    float64     `json:"duty_points"`
	AssignedDates []string    `json:"assigned_dates"`
	ReserveDates  []string    `json:"reserve_dates"`
	ReserveByWeek map[int]int `json:"reserve_by_week"`
}

// NewPerson builds a zero-load person from a ledger row
func NewPerson(entry RosterEntry) *Person {
	return &Person{
		Name:          strings.TrimSpace(entry.Name),
		Key:           NewNameKey(entry.Name),
		BasePoints:    entry.Points,
		AssignedDates: []string{},
		ReserveDates:  []string{},
		ReserveByWeek: make(map[int]int),
	}
}

// Load is the fairness value used to order candidates
func (p *Person) Load() float64 {
	return p.BasePoints + p.DutyPoints
}

// HoldsDate reports whether the person already has any slot on date.
// AssignedDates only ever grows in date order, so the scan stops early.
func (p *Person) HoldsDate(date string) bool {
	for i := len(p.AssignedDates) - 1; i >= 0; i-- {
		d := p.AssignedDates[i]
		if d == date {
			return true
		}
		if d < date {
			return false
		}
	}
	return false
}

// PrimaryCount is the number of AM/PM slots held
func (p *Person) PrimaryCount() int {
	return len(p.AssignedDates) - len(p.ReserveDates)
}

// BlockedDateSet maps a name key to its sorted, de-duplicated ISO dates
type BlockedDateSet map[NameKey][]string

// IsBlocked reports whether key declared date as unavailable
func (b BlockedDateSet) IsBlocked(key NameKey, date string) bool {
	_, found := slices.BinarySearch(b[key], date)
	return found
}

// Keys returns the declared name keys in ascending order
func (b BlockedDateSet) Keys() []NameKey {
	keys := make([]NameKey, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// DutyAssignmentDay is the roster of a single calendar day
type DutyAssignmentDay struct {
	Date      string   `json:"date"`
	Weekday   string   `json:"weekday"`
	AM        string   `json:"am"`
	PM        string   `json:"pm"`
	AMReserve []string `json:"am_reserve"`
	PMReserve []string `json:"pm_reserve"`
}

// NewDutyAssignmentDay returns an empty day
func NewDutyAssignmentDay(date, weekday string) DutyAssignmentDay {
	return DutyAssignmentDay{
		Date:      date,
		Weekday:   weekday,
		AMReserve: []string{},
		PMReserve: []string{},
	}
}

// Assign records name into the slot of the given kind
func (d *DutyAssignmentDay) Assign(kind SlotKind, name string) {
	switch kind {
	case SlotAM:
		d.AM = name
	case SlotPM:
		d.PM = name
	case SlotAMReserve1, SlotAMReserve2:
		d.AMReserve = append(d.AMReserve, name)
	case SlotPMReserve1, SlotPMReserve2:
		d.PMReserve = append(d.PMReserve, name)
	}
}

// Slot returns the name held in a slot, or "" when it is unfilled
func (d DutyAssignmentDay) Slot(kind SlotKind) string {
	switch kind {
	case SlotAM:
		return d.AM
	case SlotPM:
		return d.PM
	case SlotAMReserve1:
		return at(d.AMReserve, 0)
	case SlotAMReserve2:
		return at(d.AMReserve, 1)
	case SlotPMReserve1:
		return at(d.PMReserve, 0)
	case SlotPMReserve2:
		return at(d.PMReserve, 1)
	}
	return ""
}

// Names lists every filled slot of the day in slot order
func (d DutyAssignmentDay) Names() []string {
	var names []string
	for _, kind := range SlotOrder {
		if n := d.Slot(kind); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func at(names []string, i int) string {
	if i < len(names) {
		return names[i]
	}
	return ""
}

// ScheduleMonth is one DutyAssignmentDay per calendar day in ascending order
type ScheduleMonth []DutyAssignmentDay

// UnfilledSlots counts blank slots across the month
func (m ScheduleMonth) UnfilledSlots() int {
	unfilled := 0
	for _, day := range m {
		unfilled += len(SlotOrder) - len(day.Names())
	}
	return unfilled
}

// ConflictReason represents why a slot could not be filled
type ConflictReason struct {
	Date    string   `json:"date"`
	Slot    SlotKind `json:"slot"`
	Reasons []string `json:"reasons"`
}

// PersonStats summarises one person's load after a run
type PersonStats struct {
	Name          string   `json:"name"`
	BasePoints    float64  `json:"base_points"`
	DutyPoints    float64  `json:"duty_points"`
	PrimarySlots  int      `json:"primary_slots"`
	ReserveSlots  int      `json:"reserve_slots"`
	AssignedDates []string `json:"assigned_dates"`
}

// ScheduleInput is the data structure for the scheduling endpoint
type ScheduleInput struct {
	Roster  []RosterEntry `json:"roster" validate:"dive"`
	Blocked string        `json:"blocked"`
	Month   string        `json:"month" validate:"required"`
}

// BlockedInput is the data structure for the blocked-date parsing endpoint
type BlockedInput struct {
	Blocked string `json:"blocked"`
	Month   string `json:"month" validate:"required"`
}

// ScheduleResponse is the data structure for the scheduling result
type ScheduleResponse struct {
	Month         string           `json:"month"`
	Schedule      ScheduleMonth    `json:"schedule"`
	Blocked       BlockedDateSet   `json:"blocked"`
	Conflicts     []ConflictReason `json:"conflicts,omitempty"`
	UnfilledSlots int              `json:"unfilled_slots"`
	FairnessScore float64          `json:"fairness_score"`
	People        []PersonStats    `json:"people"`
}
