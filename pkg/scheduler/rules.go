package scheduler

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/models"
)

// reserveCandidatesWanted is the pool size below which the weekly reserve
// limit is relaxed.
const reserveCandidatesWanted = 2

var validate = validator.New(validator.WithRequiredStructEnabled())

// Rules are the tunable constants of one engine run
type Rules struct {
	// HighPointThreshold is the base-point level from which CapHigh applies
	HighPointThreshold float64 `yaml:"high_point_threshold" json:"high_point_threshold" validate:"gte=0"`
	CapLow             float64 `yaml:"cap_low" json:"cap_low" validate:"gte=0"`
	CapHigh            float64 `yaml:"cap_high" json:"cap_high" validate:"gte=0"`
	// ReserveWeeklyStart is the reserve slots a person may hold per ISO week
	// before the limit has to be relaxed; ReserveWeeklyCeiling bounds the relaxation.
	ReserveWeeklyStart   int `yaml:"reserve_weekly_start" json:"reserve_weekly_start" validate:"gte=0"`
	ReserveWeeklyCeiling int `yaml:"reserve_weekly_ceiling" json:"reserve_weekly_ceiling" validate:"gtefield=ReserveWeeklyStart"`
}

// DefaultRules returns the rules used when nothing is configured
func DefaultRules() Rules {
	return Rules{
		HighPointThreshold:   14,
		CapLow:               8,
		CapHigh:              2,
		ReserveWeeklyStart:   2,
		ReserveWeeklyCeiling: 7,
	}
}

// Validate checks the rules are usable
func (r Rules) Validate() error {
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("%w: rules: %v", models.ErrInvalidInput, err)
	}
	return nil
}

// Cap returns the monthly duty-point budget of a person
func (r Rules) Cap(p *models.Person) float64 {
	if p.BasePoints >= r.HighPointThreshold {
		return r.CapHigh
	}
	return r.CapLow
}
