package srs

import (
	"errors"
	"fmt"

	"github.com/arch2702/smart-study-scheduler/internal/domain"
)

// ErrInvalidParams is returned when scheduling parameters would break the
// guarantee that a scheduled review always lands on a later day.
var ErrInvalidParams = errors.New("invalid scheduling parameters")

// Params defines all configurable parameters for review scheduling.
// Intervals are expressed in days.
type Params struct {
	// BaseIntervals is the first interval after completion, per difficulty.
	// Harder material is reviewed sooner.
	BaseIntervals map[domain.Difficulty]float64

	// GrowthFactor multiplies the interval once per recorded review.
	GrowthFactor float64

	// MaxIntervalDays caps the interval regardless of review count.
	MaxIntervalDays float64
}

// ParamsConfig allows overriding the default parameters when creating a new
// Params instance. Zero values keep the default.
type ParamsConfig struct {
	EasyBaseDays    float64
	MediumBaseDays  float64
	HardBaseDays    float64
	GrowthFactor    float64
	MaxIntervalDays float64
}

// NewDefaultParams creates a new Params instance with default values:
// easy 4 days, medium 3 days, hard 2 days, growth ×1.5, capped at 30 days.
func NewDefaultParams() *Params {
	return &Params{
		BaseIntervals: map[domain.Difficulty]float64{
			domain.DifficultyEasy:   4,
			domain.DifficultyMedium: 3,
			domain.DifficultyHard:   2,
		},
		GrowthFactor:    1.5,
		MaxIntervalDays: 30,
	}
}

// NewParams creates a new Params instance with custom configuration.
func NewParams(config ParamsConfig) (*Params, error) {
	params := NewDefaultParams()

	if config.EasyBaseDays > 0 {
		params.BaseIntervals[domain.DifficultyEasy] = config.EasyBaseDays
	}
	if config.MediumBaseDays > 0 {
		params.BaseIntervals[domain.DifficultyMedium] = config.MediumBaseDays
	}
	if config.HardBaseDays > 0 {
		params.BaseIntervals[domain.DifficultyHard] = config.HardBaseDays
	}
	if config.GrowthFactor > 0 {
		params.GrowthFactor = config.GrowthFactor
	}
	if config.MaxIntervalDays > 0 {
		params.MaxIntervalDays = config.MaxIntervalDays
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}
	return params, nil
}

// Validate checks that every interval is at least one day and that intervals
// never shrink as reviews accumulate.
func (p *Params) Validate() error {
	for _, d := range []domain.Difficulty{domain.DifficultyEasy, domain.DifficultyMedium, domain.DifficultyHard} {
		base, ok := p.BaseIntervals[d]
		if !ok {
			return fmt.Errorf("%w: missing base interval for %s", ErrInvalidParams, d)
		}
		if base < 1 {
			return fmt.Errorf("%w: base interval for %s must be at least one day", ErrInvalidParams, d)
		}
		if base > p.MaxIntervalDays {
			return fmt.Errorf("%w: base interval for %s exceeds the maximum", ErrInvalidParams, d)
		}
	}
	if p.GrowthFactor < 1 {
		return fmt.Errorf("%w: growth factor must be at least 1", ErrInvalidParams)
	}
	return nil
}
