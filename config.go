package physac

import (
	"fmt"
	"math"
	"time"
)

const (
	DefaultCapacity             = 64
	DefaultTimeStepMs           = 1.0 / 60.0 / 10.0 * 1000
	DefaultIterations           = 10
	DefaultCorrectionPercent    = 0.4
	DefaultPenetrationAllowance = 0.05
	DefaultGridCellSize         = 25.0
)

type Config struct {
	// Capacity is the fixed number of body slots.
	Capacity int `yaml:"capacity" json:"capacity"`
	// Gravity is in units per second squared. The default points down the screen (+y).
	Gravity    Vector2 `yaml:"gravity" json:"gravity"`
	TimeStepMs float64 `yaml:"timestep_ms" json:"timestep_ms"`
	Iterations int     `yaml:"iterations" json:"iterations"`

	CorrectionPercent    float64 `yaml:"correction_percent" json:"correction_percent"`
	PenetrationAllowance float64 `yaml:"penetration_allowance" json:"penetration_allowance"`

	// MaxSubSteps caps the ticks run by one Step call; 0 means no cap.
	MaxSubSteps int `yaml:"max_substeps" json:"max_substeps"`

	BroadPhase   BroadPhaseKind `yaml:"broadphase" json:"broadphase"`
	GridCellSize float64        `yaml:"grid_cell_size" json:"grid_cell_size"`
}

func DefaultConfig() Config {
	return Config{
		Capacity:             DefaultCapacity,
		Gravity:              Vector2{0, 9.81},
		TimeStepMs:           DefaultTimeStepMs,
		Iterations:           DefaultIterations,
		CorrectionPercent:    DefaultCorrectionPercent,
		PenetrationAllowance: DefaultPenetrationAllowance,
		BroadPhase:           BroadPhaseNaive,
		GridCellSize:         DefaultGridCellSize,
	}
}

func (c Config) Validate() error {
	if c.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", ErrInvalidParameter)
	}
	if _, err := timeStepDuration(c.TimeStepMs); err != nil {
		return err
	}
	if !finiteVec(c.Gravity) {
		return fmt.Errorf("%w: gravity %v is not finite", ErrInvalidParameter, c.Gravity)
	}
	if c.Iterations < 1 {
		return fmt.Errorf("%w: iterations must be at least 1", ErrInvalidParameter)
	}
	if !(c.CorrectionPercent >= 0 && c.CorrectionPercent <= 1) {
		return fmt.Errorf("%w: correction percent %v must be within [0, 1]", ErrInvalidParameter, c.CorrectionPercent)
	}
	if !(c.PenetrationAllowance >= 0) || math.IsInf(c.PenetrationAllowance, 0) {
		return fmt.Errorf("%w: penetration allowance %v must be finite and >= 0", ErrInvalidParameter, c.PenetrationAllowance)
	}
	if c.MaxSubSteps < 0 {
		return fmt.Errorf("%w: max substeps cannot be negative", ErrInvalidParameter)
	}
	if _, err := newBroadPhase(c.BroadPhase, c.GridCellSize); err != nil {
		return err
	}
	return nil
}

// timeStepDuration converts milliseconds to a whole number of nanoseconds so the
// accumulator is exact integer arithmetic.
func timeStepDuration(ms float64) (time.Duration, error) {
	if !(ms > 0) || math.IsInf(ms, 0) {
		return 0, fmt.Errorf("%w: timestep %vms must be > 0", ErrInvalidParameter, ms)
	}
	d := time.Duration(ms*float64(time.Millisecond) + 0.5)
	if d <= 0 {
		return 0, fmt.Errorf("%w: timestep %vms is below 1ns", ErrInvalidParameter, ms)
	}
	return d, nil
}
