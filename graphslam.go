// Package graphslam implements offline graph-based simultaneous localization
// and mapping for a robot moving in a bounded planar world of fixed point
// landmarks. Given the full sequence of noisy motion commands and noisy
// landmark sightings, Solve jointly reconstructs the maximum-likelihood
// trajectory and map by assembling and solving an information-form linear
// system per axis.
package graphslam

import (
	"context"
	"sync"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.opencensus.io/trace"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrConfiguration denotes invalid solver parameters.
	ErrConfiguration = errors.New("invalid solver configuration")

	// ErrData denotes a structurally invalid observation sequence.
	ErrData = errors.New("malformed observation sequence")

	// ErrSingularSystem denotes a constraint system without a unique solution,
	// e.g. a landmark that was never measured.
	ErrSingularSystem = errors.New("constraint system is singular")

	// ErrShape denotes an internal mismatch between the per-axis solutions.
	ErrShape = errors.New("axis solutions have mismatched shapes")
)

// Measurement is one noisy sighting of a landmark, expressed as a relative
// offset from the pose at which it was taken.
type Measurement struct {
	Landmark int
	Offset   r2.Point
}

// TimeStep pairs the measurements taken at one pose with the motion command
// that carried the robot to the next pose.
type TimeStep struct {
	Measurements []Measurement
	Motion       r2.Point
}

// Params configures a single solve.
type Params struct {
	// WorldSize is the extent of the square world. It only sets the anchor
	// value for the initial pose (the world center); unknowns are not clamped
	// to it.
	WorldSize float64

	// MotionNoise and MeasurementNoise are the noise magnitudes of the two
	// constraint types. Each constraint is weighted by the inverse of its
	// noise magnitude.
	MotionNoise      float64
	MeasurementNoise float64

	// NumLandmarks is the number of landmark unknowns to solve for. Every
	// landmark must be referenced by at least one measurement or the system
	// is singular.
	NumLandmarks int
}

// Validate checks that the parameters describe a well-formed solve.
func (p Params) Validate() error {
	if p.WorldSize <= 0 {
		return errors.Wrapf(ErrConfiguration, "world_size must be positive, got %v", p.WorldSize)
	}
	if p.MotionNoise <= 0 {
		return errors.Wrapf(ErrConfiguration, "motion_noise must be positive, got %v", p.MotionNoise)
	}
	if p.MeasurementNoise <= 0 {
		return errors.Wrapf(ErrConfiguration, "measurement_noise must be positive, got %v", p.MeasurementNoise)
	}
	if p.NumLandmarks < 0 {
		return errors.Wrapf(ErrConfiguration, "num_landmarks must be non-negative, got %d", p.NumLandmarks)
	}
	return nil
}

// Estimate is the jointly solved trajectory and map: one pose per time step
// (initial pose included) and one position per landmark.
type Estimate struct {
	Poses     []r2.Point
	Landmarks []r2.Point
}

// Solve consumes the complete observation sequence and returns the
// maximum-likelihood estimate of every pose and landmark position. The x and
// y axes are structurally identical and independent, so they are assembled
// and solved in parallel. The result is deterministic for fixed inputs.
func Solve(ctx context.Context, steps []TimeStep, params Params) (Estimate, error) {
	_, span := trace.StartSpan(ctx, "graphslam::Solve")
	defer span.End()

	if err := params.Validate(); err != nil {
		return Estimate{}, err
	}
	if err := validateSteps(steps, params.NumLandmarks); err != nil {
		return Estimate{}, err
	}

	var (
		wg        sync.WaitGroup
		solutions [numAxes]*mat.VecDense
		axisErrs  [numAxes]error
	)
	for axis := 0; axis < numAxes; axis++ {
		wg.Add(1)
		go func(axis int) {
			defer wg.Done()
			sys := buildAxisSystem(axis, steps, params)
			solutions[axis], axisErrs[axis] = solveSystem(sys)
		}(axis)
	}
	wg.Wait()
	if err := multierr.Combine(axisErrs[:]...); err != nil {
		return Estimate{}, err
	}

	return extractEstimate(solutions[axisX], solutions[axisY], len(steps)+1, params.NumLandmarks)
}
