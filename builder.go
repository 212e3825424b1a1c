package graphslam

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"
)

const (
	axisX = iota
	axisY
	numAxes
)

// anchorWeight pins the initial pose to the world center. It must exceed any
// single noise-derived weight, which holds under the convention that noise
// magnitudes are at least 1.
const anchorWeight = 1.0

// axisSystem is one axis of the constraint graph in information form:
// omega * mu = xi over the stacked unknowns (poses 0..T, then landmarks
// 0..L-1).
type axisSystem struct {
	omega *mat.SymDense
	xi    *mat.VecDense
}

// validateSteps checks the observation sequence for out-of-range landmark
// references and non-finite values. All offending entries are reported, not
// just the first.
func validateSteps(steps []TimeStep, numLandmarks int) error {
	var errs error
	for t, step := range steps {
		if !isFinite(step.Motion) {
			errs = multierr.Append(errs, errors.Wrapf(ErrData, "step %d: non-finite motion", t))
		}
		for i, m := range step.Measurements {
			if m.Landmark < 0 || m.Landmark >= numLandmarks {
				errs = multierr.Append(errs, errors.Wrapf(ErrData,
					"step %d measurement %d: landmark index %d out of range [0, %d)",
					t, i, m.Landmark, numLandmarks))
				continue
			}
			if !isFinite(m.Offset) {
				errs = multierr.Append(errs, errors.Wrapf(ErrData,
					"step %d measurement %d: non-finite offset", t, i))
			}
		}
	}
	return errs
}

func isFinite(p r2.Point) bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

func component(p r2.Point, axis int) float64 {
	if axis == axisX {
		return p.X
	}
	return p.Y
}

// buildAxisSystem assembles the information matrix and vector for one axis
// from the full observation sequence. Constraint accumulation is commutative,
// so the ordering below (anchor, then per-step motion and measurements) is
// only a convention.
func buildAxisSystem(axis int, steps []TimeStep, params Params) *axisSystem {
	numPoses := len(steps) + 1
	n := numPoses + params.NumLandmarks
	sys := &axisSystem{
		omega: mat.NewSymDense(n, nil),
		xi:    mat.NewVecDense(n, nil),
	}

	sys.omega.SetSym(0, 0, anchorWeight)
	sys.xi.SetVec(0, anchorWeight*params.WorldSize/2)

	motionWeight := 1 / params.MotionNoise
	measurementWeight := 1 / params.MeasurementNoise
	for t, step := range steps {
		sys.addConstraint(t, t+1, component(step.Motion, axis), motionWeight)
		for _, m := range step.Measurements {
			sys.addConstraint(t, numPoses+m.Landmark, component(m.Offset, axis), measurementWeight)
		}
	}
	return sys
}

// addConstraint accumulates the symmetric quadratic penalty encoding
// u_j - u_i ≈ value with the given inverse-variance weight. Each call touches
// exactly three matrix cells (the (j,i) mirror is implied by SymDense) and
// two vector cells.
func (s *axisSystem) addConstraint(i, j int, value, weight float64) {
	s.omega.SetSym(i, i, s.omega.At(i, i)+weight)
	s.omega.SetSym(j, j, s.omega.At(j, j)+weight)
	s.omega.SetSym(i, j, s.omega.At(i, j)-weight)
	s.xi.SetVec(i, s.xi.AtVec(i)-weight*value)
	s.xi.SetVec(j, s.xi.AtVec(j)+weight*value)
}
