package graphslam

import (
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// extractEstimate zips the two independent axis solutions into the structured
// estimate. Pure reshaping; a length mismatch indicates a builder bug, not
// bad input.
func extractEstimate(xs, ys *mat.VecDense, numPoses, numLandmarks int) (Estimate, error) {
	if xs.Len() != ys.Len() {
		return Estimate{}, errors.Wrapf(ErrShape,
			"x solution has %d entries, y solution has %d", xs.Len(), ys.Len())
	}
	if xs.Len() != numPoses+numLandmarks {
		return Estimate{}, errors.Wrapf(ErrShape,
			"solution has %d entries, want %d poses + %d landmarks", xs.Len(), numPoses, numLandmarks)
	}

	est := Estimate{
		Poses:     make([]r2.Point, numPoses),
		Landmarks: make([]r2.Point, numLandmarks),
	}
	for i := range est.Poses {
		est.Poses[i] = r2.Point{X: xs.AtVec(i), Y: ys.AtVec(i)}
	}
	for i := range est.Landmarks {
		est.Landmarks[i] = r2.Point{X: xs.AtVec(numPoses + i), Y: ys.AtVec(numPoses + i)}
	}
	return est, nil
}
