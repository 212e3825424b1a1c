package graphslam

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// maxConditionNumber bounds how ill-conditioned a factorizable system may be
// before it is reported as singular rather than solved to garbage.
const maxConditionNumber = 1e12

// solveSystem computes mu = omega^-1 * xi for one axis. The information
// matrix is symmetric by construction and positive definite whenever the
// constraint graph is connected and anchored, so Cholesky factorization
// doubles as the singularity check.
func solveSystem(sys *axisSystem) (*mat.VecDense, error) {
	var chol mat.Cholesky
	if ok := chol.Factorize(sys.omega); !ok {
		return nil, errors.Wrap(ErrSingularSystem,
			"information matrix is not positive definite; check that every landmark is measured and every pose is connected")
	}
	if cond := chol.Cond(); cond > maxConditionNumber {
		return nil, errors.Wrapf(ErrSingularSystem,
			"information matrix condition number %.3g exceeds %.3g", cond, maxConditionNumber)
	}

	mu := mat.NewVecDense(sys.xi.Len(), nil)
	if err := chol.SolveVecTo(mu, sys.xi); err != nil {
		return nil, errors.Wrapf(ErrSingularSystem, "solving information system: %v", err)
	}
	return mu, nil
}
