package dynamo

import "errors"

// Newton iteration limits shared by the ray tracer, the equipotential
// follower, and cycle continuation.
const (
	newtonMaxIters = 16
	newtonMinErr   = 1e-12
	newtonMaxErr   = 1e-5
)

// ErrNaN reports that an iteration produced an invalid value. The
// partial state before the breakdown accompanies the error.
var ErrNaN = errors.New("dynamo: NaN encountered during iteration")

// ErrNoConvergence reports that Newton's method exhausted its iteration
// cap outside the acceptance tolerance. The best estimate found is still
// returned alongside the error.
var ErrNoConvergence = errors.New("dynamo: Newton iteration did not converge")

// evalFunc evaluates a function and its derivative at z.
type evalFunc func(z complex128) (f, df complex128)

// findTargetNewton drives z from start toward a solution of f(z) = target.
//
// Converges when a step falls below the minimum error threshold; after
// the iteration cap, the last step is accepted if it is within tol.
// The final value and derivative are returned in every case so a caller
// can continue from partial progress.
func findTargetNewton(fdf evalFunc, start, target complex128, tol float64) (z, f, df complex128, err error) {
	z = start
	zOld := start

	for i := 0; i < newtonMaxIters; i++ {
		zOld = z
		f, df = fdf(z)
		z += (target - f) / df

		if DistSqr(z, zOld) < newtonMinErr {
			return z, f, df, nil
		}
		if isNaNC(z) {
			return z, f, df, ErrNaN
		}
	}

	if DistSqr(z, zOld) < tol {
		return z, f, df, nil
	}
	return z, f, df, ErrNoConvergence
}

// findRootNewton drives z from start toward a zero of f.
func findRootNewton(fdf evalFunc, start complex128) (z, f, df complex128, err error) {
	z = start
	zOld := start

	for i := 0; i < newtonMaxIters; i++ {
		zOld = z
		f, df = fdf(z)
		z -= f / df

		if DistSqr(z, zOld) < newtonMinErr {
			return z, f, df, nil
		}
		if isNaNC(z) {
			return z, f, df, ErrNaN
		}
	}

	if DistSqr(z, zOld) < newtonMaxErr {
		return z, f, df, nil
	}
	return z, f, df, ErrNoConvergence
}
