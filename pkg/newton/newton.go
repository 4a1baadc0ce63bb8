// Package newton implements the Newton Driver: the single nonlinear
// iteration loop shared by DC operating point, each transient step, and the
// DC point an AC sweep linearizes about. The three analyses that used to
// each carry their own copy of this loop (see
// _examples/edp1096-toy-spice/pkg/analysis/{op,dc,tran}.go) now share it.
package newton

import (
	"math"

	"github.com/arclamp/circsim/pkg/cktserr"
	"github.com/arclamp/circsim/pkg/matrix"
)

// Options bounds the iteration: MaxIter caps the loop, and a step is
// accepted once ‖Δx‖∞ ≤ AbsTol + RelTol·‖x‖∞.
type Options struct {
	MaxIter int
	AbsTol  float64
	RelTol  float64
}

// DefaultOptions matches the tolerances named in the component design.
func DefaultOptions() Options {
	return Options{MaxIter: 100, AbsTol: 1e-9, RelTol: 1e-6}
}

// Problem is what the driver needs from a circuit to iterate: how large the
// real system is, how to relinearize nonlinear devices at an iterate, and
// how to stamp every device (linear and nonlinear alike) into a fresh
// system.
type Problem interface {
	Size() int
	Relinearize(x []float64) error
	Stamp(sys matrix.System) error
}

// Run iterates until ‖Δx‖∞ converges or MaxIter is exhausted, returning the
// converged solution (1-based, index 0 unused) and the iteration count. x0
// seeds the first iterate — the previous accepted solution per §4.5, or nil
// for the all-zero initial guess a circuit's very first DC solve uses.
func Run(p Problem, x0 []float64, opts Options) ([]float64, int, error) {
	size := p.Size()
	x := make([]float64, size+1)
	if x0 != nil {
		copy(x, x0)
	}

	for iter := 0; iter < opts.MaxIter; iter++ {
		if err := p.Relinearize(x); err != nil {
			return nil, iter, err
		}

		sys := matrix.NewReal(size)
		if err := p.Stamp(sys); err != nil {
			return nil, iter, err
		}

		xNew, err := sys.Solve()
		if err != nil {
			return nil, iter, err
		}

		delta := infNormDiff(xNew, x)
		xNorm := infNorm(xNew)
		x = xNew

		if delta <= opts.AbsTol+opts.RelTol*xNorm {
			return x, iter + 1, nil
		}
	}

	return nil, opts.MaxIter, cktserr.Wrap(cktserr.ErrNewtonDidNotConverge, "no convergence within %d iterations", opts.MaxIter)
}

func infNorm(v []float64) float64 {
	max := 0.0
	for _, vi := range v {
		if a := math.Abs(vi); a > max {
			max = a
		}
	}
	return max
}

func infNormDiff(a, b []float64) float64 {
	max := 0.0
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > max {
			max = d
		}
	}
	return max
}
