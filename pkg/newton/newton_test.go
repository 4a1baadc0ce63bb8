package newton_test

import (
	"errors"
	"testing"

	"github.com/arclamp/circsim/pkg/cktserr"
	"github.com/arclamp/circsim/pkg/matrix"
	"github.com/arclamp/circsim/pkg/newton"
	"github.com/stretchr/testify/require"
)

// linearProblem is a trivial x=5 equation: Relinearize is a no-op, so the
// very first Newton step already lands on the exact answer.
type linearProblem struct{}

func (linearProblem) Size() int                    { return 1 }
func (linearProblem) Relinearize(x []float64) error { return nil }
func (linearProblem) Stamp(sys matrix.System) error {
	sys.AddElement(1, 1, 1)
	sys.AddRHS(1, 5)
	return nil
}

func TestRunConvergesOnLinearProblem(t *testing.T) {
	x, iters, err := newton.Run(linearProblem{}, nil, newton.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, iters)
	require.InDelta(t, 5.0, x[1], 1e-9)
}

// oscillatingProblem alternates its RHS every call, so the iterate never
// settles and MaxIter is always exhausted.
type oscillatingProblem struct {
	calls int
}

func (p *oscillatingProblem) Size() int                    { return 1 }
func (p *oscillatingProblem) Relinearize(x []float64) error { return nil }
func (p *oscillatingProblem) Stamp(sys matrix.System) error {
	p.calls++
	sys.AddElement(1, 1, 1)
	if p.calls%2 == 0 {
		sys.AddRHS(1, 1)
	} else {
		sys.AddRHS(1, -1)
	}
	return nil
}

func TestRunReportsNonConvergence(t *testing.T) {
	opts := newton.Options{MaxIter: 5, AbsTol: 1e-9, RelTol: 1e-6}
	x, iters, err := newton.Run(&oscillatingProblem{}, nil, opts)
	require.Error(t, err)
	require.True(t, errors.Is(err, cktserr.ErrNewtonDidNotConverge))
	require.Nil(t, x)
	require.Equal(t, opts.MaxIter, iters)
}

// failingProblem returns an error from Stamp on the first call, which Run
// must propagate immediately rather than retry.
type failingProblem struct{}

func (failingProblem) Size() int                    { return 1 }
func (failingProblem) Relinearize(x []float64) error { return nil }
func (failingProblem) Stamp(sys matrix.System) error {
	return errors.New("boom")
}

func TestRunPropagatesStampError(t *testing.T) {
	x, iters, err := newton.Run(failingProblem{}, nil, newton.DefaultOptions())
	require.Error(t, err)
	require.Nil(t, x)
	require.Equal(t, 0, iters)
}

func TestDefaultOptionsMatchesDesign(t *testing.T) {
	opts := newton.DefaultOptions()
	require.Equal(t, 100, opts.MaxIter)
	require.InDelta(t, 1e-9, opts.AbsTol, 0)
	require.InDelta(t, 1e-6, opts.RelTol, 0)
}
