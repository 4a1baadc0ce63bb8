package device_test

import (
	"testing"

	"github.com/arclamp/circsim/pkg/device"
	"github.com/arclamp/circsim/pkg/matrix"
	"github.com/stretchr/testify/require"
)

func TestInductorIsShortInDC(t *testing.T) {
	l := device.NewInductor("L1", []string{"1", "0"}, 1e-3)
	l.SetNodes([]int{1, 0})
	l.SetBranchIndex(2)

	sys := matrix.NewReal(2)
	require.NoError(t, l.Stamp(sys, &device.Status{Mode: device.DCMode}))
	// Drive node 1 with a 5V ideal source through branch 2's own current
	// row is already the inductor's branch; add an independent source via
	// a second branch is unnecessary — just force V1 via a stiff pull.
	sys.AddElement(1, 1, 1e9)
	sys.AddRHS(1, 5e9)

	x, err := sys.Solve()
	require.NoError(t, err)
	require.InDelta(t, 0.0, x[1], 1e-3) // shorted to ground (node 2 = 0)
}

func TestInductorCompanionInTransient(t *testing.T) {
	l := device.NewInductor("L1", []string{"1", "0"}, 1e-3)
	l.SetNodes([]int{1, 0})
	l.SetBranchIndex(2)
	l.I0 = 0.5
	l.LoadInitialConditions()

	h := 1e-9
	sys := matrix.NewReal(2)
	require.NoError(t, l.Stamp(sys, &device.Status{Mode: device.TransientMode, TimeStep: h}))
	sys.AddElement(1, 1, 1) // a 1-ohm load so node 1 isn't floating alone

	x, err := sys.Solve()
	require.NoError(t, err)
	// h is tiny relative to L/R: branch current should stay close to I_prev.
	require.InDelta(t, 0.5, x[2], 1e-3)
}

func TestInductorUpdateStateRollsCurrentForward(t *testing.T) {
	l := device.NewInductor("L1", []string{"1", "0"}, 1e-3)
	l.SetNodes([]int{1, 0})
	l.SetBranchIndex(2)

	x := []float64{0, 0, 1.25}
	l.UpdateState(x, &device.Status{Mode: device.TransientMode})

	i, ok := l.Probe("current", []float64{0, 0, 1.25})
	require.True(t, ok)
	require.InDelta(t, 1.25, i, 1e-12)

	// The rolled-forward I_prev drives the next transient stamp: with h tiny
	// relative to L/R the branch current stays at 1.25.
	sys := matrix.NewReal(2)
	require.NoError(t, l.Stamp(sys, &device.Status{Mode: device.TransientMode, TimeStep: 1e-9}))
	sys.AddElement(1, 1, 1) // a 1-ohm load so node 1 isn't floating alone
	out, err := sys.Solve()
	require.NoError(t, err)
	require.InDelta(t, 1.25, out[2], 1e-3)
}
