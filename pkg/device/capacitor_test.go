package device_test

import (
	"testing"

	"github.com/arclamp/circsim/pkg/device"
	"github.com/arclamp/circsim/pkg/matrix"
	"github.com/stretchr/testify/require"
)

func TestCapacitorIsOpenInDC(t *testing.T) {
	c := device.NewCapacitor("C1", []string{"1", "0"}, 1e-6)
	c.SetNodes([]int{1, 0})

	sys := matrix.NewReal(1)
	require.NoError(t, c.Stamp(sys, &device.Status{Mode: device.DCMode}))

	x, err := sys.Solve()
	require.Error(t, err) // no stamp at all: singular with nothing driving node 1
	require.Nil(t, x)
}

func TestCapacitorNortonCompanionInTransient(t *testing.T) {
	c := device.NewCapacitor("C1", []string{"1", "0"}, 1e-6)
	c.SetNodes([]int{1, 0})
	c.V0 = 2.0
	c.LoadInitialConditions()

	h := 1e-6
	sys := matrix.NewReal(1)
	require.NoError(t, c.Stamp(sys, &device.Status{Mode: device.TransientMode, TimeStep: h}))

	x, err := sys.Solve()
	require.NoError(t, err)
	// With no other stamp, I_eq/G_eq = V_prev exactly.
	require.InDelta(t, 2.0, x[1], 1e-9)
}

func TestCapacitorUpdateStateRollsVoltageForward(t *testing.T) {
	c := device.NewCapacitor("C1", []string{"1", "0"}, 1e-6)
	c.SetNodes([]int{1, 0})
	c.LoadInitialConditions()

	st := &device.Status{Mode: device.TransientMode, TimeStep: 1e-6}
	x := []float64{0, 3.5}
	c.UpdateState(x, st)

	sys := matrix.NewReal(1)
	require.NoError(t, c.Stamp(sys, st))
	out, err := sys.Solve()
	require.NoError(t, err)
	require.InDelta(t, 3.5, out[1], 1e-9)
}

func TestCapacitorACAdmittance(t *testing.T) {
	c := device.NewCapacitor("C1", []string{"1", "0"}, 1e-6)
	c.SetNodes([]int{1, 0})

	sys := matrix.NewComplex(1)
	require.NoError(t, c.Stamp(sys, &device.Status{Mode: device.ACMode, Frequency: 1000}))
	sys.AddComplexRHS(1, 1, 0)

	x, err := sys.Solve()
	require.NoError(t, err)
	require.InDelta(t, 0, real(x[1]), 1e-6)
	require.Less(t, imag(x[1]), 0.0) // 1/(jwC) has negative imaginary part
}
