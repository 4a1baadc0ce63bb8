package device_test

import (
	"testing"

	"github.com/arclamp/circsim/pkg/device"
	"github.com/arclamp/circsim/pkg/matrix"
	"github.com/stretchr/testify/require"
)

func TestResistorStampsSymmetricConductance(t *testing.T) {
	// A 5V ideal source at node 1 through branch 2, with R1 tying node 1
	// to ground: checks the stamped conductance reproduces Ohm's law.
	r := device.NewResistor("R1", []string{"1", "0"}, 1000)
	r.SetNodes([]int{1, 0})

	sys := matrix.NewReal(2)
	require.NoError(t, r.Stamp(sys, &device.Status{Mode: device.DCMode}))
	sys.AddElement(1, 2, 1)
	sys.AddElement(2, 1, 1)
	sys.AddRHS(2, 5)

	x, err := sys.Solve()
	require.NoError(t, err)
	require.InDelta(t, 5.0, x[1], 1e-9)
	require.InDelta(t, 5.0/1000.0, r.Current(x), 1e-9)
}

func TestResistorClearsDirtyOnStamp(t *testing.T) {
	r := device.NewResistor("R1", []string{"1", "2"}, 1000)
	r.SetNodes([]int{1, 2})
	r.MarkDirty()
	require.True(t, r.Dirty())

	sys := matrix.NewReal(2)
	require.NoError(t, r.Stamp(sys, &device.Status{Mode: device.DCMode}))
	require.False(t, r.Dirty())
}

func TestResistorProbeVoltageAndCurrent(t *testing.T) {
	r := device.NewResistor("R1", []string{"1", "0"}, 100)
	r.SetNodes([]int{1, 0})

	x := []float64{0, 10}
	v, ok := r.Probe("voltage", x)
	require.True(t, ok)
	require.InDelta(t, 10.0, v, 1e-12)

	i, ok := r.Probe("current", x)
	require.True(t, ok)
	require.InDelta(t, 0.1, i, 1e-12)

	_, ok = r.Probe("bogus", x)
	require.False(t, ok)
}
