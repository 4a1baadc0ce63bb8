package transient_test

import (
	"testing"

	"github.com/arclamp/circsim/pkg/device"
	"github.com/arclamp/circsim/pkg/transient"
	"github.com/stretchr/testify/require"
)

// rcCircuit builds a single-node RC circuit: C1 (V0=5) and R1=1k, both tying
// node 1 to ground. size=1 since neither device needs a branch unknown.
func rcCircuit(v0, r, capF float64) (*device.Set, int) {
	set := device.NewSet()
	c := device.NewCapacitor("C1", []string{"1", "0"}, capF)
	c.V0 = v0
	res := device.NewResistor("R1", []string{"1", "0"}, r)
	set.Add(c)
	set.Add(res)
	return set, 1
}

func TestRunAlwaysRecordsTBeginFromInitialConditions(t *testing.T) {
	set, size := rcCircuit(5.0, 1000, 1e-6)
	st := transient.New(set, size)

	samples, err := st.Run(0, 0, 1e-4)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	require.Equal(t, 0.0, samples[0].Time)
	require.InDelta(t, 5.0, samples[0].X[1], 1e-6)
}

func TestRunDischargesRCAccordingToBackwardEuler(t *testing.T) {
	const v0, r, capF, h = 5.0, 1000.0, 1e-6, 1e-4
	set, size := rcCircuit(v0, r, capF)
	st := transient.New(set, size)

	samples, err := st.Run(0, 10*h, h)
	require.NoError(t, err)
	require.Len(t, samples, 11) // t_begin plus 10 steps

	g := 1.0 / r
	want := v0
	for i := 0; i < 10; i++ {
		geq := capF / h
		want = (geq * want) / (g + geq)
	}
	require.InDelta(t, want, samples[len(samples)-1].X[1], 1e-9)
}

func TestContinueCarriesHistoryForward(t *testing.T) {
	const v0, r, capF, h = 5.0, 1000.0, 1e-6, 1e-4
	setA, sizeA := rcCircuit(v0, r, capF)
	stA := transient.New(setA, sizeA)

	samplesA, err := stA.Run(0, 5*h, h)
	require.NoError(t, err)
	lastA := samplesA[len(samplesA)-1]

	more, err := stA.Continue(lastA.Time, 5*h, h)
	require.NoError(t, err)
	require.Len(t, more, 5)

	// A single 10-step run from the same ICs must land on the same value.
	setB, sizeB := rcCircuit(v0, r, capF)
	stB := transient.New(setB, sizeB)
	samplesB, err := stB.Run(0, 10*h, h)
	require.NoError(t, err)

	require.InDelta(t, samplesB[len(samplesB)-1].X[1], more[len(more)-1].X[1], 1e-9)
	require.InDelta(t, lastA.Time+5*h, more[len(more)-1].Time, 1e-12)
}

func TestLastStepReportsMostRecentTimeStep(t *testing.T) {
	set, size := rcCircuit(5.0, 1000, 1e-6)
	st := transient.New(set, size)
	_, err := st.Run(0, 1e-3, 2e-4)
	require.NoError(t, err)
	require.InDelta(t, 2e-4, st.LastStep(), 1e-12)
}

func TestAdvanceRejectsNonPositiveTimeStep(t *testing.T) {
	set, size := rcCircuit(5.0, 1000, 1e-6)
	st := transient.New(set, size)
	_, err := st.Run(0, 1e-3, 0)
	require.Error(t, err)
}
