package circuit

import (
	"math"
	"strings"
	"sync"

	"github.com/arclamp/circsim/pkg/cktserr"
	"github.com/arclamp/circsim/pkg/device"
	"github.com/arclamp/circsim/pkg/matrix"
	"github.com/arclamp/circsim/pkg/node"
)

// DefaultPointsPerDecade matches the frequency-grid recommendation in §4.7.
const DefaultPointsPerDecade = 20

// ACSweep linearizes about the most recent DC operating point (running
// DCAnalysis first if the circuit hasn't been solved) and solves one
// complex linear system per frequency on a log-spaced grid from fStart to
// fStop. Every diode reuses the small-signal conductance cached by its
// last Relinearize call — no Newton loop runs per frequency. Frequencies
// are independent, so the sweep fans out across goroutines and writes
// into a preallocated, index-addressed results slice, matching the grid
// order on return.
func (c *Circuit) ACSweep(probes []string, fStart, fStop float64, pointsPerDecade int) ([]float64, [][]complex128, error) {
	if err := c.ensureDC(); err != nil {
		return nil, nil, err
	}
	if pointsPerDecade <= 0 {
		pointsPerDecade = DefaultPointsPerDecade
	}
	if fStart <= 0 || fStop < fStart {
		return nil, nil, cktserr.Wrap(cktserr.ErrInvalidParameter, "ac sweep requires 0 < f_start <= f_stop")
	}

	freqs := generateFrequencyGrid(fStart, fStop, pointsPerDecade)
	series := make([][]complex128, len(freqs))
	errs := make([]error, len(freqs))

	var wg sync.WaitGroup
	for i, f := range freqs {
		wg.Add(1)
		go func(i int, f float64) {
			defer wg.Done()
			row, err := c.acSolveAt(f, probes)
			series[i] = row
			errs[i] = err
		}(i, f)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return freqs, series, err
		}
	}
	return freqs, series, nil
}

func (c *Circuit) acSolveAt(freq float64, probes []string) ([]complex128, error) {
	st := &device.Status{Mode: device.ACMode, Frequency: freq}
	sys := matrix.NewComplex(c.size)
	for _, d := range c.devices.All() {
		if err := d.Stamp(sys, st); err != nil {
			return nil, err
		}
	}
	x, err := sys.Solve()
	if err != nil {
		return nil, err
	}

	row := make([]complex128, len(probes))
	for i, p := range probes {
		v, err := c.acProbeComplex(p, x)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

// acProbeComplex mirrors probeValue over a complex solution vector: a bare
// node name resolves to its complex voltage, "comp.current"/"comp.voltage"
// to the device's branch current or terminal voltage phasor. Diode
// internal_node and other real-only probes are not meaningful in AC mode.
func (c *Circuit) acProbeComplex(name string, x []complex128) (complex128, error) {
	if dotIdx := strings.IndexByte(name, '.'); dotIdx >= 0 {
		devName, suffix := name[:dotIdx], name[dotIdx+1:]
		dev, ok := c.devices.Lookup(devName)
		if !ok {
			return 0, cktserr.Wrap(cktserr.ErrUnknownVariable, "no such component %q", devName)
		}
		switch suffix {
		case "current":
			bi := dev.BranchIndex()
			if bi == 0 {
				// Resistive/reactive devices with no branch unknown: current
				// is derived from the terminal voltage phasor via the AC
				// stamp's own admittance, which acProbeComplex does not have
				// direct access to; callers probe node voltages instead.
				return 0, cktserr.Wrap(cktserr.ErrUnknownVariable, "%s has no branch current in ac mode", devName)
			}
			return x[bi], nil
		case "voltage":
			nodes := dev.Nodes()
			return acTerminalVoltage(nodes, x), nil
		default:
			return 0, cktserr.Wrap(cktserr.ErrUnknownVariable, "%s has no ac probe %q", devName, suffix)
		}
	}

	if node.IsGround(name) {
		return 0, nil
	}
	idx, ok := c.nodes.Lookup(name)
	if !ok {
		return 0, cktserr.Wrap(cktserr.ErrUnknownVariable, "no such node %q", name)
	}
	if idx == node.Ground {
		return 0, nil
	}
	return x[idx], nil
}

func acTerminalVoltage(nodes []int, x []complex128) complex128 {
	var v1, v2 complex128
	if nodes[0] != 0 {
		v1 = x[nodes[0]]
	}
	if nodes[1] != 0 {
		v2 = x[nodes[1]]
	}
	return v1 - v2
}

// generateFrequencyGrid lays out a logarithmic sweep at pointsPerDecade
// per decade, grounded on
// _examples/edp1096-toy-spice/pkg/analysis/ac.go's generateFrequencyPoints
// ("DEC" mode), generalized from a fixed point count to a fixed density.
func generateFrequencyGrid(fStart, fStop float64, pointsPerDecade int) []float64 {
	if fStart == fStop {
		return []float64{fStart}
	}
	decades := math.Log10(fStop / fStart)
	n := int(decades*float64(pointsPerDecade)) + 1
	if n < 2 {
		n = 2
	}
	freqs := make([]float64, n)
	logStart := math.Log10(fStart)
	logStop := math.Log10(fStop)
	step := (logStop - logStart) / float64(n-1)
	for i := 0; i < n; i++ {
		freqs[i] = math.Pow(10, logStart+float64(i)*step)
	}
	freqs[n-1] = fStop
	return freqs
}
