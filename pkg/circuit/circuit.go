// Package circuit implements the Analysis Facade: the public surface that
// parses a netlist, owns the Node Table and Component Set, and drives DC,
// transient, and AC analyses while tracking the caller-visible state
// machine. Grounded on
// _examples/edp1096-toy-spice/pkg/circuit/circuit.go's node/branch
// assignment and solve/update lifecycle, generalized to the unified
// Newton Driver in pkg/newton instead of the teacher's three duplicated
// doNRiter loops, and on
// _examples/edp1096-toy-spice/pkg/analysis/{op,dc}.go for the facade's
// state-machine transitions.
package circuit

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/arclamp/circsim/pkg/cktserr"
	"github.com/arclamp/circsim/pkg/device"
	"github.com/arclamp/circsim/pkg/matrix"
	"github.com/arclamp/circsim/pkg/netlist"
	"github.com/arclamp/circsim/pkg/newton"
	"github.com/arclamp/circsim/pkg/node"
	"github.com/arclamp/circsim/pkg/transient"
	"github.com/arclamp/circsim/pkg/util"
)

// State is the facade's caller-visible lifecycle (§4.8).
type State int

const (
	Unsolved State = iota
	DCSolved
	TransientRunning
)

func (s State) String() string {
	switch s {
	case Unsolved:
		return "unsolved"
	case DCSolved:
		return "dc-solved"
	case TransientRunning:
		return "transient-running"
	default:
		return "unknown"
	}
}

// Circuit is the built, ready-to-solve circuit: a fixed Node Table and
// Component Set plus whatever state the most recent analysis left behind.
type Circuit struct {
	nodes   *node.Table
	devices *device.Set
	size    int // total unknowns: nodes + branch currents

	state State
	x     []float64 // most recently solved vector (1-based)

	stepper      *transient.Stepper
	tranLast     float64 // time of the last recorded transient sample
	tranProbes   []string
	tranTimeStep float64 // reported default when the caller left it unspecified

	log *logrus.Entry
}

func newCircuit() *Circuit {
	return &Circuit{
		nodes:   node.New(),
		devices: device.NewSet(),
		log:     logrus.WithField("component", "circuit"),
	}
}

// BuildFromString parses a netlist and assembles the Node Table and
// Component Set. Structural mutation is not supported afterward — only
// parameter mutation through GetComponentForModification.
func BuildFromString(text string) (*Circuit, error) {
	specs, err := netlist.Parse(text)
	if err != nil {
		return nil, err
	}

	c := newCircuit()

	// Pass 1: intern every node referenced, so branch indices (assigned
	// next) start past the full node range.
	for _, spec := range specs {
		for _, n := range spec.Nodes {
			c.nodes.Intern(n)
		}
	}

	branchIdx := c.nodes.Size() + 1
	for _, spec := range specs {
		dev, needsBranch, err := buildDevice(spec)
		if err != nil {
			return nil, err
		}
		nodeIdx := make([]int, len(spec.Nodes))
		for i, n := range spec.Nodes {
			nodeIdx[i], _ = c.nodes.Lookup(n)
		}
		dev.SetNodes(nodeIdx)
		if needsBranch {
			dev.SetBranchIndex(branchIdx)
			branchIdx++
		}
		c.devices.Add(dev)
	}

	c.size = branchIdx - 1
	c.log.WithFields(logrus.Fields{"nodes": c.nodes.Size(), "devices": c.devices.Len(), "unknowns": c.size}).Info("circuit built")
	return c, nil
}

// buildDevice constructs the Device for one parsed element, reporting
// whether it needs a branch-current unknown (voltage sources and
// inductors; resistors, capacitors, and diodes do not).
func buildDevice(spec netlist.ElementSpec) (device.Device, bool, error) {
	switch spec.Kind {
	case "R":
		if spec.Value <= 0 {
			return nil, false, cktserr.Wrap(cktserr.ErrInvalidParameter, "resistor %s: resistance must be > 0", spec.Name)
		}
		return device.NewResistor(spec.Name, spec.Nodes, spec.Value), false, nil

	case "C":
		if spec.Value <= 0 {
			return nil, false, cktserr.Wrap(cktserr.ErrInvalidParameter, "capacitor %s: capacitance must be > 0", spec.Name)
		}
		c := device.NewCapacitor(spec.Name, spec.Nodes, spec.Value)
		if spec.HasV0 {
			c.V0 = spec.V0
		}
		return c, false, nil

	case "L":
		if spec.Value <= 0 {
			return nil, false, cktserr.Wrap(cktserr.ErrInvalidParameter, "inductor %s: inductance must be > 0", spec.Name)
		}
		l := device.NewInductor(spec.Name, spec.Nodes, spec.Value)
		if spec.HasI0 {
			l.I0 = spec.I0
		}
		return l, true, nil

	case "VG":
		return device.NewVoltageSource(spec.Name, spec.Nodes, spec.Value), true, nil

	case "D":
		d, err := device.NewDiode(spec.Name, spec.Nodes, spec.DiodeI0, spec.DiodeM, spec.DiodeV0)
		if err != nil {
			return nil, false, err
		}
		return d, false, nil

	default:
		return nil, false, cktserr.Wrap(cktserr.ErrStructural, "unknown component kind %q", spec.Kind)
	}
}

// dcProblem adapts the Circuit to newton.Problem for a DC operating point.
type dcProblem struct {
	c  *Circuit
	st *device.Status
}

func (p *dcProblem) Size() int { return p.c.size }

func (p *dcProblem) Relinearize(x []float64) error {
	for _, d := range p.c.devices.All() {
		if nl, ok := d.(device.NonLinear); ok {
			if err := nl.Relinearize(x); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *dcProblem) Stamp(sys matrix.System) error {
	for _, d := range p.c.devices.All() {
		if err := d.Stamp(sys, p.st); err != nil {
			return fmt.Errorf("stamping %s: %w", d.Name(), err)
		}
	}
	return nil
}

// DCAnalysis solves the DC operating point: capacitors open, inductors
// short, diodes linearized by Newton iteration.
func (c *Circuit) DCAnalysis() error {
	st := &device.Status{Mode: device.DCMode}
	// c.x seeds the iterate with the previous accepted solution (§4.5); it
	// is nil only before the circuit's very first solve.
	x, iters, err := newton.Run(&dcProblem{c: c, st: st}, c.x, newton.DefaultOptions())
	if err != nil {
		return err
	}
	c.x = x
	c.state = DCSolved
	c.log.WithField("iterations", iters).Debug("dc analysis converged")
	return nil
}

func (c *Circuit) ensureDC() error {
	if c.state == Unsolved {
		return c.DCAnalysis()
	}
	return nil
}

func (c *Circuit) ensureStepper() *transient.Stepper {
	if c.stepper == nil {
		c.stepper = transient.New(c.devices, c.size)
	}
	return c.stepper
}

// GetVariable resolves a probe name against the most recently solved
// state: a bare node name for its voltage, or "component.suffix"
// ("current", "voltage", "internal_node") for a device probe.
func (c *Circuit) GetVariable(name string) (float64, error) {
	if c.x == nil {
		if err := c.ensureDC(); err != nil {
			return 0, err
		}
	}
	return c.probeValue(name, c.x)
}

func (c *Circuit) probeValue(name string, x []float64) (float64, error) {
	if dot := strings.IndexByte(name, '.'); dot >= 0 {
		devName, suffix := name[:dot], name[dot+1:]
		dev, ok := c.devices.Lookup(devName)
		if !ok {
			return 0, cktserr.Wrap(cktserr.ErrUnknownVariable, "no such component %q", devName)
		}
		prober, ok := dev.(device.Prober)
		if !ok {
			return 0, cktserr.Wrap(cktserr.ErrUnknownVariable, "%s has no probe %q", devName, suffix)
		}
		v, ok := prober.Probe(suffix, x)
		if !ok {
			return 0, cktserr.Wrap(cktserr.ErrUnknownVariable, "%s has no probe %q", devName, suffix)
		}
		return v, nil
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

// GetComponentForModification returns a mutable handle for name and marks
// it dirty, per the mutation protocol (§4.2).
func (c *Circuit) GetComponentForModification(name string) (device.Handle, error) {
	return c.devices.GetForModification(name)
}

// PrintEquations renders the post-stamp linear system from the most
// recent analysis. A diagnostic, so it writes straight to stdout rather
// than through the structured logger.
func (c *Circuit) PrintEquations() {
	st := &device.Status{Mode: device.DCMode}
	if c.state == TransientRunning && c.stepper != nil {
		st = &device.Status{Mode: device.TransientMode, Time: c.tranLast, TimeStep: c.stepper.LastStep()}
	}
	sys := matrix.NewReal(c.size)
	for _, d := range c.devices.All() {
		_ = d.Stamp(sys, st)
	}
	fmt.Println(sys.String())
}

// PrintAllVariables renders every node voltage and device current from the
// most recently solved state.
func (c *Circuit) PrintAllVariables() {
	if c.x == nil {
		fmt.Println("(unsolved)")
		return
	}
	for _, name := range c.nodes.Names() {
		idx, _ := c.nodes.Lookup(name)
		fmt.Printf("V(%s) = %s\n", name, util.FormatValueFactor(c.x[idx], "V"))
	}
	for _, d := range c.devices.All() {
		if prober, ok := d.(device.Prober); ok {
			if i, ok := prober.Probe("current", c.x); ok {
				fmt.Printf("I(%s) = %s\n", d.Name(), util.FormatValueFactor(i, "A"))
			}
		}
	}
}

// TransientSimulation is the first call of a transient run: it auto-runs
// DCAnalysis if the circuit hasn't been solved yet, then steps from
// t_begin to t_end. A zero or negative time_step defaults to
// (t_end-t_begin)/1000, reported back via LastTimeStep.
func (c *Circuit) TransientSimulation(tBegin, tEnd float64, probes []string, timeStep float64) ([]float64, [][]float64, error) {
	if err := c.ensureDC(); err != nil {
		return nil, nil, err
	}
	if timeStep <= 0 {
		if tEnd > tBegin {
			timeStep = (tEnd - tBegin) / 1000
		} else {
			timeStep = 1e-9 // unused: no steps are taken when t_end <= t_begin
		}
	}
	c.tranTimeStep = timeStep
	c.tranProbes = probes

	stepper := c.ensureStepper()
	samples, err := stepper.Run(tBegin, tEnd, timeStep)
	return c.collectSamples(samples, probes, err)
}

// ContinueTransientSimulation extends a running transient simulation by
// duration using the probe list registered by the initiating
// TransientSimulation call.
func (c *Circuit) ContinueTransientSimulation(duration, timeStep float64) ([]float64, [][]float64, error) {
	if c.state == Unsolved {
		return nil, nil, cktserr.Wrap(cktserr.ErrStructural, "continue_transient_simulation called before transient_simulation")
	}
	if timeStep <= 0 {
		timeStep = c.tranTimeStep
	}
	stepper := c.ensureStepper()
	samples, err := stepper.Continue(c.tranLast, duration, timeStep)
	return c.collectSamples(samples, c.tranProbes, err)
}

func (c *Circuit) collectSamples(samples []transient.Sample, probes []string, runErr error) ([]float64, [][]float64, error) {
	timestamps := make([]float64, len(samples))
	series := make([][]float64, len(samples))
	for i, s := range samples {
		row := make([]float64, len(probes))
		for j, p := range probes {
			v, err := c.probeValue(p, s.X)
			if err != nil {
				return timestamps[:i], series[:i], err
			}
			row[j] = v
		}
		timestamps[i] = s.Time
		series[i] = row
	}
	if len(samples) > 0 {
		c.x = samples[len(samples)-1].X
		c.tranLast = samples[len(samples)-1].Time
	}
	c.state = TransientRunning
	if runErr != nil {
		return timestamps, series, runErr
	}
	return timestamps, series, nil
}

// LastTimeStep reports the time step in effect for the most recent
// transient run, including the computed default when the caller left it
// unspecified.
func (c *Circuit) LastTimeStep() float64 { return c.tranTimeStep }

// State reports the facade's current lifecycle state.
func (c *Circuit) State() State { return c.state }

// Size reports the total unknown count (nodes + branch currents).
func (c *Circuit) Size() int { return c.size }
