// Package device implements the Component Set and the per-kind Equation
// Builder stamps: resistors, capacitors, inductors, voltage sources, and
// the exponential diode.
package device

import "github.com/arclamp/circsim/pkg/matrix"

// Mode selects which regime the Equation Builder is stamping for.
type Mode int

const (
	DCMode Mode = iota
	TransientMode
	ACMode
)

// Status carries everything a Stamp call needs beyond the device's own
// parameters: the current time/step for transient, or the frequency for AC.
type Status struct {
	Mode      Mode
	Time      float64
	TimeStep  float64
	Frequency float64 // Stamp converts to ω=2πf where needed
}

// Device is the Equation Builder's stamping contract. Every component kind
// implements Stamp against whichever matrix.System the active mode uses.
type Device interface {
	Name() string
	Kind() string
	Nodes() []int // MNA node indices (0 = ground), terminal order a,b
	SetNodes(nodes []int)
	BranchIndex() int // 0 when the device introduces no branch-current unknown
	SetBranchIndex(idx int)
	Stamp(sys matrix.System, st *Status) error

	// Dirty flag protocol (§4.2): GetForModification sets it, the builder
	// clears it once it has re-read the device's current parameters.
	Dirty() bool
	ClearDirty()
}

// Prober resolves a dotted probe suffix ("current", "voltage",
// "internal_node") against the device's last solved state.
type Prober interface {
	Probe(suffix string, x []float64) (float64, bool)
}

// Stateful devices carry history across transient steps (capacitor V_prev,
// inductor I_prev) and must roll it forward once a step's solution is
// accepted.
type Stateful interface {
	UpdateState(x []float64, st *Status)
}

// NonLinear devices must be relinearized at each Newton iterate before the
// next Stamp call, not only once per accepted step.
type NonLinear interface {
	Relinearize(x []float64) error
}

// Base holds the fields every component kind shares: identity, terminal
// wiring, and the mutation-dirty flag.
type Base struct {
	name      string
	nodeNames []string
	nodes     []int
	branchIdx int
	dirty     bool
}

// NewBase constructs the shared embedding for a two-terminal device.
func NewBase(name string, nodeNames []string) Base {
	return Base{name: name, nodeNames: nodeNames, nodes: make([]int, len(nodeNames))}
}

func (b *Base) Name() string         { return b.name }
func (b *Base) SetName(name string)  { b.name = name }
func (b *Base) NodeNames() []string  { return b.nodeNames }
func (b *Base) Nodes() []int         { return b.nodes }
func (b *Base) SetNodes(nodes []int) { b.nodes = nodes }
func (b *Base) BranchIndex() int     { return b.branchIdx }
func (b *Base) SetBranchIndex(i int) { b.branchIdx = i }
func (b *Base) Dirty() bool          { return b.dirty }
func (b *Base) MarkDirty()           { b.dirty = true }
func (b *Base) ClearDirty()          { b.dirty = false }

// terminalVoltages reads the two-terminal voltages from a solved vector,
// treating ground (index 0) as 0V.
func terminalVoltages(nodes []int, x []float64) (v1, v2 float64) {
	if nodes[0] != 0 {
		v1 = x[nodes[0]]
	}
	if nodes[1] != 0 {
		v2 = x[nodes[1]]
	}
	return v1, v2
}
