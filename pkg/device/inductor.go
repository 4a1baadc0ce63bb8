package device

import (
	"math"

	"github.com/arclamp/circsim/pkg/matrix"
	"github.com/arclamp/circsim/pkg/util"
)

// Inductor introduces its own branch-current unknown. It is a 0V source
// (short circuit) in DC, a backward-Euler companion in transient, and a
// jωL branch impedance (the 1/(jωL) admittance) in AC.
type Inductor struct {
	Base
	Inductance float64
	I0         float64 // initial condition, optional (netlist "i0=")

	iPrev float64
}

func NewInductor(name string, nodeNames []string, inductance float64) *Inductor {
	return &Inductor{Base: NewBase(name, nodeNames), Inductance: inductance}
}

func (l *Inductor) Kind() string { return "L" }

// LoadInitialConditions seeds I_prev from the netlist's "i0=" value.
func (l *Inductor) LoadInitialConditions() {
	l.iPrev = l.I0
}

func (l *Inductor) Stamp(sys matrix.System, st *Status) error {
	l.ClearDirty()
	nodes := l.Nodes()
	n1, n2 := nodes[0], nodes[1]
	bIdx := l.BranchIndex()

	if st.Mode == ACMode {
		omega := 2 * math.Pi * st.Frequency
		if n1 != 0 {
			sys.AddElement(n1, bIdx, 1)
		}
		if n2 != 0 {
			sys.AddElement(n2, bIdx, -1)
		}
		// V1 - V2 - jωL·ib = 0
		sys.AddElement(bIdx, n1, 1)
		sys.AddElement(bIdx, n2, -1)
		sys.AddComplexElement(bIdx, bIdx, 0, -omega*l.Inductance)
		return nil
	}

	// KCL: branch current flows n1 -> n2 through the inductor.
	if n1 != 0 {
		sys.AddElement(n1, bIdx, 1)
	}
	if n2 != 0 {
		sys.AddElement(n2, bIdx, -1)
	}

	switch st.Mode {
	case DCMode:
		// V1 - V2 - 0·ib = 0 : short circuit.
		sys.AddElement(bIdx, n1, 1)
		sys.AddElement(bIdx, n2, -1)

	case TransientMode:
		// V1 - V2 - (L/h)·ib = -(L/h)·I_prev, via the same order-1 BDF
		// coefficients the capacitor companion model uses.
		coeffs := util.GetBDFcoeffs(1, st.TimeStep)
		lOverH := l.Inductance * coeffs[0]
		sys.AddElement(bIdx, n1, 1)
		sys.AddElement(bIdx, n2, -1)
		sys.AddElement(bIdx, bIdx, -lOverH)
		sys.AddRHS(bIdx, l.Inductance*coeffs[1]*l.iPrev)
	}
	return nil
}

func (l *Inductor) UpdateState(x []float64, st *Status) {
	if st.Mode != TransientMode {
		return
	}
	l.iPrev = x[l.BranchIndex()]
}

func (l *Inductor) Probe(suffix string, x []float64) (float64, bool) {
	switch suffix {
	case "current":
		return x[l.BranchIndex()], true
	case "voltage":
		v1, v2 := terminalVoltages(l.Nodes(), x)
		return v1 - v2, true
	}
	return 0, false
}
