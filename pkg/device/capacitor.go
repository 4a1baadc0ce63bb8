package device

import (
	"math"

	"github.com/arclamp/circsim/pkg/matrix"
	"github.com/arclamp/circsim/pkg/util"
)

// Capacitor is open in DC, a Norton companion (G_eq=C/h) in transient, and
// a jωC admittance in AC.
type Capacitor struct {
	Base
	Capacitance float64
	V0          float64 // initial condition, optional (netlist "v0=")

	vPrev float64
	geq   float64
	ieq   float64
	mode  Mode
}

func NewCapacitor(name string, nodeNames []string, capacitance float64) *Capacitor {
	return &Capacitor{Base: NewBase(name, nodeNames), Capacitance: capacitance}
}

func (c *Capacitor) Kind() string { return "C" }

// LoadInitialConditions seeds V_prev from the netlist's "v0=" value (0 if
// unspecified). Called once before a transient run begins.
func (c *Capacitor) LoadInitialConditions() {
	c.vPrev = c.V0
}

func (c *Capacitor) Stamp(sys matrix.System, st *Status) error {
	c.ClearDirty()
	nodes := c.Nodes()
	n1, n2 := nodes[0], nodes[1]
	c.mode = st.Mode

	switch st.Mode {
	case DCMode:
		// Open circuit: no conductance, no RHS contribution.
		c.geq, c.ieq = 0, 0

	case TransientMode:
		// Backward-Euler via BDF order 1: coeffs[0]=1/h, coeffs[1]=-1/h,
		// the fixed-step companion this engine mandates (no higher-order
		// BDF or trapezoidal integration is exposed).
		coeffs := util.GetBDFcoeffs(1, st.TimeStep)
		geq := c.Capacitance * coeffs[0]
		ieq := -c.Capacitance * coeffs[1] * c.vPrev
		c.geq, c.ieq = geq, ieq

		stampConductance(sys, st.Mode, n1, n2, geq)
		if n1 != 0 {
			sys.AddRHS(n1, ieq)
		}
		if n2 != 0 {
			sys.AddRHS(n2, -ieq)
		}

	case ACMode:
		omega := 2 * math.Pi * st.Frequency
		b := omega * c.Capacitance
		if n1 != 0 {
			sys.AddComplexElement(n1, n1, 0, b)
			if n2 != 0 {
				sys.AddComplexElement(n1, n2, 0, -b)
			}
		}
		if n2 != 0 {
			if n1 != 0 {
				sys.AddComplexElement(n2, n1, 0, -b)
			}
			sys.AddComplexElement(n2, n2, 0, b)
		}
	}
	return nil
}

// Current reports the branch current accepted at the last stamp: 0 in DC
// (open circuit), and the companion-model current in transient.
func (c *Capacitor) Current(x []float64) float64 {
	if c.mode != TransientMode {
		return 0
	}
	v1, v2 := terminalVoltages(c.Nodes(), x)
	return c.geq*(v1-v2) - c.ieq
}

func (c *Capacitor) Probe(suffix string, x []float64) (float64, bool) {
	switch suffix {
	case "current":
		return c.Current(x), true
	case "voltage":
		v1, v2 := terminalVoltages(c.Nodes(), x)
		return v1 - v2, true
	}
	return 0, false
}

// UpdateState rolls V_prev forward once a transient step's solution is
// accepted; a no-op in DC/AC where the capacitor carries no history.
func (c *Capacitor) UpdateState(x []float64, st *Status) {
	if st.Mode != TransientMode {
		return
	}
	v1, v2 := terminalVoltages(c.Nodes(), x)
	c.vPrev = v1 - v2
}
