package device

import (
	"fmt"

	"github.com/arclamp/circsim/pkg/matrix"
)

// Resistor stamps a fixed conductance; identical across DC, transient and
// AC (a resistor's admittance has no frequency or time dependence).
type Resistor struct {
	Base
	Resistance float64
}

// NewResistor constructs a resistor; resistance must already have been
// validated positive by the caller (BuildFromString does this).
func NewResistor(name string, nodeNames []string, resistance float64) *Resistor {
	return &Resistor{Base: NewBase(name, nodeNames), Resistance: resistance}
}

func (r *Resistor) Kind() string { return "R" }

func (r *Resistor) Stamp(sys matrix.System, st *Status) error {
	nodes := r.Nodes()
	if len(nodes) != 2 {
		return fmt.Errorf("resistor %s: requires exactly 2 nodes", r.Name())
	}
	r.ClearDirty()

	n1, n2 := nodes[0], nodes[1]
	g := 1.0 / r.Resistance

	stampConductance(sys, st.Mode, n1, n2, g)
	return nil
}

// Current reports the Ohm's-law branch current from terminal a to b.
func (r *Resistor) Current(x []float64) float64 {
	v1, v2 := terminalVoltages(r.Nodes(), x)
	return (v1 - v2) / r.Resistance
}

func (r *Resistor) Probe(suffix string, x []float64) (float64, bool) {
	switch suffix {
	case "current":
		return r.Current(x), true
	case "voltage":
		v1, v2 := terminalVoltages(r.Nodes(), x)
		return v1 - v2, true
	}
	return 0, false
}

// stampConductance adds a symmetric ±g MNA stamp between n1 and n2, real
// or complex depending on mode. Shared by the resistor and the capacitor's
// transient companion stamp.
func stampConductance(sys matrix.System, mode Mode, n1, n2 int, g float64) {
	if mode == ACMode {
		if n1 != 0 {
			sys.AddComplexElement(n1, n1, g, 0)
			if n2 != 0 {
				sys.AddComplexElement(n1, n2, -g, 0)
			}
		}
		if n2 != 0 {
			if n1 != 0 {
				sys.AddComplexElement(n2, n1, -g, 0)
			}
			sys.AddComplexElement(n2, n2, g, 0)
		}
		return
	}

	if n1 != 0 {
		sys.AddElement(n1, n1, g)
		if n2 != 0 {
			sys.AddElement(n1, n2, -g)
		}
	}
	if n2 != 0 {
		if n1 != 0 {
			sys.AddElement(n2, n1, -g)
		}
		sys.AddElement(n2, n2, g)
	}
}
