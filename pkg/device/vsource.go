package device

import "github.com/arclamp/circsim/pkg/matrix"

// VoltageSource is an independent source with a fixed DC value and its own
// branch-current unknown. In AC mode it is replaced by its small-signal
// excitation (ACMagnitude, default 1.0) about the DC operating point.
type VoltageSource struct {
	Base
	Value       float64
	ACMagnitude float64
}

func NewVoltageSource(name string, nodeNames []string, value float64) *VoltageSource {
	return &VoltageSource{Base: NewBase(name, nodeNames), Value: value, ACMagnitude: 1.0}
}

func (v *VoltageSource) Kind() string { return "VG" }

func (v *VoltageSource) Stamp(sys matrix.System, st *Status) error {
	v.ClearDirty()
	nodes := v.Nodes()
	n1, n2 := nodes[0], nodes[1]
	bIdx := v.BranchIndex()

	if n1 != 0 {
		sys.AddElement(bIdx, n1, 1)
		sys.AddElement(n1, bIdx, 1)
	}
	if n2 != 0 {
		sys.AddElement(bIdx, n2, -1)
		sys.AddElement(n2, bIdx, -1)
	}

	if st.Mode == ACMode {
		sys.AddComplexRHS(bIdx, v.ACMagnitude, 0)
		return nil
	}
	sys.AddRHS(bIdx, v.Value)
	return nil
}

// Probe reports "current" as the source's own branch current, solved
// directly as an MNA unknown (no post-processing needed).
func (v *VoltageSource) Probe(suffix string, x []float64) (float64, bool) {
	switch suffix {
	case "current":
		return x[v.BranchIndex()], true
	case "voltage":
		v1, v2 := terminalVoltages(v.Nodes(), x)
		return v1 - v2, true
	}
	return 0, false
}
