// Package matrix implements the Dense Solver: a U×U linear system
// assembled by 1-based stamps and solved by LU factorization with partial
// pivoting, over both real and complex scalars.
package matrix

// System is the stamping surface the Equation Builder writes into. Every
// device's Stamp method takes a System so the same device code stamps
// into a RealSystem (DC, transient) or a ComplexSystem (AC) without caring
// which one it got.
type System interface {
	AddElement(i, j int, value float64)
	AddRHS(i int, value float64)
	AddComplexElement(i, j int, real, imag float64)
	AddComplexRHS(i int, real, imag float64)
}

var (
	_ System = (*RealSystem)(nil)
	_ System = (*ComplexSystem)(nil)
)
