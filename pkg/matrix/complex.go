package matrix

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/arclamp/circsim/pkg/cktserr"
)

// ComplexSystem is a dense U×U complex128 MNA system, used only for the AC
// sweep's linearized admittance matrix. gonum's mat package has no complex
// dense solver (see DESIGN.md), so this is a small in-house Gaussian
// elimination with partial pivoting and back-substitution, laid out like lvlath's ops.LU decomposition
// (matrix/ops/lu.go) but extended with row pivoting and complex scalars,
// since that routine is real-only and never pivots.
type ComplexSystem struct {
	Size int
	a    [][]complex128 // 0-based, size×size
	b    []complex128   // 0-based, size
}

// NewComplex allocates a zeroed size×size complex system.
func NewComplex(size int) *ComplexSystem {
	a := make([][]complex128, size)
	for i := range a {
		a[i] = make([]complex128, size)
	}
	return &ComplexSystem{Size: size, a: a, b: make([]complex128, size)}
}

// AddElement stamps a real contribution (imag=0) — used when a real
// device (e.g. a resistor) participates in an AC-mode system.
func (s *ComplexSystem) AddElement(i, j int, value float64) {
	s.AddComplexElement(i, j, value, 0)
}

// AddRHS stamps a real RHS contribution.
func (s *ComplexSystem) AddRHS(i int, value float64) {
	s.AddComplexRHS(i, value, 0)
}

// AddComplexElement accumulates into A[i][j], 1-based; ground (index 0)
// is dropped.
func (s *ComplexSystem) AddComplexElement(i, j int, real, imag float64) {
	if i <= 0 || j <= 0 {
		return
	}
	s.a[i-1][j-1] += complex(real, imag)
}

// AddComplexRHS accumulates into b[i], 1-based.
func (s *ComplexSystem) AddComplexRHS(i int, real, imag float64) {
	if i <= 0 {
		return
	}
	s.b[i-1] += complex(real, imag)
}

// Clear zeroes the system for re-stamping at the next frequency point.
func (s *ComplexSystem) Clear() {
	for i := range s.a {
		for j := range s.a[i] {
			s.a[i][j] = 0
		}
		s.b[i] = 0
	}
}

// String renders the assembled complex A and b for print_equations
// diagnostics.
func (s *ComplexSystem) String() string {
	var rows []string
	for i := range s.a {
		var cols []string
		for _, v := range s.a[i] {
			cols = append(cols, fmt.Sprintf("%v", v))
		}
		rows = append(rows, "["+strings.Join(cols, " ")+"]")
	}
	return fmt.Sprintf("A =\n%s\nb = %v", strings.Join(rows, "\n"), s.b)
}

// Solve factors A with partial pivoting (by modulus) and solves for x.
// Returns cktserr.ErrSingularMatrix when the chosen pivot magnitude in a
// column falls below 1e-14·‖A‖∞. (RealSystem uses a condition-number test
// instead.)
func (s *ComplexSystem) Solve() ([]complex128, error) {
	n := s.Size
	a := make([][]complex128, n)
	for i := range a {
		a[i] = append([]complex128(nil), s.a[i]...)
	}
	x := append([]complex128(nil), s.b...)

	normInf := 0.0
	for i := 0; i < n; i++ {
		rowSum := 0.0
		for j := 0; j < n; j++ {
			rowSum += cmplx.Abs(a[i][j])
		}
		normInf = math.Max(normInf, rowSum)
	}
	epsPivot := 1e-14 * normInf
	if epsPivot == 0 {
		epsPivot = 1e-14
	}

	for col := 0; col < n; col++ {
		// Partial pivot: largest-magnitude entry at or below the diagonal.
		pivotRow := col
		best := cmplx.Abs(a[col][col])
		for r := col + 1; r < n; r++ {
			if mag := cmplx.Abs(a[r][col]); mag > best {
				best = mag
				pivotRow = r
			}
		}
		if best < epsPivot {
			return nil, cktserr.Wrap(cktserr.ErrSingularMatrix, "pivot |%.3e| below threshold %.3e at column %d", best, epsPivot, col)
		}
		if pivotRow != col {
			a[col], a[pivotRow] = a[pivotRow], a[col]
			x[col], x[pivotRow] = x[pivotRow], x[col]
		}

		pivot := a[col][col]
		for r := col + 1; r < n; r++ {
			factor := a[r][col] / pivot
			if factor == 0 {
				continue
			}
			for c := col; c < n; c++ {
				a[r][c] -= factor * a[col][c]
			}
			x[r] -= factor * x[col]
		}
	}

	// Back-substitution.
	sol := make([]complex128, n)
	for row := n - 1; row >= 0; row-- {
		sum := x[row]
		for c := row + 1; c < n; c++ {
			sum -= a[row][c] * sol[c]
		}
		sol[row] = sum / a[row][row]
	}

	out := make([]complex128, n+1) // 1-based; out[0] unused (ground)
	copy(out[1:], sol)
	return out, nil
}
