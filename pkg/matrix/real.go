package matrix

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/arclamp/circsim/pkg/cktserr"
)

// RealSystem is a dense U×U real-valued MNA system A·x = b, backed by
// gonum's LU factorization with partial pivoting. Used for DC operating
// point and transient steps.
type RealSystem struct {
	Size int
	a    *mat.Dense
	b    *mat.VecDense
	x    *mat.VecDense
}

// NewReal allocates a zeroed size×size system.
func NewReal(size int) *RealSystem {
	return &RealSystem{
		Size: size,
		a:    mat.NewDense(size, size, nil),
		b:    mat.NewVecDense(size, nil),
	}
}

// AddElement accumulates value into A[i][j], 1-based; index 0 (ground)
// is silently dropped, matching the MNA convention that ground contributes
// no row or column.
func (s *RealSystem) AddElement(i, j int, value float64) {
	if i <= 0 || j <= 0 {
		return
	}
	s.a.Set(i-1, j-1, s.a.At(i-1, j-1)+value)
}

// AddRHS accumulates value into b[i], 1-based.
func (s *RealSystem) AddRHS(i int, value float64) {
	if i <= 0 {
		return
	}
	s.b.SetVec(i-1, s.b.AtVec(i-1)+value)
}

// AddComplexElement satisfies the System interface; a real system never
// receives complex stamps (the Equation Builder only issues them in AC
// mode, which always targets a ComplexSystem), so imag must be zero.
func (s *RealSystem) AddComplexElement(i, j int, real, imag float64) {
	s.AddElement(i, j, real)
}

// AddComplexRHS mirrors AddComplexElement for the RHS vector.
func (s *RealSystem) AddComplexRHS(i int, real, imag float64) {
	s.AddRHS(i, real)
}

// Clear zeroes the system for re-stamping, reusing the backing storage.
func (s *RealSystem) Clear() {
	s.a.Zero()
	s.b.Zero()
}

// String renders the assembled A and b for print_equations diagnostics.
func (s *RealSystem) String() string {
	return fmt.Sprintf("A =\n%v\nb =\n%v", mat.Formatted(s.a), mat.Formatted(s.b))
}

// Solve factorizes A with partial pivoting and solves for x. Returns
// cktserr.ErrSingularMatrix when the condition number exceeds gonum's
// tolerance for a reliable solve.
func (s *RealSystem) Solve() ([]float64, error) {
	var lu mat.LU
	lu.Factorize(s.a)
	if lu.Cond() > mat.ConditionTolerance {
		return nil, cktserr.Wrap(cktserr.ErrSingularMatrix, "condition number %.3e", lu.Cond())
	}

	x := mat.NewVecDense(s.Size, nil)
	if err := lu.SolveVec(x, false, s.b); err != nil {
		return nil, fmt.Errorf("LU solve: %w", err)
	}
	s.x = x

	out := make([]float64, s.Size+1) // 1-based; out[0] is the unused ground slot
	for i := 0; i < s.Size; i++ {
		out[i+1] = x.AtVec(i)
	}
	return out, nil
}
