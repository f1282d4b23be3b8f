package gf

import "errors"

// ErrSingular is returned by Invert when the matrix has no inverse.
var ErrSingular = errors.New("gf: matrix is singular")

// Matrix is a dense row-major matrix of field elements. All rows have the
// same length; dimensions never change after construction.
type Matrix [][]byte

// NewMatrix returns a zero matrix with the given dimensions.
func NewMatrix(rows, cols int) Matrix {
	backing := make([]byte, rows*cols)
	m := make(Matrix, rows)
	for i := range m {
		m[i] = backing[i*cols : (i+1)*cols : (i+1)*cols]
	}
	return m
}

// NewBlocks returns count zero matrices of identical dimensions.
func NewBlocks(count, rows, cols int) []Matrix {
	blocks := make([]Matrix, count)
	for k := range blocks {
		blocks[k] = NewMatrix(rows, cols)
	}
	return blocks
}

// Identity returns the n x n identity matrix.
func Identity(n int) Matrix {
	m := NewMatrix(n, n)
	for i := 0; i < n; i++ {
		m[i][i] = 1
	}
	return m
}

// Rows returns the number of rows.
func (m Matrix) Rows() int {
	return len(m)
}

// Cols returns the number of columns.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Clone returns a deep copy of m.
func (m Matrix) Clone() Matrix {
	c := NewMatrix(m.Rows(), m.Cols())
	for i := range m {
		copy(c[i], m[i])
	}
	return c
}

// Equal reports whether m and o have the same dimensions and entries.
func (m Matrix) Equal(o Matrix) bool {
	if m.Rows() != o.Rows() || m.Cols() != o.Cols() {
		return false
	}
	for i := range m {
		for j := range m[i] {
			if m[i][j] != o[i][j] {
				return false
			}
		}
	}
	return true
}

// HasShape reports whether m has exactly rows rows of cols entries each.
func (m Matrix) HasShape(rows, cols int) bool {
	if len(m) != rows {
		return false
	}
	for _, row := range m {
		if len(row) != cols {
			return false
		}
	}
	return true
}

// ShapedAll reports whether ms holds count matrices of the given shape.
func ShapedAll(ms []Matrix, count, rows, cols int) bool {
	if len(ms) != count {
		return false
	}
	for _, m := range ms {
		if !m.HasShape(rows, cols) {
			return false
		}
	}
	return true
}

// IsUpperTriangular reports whether every entry below the diagonal is zero.
func (m Matrix) IsUpperTriangular() bool {
	for i := range m {
		for j := 0; j < i && j < len(m[i]); j++ {
			if m[i][j] != 0 {
				return false
			}
		}
	}
	return true
}

// CloneAll deep-copies a list of matrices.
func CloneAll(ms []Matrix) []Matrix {
	if ms == nil {
		return nil
	}
	out := make([]Matrix, len(ms))
	for k, m := range ms {
		out[k] = m.Clone()
	}
	return out
}

// EqualAll compares two lists of matrices element by element.
func EqualAll(a, b []Matrix) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !a[k].Equal(b[k]) {
			return false
		}
	}
	return true
}

func mustSameShape(a, b Matrix) {
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		panic("gf: dimension mismatch")
	}
}

// Transpose returns the transpose of m.
func Transpose(m Matrix) Matrix {
	t := NewMatrix(m.Cols(), m.Rows())
	for i := range m {
		for j, v := range m[i] {
			t[j][i] = v
		}
	}
	return t
}

// AddMatrix returns the element-wise sum a + b.
func AddMatrix(a, b Matrix) Matrix {
	mustSameShape(a, b)
	s := NewMatrix(a.Rows(), a.Cols())
	for i := range a {
		for j := range a[i] {
			s[i][j] = a[i][j] ^ b[i][j]
		}
	}
	return s
}

// AddTranspose returns m + mᵗ for a square matrix m.
func AddTranspose(m Matrix) Matrix {
	if m.Rows() != m.Cols() {
		panic("gf: dimension mismatch")
	}
	s := NewMatrix(m.Rows(), m.Cols())
	for i := range m {
		for j := range m[i] {
			s[i][j] = m[i][j] ^ m[j][i]
		}
	}
	return s
}

// Multiply returns the matrix product a * b.
func Multiply(a, b Matrix) Matrix {
	if a.Cols() != b.Rows() {
		panic("gf: dimension mismatch")
	}
	p := NewMatrix(a.Rows(), b.Cols())
	for i := range a {
		row := p[i]
		for k, aik := range a[i] {
			if aik == 0 {
				continue
			}
			tab := &mulTable[aik]
			for j, bkj := range b[k] {
				row[j] ^= tab[bkj]
			}
		}
	}
	return p
}

// LinearCombination returns base + sum_j coeffs[j] * ms[j].
func LinearCombination(base Matrix, coeffs []byte, ms []Matrix) Matrix {
	if len(coeffs) != len(ms) {
		panic("gf: dimension mismatch")
	}
	out := base.Clone()
	for j, m := range ms {
		mustSameShape(base, m)
		c := coeffs[j]
		if c == 0 {
			continue
		}
		for i := range out {
			rowAddScaled(out[i], m[i], c)
		}
	}
	return out
}

// MulVec returns the column-vector product m * x.
func MulVec(m Matrix, x []byte) []byte {
	if m.Cols() != len(x) {
		panic("gf: dimension mismatch")
	}
	out := make([]byte, m.Rows())
	for i := range m {
		var acc byte
		for j, v := range m[i] {
			acc ^= mulTable[v][x[j]]
		}
		out[i] = acc
	}
	return out
}

// VecMul returns the row-vector product xᵗ * m.
func VecMul(x []byte, m Matrix) []byte {
	if m.Rows() != len(x) {
		panic("gf: dimension mismatch")
	}
	out := make([]byte, m.Cols())
	for i, xi := range x {
		tab := &mulTable[xi]
		for j, v := range m[i] {
			out[j] ^= tab[v]
		}
	}
	return out
}

// AddVec returns the element-wise sum a + b.
func AddVec(a, b []byte) []byte {
	if len(a) != len(b) {
		panic("gf: dimension mismatch")
	}
	out := make([]byte, len(a))
	for i := range a {
		out[i] = a[i] ^ b[i]
	}
	return out
}

// QuadForm evaluates xᵗ * q * x for a square matrix q.
func QuadForm(q Matrix, x []byte) byte {
	return BilinearForm(x, q, x)
}

// BilinearForm evaluates xᵗ * m * y.
func BilinearForm(x []byte, m Matrix, y []byte) byte {
	if m.Rows() != len(x) || m.Cols() != len(y) {
		panic("gf: dimension mismatch")
	}
	var acc byte
	for i, xi := range x {
		var row byte
		for j, v := range m[i] {
			row ^= mulTable[v][y[j]]
		}
		acc ^= mulTable[xi][row]
	}
	return acc
}

// UpperTriangular folds every entry below the diagonal onto its mirror
// above the diagonal and zeroes the lower part, so each monomial x_i*x_j
// of the quadratic form is represented once.
func UpperTriangular(m Matrix) Matrix {
	if m.Rows() != m.Cols() {
		panic("gf: dimension mismatch")
	}
	u := NewMatrix(m.Rows(), m.Cols())
	for i := range m {
		u[i][i] = m[i][i]
		for j := i + 1; j < len(m[i]); j++ {
			u[i][j] = m[i][j] ^ m[j][i]
		}
	}
	return u
}

// rowAddScaled sets dst += c * src.
func rowAddScaled(dst, src []byte, c byte) {
	tab := &mulTable[c]
	for j, v := range src {
		dst[j] ^= tab[v]
	}
}

// rowScale sets row *= c.
func rowScale(row []byte, c byte) {
	tab := &mulTable[c]
	for j, v := range row {
		row[j] = tab[v]
	}
}

// gaussJordan reduces the augmented matrix a (n rows, at least n columns)
// in place. Every column is processed even after a missing pivot, so the
// amount of work only depends on the dimensions. It reports whether the
// left n x n part was invertible.
func gaussJordan(a Matrix) bool {
	n := a.Rows()
	ok := true
	for c := 0; c < n; c++ {
		for r := c + 1; r < n; r++ {
			if a[c][c] == 0 && a[r][c] != 0 {
				rowAddScaled(a[c], a[r], 1)
			}
		}
		if a[c][c] == 0 {
			ok = false
		}
		rowScale(a[c], Inv(a[c][c]))
		for r := 0; r < n; r++ {
			if r != c {
				rowAddScaled(a[r], a[c], a[r][c])
			}
		}
	}
	return ok
}

// Invert returns the inverse of a square matrix using Gauss-Jordan
// elimination, or ErrSingular.
func Invert(m Matrix) (Matrix, error) {
	n := m.Rows()
	if n != m.Cols() {
		panic("gf: dimension mismatch")
	}
	aug := NewMatrix(n, 2*n)
	for i := range m {
		copy(aug[i], m[i])
		aug[i][n+i] = 1
	}
	if !gaussJordan(aug) {
		return nil, ErrSingular
	}
	inv := NewMatrix(n, n)
	for i := range inv {
		copy(inv[i], aug[i][n:])
	}
	return inv, nil
}

// Solve returns x with m * x = b for a square matrix m. The second result
// is false when m is singular; that is an expected outcome, not an error.
func Solve(m Matrix, b []byte) ([]byte, bool) {
	n := m.Rows()
	if n != m.Cols() || n != len(b) {
		panic("gf: dimension mismatch")
	}
	aug := NewMatrix(n, n+1)
	for i := range m {
		copy(aug[i], m[i])
		aug[i][n] = b[i]
	}
	if !gaussJordan(aug) {
		return nil, false
	}
	x := make([]byte, n)
	for i := range x {
		x[i] = aug[i][n]
	}
	return x, true
}
