package keygen

import (
	rainbow "github.com/BackendStack21/rainbow-go"
	"github.com/BackendStack21/rainbow-go/gf"
)

// ExpandSecretKey rebuilds the full secret key from a compressed one.
func ExpandSecretKey(csk *rainbow.CompressedSecretKey) *rainbow.SecretKey {
	sk, _ := Generate(csk.Params(), csk.SkSeed(), csk.PkSeed())
	return sk
}

// CompressedPublicKey derives the compact public key belonging to a
// compressed secret key.
func CompressedPublicKey(csk *rainbow.CompressedSecretKey) *rainbow.PublicKey {
	_, pk := Generate(csk.Params(), csk.SkSeed(), csk.PkSeed())
	return pk
}

// place copies block into dst with its top-left corner at (row, col).
func place(dst, block gf.Matrix, row, col int) {
	for i := range block {
		copy(dst[row+i][col:], block[i])
	}
}

// ExpandPublicKey materializes the dense public key: one upper-triangular
// n x n matrix per equation, layer 1 first.
func ExpandPublicKey(pk *rainbow.PublicKey) *rainbow.ExpandedPublicKey {
	p := pk.Params()
	vo := p.V1
	oo := p.V1 + p.O1

	eqs := equations(pk)
	dense := make([]gf.Matrix, len(eqs))
	for k, e := range eqs {
		q := gf.NewMatrix(p.N, p.N)
		place(q, e.q1, 0, 0)
		place(q, e.q2, 0, vo)
		place(q, e.q3, 0, oo)
		place(q, e.q5, vo, vo)
		place(q, e.q6, vo, oo)
		place(q, e.q9, oo, oo)
		dense[k] = q
	}
	return rainbow.NewExpandedPublicKey(p, dense)
}
