package keygen

import (
	rainbow "github.com/BackendStack21/rainbow-go"
	"github.com/BackendStack21/rainbow-go/gf"
)

// equation is one public quadratic form split along the variable blocks
// (vinegar, oil-1, oil-2).
type equation struct {
	q1, q2, q3, q5, q6, q9 gf.Matrix
}

func (e equation) eval(zv, z1, z2 []byte) byte {
	acc := gf.QuadForm(e.q1, zv)
	acc ^= gf.BilinearForm(zv, e.q2, z1)
	acc ^= gf.BilinearForm(zv, e.q3, z2)
	acc ^= gf.QuadForm(e.q5, z1)
	acc ^= gf.BilinearForm(z1, e.q6, z2)
	acc ^= gf.QuadForm(e.q9, z2)
	return acc
}

// equations pairs the stored public blocks with the regenerated seed
// blocks, layer 1 first.
func equations(pk *rainbow.PublicKey) []equation {
	p := pk.Params()
	seed := PublicSeedBlocks(p, pk.PkSeed())
	b := pk.Blocks()

	eqs := make([]equation, 0, p.M)
	for k := 0; k < p.O1; k++ {
		eqs = append(eqs, equation{
			q1: seed.L1Q1[k], q2: seed.L1Q2[k], q3: b.L1Q3[k],
			q5: b.L1Q5[k], q6: b.L1Q6[k], q9: b.L1Q9[k],
		})
	}
	for k := 0; k < p.O2; k++ {
		eqs = append(eqs, equation{
			q1: seed.L2Q1[k], q2: seed.L2Q2[k], q3: seed.L2Q3[k],
			q5: seed.L2Q5[k], q6: seed.L2Q6[k], q9: b.L2Q9[k],
		})
	}
	return eqs
}

func splitVariables(p rainbow.Params, z []byte) (zv, z1, z2 []byte) {
	if len(z) != p.N {
		panic("keygen: vector length does not match parameter set")
	}
	return z[:p.V1], z[p.V1 : p.V1+p.O1], z[p.V1+p.O1:]
}

// EvaluatePublicMap returns the m-element image of z under a compact
// public key. The seed-derived blocks are regenerated on every call.
func EvaluatePublicMap(pk *rainbow.PublicKey, z []byte) []byte {
	p := pk.Params()
	zv, z1, z2 := splitVariables(p, z)
	eqs := equations(pk)
	out := make([]byte, p.M)
	for k, e := range eqs {
		out[k] = e.eval(zv, z1, z2)
	}
	return out
}

// EvaluateExpanded returns the m-element image of z under a dense public
// key.
func EvaluateExpanded(epk *rainbow.ExpandedPublicKey, z []byte) []byte {
	p := epk.Params()
	if len(z) != p.N {
		panic("keygen: vector length does not match parameter set")
	}
	eqs := epk.Equations()
	out := make([]byte, len(eqs))
	for k, q := range eqs {
		out[k] = gf.QuadForm(q, z)
	}
	return out
}
