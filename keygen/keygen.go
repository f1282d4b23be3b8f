// Package keygen derives Rainbow key material from a secret and a public
// seed.
//
// The secret seed determines the affine transforms S and T. The public seed
// determines most of the public quadratic system directly; the central map
// F and the remaining public blocks are then solved for so that the public
// system equals S∘F∘T.
package keygen

import (
	"io"

	rainbow "github.com/BackendStack21/rainbow-go"
	"github.com/BackendStack21/rainbow-go/gf"
	"github.com/BackendStack21/rainbow-go/utils"
)

// Domain separation strings for the two seed expansions.
const (
	SecretDomain = "rainbow-sk-v1"
	PublicDomain = "rainbow-pk-v1"
)

// Transforms holds the secret affine maps in reduced form. S is
// [[I, S1], [0, I]] over the equations; T⁻¹ is [[I, T1, T2], [0, I, T3],
// [0, 0, I]] over the variables, and T4 = T1*T3 + T2 is the block the signer
// needs to apply T.
type Transforms struct {
	S1 gf.Matrix // o1 x o2
	T1 gf.Matrix // v1 x o1
	T2 gf.Matrix // v1 x o2
	T3 gf.Matrix // o1 x o2
	T4 gf.Matrix // v1 x o2
}

// SeedBlocks are the public-map blocks read directly from the public seed.
// They are published as they are: the layer-1 obfuscation applied during
// key generation is undone when the public key is assembled.
type SeedBlocks struct {
	L1Q1 []gf.Matrix // o1 x (v1 x v1), upper triangular
	L1Q2 []gf.Matrix // o1 x (v1 x o1)
	L2Q1 []gf.Matrix // o2 x (v1 x v1), upper triangular
	L2Q2 []gf.Matrix // o2 x (v1 x o1)
	L2Q3 []gf.Matrix // o2 x (v1 x o2)
	L2Q5 []gf.Matrix // o2 x (o1 x o1), upper triangular
	L2Q6 []gf.Matrix // o2 x (o1 x o2)
}

func readMatrix(r io.Reader, rows, cols int) gf.Matrix {
	m := gf.NewMatrix(rows, cols)
	for i := range m {
		// SHAKE streams never fail.
		_, _ = io.ReadFull(r, m[i])
	}
	return m
}

// readUpperTriangular fills only the entries on and above the diagonal.
func readUpperTriangular(r io.Reader, n int) gf.Matrix {
	m := gf.NewMatrix(n, n)
	for i := range m {
		_, _ = io.ReadFull(r, m[i][i:])
	}
	return m
}

func readBlocks(r io.Reader, count, rows, cols int) []gf.Matrix {
	out := make([]gf.Matrix, count)
	for k := range out {
		out[k] = readMatrix(r, rows, cols)
	}
	return out
}

func readUpperTriangularBlocks(r io.Reader, count, n int) []gf.Matrix {
	out := make([]gf.Matrix, count)
	for k := range out {
		out[k] = readUpperTriangular(r, n)
	}
	return out
}

// ExpandTransforms derives S and T from the secret seed.
func ExpandTransforms(p rainbow.Params, skSeed []byte) Transforms {
	r := utils.NewShake256Reader(SecretDomain, skSeed)
	var t Transforms
	t.S1 = readMatrix(r, p.O1, p.O2)
	t.T1 = readMatrix(r, p.V1, p.O1)
	t.T2 = readMatrix(r, p.V1, p.O2)
	t.T3 = readMatrix(r, p.O1, p.O2)
	t.T4 = gf.AddMatrix(gf.Multiply(t.T1, t.T3), t.T2)
	return t
}

// PublicSeedBlocks regenerates the seed-derived public blocks.
func PublicSeedBlocks(p rainbow.Params, pkSeed []byte) SeedBlocks {
	r := utils.NewShake256Reader(PublicDomain, pkSeed)
	var b SeedBlocks
	b.L1Q1 = readUpperTriangularBlocks(r, p.O1, p.V1)
	b.L1Q2 = readBlocks(r, p.O1, p.V1, p.O1)
	b.L2Q1 = readUpperTriangularBlocks(r, p.O2, p.V1)
	b.L2Q2 = readBlocks(r, p.O2, p.V1, p.O1)
	b.L2Q3 = readBlocks(r, p.O2, p.V1, p.O2)
	b.L2Q5 = readUpperTriangularBlocks(r, p.O2, p.O1)
	b.L2Q6 = readBlocks(r, p.O2, p.O1, p.O2)
	return b
}

// Generate derives the full secret key and the compact public key from the
// two seeds. Identical inputs always produce identical keys.
func Generate(p rainbow.Params, skSeed, pkSeed []byte) (*rainbow.SecretKey, *rainbow.PublicKey) {
	t := ExpandTransforms(p, skSeed)
	seed := PublicSeedBlocks(p, pkSeed)
	central := centralMap(t, seed)
	blocks := publicBlocks(t, seed, central)

	sk := rainbow.NewSecretKey(p, skSeed, t.S1, t.T1, t.T3, t.T4, central)
	pk := rainbow.NewPublicKey(p, pkSeed, blocks)
	t.wipe()
	return sk, pk
}

// wipe clears the transforms once they have been copied into a key.
func (t *Transforms) wipe() {
	for _, m := range []gf.Matrix{t.S1, t.T1, t.T2, t.T3, t.T4} {
		utils.ZeroizeRows(m)
	}
}
