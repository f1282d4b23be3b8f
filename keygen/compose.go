package keygen

import (
	rainbow "github.com/BackendStack21/rainbow-go"
	"github.com/BackendStack21/rainbow-go/gf"
)

// obfuscate applies S to a layer-1 block list: out[k] = l1[k] + sum_j
// S1[k][j] * l2[j]. S is an involution in characteristic 2, so applying it
// twice restores the input.
func obfuscate(s1 gf.Matrix, l1, l2 []gf.Matrix) []gf.Matrix {
	out := make([]gf.Matrix, len(l1))
	for k := range l1 {
		out[k] = gf.LinearCombination(l1[k], s1[k], l2)
	}
	return out
}

// centralMap solves for F given the transforms and the seed-derived
// blocks of the public map.
func centralMap(t Transforms, seed SeedBlocks) rainbow.CentralMap {
	o1 := len(seed.L1Q1)
	o2 := len(seed.L2Q1)

	l1Q1 := obfuscate(t.S1, seed.L1Q1, seed.L2Q1)
	l1Q2 := obfuscate(t.S1, seed.L1Q2, seed.L2Q2)

	f := rainbow.CentralMap{
		L1F1: make([]gf.Matrix, o1),
		L1F2: make([]gf.Matrix, o1),
		L2F1: make([]gf.Matrix, o2),
		L2F2: make([]gf.Matrix, o2),
		L2F3: make([]gf.Matrix, o2),
		L2F5: make([]gf.Matrix, o2),
		L2F6: make([]gf.Matrix, o2),
	}

	t1t := gf.Transpose(t.T1)
	for k := 0; k < o1; k++ {
		q1 := l1Q1[k]
		f.L1F1[k] = q1.Clone()
		f.L1F2[k] = gf.AddMatrix(gf.Multiply(gf.AddTranspose(q1), t.T1), l1Q2[k])
	}

	for k := 0; k < o2; k++ {
		q1, q2, q3 := seed.L2Q1[k], seed.L2Q2[k], seed.L2Q3[k]
		q5, q6 := seed.L2Q5[k], seed.L2Q6[k]
		q1s := gf.AddTranspose(q1)

		f.L2F1[k] = q1.Clone()
		f.L2F2[k] = gf.AddMatrix(gf.Multiply(q1s, t.T1), q2)

		// F3 = (Q1+Q1ᵗ)T4 + Q2T3 + Q3
		f3 := gf.AddMatrix(gf.Multiply(q1s, t.T4), gf.Multiply(q2, t.T3))
		f3 = gf.AddMatrix(f3, q3)
		f.L2F3[k] = f3

		// F5 = UT(T1ᵗ(Q1T1 + Q2) + Q5)
		f5 := gf.Multiply(t1t, gf.AddMatrix(gf.Multiply(q1, t.T1), q2))
		f.L2F5[k] = gf.UpperTriangular(gf.AddMatrix(f5, q5))

		// F6 = T1ᵗF3 + Q2ᵗT4 + (Q5+Q5ᵗ)T3 + Q6
		f6 := gf.AddMatrix(gf.Multiply(t1t, f3), gf.Multiply(gf.Transpose(q2), t.T4))
		f6 = gf.AddMatrix(f6, gf.Multiply(gf.AddTranspose(q5), t.T3))
		f.L2F6[k] = gf.AddMatrix(f6, q6)
	}
	return f
}

// publicBlocks computes the public blocks that depend on the secret,
// then applies S so that layer 1 of the public map is published.
func publicBlocks(t Transforms, seed SeedBlocks, f rainbow.CentralMap) rainbow.PublicBlocks {
	o1 := len(f.L1F1)
	o2 := len(f.L2F1)

	t1t := gf.Transpose(t.T1)
	t2t := gf.Transpose(t.T2)
	t3t := gf.Transpose(t.T3)

	l1Q3 := make([]gf.Matrix, o1)
	l1Q5 := make([]gf.Matrix, o1)
	l1Q6 := make([]gf.Matrix, o1)
	l1Q9 := make([]gf.Matrix, o1)
	for k := 0; k < o1; k++ {
		f1, f2 := f.L1F1[k], f.L1F2[k]

		// Q3 = (F1+F1ᵗ)T2 + F2T3
		q3 := gf.AddMatrix(gf.Multiply(gf.AddTranspose(f1), t.T2), gf.Multiply(f2, t.T3))
		l1Q3[k] = q3

		// Q5 = UT(T1ᵗ(F1T1 + F2))
		l1Q5[k] = gf.UpperTriangular(gf.Multiply(t1t, gf.AddMatrix(gf.Multiply(f1, t.T1), f2)))

		// Q6 = T1ᵗQ3 + F2ᵗT2
		l1Q6[k] = gf.AddMatrix(gf.Multiply(t1t, q3), gf.Multiply(gf.Transpose(f2), t.T2))

		// Q9 = UT(T2ᵗ(F1T2 + F2T3))
		inner := gf.AddMatrix(gf.Multiply(f1, t.T2), gf.Multiply(f2, t.T3))
		l1Q9[k] = gf.UpperTriangular(gf.Multiply(t2t, inner))
	}

	l2Q9 := make([]gf.Matrix, o2)
	for k := 0; k < o2; k++ {
		f1, f2, f3 := f.L2F1[k], f.L2F2[k], f.L2F3[k]
		f5, f6 := f.L2F5[k], f.L2F6[k]

		// Q9 = UT(T2ᵗ(F1T2 + F2T3 + F3) + T3ᵗ(F5T3 + F6))
		v := gf.AddMatrix(gf.AddMatrix(gf.Multiply(f1, t.T2), gf.Multiply(f2, t.T3)), f3)
		o := gf.AddMatrix(gf.Multiply(f5, t.T3), f6)
		l2Q9[k] = gf.UpperTriangular(gf.AddMatrix(gf.Multiply(t2t, v), gf.Multiply(t3t, o)))
	}

	return rainbow.PublicBlocks{
		L1Q3: obfuscate(t.S1, l1Q3, seed.L2Q3),
		L1Q5: obfuscate(t.S1, l1Q5, seed.L2Q5),
		L1Q6: obfuscate(t.S1, l1Q6, seed.L2Q6),
		L1Q9: obfuscate(t.S1, l1Q9, l2Q9),
		L2Q9: l2Q9,
	}
}
