package sign

import (
	"fmt"
	"io"

	rainbow "github.com/BackendStack21/rainbow-go"
	"github.com/BackendStack21/rainbow-go/core"
	"github.com/BackendStack21/rainbow-go/gf"
	"github.com/BackendStack21/rainbow-go/keygen"
	"github.com/BackendStack21/rainbow-go/utils"
)

// Sign creates a signature z || salt for message. sk must be a full or a
// compressed secret key; a compressed key is expanded on every call.
// A nil rand uses crypto/rand.
func Sign(rand io.Reader, sk rainbow.Key, message []byte) ([]byte, error) {
	return signWithLimit(rand, sk, message, core.MaxSignAttempts)
}

func secretKeyOf(key rainbow.Key) (*rainbow.SecretKey, error) {
	switch k := key.(type) {
	case *rainbow.SecretKey:
		if k != nil {
			return k, nil
		}
	case *rainbow.CompressedSecretKey:
		if k != nil {
			return keygen.ExpandSecretKey(k), nil
		}
	}
	return nil, fmt.Errorf("%w: cannot sign with %T", rainbow.ErrInvalidKey, key)
}

// signer holds the secret material for one Sign call.
type signer struct {
	p       rainbow.Params
	s1      gf.Matrix
	t1      gf.Matrix
	t3      gf.Matrix
	t4      gf.Matrix
	central rainbow.CentralMap
}

// vinegarState is everything that depends only on the vinegar values.
type vinegarState struct {
	vinegar []byte
	l1Inv   gf.Matrix // o1 x o1
	r1      []byte    // layer-1 F1 at the vinegar
	r2      []byte    // layer-2 F1 at the vinegar
	l2F2    gf.Matrix // o2 x o1, row k is vᵗ F2[k]
	l2F3    gf.Matrix // o2 x o2, row k is vᵗ F3[k]
}

func (s *signer) wipe(vs *vinegarState) {
	if vs == nil {
		return
	}
	utils.Zeroize(vs.vinegar)
	utils.ZeroizeRows(vs.l1Inv)
}

// tryVinegar builds the layer-1 linear system for vinegar and reports
// whether it is invertible.
func (s *signer) tryVinegar(vinegar []byte) (*vinegarState, bool) {
	f := s.central
	l1 := make(gf.Matrix, s.p.O1)
	for k := range l1 {
		l1[k] = gf.VecMul(vinegar, f.L1F2[k])
	}
	inv, err := gf.Invert(l1)
	if err != nil {
		return nil, false
	}

	vs := &vinegarState{
		vinegar: vinegar,
		l1Inv:   inv,
		r1:      make([]byte, s.p.O1),
		r2:      make([]byte, s.p.O2),
		l2F2:    make(gf.Matrix, s.p.O2),
		l2F3:    make(gf.Matrix, s.p.O2),
	}
	for k := 0; k < s.p.O1; k++ {
		vs.r1[k] = gf.QuadForm(f.L1F1[k], vinegar)
	}
	for k := 0; k < s.p.O2; k++ {
		vs.r2[k] = gf.QuadForm(f.L2F1[k], vinegar)
		vs.l2F2[k] = gf.VecMul(vinegar, f.L2F2[k])
		vs.l2F3[k] = gf.VecMul(vinegar, f.L2F3[k])
	}
	return vs, true
}

// solveLayers inverts the central map for the message representative h.
// The back-substitution through T always runs; ok reports whether layer 2
// had a solution and z is meaningful.
func (s *signer) solveLayers(vs *vinegarState, h []byte) (z []byte, ok bool) {
	p := s.p
	f := s.central

	xLow := gf.AddVec(h[:p.O1], gf.MulVec(s.s1, h[p.O1:]))
	xHigh := h[p.O1:]

	y1 := gf.MulVec(vs.l1Inv, gf.AddVec(vs.r1, xLow))

	l2 := make(gf.Matrix, p.O2)
	rhs := gf.AddVec(gf.MulVec(vs.l2F2, y1), gf.AddVec(vs.r2, xHigh))
	for k := 0; k < p.O2; k++ {
		l2[k] = gf.AddVec(gf.VecMul(y1, f.L2F6[k]), vs.l2F3[k])
		rhs[k] ^= gf.QuadForm(f.L2F5[k], y1)
	}

	y2, ok := gf.Solve(l2, rhs)
	if !ok {
		y2 = make([]byte, p.O2)
	}

	// z = T(y): (v + T1 y1 + T4 y2, y1 + T3 y2, y2)
	zv := gf.AddVec(gf.AddVec(vs.vinegar, gf.MulVec(s.t1, y1)), gf.MulVec(s.t4, y2))
	z1 := gf.AddVec(y1, gf.MulVec(s.t3, y2))
	z = make([]byte, 0, p.N+p.SaltLen)
	z = append(z, zv...)
	z = append(z, z1...)
	z = append(z, y2...)
	return z, ok
}

// signWithLimit runs the two-phase search with one attempt budget shared
// by both phases.
func signWithLimit(rand io.Reader, key rainbow.Key, message []byte, maxAttempts int) ([]byte, error) {
	sk, err := secretKeyOf(key)
	if err != nil {
		return nil, err
	}
	p := sk.Params()
	if err := core.ValidateParams(p); err != nil {
		return nil, err
	}
	s := &signer{p: p, s1: sk.S1(), t1: sk.T1(), t3: sk.T3(), t4: sk.T4(), central: sk.Central()}

	attempts := 0

	// Phase A: find vinegar values with an invertible layer-1 system.
	var vs *vinegarState
	defer func() { s.wipe(vs) }()
	for vs == nil {
		if attempts >= maxAttempts {
			return nil, rainbow.ErrSignatureGenerationFailure
		}
		attempts++
		vinegar := make([]byte, p.V1)
		if err := utils.ReadRandom(rand, vinegar); err != nil {
			return nil, fmt.Errorf("sign: %w", err)
		}
		var ok bool
		if vs, ok = s.tryVinegar(vinegar); !ok {
			utils.Zeroize(vinegar)
		}
	}

	// Phase B: draw salts until layer 2 is solvable.
	for attempts < maxAttempts {
		attempts++
		salt := make([]byte, p.SaltLen)
		if err := utils.ReadRandom(rand, salt); err != nil {
			return nil, fmt.Errorf("sign: %w", err)
		}
		h := utils.ExpandHash(p.Hash, p.M, message, salt)
		z, ok := s.solveLayers(vs, h)
		if ok {
			return append(z, salt...), nil
		}
	}
	return nil, rainbow.ErrSignatureGenerationFailure
}
