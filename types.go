package rainbow

import (
	"crypto"
	"errors"
	"fmt"

	"github.com/BackendStack21/rainbow-go/gf"
)

// Strength selects one of the two standardized Rainbow dimension sets.
type Strength int

const (
	// StrengthIII is the NIST level III parameter set (v1=68, o1=32, o2=48).
	StrengthIII Strength = 3
	// StrengthV is the NIST level V parameter set (v1=96, o1=36, o2=64).
	StrengthV Strength = 5
)

// String returns the roman numeral of the strength.
func (s Strength) String() string {
	switch s {
	case StrengthIII:
		return "III"
	case StrengthV:
		return "V"
	default:
		return fmt.Sprintf("Strength(%d)", int(s))
	}
}

// Variant selects how keys are represented.
type Variant int

const (
	// Classic keeps the full secret key and a dense public key.
	Classic Variant = iota
	// Circumzenithal keeps the full secret key and a compact public key
	// whose seed-derived blocks are regenerated on demand.
	Circumzenithal
	// Compressed stores only the two seeds as secret key and a compact
	// public key.
	Compressed
)

// String returns the variant name.
func (v Variant) String() string {
	switch v {
	case Classic:
		return "Classic"
	case Circumzenithal:
		return "Circumzenithal"
	case Compressed:
		return "Compressed"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// =============================================================================
// Parameter Types
// =============================================================================

// Params is an immutable Rainbow parameter set.
type Params struct {
	Strength  Strength    `json:"strength"`
	Variant   Variant     `json:"variant"`
	V1        int         `json:"v1"` // Vinegar variables
	O1        int         `json:"o1"` // Layer-1 oil variables
	O2        int         `json:"o2"` // Layer-2 oil variables
	N         int         `json:"n"`  // Total variables, V1+O1+O2
	M         int         `json:"m"`  // Equations, O1+O2
	SaltLen   int         `json:"salt_len"`
	SkSeedLen int         `json:"sk_seed_len"`
	PkSeedLen int         `json:"pk_seed_len"`
	Hash      crypto.Hash `json:"-"`
}

// Name returns the conventional name of the parameter set, e.g.
// "Rainbow-III-Classic".
func (p Params) Name() string {
	return "Rainbow-" + p.Strength.String() + "-" + p.Variant.String()
}

// SignatureSize returns the signature length in bytes.
func (p Params) SignatureSize() int {
	return p.N + p.SaltLen
}

// =============================================================================
// Key Types
// =============================================================================

// KeyKind tags the concrete representation behind a Key.
type KeyKind uint8

const (
	// KindPublic is a compact public key (*PublicKey).
	KindPublic KeyKind = iota + 1
	// KindPublicExpanded is a dense public key (*ExpandedPublicKey).
	KindPublicExpanded
	// KindSecret is a full secret key (*SecretKey).
	KindSecret
	// KindSecretCompressed is a seed-only secret key (*CompressedSecretKey).
	KindSecretCompressed
)

// String returns a short name for the kind.
func (k KeyKind) String() string {
	switch k {
	case KindPublic:
		return "public"
	case KindPublicExpanded:
		return "public-expanded"
	case KindSecret:
		return "secret"
	case KindSecretCompressed:
		return "secret-compressed"
	default:
		return fmt.Sprintf("KeyKind(%d)", uint8(k))
	}
}

// IsPublic reports whether the kind is one of the public representations.
func (k KeyKind) IsPublic() bool {
	return k == KindPublic || k == KindPublicExpanded
}

// Key is implemented by every key representation.
type Key interface {
	Kind() KeyKind
	Params() Params
}

// CentralMap is the secret layered quadratic map F.
//
// Layer 1 has O1 equations in the vinegar and layer-1 oil variables; layer 2
// has O2 equations over all variables. Only blocks that can be nonzero are
// stored. The quadratic blocks L1F1, L2F1 and L2F5 are upper triangular.
type CentralMap struct {
	L1F1 []gf.Matrix // v1 x v1
	L1F2 []gf.Matrix // v1 x o1
	L2F1 []gf.Matrix // v1 x v1
	L2F2 []gf.Matrix // v1 x o1
	L2F3 []gf.Matrix // v1 x o2
	L2F5 []gf.Matrix // o1 x o1
	L2F6 []gf.Matrix // o1 x o2
}

// Clone returns a deep copy of the map.
func (c CentralMap) Clone() CentralMap {
	return CentralMap{
		L1F1: gf.CloneAll(c.L1F1),
		L1F2: gf.CloneAll(c.L1F2),
		L2F1: gf.CloneAll(c.L2F1),
		L2F2: gf.CloneAll(c.L2F2),
		L2F3: gf.CloneAll(c.L2F3),
		L2F5: gf.CloneAll(c.L2F5),
		L2F6: gf.CloneAll(c.L2F6),
	}
}

// Equal reports whether both maps hold the same blocks.
func (c CentralMap) Equal(o CentralMap) bool {
	return gf.EqualAll(c.L1F1, o.L1F1) && gf.EqualAll(c.L1F2, o.L1F2) &&
		gf.EqualAll(c.L2F1, o.L2F1) && gf.EqualAll(c.L2F2, o.L2F2) &&
		gf.EqualAll(c.L2F3, o.L2F3) && gf.EqualAll(c.L2F5, o.L2F5) &&
		gf.EqualAll(c.L2F6, o.L2F6)
}

// PublicBlocks holds the public-map blocks that cannot be regenerated from
// the public seed. Block names follow the variable split
// (vinegar, oil-1, oil-2): Q3 is vinegar x oil-2, Q5 oil-1 x oil-1,
// Q6 oil-1 x oil-2 and Q9 oil-2 x oil-2. Q5 and Q9 are upper triangular.
type PublicBlocks struct {
	L1Q3 []gf.Matrix // o1 equations, v1 x o2
	L1Q5 []gf.Matrix // o1 equations, o1 x o1
	L1Q6 []gf.Matrix // o1 equations, o1 x o2
	L1Q9 []gf.Matrix // o1 equations, o2 x o2
	L2Q9 []gf.Matrix // o2 equations, o2 x o2
}

// Clone returns a deep copy of the blocks.
func (b PublicBlocks) Clone() PublicBlocks {
	return PublicBlocks{
		L1Q3: gf.CloneAll(b.L1Q3),
		L1Q5: gf.CloneAll(b.L1Q5),
		L1Q6: gf.CloneAll(b.L1Q6),
		L1Q9: gf.CloneAll(b.L1Q9),
		L2Q9: gf.CloneAll(b.L2Q9),
	}
}

// Equal reports whether both block sets are identical.
func (b PublicBlocks) Equal(o PublicBlocks) bool {
	return gf.EqualAll(b.L1Q3, o.L1Q3) && gf.EqualAll(b.L1Q5, o.L1Q5) &&
		gf.EqualAll(b.L1Q6, o.L1Q6) && gf.EqualAll(b.L1Q9, o.L1Q9) &&
		gf.EqualAll(b.L2Q9, o.L2Q9)
}

// WellFormed reports whether the block counts and shapes match p.
func (b PublicBlocks) WellFormed(p Params) bool {
	return gf.ShapedAll(b.L1Q3, p.O1, p.V1, p.O2) &&
		gf.ShapedAll(b.L1Q5, p.O1, p.O1, p.O1) &&
		gf.ShapedAll(b.L1Q6, p.O1, p.O1, p.O2) &&
		gf.ShapedAll(b.L1Q9, p.O1, p.O2, p.O2) &&
		gf.ShapedAll(b.L2Q9, p.O2, p.O2, p.O2)
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}

// SecretKey is a full Rainbow secret key: the secret seed, the affine
// transforms S and T in reduced form, and the central map.
type SecretKey struct {
	params  Params
	skSeed  []byte
	s1      gf.Matrix // o1 x o2
	t1      gf.Matrix // v1 x o1
	t3      gf.Matrix // o1 x o2
	t4      gf.Matrix // v1 x o2, T1*T3 + T2
	central CentralMap
}

// NewSecretKey builds a secret key from its components. All inputs are
// copied.
func NewSecretKey(p Params, skSeed []byte, s1, t1, t3, t4 gf.Matrix, central CentralMap) *SecretKey {
	return &SecretKey{
		params:  p,
		skSeed:  cloneBytes(skSeed),
		s1:      s1.Clone(),
		t1:      t1.Clone(),
		t3:      t3.Clone(),
		t4:      t4.Clone(),
		central: central.Clone(),
	}
}

func (sk *SecretKey) Kind() KeyKind { return KindSecret }
func (sk *SecretKey) Params() Params { return sk.params }

// SkSeed returns a copy of the secret seed.
func (sk *SecretKey) SkSeed() []byte { return cloneBytes(sk.skSeed) }

// S1 returns a copy of the non-trivial block of S.
func (sk *SecretKey) S1() gf.Matrix { return sk.s1.Clone() }

// T1 returns a copy of the vinegar x oil-1 block of T.
func (sk *SecretKey) T1() gf.Matrix { return sk.t1.Clone() }

// T3 returns a copy of the oil-1 x oil-2 block of T.
func (sk *SecretKey) T3() gf.Matrix { return sk.t3.Clone() }

// T4 returns a copy of T1*T3 + T2.
func (sk *SecretKey) T4() gf.Matrix { return sk.t4.Clone() }

// Central returns a copy of the central map.
func (sk *SecretKey) Central() CentralMap { return sk.central.Clone() }

// Equal reports whether two secret keys are identical.
func (sk *SecretKey) Equal(o *SecretKey) bool {
	if sk == nil || o == nil {
		return sk == o
	}
	return sk.params == o.params &&
		string(sk.skSeed) == string(o.skSeed) &&
		sk.s1.Equal(o.s1) && sk.t1.Equal(o.t1) &&
		sk.t3.Equal(o.t3) && sk.t4.Equal(o.t4) &&
		sk.central.Equal(o.central)
}

// CompressedSecretKey is a secret key reduced to the two seeds it was
// derived from.
type CompressedSecretKey struct {
	params Params
	skSeed []byte
	pkSeed []byte
}

// NewCompressedSecretKey builds a compressed secret key. The seeds are
// copied.
func NewCompressedSecretKey(p Params, skSeed, pkSeed []byte) *CompressedSecretKey {
	return &CompressedSecretKey{params: p, skSeed: cloneBytes(skSeed), pkSeed: cloneBytes(pkSeed)}
}

func (sk *CompressedSecretKey) Kind() KeyKind { return KindSecretCompressed }
func (sk *CompressedSecretKey) Params() Params { return sk.params }

// SkSeed returns a copy of the secret seed.
func (sk *CompressedSecretKey) SkSeed() []byte { return cloneBytes(sk.skSeed) }

// PkSeed returns a copy of the public seed.
func (sk *CompressedSecretKey) PkSeed() []byte { return cloneBytes(sk.pkSeed) }

// PublicKey is the compact public key: the public seed plus the blocks of
// the public map that depend on the secret.
type PublicKey struct {
	params Params
	pkSeed []byte
	blocks PublicBlocks
}

// NewPublicKey builds a compact public key. All inputs are copied.
func NewPublicKey(p Params, pkSeed []byte, blocks PublicBlocks) *PublicKey {
	return &PublicKey{params: p, pkSeed: cloneBytes(pkSeed), blocks: blocks.Clone()}
}

func (pk *PublicKey) Kind() KeyKind { return KindPublic }
func (pk *PublicKey) Params() Params { return pk.params }

// PkSeed returns a copy of the public seed.
func (pk *PublicKey) PkSeed() []byte { return cloneBytes(pk.pkSeed) }

// Blocks returns a copy of the stored public blocks.
func (pk *PublicKey) Blocks() PublicBlocks { return pk.blocks.Clone() }

// WellFormed reports whether the seed length and the stored blocks match
// the key's parameters.
func (pk *PublicKey) WellFormed() bool {
	return len(pk.pkSeed) == pk.params.PkSeedLen && pk.blocks.WellFormed(pk.params)
}

// Equal reports whether two public keys are identical.
func (pk *PublicKey) Equal(o *PublicKey) bool {
	if pk == nil || o == nil {
		return pk == o
	}
	return pk.params == o.params &&
		string(pk.pkSeed) == string(o.pkSeed) &&
		pk.blocks.Equal(o.blocks)
}

// ExpandedPublicKey is the dense public key: one upper-triangular n x n
// matrix per equation.
type ExpandedPublicKey struct {
	params    Params
	equations []gf.Matrix
}

// NewExpandedPublicKey builds a dense public key. The matrices are copied.
func NewExpandedPublicKey(p Params, equations []gf.Matrix) *ExpandedPublicKey {
	return &ExpandedPublicKey{params: p, equations: gf.CloneAll(equations)}
}

func (pk *ExpandedPublicKey) Kind() KeyKind { return KindPublicExpanded }
func (pk *ExpandedPublicKey) Params() Params { return pk.params }

// Equations returns a copy of the m public quadratic forms.
func (pk *ExpandedPublicKey) Equations() []gf.Matrix { return gf.CloneAll(pk.equations) }

// WellFormed reports whether the key holds m matrices of size n x n.
func (pk *ExpandedPublicKey) WellFormed() bool {
	return gf.ShapedAll(pk.equations, pk.params.M, pk.params.N, pk.params.N)
}

// Equal reports whether two expanded public keys are identical.
func (pk *ExpandedPublicKey) Equal(o *ExpandedPublicKey) bool {
	if pk == nil || o == nil {
		return pk == o
	}
	return pk.params == o.params && gf.EqualAll(pk.equations, o.equations)
}

// KeyPair bundles the two halves produced by key generation. Their
// concrete kinds depend on the parameter set's variant.
type KeyPair struct {
	PublicKey Key
	SecretKey Key
}

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrInvalidParameter is returned for unknown strengths or variants and
	// for seeds of the wrong length.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrSignatureGenerationFailure is returned when the signer exhausts its
	// attempt budget without finding a solvable system.
	ErrSignatureGenerationFailure = errors.New("signature generation failed")
	// ErrInvalidKey is returned when an operation receives a key of the
	// wrong kind.
	ErrInvalidKey = errors.New("invalid key")
	// ErrMalformedKey is returned when an encoded key cannot be decoded.
	ErrMalformedKey = errors.New("malformed key")
)
