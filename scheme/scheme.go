// Package scheme exposes the Rainbow parameter sets through the generic
// signature interface of github.com/cloudflare/circl/sign.
//
// Private keys are the 64-byte seed pair sk_seed ‖ pk_seed. The expanded
// secret key is derived on first use and cached. Public keys use the
// expanded form for the Classic variant and the compact form otherwise.
package scheme

import (
	"crypto"
	"errors"
	"io"
	"strings"
	"sync"

	rainbow "github.com/BackendStack21/rainbow-go"
	"github.com/BackendStack21/rainbow-go/core"
	"github.com/BackendStack21/rainbow-go/keygen"
	rsign "github.com/BackendStack21/rainbow-go/sign"
	"github.com/BackendStack21/rainbow-go/utils"
	"github.com/cloudflare/circl/sign"
)

// SeedSize is the size of the seed accepted by DeriveKey.
const SeedSize = 2 * core.SeedLen

type scheme struct {
	params rainbow.Params
}

var (
	_ sign.Scheme     = (*scheme)(nil)
	_ sign.PublicKey  = (*PublicKey)(nil)
	_ sign.PrivateKey = (*PrivateKey)(nil)
	_ sign.Seeded     = (*PrivateKey)(nil)
)

var all []sign.Scheme

func init() {
	for _, p := range core.AllParams() {
		all = append(all, &scheme{params: p})
	}
}

// New returns the scheme for a standard parameter set.
func New(p rainbow.Params) (sign.Scheme, error) {
	for _, s := range all {
		if s.(*scheme).params == p {
			return s, nil
		}
	}
	return nil, rainbow.ErrInvalidParameter
}

// All returns every supported scheme.
func All() []sign.Scheme {
	out := make([]sign.Scheme, len(all))
	copy(out, all)
	return out
}

// ByName looks up a scheme by name, e.g. "Rainbow-III-Classic". Returns nil
// if no scheme matches.
func ByName(name string) sign.Scheme {
	for _, s := range all {
		if strings.EqualFold(s.Name(), name) {
			return s
		}
	}
	return nil
}

func (s *scheme) publicKind() rainbow.KeyKind {
	if s.params.Variant == rainbow.Classic {
		return rainbow.KindPublicExpanded
	}
	return rainbow.KindPublic
}

func (s *scheme) Name() string        { return s.params.Name() }
func (s *scheme) PublicKeySize() int  { return rsign.KeySize(s.publicKind(), s.params) }
func (s *scheme) PrivateKeySize() int { return SeedSize }
func (s *scheme) SignatureSize() int  { return s.params.SignatureSize() }
func (s *scheme) SeedSize() int       { return SeedSize }

func (*scheme) SupportsContext() bool {
	return false
}

func (s *scheme) GenerateKey() (sign.PublicKey, sign.PrivateKey, error) {
	seed, err := utils.SecureRandomBytes(SeedSize)
	if err != nil {
		return nil, nil, err
	}
	defer utils.Zeroize(seed)
	if err := utils.ValidateSeedEntropy(seed[:core.SeedLen]); err != nil {
		return nil, nil, err
	}
	pk, sk := s.DeriveKey(seed)
	return pk, sk, nil
}

func (s *scheme) DeriveKey(seed []byte) (sign.PublicKey, sign.PrivateKey) {
	if len(seed) != SeedSize {
		panic(sign.ErrSeedSize)
	}
	sk := s.newPrivateKey(seed)
	return sk.public(), sk
}

func (s *scheme) Sign(sk sign.PrivateKey, message []byte, opts *sign.SignatureOpts) []byte {
	priv, ok := sk.(*PrivateKey)
	if !ok || priv.sch != s {
		panic(sign.ErrTypeMismatch)
	}
	if opts != nil && opts.Context != "" {
		panic(sign.ErrContextNotSupported)
	}
	sig, err := rsign.Sign(nil, priv.secret(), message)
	if err != nil {
		panic(err)
	}
	return sig
}

func (s *scheme) Verify(pk sign.PublicKey, message, signature []byte, opts *sign.SignatureOpts) bool {
	pub, ok := pk.(*PublicKey)
	if !ok || pub.sch != s {
		panic(sign.ErrTypeMismatch)
	}
	if opts != nil && opts.Context != "" {
		panic(sign.ErrContextNotSupported)
	}
	return rsign.Verify(pub.key, message, signature)
}

func (s *scheme) UnmarshalBinaryPublicKey(buf []byte) (sign.PublicKey, error) {
	if len(buf) != s.PublicKeySize() {
		return nil, sign.ErrPubKeySize
	}
	key, err := rsign.UnmarshalKey(buf)
	if err != nil {
		return nil, err
	}
	if key.Kind() != s.publicKind() || key.Params() != s.params {
		return nil, sign.ErrTypeMismatch
	}
	return &PublicKey{sch: s, key: key}, nil
}

func (s *scheme) UnmarshalBinaryPrivateKey(buf []byte) (sign.PrivateKey, error) {
	if len(buf) != SeedSize {
		return nil, sign.ErrPrivKeySize
	}
	return s.newPrivateKey(buf), nil
}

// PublicKey is a Rainbow public key bound to its scheme.
type PublicKey struct {
	sch *scheme
	key rainbow.Key
}

// Key returns the underlying *rainbow.PublicKey or *rainbow.ExpandedPublicKey.
func (pk *PublicKey) Key() rainbow.Key { return pk.key }

func (pk *PublicKey) Scheme() sign.Scheme { return pk.sch }

func (pk *PublicKey) MarshalBinary() ([]byte, error) {
	return rsign.MarshalKey(pk.key)
}

// Equal returns whether the two public keys equal.
func (pk *PublicKey) Equal(other crypto.PublicKey) bool {
	o, ok := other.(*PublicKey)
	if !ok || o.sch != pk.sch {
		return false
	}
	switch k := pk.key.(type) {
	case *rainbow.PublicKey:
		ot, _ := o.key.(*rainbow.PublicKey)
		return ot != nil && k.Equal(ot)
	case *rainbow.ExpandedPublicKey:
		ot, _ := o.key.(*rainbow.ExpandedPublicKey)
		return ot != nil && k.Equal(ot)
	}
	return false
}

// PrivateKey is a Rainbow seed pair. It implements crypto.Signer.
type PrivateKey struct {
	sch  *scheme
	seed []byte

	once sync.Once
	sk   *rainbow.SecretKey
	pk   *PublicKey
}

func (s *scheme) newPrivateKey(seed []byte) *PrivateKey {
	return &PrivateKey{sch: s, seed: append([]byte(nil), seed...)}
}

func (sk *PrivateKey) expand() {
	sk.once.Do(func() {
		p := sk.sch.params
		secret, compact := keygen.Generate(p, sk.seed[:core.SeedLen], sk.seed[core.SeedLen:])
		sk.sk = secret
		if p.Variant == rainbow.Classic {
			sk.pk = &PublicKey{sch: sk.sch, key: keygen.ExpandPublicKey(compact)}
		} else {
			sk.pk = &PublicKey{sch: sk.sch, key: compact}
		}
	})
}

func (sk *PrivateKey) secret() *rainbow.SecretKey {
	sk.expand()
	return sk.sk
}

func (sk *PrivateKey) public() *PublicKey {
	sk.expand()
	return sk.pk
}

func (sk *PrivateKey) Scheme() sign.Scheme { return sk.sch }

// Seed returns a copy of the seed pair.
func (sk *PrivateKey) Seed() []byte {
	return append([]byte(nil), sk.seed...)
}

func (sk *PrivateKey) MarshalBinary() ([]byte, error) {
	return sk.Seed(), nil
}

// Public returns the matching *PublicKey.
func (sk *PrivateKey) Public() crypto.PublicKey {
	return sk.public()
}

// Equal returns whether the two private keys equal.
func (sk *PrivateKey) Equal(other crypto.PrivateKey) bool {
	o, ok := other.(*PrivateKey)
	if !ok || o.sch != sk.sch {
		return false
	}
	return utils.ConstantTimeEqual(sk.seed, o.seed)
}

// Sign signs msg with randomness from rand. opts.HashFunc() must be zero;
// Rainbow hashes the message itself.
func (sk *PrivateKey) Sign(rand io.Reader, msg []byte, opts crypto.SignerOpts) ([]byte, error) {
	if opts != nil && opts.HashFunc() != crypto.Hash(0) {
		return nil, errors.New("rainbow: cannot sign hashed message")
	}
	return rsign.Sign(rand, sk.secret(), msg)
}
