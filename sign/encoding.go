package sign

import (
	"fmt"

	rainbow "github.com/BackendStack21/rainbow-go"
	"github.com/BackendStack21/rainbow-go/core"
	"github.com/BackendStack21/rainbow-go/gf"
	"github.com/BackendStack21/rainbow-go/utils"
	"golang.org/x/crypto/cryptobyte"
)

// DomainFingerprint separates key fingerprints from other SHA3-256 uses.
const DomainFingerprint = "rainbow-fingerprint-v1"

// Encoded keys start with a two-byte header, kind<<4 | strength followed by
// the variant, and carry their body behind a 32-bit length prefix. Matrices
// are stored row-major, upper-triangular ones as their upper triangle only.
const headerLen = 2 + 4

func addMatrix(b *cryptobyte.Builder, m gf.Matrix) {
	for _, row := range m {
		b.AddBytes(row)
	}
}

func addUpperTriangular(b *cryptobyte.Builder, m gf.Matrix) {
	for i, row := range m {
		b.AddBytes(row[i:])
	}
}

func addBlocks(b *cryptobyte.Builder, ms []gf.Matrix) {
	for _, m := range ms {
		addMatrix(b, m)
	}
}

func addUpperTriangularBlocks(b *cryptobyte.Builder, ms []gf.Matrix) {
	for _, m := range ms {
		addUpperTriangular(b, m)
	}
}

// MarshalKey encodes any key representation.
func MarshalKey(key rainbow.Key) ([]byte, error) {
	if key == nil {
		return nil, fmt.Errorf("%w: nil key", rainbow.ErrInvalidKey)
	}
	var body func(b *cryptobyte.Builder)
	switch k := key.(type) {
	case *rainbow.SecretKey:
		if k == nil {
			break
		}
		body = func(b *cryptobyte.Builder) {
			b.AddBytes(k.SkSeed())
			addMatrix(b, k.S1())
			addMatrix(b, k.T1())
			addMatrix(b, k.T3())
			addMatrix(b, k.T4())
			f := k.Central()
			addUpperTriangularBlocks(b, f.L1F1)
			addBlocks(b, f.L1F2)
			addUpperTriangularBlocks(b, f.L2F1)
			addBlocks(b, f.L2F2)
			addBlocks(b, f.L2F3)
			addUpperTriangularBlocks(b, f.L2F5)
			addBlocks(b, f.L2F6)
		}
	case *rainbow.CompressedSecretKey:
		if k == nil {
			break
		}
		body = func(b *cryptobyte.Builder) {
			b.AddBytes(k.SkSeed())
			b.AddBytes(k.PkSeed())
		}
	case *rainbow.PublicKey:
		if k == nil {
			break
		}
		if !k.WellFormed() {
			return nil, fmt.Errorf("%w: public key blocks do not match %s", rainbow.ErrInvalidKey, k.Params().Name())
		}
		body = func(b *cryptobyte.Builder) {
			b.AddBytes(k.PkSeed())
			q := k.Blocks()
			addBlocks(b, q.L1Q3)
			addUpperTriangularBlocks(b, q.L1Q5)
			addBlocks(b, q.L1Q6)
			addUpperTriangularBlocks(b, q.L1Q9)
			addUpperTriangularBlocks(b, q.L2Q9)
		}
	case *rainbow.ExpandedPublicKey:
		if k == nil {
			break
		}
		if !k.WellFormed() {
			return nil, fmt.Errorf("%w: public key equations do not match %s", rainbow.ErrInvalidKey, k.Params().Name())
		}
		body = func(b *cryptobyte.Builder) {
			addUpperTriangularBlocks(b, k.Equations())
		}
	}
	if body == nil {
		return nil, fmt.Errorf("%w: unsupported key %T", rainbow.ErrInvalidKey, key)
	}

	p := key.Params()
	if std, err := core.GetParams(p.Strength, p.Variant); err != nil || std != p {
		return nil, fmt.Errorf("%w: non-standard parameter set %s", rainbow.ErrInvalidKey, p.Name())
	}
	var b cryptobyte.Builder
	b.AddUint8(byte(key.Kind())<<4 | byte(p.Strength))
	b.AddUint8(byte(p.Variant))
	b.AddUint32LengthPrefixed(body)
	return b.Bytes()
}

// decoder reads fixed-size fields and remembers the first failure.
type decoder struct {
	s  cryptobyte.String
	ok bool
}

func (d *decoder) bytes(n int) []byte {
	out := make([]byte, n)
	if !d.ok || !d.s.CopyBytes(out) {
		d.ok = false
	}
	return out
}

func (d *decoder) matrix(rows, cols int) gf.Matrix {
	m := gf.NewMatrix(rows, cols)
	for i := range m {
		if !d.ok || !d.s.CopyBytes(m[i]) {
			d.ok = false
		}
	}
	return m
}

func (d *decoder) upperTriangular(n int) gf.Matrix {
	m := gf.NewMatrix(n, n)
	for i := range m {
		if !d.ok || !d.s.CopyBytes(m[i][i:]) {
			d.ok = false
		}
	}
	return m
}

func (d *decoder) blocks(count, rows, cols int) []gf.Matrix {
	out := make([]gf.Matrix, count)
	for k := range out {
		out[k] = d.matrix(rows, cols)
	}
	return out
}

func (d *decoder) upperTriangularBlocks(count, n int) []gf.Matrix {
	out := make([]gf.Matrix, count)
	for k := range out {
		out[k] = d.upperTriangular(n)
	}
	return out
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", rainbow.ErrMalformedKey, fmt.Sprintf(format, args...))
}

// UnmarshalKey decodes a key produced by MarshalKey. The concrete type of
// the result is selected by the encoded kind.
func UnmarshalKey(data []byte) (rainbow.Key, error) {
	if err := utils.CheckLength(len(data), utils.MaxEncodedKeySize); err != nil {
		return nil, malformed("%v", err)
	}
	s := cryptobyte.String(data)
	var tag, variant uint8
	var bodyLen uint32
	var body cryptobyte.String
	if !s.ReadUint8(&tag) || !s.ReadUint8(&variant) || !s.ReadUint32(&bodyLen) ||
		!s.ReadBytes((*[]byte)(&body), int(bodyLen)) || !s.Empty() {
		return nil, malformed("bad framing")
	}

	kind := rainbow.KeyKind(tag >> 4)
	p, err := core.GetParams(rainbow.Strength(tag&0x0F), rainbow.Variant(variant))
	if err != nil {
		return nil, malformed("%v", err)
	}
	want := KeySize(kind, p)
	if want == 0 {
		return nil, malformed("unknown key kind %d", uint8(kind))
	}
	if want != len(data) {
		return nil, malformed("%s key for %s must be %d bytes, got %d", kind, p.Name(), want, len(data))
	}

	d := &decoder{s: body, ok: true}
	var key rainbow.Key
	switch kind {
	case rainbow.KindSecret:
		skSeed := d.bytes(p.SkSeedLen)
		s1 := d.matrix(p.O1, p.O2)
		t1 := d.matrix(p.V1, p.O1)
		t3 := d.matrix(p.O1, p.O2)
		t4 := d.matrix(p.V1, p.O2)
		var f rainbow.CentralMap
		f.L1F1 = d.upperTriangularBlocks(p.O1, p.V1)
		f.L1F2 = d.blocks(p.O1, p.V1, p.O1)
		f.L2F1 = d.upperTriangularBlocks(p.O2, p.V1)
		f.L2F2 = d.blocks(p.O2, p.V1, p.O1)
		f.L2F3 = d.blocks(p.O2, p.V1, p.O2)
		f.L2F5 = d.upperTriangularBlocks(p.O2, p.O1)
		f.L2F6 = d.blocks(p.O2, p.O1, p.O2)
		key = rainbow.NewSecretKey(p, skSeed, s1, t1, t3, t4, f)
	case rainbow.KindSecretCompressed:
		skSeed := d.bytes(p.SkSeedLen)
		pkSeed := d.bytes(p.PkSeedLen)
		key = rainbow.NewCompressedSecretKey(p, skSeed, pkSeed)
	case rainbow.KindPublic:
		pkSeed := d.bytes(p.PkSeedLen)
		var q rainbow.PublicBlocks
		q.L1Q3 = d.blocks(p.O1, p.V1, p.O2)
		q.L1Q5 = d.upperTriangularBlocks(p.O1, p.O1)
		q.L1Q6 = d.blocks(p.O1, p.O1, p.O2)
		q.L1Q9 = d.upperTriangularBlocks(p.O1, p.O2)
		q.L2Q9 = d.upperTriangularBlocks(p.O2, p.O2)
		key = rainbow.NewPublicKey(p, pkSeed, q)
	case rainbow.KindPublicExpanded:
		key = rainbow.NewExpandedPublicKey(p, d.upperTriangularBlocks(p.M, p.N))
	default:
		return nil, malformed("unknown key kind %d", uint8(kind))
	}
	if !d.ok || !d.s.Empty() {
		return nil, malformed("truncated or oversized body")
	}
	return key, nil
}

// sizeCalc accumulates an encoded size with overflow-checked arithmetic.
// The first error sticks and every later step is a no-op.
type sizeCalc struct {
	total int
	err   error
}

func (c *sizeCalc) mul(a, b int) int {
	if c.err != nil {
		return 0
	}
	r, err := utils.SafeMultiply(a, b)
	c.err = err
	return r
}

func (c *sizeCalc) add(n int) {
	if c.err != nil {
		return
	}
	c.total, c.err = utils.SafeAdd(c.total, n)
}

// triangle is the number of entries in an n x n upper-triangular block.
func (c *sizeCalc) triangle(n int) int {
	if c.err != nil {
		return 0
	}
	n1, err := utils.SafeAdd(n, 1)
	if err != nil {
		c.err = err
		return 0
	}
	return c.mul(n, n1) / 2
}

// KeySize returns the encoded size in bytes of a key of the given kind, or
// 0 for an unknown kind or parameters whose size does not fit in an int.
func KeySize(kind rainbow.KeyKind, p rainbow.Params) int {
	v1, o1, o2 := p.V1, p.O1, p.O2
	c := &sizeCalc{total: headerLen}
	switch kind {
	case rainbow.KindSecret:
		c.add(p.SkSeedLen)
		c.add(c.mul(o1, o2))
		c.add(c.mul(v1, o1))
		c.add(c.mul(o1, o2))
		c.add(c.mul(v1, o2))
		c.add(c.mul(o1, c.triangle(v1)))
		c.add(c.mul(o1, c.mul(v1, o1)))
		c.add(c.mul(o2, c.triangle(v1)))
		c.add(c.mul(o2, c.mul(v1, o1)))
		c.add(c.mul(o2, c.mul(v1, o2)))
		c.add(c.mul(o2, c.triangle(o1)))
		c.add(c.mul(o2, c.mul(o1, o2)))
	case rainbow.KindSecretCompressed:
		c.add(p.SkSeedLen)
		c.add(p.PkSeedLen)
	case rainbow.KindPublic:
		c.add(p.PkSeedLen)
		c.add(c.mul(o1, c.mul(v1, o2)))
		c.add(c.mul(o1, c.triangle(o1)))
		c.add(c.mul(o1, c.mul(o1, o2)))
		c.add(c.mul(o1, c.triangle(o2)))
		c.add(c.mul(o2, c.triangle(o2)))
	case rainbow.KindPublicExpanded:
		c.add(c.mul(p.M, c.triangle(p.N)))
	default:
		return 0
	}
	if c.err != nil {
		return 0
	}
	return c.total
}

// Fingerprint returns a domain-separated SHA3-256 digest of the encoded
// key. It identifies public keys in the key store and the CLI.
func Fingerprint(key rainbow.Key) ([]byte, error) {
	enc, err := MarshalKey(key)
	if err != nil {
		return nil, err
	}
	return utils.HashWithDomain(DomainFingerprint, enc), nil
}
