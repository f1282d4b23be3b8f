package sign

import (
	rainbow "github.com/BackendStack21/rainbow-go"
	"github.com/BackendStack21/rainbow-go/core"
	"github.com/BackendStack21/rainbow-go/keygen"
	"github.com/BackendStack21/rainbow-go/utils"
)

// Verify checks if signature is valid for message under pk. It returns
// false for any malformed input, including secret keys and signatures of
// the wrong length.
func Verify(pk rainbow.Key, message, signature []byte) bool {
	var evaluate func(z []byte) []byte
	var wellFormed func() bool
	switch k := pk.(type) {
	case *rainbow.PublicKey:
		if k == nil {
			return false
		}
		wellFormed = k.WellFormed
		evaluate = func(z []byte) []byte { return keygen.EvaluatePublicMap(k, z) }
	case *rainbow.ExpandedPublicKey:
		if k == nil {
			return false
		}
		wellFormed = k.WellFormed
		evaluate = func(z []byte) []byte { return keygen.EvaluateExpanded(k, z) }
	default:
		return false
	}

	p := pk.Params()
	if core.ValidateParams(p) != nil || !wellFormed() {
		return false
	}
	if len(signature) != p.SignatureSize() {
		return false
	}
	z, salt := signature[:p.N], signature[p.N:]

	want := utils.ExpandHash(p.Hash, p.M, message, salt)
	got := evaluate(z)
	return utils.ConstantTimeEqual(got, want)
}
