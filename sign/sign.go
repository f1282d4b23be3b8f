// Package sign implements Rainbow key generation, signing, verification and
// the raw key codec.
package sign

import (
	"fmt"
	"io"

	rainbow "github.com/BackendStack21/rainbow-go"
	"github.com/BackendStack21/rainbow-go/core"
	"github.com/BackendStack21/rainbow-go/keygen"
	"github.com/BackendStack21/rainbow-go/utils"
)

// GenerateKeyPair generates a key pair from fresh seeds drawn from rand.
// A nil rand uses crypto/rand.
func GenerateKeyPair(rand io.Reader, params rainbow.Params) (*rainbow.KeyPair, error) {
	if err := core.ValidateParams(params); err != nil {
		return nil, err
	}

	seed := make([]byte, params.SkSeedLen+params.PkSeedLen)
	defer utils.Zeroize(seed)
	if err := utils.ReadRandom(rand, seed); err != nil {
		return nil, err
	}
	skSeed, pkSeed := seed[:params.SkSeedLen], seed[params.SkSeedLen:]
	if err := utils.ValidateSeedEntropy(skSeed); err != nil {
		return nil, err
	}

	return GenerateKeyPairFromSeed(params, skSeed, pkSeed)
}

// GenerateKeyPairFromSeed deterministically derives a key pair from the two
// seeds. The representation of each half follows params.Variant.
func GenerateKeyPairFromSeed(params rainbow.Params, skSeed, pkSeed []byte) (*rainbow.KeyPair, error) {
	if err := core.ValidateParams(params); err != nil {
		return nil, err
	}
	if len(skSeed) != params.SkSeedLen {
		return nil, fmt.Errorf("%w: secret seed must be %d bytes", rainbow.ErrInvalidParameter, params.SkSeedLen)
	}
	if len(pkSeed) != params.PkSeedLen {
		return nil, fmt.Errorf("%w: public seed must be %d bytes", rainbow.ErrInvalidParameter, params.PkSeedLen)
	}

	switch params.Variant {
	case rainbow.Classic:
		sk, pk := keygen.Generate(params, skSeed, pkSeed)
		return &rainbow.KeyPair{PublicKey: keygen.ExpandPublicKey(pk), SecretKey: sk}, nil
	case rainbow.Circumzenithal:
		sk, pk := keygen.Generate(params, skSeed, pkSeed)
		return &rainbow.KeyPair{PublicKey: pk, SecretKey: sk}, nil
	case rainbow.Compressed:
		csk := rainbow.NewCompressedSecretKey(params, skSeed, pkSeed)
		return &rainbow.KeyPair{PublicKey: keygen.CompressedPublicKey(csk), SecretKey: csk}, nil
	default:
		return nil, fmt.Errorf("%w: unknown variant: %s", rainbow.ErrInvalidParameter, params.Variant)
	}
}
