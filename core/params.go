// Package core provides parameter sets and validation for Rainbow.
package core

import (
	"crypto"
	_ "crypto/sha512" // registers SHA-384 and SHA-512
	"fmt"
	"strings"

	rainbow "github.com/BackendStack21/rainbow-go"
)

const (
	// SaltLen is the salt length appended to every signature.
	SaltLen = 16
	// SeedLen is the length of both the secret and the public seed.
	SeedLen = 32
	// MaxSignAttempts bounds the signer's retry loop across both phases.
	MaxSignAttempts = 1 << 16
)

// StrengthIIIParams is the Classic parameter set for NIST level III.
var StrengthIIIParams = rainbow.Params{
	Strength:  rainbow.StrengthIII,
	Variant:   rainbow.Classic,
	V1:        68,
	O1:        32,
	O2:        48,
	N:         68 + 32 + 48,
	M:         32 + 48,
	SaltLen:   SaltLen,
	SkSeedLen: SeedLen,
	PkSeedLen: SeedLen,
	Hash:      crypto.SHA384,
}

// StrengthVParams is the Classic parameter set for NIST level V.
var StrengthVParams = rainbow.Params{
	Strength:  rainbow.StrengthV,
	Variant:   rainbow.Classic,
	V1:        96,
	O1:        36,
	O2:        64,
	N:         96 + 36 + 64,
	M:         36 + 64,
	SaltLen:   SaltLen,
	SkSeedLen: SeedLen,
	PkSeedLen: SeedLen,
	Hash:      crypto.SHA512,
}

// Variants lists every supported key representation.
var Variants = []rainbow.Variant{rainbow.Classic, rainbow.Circumzenithal, rainbow.Compressed}

// GetParams returns the parameter set for the given strength and variant.
func GetParams(strength rainbow.Strength, variant rainbow.Variant) (rainbow.Params, error) {
	var p rainbow.Params
	switch strength {
	case rainbow.StrengthIII:
		p = StrengthIIIParams
	case rainbow.StrengthV:
		p = StrengthVParams
	default:
		return rainbow.Params{}, fmt.Errorf("%w: unknown strength: %d", rainbow.ErrInvalidParameter, int(strength))
	}
	switch variant {
	case rainbow.Classic, rainbow.Circumzenithal, rainbow.Compressed:
		p.Variant = variant
	default:
		return rainbow.Params{}, fmt.Errorf("%w: unknown variant: %d", rainbow.ErrInvalidParameter, int(variant))
	}
	return p, nil
}

// AllParams returns every supported parameter set, strength III first.
func AllParams() []rainbow.Params {
	out := make([]rainbow.Params, 0, 2*len(Variants))
	for _, s := range []rainbow.Strength{rainbow.StrengthIII, rainbow.StrengthV} {
		for _, v := range Variants {
			p, _ := GetParams(s, v)
			out = append(out, p)
		}
	}
	return out
}

// ValidateParams validates the parameter set for consistency.
func ValidateParams(p rainbow.Params) error {
	if p.V1 <= 0 || p.O1 <= 0 || p.O2 <= 0 {
		return fmt.Errorf("%w: dimensions must be positive", rainbow.ErrInvalidParameter)
	}
	if p.N != p.V1+p.O1+p.O2 {
		return fmt.Errorf("%w: n must equal v1+o1+o2", rainbow.ErrInvalidParameter)
	}
	if p.M != p.O1+p.O2 {
		return fmt.Errorf("%w: m must equal o1+o2", rainbow.ErrInvalidParameter)
	}
	if p.SaltLen != SaltLen {
		return fmt.Errorf("%w: salt length must be %d", rainbow.ErrInvalidParameter, SaltLen)
	}
	if p.SkSeedLen != SeedLen || p.PkSeedLen != SeedLen {
		return fmt.Errorf("%w: seed length must be %d", rainbow.ErrInvalidParameter, SeedLen)
	}
	if !p.Hash.Available() {
		return fmt.Errorf("%w: hash function unavailable", rainbow.ErrInvalidParameter)
	}
	return nil
}

// ParseStrength accepts "3", "5", "III" or "V".
func ParseStrength(s string) (rainbow.Strength, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "3", "III":
		return rainbow.StrengthIII, nil
	case "5", "V":
		return rainbow.StrengthV, nil
	default:
		return 0, fmt.Errorf("%w: unknown strength: %s", rainbow.ErrInvalidParameter, s)
	}
}

// ParseVariant accepts the variant names case-insensitively.
func ParseVariant(s string) (rainbow.Variant, error) {
	for _, v := range Variants {
		if strings.EqualFold(strings.TrimSpace(s), v.String()) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown variant: %s", rainbow.ErrInvalidParameter, s)
}

// ParseName parses a parameter set name such as "Rainbow-III-Classic".
func ParseName(name string) (rainbow.Params, error) {
	parts := strings.Split(name, "-")
	if len(parts) != 3 || !strings.EqualFold(parts[0], "Rainbow") {
		return rainbow.Params{}, fmt.Errorf("%w: unknown parameter set: %s", rainbow.ErrInvalidParameter, name)
	}
	s, err := ParseStrength(parts[1])
	if err != nil {
		return rainbow.Params{}, err
	}
	v, err := ParseVariant(parts[2])
	if err != nil {
		return rainbow.Params{}, err
	}
	return GetParams(s, v)
}
