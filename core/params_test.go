package core

import (
	"crypto"
	"errors"
	"testing"

	rainbow "github.com/BackendStack21/rainbow-go"
)

func TestGetParams(t *testing.T) {
	// Strength III
	p3, err := GetParams(rainbow.StrengthIII, rainbow.Classic)
	if err != nil {
		t.Fatalf("GetParams(III) failed: %v", err)
	}
	if p3.V1 != 68 || p3.O1 != 32 || p3.O2 != 48 || p3.N != 148 || p3.M != 80 {
		t.Errorf("unexpected strength III dimensions: %+v", p3)
	}
	if p3.Hash != crypto.SHA384 {
		t.Errorf("Expected SHA-384, got %v", p3.Hash)
	}

	// Strength V
	p5, err := GetParams(rainbow.StrengthV, rainbow.Compressed)
	if err != nil {
		t.Fatalf("GetParams(V) failed: %v", err)
	}
	if p5.V1 != 96 || p5.O1 != 36 || p5.O2 != 64 || p5.N != 196 || p5.M != 100 {
		t.Errorf("unexpected strength V dimensions: %+v", p5)
	}
	if p5.Hash != crypto.SHA512 {
		t.Errorf("Expected SHA-512, got %v", p5.Hash)
	}
	if p5.Variant != rainbow.Compressed {
		t.Errorf("Expected Compressed, got %s", p5.Variant)
	}

	// Test invalid
	if _, err := GetParams(4, rainbow.Classic); !errors.Is(err, rainbow.ErrInvalidParameter) {
		t.Errorf("GetParams(4) should fail with ErrInvalidParameter, got %v", err)
	}
	if _, err := GetParams(rainbow.StrengthIII, rainbow.Variant(9)); !errors.Is(err, rainbow.ErrInvalidParameter) {
		t.Errorf("GetParams(variant 9) should fail with ErrInvalidParameter, got %v", err)
	}
}

func TestParamsName(t *testing.T) {
	tests := []struct {
		s    rainbow.Strength
		v    rainbow.Variant
		want string
	}{
		{rainbow.StrengthIII, rainbow.Classic, "Rainbow-III-Classic"},
		{rainbow.StrengthIII, rainbow.Circumzenithal, "Rainbow-III-Circumzenithal"},
		{rainbow.StrengthV, rainbow.Compressed, "Rainbow-V-Compressed"},
	}
	for _, tt := range tests {
		p, err := GetParams(tt.s, tt.v)
		if err != nil {
			t.Fatalf("GetParams: %v", err)
		}
		if got := p.Name(); got != tt.want {
			t.Errorf("Name() = %q, want %q", got, tt.want)
		}
		back, err := ParseName(tt.want)
		if err != nil {
			t.Fatalf("ParseName(%q): %v", tt.want, err)
		}
		if back != p {
			t.Errorf("ParseName(%q) = %+v, want %+v", tt.want, back, p)
		}
	}

	for _, bad := range []string{"", "Rainbow", "Rainbow-IV-Classic", "Rainbow-III-Dense", "Mosaic-III-Classic"} {
		if _, err := ParseName(bad); err == nil {
			t.Errorf("ParseName(%q) should fail", bad)
		}
	}
}

func TestAllParams(t *testing.T) {
	all := AllParams()
	if len(all) != 6 {
		t.Fatalf("expected 6 parameter sets, got %d", len(all))
	}
	seen := map[string]bool{}
	for _, p := range all {
		if err := ValidateParams(p); err != nil {
			t.Errorf("%s: %v", p.Name(), err)
		}
		seen[p.Name()] = true
	}
	if len(seen) != 6 {
		t.Errorf("parameter set names are not unique: %v", seen)
	}
}

func TestValidateParams(t *testing.T) {
	base := StrengthIIIParams

	if err := ValidateParams(base); err != nil {
		t.Errorf("ValidateParams failed for valid params: %v", err)
	}

	mutations := map[string]func(p *rainbow.Params){
		"zero v1":      func(p *rainbow.Params) { p.V1 = 0 },
		"negative o2":  func(p *rainbow.Params) { p.O2 = -1 },
		"wrong n":      func(p *rainbow.Params) { p.N++ },
		"wrong m":      func(p *rainbow.Params) { p.M-- },
		"short salt":   func(p *rainbow.Params) { p.SaltLen = 8 },
		"short seed":   func(p *rainbow.Params) { p.SkSeedLen = 16 },
		"missing hash": func(p *rainbow.Params) { p.Hash = 0 },
	}
	for name, mutate := range mutations {
		p := base
		mutate(&p)
		if err := ValidateParams(p); !errors.Is(err, rainbow.ErrInvalidParameter) {
			t.Errorf("%s: expected ErrInvalidParameter, got %v", name, err)
		}
	}
}

func TestParseStrengthAndVariant(t *testing.T) {
	for in, want := range map[string]rainbow.Strength{"3": rainbow.StrengthIII, "iii": rainbow.StrengthIII, " 5 ": rainbow.StrengthV, "V": rainbow.StrengthV} {
		got, err := ParseStrength(in)
		if err != nil || got != want {
			t.Errorf("ParseStrength(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseStrength("1"); err == nil {
		t.Error("ParseStrength(1) should fail")
	}

	for in, want := range map[string]rainbow.Variant{"classic": rainbow.Classic, "CIRCUMZENITHAL": rainbow.Circumzenithal, "Compressed": rainbow.Compressed} {
		got, err := ParseVariant(in)
		if err != nil || got != want {
			t.Errorf("ParseVariant(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseVariant("cyclic"); err == nil {
		t.Error("ParseVariant(cyclic) should fail")
	}
}
