package rainbow_test

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	rainbow "github.com/BackendStack21/rainbow-go"
	"github.com/BackendStack21/rainbow-go/core"
	"github.com/BackendStack21/rainbow-go/keygen"
	"github.com/BackendStack21/rainbow-go/keystore"
	"github.com/BackendStack21/rainbow-go/scheme"
	"github.com/BackendStack21/rainbow-go/sign"
	"github.com/BackendStack21/rainbow-go/utils"
)

func params(tb testing.TB, s rainbow.Strength, v rainbow.Variant) rainbow.Params {
	tb.Helper()
	p, err := core.GetParams(s, v)
	if err != nil {
		tb.Fatalf("GetParams failed: %v", err)
	}
	return p
}

// TestSignRoundtrip tests key generation, signing and verification for each
// variant, with the public key passed through the codec.
func TestSignRoundtrip(t *testing.T) {
	for _, v := range core.Variants {
		p := params(t, rainbow.StrengthIII, v)
		t.Run(p.Name(), func(t *testing.T) {
			kp, err := sign.GenerateKeyPair(nil, p)
			if err != nil {
				t.Fatalf("GenerateKeyPair failed: %v", err)
			}

			pkBytes, err := sign.MarshalKey(kp.PublicKey)
			if err != nil {
				t.Fatalf("MarshalKey failed: %v", err)
			}
			pk, err := sign.UnmarshalKey(pkBytes)
			if err != nil {
				t.Fatalf("UnmarshalKey failed: %v", err)
			}

			msg := []byte("integration " + p.Name())
			sig, err := sign.Sign(nil, kp.SecretKey, msg)
			if err != nil {
				t.Fatalf("Sign failed: %v", err)
			}
			if !sign.Verify(pk, msg, sig) {
				t.Error("decoded public key rejects the signature")
			}
		})
	}
}

// TestVariantsInteroperate checks that one seed pair produces the same
// signatures and verifying keys in every variant.
func TestVariantsInteroperate(t *testing.T) {
	skSeed := bytes.Repeat([]byte{0xA1}, core.SeedLen)
	pkSeed := bytes.Repeat([]byte{0xB2}, core.SeedLen)
	msg := []byte("same seeds")

	var sigs [][]byte
	var pks []rainbow.Key
	for _, v := range core.Variants {
		kp, err := sign.GenerateKeyPairFromSeed(params(t, rainbow.StrengthIII, v), skSeed, pkSeed)
		if err != nil {
			t.Fatalf("%s: %v", v, err)
		}
		sig, err := sign.Sign(utils.NewDeterministicReader(msg), kp.SecretKey, msg)
		if err != nil {
			t.Fatalf("%s: Sign failed: %v", v, err)
		}
		sigs = append(sigs, sig)
		pks = append(pks, kp.PublicKey)
	}
	for i := 1; i < len(sigs); i++ {
		if !bytes.Equal(sigs[0], sigs[i]) {
			t.Errorf("variant %s signs differently", core.Variants[i])
		}
	}

	// Classic verifies with the dense key, the others with the compact one.
	compact := pks[1].(*rainbow.PublicKey)
	if !keygen.ExpandPublicKey(compact).Equal(pks[0].(*rainbow.ExpandedPublicKey)) {
		t.Error("expanded compact key differs from the classic public key")
	}
}

// TestSchemeAndKeystore moves a key pair from the generic scheme interface
// through the key store and back.
func TestSchemeAndKeystore(t *testing.T) {
	sch := scheme.ByName("Rainbow-III-Compressed")
	if sch == nil {
		t.Fatal("scheme not registered")
	}
	seed := bytes.Repeat([]byte{0x3C}, sch.SeedSize())
	pk, sk := sch.DeriveKey(seed)
	msg := []byte("scheme to store")
	sig := sch.Sign(sk, msg, nil)

	store, err := keystore.Open(filepath.Join(t.TempDir(), "keys.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	p := params(t, rainbow.StrengthIII, rainbow.Compressed)
	kp, err := sign.GenerateKeyPairFromSeed(p, seed[:core.SeedLen], seed[core.SeedLen:])
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put("scheme", kp); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	stored, err := store.Get("scheme")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !sign.Verify(stored.PublicKey, msg, sig) {
		t.Error("stored public key rejects the scheme signature")
	}
	if !pk.(*scheme.PublicKey).Key().(*rainbow.PublicKey).Equal(stored.PublicKey.(*rainbow.PublicKey)) {
		t.Error("scheme and stored public keys differ")
	}
}

func TestSecurityValidation_EmptyMessage(t *testing.T) {
	kp, err := sign.GenerateKeyPair(nil, params(t, rainbow.StrengthIII, rainbow.Compressed))
	if err != nil {
		t.Fatal(err)
	}
	sig, err := sign.Sign(nil, kp.SecretKey, nil)
	if err != nil {
		t.Fatalf("Sign of empty message failed: %v", err)
	}
	if !sign.Verify(kp.PublicKey, []byte{}, sig) {
		t.Error("empty message signature rejected")
	}
	if sign.Verify(kp.PublicKey, []byte{0}, sig) {
		t.Error("signature of empty message accepted for a zero byte")
	}
}

func TestSecurityValidation_TruncatedData(t *testing.T) {
	kp, err := sign.GenerateKeyPair(nil, params(t, rainbow.StrengthIII, rainbow.Circumzenithal))
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("truncate me")
	sig, err := sign.Sign(nil, kp.SecretKey, msg)
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range []int{0, 1, len(sig) / 2, len(sig) - 1} {
		if sign.Verify(kp.PublicKey, msg, sig[:n]) {
			t.Errorf("signature truncated to %d bytes accepted", n)
		}
	}

	enc, err := sign.MarshalKey(kp.SecretKey)
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range []int{0, 5, len(enc) / 2, len(enc) - 1} {
		if _, err := sign.UnmarshalKey(enc[:n]); !errors.Is(err, rainbow.ErrMalformedKey) {
			t.Errorf("key truncated to %d bytes: expected ErrMalformedKey, got %v", n, err)
		}
	}
}

func TestSecurityValidation_EntropySeed(t *testing.T) {
	p := params(t, rainbow.StrengthIII, rainbow.Compressed)
	_, err := sign.GenerateKeyPair(bytes.NewReader(make([]byte, 64)), p)
	if err == nil {
		t.Fatal("all-zero randomness should be rejected")
	}
}

// =============================================================================
// Benchmarks
// =============================================================================

func benchmarkKeygen(b *testing.B, p rainbow.Params) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := sign.GenerateKeyPair(nil, p); err != nil {
			b.Fatal(err)
		}
	}
}

func benchmarkFullRoundTrip(b *testing.B, p rainbow.Params) {
	msg := []byte("benchmark message")
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		kp, err := sign.GenerateKeyPair(nil, p)
		if err != nil {
			b.Fatal(err)
		}
		sig, err := sign.Sign(nil, kp.SecretKey, msg)
		if err != nil {
			b.Fatal(err)
		}
		if !sign.Verify(kp.PublicKey, msg, sig) {
			b.Fatal("verification failed")
		}
	}
}

func BenchmarkSign_GenerateKeyPair_III(b *testing.B) {
	benchmarkKeygen(b, params(b, rainbow.StrengthIII, rainbow.Circumzenithal))
}

func BenchmarkSign_GenerateKeyPair_V(b *testing.B) {
	benchmarkKeygen(b, params(b, rainbow.StrengthV, rainbow.Circumzenithal))
}

func BenchmarkSign_FullRoundTrip_III(b *testing.B) {
	benchmarkFullRoundTrip(b, params(b, rainbow.StrengthIII, rainbow.Compressed))
}

func BenchmarkSign_FullRoundTrip_V(b *testing.B) {
	benchmarkFullRoundTrip(b, params(b, rainbow.StrengthV, rainbow.Compressed))
}

func BenchmarkExpandPublicKey_III(b *testing.B) {
	p := params(b, rainbow.StrengthIII, rainbow.Circumzenithal)
	_, pk := keygen.Generate(p, bytes.Repeat([]byte{1}, 32), bytes.Repeat([]byte{2}, 32))
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		keygen.ExpandPublicKey(pk)
	}
}
