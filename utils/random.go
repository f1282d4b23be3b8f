package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/crypto/chacha20"
)

// RandReader is the default entropy source used when callers pass a nil
// reader.
var RandReader io.Reader = rand.Reader

// SecureRandomBytes generates n cryptographically secure random bytes.
// It uses crypto/rand, which relies on the operating system's CSPRNG.
func SecureRandomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if err := ReadRandom(nil, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadRandom fills buf from r, or from RandReader when r is nil.
func ReadRandom(r io.Reader, buf []byte) error {
	if r == nil {
		r = RandReader
	}
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("reading randomness: %w", err)
	}
	return nil
}

type deterministicRand struct {
	key      []byte
	numCalls uint64
}

// NewDeterministicReader returns a reproducible byte stream derived from
// seed. Every Read call draws from a fresh ChaCha20 keystream whose nonce is
// the call counter, so the output depends on the sequence of read sizes.
// It is meant for tests and known-answer generation, never for real keys.
func NewDeterministicReader(seed []byte) io.Reader {
	return &deterministicRand{key: Shake256WithDomain("rainbow-drbg-v1", seed, chacha20.KeySize)}
}

func (d *deterministicRand) Read(buf []byte) (int, error) {
	clear(buf)
	var nonce [chacha20.NonceSize]byte
	binary.LittleEndian.PutUint64(nonce[:8], d.numCalls)
	cipher, err := chacha20.NewUnauthenticatedCipher(d.key, nonce[:])
	if err != nil {
		return 0, err
	}
	cipher.XORKeyStream(buf, buf)
	d.numCalls++
	return len(buf), nil
}

// ValidateSeedEntropy checks if a seed has sufficient entropy.
// It performs basic statistical tests to reject obviously weak seeds (e.g., all zeros, sequential).
// This is a sanity check, not a rigorous randomness test.
func ValidateSeedEntropy(seed []byte) error {
	if len(seed) < 32 {
		return errors.New("seed must be at least 32 bytes")
	}

	// Check for all bytes identical
	first := seed[0]
	allSame := true
	for i := 1; i < len(seed); i++ {
		if seed[i] != first {
			allSame = false
			break
		}
	}
	if allSame {
		return errors.New("seed has low entropy: all bytes are identical")
	}

	// Check for sequential patterns
	isAscending := true
	isDescending := true
	for i := 1; i < len(seed); i++ {
		if seed[i] != seed[i-1]+1 {
			isAscending = false
		}
		if seed[i] != seed[i-1]-1 {
			isDescending = false
		}
		if !isAscending && !isDescending {
			break
		}
	}
	if isAscending || isDescending {
		return errors.New("seed has low entropy: sequential pattern detected")
	}

	// Check for low byte diversity
	unique := make(map[byte]struct{})
	for _, b := range seed {
		unique[b] = struct{}{}
		if len(unique) >= 8 {
			break
		}
	}
	if len(unique) < 8 {
		return errors.New("seed has low entropy: insufficient byte diversity")
	}

	return nil
}

// ConstantTimeEqual compares two byte slices in constant time.
// It returns true if the slices are equal, false otherwise.
// This function leaks only the length of the slices.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}

// Zeroize overwrites a byte slice with zeros.
// Uses runtime.KeepAlive to prevent compiler optimization from eliminating the stores.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// ZeroizeRows clears every row of a matrix-shaped slice.
func ZeroizeRows(rows [][]byte) {
	for _, r := range rows {
		Zeroize(r)
	}
}
