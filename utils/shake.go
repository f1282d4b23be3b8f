// Package utils provides hashing, randomness and bounds-checking helpers
// shared by the Rainbow packages.
package utils

import (
	"io"
	"sync"

	"golang.org/x/crypto/sha3"
)

var shake256Pool = sync.Pool{
	New: func() interface{} {
		return sha3.NewShake256()
	},
}

func writeDomain(h io.Writer, domain string) {
	domainBytes := []byte(domain)
	if len(domainBytes) > 255 {
		panic("domain string must be at most 255 bytes")
	}
	h.Write([]byte{byte(len(domainBytes))})
	h.Write(domainBytes)
}

// NewShake256Reader returns a SHAKE256 stream over the domain-separated
// seed. The stream is consumed sequentially, so the order in which a caller
// reads its values is part of the derivation.
// Panics if domain is longer than 255 bytes.
func NewShake256Reader(domain string, seed []byte) io.Reader {
	h := sha3.NewShake256()
	writeDomain(h, domain)
	h.Write(seed)
	return h
}

// Shake256WithDomain computes SHAKE256 with domain separation and returns
// outputLen bytes.
// Panics if domain is longer than 255 bytes.
func Shake256WithDomain(domain string, data []byte, outputLen int) []byte {
	h := shake256Pool.Get().(sha3.ShakeHash)
	defer func() {
		h.Reset()
		shake256Pool.Put(h)
	}()

	writeDomain(h, domain)
	h.Write(data)
	output := make([]byte, outputLen)
	_, _ = h.Read(output)
	return output
}

// HashWithDomain computes a domain-separated SHA3-256 hash.
// It prefixes the data with the length of the domain string and the domain string itself.
// Panics if domain is longer than 255 bytes.
func HashWithDomain(domain string, data []byte) []byte {
	h := sha3.New256()
	writeDomain(h, domain)
	h.Write(data)
	return h.Sum(nil)
}
