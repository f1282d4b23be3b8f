package utils

import (
	"crypto"
	"fmt"
)

// ExpandHash hashes the concatenation of parts with h and stretches the
// digest to outLen bytes as H(x) || H(H(x)) || ..., truncating the last
// block. Each output byte is one GF(256) element of the message
// representative.
func ExpandHash(h crypto.Hash, outLen int, parts ...[]byte) []byte {
	if !h.Available() {
		panic(fmt.Sprintf("utils: hash %v unavailable", h))
	}
	hf := h.New()
	for _, p := range parts {
		hf.Write(p)
	}
	block := hf.Sum(nil)

	out := make([]byte, 0, outLen+len(block))
	out = append(out, block...)
	for len(out) < outLen {
		hf.Reset()
		hf.Write(block)
		block = hf.Sum(block[:0])
		out = append(out, block...)
	}
	return out[:outLen]
}
