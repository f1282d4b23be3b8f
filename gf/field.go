// Package gf implements arithmetic over GF(256) and the dense matrix algebra
// used by the Rainbow central and public maps.
//
// Field elements are plain bytes interpreted as polynomials over GF(2)
// reduced modulo the Rijndael polynomial x^8 + x^4 + x^3 + x + 1.
package gf

// Poly is the low byte of the irreducible reduction polynomial (0x11B).
const Poly = 0x1B

var (
	expTable [512]byte
	logTable [256]byte
	mulTable [256][256]byte
	invTable [256]byte
)

func init() {
	// 3 generates the multiplicative group under 0x11B.
	x := byte(1)
	for i := 0; i < 255; i++ {
		expTable[i] = x
		logTable[x] = byte(i)
		x = mulSlow(x, 3)
	}
	for i := 255; i < len(expTable); i++ {
		expTable[i] = expTable[i-255]
	}

	for a := 1; a < 256; a++ {
		la := int(logTable[a])
		for b := 1; b < 256; b++ {
			mulTable[a][b] = expTable[la+int(logTable[b])]
		}
		invTable[a] = expTable[255-la]
	}
}

// mulSlow is the schoolbook carry-less multiply with reduction. It is only
// used to build the tables.
func mulSlow(a, b byte) byte {
	var r byte
	for i := 0; i < 8; i++ {
		r ^= -(b & 1) & a
		b >>= 1
		carry := -(a >> 7)
		a = (a << 1) ^ (carry & Poly)
	}
	return r
}

// Add returns a + b, which in characteristic 2 is XOR.
func Add(a, b byte) byte {
	return a ^ b
}

// Mul returns the field product a * b.
func Mul(a, b byte) byte {
	return mulTable[a][b]
}

// Inv returns the multiplicative inverse of a. Inv(0) is defined as 0.
func Inv(a byte) byte {
	return invTable[a]
}
