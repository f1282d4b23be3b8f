// Package rainbow implements the Rainbow multivariate signature scheme over
// GF(256).
//
// Rainbow is a layered oil-and-vinegar construction: a secret central map F
// that is easy to invert layer by layer is hidden between two secret affine
// transforms S and T, and the composition S∘F∘T is published as a system
// of quadratic equations. Signing inverts the layers with linear algebra;
// verification just evaluates the public equations.
//
// This package holds the parameter, key and error types. The operations
// live in sub-packages.
package rainbow

// Version of the Rainbow Go implementation.
const Version = "1.0.0"

// API summary:
//
// Key generation:
//   - sign.GenerateKeyPair(rand, params) - Generate a key pair from fresh seeds
//   - sign.GenerateKeyPairFromSeed(params, skSeed, pkSeed) - Deterministic key pair
//   - keygen.ExpandSecretKey(csk) - Rebuild a full secret key from its seeds
//   - keygen.ExpandPublicKey(pk) - Materialize the dense public key
//
// Digital Signatures:
//   - sign.Sign(rand, sk, message) - Sign a message
//   - sign.Verify(pk, message, signature) - Verify a signature
//
// Encoding:
//   - sign.MarshalKey(key) / sign.UnmarshalKey(data) - Raw binary key codec
//   - sign.Fingerprint(pk) - Short identifier of a public key
//
// Parameters:
//   - core.GetParams(strength, variant) - Get a parameter set
//   - StrengthIII, StrengthV - The two standardized dimension sets
//   - Classic, Circumzenithal, Compressed - Key representations
//
// Integrations:
//   - scheme.New(params) - circl sign.Scheme adapter
//   - keystore.Open(path) - bolt-backed named key store
