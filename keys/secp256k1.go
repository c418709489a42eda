package keys

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/crypto"
	sha256 "github.com/minio/sha256-simd"
)

// PrivKeySize is the length of a serialized secp256k1 secret scalar.
const PrivKeySize = 32

// ErrInvalidPrivKey is returned when secret key bytes are malformed.
var ErrInvalidPrivKey = errors.New("invalid secp256k1 private key")

// PrivKey wraps a secp256k1 secret scalar. It is never serialized implicitly;
// Bytes must be called explicitly (keyfile export only).
type PrivKey struct {
	key *secp256k1.PrivateKey
}

// Generate creates a fresh key pair from a cryptographically secure source.
// The scalar is drawn by go-ethereum on the S256 curve and handed to the
// decred implementation, which provides RFC-6979 signing and DER encoding.
func Generate() (*PrivKey, error) {
	ecKey, err := crypto.GenerateKey()
	if err != nil {
		return nil, err
	}
	raw := crypto.FromECDSA(ecKey)
	defer zero(raw)
	return PrivKeyFromBytes(raw)
}

// PrivKeyFromBytes restores a private key from its 32-byte scalar.
func PrivKeyFromBytes(b []byte) (*PrivKey, error) {
	if len(b) != PrivKeySize {
		return nil, ErrInvalidPrivKey
	}
	key := secp256k1.PrivKeyFromBytes(b)
	if key.Key.IsZero() {
		return nil, ErrInvalidPrivKey
	}
	return &PrivKey{key: key}, nil
}

// Public returns the matching public key.
func (k *PrivKey) Public() PubKey {
	return PubKey{
		Type: Types.Secp256k1,
		Raw:  k.key.PubKey().SerializeUncompressed(),
	}
}

// Bytes returns a copy of the secret scalar.
func (k *PrivKey) Bytes() []byte {
	return k.key.Serialize()
}

// Sign hashes payload with SHA-256 and signs the digest. The nonce is derived
// per RFC-6979 so the same key and payload always yield the same signature.
// The result is DER encoded.
func (k *PrivKey) Sign(payload []byte) []byte {
	digest := Digest(payload)
	return ecdsa.Sign(k.key, digest[:]).Serialize()
}

// Zero wipes the secret scalar from memory.
func (k *PrivKey) Zero() {
	k.key.Zero()
}

// Digest is the payload hash used by Sign and VerifySignature.
func Digest(payload []byte) [32]byte {
	return sha256.Sum256(payload)
}

// VerifySignature checks a DER signature over payload against pub. It needs
// no private material and reports false for any malformed input.
func VerifySignature(pub PubKey, payload []byte, sig []byte) bool {
	if pub.Type != Types.Secp256k1 || len(sig) == 0 {
		return false
	}
	ecPub, err := secp256k1.ParsePubKey(pub.Raw)
	if err != nil {
		return false
	}
	parsed, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	digest := Digest(payload)
	return parsed.Verify(digest[:], ecPub)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
