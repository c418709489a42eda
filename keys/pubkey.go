// Package keys provides the account identity primitives of the ledger.
// An account is identified by its secp256k1 public key; there is no separate
// address derivation, so the key bytes (rendered as hex) are the address.
// The package sits below both the wallet and the ledger so that signature
// verification never needs to import the component that created a signature.

package keys

import (
	"bytes"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrEmptyPubKey is returned when decoding an empty key.
	ErrEmptyPubKey = errors.New("empty pubkey")
	// ErrUnknownKeyType is returned when the type prefix is not a supported curve.
	ErrUnknownKeyType = errors.New("unknown pubkey type")
)

// PubKey represents an account's public key, which doubles as its address.
// The Type byte decouples the curve from the raw bytes so the text encoding
// stays self-describing.
type PubKey struct {
	// Type identifies the curve (see Types).
	Type uint8
	// Raw contains the uncompressed SEC1 point (65 bytes for secp256k1).
	Raw []byte
}

// Types lists the supported public key types.
var Types = struct {
	Secp256k1 uint8
}{
	Secp256k1: 0xc0,
}

// Empty reports whether the key is the zero value.
func (pk PubKey) Empty() bool {
	return len(pk.Raw) == 0 && pk.Type == 0
}

// String returns the 0x-prefixed hex form: [Type byte] + [Raw bytes...].
func (pk PubKey) String() string {
	return "0x" + common.Bytes2Hex(pk.Bytes())
}

// Bytes returns the flat byte representation [Type byte] + [Raw bytes...].
func (pk PubKey) Bytes() []byte {
	return append([]byte{pk.Type}, pk.Raw...)
}

// Equal reports whether both keys have the same type and raw bytes.
func (pk PubKey) Equal(other PubKey) bool {
	return pk.Type == other.Type && bytes.Equal(pk.Raw, other.Raw)
}

// Copy creates a deep copy of the PubKey so callers cannot alias Raw.
func (pk PubKey) Copy() PubKey {
	return PubKey{
		Type: pk.Type,
		Raw:  common.CopyBytes(pk.Raw),
	}
}

// Short returns an abbreviated form for log lines.
func (pk PubKey) Short() string {
	s := pk.String()
	if len(s) <= 18 {
		return s
	}
	return s[:10] + ".." + s[len(s)-6:]
}

// FromString parses a hex string (with or without "0x" prefix) into a PubKey.
func FromString(str string) (PubKey, error) {
	return FromBytes(common.FromHex(str))
}

// FromBytes reconstructs a PubKey from its flat form. The first byte is the
// Type and must be a known curve; the rest is the raw point.
func FromBytes(b []byte) (PubKey, error) {
	if len(b) == 0 {
		return PubKey{}, ErrEmptyPubKey
	}
	if b[0] != Types.Secp256k1 {
		return PubKey{}, ErrUnknownKeyType
	}
	return PubKey{b[0], common.CopyBytes(b[1:])}, nil
}

// MarshalText implements encoding.TextMarshaler (JSON renders the hex form).
func (pk PubKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (pk *PubKey) UnmarshalText(input []byte) error {
	res, err := FromString(string(input))
	if err != nil {
		return err
	}
	*pk = res
	return nil
}
