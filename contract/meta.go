package contract

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

// SessionMeta is the correlation payload attached to a settlement transfer.
// The ledger stores it as opaque bytes.
type SessionMeta struct {
	SessionID string
	UserID    string
	StationID string
}

// Encode returns the RLP encoding of m.
func (m SessionMeta) Encode() []byte {
	b, err := rlp.EncodeToBytes(m)
	if err != nil {
		// strings always encode
		panic(err)
	}
	return b
}

// DecodeSessionMeta parses the output of Encode.
func DecodeSessionMeta(data []byte) (SessionMeta, error) {
	var m SessionMeta
	if err := rlp.DecodeBytes(data, &m); err != nil {
		return SessionMeta{}, fmt.Errorf("decode session meta: %w", err)
	}
	return m, nil
}
