package keys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	require := require.New(t)

	priv, err := Generate()
	require.NoError(err)
	pub := priv.Public()
	require.Equal(Types.Secp256k1, pub.Type)
	require.Len(pub.Raw, 65)

	payload := []byte("charging session 42")
	sig := priv.Sign(payload)
	require.True(VerifySignature(pub, payload, sig))

	// RFC-6979: deterministic for the same key and payload
	require.Equal(sig, priv.Sign(payload))

	// Different payload
	require.False(VerifySignature(pub, []byte("charging session 43"), sig))

	// Different key
	other, err := Generate()
	require.NoError(err)
	require.False(VerifySignature(other.Public(), payload, sig))

	// Malformed inputs never panic
	require.False(VerifySignature(pub, payload, nil))
	require.False(VerifySignature(pub, payload, []byte{0x30, 0x01, 0x02}))
	require.False(VerifySignature(PubKey{Type: Types.Secp256k1, Raw: []byte{0x04}}, payload, sig))
	require.False(VerifySignature(PubKey{}, payload, sig))
}

func TestPrivKeyRoundTrip(t *testing.T) {
	require := require.New(t)

	priv, err := Generate()
	require.NoError(err)

	restored, err := PrivKeyFromBytes(priv.Bytes())
	require.NoError(err)
	require.True(priv.Public().Equal(restored.Public()))

	_, err = PrivKeyFromBytes([]byte{0x01})
	require.ErrorIs(err, ErrInvalidPrivKey)

	_, err = PrivKeyFromBytes(make([]byte, PrivKeySize))
	require.ErrorIs(err, ErrInvalidPrivKey)
}
