package keys

import (
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const rawHex = "045b86101f804f3f4f2012ef31fff807e87de579a3faa7947d1b487a810e35dc2c3b6071ac465046634b5f4a8e09bf8e1f2e7eccb699356b9e6fd496ca4b1677d1"

// TestFromString verifies that hex input (with or without 0x prefix) is parsed
// into a PubKey and that garbage is rejected.
func TestFromString(t *testing.T) {
	require := require.New(t)

	exp := PubKey{
		Type: Types.Secp256k1,
		Raw:  common.FromHex(rawHex),
	}

	// Case 1: without prefix
	{
		got, err := FromString("c0" + rawHex)
		require.NoError(err)
		require.Equal(exp, got)
	}

	// Case 2: with prefix
	{
		got, err := FromString("0xc0" + rawHex)
		require.NoError(err)
		require.Equal(exp, got)
	}

	// Case 3: empty input
	{
		_, err := FromString("")
		require.ErrorIs(err, ErrEmptyPubKey)
	}

	// Case 4: "0x" only
	{
		_, err := FromString("0x")
		require.Error(err)
	}

	// Case 5: invalid hex
	{
		_, err := FromString("-")
		require.Error(err)
	}

	// Case 6: unknown type byte
	{
		_, err := FromString("0x01" + rawHex)
		require.ErrorIs(err, ErrUnknownKeyType)
	}
}

func TestString(t *testing.T) {
	pk := PubKey{Type: Types.Secp256k1, Raw: common.FromHex(rawHex)}
	require.Equal(t, "0xc0"+rawHex, pk.String())
}

func TestEmptyAndEqual(t *testing.T) {
	require := require.New(t)

	require.True(PubKey{}.Empty())

	a := PubKey{Type: Types.Secp256k1, Raw: []byte{0x01}}
	b := PubKey{Type: Types.Secp256k1, Raw: []byte{0x01}}
	c := PubKey{Type: Types.Secp256k1, Raw: []byte{0x02}}
	require.False(a.Empty())
	require.True(a.Equal(b))
	require.False(a.Equal(c))
}

// TestCopy verifies the copy does not share Raw with the original.
func TestCopy(t *testing.T) {
	require := require.New(t)

	original := PubKey{Type: Types.Secp256k1, Raw: []byte{0xAA, 0xBB}}
	cp := original.Copy()
	require.Equal(original, cp)

	cp.Raw[0] = 0xFF
	require.Equal(uint8(0xAA), original.Raw[0], "original modified by copy")
}

func TestMarshalUnmarshal(t *testing.T) {
	require := require.New(t)

	original := PubKey{Type: Types.Secp256k1, Raw: []byte{0xAA, 0xBB, 0xCC}}

	data, err := json.Marshal(original)
	require.NoError(err)
	require.Equal(`"`+original.String()+`"`, string(data))

	var decoded PubKey
	require.NoError(json.Unmarshal(data, &decoded))
	require.Equal(original, decoded)
}
