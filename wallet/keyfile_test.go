package wallet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyFileRoundTrip(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "station.key")
	w := newWallet(t)
	password := []byte("correct horse")

	require.NoError(SaveKeyFile(path, w, password, LightScrypt))

	info, err := os.Stat(path)
	require.NoError(err)
	require.Equal(os.FileMode(0600), info.Mode().Perm())

	addr, err := ReadKeyFileAddress(path)
	require.NoError(err)
	require.True(addr.Equal(w.PublicKey()))

	loaded, err := LoadKeyFile(path, password, WithBalance(7))
	require.NoError(err)
	require.True(loaded.PublicKey().Equal(w.PublicKey()))
	require.Equal(int64(7), loaded.Balance())

	payload := []byte("same key, same signature")
	require.Equal(w.Sign(payload), loaded.Sign(payload))
}

func TestKeyFileWrongPassword(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.key")
	require.NoError(t, SaveKeyFile(path, newWallet(t), []byte("secret"), LightScrypt))

	_, err := LoadKeyFile(path, []byte("Secret"))
	require.ErrorIs(t, err, ErrKeyFileDecrypt)
}

func TestKeyFileRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user.key")
	require.NoError(t, SaveKeyFile(path, newWallet(t), []byte("a"), LightScrypt))

	err := SaveKeyFile(path, newWallet(t), []byte("b"), LightScrypt)
	require.ErrorIs(t, err, os.ErrExist)
}

func TestKeyFileSwappedAddress(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "user.key")
	password := []byte("pw")
	require.NoError(SaveKeyFile(path, newWallet(t), password, LightScrypt))

	raw, err := os.ReadFile(path)
	require.NoError(err)
	var file keyFile
	require.NoError(json.Unmarshal(raw, &file))
	file.PublicKey = newWallet(t).PublicKey()
	raw, err = json.Marshal(file)
	require.NoError(err)
	require.NoError(os.WriteFile(path, raw, 0600))

	_, err = LoadKeyFile(path, password)
	require.ErrorIs(err, ErrKeyFileDecrypt)
}

func TestKeyFileExcessiveScrypt(t *testing.T) {
	password := []byte("correct horse")

	tests := []struct {
		name string
		kdf  ScryptParams
	}{
		{"n", ScryptParams{N: 1 << 30, R: 8, P: 1}},
		{"r", ScryptParams{N: 1 << 12, R: 1 << 20, P: 1}},
		{"p", ScryptParams{N: 1 << 12, R: 8, P: 1 << 20}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "key.json")
			require.NoError(t, SaveKeyFile(path, newWallet(t), password, LightScrypt))

			raw, err := os.ReadFile(path)
			require.NoError(t, err)
			var file keyFile
			require.NoError(t, json.Unmarshal(raw, &file))
			file.KDF = test.kdf
			raw, err = json.Marshal(file)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(path, raw, 0600))

			_, err = LoadKeyFile(path, password)
			require.Error(t, err)
			require.Contains(t, err.Error(), "exceed")
			require.NotErrorIs(t, err, ErrKeyFileDecrypt)
		})
	}
}

func TestKeyFileMalformed(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"not json", "{"},
		{"wrong version", `{"version": 9}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(dir, test.name)
			require.NoError(t, os.WriteFile(path, []byte(test.content), 0600))
			_, err := LoadKeyFile(path, []byte("pw"))
			require.Error(t, err)
			require.NotErrorIs(t, err, ErrKeyFileDecrypt)
		})
	}

	_, err := LoadKeyFile(filepath.Join(dir, "missing"), []byte("pw"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
