package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/scrypt"

	"github.com/rony4d/go-evcharge-ledger/keys"
)

const (
	keyFileVersion = 1
	scryptKeyLen   = 32
	saltLen        = 32
	nonceLen       = 12
)

// ErrKeyFileDecrypt is returned when a keyfile cannot be opened with the
// given password.
var ErrKeyFileDecrypt = errors.New("could not decrypt key with given password")

// ScryptParams are the key derivation costs stored with every keyfile.
type ScryptParams struct {
	N int `json:"n"`
	R int `json:"r"`
	P int `json:"p"`
}

var (
	// StandardScrypt costs ~256MB of memory and around a second per attempt.
	StandardScrypt = ScryptParams{N: 1 << 18, R: 8, P: 1}
	// LightScrypt is for tests and throwaway keys.
	LightScrypt = ScryptParams{N: 1 << 12, R: 8, P: 1}
)

// exceeds reports whether any cost parameter is above limit's.
func (p ScryptParams) exceeds(limit ScryptParams) bool {
	return p.N > limit.N || p.R > limit.R || p.P > limit.P
}

// keyFile is the on-disk JSON envelope. The public key is kept in the clear
// so a file can be matched to an address without the password.
type keyFile struct {
	Version    int           `json:"version"`
	PublicKey  keys.PubKey   `json:"publicKey"`
	KDF        ScryptParams  `json:"kdf"`
	Salt       hexutil.Bytes `json:"salt"`
	Nonce      hexutil.Bytes `json:"nonce"`
	CipherText hexutil.Bytes `json:"ciphertext"`
}

func deriveAEAD(password, salt []byte, params ScryptParams) (cipher.AEAD, error) {
	key, err := scrypt.Key(password, salt, params.N, params.R, params.P, scryptKeyLen)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	defer clear(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// SaveKeyFile encrypts the wallet's private key with password and writes it to
// path with 0600 permissions. It refuses to overwrite a non-empty file.
func SaveKeyFile(path string, w *Wallet, password []byte, params ScryptParams) error {
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		return fmt.Errorf("keyfile %s: %w", path, os.ErrExist)
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	aead, err := deriveAEAD(password, salt, params)
	if err != nil {
		return err
	}

	secret := w.priv.Bytes()
	defer clear(secret)

	pub := w.PublicKey()
	file := keyFile{
		Version:   keyFileVersion,
		PublicKey: pub,
		KDF:       params,
		Salt:      salt,
		Nonce:     nonce,
		// The address is authenticated data: a file whose public key was
		// swapped no longer opens.
		CipherText: aead.Seal(nil, nonce, secret, pub.Bytes()),
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal keyfile: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write keyfile: %w", err)
	}
	return nil
}

func readKeyFile(path string) (*keyFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keyfile: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("keyfile %s is empty", path)
	}
	var file keyFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keyfile: %w", err)
	}
	if file.Version != keyFileVersion {
		return nil, fmt.Errorf("unsupported keyfile version %d", file.Version)
	}
	return &file, nil
}

// LoadKeyFile decrypts the keyfile at path into a wallet. A wrong password
// yields ErrKeyFileDecrypt. Files whose scrypt costs exceed StandardScrypt are
// refused before any derivation.
func LoadKeyFile(path string, password []byte, opts ...Option) (*Wallet, error) {
	file, err := readKeyFile(path)
	if err != nil {
		return nil, err
	}
	if file.KDF.exceeds(StandardScrypt) {
		return nil, fmt.Errorf("keyfile scrypt parameters n=%d r=%d p=%d exceed n=%d r=%d p=%d",
			file.KDF.N, file.KDF.R, file.KDF.P, StandardScrypt.N, StandardScrypt.R, StandardScrypt.P)
	}

	aead, err := deriveAEAD(password, file.Salt, file.KDF)
	if err != nil {
		return nil, err
	}
	if len(file.Nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("keyfile nonce has %d bytes, want %d", len(file.Nonce), aead.NonceSize())
	}

	secret, err := aead.Open(nil, file.Nonce, file.CipherText, file.PublicKey.Bytes())
	if err != nil {
		return nil, ErrKeyFileDecrypt
	}
	defer clear(secret)

	priv, err := keys.PrivKeyFromBytes(secret)
	if err != nil {
		return nil, err
	}
	w := FromPrivKey(priv, opts...)
	if !w.pub.Equal(file.PublicKey) {
		return nil, fmt.Errorf("keyfile address %s does not match its key", file.PublicKey.Short())
	}
	return w, nil
}

// ReadKeyFileAddress returns the address stored in a keyfile without
// decrypting it.
func ReadKeyFileAddress(path string) (keys.PubKey, error) {
	file, err := readKeyFile(path)
	if err != nil {
		return keys.PubKey{}, err
	}
	return file.PublicKey, nil
}
