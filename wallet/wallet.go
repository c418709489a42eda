// Package wallet holds a single secp256k1 key pair and builds signed
// transfers for the ledger.
//
// The balance a Wallet tracks is a local convenience cache used to refuse
// obvious overspending before a transfer is built. The ledger's chain scan is
// the authoritative balance; SyncBalance refreshes the cache from it.
package wallet

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rony4d/go-evcharge-ledger/keys"
	"github.com/rony4d/go-evcharge-ledger/ledger"
)

// ErrInsufficientFunds is returned by CreateTransaction when the amount
// exceeds the tracked balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// BalanceSource reports authoritative balances. *ledger.Blockchain satisfies it.
type BalanceSource interface {
	GetBalanceOfAddress(address keys.PubKey) int64
}

// Wallet owns a private key that never leaves it.
type Wallet struct {
	priv *keys.PrivKey
	pub  keys.PubKey
	now  func() time.Time

	mu      sync.Mutex
	balance int64
}

// Option customises a Wallet.
type Option func(*Wallet)

// WithClock replaces time.Now as the source of transfer timestamps.
func WithClock(now func() time.Time) Option {
	return func(w *Wallet) {
		w.now = now
	}
}

// WithBalance seeds the tracked balance.
func WithBalance(balance int64) Option {
	return func(w *Wallet) {
		w.balance = balance
	}
}

// GenerateKeyPair creates a wallet with a fresh key from a secure random source.
func GenerateKeyPair(opts ...Option) (*Wallet, error) {
	priv, err := keys.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate key pair: %w", err)
	}
	return FromPrivKey(priv, opts...), nil
}

// FromPrivKey wraps an existing key. The wallet takes ownership of priv.
func FromPrivKey(priv *keys.PrivKey, opts ...Option) *Wallet {
	w := &Wallet{
		priv: priv,
		pub:  priv.Public(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// PublicKey returns the wallet address.
func (w *Wallet) PublicKey() keys.PubKey {
	return w.pub.Copy()
}

// Sign hashes payload with SHA-256 and returns a deterministic DER signature.
func (w *Wallet) Sign(payload []byte) []byte {
	return w.priv.Sign(payload)
}

// VerifySignature checks sig over payload against pub. It needs no private
// key and returns false for any malformed input.
func VerifySignature(pub keys.PubKey, payload, sig []byte) bool {
	return keys.VerifySignature(pub, payload, sig)
}

// CreateTransaction builds and signs a transfer of amount to the given
// address, then debits the tracked balance. It fails with
// ErrInsufficientFunds, without side effects, when amount exceeds the tracked
// balance.
func (w *Wallet) CreateTransaction(to keys.PubKey, amount uint64, data []byte) (*ledger.Transfer, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.balance < 0 || uint64(w.balance) < amount {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, w.balance, amount)
	}

	tx := ledger.NewTransfer(w.pub, to, amount, data, ledger.FromTime(w.now()))
	if err := tx.SignTransaction(w); err != nil {
		return nil, err
	}
	w.balance -= int64(amount)
	return tx, nil
}

// Balance returns the tracked balance.
func (w *Wallet) Balance() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.balance
}

// SetBalance overwrites the tracked balance.
func (w *Wallet) SetBalance(balance int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance = balance
}

// Credit adds amount to the tracked balance, e.g. to undo a debit whose
// transfer the ledger refused.
func (w *Wallet) Credit(amount uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.balance += int64(amount)
}

// SyncBalance replaces the tracked balance with the one src reports and
// returns it.
func (w *Wallet) SyncBalance(src BalanceSource) int64 {
	balance := src.GetBalanceOfAddress(w.pub)
	w.SetBalance(balance)
	return balance
}

// String returns the short address, never key material.
func (w *Wallet) String() string {
	return "wallet(" + w.pub.Short() + ")"
}
