package wallet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-evcharge-ledger/keys"
	"github.com/rony4d/go-evcharge-ledger/ledger"
)

func fixedClock() func() time.Time {
	t := time.Date(2024, time.May, 10, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func newWallet(t *testing.T, opts ...Option) *Wallet {
	t.Helper()
	w, err := GenerateKeyPair(opts...)
	require.NoError(t, err)
	return w
}

func TestGenerateKeyPair(t *testing.T) {
	require := require.New(t)

	a, b := newWallet(t), newWallet(t)
	require.False(a.PublicKey().Empty())
	require.False(a.PublicKey().Equal(b.PublicKey()), "keys are random")
	require.Equal(int64(0), a.Balance())
	require.NotContains(a.String(), "PrivKey")
}

func TestSignAndVerify(t *testing.T) {
	require := require.New(t)

	w, other := newWallet(t), newWallet(t)
	payload := []byte("charge session 42")

	sig := w.Sign(payload)
	require.Equal(sig, w.Sign(payload), "signatures are deterministic")
	require.True(VerifySignature(w.PublicKey(), payload, sig))
	require.False(VerifySignature(other.PublicKey(), payload, sig))
	require.False(VerifySignature(w.PublicKey(), []byte("charge session 43"), sig))
	require.False(VerifySignature(w.PublicKey(), payload, nil))
	require.False(VerifySignature(keys.PubKey{}, payload, sig))
}

func TestCreateTransaction(t *testing.T) {
	require := require.New(t)

	payer := newWallet(t, WithBalance(100), WithClock(fixedClock()))
	payee := newWallet(t)

	tx, err := payer.CreateTransaction(payee.PublicKey(), 30, []byte("meta"))
	require.NoError(err)
	require.True(tx.IsValid())
	require.True(tx.From.Equal(payer.PublicKey()))
	require.True(tx.To.Equal(payee.PublicKey()))
	require.Equal(uint64(30), tx.Amount)
	require.Equal([]byte("meta"), tx.Data)
	require.Equal(ledger.FromTime(fixedClock()()), tx.Timestamp)
	require.Equal(int64(70), payer.Balance(), "cache debited")
}

func TestCreateTransactionInsufficientFunds(t *testing.T) {
	require := require.New(t)

	payer := newWallet(t, WithBalance(5))
	payee := newWallet(t)

	tx, err := payer.CreateTransaction(payee.PublicKey(), 6, nil)
	require.ErrorIs(err, ErrInsufficientFunds)
	require.Nil(tx)
	require.Equal(int64(5), payer.Balance(), "no debit on failure")

	payer.SetBalance(-1)
	_, err = payer.CreateTransaction(payee.PublicKey(), 0, nil)
	require.ErrorIs(err, ErrInsufficientFunds, "negative balance cannot spend")

	payer.Credit(11)
	_, err = payer.CreateTransaction(payee.PublicKey(), 10, nil)
	require.NoError(err)
	require.Equal(int64(0), payer.Balance())
}

// TestLedgerScenario runs a transfer from A to B through the ledger with B
// mining, then reconciles both caches with the chain.
func TestLedgerScenario(t *testing.T) {
	require := require.New(t)

	cfg := ledger.DefaultConfig()
	bc, err := ledger.NewBlockchain(cfg)
	require.NoError(err)

	a := newWallet(t, WithBalance(1_000_000))
	b := newWallet(t)

	tx, err := a.CreateTransaction(b.PublicKey(), 10, nil)
	require.NoError(err)
	require.NoError(bc.AddTransaction(tx))
	_, err = bc.MinePendingTransactions(context.Background(), b.PublicKey())
	require.NoError(err)

	require.Equal(int64(10+cfg.MiningReward), bc.GetBalanceOfAddress(b.PublicKey()))
	require.Equal(int64(-10), bc.GetBalanceOfAddress(a.PublicKey()))
	require.True(bc.IsChainValid())

	require.Equal(int64(-10), a.SyncBalance(bc))
	require.Equal(int64(-10), a.Balance())
	require.Equal(int64(10+cfg.MiningReward), b.SyncBalance(bc))
}
