// Package ledger implements the payment ledger: an append-only, hash-linked
// chain of proof-of-work blocks recording signed transfers between accounts
// and the rewards minted for mining.
//
// Key concepts:
//   - Transaction: a *Transfer (signed by the payer) or a *Reward (minted).
//   - Block: a batch of transactions linked to its predecessor and sealed by
//     a nonce whose hash meets the difficulty target.
//   - Blockchain: the chain plus a pool of pending transfers. Mining moves the
//     pool into a new block.
//
// Usage:
//
//	bc, _ := ledger.NewBlockchain(ledger.DefaultConfig())
//	_ = bc.AddTransaction(signedTransfer)
//	block, _ := bc.MinePendingTransactions(ctx, minerKey) // blocks while mining
//	balance := bc.GetBalanceOfAddress(payeeKey)
//
// One Blockchain is created by the process entry point and injected into
// whatever needs it; there is no package-level instance.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-evcharge-ledger/keys"
)

// Blockchain is the ledger. It is safe for concurrent use: a single mutex
// guards the chain and the pending pool, and at most one mining operation runs
// at a time.
type Blockchain struct {
	cfg Config
	log *logrus.Entry
	now func() time.Time

	mu      sync.RWMutex
	chain   []*Block
	pending []Transaction
	mining  bool
}

// NewBlockchain creates a ledger holding only the genesis block.
func NewBlockchain(cfg Config, opts ...Option) (*Blockchain, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bc := &Blockchain{
		cfg:   cfg,
		log:   logrus.NewEntry(logrus.StandardLogger()),
		now:   time.Now,
		chain: []*Block{GenesisBlock()},
	}
	for _, opt := range opts {
		opt(bc)
	}
	bc.log = bc.log.WithField("module", "ledger")
	bc.log.WithFields(logrus.Fields{
		"genesis":    bc.chain[0].Hash.Hex(),
		"difficulty": cfg.Difficulty,
		"reward":     cfg.MiningReward,
	}).Debug("Ledger initialised")
	return bc, nil
}

// Config returns the parameters the ledger was built with.
func (bc *Blockchain) Config() Config {
	return bc.cfg
}

// AddTransaction admits a signed transfer into the pending pool.
//
// It fails with ErrInvalidTransaction when an address is missing, when the
// signature or hash does not verify, when the amount exceeds MaxAmount, when
// the transaction is a reward (those are minted only by mining) or when the
// same hash is already pending or recorded. Sender balances are not checked here; that is a wallet-side
// convenience.
func (bc *Blockchain) AddTransaction(tx Transaction) error {
	t, ok := tx.(*Transfer)
	switch {
	case tx == nil || (ok && t == nil):
		return fmt.Errorf("%w: nil transaction", ErrInvalidTransaction)
	case !ok:
		return fmt.Errorf("%w: %s transactions cannot be submitted", ErrInvalidTransaction, tx.Kind())
	case t.From.Empty() || t.To.Empty():
		return fmt.Errorf("%w: transaction must include from and to address", ErrInvalidTransaction)
	case t.Amount > MaxAmount:
		return fmt.Errorf("%w: amount %d exceeds %d", ErrInvalidTransaction, t.Amount, MaxAmount)
	case !t.IsValid():
		return fmt.Errorf("%w: cannot add invalid transaction %s", ErrInvalidTransaction, t.Hash.Hex())
	}

	bc.mu.Lock()
	defer bc.mu.Unlock()

	if bc.containsLocked(t.Hash) {
		return fmt.Errorf("%w: duplicate transaction %s", ErrInvalidTransaction, t.Hash.Hex())
	}
	bc.pending = append(bc.pending, t)

	bc.log.WithFields(logrus.Fields{
		"tx":      t.Hash.Hex(),
		"from":    t.From.Short(),
		"to":      t.To.Short(),
		"amount":  t.Amount,
		"pending": len(bc.pending),
	}).Debug("Transaction admitted")
	return nil
}

// MinePendingTransactions seals every transaction pending at call time, plus a
// reward for minerAddress, into a new block and appends it to the chain.
//
// This is a synchronous, CPU-bound call: it returns only when proof-of-work
// is done. Readers and AddTransaction are not blocked meanwhile; transfers
// admitted during the search stay pending for the next block. If mining fails
// (ctx cancelled, MaxNonce exhausted) the chain and pool are left unchanged.
func (bc *Blockchain) MinePendingTransactions(ctx context.Context, minerAddress keys.PubKey) (*Block, error) {
	if minerAddress.Empty() {
		return nil, fmt.Errorf("%w: reward address is empty", ErrInvalidTransaction)
	}

	// 1. Snapshot the pool and the tip under the lock.
	bc.mu.Lock()
	if bc.mining {
		bc.mu.Unlock()
		return nil, ErrMiningInProgress
	}
	bc.mining = true

	ts := FromTime(bc.now())
	tip := bc.chain[len(bc.chain)-1]
	taken := len(bc.pending)
	txs := make([]Transaction, 0, taken+1)
	txs = append(txs, bc.pending...)
	txs = append(txs, NewReward(minerAddress, bc.cfg.MiningReward, tip.Index+1, ts))

	block := NewBlock(tip.Index+1, ts, txs, tip.Hash)
	bc.mu.Unlock()

	// 2. Proof-of-work without holding the lock.
	start := time.Now()
	err := block.Mine(ctx, bc.cfg.Difficulty, bc.cfg.MaxNonce)

	// 3. Commit.
	bc.mu.Lock()
	defer bc.mu.Unlock()
	bc.mining = false

	if err != nil {
		bc.log.WithError(err).WithField("index", block.Index).Warn("Mining aborted")
		return nil, err
	}

	bc.chain = append(bc.chain, block)
	bc.pending = append([]Transaction(nil), bc.pending[taken:]...)

	bc.log.WithFields(logrus.Fields{
		"index":   block.Index,
		"hash":    block.Hash.Hex(),
		"nonce":   block.Nonce,
		"txs":     len(block.Transactions),
		"elapsed": time.Since(start),
	}).Info("Block mined")
	return block, nil
}

// GetBalanceOfAddress scans the whole chain: every transfer sent by address
// subtracts its amount, every transfer or reward received adds it. Pending
// transactions are not counted.
func (bc *Blockchain) GetBalanceOfAddress(address keys.PubKey) int64 {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	var balance int64
	for _, block := range bc.chain {
		for _, tx := range block.Transactions {
			if t, ok := tx.(*Transfer); ok && t.From.Equal(address) {
				balance -= int64(t.Amount)
			}
			if tx.Recipient().Equal(address) {
				balance += int64(tx.Value())
			}
		}
	}
	return balance
}

// GetAllTransactionsForWallet returns, in chain order, every recorded
// transaction that debits or credits address.
func (bc *Blockchain) GetAllTransactionsForWallet(address keys.PubKey) []Transaction {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	var txs []Transaction
	for _, block := range bc.chain {
		for _, tx := range block.Transactions {
			t, isTransfer := tx.(*Transfer)
			if tx.Recipient().Equal(address) || (isTransfer && t.From.Equal(address)) {
				txs = append(txs, tx)
			}
		}
	}
	return txs
}

// FindTransaction looks up a recorded (mined) transaction by hash and returns
// it with its block.
func (bc *Blockchain) FindTransaction(h hash.Hash) (Transaction, *Block, bool) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	for _, block := range bc.chain {
		for _, tx := range block.Transactions {
			if tx.ID() == h {
				return tx, block, true
			}
		}
	}
	return nil, nil, false
}

// LatestBlock returns the chain tip.
func (bc *Blockchain) LatestBlock() *Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return bc.chain[len(bc.chain)-1]
}

// Blocks returns a copy of the chain slice, genesis first.
func (bc *Blockchain) Blocks() []*Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return append([]*Block(nil), bc.chain...)
}

// PendingTransactions returns a copy of the pending pool in admission order.
func (bc *Blockchain) PendingTransactions() []Transaction {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return append([]Transaction(nil), bc.pending...)
}

// Len returns the number of blocks including genesis.
func (bc *Blockchain) Len() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return len(bc.chain)
}

// IsChainValid reports whether Validate finds no integrity failure.
func (bc *Blockchain) IsChainValid() bool {
	return bc.Validate() == nil
}

// Validate checks the whole chain and returns an error wrapping
// ErrChainIntegrity for the first failure found:
//   - chain[0] must be the fixed genesis block
//   - every later block links to its predecessor's hash and index
//   - every stored block hash equals its recomputed hash and meets difficulty
//   - every contained transaction is valid, and rewards name their own block
func (bc *Blockchain) Validate() error {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	genesis := GenesisBlock()
	if len(bc.chain) == 0 {
		return fmt.Errorf("%w: empty chain", ErrChainIntegrity)
	}
	if first := bc.chain[0]; first.Hash != genesis.Hash || first.CalculateHash() != genesis.Hash {
		return fmt.Errorf("%w: block 0 is not the genesis block", ErrChainIntegrity)
	}

	for i := 1; i < len(bc.chain); i++ {
		cur, prev := bc.chain[i], bc.chain[i-1]

		if cur.Index != prev.Index+1 {
			return fmt.Errorf("%w: block %d: index %d does not follow %d", ErrChainIntegrity, i, cur.Index, prev.Index)
		}
		if cur.PreviousHash != prev.Hash {
			return fmt.Errorf("%w: block %d: previous hash mismatch", ErrChainIntegrity, i)
		}
		if cur.Hash != cur.CalculateHash() {
			return fmt.Errorf("%w: block %d: stored hash does not match contents", ErrChainIntegrity, i)
		}
		if !MeetsDifficulty(cur.Hash, bc.cfg.Difficulty) {
			return fmt.Errorf("%w: block %d: hash does not meet difficulty %d", ErrChainIntegrity, i, bc.cfg.Difficulty)
		}
		for j, tx := range cur.Transactions {
			if tx == nil || !tx.IsValid() {
				return fmt.Errorf("%w: block %d: transaction %d is invalid", ErrChainIntegrity, i, j)
			}
			if r, ok := tx.(*Reward); ok && r.Block != cur.Index {
				return fmt.Errorf("%w: block %d: reward minted for block %d", ErrChainIntegrity, i, r.Block)
			}
		}
	}
	return nil
}

// containsLocked reports whether h is pending or recorded. bc.mu must be held.
func (bc *Blockchain) containsLocked(h hash.Hash) bool {
	for _, tx := range bc.pending {
		if tx.ID() == h {
			return true
		}
	}
	for _, block := range bc.chain {
		for _, tx := range block.Transactions {
			if tx.ID() == h {
				return true
			}
		}
	}
	return false
}
