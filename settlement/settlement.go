// Package settlement pays charging sessions through the ledger.
//
// A settlement has the user's wallet build and sign a transfer to the station,
// admits it to the pending pool, mines a block for it and records the payment
// on the contract. Settle blocks for the whole proof-of-work search; callers
// on a path that must stay responsive should run it on their own goroutine.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-evcharge-ledger/contract"
	"github.com/rony4d/go-evcharge-ledger/keys"
	"github.com/rony4d/go-evcharge-ledger/ledger"
	"github.com/rony4d/go-evcharge-ledger/wallet"
)

var (
	// ErrNothingDue is returned by SettleDue when the contract owes nothing.
	ErrNothingDue = errors.New("nothing due")
	// ErrPayeeMismatch is returned when the payee is not the contract's station.
	ErrPayeeMismatch = errors.New("payee is not the contract station")
	// ErrPayerMismatch is returned when the payer is not the contract's user.
	ErrPayerMismatch = errors.New("payer is not the contract user")
)

// miningRetryInterval is how long Settle waits before mining again when
// another caller holds the ledger's miner.
const miningRetryInterval = 10 * time.Millisecond

// Request asks for one payment against a contract.
type Request struct {
	Contract *contract.ChargingContract
	Payer    *wallet.Wallet
	Payee    keys.PubKey
	Amount   uint64
	Meta     contract.SessionMeta
}

// Receipt is the proof of a settlement: the transfer hash and the block that
// records it.
type Receipt struct {
	TxHash     hash.Hash `json:"txHash"`
	BlockIndex idx.Block `json:"blockIndex"`
	BlockHash  hash.Hash `json:"blockHash"`
	Amount     uint64    `json:"amount"`
}

// Service settles sessions against one ledger. Settlements through one
// Service run one at a time.
type Service struct {
	bc    *ledger.Blockchain
	miner keys.PubKey
	log   *logrus.Entry

	mu sync.Mutex
}

// Option customises a Service.
type Option func(*Service)

// WithLogger sets the log entry used by the service.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Service) {
		s.log = log
	}
}

// NewService returns a settlement service that mines with rewards to miner.
func NewService(bc *ledger.Blockchain, miner keys.PubKey, opts ...Option) *Service {
	s := &Service{
		bc:    bc,
		miner: miner.Copy(),
		log:   logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("module", "settlement")
	return s
}

// Settle pays req.Amount from req.Payer to req.Payee, mines the block that
// records it and registers the payment on req.Contract.
//
// If the ledger refuses the transfer the payer's tracked balance is restored.
// While another caller is mining on the same ledger Settle waits and retries;
// a transfer sealed by that caller's block counts as mined. If mining fails
// after admission the transfer stays in the pending pool, is recorded by the
// next mined block and the debit stands.
func (s *Service) Settle(ctx context.Context, req Request) (Receipt, error) {
	if req.Contract == nil || req.Payer == nil {
		return Receipt{}, errors.New("settlement needs a contract and a payer")
	}
	switch st := req.Contract.Status(); st {
	case contract.StatusActive, contract.StatusCompleted:
	case contract.StatusCancelled:
		return Receipt{}, fmt.Errorf("%w: cannot settle a cancelled contract", contract.ErrAlreadyTerminal)
	default:
		return Receipt{}, fmt.Errorf("%w: cannot settle a %s contract", contract.ErrInvalidStateTransition, st)
	}
	parties := req.Contract.Parties()
	if !req.Payee.Equal(parties.StationAddress) {
		return Receipt{}, fmt.Errorf("%w: %s", ErrPayeeMismatch, req.Payee.Short())
	}
	if payer := req.Payer.PublicKey(); !payer.Equal(parties.UserAddress) {
		return Receipt{}, fmt.Errorf("%w: %s", ErrPayerMismatch, payer.Short())
	}

	log := s.log.WithFields(logrus.Fields{
		"contract": req.Contract.ID(),
		"amount":   req.Amount,
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := req.Payer.CreateTransaction(req.Payee, req.Amount, req.Meta.Encode())
	if err != nil {
		return Receipt{}, err
	}
	if err := s.bc.AddTransaction(tx); err != nil {
		req.Payer.Credit(req.Amount)
		return Receipt{}, err
	}

	block, err := s.mine(ctx, tx.Hash)
	if err != nil {
		log.WithError(err).Warn("Settlement not mined")
		return Receipt{}, fmt.Errorf("mine settlement %s: %w", tx.Hash.Hex(), err)
	}

	if err := req.Contract.MakePayment(req.Amount, tx.Hash); err != nil {
		// The transfer is on the chain; only the contract bookkeeping failed.
		log.WithError(err).Error("Payment mined but not recorded on contract")
		return Receipt{}, err
	}

	log.WithFields(logrus.Fields{
		"tx":    tx.Hash.Hex(),
		"block": block.Index,
	}).Info("Session settled")
	return Receipt{
		TxHash:     tx.Hash,
		BlockIndex: block.Index,
		BlockHash:  block.Hash,
		Amount:     req.Amount,
	}, nil
}

// mine seals the pending pool and returns the block recording txHash.
func (s *Service) mine(ctx context.Context, txHash hash.Hash) (*ledger.Block, error) {
	for {
		_, err := s.bc.MinePendingTransactions(ctx, s.miner)
		if _, block, ok := s.bc.FindTransaction(txHash); ok {
			return block, nil
		}
		if err == nil {
			return nil, fmt.Errorf("transfer %s missing after mining", txHash.Hex())
		}
		if !errors.Is(err, ledger.ErrMiningInProgress) {
			return nil, err
		}

		timer := time.NewTimer(miningRetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %w", ledger.ErrMiningAborted, ctx.Err())
		case <-timer.C:
		}
	}
}

// SettleDue settles whatever c still owes, with session metadata derived from
// the contract.
func (s *Service) SettleDue(ctx context.Context, c *contract.ChargingContract, payer *wallet.Wallet, meta contract.SessionMeta) (Receipt, error) {
	due := c.AmountDue()
	if due == 0 {
		return Receipt{}, ErrNothingDue
	}
	if meta.SessionID == "" {
		meta.SessionID = c.ID()
	}
	return s.Settle(ctx, Request{
		Contract: c,
		Payer:    payer,
		Payee:    c.Parties().StationAddress,
		Amount:   due,
		Meta:     meta,
	})
}
