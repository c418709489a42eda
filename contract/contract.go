// Package contract implements the charging session contract: the state
// machine of one charging engagement between a user and a station.
//
//	pending --StartCharging--> active --EndCharging--> completed
//	   |                         |
//	   +--------Cancel-----------+------------------> cancelled
//
// Energy accumulates only while active. Payments may be recorded while active
// or after completion, and each must reference a transfer recorded in the
// ledger. Every operation either succeeds or leaves the contract unchanged.
package contract

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-evcharge-ledger/ledger"
)

// TxLookup finds recorded transactions. *ledger.Blockchain satisfies it.
type TxLookup interface {
	FindTransaction(h hash.Hash) (ledger.Transaction, *ledger.Block, bool)
}

// ChargingContract is safe for concurrent use.
type ChargingContract struct {
	id      string
	parties Parties
	terms   Terms
	now     func() time.Time
	ledger  TxLookup
	log     *logrus.Entry

	mu              sync.Mutex
	status          Status
	startTime       time.Time
	endTime         time.Time
	energyDelivered float64
	payments        []Payment
}

// Option customises a ChargingContract.
type Option func(*ChargingContract)

// WithClock replaces time.Now for cancellation and payment timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *ChargingContract) {
		c.now = now
	}
}

// WithLedger sets where MakePayment verifies transactions.
func WithLedger(l TxLookup) Option {
	return func(c *ChargingContract) {
		c.ledger = l
	}
}

// WithID overrides the generated contract ID.
func WithID(id string) Option {
	return func(c *ChargingContract) {
		c.id = id
	}
}

// WithLogger sets the log entry used for transition records.
func WithLogger(log *logrus.Entry) Option {
	return func(c *ChargingContract) {
		c.log = log
	}
}

// NewChargingContract creates a pending contract.
func NewChargingContract(parties Parties, terms Terms, opts ...Option) (*ChargingContract, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	if parties.UserAddress.Empty() || parties.StationAddress.Empty() {
		return nil, fmt.Errorf("%w: both parties need an address", ErrInvalidTerms)
	}
	c := &ChargingContract{
		id:      uuid.New().String(),
		parties: Parties{UserAddress: parties.UserAddress.Copy(), StationAddress: parties.StationAddress.Copy()},
		terms:   terms,
		now:     time.Now,
		log:     logrus.NewEntry(logrus.StandardLogger()),
		status:  StatusPending,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithFields(logrus.Fields{"module": "contract", "contract": c.id})
	return c, nil
}

// ID returns the contract identifier.
func (c *ChargingContract) ID() string { return c.id }

// Parties returns the settling accounts.
func (c *ChargingContract) Parties() Parties { return c.parties }

// Terms returns the commercial terms.
func (c *ChargingContract) Terms() Terms { return c.terms }

// Status returns the current lifecycle position.
func (c *ChargingContract) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *ChargingContract) transitionError(op string) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidStateTransition, op, c.status)
}

// StartCharging moves pending -> active and records t as the start time.
func (c *ChargingContract) StartCharging(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusPending {
		return c.transitionError("start")
	}
	c.status = StatusActive
	c.startTime = t
	c.log.WithField("start", t).Debug("Charging started")
	return nil
}

// RecordEnergy adds e kWh to the delivered total. Only allowed while active.
func (c *ChargingContract) RecordEnergy(e float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusActive {
		return c.transitionError("record energy")
	}
	if e < 0 || math.IsNaN(e) || math.IsInf(e, 0) {
		return fmt.Errorf("%w: %v kWh", ErrInvalidEnergy, e)
	}
	c.energyDelivered += e
	return nil
}

// EndCharging moves active -> completed and records t as the end time.
func (c *ChargingContract) EndCharging(t time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusActive {
		return c.transitionError("end")
	}
	c.status = StatusCompleted
	c.endTime = t
	c.log.WithFields(logrus.Fields{
		"end":    t,
		"energy": c.energyDelivered,
	}).Debug("Charging completed")
	return nil
}

// Cancel aborts a pending or active contract. A completed or cancelled contract
// yields ErrAlreadyTerminal.
func (c *ChargingContract) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status.Terminal() {
		return fmt.Errorf("%w: contract is %s", ErrAlreadyTerminal, c.status)
	}
	c.status = StatusCancelled
	c.endTime = c.now()
	c.log.Debug("Charging cancelled")
	return nil
}

// MakePayment records that amount was settled by the transaction txHash.
//
// It is allowed while active or completed. The transaction must be a transfer
// recorded in the ledger from the user to the station, valid, move exactly
// amount and not already back another payment.
func (c *ChargingContract) MakePayment(amount uint64, txHash hash.Hash) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.status {
	case StatusActive, StatusCompleted:
	case StatusCancelled:
		return fmt.Errorf("%w: cannot pay a cancelled contract", ErrAlreadyTerminal)
	default:
		return c.transitionError("pay")
	}
	if c.ledger == nil {
		return ErrNoLedger
	}

	tx, _, ok := c.ledger.FindTransaction(txHash)
	switch {
	case !ok:
		return fmt.Errorf("%w: %s", ErrUnknownTransaction, txHash.Hex())
	case !tx.IsValid():
		return fmt.Errorf("%w: %s is not valid", ErrUnknownTransaction, txHash.Hex())
	case !c.settles(tx):
		return fmt.Errorf("%w: %s is not a transfer from user to station", ErrUnknownTransaction, txHash.Hex())
	case tx.Value() != amount:
		return fmt.Errorf("%w: %s moves %d, not %d", ErrUnknownTransaction, txHash.Hex(), tx.Value(), amount)
	}
	for _, p := range c.payments {
		if p.TxHash == txHash {
			return fmt.Errorf("%w: %s already recorded", ErrUnknownTransaction, txHash.Hex())
		}
	}

	c.payments = append(c.payments, Payment{
		Amount:    amount,
		TxHash:    txHash,
		Timestamp: c.now(),
	})
	c.log.WithFields(logrus.Fields{
		"amount": amount,
		"tx":     txHash.Hex(),
	}).Info("Payment recorded")
	return nil
}

// settles reports whether tx moves value from the user to the station.
func (c *ChargingContract) settles(tx ledger.Transaction) bool {
	t, ok := tx.(*ledger.Transfer)
	return ok && t.From.Equal(c.parties.UserAddress) && t.To.Equal(c.parties.StationAddress)
}

// GetContractState returns a snapshot for external reporting.
func (c *ChargingContract) GetContractState() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		ID:              c.id,
		Parties:         Parties{UserAddress: c.parties.UserAddress.Copy(), StationAddress: c.parties.StationAddress.Copy()},
		Terms:           c.terms,
		Status:          c.status,
		EnergyDelivered: c.energyDelivered,
		Payments:        append([]Payment{}, c.payments...),
	}
	if !c.startTime.IsZero() {
		t := c.startTime
		s.StartTime = &t
	}
	if !c.endTime.IsZero() {
		t := c.endTime
		s.EndTime = &t
	}
	return s
}

// EnergyDelivered returns the kWh delivered so far.
func (c *ChargingContract) EnergyDelivered() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.energyDelivered
}

// TotalPaid sums all recorded payments.
func (c *ChargingContract) TotalPaid() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalPaidLocked()
}

func (c *ChargingContract) totalPaidLocked() uint64 {
	var total uint64
	for _, p := range c.payments {
		total += p.Amount
	}
	return total
}

// AmountDue is the cost of the delivered energy, rounded up to a whole minor
// unit, minus what was already paid. It never goes below zero.
func (c *ChargingContract) AmountDue() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	cost := uint64(math.Ceil(c.energyDelivered * float64(c.terms.RatePerKwh)))
	paid := c.totalPaidLocked()
	if paid >= cost {
		return 0
	}
	return cost - paid
}

// Duration is how long the session has been running at now, or how long it
// ran once ended. It is zero before the start.
func (c *ChargingContract) Duration(now time.Time) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.startTime.IsZero() {
		return 0
	}
	end := now
	if !c.endTime.IsZero() {
		end = c.endTime
	}
	if end.Before(c.startTime) {
		return 0
	}
	return end.Sub(c.startTime)
}

// Overdue reports whether an active session has outrun MaxDuration at now.
func (c *ChargingContract) Overdue(now time.Time) bool {
	return c.Status() == StatusActive && c.Duration(now) > c.terms.MaxDuration
}
