package contract

import (
	"errors"
	"fmt"
	"time"

	"github.com/Fantom-foundation/lachesis-base/hash"

	"github.com/rony4d/go-evcharge-ledger/keys"
)

var (
	// ErrInvalidStateTransition is returned when an operation is not allowed
	// from the contract's current status.
	ErrInvalidStateTransition = errors.New("invalid state transition")
	// ErrAlreadyTerminal is returned when a completed or cancelled contract
	// is asked to change.
	ErrAlreadyTerminal = errors.New("contract already terminal")
	// ErrInvalidTerms is returned by NewChargingContract for unusable terms.
	ErrInvalidTerms = errors.New("invalid contract terms")
	// ErrInvalidEnergy is returned for negative or non-finite energy readings.
	ErrInvalidEnergy = errors.New("invalid energy reading")
	// ErrNoLedger is returned by MakePayment when the contract has no way to
	// look up transactions.
	ErrNoLedger = errors.New("no ledger to verify payment against")
	// ErrUnknownTransaction is returned by MakePayment when the referenced
	// transaction is not recorded, not valid, does not carry the paid amount
	// or was already used for a payment.
	ErrUnknownTransaction = errors.New("payment transaction not found")
)

// Status is the lifecycle position of a charging contract.
type Status uint8

const (
	StatusPending Status = iota
	StatusActive
	StatusCompleted
	StatusCancelled
)

var statusNames = map[Status]string{
	StatusPending:   "pending",
	StatusActive:    "active",
	StatusCompleted: "completed",
	StatusCancelled: "cancelled",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// MarshalText renders the lowercase status name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a lowercase status name.
func (s *Status) UnmarshalText(input []byte) error {
	for status, name := range statusNames {
		if name == string(input) {
			*s = status
			return nil
		}
	}
	return fmt.Errorf("unknown contract status %q", input)
}

// Parties are the two accounts a session settles between.
type Parties struct {
	UserAddress    keys.PubKey `json:"userAddress"`
	StationAddress keys.PubKey `json:"stationAddress"`
}

// Terms are the commercial conditions of a session.
type Terms struct {
	// RatePerKwh is the price of one kWh in minor currency units.
	RatePerKwh uint64 `json:"ratePerKwh"`
	// MinDuration and MaxDuration bound the expected session length.
	MinDuration time.Duration `json:"minDuration"`
	MaxDuration time.Duration `json:"maxDuration"`
}

// Validate requires a positive rate and 0 <= MinDuration <= MaxDuration.
func (t Terms) Validate() error {
	switch {
	case t.RatePerKwh == 0:
		return fmt.Errorf("%w: rate per kWh must be positive", ErrInvalidTerms)
	case t.MinDuration < 0:
		return fmt.Errorf("%w: negative minimum duration", ErrInvalidTerms)
	case t.MaxDuration < t.MinDuration:
		return fmt.Errorf("%w: maximum duration %v below minimum %v", ErrInvalidTerms, t.MaxDuration, t.MinDuration)
	}
	return nil
}

// Payment records one settlement against the session.
type Payment struct {
	Amount    uint64    `json:"amount"`
	TxHash    hash.Hash `json:"txHash"`
	Timestamp time.Time `json:"timestamp"`
}

// State is a point-in-time snapshot of a contract. It shares no memory with
// the contract.
type State struct {
	ID              string     `json:"id"`
	Parties         Parties    `json:"parties"`
	Terms           Terms      `json:"terms"`
	Status          Status     `json:"status"`
	StartTime       *time.Time `json:"startTime,omitempty"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	EnergyDelivered float64    `json:"energyDelivered"`
	Payments        []Payment  `json:"payments"`
}
