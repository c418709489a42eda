package ledger

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Config holds the parameters of a ledger instance.
type Config struct {
	// Difficulty is the number of leading zero hex characters a mined block
	// hash must have.
	Difficulty uint
	// MiningReward is credited to the miner of every block.
	MiningReward uint64
	// MaxNonce bounds a single proof-of-work search (0 = unbounded).
	MaxNonce uint64
}

// DefaultConfig returns development-friendly parameters.
func DefaultConfig() Config {
	return Config{
		Difficulty:   2,
		MiningReward: 100,
		MaxNonce:     0,
	}
}

// Validate rejects parameters proof-of-work cannot satisfy.
func (c Config) Validate() error {
	if c.Difficulty > MaxDifficulty {
		return fmt.Errorf("difficulty %d exceeds maximum %d", c.Difficulty, MaxDifficulty)
	}
	if c.MiningReward > MaxAmount {
		return fmt.Errorf("mining reward %d exceeds maximum %d", c.MiningReward, MaxAmount)
	}
	return nil
}

// Option customises a Blockchain.
type Option func(*Blockchain)

// WithLogger sets the log entry used by the ledger.
func WithLogger(log *logrus.Entry) Option {
	return func(bc *Blockchain) {
		bc.log = log
	}
}

// WithClock replaces time.Now, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(bc *Blockchain) {
		bc.now = now
	}
}
