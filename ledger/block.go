package ledger

import (
	"context"
	"fmt"
	"math"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	sha256 "github.com/minio/sha256-simd"
)

// MaxDifficulty is the largest target expressible on a 32-byte hash (64 hex
// characters).
const MaxDifficulty uint = 2 * uint(len(hash.Hash{}))

// ctxCheckInterval is how many nonces are tried between context checks.
const ctxCheckInterval = 4096

// Block is an ordered batch of transactions sealed with proof-of-work and
// linked to its predecessor by PreviousHash.
//
// The block hash is
//
//	sha256( RLP([index, previousHash, timestamp, [txEnvelope...]]) || bigendian(nonce) )
//
// RLP is self-delimiting, so appending the fixed 8-byte nonce keeps the input
// unambiguous and lets Mine encode everything but the nonce once.
type Block struct {
	// Index is the position in the chain (0 = genesis).
	Index idx.Block
	// Timestamp is when the block was assembled.
	Timestamp Timestamp
	// Transactions are in admission order; a mined block's reward comes last.
	Transactions []Transaction
	// PreviousHash is the hash of chain[Index-1]; zero for genesis.
	PreviousHash hash.Hash
	// Nonce is the proof-of-work counter.
	Nonce uint64
	// Hash is the stored digest. Validation always recomputes it.
	Hash hash.Hash
}

// blockPrefix is everything a block hash covers except the nonce.
type blockPrefix struct {
	Index        uint64
	PreviousHash hash.Hash
	Timestamp    uint64
	Transactions []txEnvelope
}

// NewBlock assembles an unmined block (nonce 0) and computes its hash.
func NewBlock(index idx.Block, ts Timestamp, txs []Transaction, prev hash.Hash) *Block {
	b := &Block{
		Index:        index,
		Timestamp:    ts,
		Transactions: append([]Transaction(nil), txs...),
		PreviousHash: prev,
	}
	b.Hash = b.CalculateHash()
	return b
}

// prefix returns the canonical encoding of the nonce-independent fields.
func (b *Block) prefix() []byte {
	envs := make([]txEnvelope, len(b.Transactions))
	for i, tx := range b.Transactions {
		envs[i] = tx.envelope()
	}
	return mustEncode(blockPrefix{
		Index:        uint64(b.Index),
		PreviousHash: b.PreviousHash,
		Timestamp:    uint64(b.Timestamp),
		Transactions: envs,
	})
}

// CalculateHash recomputes the block hash from the current field values.
func (b *Block) CalculateHash() hash.Hash {
	h := sha256.New()
	h.Write(b.prefix())
	h.Write(bigendian.Uint64ToBytes(b.Nonce))
	return hash.BytesToHash(h.Sum(nil))
}

// Mine increments the nonce until the hash meets difficulty. It is CPU bound
// and blocks the caller for the whole search.
//
// The search gives up with ErrMiningAborted when ctx is done or when
// maxIterations nonces were tried (0 means no bound). On failure Nonce and Hash
// keep their previous values.
func (b *Block) Mine(ctx context.Context, difficulty uint, maxIterations uint64) error {
	if difficulty > MaxDifficulty {
		return fmt.Errorf("%w: difficulty %d exceeds %d", ErrMiningAborted, difficulty, MaxDifficulty)
	}

	prefix := b.prefix()
	buf := make([]byte, len(prefix)+8)
	copy(buf, prefix)

	nonce := b.Nonce
	for tries := uint64(0); ; tries++ {
		if maxIterations != 0 && tries >= maxIterations {
			return fmt.Errorf("%w: no nonce found in %d iterations", ErrMiningAborted, maxIterations)
		}
		if tries%ctxCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", ErrMiningAborted, ctx.Err())
			default:
			}
		}

		copy(buf[len(prefix):], bigendian.Uint64ToBytes(nonce))
		h := hash.Hash(sha256.Sum256(buf))
		if MeetsDifficulty(h, difficulty) {
			b.Nonce = nonce
			b.Hash = h
			return nil
		}

		if nonce == math.MaxUint64 {
			return fmt.Errorf("%w: nonce space exhausted", ErrMiningAborted)
		}
		nonce++
	}
}

// MeetsDifficulty reports whether the hex form of h starts with difficulty
// '0' characters, i.e. whether its first difficulty nibbles are zero.
func MeetsDifficulty(h hash.Hash, difficulty uint) bool {
	if difficulty > MaxDifficulty {
		return false
	}
	for i := uint(0); i < difficulty; i++ {
		nibble := h[i/2]
		if i%2 == 0 {
			nibble >>= 4
		} else {
			nibble &= 0x0f
		}
		if nibble != 0 {
			return false
		}
	}
	return true
}

// HasValidTransactions reports whether every contained transaction is valid.
func (b *Block) HasValidTransactions() bool {
	for _, tx := range b.Transactions {
		if tx == nil || !tx.IsValid() {
			return false
		}
	}
	return true
}

// EstimateSize returns an approximate encoded size in bytes, used for log
// lines and display.
func (b *Block) EstimateSize() int {
	return len(b.prefix()) + 8
}
