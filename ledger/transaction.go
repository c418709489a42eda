package ledger

import (
	"fmt"
	"math"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/Fantom-foundation/lachesis-base/hash"
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	sha256 "github.com/minio/sha256-simd"

	"github.com/rony4d/go-evcharge-ledger/keys"
)

/*
This file defines the two kinds of value movement the ledger records.

Transfer: a payment from one account to another. It must be signed by the
sender; the signature covers the transfer's hash.

Reward: value minted by the ledger itself for the account that mined a block.
It has no sender and carries no signature.

Hashing (both kinds):

	sha256( RLP([kind, from, to, amount, data, timestamp]) )

kind separates the two domains so a reward can never collide with a transfer
that happens to carry the same fields. A reward encodes an empty from and the
big-endian index of its block as data, so rewards minted at the same instant
for the same miner still have distinct hashes.
*/

// MaxAmount is the largest amount a single transaction may move. Balances are
// signed 64-bit sums, so larger amounts would wrap.
const MaxAmount uint64 = math.MaxInt64

// TxKind tags the variant of a transaction in its canonical encoding.
type TxKind uint8

const (
	// KindTransfer marks a signed account-to-account payment.
	KindTransfer TxKind = 1
	// KindReward marks a mining reward minted by the ledger.
	KindReward TxKind = 2
)

// String returns the lowercase kind name used in JSON views and logs.
func (k TxKind) String() string {
	switch k {
	case KindTransfer:
		return "transfer"
	case KindReward:
		return "reward"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Transaction is a recorded movement of value. The set of implementations is
// closed: *Transfer and *Reward.
type Transaction interface {
	// Kind identifies the variant.
	Kind() TxKind
	// ID returns the hash stored on the transaction.
	ID() hash.Hash
	// CalculateHash recomputes the hash from the current field values.
	CalculateHash() hash.Hash
	// Recipient is the credited account.
	Recipient() keys.PubKey
	// Value is the moved amount.
	Value() uint64
	// CreatedAt is the creation timestamp.
	CreatedAt() Timestamp
	// IsValid is a pure predicate: the stored hash matches the fields and,
	// for transfers, the signature verifies against the sender.
	IsValid() bool

	envelope() txEnvelope
}

// Signer produces signatures for a single account. *wallet.Wallet satisfies it.
type Signer interface {
	PublicKey() keys.PubKey
	Sign(payload []byte) []byte
}

// txContent is the hashed part of a transaction. Field order is the wire order.
type txContent struct {
	Kind      uint8
	From      []byte
	To        []byte
	Amount    uint64
	Data      []byte
	Timestamp uint64
}

// txEnvelope is a transaction as committed inside a block hash: its content
// plus the signature, so a block also commits to who authorised each payment.
type txEnvelope struct {
	Kind      uint8
	From      []byte
	To        []byte
	Amount    uint64
	Data      []byte
	Timestamp uint64
	Signature []byte
}

func (e txEnvelope) content() txContent {
	return txContent{
		Kind:      e.Kind,
		From:      e.From,
		To:        e.To,
		Amount:    e.Amount,
		Data:      e.Data,
		Timestamp: e.Timestamp,
	}
}

// mustEncode RLP-encodes one of the package's fixed-shape structs. Those only
// contain byte strings, unsigned integers and lists, which RLP always accepts.
func mustEncode(v interface{}) []byte {
	b, err := rlp.EncodeToBytes(v)
	if err != nil {
		panic(fmt.Errorf("rlp encoding of %T: %w", v, err))
	}
	return b
}

func hashContent(c txContent) hash.Hash {
	return hash.Hash(sha256.Sum256(mustEncode(c)))
}

// ----------------------------------------------------------------------------
// Transfer
// ----------------------------------------------------------------------------

// Transfer moves Amount from From to To. Data is an opaque payload supplied by
// the caller (session correlation metadata); the ledger never decodes it.
//
// Fields are exported for inspection and tamper testing. A transfer is treated
// as immutable once signed: changing any field without re-signing makes
// IsValid report false.
type Transfer struct {
	From      keys.PubKey
	To        keys.PubKey
	Amount    uint64
	Data      []byte
	Timestamp Timestamp
	Hash      hash.Hash
	Signature []byte
}

// NewTransfer builds an unsigned transfer and computes its hash immediately.
func NewTransfer(from, to keys.PubKey, amount uint64, data []byte, ts Timestamp) *Transfer {
	t := &Transfer{
		From:      from.Copy(),
		To:        to.Copy(),
		Amount:    amount,
		Data:      common.CopyBytes(data),
		Timestamp: ts,
	}
	t.Hash = t.CalculateHash()
	return t
}

// Kind implements Transaction.
func (t *Transfer) Kind() TxKind { return KindTransfer }

// ID implements Transaction.
func (t *Transfer) ID() hash.Hash { return t.Hash }

// Recipient implements Transaction.
func (t *Transfer) Recipient() keys.PubKey { return t.To }

// Value implements Transaction.
func (t *Transfer) Value() uint64 { return t.Amount }

// CreatedAt implements Transaction.
func (t *Transfer) CreatedAt() Timestamp { return t.Timestamp }

// CalculateHash recomputes the digest over {from, to, amount, data, timestamp}.
func (t *Transfer) CalculateHash() hash.Hash {
	return hashContent(t.envelope().content())
}

// SignTransaction signs the transfer's hash with signer. It fails with
// ErrUnauthorizedSigner if the signer's key is not the sending address, and
// leaves the transfer untouched in that case.
func (t *Transfer) SignTransaction(signer Signer) error {
	if !signer.PublicKey().Equal(t.From) {
		return fmt.Errorf("%w: from %s, signer %s", ErrUnauthorizedSigner, t.From.Short(), signer.PublicKey().Short())
	}
	h := t.CalculateHash()
	t.Hash = h
	t.Signature = signer.Sign(h.Bytes())
	return nil
}

// IsValid recomputes the hash and verifies the signature against From. Any
// mismatch (stale hash, wrong key, malformed signature) or an amount above
// MaxAmount yields false.
func (t *Transfer) IsValid() bool {
	if t == nil || t.From.Empty() || len(t.Signature) == 0 || t.Amount > MaxAmount {
		return false
	}
	h := t.CalculateHash()
	if h != t.Hash {
		return false
	}
	return keys.VerifySignature(t.From, h.Bytes(), t.Signature)
}

func (t *Transfer) envelope() txEnvelope {
	return txEnvelope{
		Kind:      uint8(KindTransfer),
		From:      t.From.Bytes(),
		To:        t.To.Bytes(),
		Amount:    t.Amount,
		Data:      t.Data,
		Timestamp: uint64(t.Timestamp),
		Signature: t.Signature,
	}
}

// ----------------------------------------------------------------------------
// Reward
// ----------------------------------------------------------------------------

// Reward credits the miner of a block. It is created only by
// Blockchain.MinePendingTransactions and is exempt from signature checks.
type Reward struct {
	To     keys.PubKey
	Amount uint64
	// Block is the index of the block that mints the reward.
	Block     idx.Block
	Timestamp Timestamp
	Hash      hash.Hash
}

// NewReward builds the reward for block and computes its hash.
func NewReward(to keys.PubKey, amount uint64, block idx.Block, ts Timestamp) *Reward {
	r := &Reward{
		To:        to.Copy(),
		Amount:    amount,
		Block:     block,
		Timestamp: ts,
	}
	r.Hash = r.CalculateHash()
	return r
}

// Kind implements Transaction.
func (r *Reward) Kind() TxKind { return KindReward }

// ID implements Transaction.
func (r *Reward) ID() hash.Hash { return r.Hash }

// Recipient implements Transaction.
func (r *Reward) Recipient() keys.PubKey { return r.To }

// Value implements Transaction.
func (r *Reward) Value() uint64 { return r.Amount }

// CreatedAt implements Transaction.
func (r *Reward) CreatedAt() Timestamp { return r.Timestamp }

// CalculateHash recomputes the digest over {to, amount, block, timestamp}.
func (r *Reward) CalculateHash() hash.Hash {
	return hashContent(r.envelope().content())
}

// IsValid needs no signature; it checks the stored hash still matches and the
// amount is within MaxAmount.
func (r *Reward) IsValid() bool {
	if r == nil || r.To.Empty() || r.Amount > MaxAmount {
		return false
	}
	return r.CalculateHash() == r.Hash
}

func (r *Reward) envelope() txEnvelope {
	return txEnvelope{
		Kind:      uint8(KindReward),
		To:        r.To.Bytes(),
		Amount:    r.Amount,
		Data:      bigendian.Uint64ToBytes(uint64(r.Block)),
		Timestamp: uint64(r.Timestamp),
	}
}
