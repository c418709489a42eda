package ledger

import (
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// TransactionView is the display/persistence form of a transaction. Hashes,
// keys and signatures are hex strings.
type TransactionView struct {
	Kind      string        `json:"kind"`
	Hash      string        `json:"hash"`
	From      string        `json:"from,omitempty"`
	To        string        `json:"to"`
	Amount    uint64        `json:"amount"`
	Data      hexutil.Bytes `json:"data,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Signature hexutil.Bytes `json:"signature,omitempty"`
}

// BlockView is the display/persistence form of a block.
type BlockView struct {
	Index        uint64            `json:"index"`
	Hash         string            `json:"hash"`
	PreviousHash string            `json:"previousHash"`
	Timestamp    time.Time         `json:"timestamp"`
	Nonce        uint64            `json:"nonce"`
	Transactions []TransactionView `json:"transactions"`
}

// ViewOf renders tx for external layers.
func ViewOf(tx Transaction) TransactionView {
	v := TransactionView{
		Kind:      tx.Kind().String(),
		Hash:      tx.ID().Hex(),
		To:        tx.Recipient().String(),
		Amount:    tx.Value(),
		Timestamp: tx.CreatedAt().Time(),
	}
	if t, ok := tx.(*Transfer); ok {
		v.From = t.From.String()
		v.Data = hexutil.Bytes(t.Data)
		v.Signature = hexutil.Bytes(t.Signature)
	}
	return v
}

// View renders the block for external layers.
func (b *Block) View() BlockView {
	txs := make([]TransactionView, len(b.Transactions))
	for i, tx := range b.Transactions {
		txs[i] = ViewOf(tx)
	}
	return BlockView{
		Index:        uint64(b.Index),
		Hash:         b.Hash.Hex(),
		PreviousHash: b.PreviousHash.Hex(),
		Timestamp:    b.Timestamp.Time(),
		Nonce:        b.Nonce,
		Transactions: txs,
	}
}
