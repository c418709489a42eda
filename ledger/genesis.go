package ledger

import (
	"time"

	"github.com/Fantom-foundation/lachesis-base/hash"
)

// GenesisTime is the fixed timestamp of the genesis block.
var GenesisTime = time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)

// GenesisBlock returns a fresh copy of the fixed first block: index 0, no
// transactions, a zero previous hash and nonce 0. It is not mined; every
// ledger starts from an identical genesis so its hash is a constant.
func GenesisBlock() *Block {
	return NewBlock(0, FromTime(GenesisTime), nil, hash.Hash{})
}
