package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// LedgerFlags tune proof-of-work and rewards. Unset flags keep the preset value.

func LedgerFlags() []cli.Flag {
	return []cli.Flag{
		cli.UintFlag{
			Name:  "ledger.difficulty",
			Usage: "Leading zero hex characters required in a block hash",
		},
		cli.Uint64Flag{
			Name:  "ledger.reward",
			Usage: "Amount minted to the miner of each block",
		},
		cli.Uint64Flag{
			Name:  "ledger.maxnonce",
			Usage: "Nonces tried per block before mining aborts (0 = unbounded)",
		},
		cli.DurationFlag{
			Name:  "ledger.minetimeout",
			Usage: "Wall-clock limit for mining one block (0 = none)",
		},
	}
}
