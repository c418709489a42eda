package flags

import (
	"time"

	"gopkg.in/urfave/cli.v1"
)

// SessionFlags describe the simulated charging session run by the demo command.

func SessionFlags() []cli.Flag {
	return []cli.Flag{
		cli.Uint64Flag{
			Name:  "session.rate",
			Usage: "Price per kWh in minor currency units",
			Value: 5,
		},
		cli.Float64Flag{
			Name:  "session.energy",
			Usage: "kWh delivered per metering tick",
			Value: 1.5,
		},
		cli.IntFlag{
			Name:  "session.ticks",
			Usage: "Number of metering ticks before the session ends",
			Value: 4,
		},
		cli.DurationFlag{
			Name:  "session.minduration",
			Usage: "Minimum session length in the contract terms",
			Value: 5 * time.Minute,
		},
		cli.DurationFlag{
			Name:  "session.maxduration",
			Usage: "Maximum session length in the contract terms",
			Value: time.Hour,
		},
		cli.Int64Flag{
			Name:  "session.balance",
			Usage: "Starting tracked balance of the demo user wallet",
			Value: 1000,
		},
	}
}
