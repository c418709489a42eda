package flags

import (
	"gopkg.in/urfave/cli.v1"
)

// KeyFlags locate and unlock an encrypted keyfile.

func KeyFlags() []cli.Flag {
	return []cli.Flag{
		cli.StringFlag{
			Name:  "keyfile",
			Usage: "Path of the encrypted keyfile",
			Value: "evledger.key",
		},
		cli.StringFlag{
			Name:  "password",
			Usage: "File holding the keyfile password (prompted when empty)",
		},
		cli.BoolFlag{
			Name:  "lightkdf",
			Usage: "Reduce key-derivation hardness (fast, insecure for real funds)",
		},
	}
}
