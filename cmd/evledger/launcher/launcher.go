package launcher

import (
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-evcharge-ledger/flags"
)

var app = newApp()

func newApp() *cli.App {
	app := flags.NewApp()
	app.Commands = []cli.Command{
		{
			Name:   "demo",
			Usage:  "Run a simulated charging session settled through an in-memory ledger",
			Flags:  flags.Merge(flags.CommonFlags(), flags.LedgerFlags(), flags.SessionFlags()),
			Action: withConfig(demoCommand),
		},
		{
			Name:   "keygen",
			Usage:  "Generate a key pair and store it in an encrypted keyfile",
			Flags:  flags.Merge(flags.CommonFlags(), flags.KeyFlags()),
			Action: withConfig(keygenCommand),
		},
		{
			Name:   "inspect-key",
			Usage:  "Print the address of a keyfile, unlocking it when a password is given",
			Flags:  flags.Merge(flags.CommonFlags(), flags.KeyFlags()),
			Action: withConfig(inspectKeyCommand),
		},
		{
			Name:   "presets",
			Usage:  "List the named ledger presets",
			Action: presetsCommand,
		},
	}
	return app
}

// Launch parses args and runs the selected command.
func Launch(args []string) error {
	return app.Run(args)
}
