// Copyright 2020 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package flags

import (
	"os"

	cli "gopkg.in/urfave/cli.v1"
)

// NewApp creates the evledger application shell. Commands and their flags are
// attached by the launcher.
func NewApp() *cli.App {

	app := cli.NewApp()
	app.Name = "evledger"
	app.Usage = "EV charging payment ledger"
	app.Version = "0.1.0"
	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr
	return app

}

// Merge concatenates flag groups, dropping later duplicates by name.
func Merge(groups ...[]cli.Flag) []cli.Flag {
	seen := make(map[string]bool)
	var out []cli.Flag
	for _, group := range groups {
		for _, f := range group {
			if seen[f.GetName()] {
				continue
			}
			seen[f.GetName()] = true
			out = append(out, f)
		}
	}
	return out
}
