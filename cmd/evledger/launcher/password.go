package launcher

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// readPassword returns the keyfile password from file, or prompts for it on
// the terminal. With confirm set, a prompted password is asked twice.
func readPassword(file string, w io.Writer, confirm bool) ([]byte, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read password file: %w", err)
		}
		return bytes.TrimRight(data, "\r\n"), nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, errors.New("no password file given and stdin is not a terminal")
	}
	fmt.Fprint(w, "Password: ")
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	if !confirm {
		return password, nil
	}

	fmt.Fprint(w, "Repeat password: ")
	again, err := term.ReadPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	defer clear(again)
	if !bytes.Equal(password, again) {
		clear(password)
		return nil, errors.New("passwords do not match")
	}
	return password, nil
}
