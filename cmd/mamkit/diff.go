package main

import (
	"fmt"
	"io"

	"github.com/mamkit/mamkit/pkg/cli"
	"github.com/mamkit/mamkit/pkg/keyring"
)

// diff exits with 1 if the keyrings differ and 2 if either can't be loaded.
func diff(w, lw io.Writer, c cli.CommandDiff) int {
	conf := ReadConfig(w, c.ConfigDirPath)
	if conf == nil {
		return 2
	}
	l := newLogger(lw, conf)

	a := LoadKeyring(w, l, conf, c.PathA)
	if a == nil {
		return 2
	}
	defer a.Free()
	b := LoadKeyring(w, l, conf, c.PathB)
	if b == nil {
		return 2
	}
	defer b.Free()

	d := keyring.Diff(a, b)
	if len(d) < 1 {
		fmt.Fprintln(w, "equal")
		return 0
	}
	for _, r := range d {
		fmt.Fprintf(w, "differ: %s\n", r)
	}
	return 1
}
