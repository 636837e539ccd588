package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/mamkit/mamkit/pkg/cli"
	"github.com/mamkit/mamkit/pkg/container/byteset"
	"github.com/mamkit/mamkit/pkg/keyring"
	"github.com/mamkit/mamkit/pkg/tritbytes"
)

func inspect(w, lw io.Writer, c cli.CommandInspect) int {
	conf := ReadConfig(w, c.ConfigDirPath)
	if conf == nil {
		return 1
	}
	l := newLogger(lw, conf)
	k := LoadKeyring(w, l, conf, conf.KeyringPath)
	if k == nil {
		return 1
	}
	defer k.Free()

	fmt.Fprintf(w, "keyring %s\n", k.ID)
	fmt.Fprintf(w, "table: %s, hasher: %s\n", conf.Table, conf.HasherName)
	for _, r := range k.Registries() {
		fmt.Fprintf(w, "  %-18s %s\n", r.Name, humanize.Comma(int64(r.Len)))
	}
	fmt.Fprintf(w, "records: %s\n", humanize.Comma(int64(k.Len())))
	for _, r := range []struct {
		name string
		set  *byteset.Set[keyring.PublicKey]
	}{
		{keyring.RegTrustedChannels, k.TrustedChannels},
		{keyring.RegTrustedEndpoints, k.TrustedEndpoints},
	} {
		if err := printTrytes(w, r.name, r.set); err != nil {
			fmt.Fprintf(w, "printing %s: %s\n", r.name, err)
			return 1
		}
	}
	if conf.Budget != nil {
		fmt.Fprintf(w, "memory: %s\n", conf.Budget.Stats())
	} else {
		fmt.Fprintln(w, "memory: unlimited")
	}
	return 0
}

// printTrytes prints the records of s as trytes in a stable order.
func printTrytes(
	w io.Writer,
	name string,
	s *byteset.Set[keyring.PublicKey],
) error {
	t := make([]string, 0, s.Len())
	if err := s.ForEach(func(pk keyring.PublicKey) error {
		v, err := tritbytes.Trytes(pk)
		t = append(t, string(v))
		return err
	}); err != nil {
		return err
	}
	sort.Strings(t)
	for _, v := range t {
		fmt.Fprintf(w, "%s: %s\n", name, v)
	}
	return nil
}
