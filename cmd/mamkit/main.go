package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mamkit/mamkit/pkg/cli"
)

func main() {
	os.Exit(run(os.Stdout, os.Stderr, os.Args))
}

// run executes the command and returns the exit code.
// Results are written to w, logs to lw.
func run(w, lw io.Writer, args []string) int {
	switch c := cli.Parse(w, args).(type) {
	case cli.CommandInspect:
		return inspect(w, lw, c)
	case cli.CommandDiff:
		return diff(w, lw, c)
	case cli.CommandHelp:
		return 0
	default:
		if c != nil {
			panic(fmt.Errorf("unexpected command: %#v", c))
		}
	}
	return 2
}
