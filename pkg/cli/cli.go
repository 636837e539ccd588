package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// EnvConfig overrides the default config directory path of inspect.
const EnvConfig = "MAMKIT_CONFIG"

const DefaultConfigDirPath = "./config"

// Command can be any of:
//
//	CommandInspect
//	CommandDiff
//	CommandHelp
type Command any

type CommandInspect struct {
	ConfigDirPath string
}

// CommandDiff compares the keyrings of two JSON files.
type CommandDiff struct {
	PathA string
	PathB string
	// ConfigDirPath is empty unless -config is given.
	ConfigDirPath string
}

type CommandHelp struct{}

func Parse(w io.Writer, args []string) (cmd Command) {
	fm := fmt.Sprintf

	executableName := "mamkit"
	if len(args) > 0 {
		executableName = filepath.Base(args[0])
	}

	flags := flag.NewFlagSet("mamkit", flag.ContinueOnError)
	flags.SetOutput(w)
	flags.Usage = func() {
		writeLines(w,
			fm("usage: %s <command> [flags]", executableName),
			"",
			"commands available:",
			" inspect - loads the configured keyring and prints its registries",
			" diff - compares two JSON keyrings registry by registry",
			" help - prints help",
		)
	}

	parseFlags := func() (ok bool) {
		err := flags.Parse(args[2:])
		// flags will automatically call .Usage()
		return err == nil
	}

	if len(args) < 2 {
		flags.Usage()
		return nil
	}

	switch args[1] {
	case "inspect":
		c := CommandInspect{ConfigDirPath: os.Getenv(EnvConfig)}
		if c.ConfigDirPath == "" {
			c.ConfigDirPath = DefaultConfigDirPath
		}

		flags.Usage = func() {
			writeLines(w,
				"",
				fm("usage: %s inspect [-config <path>]", executableName),
				"",
				"flags:",
				"-config <path>: defines the configuration directory path "+
					"(default: "+DefaultConfigDirPath+")",
				"",
				"environment variables:",
				fm("%s: default configuration directory path", EnvConfig),
			)
		}

		flags.StringVar(&c.ConfigDirPath, "config", c.ConfigDirPath, "")
		if !parseFlags() {
			return nil
		}
		cmd = c

	case "diff":
		c := CommandDiff{}

		flags.Usage = func() {
			writeLines(w,
				"",
				fm("usage: %s diff -a <path> -b <path> [-config <path>]",
					executableName),
				"",
				"flags:",
				"-a <path>: first JSON keyring",
				"-b <path>: second JSON keyring",
				"-config <path>: defines the configuration directory path "+
					"(default: none)",
			)
		}

		flags.StringVar(&c.PathA, "a", "", "")
		flags.StringVar(&c.PathB, "b", "", "")
		flags.StringVar(&c.ConfigDirPath, "config", "", "")
		if !parseFlags() {
			return nil
		}

		if c.PathA == "" || c.PathB == "" {
			writeLines(w, "both -a and -b are required.")
			flags.Usage()
			return nil
		}
		cmd = c

	case "help":
		PrintHelp(w)
		return CommandHelp{}

	default:
		flags.Usage()
		return nil
	}
	return cmd
}

func writeLines(w io.Writer, lines ...string) {
	for i := range lines {
		_, _ = w.Write([]byte(lines[i]))
		_, _ = w.Write([]byte("\n"))
	}
}

func PrintHelp(w io.Writer) {
	writeLines(w,
		"mamkit inspects and compares MAM keyrings.",
		"",
		"A keyring is a set of registries of fixed size trinary records:",
		" trusted channel and endpoint public keys, endpoints,",
		" pre-shared keys, NTRU keys and message read contexts.",
		"",
		"run \"mamkit <command> -h\" for the flags of a command.",
	)
}
