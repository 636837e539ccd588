package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mamkit/mamkit/pkg/config"
	"github.com/mamkit/mamkit/pkg/keyring"
	"github.com/phuslu/log"
)

// ReadConfig returns config.Default() if dirPath is empty.
func ReadConfig(w io.Writer, dirPath string) *config.Config {
	if dirPath == "" {
		return config.Default()
	}
	conf, err := config.ReadConfig(os.DirFS(dirPath), ".")
	if err != nil {
		fmt.Fprintf(w, "reading config: %s\n", err)
		return nil
	}
	if conf.KeyringPath != "" {
		conf.KeyringPath = filepath.Join(dirPath, conf.KeyringPath)
	}
	return conf
}

func newLogger(lw io.Writer, conf *config.Config) log.Logger {
	return log.Logger{
		Level:      conf.LogLevel,
		TimeField:  "time",
		TimeFormat: "15:04:05",
		Writer:     &log.IOWriter{Writer: lw},
	}
}

// LoadKeyring creates a keyring and imports the JSON file at path
// unless path is empty.
func LoadKeyring(
	w io.Writer,
	l log.Logger,
	conf *config.Config,
	path string,
) *keyring.Keyring {
	k := keyring.New(conf.ContainerOptions(), l)
	if path == "" {
		return k
	}
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(w, "reading keyring: %s\n", err)
		return nil
	}
	if err := k.ImportJSON(b); err != nil {
		fmt.Fprintf(w, "importing keyring %s: %s\n", path, err)
		return nil
	}
	return k
}
