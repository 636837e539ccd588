// Package config reads the mamkit YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/mamkit/mamkit/pkg/alloc"
	"github.com/mamkit/mamkit/pkg/container"
	"github.com/mamkit/mamkit/pkg/container/hamap"
	"github.com/phuslu/log"
	yaml "gopkg.in/yaml.v3"
)

const FileName1 = "config.yaml"
const FileName2 = "config.yml"

type Config struct {
	FilePath string

	Table  container.Kind
	Hasher hamap.Hasher[[]byte]
	// HasherName is either hamap.HasherNameXXH3 or hamap.HasherNameXXH64.
	HasherName string
	Seed       uint64

	// Budget is nil when no memory limit is configured.
	Budget *alloc.Budget

	// KeyringPath is relative to the config directory.
	KeyringPath string
	LogLevel    log.Level
}

type config struct {
	Table       string `yaml:"table"`
	Hasher      string `yaml:"hasher"`
	Seed        uint64 `yaml:"seed"`
	MemoryLimit string `yaml:"memory-limit"`
	Keyring     string `yaml:"keyring"`
	LogLevel    string `yaml:"log-level"`
}

// Default is used when the config directory contains no config file.
func Default() *Config {
	h, _ := hamap.NewHasher(hamap.HasherNameXXH3, 0)
	return &Config{
		Table:      container.KindHamap,
		Hasher:     h,
		HasherName: hamap.HasherNameXXH3,
		LogLevel:   log.InfoLevel,
	}
}

// ReadConfig reads the config file from dirPath in filesystem.
// Returns Default() if there's neither FileName1 nor FileName2.
// The keyring file, if configured, must exist.
func ReadConfig(filesystem fs.FS, dirPath string) (*Config, error) {
	d, err := fs.ReadDir(filesystem, dirPath)
	if err != nil {
		return nil, fmt.Errorf("reading config directory: %w", err)
	}

	var p string
	for _, o := range d {
		n := o.Name()
		if o.IsDir() || (n != FileName1 && n != FileName2) {
			continue
		}
		if p != "" {
			return nil, &ErrorConflict{Items: []string{FileName1, FileName2}}
		}
		p = join(dirPath, n)
	}
	if p == "" {
		return Default(), nil
	}

	f, err := filesystem.Open(p)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	var c config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, &ErrorIllegal{
			FilePath: p,
			Feature:  "config",
			Message:  err.Error(),
		}
	}
	conf, err := c.resolve(p, dirPath)
	if err != nil {
		return nil, err
	}
	if conf.KeyringPath != "" {
		if _, err := fs.Stat(filesystem, conf.KeyringPath); err != nil {
			return nil, &ErrorMissing{FilePath: conf.KeyringPath}
		}
	}
	return conf, nil
}

func (c config) resolve(filePath, dirPath string) (*Config, error) {
	conf := Default()
	conf.FilePath = filePath
	conf.Seed = c.Seed

	var err error
	if conf.Table, err = container.ParseKind(c.Table); err != nil {
		return nil, &ErrorIllegal{
			FilePath: filePath,
			Feature:  "table",
			Message:  err.Error(),
		}
	}

	if conf.Hasher, err = hamap.NewHasher(c.Hasher, c.Seed); err != nil {
		return nil, &ErrorIllegal{
			FilePath: filePath,
			Feature:  "hasher",
			Message:  err.Error(),
		}
	}
	if c.Hasher != "" {
		conf.HasherName = c.Hasher
	}

	if c.MemoryLimit != "" {
		if conf.Budget, err = alloc.ParseBudget(c.MemoryLimit); err != nil {
			return nil, &ErrorIllegal{
				FilePath: filePath,
				Feature:  "memory-limit",
				Message:  err.Error(),
			}
		}
	}

	if c.Keyring != "" {
		if !fs.ValidPath(c.Keyring) {
			return nil, &ErrorIllegal{
				FilePath: filePath,
				Feature:  "keyring",
				Message:  fmt.Sprintf("invalid path %q", c.Keyring),
			}
		}
		conf.KeyringPath = join(dirPath, c.Keyring)
	}

	switch strings.ToLower(c.LogLevel) {
	case "":
	case "debug":
		conf.LogLevel = log.DebugLevel
	case "info":
		conf.LogLevel = log.InfoLevel
	case "warn":
		conf.LogLevel = log.WarnLevel
	case "error":
		conf.LogLevel = log.ErrorLevel
	default:
		return nil, &ErrorIllegal{
			FilePath: filePath,
			Feature:  "log-level",
			Message:  fmt.Sprintf("unknown level %q", c.LogLevel),
		}
	}

	return conf, nil
}

// ContainerOptions returns the options for the keyring containers.
func (c *Config) ContainerOptions() container.Options {
	o := container.Options{
		Table:  c.Table,
		Hasher: c.Hasher,
	}
	if c.Budget != nil {
		o.Allocator = c.Budget
	}
	return o
}

// join joins fs.FS paths, which are always slash separated.
func join(dir, name string) string {
	if dir == "" || dir == "." {
		return name
	}
	return strings.TrimSuffix(dir, "/") + "/" + name
}

type ErrorConflict struct {
	Items []string
}

func (e ErrorConflict) Error() string {
	var b strings.Builder
	b.WriteString("conflict between: ")
	for i := range e.Items {
		b.WriteString(e.Items[i])
		if i+1 < len(e.Items) {
			b.WriteString(", ")
		}
	}
	return b.String()
}

type ErrorMissing struct {
	FilePath string
	Feature  string
}

func (e ErrorMissing) Error() string {
	if e.Feature == "" {
		return "missing " + e.FilePath
	}
	return "missing " + e.Feature + " in " + e.FilePath
}

type ErrorIllegal struct {
	FilePath string
	Feature  string
	Message  string
}

func (e ErrorIllegal) Error() string {
	var b strings.Builder
	b.Grow(len("illegal ") +
		len(e.Feature) +
		len(" in ") +
		len(e.FilePath) +
		len(": ") +
		len(e.Message))
	b.WriteString("illegal ")
	b.WriteString(e.Feature)
	b.WriteString(" in ")
	b.WriteString(e.FilePath)
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}
