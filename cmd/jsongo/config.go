package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/vinicius-lino-figueiredo/jsongo/adapter/persistence"
	"gopkg.in/yaml.v3"
)

// Config holds the settings of the command line tool. Values come from an
// optional YAML file and are overridden by flags.
type Config struct {
	Directory string `yaml:"directory"`
	SQLite    string `yaml:"sqlite"`
	Verbose   bool   `yaml:"verbose"`
	FileMode  Mode   `yaml:"fileMode"`
	DirMode   Mode   `yaml:"dirMode"`
}

// Mode is a file permission written in octal, like 0644 or "755".
type Mode os.FileMode

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *Mode) UnmarshalYAML(n *yaml.Node) error {
	mode, err := parseMode(n.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", n.Line, err)
	}
	*m = mode
	return nil
}

func (m Mode) String() string {
	return fmt.Sprintf("%#o", uint32(m))
}

func parseMode(s string) (Mode, error) {
	u, err := strconv.ParseUint(s, 8, 32)
	if err != nil || u > 0o7777 {
		return 0, fmt.Errorf("invalid permission %q", s)
	}
	return Mode(u), nil
}

// DefaultConfig returns the settings used when nothing else is given.
func DefaultConfig() Config {
	return Config{
		Directory: ".",
		FileMode:  Mode(persistence.DefaultFileMode),
		DirMode:   Mode(persistence.DefaultDirMode),
	}
}

// LoadConfig reads the YAML file at path on top of [DefaultConfig]. An empty
// path returns the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %q: %w", path, err)
	}
	return cfg, nil
}

// registerFlags adds the flags that can override the config file.
func registerFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringP("config", "c", "", "path to a YAML config file")
	f.StringP("dir", "d", "", "directory holding one JSON file per collection")
	f.String("sqlite", "", "SQLite database file holding every collection")
	f.BoolP("verbose", "v", false, "log debug messages")
	f.String("file-mode", "", "permission of data files, in octal")
	f.String("dir-mode", "", "permission of created directories, in octal")
}

// configFromFlags loads the config file named by the flags and applies every
// flag that was set.
func configFromFlags(cmd *cobra.Command) (Config, error) {
	f := cmd.Flags()

	path, _ := f.GetString("config")
	cfg, err := LoadConfig(path)
	if err != nil {
		return Config{}, err
	}

	if f.Changed("dir") {
		cfg.Directory, _ = f.GetString("dir")
	}
	if f.Changed("sqlite") {
		cfg.SQLite, _ = f.GetString("sqlite")
	}
	if f.Changed("verbose") {
		cfg.Verbose, _ = f.GetBool("verbose")
	}
	for flag, mode := range map[string]*Mode{"file-mode": &cfg.FileMode, "dir-mode": &cfg.DirMode} {
		if !f.Changed(flag) {
			continue
		}
		s, _ := f.GetString(flag)
		if *mode, err = parseMode(s); err != nil {
			return Config{}, fmt.Errorf("--%s: %w", flag, err)
		}
	}
	return cfg, nil
}
