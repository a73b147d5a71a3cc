package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
	dir string
}

func (s *ConfigTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *ConfigTestSuite) writeConfig(content string) string {
	path := filepath.Join(s.dir, "jsongo.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *ConfigTestSuite) TestDefaults() {
	cfg, err := LoadConfig("")
	s.NoError(err)
	s.Equal(DefaultConfig(), cfg)
	s.Equal(".", cfg.Directory)
	s.Equal(Mode(0o644), cfg.FileMode)
	s.Equal(Mode(0o755), cfg.DirMode)
}

func (s *ConfigTestSuite) TestLoad() {
	path := s.writeConfig(`
directory: data
verbose: true
fileMode: 0600
dirMode: "700"
`)
	cfg, err := LoadConfig(path)
	s.NoError(err)
	s.Equal(Config{
		Directory: "data",
		Verbose:   true,
		FileMode:  0o600,
		DirMode:   0o700,
	}, cfg)
}

func (s *ConfigTestSuite) TestPartialFileKeepsDefaults() {
	path := s.writeConfig("sqlite: db/jsongo.db\n")
	cfg, err := LoadConfig(path)
	s.NoError(err)
	s.Equal("db/jsongo.db", cfg.SQLite)
	s.Equal(".", cfg.Directory)
	s.Equal(Mode(0o644), cfg.FileMode)
}

func (s *ConfigTestSuite) TestInvalidMode() {
	path := s.writeConfig("fileMode: rw\n")
	_, err := LoadConfig(path)
	s.ErrorContains(err, `invalid permission "rw"`)

	path = s.writeConfig("dirMode: 0999\n")
	_, err = LoadConfig(path)
	s.Error(err)

	path = s.writeConfig("dirMode: 17777\n")
	_, err = LoadConfig(path)
	s.Error(err)
}

func (s *ConfigTestSuite) TestMissingFile() {
	_, err := LoadConfig(filepath.Join(s.dir, "missing.yaml"))
	s.ErrorIs(err, os.ErrNotExist)
}

func (s *ConfigTestSuite) TestInvalidYAML() {
	path := s.writeConfig("directory: [\n")
	_, err := LoadConfig(path)
	s.Error(err)
}

func (s *ConfigTestSuite) parse(args ...string) (Config, error) {
	cmd := &cobra.Command{Use: "test"}
	registerFlags(cmd)
	s.Require().NoError(cmd.ParseFlags(args))
	return configFromFlags(cmd)
}

func (s *ConfigTestSuite) TestFlagsOverrideFile() {
	path := s.writeConfig(`
directory: data
fileMode: 0600
verbose: true
`)
	cfg, err := s.parse("--config", path, "-d", "other", "--file-mode", "640", "--verbose=false")
	s.NoError(err)
	s.Equal(Config{
		Directory: "other",
		FileMode:  0o640,
		DirMode:   0o755,
	}, cfg)
}

func (s *ConfigTestSuite) TestFlagsWithoutFile() {
	cfg, err := s.parse("--sqlite", "x.db", "--dir-mode", "0700")
	s.NoError(err)
	s.Equal("x.db", cfg.SQLite)
	s.Equal(Mode(0o700), cfg.DirMode)
	s.Equal(Mode(0o644), cfg.FileMode)
}

func (s *ConfigTestSuite) TestInvalidFlagMode() {
	_, err := s.parse("--file-mode", "abc")
	s.ErrorContains(err, "--file-mode")
}

func (s *ConfigTestSuite) TestModeString() {
	s.Equal("0644", Mode(0o644).String())
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
