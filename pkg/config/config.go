// Package config loads the optional .fastbuild.yaml project file
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	"fastbuild/pkg/formatter"
	"fastbuild/pkg/utils"
)

// FileName is the project configuration file looked up in the project root
const FileName = ".fastbuild.yaml"

// Strip lists the in-class-only words dropped from definitions
type Strip struct {
	Qualifiers []string `yaml:"qualifiers,omitempty"`
	Specifiers []string `yaml:"specifiers,omitempty"`
}

// Config represents the structure of a .fastbuild.yaml file
type Config struct {
	Dest         string   `yaml:"dest,omitempty"`
	SourceSuffix string   `yaml:"sourceSuffix,omitempty"`
	Include      []string `yaml:"include,omitempty"`
	Exclude      []string `yaml:"exclude,omitempty"`
	Jobs         int      `yaml:"jobs,omitempty"`
	ClangFormat  bool     `yaml:"clangFormat,omitempty"`
	Strip        Strip    `yaml:"strip,omitempty"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	return &Config{
		Dest:         "build/fastbuild",
		SourceSuffix: "cpp",
		Jobs:         4,
		Strip: Strip{
			Qualifiers: append([]string(nil), formatter.DefaultStripQualifiers...),
			Specifiers: append([]string(nil), formatter.DefaultStripSpecifiers...),
		},
	}
}

// Load reads root/.fastbuild.yaml. A missing file yields the defaults;
// keys absent from the file keep their default values.
func Load(root string) (*Config, error) {
	path := filepath.Join(root, FileName)
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration document on top of the defaults
func Parse(content []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.UnmarshalStrict(content, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges
func (c *Config) Validate() error {
	if c.Dest == "" {
		return errors.New("dest must not be empty")
	}
	if filepath.IsAbs(c.Dest) {
		return fmt.Errorf("dest must be relative to the project root, got %s", c.Dest)
	}
	if c.SourceSuffix == "" {
		return errors.New("sourceSuffix must not be empty")
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	for _, word := range append(append([]string(nil), c.Strip.Qualifiers...), c.Strip.Specifiers...) {
		if !utils.IsValidCppIdentifier(word) {
			return fmt.Errorf("strip word %q is not an identifier", word)
		}
	}
	return nil
}

// FormatterOptions returns the strip lists for the renderer
func (c *Config) FormatterOptions() formatter.Options {
	return formatter.Options{
		StripQualifiers: c.Strip.Qualifiers,
		StripSpecifiers: c.Strip.Specifiers,
	}
}

// DestDir returns the output root below a project root
func (c *Config) DestDir(root string) string {
	return filepath.Join(root, c.Dest)
}
