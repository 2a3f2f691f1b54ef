// Package config holds the harness settings. Values come from built-in defaults, then an
// optional YAML file, then command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lxsc/irp-harness/report"
	"github.com/lxsc/irp-harness/resource"
)

// DefaultFileName is read from the working directory when no file is named explicitly.
const DefaultFileName = "irp-harness.yaml"

type Config struct {
	BaseURL     string            `yaml:"baseURL"`
	Manifest    string            `yaml:"manifest"`
	Overrides   string            `yaml:"overrides"`
	Report      string            `yaml:"report"`
	ReportRoot  string            `yaml:"reportRoot"`
	CacheDir    string            `yaml:"cacheDir"`
	WorkDir     string            `yaml:"workDir"`
	Interpreter InterpreterConfig `yaml:"interpreter"`
	Editor      []string          `yaml:"editor"`
	Cleanup     []string          `yaml:"cleanup"`
}

type InterpreterConfig struct {
	// Command is the interpreter argv; the document path is appended to it.
	Command []string `yaml:"command"`
	// TraceFlag is appended after the document path for manual tests.
	TraceFlag string `yaml:"traceFlag"`
	// Timeout bounds a single interpreter run. Zero means no limit.
	Timeout time.Duration `yaml:"timeout"`
	// Quiet holds regular expressions for output lines that are not worth capturing.
	Quiet []string `yaml:"quiet"`
}

// Default returns the settings used for the lxsc interpreter.
func Default() Config {
	return Config{
		BaseURL:    resource.DefaultBaseURL,
		Manifest:   "manifest.xml",
		Overrides:  "manifest-mod.xml",
		Report:     "scxml10-ir-results-lxsc.xml",
		ReportRoot: report.DefaultRootTag,
		CacheDir:   resource.DefaultCacheDir,
		WorkDir:    ".",
		Interpreter: InterpreterConfig{
			Command:   []string{"lua", "autotest.lua"},
			TraceFlag: "--trace",
		},
		Editor:  []string{"subl"},
		Cleanup: []string{"*.scxml", "*.txml"},
	}
}

// Load returns the defaults overlaid with the YAML file at path. With an empty path,
// DefaultFileName is used if it exists.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("cannot read config file: %w", err)
	}
	if err := overlay(&cfg, data); err != nil {
		return Config{}, fmt.Errorf("error in config file %s: %w", path, err)
	}
	return cfg, nil
}

// overlay decodes data over cfg. Keys absent from data keep their current values;
// unknown keys are errors.
func overlay(cfg *Config, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate reports settings the harness cannot run with.
func (c Config) Validate() error {
	if len(c.Interpreter.Command) == 0 || c.Interpreter.Command[0] == "" {
		return errors.New("interpreter command must not be empty")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("base URL %q is not absolute", c.BaseURL)
	}
	if c.Manifest == "" || c.Report == "" {
		return errors.New("manifest and report paths must be set")
	}
	if c.Interpreter.Timeout < 0 {
		return errors.New("interpreter timeout must not be negative")
	}
	if _, err := c.QuietPatterns(); err != nil {
		return err
	}
	return nil
}

// QuietPatterns compiles Interpreter.Quiet.
func (c Config) QuietPatterns() ([]*regexp.Regexp, error) {
	ret := make([]*regexp.Regexp, 0, len(c.Interpreter.Quiet))
	for _, q := range c.Interpreter.Quiet {
		rx, err := regexp.Compile(q)
		if err != nil {
			return nil, fmt.Errorf("invalid quiet pattern %q: %w", q, err)
		}
		ret = append(ret, rx)
	}
	return ret, nil
}
