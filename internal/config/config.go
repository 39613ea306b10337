// Package config resolves the measurement settings from built-in defaults,
// an ini defaults file, TRAFFIC_* environment variables and command-line
// flags, in increasing order of precedence.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ALEYI17/InfraSight_traffic/internal/extra"
	"github.com/ALEYI17/InfraSight_traffic/pkg/types"
	ini "github.com/lars-t-hansen/ini"
	"go.uber.org/zap/zapcore"
)

const (
	DefaultsFileName = ".infrasight-traffic"
	EnvPrefix        = "TRAFFIC_"
	iniSection       = "measurement"

	FormatAuto = "auto"
	FormatJSON = "json"
	FormatText = "text"
)

// keys lists every setting, in the spelling used by the ini file and the
// flags. The environment spelling is upper case with '-' turned into '_'.
var keys = []string{
	"execfile",
	"iterations",
	"interval",
	"results",
	"trim",
	"lenient",
	"output",
	"format",
	"log-level",
	"power",
	"extra",
	"name",
}

type Config struct {
	ExecFile   string
	Iterations int
	Interval   float64
	Results    string
	Trim       string
	Lenient    bool
	// Output is a file name, or "-" for stdout.
	Output   string
	Format   string
	LogLevel string
	// Power and Extra name files inside Results.
	Power string
	Extra []string
	// Protocol names the workload; it selects the parser for Extra.
	Protocol string
}

func defaults() *Config {
	return &Config{
		Iterations: 1,
		Interval:   types.DefaultResampleInterval,
		Results:    "results",
		Trim:       types.TrimTail,
		Output:     "-",
		Format:     FormatAuto,
		LogLevel:   "info",
		Power:      types.PowerFile,
	}
}

func (c *Config) TimingPath() string {
	return filepath.Join(c.Results, types.TimingFile)
}

// PowerPath is empty when power measurements are disabled.
func (c *Config) PowerPath() string {
	if c.Power == "" {
		return ""
	}
	return filepath.Join(c.Results, c.Power)
}

func (c *Config) ExtraPaths() []string {
	out := make([]string, 0, len(c.Extra))
	for _, name := range c.Extra {
		out = append(out, filepath.Join(c.Results, name))
	}
	return out
}

func (c *Config) set(key, value string) error {
	var err error
	switch key {
	case "execfile":
		c.ExecFile = value
	case "iterations":
		c.Iterations, err = strconv.Atoi(value)
	case "interval":
		c.Interval, err = strconv.ParseFloat(value, 64)
	case "results":
		c.Results = value
	case "trim":
		c.Trim = value
	case "lenient":
		c.Lenient, err = strconv.ParseBool(value)
	case "output":
		c.Output = value
	case "format":
		c.Format = value
	case "log-level":
		c.LogLevel = value
	case "power":
		c.Power = value
	case "extra":
		c.Extra = c.Extra[:0]
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				c.Extra = append(c.Extra, name)
			}
		}
	case "name":
		c.Protocol = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.ExecFile == "" {
		return errors.New("execfile is required")
	}
	if c.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", c.Iterations)
	}
	if !(c.Interval > 0) || math.IsInf(c.Interval, 0) {
		return fmt.Errorf("interval must be positive, got %g", c.Interval)
	}
	switch c.Trim {
	case types.TrimTail, types.TrimEdges:
	default:
		return fmt.Errorf("unsupported trim policy %q", c.Trim)
	}
	switch c.Format {
	case FormatAuto, FormatJSON, FormatText:
	default:
		return fmt.Errorf("unsupported output format %q", c.Format)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log-level: %w", err)
	}
	if len(c.Extra) > 0 {
		if _, err := extra.NewParser(c.Protocol); err != nil {
			return fmt.Errorf("extra files: %w", err)
		}
	}
	return nil
}

// LoadConfig resolves the configuration of the running process.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

func newFlagSet(cfg *Config) (fs *flag.FlagSet, defaultsFile, protocol *string) {
	fs = flag.NewFlagSet("infrasight-traffic", flag.ContinueOnError)
	defaultsFile = fs.String("defaults", "", "ini defaults `file` (default $HOME/"+DefaultsFileName+")")
	protocol = fs.String("protocol", "", "read execfile and iterations from a protocol config.json `file`")
	fs.String("execfile", "", "executable name the workload runs under")
	fs.Int("iterations", cfg.Iterations, "number of measured iterations")
	fs.Float64("interval", cfg.Interval, "resample interval in seconds")
	fs.String("results", cfg.Results, "results `directory`")
	fs.String("trim", cfg.Trim, "edge trimming policy: tail or edges")
	fs.Bool("lenient", false, "skip iterations whose capture file is missing")
	fs.String("output", cfg.Output, "output `file`, - for stdout")
	fs.String("format", cfg.Format, "output format: auto, json or text")
	fs.String("log-level", cfg.LogLevel, "log level")
	fs.String("power", cfg.Power, "power measurement file inside the results directory, empty to disable")
	fs.String("extra", "", "comma separated protocol summary files inside the results directory")
	fs.String("name", "", "protocol name selecting the extra summary parser (meteor, crypten)")
	return fs, defaultsFile, protocol
}

func Load(args []string) (*Config, error) {
	cfg := defaults()

	fs, defaultsFile, protocol := newFlagSet(cfg)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	if err := cfg.applyDefaultsFile(*defaultsFile); err != nil {
		return nil, err
	}
	if *protocol != "" {
		if err := cfg.applyProtocol(*protocol); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil || f.Name == "defaults" || f.Name == "protocol" {
			return
		}
		err = cfg.set(f.Name, f.Value.String())
	})
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaultsFile reads the [measurement] section of the ini file at path.
// With an empty path the file in $HOME is used if it exists.
func (c *Config) applyDefaultsFile(path string) error {
	explicit := path != ""
	if !explicit {
		home := os.Getenv("HOME")
		if home == "" {
			return nil
		}
		path = filepath.Join(filepath.Clean(home), DefaultsFileName)
	}

	input, err := os.Open(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("defaults file: %w", err)
	}
	defer input.Close()

	p := ini.NewParser()
	section := p.AddSection(iniSection)
	fields := make(map[string]*ini.Field, len(keys))
	for _, k := range keys {
		fields[k] = section.AddString(k)
	}

	store, err := p.Parse(input)
	if err != nil {
		return fmt.Errorf("defaults file %s: %w", path, err)
	}
	for _, k := range keys {
		if !fields[k].Present(store) {
			continue
		}
		if err := c.set(k, os.ExpandEnv(fields[k].StringVal(store))); err != nil {
			return fmt.Errorf("defaults file %s: %w", path, err)
		}
	}
	return nil
}

type protocolConfig struct {
	Name       string   `json:"name"`
	ExecFile   string   `json:"execfile"`
	Iterations *int     `json:"iterations"`
	Extra      bool     `json:"extra"`
	ExtraFiles []string `json:"extra_files"`
}

// applyProtocol picks the settings shared with the protocol's config.json;
// its other keys describe how to launch the workload and are ignored. The
// protocol is named after the directory holding the file unless the file
// names it.
func (c *Config) applyProtocol(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("protocol config: %w", err)
	}
	var pc protocolConfig
	if err := json.Unmarshal(data, &pc); err != nil {
		return fmt.Errorf("protocol config %s: %w", path, err)
	}
	if pc.ExecFile != "" {
		c.ExecFile = pc.ExecFile
	}
	if pc.Iterations != nil {
		c.Iterations = *pc.Iterations
	}
	c.Protocol = pc.Name
	if c.Protocol == "" {
		c.Protocol = filepath.Base(filepath.Dir(path))
	}
	if pc.Extra {
		c.Extra = append([]string(nil), pc.ExtraFiles...)
	}
	return nil
}

func envName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

func (c *Config) applyEnv() error {
	for _, k := range keys {
		v, ok := os.LookupEnv(envName(k))
		if !ok {
			continue
		}
		if err := c.set(k, v); err != nil {
			return fmt.Errorf("%s: %w", envName(k), err)
		}
	}
	return nil
}

// Usage prints the flag summary to w.
func Usage(w io.Writer) {
	fs, _, _ := newFlagSet(defaults())
	fs.SetOutput(w)
	fmt.Fprintln(w, "usage: infrasight-traffic -execfile NAME [flags]")
	fs.PrintDefaults()
}
