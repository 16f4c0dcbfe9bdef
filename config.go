package echogrid

import (
	"errors"
	"fmt"
	"os"
	"strings"

	yaml "gopkg.in/yaml.v2"
)

// Configuration validation errors.
var (
	// ErrInvalidThreshold indicates a percent threshold outside 0-100.
	ErrInvalidThreshold = errors.New("echogrid: threshold out of range")

	// ErrInvalidTemplate indicates a naming template without the
	// {worksheet} placeholder.
	ErrInvalidTemplate = errors.New("echogrid: invalid naming template")
)

// ChannelConfig describes one acoustic frequency channel.
type ChannelConfig struct {
	// Name identifies the channel in export file names, e.g. "38kHz".
	Name string `yaml:"name"`
	// Frequency is the transducer frequency in kHz.
	Frequency float64 `yaml:"frequency"`
	// MaxDepth is the deepest layer midpoint (metres) accepted for this
	// channel. Cells resolved deeper than this are dropped.
	MaxDepth float64 `yaml:"max_depth"`
}

// Config holds the merge-engine settings normally supplied by the
// surrounding settings collaborator.
type Config struct {
	// Channels lists the frequency channels to merge, fixed for the run.
	Channels []ChannelConfig `yaml:"channels"`
	// Extended requires and carries the higher-moment statistics
	// (standard deviation, skewness, kurtosis) of both Sv exports.
	Extended bool `yaml:"extended"`
	// MinGood is the percent-good threshold below which a cell is
	// dropped during the join.
	MinGood int `yaml:"min_good"`
	// AcceptGood is the percent-good threshold above which a cell is
	// flagged good during finalization.
	AcceptGood int `yaml:"accept_good"`
	// SingleChannelOutput demotes the CHANNEL dimension to scalar
	// attributes when exactly one channel is configured.
	SingleChannelOutput bool `yaml:"single_channel_output"`
	// Templates maps a source kind (see SourceKind.String) to the export
	// file naming template. Templates may use the {worksheet} and
	// {channel} placeholders. Missing entries fall back to
	// DefaultTemplates.
	Templates map[string]string `yaml:"templates"`
}

// DefaultTemplates returns the naming convention the analysis application
// uses when exporting one CSV per (worksheet, channel, variable).
func DefaultTemplates() map[string]string {
	return map[string]string{
		SourceClean.String():            "{worksheet}_{channel}_Sv.csv",
		SourceRaw.String():              "{worksheet}_{channel}_Sv_raw.csv",
		SourceRejectCount.String():      "{worksheet}_{channel}_rejections.csv",
		SourceSignalNoise.String():      "{worksheet}_{channel}_SNR.csv",
		SourceBackground.String():       "{worksheet}_{channel}_background.csv",
		SourceMotionCorrection.String(): "{worksheet}_{channel}_motion.csv",
	}
}

// LoadConfig reads a YAML configuration file and validates it.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("echogrid: failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("echogrid: failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration and fills missing naming templates
// with the defaults.
func (c *Config) Validate() error {
	if len(c.Channels) == 0 {
		return ErrNoChannels
	}
	for i, ch := range c.Channels {
		if ch.Name == "" {
			return fmt.Errorf("echogrid: channel %d has no name", i)
		}
		if ch.MaxDepth <= 0 {
			return fmt.Errorf("echogrid: channel %s: max_depth must be positive", ch.Name)
		}
	}
	if c.MinGood < 0 || c.MinGood > 100 {
		return fmt.Errorf("%w: min_good %d", ErrInvalidThreshold, c.MinGood)
	}
	if c.AcceptGood < 0 || c.AcceptGood > 100 {
		return fmt.Errorf("%w: accept_good %d", ErrInvalidThreshold, c.AcceptGood)
	}

	if c.Templates == nil {
		c.Templates = DefaultTemplates()
		return nil
	}
	for kind, tmpl := range c.Templates {
		if !strings.Contains(tmpl, "{worksheet}") {
			return fmt.Errorf("%w: %s template %q lacks {worksheet}", ErrInvalidTemplate, kind, tmpl)
		}
	}
	for kind, tmpl := range DefaultTemplates() {
		if _, ok := c.Templates[kind]; !ok {
			c.Templates[kind] = tmpl
		}
	}
	return nil
}

// exportName expands the naming template for one (worksheet, channel,
// kind) combination.
func (c *Config) exportName(worksheet string, channel ChannelConfig, kind SourceKind) string {
	tmpl := c.Templates[kind.String()]
	name := strings.ReplaceAll(tmpl, "{worksheet}", worksheet)
	return strings.ReplaceAll(name, "{channel}", channel.Name)
}
