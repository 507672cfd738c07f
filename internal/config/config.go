// Package config loads the JSON file that names every input screenshot and
// output image of a wallpaper-align run.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ironsheep/wallpaper-align/internal/calibration"
	"github.com/ironsheep/wallpaper-align/internal/imaging"
)

// DefaultFilename is read when no --config flag is given.
const DefaultFilename = "config.json"

// DefaultResample is the filter used to resize the source wallpaper.
const DefaultResample = "linear"

// Stage names accepted by Validate.
const (
	StagePattern   = "pattern"
	StageCalibrate = "calibrate"
	StageProfile   = "profile"
	StageRun       = "run"
)

// Config holds all configuration for one run.
type Config struct {
	Input    Input                     `json:"input"`
	Output   Output                    `json:"output"`
	Solver   calibration.SolverOptions `json:"solver"`
	Pattern  PatternColors             `json:"pattern"`
	Resample string                    `json:"resample"`
}

// Input names the screenshots and the wallpaper to align.
type Input struct {
	Lockscreen string `json:"lockscreen"`
	Password   string `json:"password"`
	Source     string `json:"source"`
	// Marker is the screenshot with the black hole read by the profile
	// stage. Empty means Password.
	Marker string `json:"marker,omitempty"`
}

// MarkerPath returns the screenshot the profile stage reads.
func (in Input) MarkerPath() string {
	if in.Marker != "" {
		return in.Marker
	}
	return in.Password
}

// Output names every image written by the stages.
type Output struct {
	SourceCropped string `json:"source_cropped"`
	SourceResized string `json:"source_resized"`
	Pattern       string `json:"pattern"`
	Result        string `json:"result"`
	MaskLayer     string `json:"mask_layer"`
	Overlay       string `json:"overlay,omitempty"`
}

// PatternColors holds hex colours for the calibration pattern. Empty fields
// select the defaults.
type PatternColors struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Background string `json:"background"`
}

// ConfigurationError reports a missing or invalid configuration value.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Default returns a configuration with every optional value set.
func Default() *Config {
	return &Config{
		Solver: calibration.SolverOptions{
			MaxIterations: calibration.DefaultMaxIterations,
			StallLimit:    calibration.DefaultStallLimit,
		},
		Resample: DefaultResample,
	}
}

// Load reads a configuration file and fills unset optional values with
// defaults. It does not validate stage requirements.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigurationError{Field: path, Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Solver.MaxIterations <= 0 {
		c.Solver.MaxIterations = calibration.DefaultMaxIterations
	}
	if c.Solver.StallLimit <= 0 {
		c.Solver.StallLimit = calibration.DefaultStallLimit
	}
	if c.Resample == "" {
		c.Resample = DefaultResample
	}
}

// ValidateOptions carries command-line choices that change which keys a
// stage needs.
type ValidateOptions struct {
	// ExportMask requires output.mask_layer.
	ExportMask bool
	// ExplicitSize lets the pattern stage run without input.source.
	ExplicitSize bool
}

// Validate checks that every key the stage reads is present and that option
// values parse. It runs before any image is opened.
func (c *Config) Validate(stage string, opts ValidateOptions) error {
	var required []field
	switch stage {
	case StagePattern:
		required = []field{{"output.pattern", c.Output.Pattern}}
		if !opts.ExplicitSize {
			required = append(required, field{"input.source", c.Input.Source})
		}
	case StageCalibrate:
		required = c.calibrateFields()
	case StageProfile:
		required = c.profileFields(opts)
	case StageRun:
		required = append(c.calibrateFields(), c.profileFields(opts)...)
	default:
		return &ConfigurationError{Field: "stage", Reason: fmt.Sprintf("unknown stage %q", stage)}
	}

	for _, f := range required {
		if f.value == "" {
			return &ConfigurationError{Field: f.name, Reason: "required"}
		}
	}

	if _, err := imaging.FilterByName(c.Resample); err != nil {
		return &ConfigurationError{Field: "resample", Reason: err.Error()}
	}
	if c.Solver.MaxIterations < 0 {
		return &ConfigurationError{Field: "solver.max_iterations", Reason: "must not be negative"}
	}
	if c.Solver.StallLimit < 0 {
		return &ConfigurationError{Field: "solver.stall_limit", Reason: "must not be negative"}
	}
	if stage == StagePattern {
		if _, err := c.PatternColors(); err != nil {
			return &ConfigurationError{Field: "pattern", Reason: err.Error()}
		}
	}
	return nil
}

// PatternColors parses the configured pattern colours.
func (c *Config) PatternColors() (calibration.PatternColors, error) {
	return calibration.ParsePatternColors(c.Pattern.Primary, c.Pattern.Secondary, c.Pattern.Background)
}

type field struct {
	name  string
	value string
}

func (c *Config) calibrateFields() []field {
	return []field{
		{"input.lockscreen", c.Input.Lockscreen},
		{"input.password", c.Input.Password},
		{"input.source", c.Input.Source},
		{"output.source_resized", c.Output.SourceResized},
		{"output.source_cropped", c.Output.SourceCropped},
	}
}

func (c *Config) profileFields(opts ValidateOptions) []field {
	fields := []field{
		{"input.password", c.Input.MarkerPath()},
		{"output.source_cropped", c.Output.SourceCropped},
		{"output.result", c.Output.Result},
	}
	if opts.ExportMask {
		fields = append(fields, field{"output.mask_layer", c.Output.MaskLayer})
	}
	return fields
}
