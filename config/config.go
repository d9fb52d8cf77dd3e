// Package config loads and validates the settings of a feature extraction run.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment variable, e.g. COREFEATURES_INPUT_DIR.
const EnvPrefix = "COREFEATURES"

// Config represents the complete run configuration.
type Config struct {
	InputDir      string   `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`
	InputExt      string   `yaml:"input_ext" envconfig:"INPUT_EXT" validate:"required,startswith=."`
	OutputDir     string   `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	OutputName    string   `yaml:"output_name" envconfig:"OUTPUT_NAME" validate:"required"`
	Formats       []string `yaml:"formats" envconfig:"FORMATS" validate:"min=1,dive,oneof=csv xlsx"`
	PropertyTable string   `yaml:"property_table" envconfig:"PROPERTY_TABLE" validate:"required"`
	ScratchDir    string   `yaml:"scratch_dir" envconfig:"SCRATCH_DIR"`

	// Mean residue SES above which a residue is exterior.
	ExteriorThreshold float64 `yaml:"exterior_threshold" envconfig:"EXTERIOR_THRESHOLD" validate:"gte=0"`
	Workers           int     `yaml:"workers" envconfig:"WORKERS" validate:"gte=1"`

	MSMS      MSMSConfig      `yaml:"msms" envconfig:"MSMS"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// MSMSConfig locates the MSMS executables.
type MSMSConfig struct {
	Dir       string        `yaml:"dir" envconfig:"DIR" validate:"required"`
	Exe       string        `yaml:"exe" envconfig:"EXE" validate:"required"`
	PDBToXYZR string        `yaml:"pdb_to_xyzr" envconfig:"PDB_TO_XYZR" validate:"required"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gte=0"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
}

// TelemetryConfig sets where run metrics and traces are written. Empty disables them.
type TelemetryConfig struct {
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	TraceFile   string `yaml:"trace_file" envconfig:"TRACE_FILE"`
}

// Default returns the configuration used for unset values.
func Default() Config {
	return Config{
		InputExt:          ".pdb",
		OutputName:        "core_features",
		Formats:           []string{"csv"},
		ExteriorThreshold: 1.0,
		Workers:           1,
		MSMS: MSMSConfig{
			Exe:       "msms.x86_64Linux2.2.6.1",
			PDBToXYZR: "pdb_to_xyzr",
			Timeout:   10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// when non-empty, then environment variables, each overriding the previous.
// The result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &Error{Field: "config file", Err: err}
		}
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return nil, &Error{Field: "config file", Err: err}
		}
		cfg.resolveRelative(filepath.Dir(path))
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, &Error{Field: "environment", Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolveRelative makes the paths of a config file relative to the file's directory.
func (c *Config) resolveRelative(base string) {
	for _, p := range []*string{&c.InputDir, &c.OutputDir, &c.PropertyTable, &c.ScratchDir, &c.MSMS.Dir,
		&c.Telemetry.MetricsFile, &c.Telemetry.TraceFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

var validate = validator.New()

// Validate checks field constraints and that every input path exists.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			e := verrs[0]
			return &Error{Field: e.Namespace(), Err: fmt.Errorf("failed %q validation", e.Tag())}
		}
		return &Error{Field: "config", Err: err}
	}

	if err := checkDir(c.InputDir); err != nil {
		return &Error{Field: "input_dir", Err: err}
	}
	if err := checkFile(c.PropertyTable); err != nil {
		return &Error{Field: "property_table", Err: err}
	}
	if err := checkDir(c.MSMS.Dir); err != nil {
		return &Error{Field: "msms.dir", Err: err}
	}
	if err := checkFile(c.MSMSExe()); err != nil {
		return &Error{Field: "msms.exe", Err: err}
	}
	if err := checkFile(c.PDBToXYZR()); err != nil {
		return &Error{Field: "msms.pdb_to_xyzr", Err: err}
	}

	return nil
}

// MSMSExe returns the msms executable path.
func (c *Config) MSMSExe() string {
	return inDir(c.MSMS.Dir, c.MSMS.Exe)
}

// PDBToXYZR returns the pdb_to_xyzr executable path.
func (c *Config) PDBToXYZR() string {
	return inDir(c.MSMS.Dir, c.MSMS.PDBToXYZR)
}

func inDir(dir, file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}

func checkDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a dir", path)
	}
	return nil
}

func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a dir", path)
	}
	return nil
}
