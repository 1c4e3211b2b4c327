package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "incidentcli/internal/errors"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "INCIDENT"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// ReportConfig contains the input, template and output locations and the
// visual layout of written rows.
type ReportConfig struct {
	InputDir     string  `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`
	TemplatePath string  `yaml:"template_path" envconfig:"TEMPLATE_PATH" validate:"required"`
	OutputPath   string  `yaml:"output_path" envconfig:"OUTPUT_PATH" validate:"required"`
	CSVPath      string  `yaml:"csv_path" envconfig:"CSV_PATH"`
	HeaderRow    int     `yaml:"header_row" envconfig:"HEADER_ROW" validate:"min=1"`
	StartRow     int     `yaml:"start_row" envconfig:"START_ROW" validate:"gtfield=HeaderRow"`
	RowHeight    float64 `yaml:"row_height" envconfig:"ROW_HEIGHT" validate:"gt=0,lte=409"`
	FontName     string  `yaml:"font_name" envconfig:"FONT_NAME" validate:"required"`
	FontSize     float64 `yaml:"font_size" envconfig:"FONT_SIZE" validate:"gt=0"`
}

// TelemetryConfig controls the optional span dump and metrics textfile.
type TelemetryConfig struct {
	ServiceName string  `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Environment string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceFile   string  `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsFile string  `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	SampleRatio float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// Load builds the configuration. Precedence, lowest first: built-in
// defaults, the YAML file at configFile (when not empty), a .env file in the
// working directory, then INCIDENT_* environment variables.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).WithContext("file", configFile)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewConfigError("failed to load .env", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys absent from the file
// keep their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Output = strings.ToLower(c.Logging.Output)

	v := validator.New()
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/incidentmerge.log",
		},
		Report: ReportConfig{
			InputDir:     DefaultInputDir,
			TemplatePath: DefaultTemplateFile,
			OutputPath:   DefaultOutputFile,
			HeaderRow:    DefaultHeaderRow,
			StartRow:     DefaultStartRow,
			RowHeight:    DefaultRowHeight,
			FontName:     DefaultFontName,
			FontSize:     DefaultFontSize,
		},
		Telemetry: TelemetryConfig{
			ServiceName: AppName,
			Environment: "development",
			SampleRatio: 1.0,
		},
	}
}
