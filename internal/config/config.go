package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "hkpulse/internal/errors"
)

// EnvPrefix namespaces every environment variable, e.g. PULSE_LOGGING_LEVEL.
const EnvPrefix = "PULSE"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Provider  ProviderConfig  `yaml:"provider" envconfig:"PROVIDER"`
	Chart     ChartConfig     `yaml:"chart" envconfig:"CHART"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Output     string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath   string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
	MaxSizeMB  int    `yaml:"max_size_mb" envconfig:"MAX_SIZE_MB" validate:"gte=1"`
	MaxBackups int    `yaml:"max_backups" envconfig:"MAX_BACKUPS" validate:"gte=0"`
	MaxAgeDays int    `yaml:"max_age_days" envconfig:"MAX_AGE_DAYS" validate:"gte=0"`
	Compress   bool   `yaml:"compress" envconfig:"COMPRESS"`
}

// PathsConfig contains file system locations
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// ProviderConfig contains market data provider settings
type ProviderConfig struct {
	KlineURL          string        `yaml:"kline_url" envconfig:"KLINE_URL" validate:"required,url"`
	DatacenterURL     string        `yaml:"datacenter_url" envconfig:"DATACENTER_URL" validate:"required,url"`
	Timeout           time.Duration `yaml:"timeout" envconfig:"TIMEOUT" validate:"gt=0"`
	RequestsPerSecond float64       `yaml:"requests_per_second" envconfig:"REQUESTS_PER_SECOND" validate:"gt=0"`
	Burst             int           `yaml:"burst" envconfig:"BURST" validate:"gte=1"`
	PageSize          int           `yaml:"page_size" envconfig:"PAGE_SIZE" validate:"gte=1,lte=5000"`
	UserAgent         string        `yaml:"user_agent" envconfig:"USER_AGENT"`

	HSISecID       string `yaml:"hsi_secid" envconfig:"HSI_SECID" validate:"required"`
	VHSISecID      string `yaml:"vhsi_secid" envconfig:"VHSI_SECID" validate:"required"`
	AHPremiumSecID string `yaml:"ah_premium_secid" envconfig:"AH_PREMIUM_SECID" validate:"required"`

	SouthboundReport string `yaml:"southbound_report" envconfig:"SOUTHBOUND_REPORT" validate:"required"`
	SouthboundFilter string `yaml:"southbound_filter" envconfig:"SOUTHBOUND_FILTER"`
	ValuationReport  string `yaml:"valuation_report" envconfig:"VALUATION_REPORT" validate:"required"`
	ValuationFilter  string `yaml:"valuation_filter" envconfig:"VALUATION_FILTER"`
}

// ChartConfig contains chart rendering settings
type ChartConfig struct {
	StartDate string `yaml:"start_date" envconfig:"START_DATE" validate:"isodate"`
	FileName  string `yaml:"file_name" envconfig:"FILE_NAME" validate:"required"`
	Title     string `yaml:"title" envconfig:"TITLE"`
}

// Start returns the parsed chart start date
func (c ChartConfig) Start() (time.Time, error) {
	return time.Parse(DateLayout, c.StartDate)
}

// TelemetryConfig contains tracing and metrics settings
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	TracingEnabled bool   `yaml:"tracing_enabled" envconfig:"TRACING_ENABLED"`
	TraceFile      string `yaml:"trace_file" envconfig:"TRACE_FILE"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	MetricsFile    string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load builds the configuration from defaults, an optional YAML file and
// the environment, in increasing order of precedence. A .env file in the
// working directory is loaded into the environment first.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, apperrors.NewConfigError("failed to load .env file", err)
	}

	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("path", path)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file
// keep their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration against its struct tags
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return apperrors.NewConfigError("config validation failed: "+strings.Join(msgs, "; "), err)
		}
		return apperrors.NewConfigError("config validation failed", err)
	}
	return nil
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("isodate", isISODate)

	// Report YAML key names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func isISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

// getConfigFilePath returns the first config file found, or ""
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			Output:     "both",
			FilePath:   "logs/hkpulse.log",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 30,
			Compress:   true,
		},
		Paths: PathsConfig{
			DataDir:   DefaultDataDir,
			OutputDir: DefaultOutputDir,
			LogsDir:   DefaultLogsDir,
		},
		Provider: ProviderConfig{
			KlineURL:          DefaultKlineURL,
			DatacenterURL:     DefaultDatacenterURL,
			Timeout:           DefaultHTTPTimeout,
			RequestsPerSecond: 2,
			Burst:             1,
			PageSize:          500,
			UserAgent:         DefaultUserAgent,
			HSISecID:          "100.HSI",
			VHSISecID:         "124.VHSI",
			AHPremiumSecID:    "124.HSAHP",
			SouthboundReport:  "RPT_MUTUAL_DEAL_HISTORY",
			SouthboundFilter:  `(MUTUAL_TYPE="006")`,
			ValuationReport:   "RPT_INDEX_VALUATION_HIS",
			ValuationFilter:   `(INDEX_CODE="HSI")`,
		},
		Chart: ChartConfig{
			StartDate: "2017-01-01",
			FileName:  ChartFileName,
			Title:     "Hong Kong Fear & Greed Index vs HSI",
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			TracingEnabled: false,
			TraceFile:      "logs/traces.json",
			MetricsEnabled: true,
			MetricsFile:    "logs/hkpulse.prom",
		},
	}
}
