package app

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/sheetsync"
	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/reconciler"
	"github.com/agentstation/sheetsync/pkg/sync"
)

// EnvPrefix prefixes every environment variable read through viper.
const EnvPrefix = "SHEETSYNC"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool   `mapstructure:"verbose"`
	Quiet   bool   `mapstructure:"quiet"`
	NoColor bool   `mapstructure:"no_color"`
	Format  string `mapstructure:"format" validate:"omitempty,oneof=table json yaml wide"`

	// Config file
	ConfigFile string `mapstructure:"-"`

	// Import configuration
	Mode             string   `mapstructure:"mode" validate:"required,oneof=create sync"`
	Source           string   `mapstructure:"source" validate:"required"`
	PrimarySheet     string   `mapstructure:"primary_sheet"`
	Sheets           []string `mapstructure:"sheets"`
	PrioritySheets   []string `mapstructure:"priority_sheets"`
	PriorityKeywords []string `mapstructure:"priority_keywords"`
	PriorityOnly     bool     `mapstructure:"priority_only"`
	TimelineSync     bool     `mapstructure:"timeline_sync"`
	PayloadPath      string   `mapstructure:"payload_path" validate:"required"`
	ManifestPath     string   `mapstructure:"manifest_path" validate:"required,nefield=PayloadPath"`

	// Store the existing-record index is read from
	Store StoreConfig `mapstructure:"store"`

	// Project strings written into payloads (nil keeps the default profile)
	Profile *reconciler.Profile `mapstructure:"profile"`

	// Logging configuration
	LogLevel  string `mapstructure:"log_level" validate:"omitempty,oneof=trace debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"omitempty,oneof=auto json console"`
	LogOutput string `mapstructure:"log_output"`
}

// StoreConfig selects the store backend.
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"required,oneof=sqlite postgres none"`
	DSN    string `mapstructure:"dsn" validate:"required_unless=Driver none"`
}

// legacyEnv holds the variables the original import script read. They
// override the config file and SHEETSYNC_* variables but not flags.
type legacyEnv struct {
	ExcelFile    string `env:"EXCEL_FILE"`
	Mode         string `env:"MODE"`
	Top15Only    *bool  `env:"TOP15_ONLY"`
	SyncTimeline *bool  `env:"SYNC_TIMELINE"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Legacy variables EXCEL_FILE, MODE, TOP15_ONLY, SYNC_TIMELINE
// 3. SHEETSYNC_* environment variables
// 4. .env and .env.local files
// 5. Config file (--config, ./.sheetsync.yaml or ~/.sheetsync.yaml)
// 6. Defaults
func LoadConfig(configFile string) (*Config, error) {
	// Load .env files first (before viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile == "" {
		configFile = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".sheetsync")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("config file", err.Error(), err)
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Mode:             strings.ToLower(v.GetString("mode")),
		Source:           v.GetString("source"),
		PrimarySheet:     v.GetString("primary_sheet"),
		Sheets:           v.GetStringSlice("sheets"),
		PrioritySheets:   v.GetStringSlice("priority_sheets"),
		PriorityKeywords: v.GetStringSlice("priority_keywords"),
		PriorityOnly:     v.GetBool("priority_only"),
		TimelineSync:     v.GetBool("timeline_sync"),
		PayloadPath:      v.GetString("payload_path"),
		ManifestPath:     v.GetString("manifest_path"),

		Store: StoreConfig{
			Driver: strings.ToLower(v.GetString("store.driver")),
			DSN:    v.GetString("store.dsn"),
		},

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}

	if v.IsSet("profile") {
		profile := reconciler.DefaultProfile()
		if err := v.UnmarshalKey("profile", &profile); err != nil {
			return nil, errors.NewConfigError("profile", err.Error(), err)
		}
		config.Profile = &profile
	}

	if err := config.applyLegacyEnv(); err != nil {
		return nil, err
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", reconciler.ModeCreate.String())
	v.SetDefault("source", constants.DefaultSourceFile)
	v.SetDefault("payload_path", filepath.Join(constants.DefaultOutputDir, constants.DefaultPayloadFile))
	v.SetDefault("manifest_path", filepath.Join(constants.DefaultOutputDir, constants.DefaultManifestFile))
	v.SetDefault("store.driver", sheetsync.DriverSQLite)
	v.SetDefault("store.dsn", constants.DefaultStorePath)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// applyLegacyEnv overlays the variables of the original import script.
func (c *Config) applyLegacyEnv() error {
	var legacy legacyEnv
	if err := env.Parse(&legacy); err != nil {
		return errors.NewConfigError("environment", err.Error(), err)
	}
	if legacy.ExcelFile != "" {
		c.Source = legacy.ExcelFile
	}
	if legacy.Mode != "" {
		c.Mode = strings.ToLower(strings.TrimSpace(legacy.Mode))
	}
	if legacy.Top15Only != nil {
		c.PriorityOnly = *legacy.Top15Only
	}
	if legacy.SyncTimeline != nil {
		c.TimelineSync = *legacy.SyncTimeline
	}
	return nil
}

// UpdateFromFlags updates config values from parsed root flags. Only flags
// the user set are applied so config file and env values survive.
func (c *Config) UpdateFromFlags(f *RootFlags, changed func(string) bool) {
	if changed("verbose") {
		c.Verbose = f.Verbose
	}
	if changed("quiet") {
		c.Quiet = f.Quiet
	}
	if changed("no-color") {
		c.NoColor = f.NoColor
	}
	if changed("format") {
		c.Format = strings.ToLower(f.Format)
	}
	if changed("log-level") {
		c.LogLevel = strings.ToLower(f.LogLevel)
	}
	if changed("store-driver") {
		c.Store.Driver = strings.ToLower(f.StoreDriver)
	}
	if changed("store-dsn") {
		c.Store.DSN = f.StoreDSN
	}
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		if c.Profile != nil {
			return c.Profile.Validate()
		}
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.NewConfigError("config", err.Error(), err)
	}
	errs := make([]error, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		errs = append(errs, &errors.ValidationError{
			Field:   strings.TrimPrefix(fe.Namespace(), "Config."),
			Value:   fe.Value(),
			Message: describe(fe),
		})
	}
	return errors.Join(errs...)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_unless":
		return "is required"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "nefield":
		return "must differ from " + fe.Param()
	default:
		return fmt.Sprintf("failed %s %s", fe.Tag(), fe.Param())
	}
}

// ImportOptions converts the configuration to import options.
func (c *Config) ImportOptions() []sync.Option {
	opts := []sync.Option{
		sync.WithSource(c.Source),
		sync.WithPriorityOnly(c.PriorityOnly),
		sync.WithTimelineSync(c.TimelineSync),
		sync.WithOutputPath(c.PayloadPath),
		sync.WithManifestPath(c.ManifestPath),
	}
	if mode, err := reconciler.ParseMode(c.Mode); err == nil {
		opts = append(opts, sync.WithMode(mode))
	}
	if c.PrimarySheet != "" {
		opts = append(opts, sync.WithPrimarySheet(c.PrimarySheet))
	}
	if len(c.Sheets) > 0 {
		opts = append(opts, sync.WithSheets(c.Sheets...))
	}
	if len(c.PrioritySheets) > 0 {
		opts = append(opts, sync.WithPrioritySheets(c.PrioritySheets...))
	}
	if len(c.PriorityKeywords) > 0 {
		opts = append(opts, sync.WithPriorityKeywords(c.PriorityKeywords...))
	}
	if c.Profile != nil {
		opts = append(opts, sync.WithProfile(*c.Profile))
	}
	return opts
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}
