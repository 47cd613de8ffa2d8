package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/s3gateway"
	gatewayhttp "github.com/sagarc03/s3gateway/http"
	"github.com/sagarc03/s3gateway/s3store"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for s3gateway.
type Config struct {
	Env     string                 `mapstructure:"env"`
	Server  ServerConfig           `mapstructure:"server"`
	Storage s3store.Config         `mapstructure:"storage"`
	Keys    s3gateway.KeyPolicy    `mapstructure:"keys"`
	Presign PresignConfig          `mapstructure:"presign"`
	Proxy   ProxyConfig            `mapstructure:"proxy"`
	CORS    gatewayhttp.CORSConfig `mapstructure:"cors"`
	Metrics MetricsConfig          `mapstructure:"metrics"`
	Log     LogConfig              `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required,hostname_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required"`
	LegacyErrors    bool          `mapstructure:"legacy_errors"`
}

// PresignConfig bounds the lifetime of signed URLs.
type PresignConfig struct {
	DefaultTTL time.Duration `mapstructure:"default_ttl" validate:"required,ltefield=MaxTTL"`
	MaxTTL     time.Duration `mapstructure:"max_ttl" validate:"required,lte=168h"`
}

// ProxyConfig holds upload relay configuration.
type ProxyConfig struct {
	Timeout       time.Duration `mapstructure:"timeout" validate:"required"`
	MaxUploadSize int64         `mapstructure:"max_upload_size" validate:"min=0"`
}

// MetricsConfig holds Prometheus exposition configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required,startswith=/"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// IsProduction reports whether Env names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// WarnMissing logs every storage setting the deployment left empty. The
// gateway still starts; requests fail at the storage call instead.
func (c *Config) WarnMissing(logger *slog.Logger) {
	for _, name := range c.Storage.Missing() {
		logger.Warn("storage setting not configured", "setting", "storage."+name)
	}
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"addr":          "server.addr",
	"legacy-errors": "server.legacy_errors",
	"endpoint":      "storage.endpoint",
	"bucket":        "storage.bucket",
	"region":        "storage.region",
	"use-ssl":       "storage.use_ssl",
	"log-level":     "log.level",
	"env":           "env",
}

// legacyEnv maps the environment variables of earlier deployments to viper
// keys. They act as defaults, so files, S3GATEWAY_ variables and flags still
// override them.
var legacyEnv = map[string]string{
	"S3_URL":        "storage.endpoint",
	"BUCKET_NAME":   "storage.bucket",
	"API_KEY":       "storage.access_key",
	"SECRET_KEY":    "storage.secret_key",
	"MANAGE_HTTPS":  "storage.use_ssl",
	"SSL_CERT_FILE": "storage.ca_cert_file",
	"HOST":          "server.addr",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("server.addr", "127.0.0.1:7878")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Minute)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.legacy_errors", false)

	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.ca_cert_file", "")
	v.SetDefault("storage.path_style", true)

	v.SetDefault("keys.private_scope", true)
	v.SetDefault("keys.attachment_exempt", true)

	v.SetDefault("presign.default_ttl", s3gateway.DefaultTTL)
	v.SetDefault("presign.max_ttl", s3gateway.MaxTTL)

	v.SetDefault("proxy.timeout", 5*time.Minute)
	v.SetDefault("proxy.max_upload_size", 0) // 0 means no limit

	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "PUT", "POST", "DELETE"})
	v.SetDefault("cors.allowed_headers", []string{"*"})
	v.SetDefault("cors.exposed_headers", []string{"ETag", "X-Request-Id"})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("log.level", "info")
}

// applyLegacyEnv turns the legacy environment variables that are set into
// defaults.
func applyLegacyEnv(v *viper.Viper) {
	for env, key := range legacyEnv {
		value, ok := os.LookupEnv(env)
		if !ok {
			continue
		}
		if env == "MANAGE_HTTPS" {
			v.SetDefault(key, strings.EqualFold(strings.TrimSpace(value), "Y"))
			continue
		}
		v.SetDefault(key, value)
	}

	if origin, ok := os.LookupEnv("ALLOWED_ORIGIN"); ok && origin != "" {
		v.SetDefault("cors.allowed_origins", []string{origin})
	}
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files >
// legacy env > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)
	applyLegacyEnv(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("S3GATEWAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
