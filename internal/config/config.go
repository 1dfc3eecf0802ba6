// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/SyedDaiam9101/classifier-service/internal/inference"
	"github.com/SyedDaiam9101/classifier-service/internal/logging"
)

// EnvPrefix prefixes every environment variable the service reads.
const EnvPrefix = "CLASSIFIER_SERVICE"

// Config holds all configuration for the service
type Config struct {
	// Server configuration
	Port          int           `mapstructure:"port"`
	GRPCPort      int           `mapstructure:"grpc_port"`
	MetricsPort   int           `mapstructure:"metrics_port"`
	Gzip          bool          `mapstructure:"gzip"`
	ShutdownGrace time.Duration `mapstructure:"shutdown_grace"`

	// Model artifact
	Model         string `mapstructure:"model"`
	ModelFormat   string `mapstructure:"model_format"`
	ModelMetadata string `mapstructure:"model_metadata"`
	ONNXLibrary   string `mapstructure:"onnx_library"`
	UseMock       bool   `mapstructure:"use_mock"`

	// OpenTelemetry configuration
	OTELEnabled  bool   `mapstructure:"otel_enabled"`
	OTELEndpoint string `mapstructure:"otel_endpoint"`

	Log logging.Config `mapstructure:"log"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"port":           "port",
	"grpc-port":      "grpc_port",
	"metrics-port":   "metrics_port",
	"model":          "model",
	"model-format":   "model_format",
	"model-metadata": "model_metadata",
	"onnx-library":   "onnx_library",
	"mock":           "use_mock",
	"log-level":      "log.level",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 8000)
	v.SetDefault("grpc_port", 50051)
	v.SetDefault("metrics_port", 9100)
	v.SetDefault("gzip", false)
	v.SetDefault("shutdown_grace", 5*time.Second)
	v.SetDefault("model", "models/iris_classifier.onnx")
	v.SetDefault("model_format", inference.FormatAuto)
	v.SetDefault("model_metadata", "")
	v.SetDefault("onnx_library", "")
	v.SetDefault("use_mock", false)
	v.SetDefault("otel_enabled", false)
	v.SetDefault("otel_endpoint", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 14)
	v.SetDefault("log.console", true)
}

// RegisterFlags declares the command-line overrides on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.Int("port", 0, "HTTP API port (default: 8000)")
	fs.Int("grpc-port", 0, "gRPC port, 0 keeps the configured value (default: 50051)")
	fs.Int("metrics-port", 0, "Prometheus metrics and health port (default: 9100)")
	fs.String("model", "", "Path to the model artifact (default: models/iris_classifier.onnx)")
	fs.String("model-format", "", "Model format: onnx, logreg or tree (default: detect)")
	fs.String("model-metadata", "", "Path to the ONNX tensor metadata JSON (optional)")
	fs.String("onnx-library", "", "Path to the onnxruntime shared library (optional)")
	fs.Bool("mock", false, "Use mock inference engine (for testing)")
	fs.String("log-level", "", "Log level: debug, info, warn, error (default: info)")
}

// Load loads configuration from defaults, an optional YAML file, environment
// variables and flags. Priority (highest to lowest): flags > env vars >
// config file > defaults. configFile may be empty, in which case config.yaml
// is looked up in the usual places and is optional. fs may be nil.
func Load(configFile string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Environment variable configuration
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Also read OTEL standard env vars
	if endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); endpoint != "" {
		v.SetDefault("otel_endpoint", endpoint)
		v.SetDefault("otel_enabled", true)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/classifier-service/")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	// Only flags the user actually set override lower layers
	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if !validPort(c.Port) {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if !validPort(c.MetricsPort) {
		return fmt.Errorf("invalid metrics port: %d", c.MetricsPort)
	}
	if c.GRPCPort != 0 && !validPort(c.GRPCPort) {
		return fmt.Errorf("invalid grpc port: %d", c.GRPCPort)
	}
	ports := map[int]string{c.Port: "port"}
	for name, p := range map[string]int{"metrics_port": c.MetricsPort, "grpc_port": c.GRPCPort} {
		if p == 0 {
			continue
		}
		if other, dup := ports[p]; dup {
			return fmt.Errorf("%s and %s must be different", other, name)
		}
		ports[p] = name
	}
	if c.Model == "" && !c.UseMock {
		return fmt.Errorf("model path is required when not using mock inference")
	}
	if !knownFormat(c.ModelFormat) {
		return fmt.Errorf("unknown model format %q (want one of %v)", c.ModelFormat, inference.Formats[1:])
	}
	if c.ShutdownGrace < 0 {
		return fmt.Errorf("shutdown_grace must not be negative")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}

// ModelOptions returns the loader options described by the configuration.
func (c *Config) ModelOptions() inference.Options {
	return inference.Options{
		Path:              c.Model,
		Format:            c.ModelFormat,
		MetadataPath:      c.ModelMetadata,
		SharedLibraryPath: c.ONNXLibrary,
		UseMock:           c.UseMock,
	}
}

func validPort(p int) bool {
	return p > 0 && p <= 65535
}

func knownFormat(f string) bool {
	for _, known := range inference.Formats {
		if f == known {
			return true
		}
	}
	return false
}
