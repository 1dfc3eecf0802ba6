package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SyedDaiam9101/classifier-service/internal/logging"
)

// chdirTemp runs the test from an empty directory so no stray config.yaml
// is picked up.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.Equal(t, 9100, cfg.MetricsPort)
	assert.Equal(t, "models/iris_classifier.onnx", cfg.Model)
	assert.Equal(t, 5*time.Second, cfg.ShutdownGrace)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.True(t, cfg.Log.Console)
	assert.False(t, cfg.UseMock)
	require.NoError(t, cfg.Validate())
}

func TestLoad_ConfigFileInWorkingDir(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(`
port: 8080
model: /srv/models/iris.json
log:
  level: debug
  file: /var/log/classifier.log
`), 0o600))

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/srv/models/iris.json", cfg.Model)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/var/log/classifier.log", cfg.Log.File)
}

func TestLoad_ExplicitConfigFileMissing(t *testing.T) {
	chdirTemp(t)

	_, err := Load("/nonexistent/config.yaml", nil)
	require.Error(t, err)
}

func TestLoad_Precedence(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: 7000\nmetrics_port: 7001\nmodel: file.onnx\n"), 0o600))

	t.Setenv("CLASSIFIER_SERVICE_PORT", "7100")
	t.Setenv("CLASSIFIER_SERVICE_MODEL", "env.onnx")
	t.Setenv("CLASSIFIER_SERVICE_LOG_LEVEL", "warn")
	t.Setenv("CLASSIFIER_SERVICE_SHUTDOWN_GRACE", "250ms")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--model", "flag.onnx", "--mock"}))

	cfg, err := Load(path, fs)
	require.NoError(t, err)

	assert.Equal(t, 7100, cfg.Port, "env beats file")
	assert.Equal(t, 7001, cfg.MetricsPort, "file beats default")
	assert.Equal(t, "flag.onnx", cfg.Model, "flag beats env")
	assert.True(t, cfg.UseMock)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 250*time.Millisecond, cfg.ShutdownGrace)
}

func TestLoad_UnsetFlagsDoNotOverride(t *testing.T) {
	chdirTemp(t)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load("", fs)
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "models/iris_classifier.onnx", cfg.Model)
}

func TestLoad_OTELEndpointEnablesTracing(t *testing.T) {
	chdirTemp(t)
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://collector:4317")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.True(t, cfg.OTELEnabled)
	assert.Equal(t, "http://collector:4317", cfg.OTELEndpoint)
}

func validConfig() Config {
	return Config{
		Port:        8000,
		GRPCPort:    50051,
		MetricsPort: 9100,
		Model:       "model.onnx",
		Log:         loggingConfig("info"),
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"bad port":          func(c *Config) { c.Port = 0 },
		"bad metrics port":  func(c *Config) { c.MetricsPort = 70000 },
		"bad grpc port":     func(c *Config) { c.GRPCPort = -1 },
		"port collision":    func(c *Config) { c.MetricsPort = c.Port },
		"grpc collision":    func(c *Config) { c.GRPCPort = c.MetricsPort },
		"no model":          func(c *Config) { c.Model = "" },
		"unknown format":    func(c *Config) { c.ModelFormat = "pickle" },
		"negative grace":    func(c *Config) { c.ShutdownGrace = -time.Second },
		"unknown log level": func(c *Config) { c.Log.Level = "chatty" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_Accepts(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	cfg.GRPCPort = 0
	require.NoError(t, cfg.Validate(), "grpc can be disabled")

	cfg.Model = ""
	cfg.UseMock = true
	require.NoError(t, cfg.Validate(), "mock needs no model")

	cfg.ModelFormat = "tree"
	require.NoError(t, cfg.Validate())
}

func TestModelOptions(t *testing.T) {
	cfg := validConfig()
	cfg.ModelFormat = "logreg"
	cfg.ModelMetadata = "meta.json"
	cfg.ONNXLibrary = "/usr/lib/libonnxruntime.so"

	opts := cfg.ModelOptions()
	assert.Equal(t, "model.onnx", opts.Path)
	assert.Equal(t, "logreg", opts.Format)
	assert.Equal(t, "meta.json", opts.MetadataPath)
	assert.Equal(t, "/usr/lib/libonnxruntime.so", opts.SharedLibraryPath)
	assert.False(t, opts.UseMock)
}

func loggingConfig(level string) logging.Config {
	return logging.Config{Level: level}
}
