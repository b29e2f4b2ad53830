package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/arbor/internal/observability"
	"github.com/mesh-intelligence/arbor/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	envPrefix = "ARBOR"

	cfgKeyBackend     = "backend"
	cfgKeyDataDir     = "data_dir"
	cfgKeyListen      = "listen"
	cfgKeyStrictIDs   = "strict_ids"
	cfgKeyCORSOrigins = "cors_origins"
	cfgKeyTracing     = "tracing"
	cfgKeyLogLevel    = "log_level"
	cfgKeyLogFormat   = "log_format"

	defaultBackend   = types.BackendFiles
	defaultListen    = ":5000"
	defaultLogLevel  = "info"
	defaultLogFormat = "json"
)

// Log formats.
const (
	logFormatJSON = "json"
	logFormatText = "text"
)

// envKeys are the config keys that ARBOR_<KEY> overrides. data_dir is
// absent: ARBOR_DATA_DIR ranks below config.yaml and is read by
// paths.ResolveDataDir.
var envKeys = []string{
	cfgKeyBackend,
	cfgKeyListen,
	cfgKeyStrictIDs,
	cfgKeyCORSOrigins,
	cfgKeyTracing,
	cfgKeyLogLevel,
	cfgKeyLogFormat,
}

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# arbor configuration

# Record backend: files, sqlite or badger
backend: files

# Data directory (optional; overridable by --data-dir flag)
# data_dir:

# HTTP listen address for "arbor serve"
listen: ":5000"

# Reject an added identifier that exists anywhere in the tree. When false only
# the parent's own children are checked.
strict_ids: true

# Origins allowed by CORS
cors_origins: ["*"]

# Tracing exporter: none or stdout
tracing: none

# Logging: level debug|info|warn|error, format json|text
log_level: info
log_format: json
`

// settings is the decoded configuration.
type settings struct {
	Backend     string   `mapstructure:"backend"`
	DataDir     string   `mapstructure:"data_dir"`
	Listen      string   `mapstructure:"listen"`
	StrictIDs   bool     `mapstructure:"strict_ids"`
	CORSOrigins []string `mapstructure:"cors_origins"`
	Tracing     string   `mapstructure:"tracing"`
	LogLevel    string   `mapstructure:"log_level"`
	LogFormat   string   `mapstructure:"log_format"`
}

// loadConfig reads config.yaml from the resolved config directory using Viper.
// It creates the config directory and a default config.yaml on first run.
// A missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := ensureConfigDir(configDir); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, defaultBackend)
	v.SetDefault(cfgKeyListen, defaultListen)
	v.SetDefault(cfgKeyStrictIDs, true)
	v.SetDefault(cfgKeyCORSOrigins, []string{"*"})
	v.SetDefault(cfgKeyTracing, observability.TracingNone)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyLogFormat, defaultLogFormat)

	v.SetEnvPrefix(envPrefix)
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// decodeSettings unmarshals v into settings.
func decodeSettings(v *viper.Viper) (settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("decode config: %w", err)
	}
	return s, nil
}

// ensureConfigDir creates the config directory if it does not exist.
func ensureConfigDir(configDir string) error {
	return os.MkdirAll(configDir, 0o755)
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// newLogger builds the slog logger for level and format writing to w.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log_level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "", logFormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case logFormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("log_format %q: want %s or %s", format, logFormatJSON, logFormatText)
	}
}
