// Package cfg loads runtime settings for the credit-risk service and its
// terminal client. Settings come from a YAML file named by CONFIG_FILE, or
// from environment variables; an optional .env file is read first.
package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"credit-risk/internal/common"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Settings struct {
	ArtifactDir   string
	ModelFile     string
	FeaturesFile  string
	Explainer     string
	ListenPort    int
	ServerURL     string
	ClientTimeout time.Duration
	LogLevel      string
	LogPretty     bool
}

type ConfigFile struct {
	Artifacts struct {
		Dir          string `yaml:"dir"`
		ModelFile    string `yaml:"modelFile"`
		FeaturesFile string `yaml:"featuresFile"`
	} `yaml:"artifacts"`

	Explain struct {
		Mode string `yaml:"mode"`
	} `yaml:"explain"`

	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Client struct {
		ServerURL string `yaml:"serverURL"`
		Timeout   string `yaml:"timeout"`
	} `yaml:"client"`

	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
}

// Load reads an optional .env file, then settings from CONFIG_FILE if set,
// otherwise from the environment.
func Load() (Settings, error) {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}

	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	clientTimeout, err := time.ParseDuration(config.Client.Timeout)
	if err != nil {
		clientTimeout = common.DefaultClientTimeout
	}

	settings := Settings{
		ArtifactDir:   getEnvOrDefault(common.EnvArtifactDir, orDefault(config.Artifacts.Dir, common.DefaultArtifactDir)),
		ModelFile:     getEnvOrDefault(common.EnvModelFile, orDefault(config.Artifacts.ModelFile, common.DefaultModelFile)),
		FeaturesFile:  getEnvOrDefault(common.EnvFeaturesFile, orDefault(config.Artifacts.FeaturesFile, common.DefaultFeaturesFile)),
		Explainer:     strings.ToLower(getEnvOrDefault(common.EnvExplainer, orDefault(config.Explain.Mode, common.DefaultExplainer))),
		ListenPort:    getIntFromEnvOrConfig(common.EnvListenPort, config.Server.Port, common.DefaultListenPort),
		ServerURL:     getEnvOrDefault(common.EnvServerURL, orDefault(config.Client.ServerURL, common.DefaultServerURL)),
		ClientTimeout: getDurationOrDefault(common.EnvClientTimeout, clientTimeout),
		LogLevel:      strings.ToLower(getEnvOrDefault(common.EnvLogLevel, orDefault(config.Logging.Level, common.DefaultLogLevel))),
		LogPretty:     getBoolOrDefault(common.EnvLogPretty, config.Logging.Pretty),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ArtifactDir:   getEnvOrDefault(common.EnvArtifactDir, common.DefaultArtifactDir),
		ModelFile:     getEnvOrDefault(common.EnvModelFile, common.DefaultModelFile),
		FeaturesFile:  getEnvOrDefault(common.EnvFeaturesFile, common.DefaultFeaturesFile),
		Explainer:     strings.ToLower(getEnvOrDefault(common.EnvExplainer, common.DefaultExplainer)),
		ListenPort:    getIntOrDefault(common.EnvListenPort, common.DefaultListenPort),
		ServerURL:     getEnvOrDefault(common.EnvServerURL, common.DefaultServerURL),
		ClientTimeout: getDurationOrDefault(common.EnvClientTimeout, common.DefaultClientTimeout),
		LogLevel:      strings.ToLower(getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel)),
		LogPretty:     getBoolOrDefault(common.EnvLogPretty, false),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

// validateSettings checks every field that has a bounded domain
func validateSettings(settings *Settings) error {
	if settings.ArtifactDir == "" {
		return fmt.Errorf("artifact directory cannot be empty")
	}
	if settings.ModelFile == "" || settings.FeaturesFile == "" {
		return fmt.Errorf("model and features file names are required")
	}

	switch settings.Explainer {
	case common.ExplainerTreeSHAP, common.ExplainerNone:
	default:
		return fmt.Errorf("explainer must be %q or %q, got %q", common.ExplainerTreeSHAP, common.ExplainerNone, settings.Explainer)
	}

	if settings.ListenPort < common.MinListenPort || settings.ListenPort > common.MaxListenPort {
		return fmt.Errorf("listen port must be between %d and %d, got %d", common.MinListenPort, common.MaxListenPort, settings.ListenPort)
	}

	if !strings.HasPrefix(settings.ServerURL, "http://") && !strings.HasPrefix(settings.ServerURL, "https://") {
		return fmt.Errorf("server URL must start with http:// or https://, got %q", settings.ServerURL)
	}

	if settings.ClientTimeout < time.Second || settings.ClientTimeout > 5*time.Minute {
		return fmt.Errorf("client timeout must be between 1s and 5m, got %v", settings.ClientTimeout)
	}

	switch settings.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", settings.LogLevel)
	}

	return nil
}
