package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"credit-risk/internal/common"
)

var testEnvKeys = []string{
	common.EnvConfigFile,
	common.EnvArtifactDir,
	common.EnvModelFile,
	common.EnvFeaturesFile,
	common.EnvExplainer,
	common.EnvListenPort,
	common.EnvServerURL,
	common.EnvClientTimeout,
	common.EnvLogLevel,
	common.EnvLogPretty,
}

func clearTestEnv(t *testing.T) {
	t.Helper()
	for _, key := range testEnvKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		wantErr  bool
		validate func(t *testing.T, settings Settings)
	}{
		{
			name:    "defaults",
			envVars: map[string]string{},
			validate: func(t *testing.T, settings Settings) {
				if settings.ArtifactDir != "." {
					t.Errorf("expected default ArtifactDir '.', got %s", settings.ArtifactDir)
				}
				if settings.ModelFile != "lightgbm_credit_model.json" {
					t.Errorf("expected default ModelFile, got %s", settings.ModelFile)
				}
				if settings.FeaturesFile != "selected_features.json" {
					t.Errorf("expected default FeaturesFile, got %s", settings.FeaturesFile)
				}
				if settings.Explainer != common.ExplainerTreeSHAP {
					t.Errorf("expected treeshap explainer, got %s", settings.Explainer)
				}
				if settings.ListenPort != 8501 {
					t.Errorf("expected default port 8501, got %d", settings.ListenPort)
				}
				if settings.ClientTimeout != 10*time.Second {
					t.Errorf("expected default client timeout 10s, got %v", settings.ClientTimeout)
				}
			},
		},
		{
			name: "custom values",
			envVars: map[string]string{
				common.EnvArtifactDir:   "/srv/models",
				common.EnvExplainer:     "NONE",
				common.EnvListenPort:    "9000",
				common.EnvServerURL:     "https://risk.internal:9000",
				common.EnvClientTimeout: "30s",
				common.EnvLogLevel:      "DEBUG",
				common.EnvLogPretty:     "true",
			},
			validate: func(t *testing.T, settings Settings) {
				if settings.ArtifactDir != "/srv/models" {
					t.Errorf("expected ArtifactDir /srv/models, got %s", settings.ArtifactDir)
				}
				if settings.Explainer != common.ExplainerNone {
					t.Errorf("expected explainer none, got %s", settings.Explainer)
				}
				if settings.ListenPort != 9000 {
					t.Errorf("expected port 9000, got %d", settings.ListenPort)
				}
				if settings.ClientTimeout != 30*time.Second {
					t.Errorf("expected timeout 30s, got %v", settings.ClientTimeout)
				}
				if settings.LogLevel != "debug" {
					t.Errorf("expected log level debug, got %s", settings.LogLevel)
				}
				if !settings.LogPretty {
					t.Error("expected LogPretty to be true")
				}
			},
		},
		{
			name:    "unknown explainer",
			envVars: map[string]string{common.EnvExplainer: "lime"},
			wantErr: true,
		},
		{
			name:    "privileged port",
			envVars: map[string]string{common.EnvListenPort: "80"},
			wantErr: true,
		},
		{
			name:    "server url without scheme",
			envVars: map[string]string{common.EnvServerURL: "localhost:8501"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearTestEnv(t)

			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			settings, err := loadFromEnv()

			if tt.wantErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if !tt.wantErr && tt.validate != nil {
				tt.validate(t, settings)
			}
		})
	}
}

func TestLoadFromYAML(t *testing.T) {
	tests := []struct {
		name         string
		yamlContent  string
		envOverrides map[string]string
		wantErr      bool
		validate     func(t *testing.T, settings Settings)
	}{
		{
			name: "valid YAML config",
			yamlContent: `
artifacts:
  dir: "/opt/credit"
  modelFile: "model.json"
  featuresFile: "features.json"
explain:
  mode: "none"
server:
  port: 9090
client:
  serverURL: "http://scoring:9090"
  timeout: "20s"
logging:
  level: "warn"
  pretty: true
`,
			validate: func(t *testing.T, settings Settings) {
				if settings.ArtifactDir != "/opt/credit" {
					t.Errorf("expected ArtifactDir /opt/credit, got %s", settings.ArtifactDir)
				}
				if settings.ModelFile != "model.json" || settings.FeaturesFile != "features.json" {
					t.Errorf("unexpected artifact names %s / %s", settings.ModelFile, settings.FeaturesFile)
				}
				if settings.Explainer != common.ExplainerNone {
					t.Errorf("expected explainer none, got %s", settings.Explainer)
				}
				if settings.ListenPort != 9090 {
					t.Errorf("expected port 9090, got %d", settings.ListenPort)
				}
				if settings.ServerURL != "http://scoring:9090" {
					t.Errorf("unexpected server URL %s", settings.ServerURL)
				}
				if settings.ClientTimeout != 20*time.Second {
					t.Errorf("expected client timeout 20s, got %v", settings.ClientTimeout)
				}
				if settings.LogLevel != "warn" || !settings.LogPretty {
					t.Errorf("unexpected logging settings %s / %v", settings.LogLevel, settings.LogPretty)
				}
			},
		},
		{
			name:        "empty YAML falls back to defaults",
			yamlContent: "{}\n",
			validate: func(t *testing.T, settings Settings) {
				if settings.ModelFile != common.DefaultModelFile {
					t.Errorf("expected default model file, got %s", settings.ModelFile)
				}
				if settings.ListenPort != common.DefaultListenPort {
					t.Errorf("expected default port, got %d", settings.ListenPort)
				}
				if settings.ClientTimeout != common.DefaultClientTimeout {
					t.Errorf("expected default timeout, got %v", settings.ClientTimeout)
				}
			},
		},
		{
			name: "environment overrides YAML",
			yamlContent: `
server:
  port: 9090
`,
			envOverrides: map[string]string{
				common.EnvListenPort:  "9191",
				common.EnvArtifactDir: "/from/env",
			},
			validate: func(t *testing.T, settings Settings) {
				if settings.ListenPort != 9191 {
					t.Errorf("expected env port 9191, got %d", settings.ListenPort)
				}
				if settings.ArtifactDir != "/from/env" {
					t.Errorf("expected env artifact dir, got %s", settings.ArtifactDir)
				}
			},
		},
		{
			name:        "invalid YAML",
			yamlContent: "server: [unterminated",
			wantErr:     true,
		},
		{
			name: "invalid explainer in YAML",
			yamlContent: `
explain:
  mode: "kernel"
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearTestEnv(t)

			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yamlContent), 0o600); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			for key, value := range tt.envOverrides {
				t.Setenv(key, value)
			}

			settings, err := loadFromYAML(path)

			if tt.wantErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}

			if !tt.wantErr && tt.validate != nil {
				tt.validate(t, settings)
			}
		})
	}
}

func TestLoadFromYAML_MissingFile(t *testing.T) {
	clearTestEnv(t)

	_, err := loadFromYAML(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_UsesConfigFileEnv(t *testing.T) {
	clearTestEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9443\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv(common.EnvConfigFile, path)

	settings, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.ListenPort != 9443 {
		t.Errorf("expected port from config file, got %d", settings.ListenPort)
	}
}
