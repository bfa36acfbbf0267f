package common

import "time"

// Environment variable keys
const (
	EnvConfigFile    = "CONFIG_FILE"
	EnvArtifactDir   = "ARTIFACT_DIR"
	EnvModelFile     = "MODEL_FILE"
	EnvFeaturesFile  = "FEATURES_FILE"
	EnvExplainer     = "EXPLAINER"
	EnvListenPort    = "LISTEN_PORT"
	EnvServerURL     = "SERVER_URL"
	EnvClientTimeout = "CLIENT_TIMEOUT"
	EnvLogLevel      = "LOG_LEVEL"
	EnvLogPretty     = "LOG_PRETTY"
)

// Configuration defaults
const (
	DefaultArtifactDir   = "."
	DefaultModelFile     = "lightgbm_credit_model.json"
	DefaultFeaturesFile  = "selected_features.json"
	DefaultExplainer     = ExplainerTreeSHAP
	DefaultListenPort    = 8501
	DefaultServerURL     = "http://localhost:8501"
	DefaultLogLevel      = "info"
	DefaultClientTimeout = 10 * time.Second
)

// Explainer modes
const (
	ExplainerTreeSHAP = "treeshap"
	ExplainerNone     = "none"
)

// Validation constants
const (
	MinListenPort = 1024
	MaxListenPort = 65535
)
