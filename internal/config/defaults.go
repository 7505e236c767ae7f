package config

// DefaultPath is the configuration file read when --config is not given.
const DefaultPath = ".riskpanes.yml"

// DefaultCORSOrigins allow the local browser on any port.
var DefaultCORSOrigins = []string{
	"http://localhost:*",
	"http://127.0.0.1:*",
}

// DefaultConfig returns a Config with sensible defaults. Empty data and
// content directories mean the files embedded in the binary.
func DefaultConfig() *Config {
	return &Config{
		Host:        "127.0.0.1",
		Port:        8080,
		DBPath:      ".riskpanes/state.db",
		StorageKey:  "riskAnalysisState.v1",
		OutputDir:   "site",
		CORSOrigins: DefaultCORSOrigins,
	}
}
