package config

// Config is the top-level riskpanes configuration, corresponding to
// .riskpanes.yml.
type Config struct {
	Host        string   `yaml:"host" koanf:"host"`
	Port        int      `yaml:"port" koanf:"port"`
	DataDir     string   `yaml:"data_dir" koanf:"data_dir"`
	DataBaseURL string   `yaml:"data_base_url" koanf:"data_base_url"`
	ContentDir  string   `yaml:"content_dir" koanf:"content_dir"`
	DBPath      string   `yaml:"db_path" koanf:"db_path"`
	StorageKey  string   `yaml:"storage_key" koanf:"storage_key"`
	OutputDir   string   `yaml:"output_dir" koanf:"output_dir"`
	CORSOrigins []string `yaml:"cors_origins" koanf:"cors_origins"`
}

// DataSource reports where the pages read their JSON data from.
func (c *Config) DataSource() string {
	switch {
	case c.DataBaseURL != "":
		return "url"
	case c.DataDir != "":
		return "dir"
	default:
		return "embedded"
	}
}
