// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	HTTP     HTTPConfig     `mapstructure:"http"`
	Database DatabaseConfig `mapstructure:"database"`
	Portal   PortalConfig   `mapstructure:"portal"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type HTTPConfig struct {
	Port            int      `mapstructure:"port"`
	ReadTimeout     int      `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int      `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"` // milliseconds
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type ElasticsearchConfig struct {
	Addresses          []string `mapstructure:"addresses"`
	Username           string   `mapstructure:"username"`
	Password           string   `mapstructure:"password"`
	SSLEnabled         bool     `mapstructure:"ssl_enabled"`
	InsecureSkipVerify bool     `mapstructure:"insecure_skip_verify"`
	RequestTimeout     int      `mapstructure:"request_timeout"` // milliseconds
	URL                string   `mapstructure:"url"`             // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	CacheTTL int    `mapstructure:"cache_ttl"` // seconds
}

// PortalConfig holds the index names and the fixed field sets the query API works with.
type PortalConfig struct {
	PrimaryIndex          string   `mapstructure:"primary_index"`
	SummaryIndex          string   `mapstructure:"summary_index"`
	ArticlesIndex         string   `mapstructure:"articles_index"`
	SearchFields          []string `mapstructure:"search_fields"`
	ExportColumns         []string `mapstructure:"export_columns"`
	ExportFilename        string   `mapstructure:"export_filename"`
	DefaultLimit          int      `mapstructure:"default_limit"`
	MaxLimit              int      `mapstructure:"max_limit"`
	ExportPageSize        int      `mapstructure:"export_page_size"`
	ExportMaxIterations   int      `mapstructure:"export_max_iterations"`
	MaxResultWindow       int      `mapstructure:"max_result_window"`
	DownloaderConcurrency int      `mapstructure:"downloader_concurrency"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
