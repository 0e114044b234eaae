// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	DefaultSearchFields  = []string{"organism", "commonName", "symbionts_records.organism.text"}
	DefaultExportColumns = []string{"organism", "commonName", "commonNameSource", "currentStatus"}
)

func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // optional per-environment overlay

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// The deployment contract of the portal backend is ES_HOST / ES_USERNAME / ES_PASSWORD.
func overrideEmptyConfig(cfg *Config) {
	es := &cfg.Database.Elasticsearch
	if len(es.Addresses) == 0 && es.URL == "" {
		if val := os.Getenv("ES_HOST"); val != "" {
			es.Addresses = strings.Split(val, ",")
		}
	}
	if es.Username == "" {
		if val := os.Getenv("ES_USERNAME"); val != "" {
			es.Username = val
		}
	}
	if es.Password == "" {
		if val := os.Getenv("ES_PASSWORD"); val != "" {
			es.Password = val
		}
	}
	if es.URL == "" && len(es.Addresses) > 0 {
		es.URL = es.Addresses[0]
	}

	if cfg.Database.Redis.Address == "" {
		if val := os.Getenv("REDIS_ADDRESS"); val != "" {
			cfg.Database.Redis.Address = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "portal-api"
	}

	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8000
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15000
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 300000 // bulk exports can take minutes
	}
	if cfg.HTTP.ShutdownTimeout == 0 {
		cfg.HTTP.ShutdownTimeout = 30000
	}
	if len(cfg.HTTP.AllowedOrigins) == 0 {
		cfg.HTTP.AllowedOrigins = []string{"*"}
	}

	if cfg.Database.Elasticsearch.RequestTimeout == 0 {
		cfg.Database.Elasticsearch.RequestTimeout = 60000
	}
	if cfg.Database.Redis.CacheTTL == 0 {
		cfg.Database.Redis.CacheTTL = 300
	}

	p := &cfg.Portal
	if p.PrimaryIndex == "" {
		p.PrimaryIndex = "data_portal"
	}
	if p.SummaryIndex == "" {
		p.SummaryIndex = "summary"
	}
	if p.ArticlesIndex == "" {
		p.ArticlesIndex = "articles"
	}
	if len(p.SearchFields) == 0 {
		p.SearchFields = append([]string(nil), DefaultSearchFields...)
	}
	if len(p.ExportColumns) == 0 {
		p.ExportColumns = append([]string(nil), DefaultExportColumns...)
	}
	if p.ExportFilename == "" {
		p.ExportFilename = p.PrimaryIndex + ".csv"
	}
	if p.DefaultLimit == 0 {
		p.DefaultLimit = 15
	}
	if p.MaxLimit == 0 {
		p.MaxLimit = 10000
	}
	if p.ExportPageSize == 0 {
		p.ExportPageSize = 10000
	}
	if p.ExportMaxIterations == 0 {
		p.ExportMaxIterations = 100
	}
	if p.MaxResultWindow == 0 {
		p.MaxResultWindow = 10000
	}
	if p.DownloaderConcurrency == 0 {
		p.DownloaderConcurrency = 4
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if len(cfg.Database.Elasticsearch.Addresses) == 0 && cfg.Database.Elasticsearch.URL == "" {
		return fmt.Errorf("database.elasticsearch.addresses or url is required")
	}

	if cfg.Database.Redis.Enabled && cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required when redis is enabled")
	}

	if cfg.HTTP.Port <= 0 || cfg.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", cfg.HTTP.Port)
	}

	if cfg.Portal.DefaultLimit > cfg.Portal.MaxLimit {
		return fmt.Errorf("portal.default_limit (%d) exceeds portal.max_limit (%d)",
			cfg.Portal.DefaultLimit, cfg.Portal.MaxLimit)
	}

	return nil
}
