package downloaderspecies

import "github.com/TreeOfLifeDCC/erga-back-end/internal/common/config"

type Config struct {
	Index       string
	Concurrency int
}

func LoadConfig(cfg config.PortalConfig) *Config {
	return &Config{
		Index:       cfg.PrimaryIndex,
		Concurrency: cfg.DownloaderConcurrency,
	}
}
