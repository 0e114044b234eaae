package downloaderutility

import "github.com/TreeOfLifeDCC/erga-back-end/internal/common/config"

type Config struct {
	Index string
}

func LoadConfig(cfg config.PortalConfig) *Config {
	return &Config{Index: cfg.PrimaryIndex}
}
