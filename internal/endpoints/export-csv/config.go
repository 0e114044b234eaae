package exportcsv

import (
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/config"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/criteria"
)

type Config struct {
	Index    string
	Columns  []string
	Filename string
	Defaults criteria.Defaults
}

func LoadConfig(cfg config.PortalConfig) *Config {
	return &Config{
		Index:    cfg.PrimaryIndex,
		Columns:  cfg.ExportColumns,
		Filename: cfg.ExportFilename,
		Defaults: criteria.Defaults{
			Limit: cfg.DefaultLimit,
			Sort:  criteria.DefaultDefaults.Sort,
		},
	}
}
