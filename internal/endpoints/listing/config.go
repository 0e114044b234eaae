package listing

import (
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/config"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/criteria"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/querybuilder"
)

type Config struct {
	ArticlesIndex string
	Defaults      criteria.Defaults
	MaxLimit      int
}

func LoadConfig(cfg config.PortalConfig) *Config {
	return &Config{
		ArticlesIndex: cfg.ArticlesIndex,
		Defaults: criteria.Defaults{
			Limit: cfg.DefaultLimit,
			Sort:  criteria.DefaultDefaults.Sort,
		},
		MaxLimit: cfg.MaxLimit,
	}
}

// AggregationFields picks the facet set for index.
func (c *Config) AggregationFields(index string) []string {
	if c.ArticlesIndex != "" && index == c.ArticlesIndex {
		return querybuilder.ArticlesAggregations
	}
	return querybuilder.DataPortalAggregations
}
