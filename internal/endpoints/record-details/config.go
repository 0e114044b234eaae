package recorddetails

import "github.com/TreeOfLifeDCC/erga-back-end/internal/common/config"

type Config struct {
	// PrimaryIndex records are addressed by organism name rather than document id.
	PrimaryIndex string
	LookupField  string
}

func LoadConfig(cfg config.PortalConfig) *Config {
	return &Config{
		PrimaryIndex: cfg.PrimaryIndex,
		LookupField:  "organism",
	}
}
