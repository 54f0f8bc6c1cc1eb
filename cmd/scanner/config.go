package main

import (
	"os"

	"github.com/chainscope/tokenscan/internal/providers"
	"github.com/chainscope/tokenscan/internal/refresher"
	"github.com/chainscope/tokenscan/internal/scanner"
	"github.com/chainscope/tokenscan/internal/storage/postgres"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config -
type Config struct {
	LogLevel       string                          `yaml:"log_level" validate:"omitempty,oneof=debug trace info warn error fatal panic"`
	MaxCPU         int                             `yaml:"max_cpu,omitempty" validate:"omitempty,min=1"`
	Scanner        ScannerConfig                   `yaml:"scanner"`
	Refresher      refresher.Config                `yaml:"refresher"`
	DataSources    map[string]providers.DataSource `yaml:"datasources" validate:"required"`
	TwitterMirrors []providers.DataSource          `yaml:"twitter_mirrors" validate:"omitempty,dive"`
	Database       postgres.Config                 `yaml:"database" validate:"required"`
	Cache          *scanner.CacheConfig            `yaml:"cache"`
}

// ScannerConfig -
type ScannerConfig struct {
	HTTPTimeout uint64 `yaml:"http_timeout" validate:"omitempty,min=1"`
	ScanTimeout uint64 `yaml:"scan_timeout" validate:"omitempty,min=1"`
}

// datasource names
const (
	sourceGoPlus        = "goplus"
	sourceHoneypot      = "honeypot"
	sourceCoinGecko     = "coingecko"
	sourceDexScreener   = "dexscreener"
	sourceCovalent      = "covalent"
	sourceGeckoTerminal = "geckoterminal"
	sourceDefiLlama     = "defillama"
	sourceDiscord       = "discord"
	sourceTelegram      = "telegram"
	sourceGitHub        = "github"
)

// DataSource - returns the named source or an empty one when it is
// not configured. Adapters report a missing source per call.
func (c Config) DataSource(name string) providers.DataSource {
	return c.DataSources[name]
}

// Load -
func Load(filename string) (Config, error) {
	var cfg Config

	raw, err := os.ReadFile(filename)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config file")
	}

	expanded := os.ExpandEnv(string(raw))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return cfg, errors.Wrap(err, "parsing config file")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, errors.Wrap(err, "validating config")
	}

	return cfg, nil
}
