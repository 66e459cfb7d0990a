// Package config loads ledger configuration from flags or a yaml file.
package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/vadiminshakov/assetbook/internal/entity"
	"gopkg.in/yaml.v3"
)

// GenesisAsset describes an asset class minted at startup by the admin.
type GenesisAsset struct {
	Metadata  string
	Recipient entity.Account
	Amount    decimal.Decimal
}

type Config struct {
	// Admin initial holder of the administrative role.
	Admin entity.Account
	// BaseURI ledger-wide metadata reference.
	BaseURI string
	// URIMode "global" or "per-asset", see the ledger documentation.
	URIMode string
	// WALDir directory for the durable event log.
	WALDir string
	// ListenAddr address of the read-only HTTP API.
	ListenAddr string
	// TLSDomains enables automatic TLS for the listed domains when non-empty.
	TLSDomains []string
	// TLSCacheDir certificate cache directory for automatic TLS.
	TLSCacheDir string
	// Genesis asset classes minted by the admin at startup.
	Genesis []GenesisAsset
	// RunSetup launch the interactive configuration wizard instead of serving.
	RunSetup bool
}

// FileConfig is the yaml representation of Config, shared with the setup wizard.
type FileConfig struct {
	Admin       string         `yaml:"admin"`
	BaseURI     string         `yaml:"base_uri"`
	URIMode     string         `yaml:"uri_mode,omitempty"`
	WALDir      string         `yaml:"wal_dir,omitempty"`
	ListenAddr  string         `yaml:"listen,omitempty"`
	TLSDomains  []string       `yaml:"tls_domains,omitempty"`
	TLSCacheDir string         `yaml:"tls_cache_dir,omitempty"`
	Genesis     []GenesisEntry `yaml:"genesis,omitempty"`
}

type GenesisEntry struct {
	Metadata  string `yaml:"metadata"`
	Recipient string `yaml:"recipient"`
	Amount    string `yaml:"amount"`
}

// Get reads configuration from the -config yaml file when provided,
// otherwise from individual flags.
func Get() (*Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	setup := flag.Bool("setup", false, "run the interactive configuration wizard")
	admin := flag.String("admin", "", "hex address of the initial admin account")
	baseURI := flag.String("baseuri", "", "ledger-wide metadata reference")
	uriMode := flag.String("urimode", "global", "uri resolution mode: global or per-asset")
	walDir := flag.String("waldir", "./wal/events", "directory for the event log")
	listen := flag.String("listen", ":8080", "listen address of the HTTP API")
	flag.Parse()

	if *setup {
		return &Config{RunSetup: true}, nil
	}

	if *configPath != "" {
		return getYaml(*configPath)
	}

	cfg := &Config{
		BaseURI:    *baseURI,
		URIMode:    *uriMode,
		WALDir:     *walDir,
		ListenAddr: *listen,
	}

	account, err := entity.ParseAccount(*admin)
	if err != nil {
		return nil, fmt.Errorf("invalid --admin provided, --admin=%s", *admin)
	}
	cfg.Admin = account

	if err := validateURIMode(cfg.URIMode); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getYaml(path string) (*Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var tmp FileConfig
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return nil, err
	}

	return fromTmp(tmp)
}

// Parse decodes a yaml document into a validated Config.
func Parse(raw []byte) (*Config, error) {
	var tmp FileConfig
	if err := yaml.Unmarshal(raw, &tmp); err != nil {
		return nil, err
	}
	return fromTmp(tmp)
}

func fromTmp(tmp FileConfig) (*Config, error) {
	admin, err := entity.ParseAccount(tmp.Admin)
	if err != nil {
		return nil, fmt.Errorf("incorrect 'admin' param in yaml config: %s, error: %w", tmp.Admin, err)
	}

	if err := validateURIMode(tmp.URIMode); err != nil {
		return nil, err
	}

	cfg := &Config{
		Admin:       admin,
		BaseURI:     tmp.BaseURI,
		URIMode:     tmp.URIMode,
		WALDir:      tmp.WALDir,
		ListenAddr:  tmp.ListenAddr,
		TLSDomains:  tmp.TLSDomains,
		TLSCacheDir: tmp.TLSCacheDir,
	}
	if cfg.URIMode == "" {
		cfg.URIMode = "global"
	}
	if cfg.WALDir == "" {
		cfg.WALDir = "./wal/events"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}

	for _, g := range tmp.Genesis {
		recipient, err := entity.ParseAccount(g.Recipient)
		if err != nil {
			return nil, fmt.Errorf("incorrect 'recipient' param in yaml config: %s, error: %w", g.Recipient, err)
		}
		amount, err := decimal.NewFromString(g.Amount)
		if err != nil {
			return nil, fmt.Errorf("incorrect 'amount' param in yaml config (correct format is 20), error: %w", err)
		}
		if !entity.ValidAmount(amount) {
			return nil, fmt.Errorf("incorrect 'amount' param in yaml config: %s must be a non-negative integer", g.Amount)
		}
		cfg.Genesis = append(cfg.Genesis, GenesisAsset{
			Metadata:  g.Metadata,
			Recipient: recipient,
			Amount:    amount,
		})
	}

	return cfg, nil
}

func validateURIMode(mode string) error {
	switch mode {
	case "", "global", "per-asset":
		return nil
	}
	return fmt.Errorf("incorrect 'uri_mode' param: %s (must be global or per-asset)", mode)
}
