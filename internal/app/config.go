package app

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Defaults for a fresh installation.
const (
	DefaultRelayURL          = "wss://nostr-relay.psfoundation.info"
	DefaultLedgerURL         = "https://free-bch.fullstack.cash"
	DefaultFetchTimeout      = 15 * time.Second
	DefaultSettleDelay       = 2 * time.Second
	DefaultLimit             = 10
	DefaultRequestsPerSecond = 3
	DefaultFeeRate           = 1

	// ConfigFile is read from Home when present.
	ConfigFile = "config.toml"
	// EnvWIF overrides the configured WIF.
	EnvWIF = "BCH_NOSTR_WIF"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	Home              string        `toml:"-"`                   // state directory, e.g. $HOME/.bch-nostr
	RelayURL          string        `toml:"relay_url"`           // e.g. wss://relay.example
	LedgerURL         string        `toml:"ledger_url"`          // bch-api compatible REST base
	LedgerToken       string        `toml:"ledger_token"`        // optional API token
	WIF               string        `toml:"wif"`                 // funding key; may be empty for read-only use
	FetchTimeout      time.Duration `toml:"fetch_timeout"`       // relay wait per fetch
	SettleDelay       time.Duration `toml:"settle_delay"`        // wait before refreshing UTXOs
	DefaultLimit      int           `toml:"default_limit"`       // signals listed by check
	RequestsPerSecond float64       `toml:"requests_per_second"` // ledger client rate limit
	FeeRate           int64         `toml:"fee_rate"`            // sat/byte
	HTTP              *http.Client  `toml:"-"`                   // optional; defaults to http.DefaultClient
}

// DefaultConfig returns the built-in configuration rooted at home.
func DefaultConfig(home string) Config {
	return Config{
		Home:              home,
		RelayURL:          DefaultRelayURL,
		LedgerURL:         DefaultLedgerURL,
		FetchTimeout:      DefaultFetchTimeout,
		SettleDelay:       DefaultSettleDelay,
		DefaultLimit:      DefaultLimit,
		RequestsPerSecond: DefaultRequestsPerSecond,
		FeeRate:           DefaultFeeRate,
	}
}

// DefaultHome is $HOME/.bch-nostr.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bch-nostr"
	}
	return filepath.Join(home, ".bch-nostr")
}

// LoadConfig layers defaults, <home>/config.toml and the environment. A
// missing file is not an error. Values left zero by the file keep their
// defaults.
func LoadConfig(home string) (Config, error) {
	cfg := DefaultConfig(home)

	path := filepath.Join(home, ConfigFile)
	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, errors.Wrapf(err, "config: %s", path)
	}
	cfg.Home = home

	if wif := strings.TrimSpace(os.Getenv(EnvWIF)); wif != "" {
		cfg.WIF = wif
	}
	return cfg, cfg.Validate()
}

// Validate rejects configurations no command could run with.
func (c Config) Validate() error {
	switch {
	case c.Home == "":
		return errors.New("config: home is required")
	case c.FetchTimeout < 0:
		return errors.New("config: fetch_timeout must not be negative")
	case c.SettleDelay < 0:
		return errors.New("config: settle_delay must not be negative")
	case c.DefaultLimit < 0:
		return errors.New("config: default_limit must not be negative")
	}
	return nil
}
