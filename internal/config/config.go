// Package config holds runtime settings for the bot. Values are layered:
// defaults, then a JSON file (-c/-config), then command-line flags; later
// sources win.
package config

import "time"

// Config holds runtime settings for the bot.
//
// Fields:
//   - BaseURL: base URL of the zeitgeist installation.
//   - Listen: channels watched for media links and shortcuts.
//   - Announce: channels new items are announced to.
//   - RequestTimeout: per-request timeout for API calls; a timeout surfaces
//     as a connection error, never as a hang.
//   - Workers: upper bound on concurrently executing remote operations.
//   - HistoryLimit: per-channel cap on retained history entries (0 = unbounded).
//   - ErrorLogLimit: per-channel cap on recorded submission failures.
//   - RegistryPath: path of the SQLite registry database.
type Config struct {
	BaseURL        string
	Listen         []string
	Announce       []string
	RequestTimeout time.Duration
	Workers        int
	HistoryLimit   int
	ErrorLogLimit  int
	RegistryPath   string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:4567/"
	c.Listen = []string{"#example"}
	c.Announce = []string{"#example"}
	c.RequestTimeout = 30 * time.Second
	c.Workers = 4
	c.HistoryLimit = 1000
	c.ErrorLogLimit = 10
	c.RegistryPath = "zgbot.db"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
