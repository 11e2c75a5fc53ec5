package config

import (
	"encoding/json"
	"os"

	"github.com/4poc/zgbot/internal/flagx"
	"github.com/4poc/zgbot/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify the timeout either as a string like
// "30s" or as integer nanoseconds. Pointer fields distinguish "absent" from
// zero values, so a partial file only overrides what it names.
type JsonConfig struct {
	BaseURL        *string        `json:"base_url"`
	Listen         []string       `json:"listen"`
	Announce       []string       `json:"announce"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	Workers        *int           `json:"workers"`
	HistoryLimit   *int           `json:"history_limit"`
	ErrorLogLimit  *int           `json:"error_log_limit"`
	RegistryPath   *string        `json:"registry_path"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c or -config flags (flagx.JsonConfigFlags); when
// neither is given, nothing is loaded. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.BaseURL != nil {
		cfg.BaseURL = *jc.BaseURL
	}
	if jc.Listen != nil {
		cfg.Listen = jc.Listen
	}
	if jc.Announce != nil {
		cfg.Announce = jc.Announce
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.Workers != nil {
		cfg.Workers = *jc.Workers
	}
	if jc.HistoryLimit != nil {
		cfg.HistoryLimit = *jc.HistoryLimit
	}
	if jc.ErrorLogLimit != nil {
		cfg.ErrorLogLimit = *jc.ErrorLogLimit
	}
	if jc.RegistryPath != nil {
		cfg.RegistryPath = *jc.RegistryPath
	}
}
