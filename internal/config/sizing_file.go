package config

import (
	"encoding/json"
	"os"

	apperrors "github.com/quangminh-dev/dynamic-sizing-backtest/internal/errors"
	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/sizing"
)

// LoadSizingConfig reads a JSON parameter file on top of the default
// sizing parameters. Fields absent from the file keep their defaults;
// the merged result is validated before use.
func LoadSizingConfig(path string) (*sizing.Config, error) {
	cfg := sizing.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigurationError("config", "load_sizing", err.Error())
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.NewConfigurationError("config", "parse_sizing", err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
