package main

import (
	"github.com/lox/setforbots/internal/config"
)

// GameFlags are the settings every game command accepts. Flags that are set
// win over the config file and the environment.
type GameFlags struct {
	Config        string `kong:"default='setforbots.hcl',type='path',help='HCL configuration file (ignored when missing)'"`
	Players       *int   `kong:"help='Number of players, humans included'"`
	Seed          *int64 `kong:"help='Deterministic RNG seed (optional)'"`
	TurnTimeoutMs *int   `kong:"help='Round length in milliseconds'"`
	Hints         bool   `kong:"help='Log every set on the board after each deal'"`
	Debug         bool   `kong:"help='Enable debug logging'"`
}

func (f GameFlags) load() (config.Config, error) {
	cfg, err := config.Load(f.Config)
	if err != nil {
		return config.Config{}, err
	}
	if f.Players != nil {
		cfg.Players = *f.Players
	}
	if f.Seed != nil {
		cfg.Seed = *f.Seed
	}
	if f.TurnTimeoutMs != nil {
		cfg.TurnTimeoutMs = *f.TurnTimeoutMs
	}
	if f.Hints {
		cfg.Hints = true
	}
	return cfg, nil
}
