// Package config loads game settings from an HCL file and the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/setforbots/internal/setmath"
)

// EnvPrefix prefixes every environment override, e.g. SETFORBOTS_PLAYERS.
const EnvPrefix = "SETFORBOTS_"

// MaxHumanPlayers is the number of keyboard layouts the terminal UI offers.
const MaxHumanPlayers = 2

// Config represents the complete game configuration
type Config struct {
	DeckSize           int    `hcl:"deck_size,optional" env:"DECK_SIZE"`
	BoardSize          int    `hcl:"board_size,optional" env:"BOARD_SIZE"`
	CombinationSize    int    `hcl:"combination_size,optional" env:"COMBINATION_SIZE"`
	FeatureCount       int    `hcl:"feature_count,optional" env:"FEATURE_COUNT"`
	Players            int    `hcl:"players,optional" env:"PLAYERS"`
	HumanPlayers       int    `hcl:"human_players,optional" env:"HUMAN_PLAYERS"`
	TurnTimeoutMs      int    `hcl:"turn_timeout_ms,optional" env:"TURN_TIMEOUT_MS"`
	TurnWarningMs      int    `hcl:"turn_warning_ms,optional" env:"TURN_WARNING_MS"`
	PointFreezeMs      int    `hcl:"point_freeze_ms,optional" env:"POINT_FREEZE_MS"`
	PenaltyFreezeMs    int    `hcl:"penalty_freeze_ms,optional" env:"PENALTY_FREEZE_MS"`
	BoardDelayMs       int    `hcl:"board_delay_ms,optional" env:"BOARD_DELAY_MS"`
	StimulusIntervalMs int    `hcl:"stimulus_interval_ms,optional" env:"STIMULUS_INTERVAL_MS"`
	Hints              bool   `hcl:"hints,optional" env:"HINTS"`
	Seed               int64  `hcl:"seed,optional" env:"SEED"`
	LogLevel           string `hcl:"log_level,optional" env:"LOG_LEVEL"`
}

// Default returns the classic game: 81 cards, 12 slots, sets of 3.
func Default() Config {
	return Config{
		DeckSize:           81,
		BoardSize:          12,
		CombinationSize:    3,
		FeatureCount:       4,
		Players:            2,
		TurnTimeoutMs:      60000,
		TurnWarningMs:      5000,
		PointFreezeMs:      1000,
		PenaltyFreezeMs:    3000,
		StimulusIntervalMs: 50,
		LogLevel:           "info",
	}
}

// Load reads configuration from an HCL file, falling back to defaults when
// the file does not exist, and then applies environment overrides.
func Load(filename string) (Config, error) {
	cfg := Default()
	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			if cfg, err = parseFile(filename); err != nil {
				return Config{}, err
			}
		} else if !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("stat config %s: %w", filename, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseFile(filename string) (Config, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}
	cfg.applyDefaults()
	return cfg, nil
}

// applyDefaults fills every zero value that has a non-zero default.
func (c *Config) applyDefaults() {
	d := Default()
	if c.DeckSize == 0 {
		c.DeckSize = d.DeckSize
	}
	if c.BoardSize == 0 {
		c.BoardSize = d.BoardSize
	}
	if c.CombinationSize == 0 {
		c.CombinationSize = d.CombinationSize
	}
	if c.FeatureCount == 0 {
		c.FeatureCount = d.FeatureCount
	}
	if c.Players == 0 {
		c.Players = d.Players
	}
	if c.TurnTimeoutMs == 0 {
		c.TurnTimeoutMs = d.TurnTimeoutMs
	}
	if c.TurnWarningMs == 0 {
		c.TurnWarningMs = d.TurnWarningMs
	}
	if c.PointFreezeMs == 0 {
		c.PointFreezeMs = d.PointFreezeMs
	}
	if c.PenaltyFreezeMs == 0 {
		c.PenaltyFreezeMs = d.PenaltyFreezeMs
	}
	if c.StimulusIntervalMs == 0 {
		c.StimulusIntervalMs = d.StimulusIntervalMs
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// ApplyEnv overrides fields from SETFORBOTS_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate validates the game configuration
func (c Config) Validate() error {
	if c.CombinationSize < 2 {
		return fmt.Errorf("combination size must be at least 2, got %d", c.CombinationSize)
	}
	if c.FeatureCount < 1 {
		return fmt.Errorf("feature count must be at least 1, got %d", c.FeatureCount)
	}
	rules, err := c.Rules()
	if err != nil {
		return err
	}
	if c.DeckSize < 0 || c.DeckSize > rules.Size() {
		return fmt.Errorf("deck size must be between 0 and %d, got %d", rules.Size(), c.DeckSize)
	}
	if c.BoardSize < c.CombinationSize {
		return fmt.Errorf("board size %d cannot hold a combination of %d", c.BoardSize, c.CombinationSize)
	}
	if c.Players < 1 {
		return fmt.Errorf("at least one player is required, got %d", c.Players)
	}
	if c.HumanPlayers < 0 || c.HumanPlayers > min(c.Players, MaxHumanPlayers) {
		return fmt.Errorf("human players must be between 0 and %d, got %d", min(c.Players, MaxHumanPlayers), c.HumanPlayers)
	}
	if c.TurnTimeoutMs <= 0 {
		return fmt.Errorf("turn timeout must be positive, got %dms", c.TurnTimeoutMs)
	}
	if c.TurnWarningMs < 0 || c.TurnWarningMs > c.TurnTimeoutMs {
		return fmt.Errorf("turn warning must be between 0 and the turn timeout, got %dms", c.TurnWarningMs)
	}
	for name, v := range map[string]int{
		"point freeze":      c.PointFreezeMs,
		"penalty freeze":    c.PenaltyFreezeMs,
		"board delay":       c.BoardDelayMs,
		"stimulus interval": c.StimulusIntervalMs,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %dms", name, v)
		}
	}
	return nil
}

// Rules returns the validity math for the configured deck shape.
func (c Config) Rules() (setmath.Deck, error) {
	return setmath.NewDeck(c.CombinationSize, c.FeatureCount)
}

func (c Config) TurnTimeout() time.Duration   { return ms(c.TurnTimeoutMs) }
func (c Config) TurnWarning() time.Duration   { return ms(c.TurnWarningMs) }
func (c Config) PointFreeze() time.Duration   { return ms(c.PointFreezeMs) }
func (c Config) PenaltyFreeze() time.Duration { return ms(c.PenaltyFreezeMs) }
func (c Config) BoardDelay() time.Duration    { return ms(c.BoardDelayMs) }

func (c Config) StimulusInterval() time.Duration { return ms(c.StimulusIntervalMs) }

func ms(v int) time.Duration {
	return time.Duration(v) * time.Millisecond
}
