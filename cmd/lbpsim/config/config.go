package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// ScenarioConfig describes one bootstrapping pool run: the reserves, the
// weight ramp on both sides, and the trade sizes to quote while walking it.
// Balances are decimal strings so they can carry full 128-bit values.
type ScenarioConfig struct {
	Pool   PoolConfig `yaml:"pool"`
	Ramp   RampConfig `yaml:"ramp"`
	Trades []string   `yaml:"trades"`
}

// PoolConfig holds the pool reserves at the start of the walk.
type PoolConfig struct {
	SellReserve string `yaml:"sell_reserve"`
	BuyReserve  string `yaml:"buy_reserve"`
}

// RampConfig holds the linear weight schedule for both sides of the pool
// over [start_block, end_block].
type RampConfig struct {
	StartBlock      uint64 `yaml:"start_block"`
	EndBlock        uint64 `yaml:"end_block"`
	SellStartWeight string `yaml:"sell_start_weight"`
	SellEndWeight   string `yaml:"sell_end_weight"`
	BuyStartWeight  string `yaml:"buy_start_weight"`
	BuyEndWeight    string `yaml:"buy_end_weight"`
}

// LoadConfig reads a YAML scenario file, expands environment variables and
// validates the result.
func LoadConfig(path string) (*ScenarioConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Expand ${VAR} environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg ScenarioConfig
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

// Validate checks that all required fields are set and the ramp is usable.
func (c *ScenarioConfig) Validate() error {
	if c.Pool.SellReserve == "" {
		return errors.New("pool.sell_reserve is required")
	}
	if c.Pool.BuyReserve == "" {
		return errors.New("pool.buy_reserve is required")
	}
	if c.Ramp.SellStartWeight == "" || c.Ramp.SellEndWeight == "" {
		return errors.New("ramp.sell_start_weight and ramp.sell_end_weight are required")
	}
	if c.Ramp.BuyStartWeight == "" || c.Ramp.BuyEndWeight == "" {
		return errors.New("ramp.buy_start_weight and ramp.buy_end_weight are required")
	}
	if c.Ramp.EndBlock <= c.Ramp.StartBlock {
		return errors.New("ramp.end_block must be greater than ramp.start_block")
	}
	if c.Ramp.EndBlock-c.Ramp.StartBlock > math.MaxUint32 {
		return fmt.Errorf("ramp must not be longer than %d blocks", uint64(math.MaxUint32))
	}
	if len(c.Trades) == 0 {
		return errors.New("trades requires at least one amount")
	}
	return nil
}
