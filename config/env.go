package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// RunOptions are the CLI run settings. Environment variables provide
// defaults; command-line flags override them.
type RunOptions struct {
	ConfigPath  string `env:"WILDLIFE_CONFIG"`
	Seed        uint64 `env:"WILDLIFE_SEED" envDefault:"42"`
	Species     string `env:"WILDLIFE_SPECIES" envDefault:"red_fox"`
	Region      string `env:"WILDLIFE_REGION"`
	Turns       int    `env:"WILDLIFE_TURNS" envDefault:"208"`
	FastForward bool   `env:"WILDLIFE_FAST_FORWARD"`
	OutputDir   string `env:"WILDLIFE_OUTPUT_DIR"`
	Archive     string `env:"WILDLIFE_ARCHIVE"`
	Succeed     bool   `env:"WILDLIFE_SUCCEED"`
	LogLevel    string `env:"WILDLIFE_LOG_LEVEL" envDefault:"info"`
}

// LoadRunOptions returns run options populated from the environment.
func LoadRunOptions() (RunOptions, error) {
	var opts RunOptions
	if err := ParseEnv(&opts); err != nil {
		return RunOptions{}, err
	}
	return opts, nil
}
