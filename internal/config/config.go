// Package config manages the global (~/.config/eidoid/config.toml)
// configuration for the persona memory engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
)

// Config holds user-wide settings.
type Config struct {
	// MemoryDir is where the persona record database lives.
	MemoryDir string `toml:"memory_dir"`

	Model     ModelConfig     `toml:"model"`
	Memory    MemoryConfig    `toml:"memory"`
	Context   ContextConfig   `toml:"context"`
	Evolution EvolutionConfig `toml:"evolution"`
	Session   SessionConfig   `toml:"session"`
}

// ModelConfig selects the external conversational model used for replies
// and introspective evolution proposals.
type ModelConfig struct {
	Provider     string `toml:"provider"` // "anthropic" or "openai"
	AnthropicKey string `toml:"anthropic_key"`
	OpenAIKey    string `toml:"openai_key"`
	Name         string `toml:"name"`
}

// MemoryConfig exposes the engine caps. The stated values are policy
// defaults, not hard guarantees of the source material, so they stay
// configurable.
type MemoryConfig struct {
	BufferSize           int     `toml:"buffer_size"`
	MaxFacts             int     `toml:"max_facts"`
	MaxImportantMemories int     `toml:"max_important_memories"`
	InitialConfidence    float64 `toml:"initial_confidence"`
	ConfidenceDelta      float64 `toml:"confidence_delta"`
	FamiliarityStep      int     `toml:"familiarity_step"`
}

// ContextConfig bounds the prompt payload.
type ContextConfig struct {
	MaxTokens      int `toml:"max_tokens"`
	LongTermTokens int `toml:"long_term_tokens"`
}

// EvolutionConfig controls the personality evolution schedule.
type EvolutionConfig struct {
	Period int `toml:"period"` // cycles between evolutions
}

// SessionConfig controls the interactive session loop.
type SessionConfig struct {
	AutoSaveSchedule string `toml:"auto_save_schedule"` // cron spec, empty disables
}

// Default returns sensible defaults.
func Default() Config {
	home, _ := os.UserHomeDir()
	return Config{
		MemoryDir: filepath.Join(home, ".local", "share", "eidoid"),
		Model: ModelConfig{
			Provider: "anthropic",
		},
		Memory: MemoryConfig{
			BufferSize:           12,
			MaxFacts:             100,
			MaxImportantMemories: 50,
			InitialConfidence:    0.6,
			ConfidenceDelta:      0.1,
			FamiliarityStep:      2,
		},
		Context: ContextConfig{
			MaxTokens:      2000,
			LongTermTokens: 600,
		},
		Evolution: EvolutionConfig{
			Period: 7,
		},
		Session: SessionConfig{
			AutoSaveSchedule: "@every 2m",
		},
	}
}

// Path returns the path to the config file.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "eidoid", "config.toml"), nil
}

// Load loads the config, applying defaults for any missing values and
// letting environment variables override file settings.
func Load() (Config, error) {
	cfg := Default()

	path, err := Path()
	if err != nil {
		return applyEnv(cfg), nil // Defaults if we can't determine home dir.
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return applyEnv(cfg), nil // File doesn't exist yet — use defaults.
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return applyEnv(cfg), fmt.Errorf("config: load: %w", err)
	}

	return applyEnv(cfg), nil
}

// applyEnv lets environment variables override file values.
func applyEnv(cfg Config) Config {
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		cfg.Model.AnthropicKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Model.OpenAIKey = v
	}
	if v := os.Getenv("EIDOID_MEMORY_DIR"); v != "" {
		cfg.MemoryDir = v
	}
	if v := os.Getenv("EIDOID_EVOLUTION_PERIOD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Evolution.Period = n
		}
	}
	if v := os.Getenv("EIDOID_MAX_FACTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Memory.MaxFacts = n
		}
	}
	return cfg
}

// Save writes the config to disk.
func Save(cfg Config) error {
	path, err := Path()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("config: mkdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("config: create: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// DBPath returns the path of the persona record database under the
// configured memory directory.
func (c Config) DBPath() string {
	return filepath.Join(c.MemoryDir, "personas.db")
}
