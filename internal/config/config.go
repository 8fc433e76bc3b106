// Package config provides Viper-based configuration loading for the
// simulation server and its tools.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File redirects log output away from stderr, for full-screen front ends.
	File string `mapstructure:"file"`
}

// SimulationConfig controls the fixed-rate runner.
type SimulationConfig struct {
	// TickRate is the number of simulation ticks per second.
	TickRate int `mapstructure:"tick_rate"`
	// ContentDir holds the level YAML files.
	ContentDir string `mapstructure:"content_dir"`
	// ScriptDir is the root of per-level Lua hook directories.
	ScriptDir string `mapstructure:"script_dir"`
	// InstructionLimit caps Lua instructions per hook call; 0 disables it.
	InstructionLimit int `mapstructure:"instruction_limit"`
	// StartLevel is the level the runner opens with.
	StartLevel int `mapstructure:"start_level"`
	// Seed fixes the dice source when non-zero; zero uses crypto randomness.
	Seed uint64 `mapstructure:"seed"`
	// RestartDelay is the pause before a lost level restarts.
	RestartDelay time.Duration `mapstructure:"restart_delay"`
}

// TickInterval returns the wall-clock duration of one tick.
//
// Precondition: TickRate > 0.
func (s SimulationConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(s.TickRate)
}

// SpectatorConfig holds the WebSocket snapshot stream settings.
type SpectatorConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	// BroadcastEvery sends one frame per this many ticks.
	BroadcastEvery int `mapstructure:"broadcast_every"`
	// SendBuffer is the per-client frame queue; a full queue drops frames.
	SendBuffer int `mapstructure:"send_buffer"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (s SpectatorConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ProgressConfig selects the unlock store.
type ProgressConfig struct {
	// Backend is "memory" or "postgres".
	Backend string `mapstructure:"backend"`
}

// Config is the top-level application configuration.
type Config struct {
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Spectator  SpectatorConfig  `mapstructure:"spectator"`
	Progress   ProgressConfig   `mapstructure:"progress"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if c.Progress.Backend == "postgres" {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSpectator(c.Spectator); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateProgress(c.Progress); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.TickRate < 1 || s.TickRate > 1000 {
		errs = append(errs, fmt.Sprintf("simulation.tick_rate must be 1-1000, got %d", s.TickRate))
	}
	if s.ContentDir == "" {
		errs = append(errs, "simulation.content_dir must not be empty")
	}
	if s.InstructionLimit < 0 {
		errs = append(errs, "simulation.instruction_limit must not be negative")
	}
	if s.StartLevel < 1 {
		errs = append(errs, fmt.Sprintf("simulation.start_level must be >= 1, got %d", s.StartLevel))
	}
	if s.RestartDelay < 0 {
		errs = append(errs, "simulation.restart_delay must not be negative")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateSpectator(s SpectatorConfig) error {
	if !s.Enabled {
		return nil
	}
	var errs []string
	if s.Port < 1 || s.Port > 65535 {
		errs = append(errs, fmt.Sprintf("spectator.port must be 1-65535, got %d", s.Port))
	}
	if s.BroadcastEvery < 1 {
		errs = append(errs, fmt.Sprintf("spectator.broadcast_every must be >= 1, got %d", s.BroadcastEvery))
	}
	if s.SendBuffer < 1 {
		errs = append(errs, fmt.Sprintf("spectator.send_buffer must be >= 1, got %d", s.SendBuffer))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateProgress(p ProgressConfig) error {
	switch p.Backend {
	case "memory", "postgres":
		return nil
	}
	return fmt.Errorf("progress.backend must be one of [memory, postgres], got %q", p.Backend)
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "skirmish")
	v.SetDefault("database.password", "skirmish")
	v.SetDefault("database.name", "skirmish")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("simulation.tick_rate", 60)
	v.SetDefault("simulation.content_dir", "content/levels")
	v.SetDefault("simulation.script_dir", "content/scripts")
	v.SetDefault("simulation.instruction_limit", 100000)
	v.SetDefault("simulation.start_level", 1)
	v.SetDefault("simulation.restart_delay", "2s")

	v.SetDefault("spectator.enabled", true)
	v.SetDefault("spectator.host", "0.0.0.0")
	v.SetDefault("spectator.port", 8090)
	v.SetDefault("spectator.broadcast_every", 2)
	v.SetDefault("spectator.send_buffer", 16)

	v.SetDefault("progress.backend", "memory")
}
