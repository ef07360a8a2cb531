// Package config provides Viper-based configuration loading for the command server.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig holds top-level server settings.
type ServerConfig struct {
	// Name is shown to clients in the greeting banner.
	Name string `mapstructure:"name"`
	// MaxPlayers bounds the number of concurrently connected players.
	MaxPlayers int `mapstructure:"max_players"`
}

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener; 0 picks a free port.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// Output is "stderr", "stdout", or a file path.
	Output string `mapstructure:"output"`
}

// CommandsConfig holds command dispatch and scripting settings.
type CommandsConfig struct {
	// Prefix, when non-empty, must start every command line (e.g. "/").
	Prefix string `mapstructure:"prefix"`
	// Manifest is the path to the scripted command manifest; empty disables scripting.
	Manifest string `mapstructure:"manifest"`
	// ScriptDir is the directory of Lua files backing the manifest.
	ScriptDir string `mapstructure:"script_dir"`
	// InstructionLimit caps Lua opcodes per command invocation; 0 uses the default.
	InstructionLimit int `mapstructure:"instruction_limit"`
}

// ScriptingEnabled reports whether a manifest is configured.
func (c CommandsConfig) ScriptingEnabled() bool {
	return c.Manifest != ""
}

// ConsoleConfig holds settings for the local console REPL.
type ConsoleConfig struct {
	// Prompt is printed before each input line.
	Prompt string `mapstructure:"prompt"`
	// PlayerName is the display name of the local operator.
	PlayerName string `mapstructure:"player_name"`
}

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Telnet   TelnetConfig   `mapstructure:"telnet"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Commands CommandsConfig `mapstructure:"commands"`
	Console  ConsoleConfig  `mapstructure:"console"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	for _, err := range []error{
		validateServer(c.Server),
		validateTelnet(c.Telnet),
		validateLogging(c.Logging),
		validateCommands(c.Commands),
		validateConsole(c.Console),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateServer(s ServerConfig) error {
	var errs []string
	if s.Name == "" {
		errs = append(errs, "server.name must not be empty")
	}
	if s.MaxPlayers < 1 {
		errs = append(errs, fmt.Sprintf("server.max_players must be >= 1, got %d", s.MaxPlayers))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateTelnet(t TelnetConfig) error {
	var errs []string
	if t.Port < 0 || t.Port > 65535 {
		errs = append(errs, fmt.Sprintf("telnet.port must be 0-65535, got %d", t.Port))
	}
	if t.ReadTimeout < 0 {
		errs = append(errs, "telnet.read_timeout must not be negative")
	}
	if t.WriteTimeout < 0 {
		errs = append(errs, "telnet.write_timeout must not be negative")
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
	if l.Output == "" {
		return errors.New("logging.output must not be empty")
	}
	return nil
}

func validateCommands(c CommandsConfig) error {
	var errs []string
	if strings.ContainsAny(c.Prefix, " \t\r\n") {
		errs = append(errs, fmt.Sprintf("commands.prefix must not contain whitespace, got %q", c.Prefix))
	}
	if c.ScriptingEnabled() && c.ScriptDir == "" {
		errs = append(errs, "commands.script_dir must be set when commands.manifest is set")
	}
	if c.InstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("commands.instruction_limit must be >= 0, got %d", c.InstructionLimit))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateConsole(c ConsoleConfig) error {
	if c.PlayerName == "" || strings.ContainsAny(c.PlayerName, " \t") {
		return fmt.Errorf("console.player_name must be a single non-empty word, got %q", c.PlayerName)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with CMDENGINE_ prefix
	v.SetEnvPrefix("CMDENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults installs the default value of every key into v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "cmdengine")
	v.SetDefault("server.max_players", 64)

	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4000)
	v.SetDefault("telnet.read_timeout", "10m")
	v.SetDefault("telnet.write_timeout", "30s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("commands.prefix", "")
	v.SetDefault("commands.manifest", "")
	v.SetDefault("commands.script_dir", "content/scripts")
	v.SetDefault("commands.instruction_limit", 0)

	v.SetDefault("console.prompt", "> ")
	v.SetDefault("console.player_name", "operator")
}
