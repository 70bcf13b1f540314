package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full server configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig configures the websocket listener.
type ServerConfig struct {
	Address string `mapstructure:"address"`
	// ClockTick is how often the turn clocks are polled.
	ClockTick time.Duration `mapstructure:"clock_tick"`
}

// GameConfig configures engine behavior.
type GameConfig struct {
	TurnTimeLimit time.Duration `mapstructure:"turn_time_limit"`
	// TurnActionLimit caps major actions per turn; 0 leaves it unenforced.
	TurnActionLimit int    `mapstructure:"turn_action_limit"`
	ReplayDir       string `mapstructure:"replay_dir"`
	RecordReplays   bool   `mapstructure:"record_replays"`
}

// DatabaseConfig configures the optional results store.
type DatabaseConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from the given file, with BORNES_-prefixed
// environment variables overriding file values. A missing file is not an
// error; defaults apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.clock_tick", time.Second)
	v.SetDefault("game.turn_time_limit", 30*time.Second)
	v.SetDefault("game.turn_action_limit", 0)
	v.SetDefault("game.replay_dir", "replays")
	v.SetDefault("game.record_replays", false)
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.url", "")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetEnvPrefix("BORNES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
