package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/lab1702/starbattle/game"
)

// EnvPrefix prefixes every environment override, e.g. STARBATTLE_SERVER_ADDR
const EnvPrefix = "STARBATTLE"

// ErrInvalid is returned when a loaded configuration fails validation
var ErrInvalid = errors.New("invalid configuration")

// Config is the main configuration struct combining all sub-configs
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Logging  LoggingConfig     `mapstructure:"logging"`
	Battle   game.BattleConfig `mapstructure:"battle"`
	Simulate SimulateConfig    `mapstructure:"simulate"`
}

// ServerConfig configures the snapshot server and its frame loop
type ServerConfig struct {
	Addr           string   `mapstructure:"addr" validate:"required"`
	TickRate       int      `mapstructure:"tick_rate" validate:"min=1,max=240"`
	MaxDelta       float64  `mapstructure:"max_delta" validate:"gt=0,lte=1"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	FireRateLimit  float64  `mapstructure:"fire_rate_limit" validate:"gt=0"`
	FireBurst      int      `mapstructure:"fire_burst" validate:"min=1"`
	SendBuffer     int      `mapstructure:"send_buffer" validate:"min=1"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

// SimulateConfig configures headless runs
type SimulateConfig struct {
	Ticks int     `mapstructure:"ticks" validate:"min=1"`
	Delta float64 `mapstructure:"delta" validate:"gt=0,lte=1"`
	Seed  uint64  `mapstructure:"seed"`
	Runs  int     `mapstructure:"runs" validate:"min=1"`
}

// registerDefaults sets default values on v so that every key is known to
// viper and can be overridden from the environment.
func registerDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.tick_rate", 60)
	v.SetDefault("server.max_delta", 0.1)
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("server.fire_rate_limit", 5.0)
	v.SetDefault("server.fire_burst", 3)
	v.SetDefault("server.send_buffer", 64)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Zero battle fields fall back to the engine defaults
	v.SetDefault("battle.canvas_width", 0)
	v.SetDefault("battle.canvas_height", 0)
	v.SetDefault("battle.rebel_ship_count", 0)
	v.SetDefault("battle.imperial_ship_count", 0)
	v.SetDefault("battle.ship_speed", 0)
	v.SetDefault("battle.projectile_speed", 0)
	v.SetDefault("battle.fire_rate", 0)
	v.SetDefault("battle.projectile_damage", 0)
	v.SetDefault("battle.explosion_duration", 0)
	v.SetDefault("battle.respawn_delay", 0)

	v.SetDefault("simulate.ticks", 3600)
	v.SetDefault("simulate.delta", 1.0/60)
	v.SetDefault("simulate.seed", 42)
	v.SetDefault("simulate.runs", 1)
}

// LoadConfig loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. Config file (starbattle.yaml, or configPath when given)
// 3. Defaults (lowest priority)
func LoadConfig(configPath string) (*Config, error) {
	// Load .env file if it exists (doesn't error if missing)
	_ = godotenv.Load()

	v := viper.New()
	registerDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("starbattle")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is OK - we'll use env vars and defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	SetDefaults(&cfg)

	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is configured
func Default() *Config {
	cfg := &Config{}
	SetDefaults(cfg)
	return cfg
}
