package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"penalty-kick/backend/internal/game"
	"penalty-kick/backend/internal/physics"
	"penalty-kick/backend/internal/telemetry"
)

// EnvPrefix префикс переменных окружения: PENALTY_SERVER_ADDR и т.д.
const EnvPrefix = "PENALTY"

// ErrInvalidConfig конфигурация не прошла проверку
var ErrInvalidConfig = errors.New("invalid config")

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	StaticDir      string        `mapstructure:"static_dir"`
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
}

// GameConfig настройки игрового цикла
type GameConfig struct {
	TPS               int               `mapstructure:"tps"`
	BroadcastInterval time.Duration     `mapstructure:"broadcast_interval"`
	StatsInterval     time.Duration     `mapstructure:"stats_interval"`
	QueueSize         int               `mapstructure:"queue_size"`
	Keeper            game.KeeperConfig `mapstructure:"keeper"`
	Defaults          game.Parameters   `mapstructure:"defaults"`
}

// LogConfig настройки логирования
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig настройки буфера телеметрии
type TelemetryConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

// Config конфигурация сервиса
type Config struct {
	Server    ServerConfig           `mapstructure:"server"`
	Game      GameConfig             `mapstructure:"game"`
	Log       LogConfig              `mapstructure:"log"`
	Physics   physics.Config         `mapstructure:"physics"`
	Telemetry TelemetryConfig        `mapstructure:"telemetry"`
	Influx    telemetry.InfluxConfig `mapstructure:"influx"`
}

// Load читает конфигурацию: значения по умолчанию, затем файл (если указан и существует),
// затем переменные окружения.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("error reading config file %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.static_dir", "./dist")
	v.SetDefault("server.command_timeout", time.Second)
	v.SetDefault("server.ping_interval", 10*time.Second)

	v.SetDefault("game.tps", game.DefaultTPS)
	v.SetDefault("game.broadcast_interval", 50*time.Millisecond)
	v.SetDefault("game.stats_interval", 30*time.Second)
	v.SetDefault("game.queue_size", game.DefaultQueueSize)

	keeper := game.DefaultKeeperConfig()
	v.SetDefault("game.keeper.speed", keeper.Speed)
	v.SetDefault("game.keeper.limit", keeper.Limit)
	v.SetDefault("game.keeper.offset", keeper.Offset)

	params := game.DefaultParameters()
	v.SetDefault("game.defaults.speed", params.Speed)
	v.SetDefault("game.defaults.spin", params.Spin)
	v.SetDefault("game.defaults.wind_speed", params.WindSpeed)
	v.SetDefault("game.defaults.wind_dir", params.WindDir)
	v.SetDefault("game.defaults.target_x", params.TargetX)
	v.SetDefault("game.defaults.target_y", params.TargetY)
	v.SetDefault("game.defaults.planet", params.Planet)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	phys := physics.DefaultConfig()
	v.SetDefault("physics.ball_radius", phys.BallRadius)
	v.SetDefault("physics.mass", phys.Mass)
	v.SetDefault("physics.base_air_density", phys.BaseAirDensity)
	v.SetDefault("physics.wind_coefficient", phys.WindCoefficient)
	v.SetDefault("physics.lateral_spin", phys.LateralSpin)
	v.SetDefault("physics.hard_bounce_speed", phys.HardBounceSpeed)
	v.SetDefault("physics.restitution", phys.Restitution)
	v.SetDefault("physics.impact_damping", phys.ImpactDamping)
	v.SetDefault("physics.stop_speed", phys.StopSpeed)
	v.SetDefault("physics.live_friction", phys.LiveFriction)
	v.SetDefault("physics.predict_friction", phys.PredictFriction)
	v.SetDefault("physics.predict_step", phys.PredictStep)
	v.SetDefault("physics.predict_samples", phys.PredictSamples)
	v.SetDefault("physics.trail_cap", phys.TrailCap)
	v.SetDefault("physics.goal_z", phys.GoalZ)

	v.SetDefault("telemetry.max_entries", telemetry.DefaultMaxEntries)

	influx := telemetry.DefaultInfluxConfig()
	v.SetDefault("influx.enabled", influx.Enabled)
	v.SetDefault("influx.url", influx.URL)
	v.SetDefault("influx.token", influx.Token)
	v.SetDefault("influx.org", influx.Org)
	v.SetDefault("influx.bucket", influx.Bucket)
	v.SetDefault("influx.batch_size", influx.BatchSize)
	v.SetDefault("influx.flush_interval", influx.FlushInterval)
}

// Validate проверяет значения, без которых сервис не запустится
func (c *Config) Validate() error {
	switch {
	case c.Game.TPS <= 0:
		return fmt.Errorf("%w: game.tps must be positive, got %d", ErrInvalidConfig, c.Game.TPS)
	case c.Game.BroadcastInterval <= 0:
		return fmt.Errorf("%w: game.broadcast_interval must be positive", ErrInvalidConfig)
	case c.Server.Addr == "":
		return fmt.Errorf("%w: server.addr is empty", ErrInvalidConfig)
	case c.Server.CommandTimeout <= 0:
		return fmt.Errorf("%w: server.command_timeout must be positive", ErrInvalidConfig)
	case c.Server.PingInterval <= 0:
		return fmt.Errorf("%w: server.ping_interval must be positive", ErrInvalidConfig)
	case c.Influx.Enabled && c.Influx.URL == "":
		return fmt.Errorf("%w: influx.url is empty", ErrInvalidConfig)
	}
	if err := c.Physics.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
