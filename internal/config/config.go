package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

type Config struct {
	LogLevel           string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort           string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	StorageDriver      string    `yaml:"storage-driver" env:"STORAGE_DRIVER" env-default:"redis"`
	Redis              Redis     `yaml:"redis"`
	SQLiteStoragePath  string    `yaml:"sqlite-storage-path" env:"SQLITE_STORAGE_PATH" env-default:"battleship.db"`
	BoardRegenerations int       `yaml:"board-regenerations" env:"BOARD_REGENERATIONS" env-default:"3"`
	Reminders          Reminders `yaml:"reminders"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Reminders struct {
	// Interval of the background scan. Zero disables it; POST /tasks/reminders still works.
	Interval  time.Duration `yaml:"interval" env:"REMINDERS_INTERVAL" env-default:"1h"`
	DedupeTTL time.Duration `yaml:"dedupe-ttl" env:"REMINDERS_DEDUPE_TTL" env-default:"24h"`
}

// MustLoad - load all configurations in config.yml file, environment variables take precedence.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	if err := config.validate(); err != nil {
		panic(fmt.Errorf("invalid config: %w", err))
	}

	return config
}

func (that *Config) validate() error {
	switch that.StorageDriver {
	case StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("unknown storage-driver %q", that.StorageDriver)
	}

	if that.BoardRegenerations < 0 {
		return fmt.Errorf("board-regenerations must not be negative, got %d", that.BoardRegenerations)
	}

	return nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
