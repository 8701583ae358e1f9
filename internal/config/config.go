package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	Board     BoardConfig     `yaml:"board"`
	Fleet     FleetConfig     `yaml:"fleet"`
	Storage   StorageConfig   `yaml:"storage"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// BoardConfig: размеры кубоида
type BoardConfig struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

// FleetConfig: состав флота каждого игрока
type FleetConfig struct {
	Sizes    []int `yaml:"sizes"`
	MaxShips int   `yaml:"max_ships"` // 0: без ограничения
	Seed     int64 `yaml:"seed"`
}

// StorageConfig выбирает бэкенд хранения снимков полей
type StorageConfig struct {
	Backend    string `yaml:"backend"` // memory | badger | redis
	BadgerPath string `yaml:"badger_path"`
	RedisAddr  string `yaml:"redis_addr"`
	RedisPass  string `yaml:"redis_password"`
	RedisDB    int    `yaml:"redis_db"`
	KeyPrefix  string `yaml:"key_prefix"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"` // пусто: in-memory шина
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
	Buffer    int    `yaml:"buffer"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // пусто: HTTP эндпоинт не запускается
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

// Default возвращает конфигурацию по умолчанию: поле 8x8x8 и классический флот
func Default() *Config {
	return &Config{
		Board: BoardConfig{X: 8, Y: 8, Z: 8},
		Fleet: FleetConfig{Sizes: []int{5, 4, 3, 3, 2}, MaxShips: 5, Seed: 1},
		Storage: StorageConfig{
			Backend:    "memory",
			BadgerPath: "data",
			RedisAddr:  "localhost:6379",
			KeyPrefix:  "battleship:board:",
		},
		EventBus:  EventBusConfig{Stream: "BATTLESHIP", Retention: 24, Buffer: 256},
		Telemetry: TelemetryConfig{ServiceName: "battleship3d"},
		Logging:   LoggingConfig{Level: "info", Dir: "logs"},
	}
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать из ENV BATTLESHIP_CONFIG или возвращает Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("BATTLESHIP_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv применяет переменные окружения с приоритетом: config -> env -> default
func (c *Config) applyEnv() {
	c.Storage.Backend = getStringWithEnvFallback(c.Storage.Backend, "BATTLESHIP_STORAGE", "memory")
	c.Storage.RedisAddr = getStringWithEnvFallback(c.Storage.RedisAddr, "REDIS_ADDR", "localhost:6379")
	c.EventBus.URL = getStringWithEnvFallback(c.EventBus.URL, "NATS_URL", "")
	c.Metrics.Addr = getStringWithEnvFallback(c.Metrics.Addr, "BATTLESHIP_METRICS_ADDR", "")
	c.Logging.Level = getStringWithEnvFallback(c.Logging.Level, "BATTLESHIP_LOG_LEVEL", "info")
	c.EventBus.Buffer = getIntWithEnvFallback(c.EventBus.Buffer, "BATTLESHIP_EVENT_BUFFER", 256)
}

// Validate проверяет размеры поля и флота
func (c *Config) Validate() error {
	var errs []error

	if c.Board.X < 1 || c.Board.Y < 1 || c.Board.Z < 1 {
		errs = append(errs, fmt.Errorf("board dimensions %dx%dx%d must be >= 1", c.Board.X, c.Board.Y, c.Board.Z))
	}
	for i, size := range c.Fleet.Sizes {
		if size < 1 {
			errs = append(errs, fmt.Errorf("fleet.sizes[%d] = %d must be >= 1", i, size))
		}
	}
	if c.Fleet.MaxShips < 0 {
		errs = append(errs, fmt.Errorf("fleet.max_ships = %d must be >= 0", c.Fleet.MaxShips))
	}
	if c.Fleet.MaxShips > 0 && len(c.Fleet.Sizes) > c.Fleet.MaxShips {
		errs = append(errs, fmt.Errorf("fleet has %d ships, max_ships is %d", len(c.Fleet.Sizes), c.Fleet.MaxShips))
	}
	switch c.Storage.Backend {
	case "memory", "badger", "redis":
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage.Backend))
	}

	return errors.Join(errs...)
}

// getStringWithEnvFallback: если значение задано в конфиге, используем его
func getStringWithEnvFallback(configValue, envVar, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return defaultValue
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configValue int, envVar string, defaultValue int) int {
	// Если значение задано в конфиге и больше 0, используем его
	if configValue > 0 {
		return configValue
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}

	// Используем дефолтное значение
	return defaultValue
}
