// config предоставляет структуру конфигурации сервиса и функции
// загрузки из файла/переменных окружения с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Допустимые значения драйверов хранилищ.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

// Config — корневая конфигурация сервиса.
// Источники значений (по убыванию приоритета):
//  1. явный путь через флаг --config;
//  2. путь в переменной окружения CONFIG_PATH;
//  3. файл local.yaml из рабочей директории;
//  4. переменные окружения (cleanenv).
type Config struct {
	Env        string           `yaml:"env" env:"ENV" env-default:"local"`
	HTTP       HTTPConfig       `yaml:"http"`
	Auth       AuthConfig       `yaml:"auth"`
	Storage    StorageConfig    `yaml:"storage"`
	Revocation RevocationConfig `yaml:"revocation"`
	DB         DBConfig         `yaml:"db"`
	Redis      RedisConfig      `yaml:"redis"`
	Bootstrap  BootstrapConfig  `yaml:"bootstrap"`
	Timeouts   TimeoutConfig    `yaml:"timeouts"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	Request time.Duration `yaml:"request" env:"REQUEST_TIMEOUT" env-default:"5s"`
}

// HTTPConfig — сетевые настройки HTTP-сервера.
type HTTPConfig struct {
	Host           string   `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port           string   `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
	BasePath       string   `yaml:"base_path" env:"HTTP_BASE_PATH" env-default:"/api"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-default:"http://localhost:3000"`
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// AuthConfig содержит параметры выпуска и валидации токенов.
// JWTSecret обязателен: запасного секрета по умолчанию нет.
// Leeway продлевает приём токена после exp; на столько же дольше
// хранилища отозванных токенов держат записи.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`
	Issuer    string        `yaml:"issuer" env:"ISSUER" env-default:"school-auth"`
	Audience  []string      `yaml:"audience" env:"AUDIENCE" env-default:"school-records"`
	Leeway    time.Duration `yaml:"leeway" env:"LEEWAY" env-default:"0s"`
}

// StorageConfig выбирает хранилище пользователей: memory | postgres.
type StorageConfig struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"memory"`
}

// RevocationConfig описывает хранилище отозванных токенов: memory | redis | postgres.
// Для нескольких экземпляров сервиса нужен redis или postgres.
type RevocationConfig struct {
	Backend       string        `yaml:"backend" env:"REVOCATION_BACKEND" env-default:"memory"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"REVOCATION_SWEEP_INTERVAL" env-default:"1h"`
	KeyPrefix     string        `yaml:"key_prefix" env:"REVOCATION_KEY_PREFIX" env-default:"auth:revoked:"`
}

// DBConfig — настройки подключения к базе данных.
type DBConfig struct {
	DatabaseURL string `yaml:"db_url" env:"DATABASE_URL"`
}

type RedisConfig struct {
	RedisURL string `yaml:"redis_url" env:"REDIS_URL"`
}

// BootstrapConfig — учётная запись администратора, создаваемая при старте,
// если её ещё нет. Пустой Username отключает bootstrap.
type BootstrapConfig struct {
	AdminUsername    string `yaml:"admin_username" env:"BOOTSTRAP_ADMIN_USERNAME"`
	AdminPassword    string `yaml:"admin_password" env:"BOOTSTRAP_ADMIN_PASSWORD"`
	AdminDisplayName string `yaml:"admin_display_name" env:"BOOTSTRAP_ADMIN_DISPLAY_NAME" env-default:"Administrator"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
// После чтения файла ENV-переменные накладываются поверх значений из YAML.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) (*Config, error) {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("config file does not exist: %q: %w", p, err)
		}

		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to overlay env: %w", err)
		}

		if err := cfg.Validate(); err != nil {
			return nil, err
		}

		return &cfg, nil
	}

	// 1) Явный путь.
	if path != "" {
		return tryRead(path)
	}

	// 2) CONFIG_PATH.
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		return tryRead(envPath)
	}

	// 3) ./local.yaml.
	if _, err := os.Stat("local.yaml"); err == nil {
		return tryRead("local.yaml")
	}

	// 4) Только ENV.
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate проверяет согласованность драйверов и обязательных адресов.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("invalid config: auth.jwt_secret is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("invalid config: auth.token_ttl must be positive")
	}

	if c.Auth.Leeway < 0 {
		return fmt.Errorf("invalid config: auth.leeway must not be negative")
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.DB.DatabaseURL == "" {
			return fmt.Errorf("invalid config: db.db_url is required for storage driver %q", c.Storage.Driver)
		}
	default:
		return fmt.Errorf("invalid config: unknown storage driver %q", c.Storage.Driver)
	}

	switch c.Revocation.Backend {
	case StorageMemory:
	case StorageRedis:
		if c.Redis.RedisURL == "" {
			return fmt.Errorf("invalid config: redis.redis_url is required for revocation backend %q", c.Revocation.Backend)
		}
	case StoragePostgres:
		if c.DB.DatabaseURL == "" {
			return fmt.Errorf("invalid config: db.db_url is required for revocation backend %q", c.Revocation.Backend)
		}
	default:
		return fmt.Errorf("invalid config: unknown revocation backend %q", c.Revocation.Backend)
	}

	return nil
}
