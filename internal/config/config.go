package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// AppConfig agrupa la configuración del servidor API.
// Se lee de un YAML opcional (CONFIG_PATH) y luego de variables de entorno.
type AppConfig struct {
	ListenAddr   string        `yaml:"listen_addr" env:"LISTEN_ADDR" env-default:":8080"`
	Port         string        `yaml:"port" env:"PORT"` // compat: si viene, pisa ListenAddr
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"5s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`

	Log      LogConfig      `yaml:"log"`
	Postgres PostgresConfig `yaml:"postgres"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Auth     AuthConfig     `yaml:"auth"`
	Admin    AdminConfig    `yaml:"admin"`
	AMQP     AMQPConfig     `yaml:"amqp"`
	MinIO    MinIOConfig    `yaml:"minio"`
	Stats    StatsConfig    `yaml:"stats"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
	App    string `yaml:"app" env:"APP_NAME" env-default:"psyjaciele"`
}

type PostgresConfig struct {
	DSN     string `yaml:"dsn" env:"DB_DSN"`
	Migrate bool   `yaml:"migrate" env:"DB_MIGRATE" env-default:"true"`
}

type MongoConfig struct {
	URI      string `yaml:"uri" env:"MONGODB_URI"`
	Database string `yaml:"database" env:"MONGODB_DB" env-default:"psyjaciele"`
}

type AuthConfig struct {
	// JWTSecret no tiene default: fuera de dev mode es obligatorio.
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"JWT_TTL" env-default:"720h"`
	// DevMode desactiva JWT y acepta X-Debug-User-ID / X-Debug-Role.
	DevMode bool `yaml:"dev_mode" env:"AUTH_DEV_MODE" env-default:"false"`
}

type AdminConfig struct {
	Username string `yaml:"username" env:"ADMIN_USERNAME" env-default:"admin"`
	Email    string `yaml:"email" env:"ADMIN_EMAIL" env-default:"admin@dogapp.com"`
	Password string `yaml:"password" env:"ADMIN_PASSWORD" env-default:"admin123"`
}

type AMQPConfig struct {
	URL   string `yaml:"url" env:"AMQP_URL"`
	Queue string `yaml:"queue" env:"AMQP_QUEUE" env-default:"incident_events"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"incident-images"`
	UseSSL    bool   `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
}

type StatsConfig struct {
	Enabled bool   `yaml:"enabled" env:"STATS_ENABLED" env-default:"true"`
	Cron    string `yaml:"cron" env:"STATS_CRON" env-default:"@every 5m"`
}

// Addr devuelve la dirección efectiva de escucha.
func (c *AppConfig) Addr() string {
	if c == nil {
		return ":8080"
	}
	if p := strings.TrimSpace(c.Port); p != "" {
		return ":" + p
	}
	return c.ListenAddr
}

// Load lee CONFIG_PATH (yaml) si existe y aplica env vars encima.
func Load() (*AppConfig, error) {
	var cfg AppConfig
	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) validate() error {
	if !c.Auth.DevMode && strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("auth.jwt_secret (JWT_SECRET) is required unless auth.dev_mode is enabled")
	}
	return nil
}

// ClientConfig es la configuración del CLI (cmd/psyjaciele).
type ClientConfig struct {
	APIURL  string        `env:"PSYJACIELE_API_URL" env-default:"http://localhost:8080"`
	Home    string        `env:"PSYJACIELE_HOME"`
	Timeout time.Duration `env:"PSYJACIELE_TIMEOUT" env-default:"10s"`
	Log     LogConfig
}

func LoadClient() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read client config: %w", err)
	}
	if strings.TrimSpace(cfg.Home) == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = "."
		}
		cfg.Home = dir + string(os.PathSeparator) + "psyjaciele"
	}
	return &cfg, nil
}
