package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the envconfig prefix for every setting.
const EnvPrefix = "SOLOSTACK"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SOLOSTACK_APP_ENV" required:"true"`
	Port         string `envconfig:"SOLOSTACK_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"SOLOSTACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SOLOSTACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"SOLOSTACK_DB_DSN"`

	Host     string `envconfig:"SOLOSTACK_DB_HOST"`
	Port     int    `envconfig:"SOLOSTACK_DB_PORT" default:"5432"`
	User     string `envconfig:"SOLOSTACK_DB_USER"`
	Password string `envconfig:"SOLOSTACK_DB_PASSWORD"`
	Name     string `envconfig:"SOLOSTACK_DB_NAME"`
	SSLMode  string `envconfig:"SOLOSTACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SOLOSTACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SOLOSTACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SOLOSTACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SOLOSTACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	if db.Host == "" {
		missing = append(missing, "SOLOSTACK_DB_HOST")
	}
	if db.User == "" {
		missing = append(missing, "SOLOSTACK_DB_USER")
	}
	if db.Name == "" {
		missing = append(missing, "SOLOSTACK_DB_NAME")
	}
	if len(missing) > 0 {
		return fmt.Errorf("either SOLOSTACK_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:     db.Name,
		RawQuery: "sslmode=" + db.SSLMode,
	}
	db.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"SOLOSTACK_REDIS_URL"`
	Address      string        `envconfig:"SOLOSTACK_REDIS_ADDR"`
	Password     string        `envconfig:"SOLOSTACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SOLOSTACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SOLOSTACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SOLOSTACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SOLOSTACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SOLOSTACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SOLOSTACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SOLOSTACK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SOLOSTACK_JWT_ISSUER" default:"solostack"`
	ExpirationMinutes int    `envconfig:"SOLOSTACK_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// Expiration returns the access token TTL.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SOLOSTACK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SOLOSTACK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SOLOSTACK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SOLOSTACK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SOLOSTACK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SOLOSTACK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SOLOSTACK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SOLOSTACK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SOLOSTACK_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SOLOSTACK_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SOLOSTACK_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SOLOSTACK_AUTO_MIGRATE" default:"false"`
}
