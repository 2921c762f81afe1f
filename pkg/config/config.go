package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix scopes every environment variable consumed by the service.
const EnvPrefix = "sportshop"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	Site          SiteConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Invoice       InvoiceConfig
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
	Env          string `envconfig:"SPORTSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"SPORTSHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SPORTSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SPORTSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// SiteConfig carries the storefront identity that the legacy admin kept as
// process-wide mutable state. Here it is injected once at bootstrap.
type SiteConfig struct {
	Title  string `envconfig:"SPORTSHOP_SITE_TITLE" default:"Sportshop"`
	Header string `envconfig:"SPORTSHOP_SITE_HEADER" default:"Спортивный магазин"`
}

type DBConfig struct {
	DSN    string `envconfig:"SPORTSHOP_DB_DSN"`
	Driver string `envconfig:"SPORTSHOP_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"SPORTSHOP_DB_HOST"`
	Port     int    `envconfig:"SPORTSHOP_DB_PORT" default:"5432"`
	User     string `envconfig:"SPORTSHOP_DB_USER"`
	Password string `envconfig:"SPORTSHOP_DB_PASSWORD"`
	Name     string `envconfig:"SPORTSHOP_DB_NAME"`
	SSLMode  string `envconfig:"SPORTSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SPORTSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SPORTSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SPORTSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SPORTSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SPORTSHOP_REDIS_URL"`
	Address      string        `envconfig:"SPORTSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"SPORTSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"SPORTSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SPORTSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SPORTSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SPORTSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SPORTSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SPORTSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SPORTSHOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SPORTSHOP_JWT_ISSUER" default:"sportshop"`
	ExpirationMinutes int    `envconfig:"SPORTSHOP_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTokenTTL returns the access token lifetime.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SPORTSHOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SPORTSHOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SPORTSHOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SPORTSHOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SPORTSHOP_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"SPORTSHOP_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"SPORTSHOP_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"SPORTSHOP_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SPORTSHOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SPORTSHOP_AUTO_MIGRATE" default:"false"`
}

// InvoiceConfig configures PDF invoice rendering.
type InvoiceConfig struct {
	FontPath string `envconfig:"SPORTSHOP_INVOICE_FONT_PATH" default:"assets/fonts/DejaVuSans.ttf"`
	Currency string `envconfig:"SPORTSHOP_INVOICE_CURRENCY_LABEL" default:"руб."`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	required := map[string]string{
		"SPORTSHOP_DB_HOST": db.Host,
		"SPORTSHOP_DB_USER": db.User,
		"SPORTSHOP_DB_NAME": db.Name,
	}
	for _, env := range []string{"SPORTSHOP_DB_HOST", "SPORTSHOP_DB_USER", "SPORTSHOP_DB_NAME"} {
		if required[env] == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("either SPORTSHOP_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
