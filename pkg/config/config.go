package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "ECOFINDS"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv    = "ECOFINDS_APP_ENV"
	EnvPort      = "ECOFINDS_APP_PORT"
	EnvDBDSN     = "ECOFINDS_DB_DSN"
	EnvDBHost    = "ECOFINDS_DB_HOST"
	EnvDBUser    = "ECOFINDS_DB_USER"
	EnvDBName    = "ECOFINDS_DB_NAME"
	EnvRedisURL  = "ECOFINDS_REDIS_URL"
	EnvJWTSecret = "ECOFINDS_JWT_SECRET"
	EnvJWTIssuer = "ECOFINDS_JWT_ISSUER"
	EnvJWTExpMin = "ECOFINDS_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Cart          CartConfig
	Checkout      CheckoutConfig
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
	Env          string `envconfig:"ECOFINDS_APP_ENV" required:"true"`
	Port         string `envconfig:"ECOFINDS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ECOFINDS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ECOFINDS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ECOFINDS_DB_DSN"`
	Driver string `envconfig:"ECOFINDS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ECOFINDS_DB_HOST"`
	LegacyPort     int    `envconfig:"ECOFINDS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ECOFINDS_DB_USER"`
	LegacyPassword string `envconfig:"ECOFINDS_DB_PASSWORD"`
	LegacyName     string `envconfig:"ECOFINDS_DB_NAME"`
	LegacySSLMode  string `envconfig:"ECOFINDS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ECOFINDS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ECOFINDS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ECOFINDS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ECOFINDS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ECOFINDS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ECOFINDS_REDIS_ADDR"`
	Password     string        `envconfig:"ECOFINDS_REDIS_PASSWORD"`
	DB           int           `envconfig:"ECOFINDS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ECOFINDS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ECOFINDS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ECOFINDS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ECOFINDS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ECOFINDS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"ECOFINDS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"ECOFINDS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"ECOFINDS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"ECOFINDS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"ECOFINDS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"ECOFINDS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"ECOFINDS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"ECOFINDS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"ECOFINDS_ARGON_KEY_LEN" default:"32"`
}

type CartConfig struct {
	MaxLineQuantity int `envconfig:"ECOFINDS_CART_MAX_LINE_QTY" default:"10"`
}

type CheckoutConfig struct {
	LockTTL time.Duration `envconfig:"ECOFINDS_CHECKOUT_LOCK_TTL" default:"15s"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"ECOFINDS_AUTH_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit       int           `envconfig:"ECOFINDS_AUTH_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit    int           `envconfig:"ECOFINDS_AUTH_LOGIN_EMAIL_LIMIT" default:"5"`
	RegisterWindow     time.Duration `envconfig:"ECOFINDS_AUTH_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"ECOFINDS_AUTH_REGISTER_IP_LIMIT" default:"10"`
	RegisterEmailLimit int           `envconfig:"ECOFINDS_AUTH_REGISTER_EMAIL_LIMIT" default:"3"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ECOFINDS_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ECOFINDS_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
