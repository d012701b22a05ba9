package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	Admin         AdminConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	Stripe        StripeConfig
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
	Env          string `envconfig:"FRUITSTAND_APP_ENV" required:"true"`
	Port         string `envconfig:"FRUITSTAND_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FRUITSTAND_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FRUITSTAND_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"FRUITSTAND_DB_DSN"`
	Driver string `envconfig:"FRUITSTAND_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FRUITSTAND_DB_HOST"`
	LegacyPort     int    `envconfig:"FRUITSTAND_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FRUITSTAND_DB_USER"`
	LegacyPassword string `envconfig:"FRUITSTAND_DB_PASSWORD"`
	LegacyName     string `envconfig:"FRUITSTAND_DB_NAME"`
	LegacySSLMode  string `envconfig:"FRUITSTAND_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FRUITSTAND_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FRUITSTAND_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FRUITSTAND_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FRUITSTAND_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FRUITSTAND_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FRUITSTAND_REDIS_ADDR"`
	Password     string        `envconfig:"FRUITSTAND_REDIS_PASSWORD"`
	DB           int           `envconfig:"FRUITSTAND_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FRUITSTAND_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FRUITSTAND_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FRUITSTAND_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FRUITSTAND_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FRUITSTAND_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"FRUITSTAND_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"FRUITSTAND_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"FRUITSTAND_JWT_EXPIRATION_MINUTES" default:"1440"`
	CookieSecure      bool   `envconfig:"FRUITSTAND_JWT_COOKIE_SECURE" default:"false"`
	CookieSameSite    string `envconfig:"FRUITSTAND_JWT_COOKIE_SAMESITE" default:"lax"`
}

// TokenTTL returns the access token lifetime.
func (j JWTConfig) TokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"FRUITSTAND_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"FRUITSTAND_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"FRUITSTAND_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"FRUITSTAND_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"FRUITSTAND_ARGON_KEY_LEN" default:"32"`
}

// AdminConfig seeds the single administrator account at startup.
type AdminConfig struct {
	Email    string `envconfig:"FRUITSTAND_ADMIN_EMAIL"`
	Password string `envconfig:"FRUITSTAND_ADMIN_PASSWORD"`
	Name     string `envconfig:"FRUITSTAND_ADMIN_NAME" default:"Admin"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"FRUITSTAND_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"FRUITSTAND_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"FRUITSTAND_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"FRUITSTAND_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"FRUITSTAND_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"FRUITSTAND_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"FRUITSTAND_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	ClientOrigin string `envconfig:"FRUITSTAND_CLIENT_ORIGIN" default:"http://localhost:3000"`
}

type StripeConfig struct {
	APIKey   string `envconfig:"FRUITSTAND_STRIPE_API_KEY"`
	Env      string `envconfig:"FRUITSTAND_STRIPE_ENV" default:"test"`
	Currency string `envconfig:"FRUITSTAND_STRIPE_CURRENCY" default:"usd"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
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
