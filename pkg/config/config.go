package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	Backend  BackendConfig
	Terminal TerminalConfig
	Auth     AuthConfig
	Sync     SyncConfig
	Assets   AssetsConfig
	Drafts   DraftsConfig
	Catalog  CatalogConfig
	Cron     CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Backend.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"GASPOS_APP_ENV" default:"dev"`
	Port         string `envconfig:"GASPOS_APP_PORT" default:"8787"`
	LogLevel     string `envconfig:"GASPOS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GASPOS_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"GASPOS_LOG_FORMAT" default:"json"`
	AutoMigrate  bool   `envconfig:"GASPOS_AUTO_MIGRATE" default:"true"`
	CORSOrigins  string `envconfig:"GASPOS_CORS_ORIGINS" default:"http://localhost:8787"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	return splitList(a.CORSOrigins)
}

type DBConfig struct {
	Driver string `envconfig:"GASPOS_DB_DRIVER" default:"sqlite"`
	DSN    string `envconfig:"GASPOS_DB_DSN"`
	Path   string `envconfig:"GASPOS_DB_PATH" default:"gaspos.db"`

	Host     string `envconfig:"GASPOS_DB_HOST"`
	Port     int    `envconfig:"GASPOS_DB_PORT" default:"5432"`
	User     string `envconfig:"GASPOS_DB_USER"`
	Password string `envconfig:"GASPOS_DB_PASSWORD"`
	Name     string `envconfig:"GASPOS_DB_NAME"`
	SSLMode  string `envconfig:"GASPOS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GASPOS_DB_MAX_OPEN_CONNS" default:"4"`
	MaxIdleConns    int           `envconfig:"GASPOS_DB_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime time.Duration `envconfig:"GASPOS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GASPOS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the local sqlite store is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"GASPOS_REDIS_URL"`
	Address      string        `envconfig:"GASPOS_REDIS_ADDR"`
	Password     string        `envconfig:"GASPOS_REDIS_PASSWORD"`
	DB           int           `envconfig:"GASPOS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GASPOS_REDIS_POOL_SIZE" default:"4"`
	MinIdleConns int           `envconfig:"GASPOS_REDIS_MIN_IDLE_CONNS" default:"1"`
	DialTimeout  time.Duration `envconfig:"GASPOS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GASPOS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GASPOS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a redis endpoint was configured. Redis is optional on a
// single till and only used for idempotency keys and the shared sync lock.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type BackendConfig struct {
	BaseURL string `envconfig:"GASPOS_BACKEND_BASE_URL" required:"true"`
	Token   string `envconfig:"GASPOS_BACKEND_TOKEN"`
	// Timeout of 0 leaves the transport default in place.
	Timeout    time.Duration `envconfig:"GASPOS_BACKEND_TIMEOUT" default:"0s"`
	HealthPath string        `envconfig:"GASPOS_BACKEND_HEALTH_PATH" default:"/product_category"`
}

func (b BackendConfig) validate() error {
	parsed, err := url.Parse(strings.TrimSpace(b.BaseURL))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", EnvBackendBaseURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%s must be an absolute url", EnvBackendBaseURL)
	}
	return nil
}

type TerminalConfig struct {
	ID          string `envconfig:"GASPOS_TERMINAL_ID" default:"till-1"`
	SalesPoint  string `envconfig:"GASPOS_SALES_POINT" default:"Main"`
	CashierName string `envconfig:"GASPOS_DEFAULT_CASHIER" default:"Cashier"`
}

type AuthConfig struct {
	JWTSecret string `envconfig:"GASPOS_JWT_SECRET"`
	JWTIssuer string `envconfig:"GASPOS_JWT_ISSUER"`
}

type SyncConfig struct {
	Interval            time.Duration `envconfig:"GASPOS_SYNC_INTERVAL" default:"1m"`
	ProbeInterval       time.Duration `envconfig:"GASPOS_SYNC_PROBE_INTERVAL" default:"15s"`
	SubmitRatePerSecond float64       `envconfig:"GASPOS_SYNC_SUBMIT_RPS" default:"5"`
	SubmitBurst         int           `envconfig:"GASPOS_SYNC_SUBMIT_BURST" default:"1"`
	LockKey             string        `envconfig:"GASPOS_SYNC_LOCK_KEY" default:"sync"`
	LockTTL             time.Duration `envconfig:"GASPOS_SYNC_LOCK_TTL" default:"10m"`
}

type AssetsConfig struct {
	Origin       string `envconfig:"GASPOS_ASSETS_ORIGIN" default:"http://localhost:8080"`
	CacheName    string `envconfig:"GASPOS_ASSETS_CACHE_NAME" default:"gaspos-shell"`
	CacheVersion string `envconfig:"GASPOS_ASSETS_CACHE_VERSION" default:"v1"`
	ManifestPath string `envconfig:"GASPOS_ASSETS_MANIFEST"`
	AuthPaths    string `envconfig:"GASPOS_ASSETS_AUTH_PATHS" default:"/login,/verify-otp"`
}

// AuthPathList returns the network-only path prefixes.
func (a AssetsConfig) AuthPathList() []string {
	return splitList(a.AuthPaths)
}

type DraftsConfig struct {
	TTL time.Duration `envconfig:"GASPOS_DRAFT_TTL" default:"24h"`
}

type CatalogConfig struct {
	RefreshInterval time.Duration `envconfig:"GASPOS_CATALOG_REFRESH_INTERVAL" default:"10m"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"GASPOS_CRON_INTERVAL" default:"10m"`
}

func (db *DBConfig) ensureDSN() error {
	if db.IsSQLite() {
		if db.DSN == "" {
			if strings.TrimSpace(db.Path) == "" {
				return fmt.Errorf("%s is required when using sqlite", EnvDBPath)
			}
			db.DSN = db.Path
		}
		return nil
	}
	if !strings.EqualFold(db.Driver, DBDriverPostgres) {
		return fmt.Errorf("unsupported %s %q", EnvDBDriver, db.Driver)
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range postgresDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
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

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
