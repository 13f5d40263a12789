package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/riskibarqy/gaa-fixtures/internal/platform/logging"
)

const (
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
	LogLevel           logging.Level
	LogFormat          logging.Format
	Debug              bool

	StoreDriver        string
	DBURL              string
	DBBinaryParameters bool
	SQLitePath         string
	CacheEnabled       bool
	CacheTTL           time.Duration
	DataDir            string

	SourceURL          string
	ScrapeInterval     time.Duration
	ScrapeHeadless     bool
	ScrapeStepTimeout  time.Duration
	ScrapeInitialWait  time.Duration
	ScrapeIdleTimeout  time.Duration
	ScrapeMaxRetries   int
	ScrapeMaxNoNew     int
	ScrapeMaxCycles    int
	ScrapeUserDataDir  string
	SelectorsFile      string
	SourceTimezone     string
	SourceLocation     *time.Location
	SourceProbeTimeout time.Duration

	SchedulerEnabled bool
	CrawlCron        string
	RetentionCron    string
	RetentionDays    int

	LiveEnabled                bool
	LiveCron                   string
	LiveSectionURLs            []string
	LiveTimeout                time.Duration
	LiveMaxRetries             int
	LiveMaxWorkers             int
	LiveRecentWindow           time.Duration
	LiveCircuitEnabled         bool
	LiveCircuitFailureCount    int
	LiveCircuitOpenTimeout     time.Duration
	LiveCircuitHalfOpenMaxReq  int
	StoreCircuitEnabled        bool
	StoreCircuitFailureCount   int
	StoreCircuitOpenTimeout    time.Duration
	StoreCircuitHalfOpenMaxReq int

	RedisURL         string
	CrawlLockTTL     time.Duration
	InternalJobToken string

	PprofEnabled               bool
	PprofAddr                  string
	SwaggerEnabled             bool
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppEnv:             appEnv,
		ServiceName:        getEnv("APP_SERVICE_NAME", "gaa-fixtures-api"),
		ServiceVersion:     getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:           getEnv("APP_HTTP_ADDR", ":3001"),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		InternalJobToken:   strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	if err := loadHTTP(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadStorage(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadCrawler(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadJobs(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadLive(&cfg); err != nil {
		return Config{}, err
	}
	if err := loadObservability(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadHTTP(cfg *Config) error {
	var err error
	if cfg.ReadTimeout, err = getEnvAsDuration("APP_READ_TIMEOUT", "10s"); err != nil {
		return err
	}
	// A forced refresh holds the request open for the whole crawl.
	if cfg.WriteTimeout, err = getEnvAsDuration("APP_WRITE_TIMEOUT", "10m"); err != nil {
		return err
	}

	debug, err := strconv.ParseBool(getEnv("DEBUG", "false"))
	if err != nil {
		return fmt.Errorf("parse DEBUG: %w", err)
	}
	cfg.Debug = debug
	cfg.LogLevel = parseLogLevel(getEnv("APP_LOG_LEVEL", "info"))
	cfg.LogFormat = logging.ParseFormat(getEnv("APP_LOG_FORMAT", string(logging.FormatJSON)))
	if debug {
		cfg.LogLevel = logging.LevelDebug
	}

	swaggerDefault := "true"
	if cfg.AppEnv == EnvProd {
		swaggerDefault = "false"
	}
	cfg.SwaggerEnabled, err = strconv.ParseBool(getEnv("SWAGGER_ENABLED", swaggerDefault))
	if err != nil {
		return fmt.Errorf("parse SWAGGER_ENABLED: %w", err)
	}
	return nil
}

func loadStorage(cfg *Config) error {
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", StoreDriverSQLite)))
	switch cfg.StoreDriver {
	case StoreDriverSQLite, StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q: valid values are %s, %s, %s", cfg.StoreDriver, StoreDriverSQLite, StoreDriverPostgres, StoreDriverMemory)
	}

	cfg.DataDir = strings.TrimSpace(getEnv("DATA_DIR", "./data"))
	cfg.SQLitePath = strings.TrimSpace(getEnv("SQLITE_PATH", filepath.Join(cfg.DataDir, "matches.db")))
	cfg.DBURL = strings.TrimSpace(getEnv("DB_URL", ""))
	if cfg.StoreDriver == StoreDriverPostgres && cfg.DBURL == "" {
		return fmt.Errorf("DB_URL is required when STORE_DRIVER=postgres")
	}

	var err error
	cfg.DBBinaryParameters, err = strconv.ParseBool(getEnv("DB_BINARY_PARAMETERS", "true"))
	if err != nil {
		return fmt.Errorf("parse DB_BINARY_PARAMETERS: %w", err)
	}
	cfg.CacheEnabled, err = strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	if cfg.CacheTTL, err = getEnvAsDuration("CACHE_TTL", "5m"); err != nil {
		return err
	}

	cfg.StoreCircuitEnabled, cfg.StoreCircuitFailureCount, cfg.StoreCircuitOpenTimeout, cfg.StoreCircuitHalfOpenMaxReq, err = loadCircuit("STORE")
	return err
}

func loadCrawler(cfg *Config) error {
	cfg.SourceURL = strings.TrimSpace(getEnv("SOURCE_URL", "https://www.gaa.ie/fixtures-results"))
	cfg.SelectorsFile = strings.TrimSpace(getEnv("SELECTORS_FILE", ""))
	cfg.ScrapeUserDataDir = strings.TrimSpace(getEnv("SCRAPE_USER_DATA_DIR", ""))

	var err error
	if cfg.ScrapeInterval, err = getEnvAsDuration("SCRAPE_INTERVAL", "24h"); err != nil {
		return err
	}
	cfg.ScrapeHeadless, err = strconv.ParseBool(getEnv("SCRAPE_HEADLESS", "true"))
	if err != nil {
		return fmt.Errorf("parse SCRAPE_HEADLESS: %w", err)
	}
	if cfg.ScrapeStepTimeout, err = getEnvAsDuration("SCRAPE_TIMEOUT", "30s"); err != nil {
		return err
	}
	if cfg.ScrapeInitialWait, err = getEnvAsDuration("SCRAPE_INITIAL_WAIT", "10s"); err != nil {
		return err
	}
	if cfg.ScrapeIdleTimeout, err = getEnvAsDuration("SCRAPE_IDLE_TIMEOUT", "10s"); err != nil {
		return err
	}
	if cfg.SourceProbeTimeout, err = getEnvAsDuration("SOURCE_PROBE_TIMEOUT", "5s"); err != nil {
		return err
	}

	if cfg.ScrapeMaxRetries, err = getEnvAsInt("SCRAPE_MAX_RETRIES", 3); err != nil {
		return fmt.Errorf("parse SCRAPE_MAX_RETRIES: %w", err)
	}
	if cfg.ScrapeMaxRetries < 0 {
		return fmt.Errorf("SCRAPE_MAX_RETRIES must be >= 0")
	}
	if cfg.ScrapeMaxNoNew, err = getEnvAsInt("SCRAPE_MAX_NO_NEW", 3); err != nil {
		return fmt.Errorf("parse SCRAPE_MAX_NO_NEW: %w", err)
	}
	if cfg.ScrapeMaxNoNew < 1 {
		return fmt.Errorf("SCRAPE_MAX_NO_NEW must be >= 1")
	}
	if cfg.ScrapeMaxCycles, err = getEnvAsInt("SCRAPE_MAX_CYCLES", 200); err != nil {
		return fmt.Errorf("parse SCRAPE_MAX_CYCLES: %w", err)
	}
	if cfg.ScrapeMaxCycles < 1 {
		return fmt.Errorf("SCRAPE_MAX_CYCLES must be >= 1")
	}

	cfg.SourceTimezone = strings.TrimSpace(getEnv("SOURCE_TIMEZONE", "Europe/Dublin"))
	cfg.SourceLocation, err = time.LoadLocation(cfg.SourceTimezone)
	if err != nil {
		return fmt.Errorf("parse SOURCE_TIMEZONE: %w", err)
	}
	return nil
}

func loadJobs(cfg *Config) error {
	var err error
	cfg.SchedulerEnabled, err = strconv.ParseBool(getEnv("SCHEDULER_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse SCHEDULER_ENABLED: %w", err)
	}
	cfg.CrawlCron = strings.TrimSpace(getEnv("CRAWL_CRON", "@every 1h"))
	cfg.RetentionCron = strings.TrimSpace(getEnv("RETENTION_CRON", "@daily"))
	if cfg.RetentionDays, err = getEnvAsInt("RETENTION_DAYS", 180); err != nil {
		return fmt.Errorf("parse RETENTION_DAYS: %w", err)
	}
	if cfg.RetentionDays < 0 {
		return fmt.Errorf("RETENTION_DAYS must be >= 0")
	}

	cfg.RedisURL = strings.TrimSpace(getEnv("REDIS_URL", ""))
	if cfg.CrawlLockTTL, err = getEnvAsDuration("CRAWL_LOCK_TTL", "30m"); err != nil {
		return err
	}
	return nil
}

func loadLive(cfg *Config) error {
	var err error
	cfg.LiveEnabled, err = strconv.ParseBool(getEnv("LIVE_ENABLED", "true"))
	if err != nil {
		return fmt.Errorf("parse LIVE_ENABLED: %w", err)
	}
	cfg.LiveCron = strings.TrimSpace(getEnv("LIVE_CRON", "@every 2m"))
	cfg.LiveSectionURLs = splitCSV(getEnv("LIVE_SECTION_URLS", ""))

	if cfg.LiveTimeout, err = getEnvAsDuration("LIVE_TIMEOUT", "15s"); err != nil {
		return err
	}
	if cfg.LiveRecentWindow, err = getEnvAsDuration("LIVE_RECENT_WINDOW", "2h"); err != nil {
		return err
	}
	if cfg.LiveMaxRetries, err = getEnvAsInt("LIVE_MAX_RETRIES", 2); err != nil {
		return fmt.Errorf("parse LIVE_MAX_RETRIES: %w", err)
	}
	if cfg.LiveMaxRetries < 0 {
		return fmt.Errorf("LIVE_MAX_RETRIES must be >= 0")
	}
	if cfg.LiveMaxWorkers, err = getEnvAsInt("LIVE_MAX_WORKERS", 4); err != nil {
		return fmt.Errorf("parse LIVE_MAX_WORKERS: %w", err)
	}
	if cfg.LiveMaxWorkers < 1 {
		return fmt.Errorf("LIVE_MAX_WORKERS must be >= 1")
	}

	cfg.LiveCircuitEnabled, cfg.LiveCircuitFailureCount, cfg.LiveCircuitOpenTimeout, cfg.LiveCircuitHalfOpenMaxReq, err = loadCircuit("LIVE")
	return err
}

func loadObservability(cfg *Config) error {
	var err error
	cfg.UptraceEnabled, err = strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	cfg.UptraceDSN = strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if cfg.UptraceDSN == "" {
		cfg.UptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if cfg.UptraceEnabled && cfg.UptraceDSN == "" {
		return fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	cfg.PprofEnabled, err = strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	cfg.PprofAddr = strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if cfg.PprofEnabled && cfg.PprofAddr == "" {
		return fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	cfg.PyroscopeEnabled, err = strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	cfg.PyroscopeServerAddress = strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if cfg.PyroscopeEnabled && cfg.PyroscopeServerAddress == "" {
		return fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	if cfg.PyroscopeUploadRate, err = getEnvAsDuration("PYROSCOPE_UPLOAD_RATE", "15s"); err != nil {
		return err
	}
	cfg.PyroscopeAuthToken = strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", ""))
	cfg.PyroscopeBasicAuthUser = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", ""))
	cfg.PyroscopeBasicAuthPassword = strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", ""))
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	return nil
}

// loadCircuit reads the <PREFIX>_CIRCUIT_* family.
func loadCircuit(prefix string) (bool, int, time.Duration, int, error) {
	enabledKey := prefix + "_CIRCUIT_ENABLED"
	enabled, err := strconv.ParseBool(getEnv(enabledKey, "true"))
	if err != nil {
		return false, 0, 0, 0, fmt.Errorf("parse %s: %w", enabledKey, err)
	}

	failureKey := prefix + "_CIRCUIT_FAILURE_COUNT"
	failures, err := getEnvAsInt(failureKey, 5)
	if err != nil {
		return false, 0, 0, 0, fmt.Errorf("parse %s: %w", failureKey, err)
	}
	if failures < 1 {
		return false, 0, 0, 0, fmt.Errorf("%s must be >= 1", failureKey)
	}

	openTimeout, err := getEnvAsDuration(prefix+"_CIRCUIT_OPEN_TIMEOUT", "15s")
	if err != nil {
		return false, 0, 0, 0, err
	}

	halfOpenKey := prefix + "_CIRCUIT_HALF_OPEN_MAX_REQ"
	halfOpen, err := getEnvAsInt(halfOpenKey, 2)
	if err != nil {
		return false, 0, 0, 0, fmt.Errorf("parse %s: %w", halfOpenKey, err)
	}
	if halfOpen < 1 {
		return false, 0, 0, 0, fmt.Errorf("%s must be >= 1", halfOpenKey)
	}

	return enabled, failures, openTimeout, halfOpen, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

// getEnvAsDuration parses a positive duration.
func getEnvAsDuration(key, fallback string) (time.Duration, error) {
	out, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	if out <= 0 {
		return 0, fmt.Errorf("%s must be > 0", key)
	}
	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
