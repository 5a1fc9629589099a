package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dejobratic/storefront/internal/checkout/domain"
	"github.com/joho/godotenv"
)

// Config captures runtime configuration for the storefront API.
type Config struct {
	HTTP        HTTPConfig
	Store       StoreConfig
	Database    DatabaseConfig
	Events      EventsConfig
	Telemetry   TelemetryConfig
	Service     ServiceConfig
	Checkout    CheckoutConfig
	CSRF        CSRFConfig
	Idempotency IdempotencyConfig
}

type HTTPConfig struct {
	Port          int
	ShutdownGrace int
}

// Backend selects where catalog, wishlist and checkout data live.
type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
)

type StoreConfig struct {
	Backend Backend
	// SeedFile is an optional YAML products document loaded at startup.
	SeedFile string
}

type DatabaseConfig struct {
	URL            string
	AutoMigrate    bool
	MigrationsPath string
}

type EventsConfig struct {
	Enabled bool
}

type TelemetryConfig struct {
	LogLevel      string
	OTelEndpoint  string
	OTelInsecure  bool
	EnableTracing bool
	EnableMetrics bool
	SampleRate    float64
}

type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
}

type CheckoutConfig struct {
	TaxRate  domain.TaxRate
	Currency string
	// ShippingFees seeds the in-memory catalog, keyed by shipping method id.
	ShippingFees domain.ShippingFees
}

type CSRFConfig struct {
	CookieName string
	Secure     bool
}

type IdempotencyConfig struct {
	TTL           time.Duration
	PurgeInterval time.Duration
}

const (
	defaultHTTPPort       = 8080
	defaultShutdownGrace  = 15
	defaultMigrationsPath = "migrations"
	defaultAutoMigrate    = true
	defaultServiceName    = "storefront-api"
	defaultServiceVersion = "0.1.0"
	defaultEnvironment    = "development"
	defaultLogLevel       = "info"
	defaultOTelSampleRate = 1.0
	defaultShippingFees   = "1:5.00,2:12.50"
	defaultCSRFCookie     = "csrftoken"
	defaultIdempotencyTTL = 24 * time.Hour
	defaultPurgeInterval  = time.Hour
)

// Load reads configuration from environment variables, applying defaults when needed.
// A .env file in the working directory is loaded first; variables already set win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	httpCfg, err := loadHTTPConfig()
	if err != nil {
		return nil, fmt.Errorf("loading HTTP config: %w", err)
	}

	storeCfg, err := loadStoreConfig()
	if err != nil {
		return nil, fmt.Errorf("loading store config: %w", err)
	}

	telCfg, err := loadTelemetryConfig()
	if err != nil {
		return nil, fmt.Errorf("loading telemetry config: %w", err)
	}

	checkoutCfg, err := loadCheckoutConfig()
	if err != nil {
		return nil, fmt.Errorf("loading checkout config: %w", err)
	}

	idemCfg, err := loadIdempotencyConfig()
	if err != nil {
		return nil, fmt.Errorf("loading idempotency config: %w", err)
	}

	return &Config{
		HTTP:        httpCfg,
		Store:       storeCfg,
		Database:    loadDatabaseConfig(),
		Events:      EventsConfig{Enabled: getBoolEnv("EVENTS_ENABLED", true)},
		Telemetry:   telCfg,
		Service:     loadServiceConfig(),
		Checkout:    checkoutCfg,
		CSRF:        loadCSRFConfig(),
		Idempotency: idemCfg,
	}, nil
}

func loadHTTPConfig() (HTTPConfig, error) {
	port, err := getIntEnv("API_HTTP_PORT", defaultHTTPPort)
	if err != nil {
		return HTTPConfig{}, err
	}

	shutdownGrace, err := getIntEnv("API_SHUTDOWN_GRACE_SECONDS", defaultShutdownGrace)
	if err != nil {
		return HTTPConfig{}, err
	}

	return HTTPConfig{
		Port:          port,
		ShutdownGrace: shutdownGrace,
	}, nil
}

func loadStoreConfig() (StoreConfig, error) {
	backend := Backend(strings.ToLower(getEnvOrDefault("STORE_BACKEND", string(BackendMemory))))
	switch backend {
	case BackendMemory, BackendPostgres:
		return StoreConfig{Backend: backend, SeedFile: os.Getenv("CATALOG_SEED_FILE")}, nil
	default:
		return StoreConfig{}, fmt.Errorf("invalid STORE_BACKEND %q: want memory or postgres", backend)
	}
}

func loadDatabaseConfig() DatabaseConfig {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = buildDatabaseURL()
	}

	return DatabaseConfig{
		URL:            databaseURL,
		AutoMigrate:    getBoolEnv("AUTO_MIGRATE", defaultAutoMigrate),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", defaultMigrationsPath),
	}
}

func loadTelemetryConfig() (TelemetryConfig, error) {
	sampleRate := defaultOTelSampleRate
	if value, ok := os.LookupEnv("OTEL_SAMPLE_RATE"); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return TelemetryConfig{}, fmt.Errorf("invalid OTEL_SAMPLE_RATE: %w", err)
		}
		sampleRate = parsed
	}

	return TelemetryConfig{
		LogLevel:      getEnvOrDefault("LOG_LEVEL", defaultLogLevel),
		OTelEndpoint:  getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTelInsecure:  getBoolEnv("OTEL_EXPORTER_OTLP_INSECURE", true),
		EnableTracing: getBoolEnv("OTEL_ENABLE_TRACING", false),
		EnableMetrics: getBoolEnv("OTEL_ENABLE_METRICS", false),
		SampleRate:    sampleRate,
	}, nil
}

func loadServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:        getEnvOrDefault("API_SERVICE_NAME", defaultServiceName),
		Version:     getEnvOrDefault("SERVICE_VERSION", defaultServiceVersion),
		Environment: getEnvOrDefault("ENVIRONMENT", defaultEnvironment),
	}
}

func loadCheckoutConfig() (CheckoutConfig, error) {
	taxRate, err := getIntEnv("CHECKOUT_TAX_RATE_BPS", int(domain.DefaultTaxRate))
	if err != nil {
		return CheckoutConfig{}, err
	}
	if taxRate < 0 || taxRate > 10000 {
		return CheckoutConfig{}, fmt.Errorf("invalid CHECKOUT_TAX_RATE_BPS %d: want 0..10000", taxRate)
	}

	fees, err := ParseShippingFees(getEnvOrDefault("CHECKOUT_SHIPPING_FEES", defaultShippingFees))
	if err != nil {
		return CheckoutConfig{}, fmt.Errorf("invalid CHECKOUT_SHIPPING_FEES: %w", err)
	}

	return CheckoutConfig{
		TaxRate:      domain.TaxRate(taxRate),
		Currency:     strings.ToUpper(getEnvOrDefault("CHECKOUT_CURRENCY", domain.DefaultCurrency)),
		ShippingFees: fees,
	}, nil
}

// ParseShippingFees parses "id:amount" pairs separated by commas, e.g. "1:5.00,2:12.50".
func ParseShippingFees(s string) (domain.ShippingFees, error) {
	fees := domain.ShippingFees{}
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}

		id, amount, ok := strings.Cut(pair, ":")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("malformed pair %q", pair)
		}

		fee, err := domain.ParseMoney(amount)
		if err != nil {
			return nil, fmt.Errorf("fee for %q: %w", id, err)
		}
		if _, dup := fees[id]; dup {
			return nil, fmt.Errorf("duplicate shipping method %q", id)
		}
		fees[id] = fee
	}
	return fees, nil
}

// FormatShippingFees is the inverse of ParseShippingFees, sorted by id.
func FormatShippingFees(fees domain.ShippingFees) string {
	ids := make([]string, 0, len(fees))
	for id := range fees {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	pairs := make([]string, 0, len(ids))
	for _, id := range ids {
		pairs = append(pairs, id+":"+fees[id].Decimal())
	}
	return strings.Join(pairs, ",")
}

func loadCSRFConfig() CSRFConfig {
	return CSRFConfig{
		CookieName: getEnvOrDefault("CSRF_COOKIE_NAME", defaultCSRFCookie),
		Secure:     getBoolEnv("CSRF_COOKIE_SECURE", false),
	}
}

func loadIdempotencyConfig() (IdempotencyConfig, error) {
	ttl, err := getDurationEnv("IDEMPOTENCY_TTL", defaultIdempotencyTTL)
	if err != nil {
		return IdempotencyConfig{}, err
	}
	purge, err := getDurationEnv("IDEMPOTENCY_PURGE_INTERVAL", defaultPurgeInterval)
	if err != nil {
		return IdempotencyConfig{}, err
	}
	return IdempotencyConfig{TTL: ttl, PurgeInterval: purge}, nil
}

// buildDatabaseURL assembles a pgx pool URL from the DB_* variables.
// Credentials are escaped so passwords may contain URL metacharacters.
func buildDatabaseURL() string {
	query := url.Values{}
	query.Set("sslmode", getEnvOrDefault("DB_SSLMODE", "disable"))
	query.Set("pool_max_conns", getEnvOrDefault("DB_MAX_CONNS", "25"))
	query.Set("pool_min_conns", getEnvOrDefault("DB_MIN_CONNS", "5"))
	query.Set("pool_max_conn_lifetime", getEnvOrDefault("DB_MAX_CONN_LIFETIME", "5m"))

	u := url.URL{
		Scheme: "postgres",
		User: url.UserPassword(
			getEnvOrDefault("DB_USER", "postgres"),
			getEnvOrDefault("DB_PASSWORD", "postgres"),
		),
		Host:     net.JoinHostPort(getEnvOrDefault("DB_HOST", "localhost"), getEnvOrDefault("DB_PORT", "5432")),
		Path:     "/" + getEnvOrDefault("DB_NAME", "storefront"),
		RawQuery: query.Encode(),
	}
	return u.String()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv accepts the strconv.ParseBool spellings; anything else keeps the default.
func getBoolEnv(key string, defaultValue bool) bool {
	parsed, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
