package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Lightning LightningConfig
	Mint      MintConfig
	Search    SearchConfig
	Pricing   PricingConfig
	Quote     QuoteConfig
	Fee       FeeConfig
	Limits    LimitsConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
	Name string
	URL  string
}

// DatabaseConfig holds database configuration. When Host is empty the store
// falls back to a local sqlite file, the default for a single-node mint.
type DatabaseConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// URL returns the postgres connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// UsePostgres reports whether a postgres host was configured
func (c DatabaseConfig) UsePostgres() bool {
	return c.Host != ""
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// LightningConfig holds the LNbits node connection settings
type LightningConfig struct {
	URL        string
	AdminKey   string
	InvoiceKey string
	Timeout    time.Duration
}

// MintConfig holds the Cashu mint the redeemer wallet trusts
type MintConfig struct {
	URL       string
	WalletDir string
}

// SearchConfig holds the upstream search provider settings
type SearchConfig struct {
	APIURL    string
	AuthToken string
	Timeout   time.Duration
}

// PricingConfig holds how a search is priced. When CostPerSearchCents is
// non-zero the invoice amount tracks the BTC/USD spot price; otherwise the
// fixed PricePerSearch in sats is used.
type PricingConfig struct {
	PricePerSearch     uint64
	CostPerSearchCents uint64
	PriceRefresh       time.Duration
}

// QuoteConfig holds quote lifecycle timings
type QuoteConfig struct {
	Expiry            time.Duration
	RetentionWindow   time.Duration
	PollInterval      time.Duration
	ReconcileInterval time.Duration
}

// FeeConfig holds the melt fee-reserve policy
type FeeConfig struct {
	PercentReserve float64
	MinReserveSats uint64
}

// LimitsConfig bounds the sat amounts accepted on mint and melt quotes
type LimitsConfig struct {
	MintMinSats uint64
	MintMaxSats uint64
	MeltMinSats uint64
	MeltMaxSats uint64
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
			Name: getEnv("MINT_NAME", "sat-search"),
			URL:  getEnv("MINT_PUBLIC_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			Host:       getEnv("DB_HOST", ""),
			Port:       getEnvAsInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			DBName:     getEnv("DB_NAME", "satsearch"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "sat-search.sqlite"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		Lightning: LightningConfig{
			URL:        getEnv("LNBITS_URL", "http://localhost:5000"),
			AdminKey:   getEnv("LNBITS_ADMIN_KEY", ""),
			InvoiceKey: getEnv("LNBITS_INVOICE_KEY", ""),
			Timeout:    getEnvAsDuration("LNBITS_TIMEOUT", 15*time.Second),
		},
		Mint: MintConfig{
			URL:       getEnv("CASHU_MINT_URL", "http://localhost:3338"),
			WalletDir: getEnv("CASHU_WALLET_DIR", "./cashu"),
		},
		Search: SearchConfig{
			APIURL:    getEnv("SEARCH_API_URL", "https://kagi.com/api/v0/search"),
			AuthToken: getEnv("SEARCH_AUTH_TOKEN", ""),
			Timeout:   getEnvAsDuration("SEARCH_TIMEOUT", 20*time.Second),
		},
		Pricing: PricingConfig{
			PricePerSearch:     getEnvAsUint64("PRICE_PER_SEARCH_SATS", 1),
			CostPerSearchCents: getEnvAsUint64("COST_PER_SEARCH_CENTS", 0),
			PriceRefresh:       getEnvAsDuration("PRICE_REFRESH_INTERVAL", 30*time.Second),
		},
		Quote: QuoteConfig{
			Expiry:            getEnvAsDuration("QUOTE_EXPIRY", 15*time.Minute),
			RetentionWindow:   getEnvAsDuration("QUOTE_RETENTION_WINDOW", 24*time.Hour),
			PollInterval:      getEnvAsDuration("QUOTE_POLL_INTERVAL", 10*time.Second),
			ReconcileInterval: getEnvAsDuration("MELT_RECONCILE_INTERVAL", 30*time.Second),
		},
		Fee: FeeConfig{
			PercentReserve: getEnvAsFloat("FEE_PERCENT_RESERVE", 0.01),
			MinReserveSats: getEnvAsUint64("FEE_MIN_RESERVE_SATS", 2),
		},
		Limits: LimitsConfig{
			MintMinSats: getEnvAsUint64("MINT_MIN_AMOUNT", 1),
			MintMaxSats: getEnvAsUint64("MINT_MAX_AMOUNT", 10000),
			MeltMinSats: getEnvAsUint64("MELT_MIN_AMOUNT", 1),
			MeltMaxSats: getEnvAsUint64("MELT_MAX_AMOUNT", 10000),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsUint64(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			return v
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
