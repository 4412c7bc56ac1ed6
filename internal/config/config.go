package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                    string        `mapstructure:"PORT"`
	Env                     string        `mapstructure:"ENV"`
	DatabaseURL             string        `mapstructure:"DATABASE_URL"`
	DBMaxConns              int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns              int32         `mapstructure:"DB_MIN_CONNS"`
	DBSchema                string        `mapstructure:"DB_SCHEMA"`
	RedisURL                string        `mapstructure:"REDIS_URL"`
	AuthIssuer              string        `mapstructure:"AUTH_ISSUER"`
	AuthJWKSURL             string        `mapstructure:"AUTH_JWKS_URL"`
	AuthAudience            string        `mapstructure:"AUTH_AUDIENCE"`
	CORSOrigins             []string      `mapstructure:"CORS_ORIGINS"`
	RenewalWindowStart      string        `mapstructure:"RENEWAL_WINDOW_START"`
	RenewalWindowEnd        string        `mapstructure:"RENEWAL_WINDOW_END"`
	MedicaidHandbookBaseURL string        `mapstructure:"MEDICAID_HANDBOOK_BASE_URL"`
	BenefitBookletAPIURL    string        `mapstructure:"BENEFIT_BOOKLET_API_URL"`
	BookletCacheTTL         time.Duration `mapstructure:"BOOKLET_CACHE_TTL"`
	ClaimsLookbackMonths    int           `mapstructure:"CLAIMS_LOOKBACK_MONTHS"`
	ClaimsPageSizeFull      int           `mapstructure:"CLAIMS_PAGE_SIZE_FULL"`
	ClaimsPageSizeCompact   int           `mapstructure:"CLAIMS_PAGE_SIZE_COMPACT"`
	BodyLimit               string        `mapstructure:"BODY_LIMIT"`
	IngestBodyLimit         string        `mapstructure:"INGEST_BODY_LIMIT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RENEWAL_WINDOW_START", "10-15")
	v.SetDefault("RENEWAL_WINDOW_END", "12-31")
	v.SetDefault("MEDICAID_HANDBOOK_BASE_URL", "https://www.bluecrossmn.com")
	v.SetDefault("BOOKLET_CACHE_TTL", "15m")
	v.SetDefault("CLAIMS_LOOKBACK_MONTHS", 24)
	v.SetDefault("CLAIMS_PAGE_SIZE_FULL", 10)
	v.SetDefault("CLAIMS_PAGE_SIZE_COMPACT", 5)
	v.SetDefault("BODY_LIMIT", "1M")
	v.SetDefault("INGEST_BODY_LIMIT", "10M")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, key := range []string{
		"PORT", "ENV", "DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "DB_SCHEMA",
		"REDIS_URL", "AUTH_ISSUER", "AUTH_JWKS_URL", "AUTH_AUDIENCE", "CORS_ORIGINS",
		"RENEWAL_WINDOW_START", "RENEWAL_WINDOW_END", "MEDICAID_HANDBOOK_BASE_URL",
		"BENEFIT_BOOKLET_API_URL", "BOOKLET_CACHE_TTL", "CLAIMS_LOOKBACK_MONTHS",
		"CLAIMS_PAGE_SIZE_FULL", "CLAIMS_PAGE_SIZE_COMPACT", "BODY_LIMIT", "INGEST_BODY_LIMIT",
	} {
		_ = v.BindEnv(key)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: DevAuthMiddleware is active, requests without a token act as a dev member.")
		log.Println("WARNING: Set ENV=production and configure AUTH_ISSUER for production.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthIssuer == "" {
		return fmt.Errorf("AUTH_ISSUER must be set outside development (current ENV=%q)", c.Env)
	}

	start, err := time.Parse("01-02", c.RenewalWindowStart)
	if err != nil {
		return fmt.Errorf("RENEWAL_WINDOW_START must be MM-DD, got %q", c.RenewalWindowStart)
	}
	end, err := time.Parse("01-02", c.RenewalWindowEnd)
	if err != nil {
		return fmt.Errorf("RENEWAL_WINDOW_END must be MM-DD, got %q", c.RenewalWindowEnd)
	}
	if start.After(end) {
		return fmt.Errorf("renewal window start %s is after end %s", c.RenewalWindowStart, c.RenewalWindowEnd)
	}

	if c.ClaimsLookbackMonths <= 0 {
		return fmt.Errorf("CLAIMS_LOOKBACK_MONTHS must be positive, got %d", c.ClaimsLookbackMonths)
	}
	if c.ClaimsPageSizeFull <= 0 || c.ClaimsPageSizeCompact <= 0 {
		return fmt.Errorf("claims page sizes must be positive (full=%d, compact=%d)",
			c.ClaimsPageSizeFull, c.ClaimsPageSizeCompact)
	}

	// Memory and Redis stores disagree on a zero TTL.
	if c.BookletCacheTTL <= 0 {
		return fmt.Errorf("BOOKLET_CACHE_TTL must be positive, got %s", c.BookletCacheTTL)
	}

	if c.IsProduction() && c.BenefitBookletAPIURL == "" {
		return fmt.Errorf("BENEFIT_BOOKLET_API_URL is required in production")
	}

	return nil
}
