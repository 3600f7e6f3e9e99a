package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	usecasecontract "github.com/mikiasgoitom/Snapfeed/internal/usecase/contract"
	"github.com/spf13/viper"
)

const devJWTSecret = "snapfeed-dev-secret-change-me"

// Config holds application configuration values loaded from environment variables.
type Config struct {
	Env      string `mapstructure:"APP_ENV"`
	Port     string `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	MongoURI    string `mapstructure:"MONGODB_URI"`
	MongoDBName string `mapstructure:"MONGODB_DB_NAME"`

	RedisURL            string `mapstructure:"REDIS_URL"`
	FeedCacheTTLMinutes int    `mapstructure:"FEED_CACHE_TTL_MINUTES"`

	IDPJWKSURL            string `mapstructure:"IDP_JWKS_URL"`
	IDPIssuer             string `mapstructure:"IDP_ISSUER"`
	IDPAudience           string `mapstructure:"IDP_AUDIENCE"`
	IDPJWKSRefreshMinutes int    `mapstructure:"IDP_JWKS_REFRESH_MINUTES"`
	IDPTokenURL           string `mapstructure:"IDP_TOKEN_URL"`
	IDPClientID           string `mapstructure:"IDP_CLIENT_ID"`
	IDPClientSecret       string `mapstructure:"IDP_CLIENT_SECRET"`

	JWTSecret      string `mapstructure:"JWT_SECRET"`
	JWTExpiryHours int    `mapstructure:"JWT_EXPIRY_HOURS"`

	MaxUploadMB      int `mapstructure:"MEDIA_MAX_UPLOAD_MB"`
	MaxOutputMB      int `mapstructure:"MEDIA_MAX_OUTPUT_MB"`
	ImageMaxWidth    int `mapstructure:"IMAGE_MAX_WIDTH"`
	ImageJPEGQuality int `mapstructure:"IMAGE_JPEG_QUALITY"`

	RateLimitRPS      float64 `mapstructure:"RATE_LIMIT_RPS"`
	AllowedOrigins    string  `mapstructure:"ALLOWED_ORIGINS"`
	AuditBatchSize    int     `mapstructure:"AUDIT_BATCH_SIZE"`
	SearchResultLimit int     `mapstructure:"SEARCH_RESULT_LIMIT"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DB_NAME", "snapfeed")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("FEED_CACHE_TTL_MINUTES", 5)
	v.SetDefault("IDP_JWKS_URL", "")
	v.SetDefault("IDP_ISSUER", "")
	v.SetDefault("IDP_AUDIENCE", "")
	v.SetDefault("IDP_JWKS_REFRESH_MINUTES", 60)
	v.SetDefault("IDP_TOKEN_URL", "")
	v.SetDefault("IDP_CLIENT_ID", "")
	v.SetDefault("IDP_CLIENT_SECRET", "")
	v.SetDefault("JWT_SECRET", devJWTSecret)
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("MEDIA_MAX_UPLOAD_MB", 10)
	v.SetDefault("MEDIA_MAX_OUTPUT_MB", 10)
	v.SetDefault("IMAGE_MAX_WIDTH", 2048)
	v.SetDefault("IMAGE_JPEG_QUALITY", 80)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("AUDIT_BATCH_SIZE", 200)
	v.SetDefault("SEARCH_RESULT_LIMIT", 10)
}

// Load reads configuration from the process environment through viper.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads configuration through v. The CLI binds its flags into v
// before calling it so flags override the environment.
func LoadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and sane.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.MongoURI == "" {
		return errors.New("MONGODB_URI is required")
	}
	if c.MongoDBName == "" {
		return errors.New("MONGODB_DB_NAME is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.MaxUploadMB <= 0 || c.MaxOutputMB <= 0 {
		return errors.New("MEDIA_MAX_UPLOAD_MB and MEDIA_MAX_OUTPUT_MB must be positive")
	}
	if c.ImageMaxWidth <= 0 {
		return errors.New("IMAGE_MAX_WIDTH must be positive")
	}
	if c.ImageJPEGQuality < 1 || c.ImageJPEGQuality > 100 {
		return errors.New("IMAGE_JPEG_QUALITY must be between 1 and 100")
	}
	if c.RateLimitRPS <= 0 {
		return errors.New("RATE_LIMIT_RPS must be positive")
	}
	if c.IDPJWKSURL != "" && c.IDPIssuer == "" {
		return errors.New("IDP_ISSUER is required when IDP_JWKS_URL is set")
	}

	if c.IsProduction() {
		if c.JWTSecret == devJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.AllowedOrigins == "*" {
			return errors.New("ALLOWED_ORIGINS must not be '*' in production")
		}
	}
	return nil
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// IdentityEnabled reports whether an identity provider is configured.
func (c *Config) IdentityEnabled() bool {
	return c.IDPJWKSURL != ""
}

func (c *Config) FeedCacheTTL() time.Duration {
	return time.Duration(c.FeedCacheTTLMinutes) * time.Minute
}

func (c *Config) JWKSRefreshInterval() time.Duration {
	return time.Duration(c.IDPJWKSRefreshMinutes) * time.Minute
}

func (c *Config) MaxOutputBytes() int64 {
	return int64(c.MaxOutputMB) << 20
}

// NewConfig exposes cfg to the usecases.
func NewConfig(cfg *Config) usecasecontract.IConfigProvider {
	return &provider{cfg: cfg}
}

type provider struct {
	cfg *Config
}

// GetMaxUploadBytes returns the largest accepted upload, in bytes.
func (p *provider) GetMaxUploadBytes() int64 {
	return int64(p.cfg.MaxUploadMB) << 20
}

// GetAuditBatchSize returns the number of posts examined per audit batch.
func (p *provider) GetAuditBatchSize() int {
	return p.cfg.AuditBatchSize
}

// GetAccessTokenExpiry returns the lifetime of locally issued tokens.
func (p *provider) GetAccessTokenExpiry() time.Duration {
	return time.Duration(p.cfg.JWTExpiryHours) * time.Hour
}

// GetSearchResultLimit returns the maximum number of user search results.
func (p *provider) GetSearchResultLimit() int {
	return p.cfg.SearchResultLimit
}
