package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
)

const defaultAddr = "0.0.0.0:8080"

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Config holds the complete application configuration, loadable from
// environment variables (RESTRO_ prefix), flags, or YAML config files.
type Config struct {
	Addr      string `default:"0.0.0.0:8080" usage:"API server listen address"`
	Storage   StorageConfig
	Auth      AuthConfig
	Cart      CartConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Graceful  GracefulConfig
}

// StorageConfig selects and locates the backing store.
type StorageConfig struct {
	Driver        string `default:"postgres" usage:"Storage driver: postgres, mongo or memory"`
	DatabaseURL   string `usage:"PostgreSQL connection URL (RESTRO_STORAGE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	MongoURI      string `usage:"MongoDB connection URI (RESTRO_STORAGE_MONGO_URI or MONGODB_URI)" flag:"mongo-uri"`
	MongoDatabase string `default:"restro" usage:"MongoDB database name" flag:"mongo-database"`
	// Seed loads the demo catalog on start. Only honoured by the memory driver.
	Seed bool `default:"true" usage:"Load demo data into the memory store"`
}

// AuthConfig holds caller credentials.
type AuthConfig struct {
	JWTSecret    string `usage:"HS256 secret for diner bearer tokens" flag:"jwt-secret"`
	APIKeyPepper string `usage:"HMAC pepper for vendor API key hashing" flag:"api-key-pepper"`
}

// CartConfig tunes cart writes.
type CartConfig struct {
	MaxWriteAttempts int `default:"5" usage:"Attempts per cart mutation when concurrent writers conflict"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig reads an optional .env file, then environment variables and
// YAML config files, and validates the result.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, errors.Wrap(err, "load .env")
	}

	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "RESTRO",
		Files:     []string{"config.yaml", "/etc/restro/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults maps the unprefixed variables hosting platforms
// inject (DATABASE_URL, MONGODB_URI, PORT) onto the configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Storage.DatabaseURL == "" {
		c.Storage.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if c.Storage.MongoURI == "" {
		c.Storage.MongoURI = os.Getenv("MONGODB_URI")
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Storage.DatabaseURL == "" {
			return errors.New("database URL is required: set RESTRO_STORAGE_DATABASE_URL or DATABASE_URL")
		}
	case DriverMongo:
		if c.Storage.MongoURI == "" {
			return errors.New("mongo URI is required: set RESTRO_STORAGE_MONGO_URI or MONGODB_URI")
		}
	case DriverMemory:
	default:
		return errors.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("jwt secret is required: set RESTRO_AUTH_JWT_SECRET")
	}
	if c.Auth.APIKeyPepper == "" {
		return errors.New("api key pepper is required: set RESTRO_AUTH_API_KEY_PEPPER")
	}
	if c.Cart.MaxWriteAttempts < 1 {
		return errors.New("cart max write attempts must be at least 1")
	}
	return nil
}
