package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Addr: defaultAddr,
		Storage: StorageConfig{
			Driver:      DriverPostgres,
			DatabaseURL: "postgres://localhost/restro",
		},
		Auth: AuthConfig{JWTSecret: "secret", APIKeyPepper: "pepper"},
		Cart: CartConfig{MaxWriteAttempts: 5},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "valid", modify: func(*Config) {}},
		{name: "memory needs no url", modify: func(c *Config) { c.Storage = StorageConfig{Driver: DriverMemory} }},
		{name: "postgres without url", modify: func(c *Config) { c.Storage.DatabaseURL = "" }, wantErr: "database URL"},
		{name: "mongo without uri", modify: func(c *Config) { c.Storage.Driver = DriverMongo }, wantErr: "mongo URI"},
		{name: "unknown driver", modify: func(c *Config) { c.Storage.Driver = "sqlite" }, wantErr: "unknown storage driver"},
		{name: "no jwt secret", modify: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: "jwt secret"},
		{name: "no pepper", modify: func(c *Config) { c.Auth.APIKeyPepper = "" }, wantErr: "pepper"},
		{name: "zero attempts", modify: func(c *Config) { c.Cart.MaxWriteAttempts = 0 }, wantErr: "attempts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modify(&cfg)

			err := cfg.validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_ApplyPlatformDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://platform/db")
	t.Setenv("MONGODB_URI", "mongodb://platform")
	t.Setenv("PORT", "9090")

	cfg := Config{Addr: defaultAddr}
	cfg.applyPlatformDefaults()
	assert.Equal(t, "postgres://platform/db", cfg.Storage.DatabaseURL)
	assert.Equal(t, "mongodb://platform", cfg.Storage.MongoURI)
	assert.Equal(t, "0.0.0.0:9090", cfg.Addr)

	cfg = Config{Addr: "127.0.0.1:8000", Storage: StorageConfig{DatabaseURL: "postgres://explicit/db"}}
	cfg.applyPlatformDefaults()
	assert.Equal(t, "postgres://explicit/db", cfg.Storage.DatabaseURL)
	assert.Equal(t, "127.0.0.1:8000", cfg.Addr)
}
