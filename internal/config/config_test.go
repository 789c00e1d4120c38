package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("JWT_EXPIRE", "")
		t.Setenv("BCRYPT_COST", "")
		t.Setenv("CORS_ORIGINS", "")

		cfg, err := Load()
		assert.NoError(t, err)
		assert.Equal(t, 12, cfg.BcryptCost)
		assert.Equal(t, 30*24*time.Hour, cfg.JWT.Expire)
		assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSOrigins)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret")
		t.Setenv("JWT_EXPIRE", "2h")
		t.Setenv("BCRYPT_COST", "10")
		t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
		t.Setenv("APP_ENV", "production")

		cfg, err := Load()
		assert.NoError(t, err)
		assert.Equal(t, 2*time.Hour, cfg.JWT.Expire)
		assert.Equal(t, 10, cfg.BcryptCost)
		assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
		assert.True(t, cfg.IsProduction())
	})

	t.Run("missing secret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("SOME_DURATION", "7d")
	assert.Equal(t, 7*24*time.Hour, getEnvAsDuration("SOME_DURATION", time.Minute))

	t.Setenv("SOME_DURATION", "nope")
	assert.Equal(t, time.Minute, getEnvAsDuration("SOME_DURATION", time.Minute))
}

func TestValidate(t *testing.T) {
	cfg := Config{JWT: JWTConfig{Secret: "s", Expire: time.Hour}, BcryptCost: 40}
	assert.Error(t, cfg.Validate())

	cfg.BcryptCost = 12
	assert.NoError(t, cfg.Validate())
}
