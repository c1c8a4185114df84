package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_JWT(t *testing.T) {
	tests := []struct {
		name    string
		auth    AuthConfig
		wantErr string
	}{
		{"valid", AuthConfig{JWTSecret: "secret", JWTExpirationHours: 24}, ""},
		{"missing secret", AuthConfig{JWTExpirationHours: 24}, "JWT_SECRET is required"},
		{"zero expiration", AuthConfig{JWTSecret: "secret"}, "at least 1 hour"},
		{"negative expiration", AuthConfig{JWTSecret: "secret", JWTExpirationHours: -5}, "at least 1 hour"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Auth: tt.auth}
			jwt, err := cfg.JWT()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.auth.JWTSecret, jwt.Secret)
			assert.Equal(t, tt.auth.JWTExpirationHours, jwt.ExpirationHours)
		})
	}
}

func TestConfig_Password(t *testing.T) {
	tests := []struct {
		name    string
		cost    int
		wantErr bool
	}{
		{"minimum", 10, false},
		{"default", 12, false},
		{"maximum", 14, false},
		{"too low", 9, true},
		{"too high", 15, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Auth: AuthConfig{BcryptCost: tt.cost}}
			pw, err := cfg.Password()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cost, pw.BcryptCost)
		})
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	pw := &PasswordConfig{BcryptCost: 10}

	hash, err := pw.HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)

	assert.True(t, pw.VerifyPassword("password123", hash))
	assert.False(t, pw.VerifyPassword("password124", hash))
}

func TestPasswordConfig_Pepper(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: 10, Pepper: "pepper"}
	plain := &PasswordConfig{BcryptCost: 10}

	hash, err := peppered.HashPassword("password123")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("password123", hash))
	assert.False(t, plain.VerifyPassword("password123", hash))
}
