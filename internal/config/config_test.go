package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		secret  string
		wantErr error
	}{
		{"development accepts the default", "development", DefaultSessionSecret, nil},
		{"production rejects the default", "production", DefaultSessionSecret, ErrInsecureSessionSecret},
		{"production rejects a short secret", "production", "short", ErrInsecureSessionSecret},
		{"production accepts a real secret", "production", "3c1f9a7e5b2d4c6a8e0f1b3d5a7c9e2f", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				App:     AppConfig{Environment: tt.env},
				Session: SessionConfig{Secret: tt.secret},
			}
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}
