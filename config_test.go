package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		bind:       "127.0.0.1",
		clientURL:  "http://localhost:5173",
		eventBurst: 20,
		eventRate:  10,
		port:       8080,
		sendBuffer: 32,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }, "--tls-key"},
		{"key without cert", func(c *Config) { c.tlsKey = "key.pem" }, "--tls-cert"},
		{"port zero", func(c *Config) { c.port = 0 }, "invalid port"},
		{"port too high", func(c *Config) { c.port = 70000 }, "invalid port"},
		{"zero rate", func(c *Config) { c.eventRate = 0 }, "event rate"},
		{"zero burst", func(c *Config) { c.eventBurst = 0 }, "event burst"},
		{"zero buffer", func(c *Config) { c.sendBuffer = 0 }, "send buffer"},
		{"relative client url", func(c *Config) { c.clientURL = "/play" }, "client url"},
		{"empty client url", func(c *Config) { c.clientURL = "" }, "client url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestValidateTrimsClientURL(t *testing.T) {
	cfg := validConfig()
	cfg.clientURL = "https://play.example.com/"

	require.NoError(t, cfg.validate())
	assert.Equal(t, "https://play.example.com", cfg.clientURL)
	assert.Equal(t, "https://play.example.com/room/ABC123", cfg.roomURL("ABC123"))
}

func TestScheme(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "http", cfg.scheme())

	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	assert.Equal(t, "https", cfg.scheme())
}

func TestAllowedOrigins(t *testing.T) {
	cfg := validConfig()
	cfg.clientURL = "https://play.example.com/app"
	cfg.corsOrigins = []string{"https://other.example.com/", " ", "https://play.example.com"}

	assert.Equal(t, []string{"https://play.example.com", "https://other.example.com"}, cfg.allowedOrigins())
}

func TestFlagDefaults(t *testing.T) {
	cfg := &Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, "0.0.0.0", cfg.bind)
	assert.Equal(t, 8080, cfg.port)
	assert.Equal(t, "http://localhost:5173", cfg.clientURL)
	assert.Equal(t, 20, cfg.eventBurst)
	assert.InDelta(t, 10.0, cfg.eventRate, 0.0001)
	assert.Equal(t, 32, cfg.sendBuffer)
	assert.False(t, cfg.profile)
	assert.NoError(t, cfg.validate())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("WORDSWAP_PORT", "9000")
	t.Setenv("WORDSWAP_CLIENT_URL", "https://words.example.com")
	t.Setenv("WORDSWAP_EVENT_RATE", "2.5")
	t.Setenv("WORDSWAP_VERBOSE", "true")

	cfg := &Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags(nil))

	assert.Equal(t, 9000, cfg.port)
	assert.Equal(t, "https://words.example.com", cfg.clientURL)
	assert.InDelta(t, 2.5, cfg.eventRate, 0.0001)
	assert.True(t, cfg.verbose)
}

func TestFlagsBeatEnvironment(t *testing.T) {
	t.Setenv("WORDSWAP_PORT", "9000")

	cfg := &Config{}
	cmd := newCmd(cfg)
	require.NoError(t, cmd.ParseFlags([]string{"--port", "9100", "--cors-origin", "https://a.example.com"}))

	assert.Equal(t, 9100, cfg.port)
	assert.Equal(t, []string{"https://a.example.com"}, cfg.corsOrigins)
}
