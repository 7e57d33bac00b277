package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func validConfig() Config {
	return Config{
		CheckInterval: Duration(30 * time.Second),
		Timeout:       Duration(5 * time.Second),
		Servers: []ServerConfig{
			{Name: "web", Host: "example.com", Port: 443, Protocol: "tcp"},
		},
		Webhook: WebhookConfig{
			Enabled:       true,
			URL:           "https://hooks.example.com/abc",
			RetryCount:    3,
			RetryInterval: Duration(time.Second),
		},
	}
}

func TestLoadAndValidateJSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
  "check_interval": 30,
  "timeout": "5s",
  "servers": [
    {"name": "web", "host": "example.com", "port": 443, "protocol": "TCP"},
    {"name": "dns", "host": "9.9.9.9", "port": 53, "protocol": "udp"}
  ],
  "webhook": {
    "enabled": true,
    "url": "https://open.feishu.cn/open-apis/bot/v2/hook/xxx",
    "method": "post",
    "retry_count": 3,
    "retry_interval": 60
  }
}`)

	var cfg Config
	require.NoError(t, LoadAndValidate(path, &cfg))

	// Bare numbers are seconds, strings are Go durations.
	assert.Equal(t, 30*time.Second, cfg.CheckInterval.Duration())
	assert.Equal(t, 5*time.Second, cfg.Timeout.Duration())
	assert.Equal(t, 60*time.Second, cfg.Webhook.RetryInterval.Duration())

	// Normalization and defaults.
	assert.Equal(t, "tcp", cfg.Servers[0].Protocol)
	assert.Equal(t, "POST", cfg.Webhook.Method)
	assert.Equal(t, "text", cfg.Webhook.MsgType)
	assert.Equal(t, 15*time.Second, cfg.Webhook.Timeout.Duration())
	assert.Equal(t, defaultConcurrency, cfg.Concurrency)
}

func TestLoadAndValidateYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
check_interval: 1m
timeout: 5
servers:
  - name: web
    host: example.com
    port: 443
    protocol: tcp
webhook:
  enabled: false
  retry_count: 0
  retry_interval: 0
`)

	var cfg Config
	require.NoError(t, LoadAndValidate(path, &cfg))

	assert.Equal(t, time.Minute, cfg.CheckInterval.Duration())
	assert.Equal(t, 5*time.Second, cfg.Timeout.Duration())
	assert.False(t, cfg.Webhook.Enabled)
}

func TestLoadFileErrors(t *testing.T) {
	var cfg Config

	err := LoadFile(filepath.Join(t.TempDir(), "missing.json"), &cfg)
	require.Error(t, err)

	path := writeConfig(t, "bad.json", `{"check_interval": `)
	require.Error(t, LoadFile(path, &cfg))
}

func TestDurationDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{name: "bare number is seconds", raw: `90`, want: 90 * time.Second},
		{name: "fractional seconds", raw: `0.5`, want: 500 * time.Millisecond},
		{name: "duration string", raw: `"1m30s"`, want: 90 * time.Second},
		{name: "bad string", raw: `"ninety"`, wantErr: true},
		{name: "wrong type", raw: `["30s"]`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration

			err := d.UnmarshalJSON([]byte(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:    "zero check interval",
			mutate:  func(c *Config) { c.CheckInterval = 0 },
			wantErr: "check_interval",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Timeout = 0 },
			wantErr: "timeout",
		},
		{
			name:    "negative concurrency",
			mutate:  func(c *Config) { c.Concurrency = -1 },
			wantErr: "concurrency",
		},
		{
			name:    "negative probe rate",
			mutate:  func(c *Config) { c.ProbeRate = -0.5 },
			wantErr: "probe_rate",
		},
		{
			name:    "no servers",
			mutate:  func(c *Config) { c.Servers = nil },
			wantErr: "at least one server",
		},
		{
			name:    "missing server name",
			mutate:  func(c *Config) { c.Servers[0].Name = "" },
			wantErr: "server 1",
		},
		{
			name:    "missing host",
			mutate:  func(c *Config) { c.Servers[0].Host = "" },
			wantErr: "host",
		},
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.Servers[0].Port = 0 },
			wantErr: "between 1 and 65535",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Servers[0].Port = 70000 },
			wantErr: "between 1 and 65535",
		},
		{
			name:    "unknown protocol",
			mutate:  func(c *Config) { c.Servers[0].Protocol = "icmp" },
			wantErr: "unknown protocol",
		},
		{
			name: "duplicate endpoint",
			mutate: func(c *Config) {
				c.Servers = append(c.Servers, ServerConfig{
					Name: "web-again", Host: "example.com", Port: 443, Protocol: "TCP",
				})
			},
			wantErr: "duplicate",
		},
		{
			name: "same address different protocol is distinct",
			mutate: func(c *Config) {
				c.Servers = append(c.Servers, ServerConfig{
					Name: "web-udp", Host: "example.com", Port: 443, Protocol: "udp",
				})
			},
		},
		{
			name:    "unsupported webhook method",
			mutate:  func(c *Config) { c.Webhook.Method = "DELETE" },
			wantErr: "GET, POST or PUT",
		},
		{
			name:    "negative retry count",
			mutate:  func(c *Config) { c.Webhook.RetryCount = -1 },
			wantErr: "retry_count",
		},
		{
			name:    "negative retry interval",
			mutate:  func(c *Config) { c.Webhook.RetryInterval = Duration(-time.Second) },
			wantErr: "retry_interval",
		},
		{
			name:    "enabled webhook without url",
			mutate:  func(c *Config) { c.Webhook.URL = "" },
			wantErr: "url is required",
		},
		{
			name: "disabled webhook without url",
			mutate: func(c *Config) {
				c.Webhook.Enabled = false
				c.Webhook.URL = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEndpoints(t *testing.T) {
	cfg := validConfig()
	cfg.Servers = append(cfg.Servers, ServerConfig{
		Name: "dns", Host: "9.9.9.9", Port: 53, Protocol: "UDP",
	})
	require.NoError(t, cfg.Validate())

	endpoints := cfg.Endpoints()
	require.Len(t, endpoints, 2)

	assert.Equal(t, "example.com:443/tcp", endpoints[0].Key())
	assert.Equal(t, "9.9.9.9:53/udp", endpoints[1].Key())
	assert.Equal(t, "dns", endpoints[1].Name)
}
