package config

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ZSanhu/port-guardian/pkg/models"
)

const (
	defaultConcurrency    = 10
	defaultWebhookMethod  = http.MethodPost
	defaultMsgType        = "text"
	defaultWebhookTimeout = 15 * time.Second
)

// Duration wraps time.Duration so config files can use either Go duration
// strings ("1m30s") or bare numbers, which are read as seconds.
type Duration time.Duration

// Duration returns the wrapped time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	return d.decode(v)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var v interface{}
	if err := node.Decode(&v); err != nil {
		return err
	}

	return d.decode(v)
}

func (d *Duration) decode(v interface{}) error {
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value * float64(time.Second)))
		return nil
	case int:
		*d = Duration(time.Duration(value) * time.Second)
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %q", errInvalidDuration, value)
		}

		*d = Duration(dur)

		return nil
	default:
		return fmt.Errorf("%w: unexpected type %T", errInvalidDuration, v)
	}
}

// Config is the root port-guardian configuration.
type Config struct {
	CheckInterval     Duration       `json:"check_interval" yaml:"check_interval"`
	Timeout           Duration       `json:"timeout" yaml:"timeout"`
	Concurrency       int            `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	ProbeRate         float64        `json:"probe_rate,omitempty" yaml:"probe_rate,omitempty"`
	LogLevel          string         `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	LogFile           string         `json:"log_file,omitempty" yaml:"log_file,omitempty"`
	NotifyOnFirstDown bool           `json:"notify_on_first_down,omitempty" yaml:"notify_on_first_down,omitempty"`
	Servers           []ServerConfig `json:"servers" yaml:"servers"`
	Webhook           WebhookConfig  `json:"webhook" yaml:"webhook"`
}

// ServerConfig is one monitored endpoint as written in the config file.
type ServerConfig struct {
	Name     string `json:"name" yaml:"name"`
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Protocol string `json:"protocol" yaml:"protocol"`
}

// WebhookConfig controls status change notifications.
type WebhookConfig struct {
	Enabled       bool              `json:"enabled" yaml:"enabled"`
	URL           string            `json:"url" yaml:"url"`
	Method        string            `json:"method,omitempty" yaml:"method,omitempty"`
	MsgType       string            `json:"msg_type,omitempty" yaml:"msg_type,omitempty"`
	Headers       map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	RetryCount    int               `json:"retry_count" yaml:"retry_count"`
	RetryInterval Duration          `json:"retry_interval" yaml:"retry_interval"`
	Timeout       Duration          `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Validate applies defaults and checks the configuration. Protocols and the
// webhook method are normalized in place so later consumers can rely on
// canonical values.
func (c *Config) Validate() error {
	if c.CheckInterval.Duration() <= 0 {
		return errCheckInterval
	}

	if c.Timeout.Duration() <= 0 {
		return errTimeout
	}

	if c.Concurrency < 0 {
		return errNegativeConcurrency
	}

	if c.Concurrency == 0 {
		c.Concurrency = defaultConcurrency
	}

	if c.ProbeRate < 0 {
		return errNegativeProbeRate
	}

	if len(c.Servers) == 0 {
		return errNoServers
	}

	seen := make(map[string]int, len(c.Servers))

	for i := range c.Servers {
		if err := c.Servers[i].validate(); err != nil {
			return fmt.Errorf("server %d: %w", i+1, err)
		}

		key := c.Servers[i].Endpoint().Key()
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%w: server %d repeats server %d (%s)", errDuplicateServer, i+1, prev, key)
		}

		seen[key] = i + 1
	}

	return c.Webhook.validate()
}

// Endpoints returns the configured servers as endpoint descriptors.
func (c *Config) Endpoints() []models.Endpoint {
	endpoints := make([]models.Endpoint, 0, len(c.Servers))
	for _, s := range c.Servers {
		endpoints = append(endpoints, s.Endpoint())
	}

	return endpoints
}

func (s *ServerConfig) validate() error {
	if s.Name == "" {
		return errServerName
	}

	if s.Host == "" {
		return errServerHost
	}

	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("%w: got %d", errServerPort, s.Port)
	}

	proto, err := models.ParseProtocol(s.Protocol)
	if err != nil {
		return err
	}

	s.Protocol = string(proto)

	return nil
}

// Endpoint converts a validated server entry into its endpoint descriptor.
func (s ServerConfig) Endpoint() models.Endpoint {
	return models.Endpoint{
		Name:     s.Name,
		Host:     s.Host,
		Port:     s.Port,
		Protocol: models.Protocol(s.Protocol),
	}
}

func (w *WebhookConfig) validate() error {
	if w.Method == "" {
		w.Method = defaultWebhookMethod
	}

	w.Method = strings.ToUpper(w.Method)

	switch w.Method {
	case http.MethodGet, http.MethodPost, http.MethodPut:
	default:
		return fmt.Errorf("%w: got %q", errWebhookMethod, w.Method)
	}

	if w.MsgType == "" {
		w.MsgType = defaultMsgType
	}

	if w.RetryCount < 0 {
		return errNegativeRetryCount
	}

	if w.RetryInterval.Duration() < 0 {
		return errNegativeRetryWait
	}

	if w.Timeout.Duration() <= 0 {
		w.Timeout = Duration(defaultWebhookTimeout)
	}

	if w.Enabled && w.URL == "" {
		return errWebhookURL
	}

	return nil
}
