package config

import "errors"

var (
	errInvalidDuration     = errors.New("invalid duration")
	errNoServers           = errors.New("at least one server must be configured")
	errCheckInterval       = errors.New("check_interval must be greater than zero")
	errTimeout             = errors.New("timeout must be greater than zero")
	errServerName          = errors.New("server name is required")
	errServerHost          = errors.New("server host is required")
	errServerPort          = errors.New("server port must be between 1 and 65535")
	errDuplicateServer     = errors.New("duplicate server entry")
	errWebhookURL          = errors.New("webhook url is required when webhook is enabled")
	errWebhookMethod       = errors.New("webhook method must be GET, POST or PUT")
	errNegativeRetryCount  = errors.New("webhook retry_count cannot be negative")
	errNegativeRetryWait   = errors.New("webhook retry_interval cannot be negative")
	errNegativeConcurrency = errors.New("concurrency cannot be negative")
	errNegativeProbeRate   = errors.New("probe_rate cannot be negative")
)
