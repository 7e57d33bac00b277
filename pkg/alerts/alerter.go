package alerts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ZSanhu/port-guardian/pkg/config"
)

var errWebhookStatus = fmt.Errorf("webhook returned non-2xx status")

const (
	userAgent = "port-guardian/1.0"

	// maxErrorBodyBytes truncates error response bodies carried in errors.
	maxErrorBodyBytes = 512
)

// DeliveryResult reports the outcome of one delivery, including retries.
type DeliveryResult struct {
	Success  bool
	Attempts int
	LastErr  error
}

// WebhookAlerter posts formatted messages to the configured webhook URL.
type WebhookAlerter struct {
	config config.WebhookConfig
	client *http.Client
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewWebhookAlerter builds an alerter from a validated webhook configuration.
func NewWebhookAlerter(cfg config.WebhookConfig, logger *zap.Logger) *WebhookAlerter {
	return &WebhookAlerter{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout.Duration(),
		},
		logger: logger,
		sleep:  sleepContext,
	}
}

// IsEnabled reports whether deliveries should be attempted at all.
func (w *WebhookAlerter) IsEnabled() bool {
	return w.config.Enabled
}

// Deliver sends msg to the webhook: one initial attempt plus up to
// RetryCount retries spaced RetryInterval apart. The result reports the
// exact number of attempts made and the last error when all of them failed.
func (w *WebhookAlerter) Deliver(ctx context.Context, msg *Message) DeliveryResult {
	var result DeliveryResult

	for attempt := 0; attempt <= w.config.RetryCount; attempt++ {
		result.Attempts++

		err := w.send(ctx, msg)
		if err == nil {
			result.Success = true
			result.LastErr = nil

			w.logger.Info("webhook delivered",
				zap.String("platform", string(msg.Platform)),
				zap.Int("attempts", result.Attempts))

			return result
		}

		result.LastErr = err

		w.logger.Warn("webhook attempt failed",
			zap.Int("attempt", result.Attempts),
			zap.Int("max_attempts", w.config.RetryCount+1),
			zap.Error(err))

		if attempt == w.config.RetryCount {
			break
		}

		if err := w.sleep(ctx, w.config.RetryInterval.Duration()); err != nil {
			result.LastErr = err
			break
		}
	}

	w.logger.Error("webhook delivery failed",
		zap.String("platform", string(msg.Platform)),
		zap.Int("attempts", result.Attempts),
		zap.Error(result.LastErr))

	return result
}

// send performs a single request. A fresh request is built per attempt so
// the body reader is never reused.
func (w *WebhookAlerter) send(ctx context.Context, msg *Message) error {
	req, err := http.NewRequestWithContext(ctx, w.config.Method, w.config.URL, bytes.NewReader(msg.Body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	w.setHeaders(req, msg)

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			w.logger.Debug("failed to close response body", zap.Error(err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

		return fmt.Errorf("%w: status=%d body=%s", errWebhookStatus, resp.StatusCode, body)
	}

	return nil
}

func (w *WebhookAlerter) setHeaders(req *http.Request, msg *Message) {
	req.Header.Set("Content-Type", msg.ContentType)
	req.Header.Set("User-Agent", userAgent)

	// Configured headers win, including Content-Type overrides.
	for key, value := range w.config.Headers {
		req.Header.Set(key, value)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
