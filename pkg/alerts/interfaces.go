package alerts

import "context"

//go:generate mockgen -destination=mock_alerts.go -package=alerts github.com/ZSanhu/port-guardian/pkg/alerts Alerter

// Alerter delivers formatted notification messages.
type Alerter interface {
	// Deliver sends one message, retrying per the alerter's configuration.
	Deliver(ctx context.Context, msg *Message) DeliveryResult
	// IsEnabled reports whether deliveries should be attempted at all.
	IsEnabled() bool
}
