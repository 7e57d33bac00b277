package monitor

import (
	"context"

	"github.com/ZSanhu/port-guardian/pkg/models"
)

//go:generate mockgen -destination=mock_monitor.go -package=monitor github.com/ZSanhu/port-guardian/pkg/monitor Prober,StatusTracker,Notifier

// Prober performs one reachability probe against an endpoint.
type Prober interface {
	// Check always returns a result; probe failures are carried inside it.
	Check(ctx context.Context, ep models.Endpoint) models.CheckResult
}

// StatusTracker folds probe results into per-endpoint state.
type StatusTracker interface {
	// Apply returns a status change when the result flips the endpoint's
	// known state, nil otherwise.
	Apply(res models.CheckResult) *models.StatusChange
}

// Notifier accepts status changes for asynchronous delivery.
type Notifier interface {
	// Enqueue must not block the caller.
	Enqueue(change *models.StatusChange)
}
