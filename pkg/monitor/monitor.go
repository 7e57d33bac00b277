// Package monitor drives the periodic check cycle: it fans endpoint probes
// out to a bounded worker pool and forwards status changes to the notifier.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ZSanhu/port-guardian/pkg/models"
)

var errProbePanic = errors.New("probe panicked")

const defaultConcurrency = 10

// Config holds scheduler settings.
type Config struct {
	Interval    time.Duration
	Concurrency int
	// ProbeRate caps probe launches per second across all endpoints.
	// Zero means no cap.
	ProbeRate float64
}

// Monitor runs check cycles until stopped. Cycles never overlap, so each
// endpoint has at most one probe in flight at any time.
type Monitor struct {
	config    Config
	endpoints []models.Endpoint
	prober    Prober
	tracker   StatusTracker
	notifier  Notifier
	limiter   *rate.Limiter
	logger    *zap.Logger
	done      chan struct{}
	stopOnce  sync.Once
}

// New builds a monitor over the given endpoints.
func New(
	cfg Config,
	endpoints []models.Endpoint,
	prober Prober,
	tracker StatusTracker,
	notifier Notifier,
	logger *zap.Logger,
) *Monitor {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}

	var limiter *rate.Limiter
	if cfg.ProbeRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.ProbeRate), 1)
	}

	return &Monitor{
		config:    cfg,
		endpoints: endpoints,
		prober:    prober,
		tracker:   tracker,
		notifier:  notifier,
		limiter:   limiter,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start runs the first check cycle immediately, then one per interval. A
// cycle that outlasts the interval is followed by the next one right away,
// never concurrently. Start returns when ctx is canceled or Stop is called.
func (m *Monitor) Start(ctx context.Context) error {
	m.logger.Info("monitor started",
		zap.Duration("interval", m.config.Interval),
		zap.Int("concurrency", m.config.Concurrency),
		zap.Int("endpoints", len(m.endpoints)))

	m.runCycle(ctx)

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-m.done:
			return nil
		case <-ticker.C:
			m.runCycle(ctx)
		}
	}
}

// Stop terminates the cycle loop. Safe to call more than once.
func (m *Monitor) Stop() error {
	m.stopOnce.Do(func() {
		close(m.done)
	})

	return nil
}

func (m *Monitor) runCycle(ctx context.Context) {
	start := time.Now()

	m.logger.Debug("check cycle starting", zap.Int("endpoints", len(m.endpoints)))

	endpointCh := make(chan models.Endpoint, m.config.Concurrency)

	var wg sync.WaitGroup

	for i := 0; i < m.config.Concurrency; i++ {
		wg.Add(1)

		go m.runWorker(ctx, &wg, endpointCh)
	}

	go m.feedEndpoints(ctx, endpointCh)

	wg.Wait()

	m.logger.Debug("check cycle finished", zap.Duration("elapsed", time.Since(start)))
}

func (m *Monitor) feedEndpoints(ctx context.Context, endpointCh chan<- models.Endpoint) {
	defer close(endpointCh)

	for _, ep := range m.endpoints {
		select {
		case endpointCh <- ep:
		case <-ctx.Done():
			return
		case <-m.done:
			return
		}
	}
}

func (m *Monitor) runWorker(ctx context.Context, wg *sync.WaitGroup, endpointCh <-chan models.Endpoint) {
	defer wg.Done()

	for {
		select {
		case ep, ok := <-endpointCh:
			if !ok {
				return
			}

			m.checkEndpoint(ctx, ep)
		case <-ctx.Done():
			return
		case <-m.done:
			return
		}
	}
}

func (m *Monitor) checkEndpoint(ctx context.Context, ep models.Endpoint) {
	if m.limiter != nil {
		if err := m.limiter.Wait(ctx); err != nil {
			return
		}
	}

	res := m.safeCheck(ctx, ep)

	// A result produced during shutdown is not a verdict.
	if ctx.Err() != nil {
		return
	}

	if change := m.tracker.Apply(res); change != nil {
		m.notifier.Enqueue(change)
	}
}

// safeCheck contains prober panics so one endpoint cannot abort the cycle.
func (m *Monitor) safeCheck(ctx context.Context, ep models.Endpoint) (res models.CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			id := uuid.NewString()

			m.logger.Error("probe panicked",
				zap.String("endpoint", ep.Key()),
				zap.String("incident_id", id),
				zap.Any("panic", r))

			res = models.CheckResult{
				Endpoint:  ep,
				Reachable: false,
				CheckedAt: time.Now(),
				Category:  models.FailureOther,
				Err:       fmt.Errorf("%w: incident %s", errProbePanic, id),
			}
		}
	}()

	return m.prober.Check(ctx, ep)
}
