package alerts

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/ZSanhu/port-guardian/pkg/models"
)

// Queue routes status change notifications to per-endpoint delivery
// workers so deliveries for one endpoint happen in order while endpoints
// never wait on each other. Enqueue never blocks the caller: each endpoint
// holds at most one message waiting to be delivered, and a newer change
// replaces an older one that has not started delivering yet. A delivery
// already in flight keeps its retry budget.
type Queue struct {
	alerter   Alerter
	formatter *Formatter
	logger    *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	workers map[string]chan *Message
	stopped bool
}

// NewQueue builds a notification queue delivering through alerter.
func NewQueue(alerter Alerter, formatter *Formatter, logger *zap.Logger) *Queue {
	ctx, cancel := context.WithCancel(context.Background())

	return &Queue{
		alerter:   alerter,
		formatter: formatter,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		workers:   make(map[string]chan *Message),
	}
}

// Enqueue formats change and hands it to the endpoint's delivery worker.
// It returns immediately; delivery outcome is logged, never returned.
func (q *Queue) Enqueue(change *models.StatusChange) {
	key := change.Endpoint.Key()

	if !q.alerter.IsEnabled() {
		q.logger.Debug("webhook disabled, skipping notification",
			zap.String("endpoint", key))

		return
	}

	msg, err := q.formatter.Format(change)
	if err != nil {
		q.logger.Error("failed to format notification",
			zap.String("endpoint", key),
			zap.Error(err))

		return
	}

	pending := q.workerFor(key)
	if pending == nil {
		return
	}

	select {
	case pending <- msg:
	default:
		// Slot taken: drop the stale message and queue the newer one.
		select {
		case <-pending:
			q.logger.Debug("superseding queued notification",
				zap.String("endpoint", key))
		default:
		}

		select {
		case pending <- msg:
		default:
		}
	}
}

// workerFor returns the endpoint's mailbox, starting its worker on first
// use. It returns nil after Stop.
func (q *Queue) workerFor(key string) chan *Message {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return nil
	}

	pending, ok := q.workers[key]
	if !ok {
		pending = make(chan *Message, 1)
		q.workers[key] = pending

		q.wg.Add(1)

		go q.runWorker(key, pending)
	}

	return pending
}

func (q *Queue) runWorker(key string, pending <-chan *Message) {
	defer q.wg.Done()

	for {
		select {
		case msg := <-pending:
			res := q.alerter.Deliver(q.ctx, msg)
			if !res.Success {
				q.logger.Error("notification dropped",
					zap.String("endpoint", key),
					zap.Int("attempts", res.Attempts),
					zap.Error(res.LastErr))
			}
		case <-q.ctx.Done():
			return
		}
	}
}

// Stop cancels in-flight deliveries and waits for all workers to exit.
// Messages still queued are dropped.
func (q *Queue) Stop() {
	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return
	}

	q.stopped = true
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()
}
