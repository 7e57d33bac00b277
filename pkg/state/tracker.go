// Package state tracks the last known availability of each endpoint and
// decides when an observation is a transition worth announcing.
package state

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ZSanhu/port-guardian/pkg/models"
)

// EndpointState is the tracked record for one endpoint.
type EndpointState struct {
	Endpoint      models.Endpoint
	Last          models.Status
	LastChangedAt time.Time
	LastCheckedAt time.Time
}

// Tracker remembers the last observed status per endpoint. It is safe for
// concurrent use and holds no state beyond the process lifetime.
type Tracker struct {
	mu                sync.RWMutex
	states            map[string]*EndpointState
	notifyOnFirstDown bool
	logger            *zap.Logger
}

// New seeds a tracker with every configured endpoint in the unknown state.
func New(endpoints []models.Endpoint, notifyOnFirstDown bool, logger *zap.Logger) *Tracker {
	states := make(map[string]*EndpointState, len(endpoints))
	for _, ep := range endpoints {
		states[ep.Key()] = &EndpointState{Endpoint: ep, Last: models.StatusUnknown}
	}

	return &Tracker{
		states:            states,
		notifyOnFirstDown: notifyOnFirstDown,
		logger:            logger,
	}
}

// Apply folds one check result into the tracker. It returns a StatusChange
// when the observed status differs from the last known status, nil
// otherwise. The first observation of an endpoint is recorded silently
// unless notify-on-first-down is enabled and that observation is down.
func (t *Tracker) Apply(res models.CheckResult) *models.StatusChange {
	current := models.StatusFromReachable(res.Reachable)
	key := res.Endpoint.Key()

	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.states[key]
	if !ok {
		st = &EndpointState{Endpoint: res.Endpoint, Last: models.StatusUnknown}
		t.states[key] = st
	}

	previous := st.Last
	st.Last = current
	st.LastCheckedAt = res.CheckedAt

	if previous == current {
		return nil
	}

	st.LastChangedAt = res.CheckedAt

	if previous == models.StatusUnknown && !(t.notifyOnFirstDown && current == models.StatusDown) {
		t.logger.Debug("first observation recorded",
			zap.String("endpoint", key),
			zap.String("status", string(current)))

		return nil
	}

	if current == models.StatusDown {
		t.logger.Warn("endpoint went down",
			zap.String("endpoint", key),
			zap.String("previous", string(previous)))
	} else {
		t.logger.Info("endpoint recovered",
			zap.String("endpoint", key),
			zap.String("previous", string(previous)),
			zap.Duration("response_time", res.RespTime))
	}

	return &models.StatusChange{
		Endpoint: res.Endpoint,
		Previous: previous,
		Current:  current,
		RespTime: res.RespTime,
		At:       res.CheckedAt,
	}
}

// Snapshot returns a copy of every tracked endpoint state.
func (t *Tracker) Snapshot() []EndpointState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]EndpointState, 0, len(t.states))
	for _, st := range t.states {
		out = append(out, *st)
	}

	return out
}
