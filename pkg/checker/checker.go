// Package checker probes endpoint reachability over TCP and UDP.
package checker

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/ZSanhu/port-guardian/pkg/models"
)

const (
	udpReadBufferSize = 1024

	// probeGrace bounds how long Check waits past the configured timeout
	// before declaring the probe wedged.
	probeGrace = 250 * time.Millisecond
)

// PortChecker performs single reachability probes. It holds no per-endpoint
// state and is safe for concurrent use.
type PortChecker struct {
	timeout time.Duration
	logger  *zap.Logger
}

// New returns a PortChecker that bounds every probe by timeout.
func New(timeout time.Duration, logger *zap.Logger) *PortChecker {
	return &PortChecker{
		timeout: timeout,
		logger:  logger,
	}
}

// Check probes a single endpoint and always returns a result, never an
// error: failures are carried in the result. Check returns within the
// configured timeout plus a small grace period even if the underlying
// network call wedges; a wedged probe is reported as a timeout.
func (c *PortChecker) Check(ctx context.Context, ep models.Endpoint) models.CheckResult {
	start := time.Now()

	c.logger.Debug("checking endpoint", zap.String("endpoint", ep.String()))

	resultCh := make(chan models.CheckResult, 1)

	go func() {
		resultCh <- c.probe(ctx, ep, start)
	}()

	timer := time.NewTimer(c.timeout + probeGrace)
	defer timer.Stop()

	var res models.CheckResult

	select {
	case res = <-resultCh:
	case <-timer.C:
		res = c.failure(ep, start, errProbeWedged)
		res.Category = models.FailureTimeout
	case <-ctx.Done():
		res = c.failure(ep, start, ctx.Err())
	}

	c.logResult(res)

	return res
}

func (c *PortChecker) probe(ctx context.Context, ep models.Endpoint, start time.Time) models.CheckResult {
	switch ep.Protocol {
	case models.ProtocolTCP:
		return c.checkTCP(ctx, ep, start)
	case models.ProtocolUDP:
		return c.checkUDP(ctx, ep, start)
	default:
		return c.failure(ep, start, fmt.Errorf("%w: %s", errUnsupportedProtocol, ep.Protocol))
	}
}

func (c *PortChecker) checkTCP(ctx context.Context, ep models.Endpoint, start time.Time) models.CheckResult {
	connCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var d net.Dialer

	conn, err := d.DialContext(connCtx, "tcp", ep.Addr())
	if err != nil {
		return c.failure(ep, start, err)
	}

	if err := conn.Close(); err != nil {
		c.logger.Debug("error closing probe connection", zap.Error(err))
	}

	return c.success(ep, start)
}

// checkUDP sends one empty datagram and waits for any reply. Silence until
// the deadline counts as reachable: many UDP services never answer, so the
// absence of an error is the strongest signal available without protocol
// knowledge. A resolution failure, a missing route or an ICMP
// port-unreachable surfaced on the socket counts as unreachable.
func (c *PortChecker) checkUDP(ctx context.Context, ep models.Endpoint, start time.Time) models.CheckResult {
	dialCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var d net.Dialer

	conn, err := d.DialContext(dialCtx, "udp", ep.Addr())
	if err != nil {
		return c.failure(ep, start, err)
	}

	defer func() {
		if err := conn.Close(); err != nil {
			c.logger.Debug("error closing probe connection", zap.Error(err))
		}
	}()

	if err := conn.SetDeadline(start.Add(c.timeout)); err != nil {
		return c.failure(ep, start, err)
	}

	if _, err := conn.Write([]byte{}); err != nil {
		return c.failure(ep, start, err)
	}

	buf := make([]byte, udpReadBufferSize)

	_, err = conn.Read(buf)
	if err != nil && !isTimeout(err) {
		return c.failure(ep, start, err)
	}

	return c.success(ep, start)
}

func (c *PortChecker) success(ep models.Endpoint, start time.Time) models.CheckResult {
	return models.CheckResult{
		Endpoint:  ep,
		Reachable: true,
		RespTime:  time.Since(start),
		CheckedAt: start,
	}
}

func (c *PortChecker) failure(ep models.Endpoint, start time.Time, err error) models.CheckResult {
	return models.CheckResult{
		Endpoint:  ep,
		Reachable: false,
		RespTime:  time.Since(start),
		CheckedAt: start,
		Category:  classify(err),
		Err:       err,
	}
}

func (c *PortChecker) logResult(res models.CheckResult) {
	if res.Reachable {
		c.logger.Info("endpoint reachable",
			zap.String("endpoint", res.Endpoint.Key()),
			zap.Duration("response_time", res.RespTime))

		return
	}

	c.logger.Warn("endpoint unreachable",
		zap.String("endpoint", res.Endpoint.Key()),
		zap.String("category", string(res.Category)),
		zap.Error(res.Err))
}

func isTimeout(err error) bool {
	var nerr net.Error

	return errors.As(err, &nerr) && nerr.Timeout()
}

// classify maps a probe error onto a failure category. Resolution failures
// win over timeouts because a resolver timeout still means the name never
// resolved.
func classify(err error) models.FailureCategory {
	if err == nil {
		return models.FailureNone
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return models.FailureUnresolved
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return models.FailureRefused
	}

	if isTimeout(err) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, os.ErrDeadlineExceeded) {
		return models.FailureTimeout
	}

	return models.FailureOther
}
