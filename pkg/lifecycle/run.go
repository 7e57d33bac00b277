// Package lifecycle runs a service until a shutdown trigger arrives, then
// stops it within a bounded grace period.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ShutdownTimeout bounds how long a service gets to stop.
const ShutdownTimeout = 10 * time.Second

// Service defines the interface that all services must implement.
type Service interface {
	// Start runs the service until its context is canceled.
	Start(context.Context) error
	// Stop shuts the service down before the context expires.
	Stop(context.Context) error
}

// Options holds configuration for running a service.
type Options struct {
	ServiceName string
	Service     Service
	Logger      *zap.Logger
}

// Run starts the service and blocks until a SIGINT/SIGTERM arrives, the
// context is canceled, or the service fails. Whatever the trigger, the
// service is stopped with a ShutdownTimeout grace period.
func Run(ctx context.Context, opts *Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Signals are intercepted before the service goroutine exists, so
	// there is no startup window where a SIGTERM kills the process.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	defer signal.Stop(sigChan)

	logger.Info("starting service", zap.String("service", opts.ServiceName))

	errChan := make(chan error, 1)

	go func() {
		if err := opts.Service.Start(ctx); err != nil {
			select {
			case errChan <- err:
			default:
				logger.Error("service error", zap.Error(err))
			}
		}
	}()

	return waitForShutdown(ctx, cancel, opts.Service, sigChan, errChan, logger)
}

func waitForShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	svc Service,
	sigChan <-chan os.Signal,
	errChan <-chan error,
	logger *zap.Logger,
) error {
	var cause error

	select {
	case sig := <-sigChan:
		logger.Info("received signal, initiating shutdown", zap.String("signal", sig.String()))
	case err := <-errChan:
		logger.Error("service failed, initiating shutdown", zap.Error(err))

		cause = fmt.Errorf("service error: %w", err)
	case <-ctx.Done():
		logger.Info("context canceled, initiating shutdown")

		cause = ctx.Err()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()

	cancel()

	if err := svc.Stop(shutdownCtx); err != nil {
		logger.Error("error during service shutdown", zap.Error(err))

		if cause == nil {
			cause = fmt.Errorf("shutdown error: %w", err)
		}
	}

	return cause
}
