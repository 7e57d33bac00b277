package lifecycle

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubService struct {
	startFn func(context.Context) error
	stopFn  func(context.Context) error
}

func (s *stubService) Start(ctx context.Context) error { return s.startFn(ctx) }
func (s *stubService) Stop(ctx context.Context) error  { return s.stopFn(ctx) }

func TestRunStopsWhenServiceFails(t *testing.T) {
	boom := errors.New("bind failed")
	stopped := make(chan struct{})

	svc := &stubService{
		startFn: func(context.Context) error { return boom },
		stopFn: func(context.Context) error {
			close(stopped)
			return nil
		},
	}

	err := Run(context.Background(), &Options{
		ServiceName: "monitor",
		Service:     svc,
		Logger:      zap.NewNop(),
	})
	require.ErrorIs(t, err, boom)

	select {
	case <-stopped:
	default:
		t.Fatal("failed service was not stopped")
	}
}

func TestRunHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	stopped := make(chan struct{})

	svc := &stubService{
		startFn: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
		stopFn: func(context.Context) error {
			close(stopped)
			return nil
		},
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- Run(ctx, &Options{ServiceName: "monitor", Service: svc, Logger: zap.NewNop()})
	}()

	<-started
	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	select {
	case <-stopped:
	default:
		t.Fatal("service was not stopped")
	}
}

func TestRunStopsOnSignal(t *testing.T) {
	started := make(chan struct{})
	stopped := make(chan struct{})

	svc := &stubService{
		startFn: func(ctx context.Context) error {
			close(started)
			<-ctx.Done()
			return nil
		},
		stopFn: func(context.Context) error {
			close(stopped)
			return nil
		},
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- Run(context.Background(), &Options{ServiceName: "monitor", Service: svc, Logger: zap.NewNop()})
	}()

	// Run installs its signal handler before launching the service, so
	// once Start has run the handler is in place.
	<-started
	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after SIGINT")
	}

	select {
	case <-stopped:
	default:
		t.Fatal("service was not stopped")
	}
}
