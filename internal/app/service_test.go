package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vendapay/internal/config"
)

type fakeService struct {
	name     string
	startErr error
	stopped  bool
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.startErr != nil {
		return s.startErr
	}
	<-ctx.Done()
	return nil
}

func (s *fakeService) Stop(context.Context) error {
	s.stopped = true
	return nil
}

func TestRunnerStopsAllServicesOnFailure(t *testing.T) {
	boom := errors.New("boom")
	healthy := &fakeService{name: "http"}
	failing := &fakeService{name: "worker", startErr: boom}

	err := NewRunner(healthy, failing).Run(context.Background(), time.Second, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected start error, got %v", err)
	}
	if !healthy.stopped || !failing.stopped {
		t.Fatalf("expected every service stopped, http=%v worker=%v", healthy.stopped, failing.stopped)
	}
}

func TestRunnerReturnsNilOnCancel(t *testing.T) {
	svc := &fakeService{name: "commission-scheduler"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewRunner(svc).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("expected nil on cancel, got %v", err)
	}
}

func TestBuildRunnerRequiresConfig(t *testing.T) {
	if _, err := BuildRunner(nil, ModeAll); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestNormalizeOptionsDefaults(t *testing.T) {
	opts := normalizeOptions(Options{})
	if opts.Mode != ModeAll || opts.ShutdownTimeout != 10*time.Second || opts.Logger == nil {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
}

func TestBuildRunnerRejectsUnknownMode(t *testing.T) {
	if _, err := BuildRunner(&config.Config{}, "cron"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestModeSelectsServices(t *testing.T) {
	if !runsCommissionJobs(ModeWorker) || runsHTTP(ModeWorker) {
		t.Fatalf("worker mode should only run commission jobs")
	}
	if !runsHTTP(ModeAPI) || runsCommissionJobs(ModeAPI) {
		t.Fatalf("api mode should only run http")
	}
}

func TestRunnerNamesListsCommissionScheduler(t *testing.T) {
	runner := NewRunner(&fakeService{name: "http"}, nil, &fakeService{name: "commission-scheduler"})
	names := runner.Names()
	if len(names) != 2 || names[0] != "http" || names[1] != "commission-scheduler" {
		t.Fatalf("unexpected names: %v", names)
	}
}

func TestHTTPServiceTimeouts(t *testing.T) {
	svc := NewHTTPService("127.0.0.1:0", nil)
	if svc.Addr() != "127.0.0.1:0" || svc.server.WriteTimeout != httpWriteTimeout || svc.server.ReadHeaderTimeout != httpReadHeaderTimeout {
		t.Fatalf("unexpected http server settings: %+v", svc.server)
	}
}
