package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/angelmondragon/gymdesk-backend/pkg/logger"
	"github.com/angelmondragon/gymdesk-backend/pkg/metrics"
)

type fakeLock struct {
	held       bool
	acquireErr error
	releases   int
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.acquireErr != nil {
		return false, f.acquireErr
	}
	if f.held {
		return false, nil
	}
	f.held = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error {
	f.held = false
	f.releases++
	return nil
}

type testJob struct {
	name    string
	err     error
	runs    int
	started chan struct{}
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	if t.started != nil {
		select {
		case t.started <- struct{}{}:
		default:
		}
	}
	return t.err
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, job string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if labelValue(metric, "job") == job {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelValue(metric *dto.Metric, name string) string {
	for _, pair := range metric.GetLabel() {
		if pair.GetName() == name {
			return pair.GetValue()
		}
	}
	return ""
}

func newTestService(t *testing.T, lock Lock, jobs ...Job) (*Service, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Registry: NewRegistry(jobs...),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return svc, reg
}

func TestNewServiceRequiresLoggerAndLock(t *testing.T) {
	if _, err := NewService(ServiceParams{Lock: &fakeLock{}}); err == nil {
		t.Fatal("expected error without logger")
	}
	if _, err := NewService(ServiceParams{Logger: logger.New(logger.Options{})}); err == nil {
		t.Fatal("expected error without lock")
	}
}

func TestRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	ok := &testJob{name: "ok"}
	failing := &testJob{name: "failing", err: errors.New("boom")}
	lock := &fakeLock{}
	svc, reg := newTestService(t, lock, ok, failing)

	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if ok.runs != 1 || failing.runs != 1 {
		t.Fatalf("expected each job to run once, got ok=%d failing=%d", ok.runs, failing.runs)
	}
	if lock.releases != 1 || lock.held {
		t.Fatalf("expected lock released once, releases=%d held=%v", lock.releases, lock.held)
	}
	if got := counterValue(t, reg, "gymdesk_job_success_total", "ok"); got != 1 {
		t.Fatalf("expected one success for ok, got %v", got)
	}
	if got := counterValue(t, reg, "gymdesk_job_failure_total", "failing"); got != 1 {
		t.Fatalf("expected one failure for failing, got %v", got)
	}
}

func TestRunCycleSkipsWhenLockHeld(t *testing.T) {
	job := &testJob{name: "sweep"}
	svc, reg := newTestService(t, &fakeLock{held: true}, job)

	if err := svc.RunOnce(context.Background()); err != nil {
		t.Fatalf("run cycle: %v", err)
	}
	if job.runs != 0 {
		t.Fatalf("expected job skipped, ran %d times", job.runs)
	}
	if got := counterValue(t, reg, "gymdesk_job_skipped_total", "sweep"); got != 1 {
		t.Fatalf("expected skip recorded, got %v", got)
	}
}

func TestRunCycleSurfacesLockErrors(t *testing.T) {
	job := &testJob{name: "sweep"}
	svc, _ := newTestService(t, &fakeLock{acquireErr: errors.New("redis down")}, job)

	if err := svc.RunOnce(context.Background()); err == nil {
		t.Fatal("expected lock error")
	}
	if job.runs != 0 {
		t.Fatalf("job must not run without the lock")
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	job := &testJob{name: "sweep", started: make(chan struct{}, 1)}
	svc, _ := newTestService(t, &fakeLock{}, job)
	svc.interval = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	select {
	case <-job.started:
	case <-time.After(2 * time.Second):
		t.Fatal("initial cycle never ran")
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
