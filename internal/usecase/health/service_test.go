package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_Healthy(t *testing.T) {
	r := New(&mockDBPinger{}).Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["database"] != CheckOK {
		t.Errorf("expected database %q, got %q", CheckOK, r.Checks["database"])
	}
	if len(r.Checks) != 1 {
		t.Errorf("expected only the database check, got %v", r.Checks)
	}
}

func TestCheck_DBError(t *testing.T) {
	r := New(&mockDBPinger{err: errors.New("conn refused")}).Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
}

func TestCheck_AuxiliaryFailureDegrades(t *testing.T) {
	svc := New(&mockDBPinger{}).
		WithCheck("schema", func(context.Context) error { return nil }).
		WithCheck("cache", func(context.Context) error { return errors.New("down") })
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["schema"] != CheckOK || r.Checks["cache"] != CheckError {
		t.Errorf("unexpected checks %v", r.Checks)
	}
}

func TestCheck_DBErrorWinsOverDegraded(t *testing.T) {
	svc := New(&mockDBPinger{err: errors.New("x")}).
		WithCheck("cache", func(context.Context) error { return errors.New("down") })
	if r := svc.Check(context.Background()); r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_Timeout(t *testing.T) {
	svc := New(&mockDBPinger{}).
		WithTimeout(10*time.Millisecond).
		WithCheck("slow", func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		})
	r := svc.Check(context.Background())
	if r.Checks["slow"] != CheckError {
		t.Errorf("expected slow check to time out, got %v", r.Checks)
	}
}
