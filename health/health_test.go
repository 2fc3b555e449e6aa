package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestReportAggregation(t *testing.T) {
	m := NewManager("test")
	m.RegisterFunc("ok", func(ctx context.Context) *Check {
		return &Check{Name: "ok", Status: StatusHealthy}
	})
	m.RegisterFunc("slow", func(ctx context.Context) *Check {
		return &Check{Name: "slow", Status: StatusDegraded}
	})

	report := m.Check(context.Background())
	if report.Status != StatusDegraded {
		t.Errorf("expected degraded report, got %s", report.Status)
	}
	if len(report.Checks) != 2 {
		t.Errorf("expected 2 checks, got %d", len(report.Checks))
	}

	m.RegisterFunc("down", func(ctx context.Context) *Check {
		return &Check{Name: "down", Status: StatusUnhealthy}
	})
	if m.Check(context.Background()).Status != StatusUnhealthy {
		t.Error("expected unhealthy report once a check fails")
	}
	if m.IsReady(context.Background()) {
		t.Error("expected not ready once a check fails")
	}
}

func TestNilCheckResultCountsAsUnhealthy(t *testing.T) {
	m := NewManager("test")
	m.RegisterFunc("broken", func(ctx context.Context) *Check { return nil })

	report := m.Check(context.Background())
	if report.Status != StatusUnhealthy {
		t.Errorf("expected unhealthy report, got %s", report.Status)
	}
}

func TestDatabaseChecker(t *testing.T) {
	up := NewDatabaseChecker("sqlite", func(ctx context.Context) error { return nil })
	if c := up.Check(context.Background()); c.Status != StatusHealthy {
		t.Errorf("expected healthy check, got %s", c.Status)
	}

	down := NewDatabaseChecker("sqlite", func(ctx context.Context) error {
		return errors.New("connection refused")
	})
	if c := down.Check(context.Background()); c.Status != StatusUnhealthy {
		t.Errorf("expected unhealthy check, got %s", c.Status)
	}
}

func TestReadyHandler(t *testing.T) {
	m := NewManager("test")
	m.RegisterFunc("db", func(ctx context.Context) *Check {
		return &Check{Name: "db", Status: StatusHealthy}
	})

	rec := httptest.NewRecorder()
	m.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 from ready handler, got %d", rec.Code)
	}

	m.RegisterFunc("down", func(ctx context.Context) *Check {
		return &Check{Name: "down", Status: StatusUnhealthy}
	})
	rec = httptest.NewRecorder()
	m.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 from ready handler, got %d", rec.Code)
	}
}
