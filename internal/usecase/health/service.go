package health

import (
	"context"
	"sort"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an auxiliary component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

const (
	databaseCheck       = "database"
	defaultCheckTimeout = 2 * time.Second
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type namedCheck struct {
	name string
	fn   CheckFunc
}

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	extra   []namedCheck
	timeout time.Duration
}

// New creates a Service for the given database.
func New(db DBPinger) *Service {
	return &Service{db: db, timeout: defaultCheckTimeout}
}

// WithCheck adds an auxiliary check. Its failure degrades but does not fail the report.
func (s *Service) WithCheck(name string, fn CheckFunc) *Service {
	s.extra = append(s.extra, namedCheck{name: name, fn: fn})
	sort.Slice(s.extra, func(i, j int) bool { return s.extra[i].name < s.extra[j].name })
	return s
}

// WithTimeout bounds each individual check.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, len(s.extra)+1)

	checks[databaseCheck] = s.run(ctx, s.db.Ping)
	status := Healthy
	if checks[databaseCheck] == CheckError {
		status = Unhealthy
	}

	for _, c := range s.extra {
		checks[c.name] = s.run(ctx, c.fn)
		if checks[c.name] == CheckError && status == Healthy {
			status = Degraded
		}
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) run(ctx context.Context, fn CheckFunc) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
