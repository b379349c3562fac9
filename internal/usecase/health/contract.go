package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// CheckFunc probes one auxiliary component.
type CheckFunc func(ctx context.Context) error
