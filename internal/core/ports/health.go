package ports

import "context"

// HealthChecker is a dependency the sandbox reports on at /health.
type HealthChecker interface {
	Ping(ctx context.Context) error
	// Name keys the dependency in the health report.
	Name() string
}
