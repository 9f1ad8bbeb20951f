package postgres

import (
	"context"
	"errors"
	"fmt"
)

var errSchemaMissing = errors.New("wcc_options table does not exist")

// HealthCheck reports the database healthy only when the option table is reachable.
type HealthCheck struct {
	pool Pool
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	var present bool
	if err := h.pool.QueryRow(ctx, `SELECT to_regclass('wcc_options') IS NOT NULL`).Scan(&present); err != nil {
		return fmt.Errorf("probing option table: %w", err)
	}
	if !present {
		return errSchemaMissing
	}
	return nil
}

func (h *HealthCheck) Name() string { return "postgresql" }
