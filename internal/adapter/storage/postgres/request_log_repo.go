package postgres

import (
	"context"
	"fmt"

	"connect-client/internal/core/domain"
)

// RequestLogRepo implements ports.RequestLogRepository.
type RequestLogRepo struct {
	pool Pool
}

func NewRequestLogRepo(pool Pool) *RequestLogRepo {
	return &RequestLogRepo{pool: pool}
}

func (r *RequestLogRepo) Create(ctx context.Context, log *domain.RequestLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO wcc_request_logs (id, method, path, status_code, outcome, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		log.ID, log.Method, log.Path, log.StatusCode, log.Outcome,
		log.Duration.Milliseconds(), log.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert request log: %w", err)
	}
	return nil
}
