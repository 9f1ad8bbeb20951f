package service

import (
	"context"
	"sync"

	"connect-client/internal/core/domain"
	"connect-client/internal/core/ports"

	"github.com/rs/zerolog"
)

// RequestLogService persists completed-call entries off the request path.
type RequestLogService struct {
	repo     ports.RequestLogRepository
	log      zerolog.Logger
	inflight sync.WaitGroup
}

// NewRequestLogService creates a request log service.
// If repo is nil, entries are only written to the logger.
func NewRequestLogService(repo ports.RequestLogRepository, log zerolog.Logger) *RequestLogService {
	return &RequestLogService{repo: repo, log: log}
}

// Record stores a completed-call entry asynchronously. Call Flush before
// shutting down the repository.
func (s *RequestLogService) Record(ctx context.Context, entry *domain.RequestLog) {
	ctx = context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.log.Debug().
			Str("method", entry.Method).
			Str("path", entry.Path).
			Int("status", entry.StatusCode).
			Str("outcome", entry.Outcome).
			Dur("duration", entry.Duration).
			Msg("connect request")

		if s.repo != nil {
			if err := s.repo.Create(ctx, entry); err != nil {
				s.log.Warn().Err(err).Str("path", entry.Path).Msg("failed to persist request log")
			}
		}
	}()
}

// Flush waits for pending writes, or for ctx to end.
func (s *RequestLogService) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
