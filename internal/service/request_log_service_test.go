package service

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"connect-client/internal/core/domain"
	"connect-client/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestRequestLogService_Record_PersistsToRepo(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockRequestLogRepository(ctrl)
	svc := NewRequestLogService(mockRepo, newTestLogger())

	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, log *domain.RequestLog) error {
			assert.Equal(t, "/shipping/rates", log.Path)
			assert.NoError(t, ctx.Err(), "the caller's context ending must not abort persistence")
			return nil
		},
	)

	ctx, cancel := context.WithCancel(context.Background())
	svc.Record(ctx, &domain.RequestLog{
		ID:         uuid.New(),
		Method:     "POST",
		Path:       "/shipping/rates",
		StatusCode: 200,
		Outcome:    string(domain.OutcomeSuccess),
		Duration:   30 * time.Millisecond,
		CreatedAt:  time.Now(),
	})
	cancel()

	require.NoError(t, svc.Flush(context.Background()))
}

func TestRequestLogService_Record_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockRequestLogRepository(ctrl)
	svc := NewRequestLogService(mockRepo, newTestLogger())

	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	svc.Record(context.Background(), &domain.RequestLog{ID: uuid.New(), Method: "GET", Path: "/connection/test"})
	assert.NoError(t, svc.Flush(context.Background()))
}

func TestRequestLogService_Record_NilRepo(t *testing.T) {
	svc := NewRequestLogService(nil, newTestLogger())

	svc.Record(context.Background(), &domain.RequestLog{ID: uuid.New(), Method: "GET", Path: "/connection/test"})
	assert.NoError(t, svc.Flush(context.Background()))
}

type slowRequestLogRepo struct {
	delay time.Duration
	rows  atomic.Int32
}

func (r *slowRequestLogRepo) Create(context.Context, *domain.RequestLog) error {
	time.Sleep(r.delay)
	r.rows.Add(1)
	return nil
}

func TestRequestLogService_FlushWaitsForClientCall(t *testing.T) {
	server := newRecordingServer(t, http.StatusOK, "application/json", `true`)
	f := newClientFixture(t, server.URL, Hooks{})
	f.validToken()
	f.metrics.EXPECT().ObserveRequest(http.MethodGet, "success", http.StatusOK, gomock.Any())

	repo := &slowRequestLogRepo{delay: 20 * time.Millisecond}
	svc := NewRequestLogService(repo, newTestLogger())
	f.client.requestLog = svc

	_, err := f.client.AuthTest(context.Background())
	require.NoError(t, err)

	require.NoError(t, svc.Flush(context.Background()))
	assert.Equal(t, int32(1), repo.rows.Load())
}

func TestRequestLogService_FlushHonoursContext(t *testing.T) {
	repo := &slowRequestLogRepo{delay: time.Second}
	svc := NewRequestLogService(repo, newTestLogger())
	svc.Record(context.Background(), &domain.RequestLog{ID: uuid.New(), Method: "GET", Path: "/connection/test"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.Flush(ctx), context.DeadlineExceeded)
}
