package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	auditDomain "github.com/xambitlan/disclosure/internal/audit/domain"
	"github.com/xambitlan/disclosure/internal/audit/usecase"
	usecaseMocks "github.com/xambitlan/disclosure/internal/audit/usecase/mocks"
)

// mockBusinessMetrics is a local mock for metrics.BusinessMetrics to avoid dependency issues.
type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func expectMetric(m *mockBusinessMetrics, ctx context.Context, operation, status string) {
	m.On("RecordOperation", ctx, "audit", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "audit", operation, mock.AnythingOfType("time.Duration"), status).Return().Once()
}

func TestAuditUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("Append success", func(t *testing.T) {
		next := &usecaseMocks.MockAuditUseCase{}
		m := &mockBusinessMetrics{}
		uc := usecase.NewAuditUseCaseWithMetrics(next, m)

		input := &auditDomain.AppendInput{Action: auditDomain.ActionRevealRequest}
		entry := &auditDomain.AuditEntry{Sequence: 1}
		next.On("Append", ctx, input).Return(entry, nil).Once()
		expectMetric(m, ctx, "append", "success")

		got, err := uc.Append(ctx, input)
		assert.NoError(t, err)
		assert.Equal(t, entry, got)
		m.AssertExpectations(t)
	})

	t.Run("Append error", func(t *testing.T) {
		next := &usecaseMocks.MockAuditUseCase{}
		m := &mockBusinessMetrics{}
		uc := usecase.NewAuditUseCaseWithMetrics(next, m)

		input := &auditDomain.AppendInput{Action: auditDomain.ActionRevealRequest}
		next.On("Append", ctx, input).Return(nil, assert.AnError).Once()
		expectMetric(m, ctx, "append", "error")

		_, err := uc.Append(ctx, input)
		assert.ErrorIs(t, err, assert.AnError)
		m.AssertExpectations(t)
	})

	t.Run("Verify tampered", func(t *testing.T) {
		next := &usecaseMocks.MockAuditUseCase{}
		m := &mockBusinessMetrics{}
		uc := usecase.NewAuditUseCaseWithMetrics(next, m)

		report := &auditDomain.ChainReport{Valid: false, FirstInvalidIndex: 2}
		next.On("Verify", ctx, "reveal_request", "req-1").Return(report, nil).Once()
		expectMetric(m, ctx, "verify", "tampered")

		got, err := uc.Verify(ctx, "reveal_request", "req-1")
		assert.NoError(t, err)
		assert.Equal(t, report, got)
		m.AssertExpectations(t)
	})

	t.Run("List and VerifyAll", func(t *testing.T) {
		next := &usecaseMocks.MockAuditUseCase{}
		m := &mockBusinessMetrics{}
		uc := usecase.NewAuditUseCaseWithMetrics(next, m)

		next.On("List", ctx, "contact", "0xp", 0, 10).Return([]*auditDomain.AuditEntry{}, nil).Once()
		next.On("VerifyAll", ctx).Return(nil, assert.AnError).Once()
		expectMetric(m, ctx, "list", "success")
		expectMetric(m, ctx, "verify_all", "error")

		_, err := uc.List(ctx, "contact", "0xp", 0, 10)
		assert.NoError(t, err)
		_, err = uc.VerifyAll(ctx)
		assert.Error(t, err)
		m.AssertExpectations(t)
	})
}
