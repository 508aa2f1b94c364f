package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	if c, ok := args.Get(0).(context.Context); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type txMarker struct{}

func TestWithUnitOfWork(t *testing.T) {
	ctx := context.Background()
	txCtx := context.WithValue(ctx, txMarker{}, "tx")

	t.Run("commits on success", func(t *testing.T) {
		uow := new(mockUnitOfWork)
		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)

		err := WithUnitOfWork(ctx, uow, func(got context.Context) error {
			assert.Equal(t, txCtx, got)
			return nil
		})

		require.NoError(t, err)
		uow.AssertExpectations(t)
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		uow := new(mockUnitOfWork)
		boom := errors.New("boom")
		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)

		err := WithUnitOfWork(ctx, uow, func(context.Context) error { return boom })

		assert.ErrorIs(t, err, boom)
		uow.AssertNotCalled(t, "Commit", mock.Anything)
	})

	t.Run("joins rollback failure", func(t *testing.T) {
		uow := new(mockUnitOfWork)
		boom := errors.New("boom")
		rbErr := errors.New("rollback failed")
		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(rbErr)

		err := WithUnitOfWork(ctx, uow, func(context.Context) error { return boom })

		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, err, rbErr)
	})

	t.Run("begin failure skips fn", func(t *testing.T) {
		uow := new(mockUnitOfWork)
		uow.On("Begin", ctx).Return(nil, errors.New("no conn"))

		called := false
		err := WithUnitOfWork(ctx, uow, func(context.Context) error {
			called = true
			return nil
		})

		require.Error(t, err)
		assert.False(t, called)
	})
}
