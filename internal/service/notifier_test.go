package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
)

func TestAsyncNotifierDetachesFromCallerContext(t *testing.T) {
	next := NewMockAccountNotifier(gomock.NewController(t))
	async := NewAsyncNotifier(next, observability.NewDiscardLogger(), time.Second)

	delivered := make(chan error, 1)
	next.EXPECT().SendEmailVerification(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, n VerificationNotification) error {
			delivered <- ctx.Err()
			return nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, async.SendEmailVerification(ctx, VerificationNotification{UserID: "u1"}))
	cancel()

	require.NoError(t, async.Wait(context.Background()))
	assert.NoError(t, <-delivered, "send must not inherit request cancellation")
}

func TestAsyncNotifierSwallowsDeliveryErrors(t *testing.T) {
	next := NewMockAccountNotifier(gomock.NewController(t))
	async := NewAsyncNotifier(next, observability.NewDiscardLogger(), time.Second)
	next.EXPECT().SendPasswordReset(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

	assert.NoError(t, async.SendPasswordReset(context.Background(), PasswordResetNotification{UserID: "u1"}))
	require.NoError(t, async.Wait(context.Background()))
}

func TestAsyncNotifierWaitHonoursDeadline(t *testing.T) {
	next := NewMockAccountNotifier(gomock.NewController(t))
	async := NewAsyncNotifier(next, observability.NewDiscardLogger(), time.Second)
	release := make(chan struct{})
	next.EXPECT().SendEmailVerification(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, VerificationNotification) error {
			<-release
			return nil
		})

	require.NoError(t, async.SendEmailVerification(context.Background(), VerificationNotification{}))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, async.Wait(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, async.Wait(context.Background()))
}

func TestDevNotifierNeverFails(t *testing.T) {
	n := NewDevEmailVerificationNotifier(observability.NewDiscardLogger())
	assert.NoError(t, n.SendEmailVerification(context.Background(), VerificationNotification{Email: "a@x.com"}))
	assert.NoError(t, n.SendPasswordReset(context.Background(), PasswordResetNotification{Email: "a@x.com"}))
}
