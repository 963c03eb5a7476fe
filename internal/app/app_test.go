package app

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/recipe-sharing-backend/internal/config"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/database"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/observability"
	"github.com/sandeepkv93/recipe-sharing-backend/internal/service"
)

type blockingNotifier struct {
	release chan struct{}
	sent    chan string
}

func (n *blockingNotifier) SendEmailVerification(_ context.Context, v service.VerificationNotification) error {
	<-n.release
	n.sent <- v.Email
	return nil
}

func (n *blockingNotifier) SendPasswordReset(context.Context, service.PasswordResetNotification) error {
	return nil
}

func TestShutdownDrainsMailAndClosesStores(t *testing.T) {
	cfg := &config.Config{DBDriver: config.DBDriverSQLite, DBSQLitePath: filepath.Join(t.TempDir(), "app.db")}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	next := &blockingNotifier{release: make(chan struct{}), sent: make(chan string, 1)}
	notifier := service.NewAsyncNotifier(next, observability.NewDiscardLogger(), time.Second)
	require.NoError(t, notifier.SendEmailVerification(context.Background(), service.VerificationNotification{Email: "ann@example.com"}))

	a := New(cfg, observability.NewDiscardLogger(), &http.Server{}, nil, db, rdb, notifier, nil)
	go close(next.release)
	require.NoError(t, a.Shutdown(context.Background()))

	select {
	case email := <-next.sent:
		assert.Equal(t, "ann@example.com", email)
	default:
		t.Fatal("shutdown returned before the pending email was sent")
	}
	assert.Error(t, rdb.Ping(context.Background()).Err())
	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping())
}

func TestShutdownReportsMailDrainTimeout(t *testing.T) {
	next := &blockingNotifier{release: make(chan struct{}), sent: make(chan string, 1)}
	notifier := service.NewAsyncNotifier(next, observability.NewDiscardLogger(), time.Second)
	require.NoError(t, notifier.SendEmailVerification(context.Background(), service.VerificationNotification{Email: "ann@example.com"}))
	t.Cleanup(func() { close(next.release) })

	a := &App{Notifier: notifier, ShutdownTimeout: 20 * time.Millisecond}
	err := a.Shutdown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
