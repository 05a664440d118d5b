package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iamasit07/knock/backend/internal/domain"
	"github.com/iamasit07/knock/backend/internal/service/game"
)

func TestRunCleanup(t *testing.T) {
	sm := game.NewSessionManager(domain.DefaultRules(), zap.NewNop())
	stale, err := sm.CreateSession(game.NopNotifier{})
	require.NoError(t, err)
	_, err = sm.CreateSession(game.NopNotifier{})
	require.NoError(t, err)

	w := NewWorker(sm, time.Hour, time.Hour, time.Hour, zap.NewNop())
	assert.Zero(t, w.RunCleanup(time.Now()))

	stale.LastActivity = time.Now().Add(-2 * time.Hour)
	assert.Equal(t, 1, w.RunCleanup(time.Now()))
	assert.Equal(t, 1, sm.Count())
}

func TestStartStopsWithContext(t *testing.T) {
	sm := game.NewSessionManager(domain.DefaultRules(), zap.NewNop())
	w := NewWorker(sm, 10*time.Millisecond, time.Hour, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
