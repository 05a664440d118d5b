package game

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iamasit07/knock/backend/internal/domain"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []domain.ServerMessage
	err      error
}

func (n *recordingNotifier) SendMessage(gameID string, msg domain.ServerMessage) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return n.err
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.messages))
	for _, m := range n.messages {
		out = append(out, m.Type)
	}
	return out
}

func (n *recordingNotifier) last() domain.ServerMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.messages[len(n.messages)-1]
}

func newTestManager() *SessionManager {
	return NewSessionManager(domain.DefaultRules(), zap.NewNop())
}

func TestCreateAndGetSession(t *testing.T) {
	sm := newTestManager()
	conn := &recordingNotifier{}

	session, err := sm.CreateSession(conn)
	require.NoError(t, err)

	got, ok := sm.GetSession(session.GameID)
	require.True(t, ok)
	assert.Same(t, session, got)
	assert.Equal(t, 1, sm.Count())

	require.Equal(t, []string{"game_start"}, conn.types())
	start := conn.last()
	assert.Equal(t, session.GameID, start.GameID)
	assert.Equal(t, "Player 1 to move.", start.Message)
	require.NotNil(t, start.State)
	assert.Equal(t, domain.Player1, start.State.CurrentPlayer)
}

func TestCreateSessionInvalidRules(t *testing.T) {
	sm := NewSessionManager(domain.Rules{Rows: 1, Columns: 1, MaxStackHeight: 1}, zap.NewNop())
	_, err := sm.CreateSession(NopNotifier{})
	assert.ErrorIs(t, err, domain.ErrInvalidRules)
	assert.Zero(t, sm.Count())
}

func TestRemoveSession(t *testing.T) {
	sm := newTestManager()
	session, err := sm.CreateSession(NopNotifier{})
	require.NoError(t, err)

	require.NoError(t, sm.RemoveSession(session.GameID))
	_, ok := sm.GetSession(session.GameID)
	assert.False(t, ok)
	assert.ErrorIs(t, sm.RemoveSession(session.GameID), domain.ErrGameNotFound)
}

func TestHandleSelectFlow(t *testing.T) {
	sm := newTestManager()
	conn := &recordingNotifier{}
	session, err := sm.CreateSession(conn)
	require.NoError(t, err)

	out, snap := session.HandleSelect(6, 2, conn)
	assert.Equal(t, domain.OutcomeSelected, out.Kind)
	assert.Equal(t, domain.AwaitingDestination, snap.Phase)

	out, snap = session.HandleSelect(5, 2, conn)
	assert.Equal(t, domain.OutcomeMoved, out.Kind)
	assert.Equal(t, domain.Player2, snap.CurrentPlayer)
	assert.Equal(t, []int{1}, snap.Board[5][2])

	out, _ = session.HandleSelect(5, 2, conn)
	assert.Equal(t, domain.OutcomeRejected, out.Kind)

	assert.Equal(t, []string{"game_start", "selected", "moved", "rejected"}, conn.types())
	last := conn.last()
	require.NotNil(t, last.Outcome)
	assert.Equal(t, domain.RejectNotOwnPiece, last.Outcome.Rejection)
	assert.Equal(t, last.Outcome.Message, last.Message)
}

func TestHandleSelectRecordsFinish(t *testing.T) {
	sm := newTestManager()
	session, err := sm.CreateSession(NopNotifier{})
	require.NoError(t, err)

	b := emptyBoard(domain.DefaultRules())
	require.NoError(t, b.Place(3, 1, domain.Player2))
	require.NoError(t, b.Place(4, 1, domain.Player1))
	session.Game = domain.NewGameWithBoard(b, domain.Player1)

	session.HandleSelect(4, 1, NopNotifier{})
	out, _ := session.HandleSelect(3, 1, NopNotifier{})
	require.Equal(t, domain.OutcomeGameOver, out.Kind)
	assert.True(t, session.IsFinished())
	finishedAt := session.FinishedAt
	assert.False(t, finishedAt.IsZero())

	out, _ = session.HandleSelect(0, 0, NopNotifier{})
	assert.Equal(t, domain.OutcomeGameOver, out.Kind)
	assert.Equal(t, finishedAt, session.FinishedAt, "finish time is recorded once")
}

func TestRestart(t *testing.T) {
	sm := newTestManager()
	conn := &recordingNotifier{}
	session, err := sm.CreateSession(conn)
	require.NoError(t, err)
	id := session.GameID

	session.HandleSelect(6, 2, conn)
	session.HandleSelect(5, 2, conn)

	snap, err := session.Restart(conn)
	require.NoError(t, err)
	assert.Equal(t, id, session.GameID)
	assert.Equal(t, domain.Player1, snap.CurrentPlayer)
	assert.Zero(t, snap.MoveCount)
	assert.Equal(t, []int{1}, snap.Board[6][2])
	assert.Equal(t, "game_start", conn.last().Type)
	assert.True(t, session.FinishedAt.IsZero())
}

func TestSendState(t *testing.T) {
	sm := newTestManager()
	conn := &recordingNotifier{}
	session, err := sm.CreateSession(NopNotifier{})
	require.NoError(t, err)

	snap := session.SendState(conn)
	require.Equal(t, []string{"state"}, conn.types())
	assert.Equal(t, snap, *conn.last().State)
}

func TestNotifierErrorDoesNotBreakSession(t *testing.T) {
	sm := newTestManager()
	conn := &recordingNotifier{err: errors.New("socket closed")}
	session, err := sm.CreateSession(conn)
	require.NoError(t, err)

	out, _ := session.HandleSelect(6, 0, conn)
	assert.Equal(t, domain.OutcomeSelected, out.Kind)
}

func TestActiveGames(t *testing.T) {
	sm := newTestManager()
	first, err := sm.CreateSession(NopNotifier{})
	require.NoError(t, err)
	second, err := sm.CreateSession(NopNotifier{})
	require.NoError(t, err)
	second.CreatedAt = first.CreatedAt.Add(time.Second)

	second.HandleSelect(6, 1, NopNotifier{})
	second.HandleSelect(5, 1, NopNotifier{})

	games := sm.ActiveGames()
	require.Len(t, games, 2)
	assert.Equal(t, first.GameID, games[0].GameID)
	assert.Equal(t, second.GameID, games[1].GameID)
	assert.Equal(t, 1, games[1].MoveCount)
	assert.Equal(t, domain.Player2, games[1].CurrentPlayer)
}

func TestCleanupOldSessions(t *testing.T) {
	sm := newTestManager()
	now := time.Now()

	idle, _ := sm.CreateSession(NopNotifier{})
	idle.LastActivity = now.Add(-3 * time.Hour)

	fresh, _ := sm.CreateSession(NopNotifier{})
	fresh.LastActivity = now.Add(-time.Minute)

	done, _ := sm.CreateSession(NopNotifier{})
	done.Game.Status = domain.StatusFinished
	done.FinishedAt = now.Add(-2 * time.Hour)
	done.LastActivity = done.FinishedAt

	recent, _ := sm.CreateSession(NopNotifier{})
	recent.Game.Status = domain.StatusFinished
	recent.FinishedAt = now.Add(-time.Minute)

	removed := sm.CleanupOldSessions(now, 2*time.Hour, time.Hour)
	assert.Equal(t, 2, removed)

	for _, s := range []*GameSession{fresh, recent} {
		_, ok := sm.GetSession(s.GameID)
		assert.True(t, ok)
	}
	for _, s := range []*GameSession{idle, done} {
		_, ok := sm.GetSession(s.GameID)
		assert.False(t, ok)
	}
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "Player 2 to move.", StatusMessage(domain.Snapshot{
		Status: domain.StatusInProgress, CurrentPlayer: domain.Player2,
	}))
	assert.Contains(t, StatusMessage(domain.Snapshot{
		Status: domain.StatusFinished, Winner: domain.Player1, Reason: domain.ReasonGoal,
	}), "goal")
}

func TestConcurrentSelectsAreSerialized(t *testing.T) {
	sm := newTestManager()
	session, err := sm.CreateSession(NopNotifier{})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session.HandleSelect(i%8, i%5, NopNotifier{})
		}(i)
	}
	wg.Wait()

	snap := session.Snapshot()
	pieces := 0
	for _, row := range snap.Board {
		for _, stack := range row {
			pieces += len(stack)
		}
	}
	assert.Equal(t, 10, pieces, "moves never create or destroy pieces")
}

func emptyBoard(rules domain.Rules) *domain.Board {
	b := domain.NewBoard(rules)
	for c := 0; c < rules.Columns; c++ {
		b.Clear(rules.StartRow(domain.Player1), c)
		b.Clear(rules.StartRow(domain.Player2), c)
	}
	return b
}

func TestRestartWithBrokenRulesKeepsGame(t *testing.T) {
	sm := newTestManager()
	conn := &recordingNotifier{}
	session, err := sm.CreateSession(conn)
	require.NoError(t, err)
	session.HandleSelect(6, 2, conn)
	session.HandleSelect(5, 2, conn)

	session.Rules = domain.Rules{Rows: 1, Columns: 1, MaxStackHeight: 1}
	_, err = session.Restart(conn)
	require.ErrorIs(t, err, domain.ErrInvalidRules)

	require.NotNil(t, session.Game)
	assert.Equal(t, 1, session.Snapshot().MoveCount)
	assert.Equal(t, "moved", conn.last().Type, "nothing is announced on failure")
}

func TestSendStateAndTouchRefreshActivity(t *testing.T) {
	sm := newTestManager()
	session, err := sm.CreateSession(NopNotifier{})
	require.NoError(t, err)

	old := time.Now().Add(-3 * time.Hour)
	session.LastActivity = old
	session.SendState(NopNotifier{})
	assert.True(t, session.LastActivity.After(old))

	session.LastActivity = old
	session.Touch()
	assert.True(t, session.LastActivity.After(old))

	assert.Zero(t, sm.CleanupOldSessions(time.Now(), 2*time.Hour, time.Hour))
	_, ok := sm.GetSession(session.GameID)
	assert.True(t, ok)
}

func TestCleanupKeepsFinishedGameStillInUse(t *testing.T) {
	sm := newTestManager()
	now := time.Now()

	session, err := sm.CreateSession(NopNotifier{})
	require.NoError(t, err)
	session.Game.Status = domain.StatusFinished
	session.FinishedAt = now.Add(-2 * time.Hour)
	session.LastActivity = now.Add(-time.Minute)

	assert.Zero(t, sm.CleanupOldSessions(now, 24*time.Hour, time.Hour))
	assert.Equal(t, 1, sm.Count())
}

type blockingNotifier struct {
	entered chan struct{}
	release chan struct{}
}

func (n *blockingNotifier) SendMessage(string, domain.ServerMessage) error {
	n.entered <- struct{}{}
	<-n.release
	return nil
}

func TestSlowNotifierDoesNotHoldLocks(t *testing.T) {
	sm := newTestManager()
	session, err := sm.CreateSession(NopNotifier{})
	require.NoError(t, err)

	slow := &blockingNotifier{entered: make(chan struct{}), release: make(chan struct{})}
	selectDone := make(chan struct{})
	go func() {
		session.HandleSelect(6, 0, slow)
		close(selectDone)
	}()
	<-slow.entered

	others := make(chan struct{})
	go func() {
		defer close(others)
		_ = session.Snapshot()
		sm.CleanupOldSessions(time.Now(), time.Hour, time.Hour)
		_, _ = sm.GetSession(session.GameID)
		_, _ = sm.CreateSession(NopNotifier{})
	}()

	select {
	case <-others:
	case <-time.After(2 * time.Second):
		t.Fatal("session and manager stayed locked during a slow send")
	}

	close(slow.release)
	<-selectDone
	assert.Equal(t, domain.AwaitingDestination, session.Snapshot().Phase)
	assert.Equal(t, 2, sm.Count())
}
