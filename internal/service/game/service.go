package game

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iamasit07/knock/backend/internal/domain"
	"github.com/iamasit07/knock/backend/pkg/uid"
)

// Notifier receives every message a session produces. The WebSocket
// connection manager implements it; NopNotifier discards.
type Notifier interface {
	SendMessage(gameID string, message domain.ServerMessage) error
}

type NopNotifier struct{}

func (NopNotifier) SendMessage(string, domain.ServerMessage) error { return nil }

type GameSession struct {
	GameID       string
	Game         *domain.Game
	Rules        domain.Rules
	CreatedAt    time.Time
	LastActivity time.Time
	FinishedAt   time.Time
	mu           sync.Mutex
	sendMu       sync.Mutex // keeps messages in the order their state was produced
	logger       *zap.Logger
}

// SessionManager manages active game sessions
type SessionManager struct {
	Session map[string]*GameSession // gameID → GameSession
	mu      sync.RWMutex
	rules   domain.Rules
	logger  *zap.Logger
}

// GameSummary is the lobby view of a session.
type GameSummary struct {
	GameID        string            `json:"gameId"`
	Status        domain.GameStatus `json:"status"`
	CurrentPlayer domain.PlayerID   `json:"currentPlayer"`
	Winner        domain.PlayerID   `json:"winner,omitempty"`
	MoveCount     int               `json:"moveCount"`
	StartedAt     string            `json:"startedAt"`
}

func NewSessionManager(rules domain.Rules, logger *zap.Logger) *SessionManager {
	return &SessionManager{
		Session: make(map[string]*GameSession),
		rules:   rules,
		logger:  logger.Named("session"),
	}
}

func (sm *SessionManager) CreateSession(conn Notifier) (*GameSession, error) {
	session, err := NewGameSession(sm.rules, sm.logger)
	if err != nil {
		return nil, err
	}

	sm.mu.Lock()
	sm.Session[session.GameID] = session
	sm.mu.Unlock()

	sm.logger.Info("created session",
		zap.String("game_id", session.GameID),
		zap.Int("rows", sm.rules.Rows),
		zap.Int("columns", sm.rules.Columns),
		zap.Int("max_stack_height", sm.rules.MaxStackHeight))

	session.announce("game_start", conn)
	return session, nil
}

func (sm *SessionManager) GetSession(gameID string) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.Session[gameID]
	return session, exists
}

func (sm *SessionManager) RemoveSession(gameID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.Session[gameID]; !exists {
		return fmt.Errorf("remove %s: %w", gameID, domain.ErrGameNotFound)
	}
	delete(sm.Session, gameID)
	sm.logger.Info("removed session", zap.String("game_id", gameID))
	return nil
}

func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.Session)
}

// ActiveGames lists every session, oldest first.
func (sm *SessionManager) ActiveGames() []GameSummary {
	sm.mu.RLock()
	sessions := make([]*GameSession, 0, len(sm.Session))
	for _, s := range sm.Session {
		sessions = append(sessions, s)
	}
	sm.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	out := make([]GameSummary, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Summary())
	}
	return out
}

// CleanupOldSessions drops finished sessions untouched for finishedTTL and
// unfinished ones idle for longer than idleTimeout. Sessions are inspected
// without holding the manager lock.
func (sm *SessionManager) CleanupOldSessions(now time.Time, idleTimeout, finishedTTL time.Duration) int {
	sm.mu.RLock()
	candidates := make(map[string]*GameSession, len(sm.Session))
	for gameID, session := range sm.Session {
		candidates[gameID] = session
	}
	sm.mu.RUnlock()

	var expired []string
	for gameID, session := range candidates {
		if session.expired(now, idleTimeout, finishedTTL) {
			expired = append(expired, gameID)
		}
	}
	if len(expired) == 0 {
		return 0
	}

	sm.mu.Lock()
	count := 0
	for _, gameID := range expired {
		if sm.Session[gameID] == candidates[gameID] {
			delete(sm.Session, gameID)
			count++
		}
	}
	sm.mu.Unlock()

	if count > 0 {
		sm.logger.Info("memory cleanup removed stale sessions", zap.Int("count", count))
	}
	return count
}

func NewGameSession(rules domain.Rules, logger *zap.Logger) (*GameSession, error) {
	g, err := domain.NewGame(rules)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &GameSession{
		GameID:       uid.GenerateGameID(),
		Game:         g,
		Rules:        rules,
		CreatedAt:    now,
		LastActivity: now,
		logger:       logger,
	}, nil
}

// HandleSelect runs one click through the turn controller and mirrors the
// outcome to conn.
func (gs *GameSession) HandleSelect(row, col int, conn Notifier) (domain.Outcome, domain.Snapshot) {
	gs.mu.Lock()

	wasFinished := gs.Game.IsFinished()
	outcome := gs.Game.SelectOrMove(row, col)
	gs.LastActivity = time.Now()

	log := gs.logger.With(zap.String("game_id", gs.GameID), zap.Int("row", row), zap.Int("col", col))
	switch outcome.Kind {
	case domain.OutcomeRejected:
		log.Debug("rejected", zap.String("rejection", string(outcome.Rejection)))
	case domain.OutcomeMoved:
		log.Debug("moved", zap.Stringer("from", *outcome.From), zap.Int("move_count", gs.Game.MoveCount))
	case domain.OutcomeGameOver:
		if !wasFinished {
			gs.FinishedAt = gs.LastActivity
			log.Info("game over",
				zap.Int("winner", int(outcome.Winner)),
				zap.String("reason", string(outcome.Reason)),
				zap.Int("move_count", gs.Game.MoveCount),
				zap.Duration("duration", gs.FinishedAt.Sub(gs.CreatedAt)))
		}
	}

	snapshot := gs.Game.Snapshot()
	gs.unlockAndSend(conn, domain.ServerMessage{
		Type:    string(outcome.Kind),
		GameID:  gs.GameID,
		Message: outcome.Message,
		Outcome: &outcome,
		State:   &snapshot,
	})
	return outcome, snapshot
}

// Restart replaces the game with a fresh one under the same ID. On error the
// current game is left in place.
func (gs *GameSession) Restart(conn Notifier) (domain.Snapshot, error) {
	gs.mu.Lock()

	g, err := domain.NewGame(gs.Rules)
	if err != nil {
		gs.mu.Unlock()
		gs.logger.Error("restart failed", zap.String("game_id", gs.GameID), zap.Error(err))
		return domain.Snapshot{}, fmt.Errorf("restart %s: %w", gs.GameID, err)
	}
	gs.Game = g
	gs.FinishedAt = time.Time{}
	gs.LastActivity = time.Now()

	gs.logger.Info("restarted session", zap.String("game_id", gs.GameID))
	snapshot, msg := gs.stateMessageLocked("game_start")
	gs.unlockAndSend(conn, msg)
	return snapshot, nil
}

func (gs *GameSession) Snapshot() domain.Snapshot {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.Game.Snapshot()
}

// SendState pushes the current snapshot. A client asking for state counts
// as activity.
func (gs *GameSession) SendState(conn Notifier) domain.Snapshot {
	gs.mu.Lock()
	gs.LastActivity = time.Now()
	snapshot, msg := gs.stateMessageLocked("state")
	gs.unlockAndSend(conn, msg)
	return snapshot
}

// Touch records activity that does not change the game, such as a
// keep-alive from an attached client.
func (gs *GameSession) Touch() {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.LastActivity = time.Now()
}

func (gs *GameSession) expired(now time.Time, idleTimeout, finishedTTL time.Duration) bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	if gs.Game.IsFinished() {
		last := gs.FinishedAt
		if gs.LastActivity.After(last) {
			last = gs.LastActivity
		}
		return now.Sub(last) > finishedTTL
	}
	return now.Sub(gs.LastActivity) > idleTimeout
}

func (gs *GameSession) IsFinished() bool {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.Game.IsFinished()
}

func (gs *GameSession) Summary() GameSummary {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return GameSummary{
		GameID:        gs.GameID,
		Status:        gs.Game.Status,
		CurrentPlayer: gs.Game.CurrentPlayer,
		Winner:        gs.Game.Winner,
		MoveCount:     gs.Game.MoveCount,
		StartedAt:     gs.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (gs *GameSession) announce(msgType string, conn Notifier) domain.Snapshot {
	gs.mu.Lock()
	snapshot, msg := gs.stateMessageLocked(msgType)
	gs.unlockAndSend(conn, msg)
	return snapshot
}

func (gs *GameSession) stateMessageLocked(msgType string) (domain.Snapshot, domain.ServerMessage) {
	snapshot := gs.Game.Snapshot()
	return snapshot, domain.ServerMessage{
		Type:    msgType,
		GameID:  gs.GameID,
		Message: StatusMessage(snapshot),
		State:   &snapshot,
	}
}

// unlockAndSend must be called with gs.mu held. It releases gs.mu before
// writing, so a slow socket never blocks readers of the session. sendMu is
// taken first to keep delivery order equal to state order.
func (gs *GameSession) unlockAndSend(conn Notifier, msg domain.ServerMessage) {
	gs.sendMu.Lock()
	gs.mu.Unlock()
	defer gs.sendMu.Unlock()
	gs.send(conn, msg)
}

func (gs *GameSession) send(conn Notifier, msg domain.ServerMessage) {
	if conn == nil {
		return
	}
	if err := conn.SendMessage(gs.GameID, msg); err != nil {
		gs.logger.Warn("failed to deliver message",
			zap.String("game_id", gs.GameID),
			zap.String("type", msg.Type),
			zap.Error(err))
	}
}

// StatusMessage is the banner line for a snapshot.
func StatusMessage(s domain.Snapshot) string {
	if s.Status == domain.StatusFinished {
		return domain.VictoryMessage(s.Winner, s.Reason)
	}
	return fmt.Sprintf("Player %d to move.", int(s.CurrentPlayer))
}
