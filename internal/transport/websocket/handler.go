package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/iamasit07/knock/backend/internal/domain"
	"github.com/iamasit07/knock/backend/internal/service/game"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Handler manages WebSocket dependencies
type Handler struct {
	ConnManager    *ConnectionManager
	SessionManager *game.SessionManager
	Upgrader       websocket.Upgrader
	logger         *zap.Logger
}

func NewHandler(cm *ConnectionManager, sm *game.SessionManager, checkOrigin func(r *http.Request) bool, logger *zap.Logger) *Handler {
	return &Handler{
		ConnManager:    cm,
		SessionManager: sm,
		Upgrader: websocket.Upgrader{
			CheckOrigin:     checkOrigin,
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.Named("ws"),
	}
}

// HandleWebSocket upgrades the request and attaches the socket to a game.
// Without a ?game= parameter a new game is created.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade error", zap.Error(err))
		return
	}

	h.handleConnection(conn, r.URL.Query().Get("game"))
}

func (h *Handler) handleConnection(conn *websocket.Conn, gameID string) {
	var session *game.GameSession
	if gameID == "" {
		created, err := h.SessionManager.CreateSession(game.NopNotifier{})
		if err != nil {
			h.logger.Error("failed to create game", zap.Error(err))
			conn.WriteJSON(domain.ErrorMessage{Type: "error", Message: "Failed to create game"})
			conn.Close()
			return
		}
		session = created
	} else {
		existing, ok := h.SessionManager.GetSession(gameID)
		if !ok {
			conn.WriteJSON(domain.ErrorMessage{Type: "error", Message: "Game not found"})
			conn.Close()
			return
		}
		session = existing
	}

	log := h.logger.With(zap.String("game_id", session.GameID))
	h.ConnManager.AddConnection(session.GameID, conn)
	log.Info("connection attached")

	done := make(chan struct{})
	defer func() {
		close(done)
		h.ConnManager.RemoveConnectionIfMatching(session.GameID, conn)
		log.Info("connection closed")
	}()

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		session.Touch()
		return nil
	})
	go keepAlive(conn, done)

	session.SendState(h.ConnManager)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn("client disconnected unexpectedly", zap.Error(err))
			}
			return
		}

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Debug("invalid message format", zap.Error(err))
			h.ConnManager.SendMessage(session.GameID, domain.ServerMessage{Type: "error", Message: "Invalid message format"})
			continue
		}

		h.processMessage(session, msg)
	}
}

// processMessage routes specific actions
func (h *Handler) processMessage(session *game.GameSession, msg domain.ClientMessage) {
	switch msg.Type {
	case "select":
		session.HandleSelect(msg.Row, msg.Col, h.ConnManager)

	case "restart":
		if _, err := session.Restart(h.ConnManager); err != nil {
			h.ConnManager.SendMessage(session.GameID, domain.ServerMessage{
				Type:    "error",
				GameID:  session.GameID,
				Message: "Failed to restart game",
			})
		}

	case "status":
		session.SendState(h.ConnManager)

	default:
		h.ConnManager.SendMessage(session.GameID, domain.ServerMessage{
			Type:    "error",
			GameID:  session.GameID,
			Message: "Unknown message type: " + msg.Type,
		})
	}
}

// keepAlive pings until done is closed. WriteControl may run concurrently
// with WriteJSON.
func keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
