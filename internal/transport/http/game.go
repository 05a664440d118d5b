package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/iamasit07/knock/backend/internal/domain"
	"github.com/iamasit07/knock/backend/internal/service/game"
	"github.com/iamasit07/knock/backend/pkg/uid"
)

// GameHandler exposes sessions over plain HTTP. Every change is also pushed
// to Notifier so an attached WebSocket client stays in sync.
type GameHandler struct {
	SessionManager *game.SessionManager
	Notifier       game.Notifier
	logger         *zap.Logger
}

func NewGameHandler(sm *game.SessionManager, notifier game.Notifier, logger *zap.Logger) *GameHandler {
	if notifier == nil {
		notifier = game.NopNotifier{}
	}
	return &GameHandler{
		SessionManager: sm,
		Notifier:       notifier,
		logger:         logger.Named("http"),
	}
}

type selectRequest struct {
	Row *int `json:"row" binding:"required"`
	Col *int `json:"col" binding:"required"`
}

type gameResponse struct {
	GameID  string          `json:"gameId"`
	Message string          `json:"message"`
	State   domain.Snapshot `json:"state"`
}

type selectResponse struct {
	Outcome domain.Outcome  `json:"outcome"`
	State   domain.Snapshot `json:"state"`
}

// Register mounts the game routes on r.
func (h *GameHandler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)

	api := r.Group("/api/games")
	api.POST("", h.CreateGame)
	api.GET("", h.ListGames)
	api.GET("/:id", h.GetGame)
	api.POST("/:id/select", h.Select)
	api.POST("/:id/restart", h.Restart)
}

func (h *GameHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"games":  h.SessionManager.Count(),
	})
}

func (h *GameHandler) CreateGame(c *gin.Context) {
	session, err := h.SessionManager.CreateSession(h.Notifier)
	if err != nil {
		h.logger.Error("failed to create game", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create game"})
		return
	}

	snapshot := session.Snapshot()
	c.JSON(http.StatusCreated, gameResponse{
		GameID:  session.GameID,
		Message: game.StatusMessage(snapshot),
		State:   snapshot,
	})
}

func (h *GameHandler) ListGames(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"games": h.SessionManager.ActiveGames()})
}

func (h *GameHandler) GetGame(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}

	snapshot := session.Snapshot()
	c.JSON(http.StatusOK, gameResponse{
		GameID:  session.GameID,
		Message: game.StatusMessage(snapshot),
		State:   snapshot,
	})
}

func (h *GameHandler) Select(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}

	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Body must be {\"row\": int, \"col\": int}"})
		return
	}

	outcome, snapshot := session.HandleSelect(*req.Row, *req.Col, h.Notifier)
	c.JSON(http.StatusOK, selectResponse{Outcome: outcome, State: snapshot})
}

func (h *GameHandler) Restart(c *gin.Context) {
	session, ok := h.lookup(c)
	if !ok {
		return
	}

	snapshot, err := session.Restart(h.Notifier)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restart game"})
		return
	}
	c.JSON(http.StatusOK, gameResponse{
		GameID:  session.GameID,
		Message: game.StatusMessage(snapshot),
		State:   snapshot,
	})
}

func (h *GameHandler) lookup(c *gin.Context) (*game.GameSession, bool) {
	id := c.Param("id")
	if !uid.IsGameID(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrGameNotFound.Error()})
		return nil, false
	}
	session, ok := h.SessionManager.GetSession(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrGameNotFound.Error()})
		return nil, false
	}
	return session, true
}
