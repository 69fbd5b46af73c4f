package handler

import (
	"school-assist-be/internal/pkg/logger"
	"school-assist-be/internal/pkg/serverutils"
	"school-assist-be/internal/service"
	internalWS "school-assist-be/internal/websocket"
	"school-assist-be/pkg/dialog/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type ChatSocketHandler struct {
	dialog   service.IDialogService
	hub      *internalWS.Hub
	tokens   *serverutils.SessionTokens
	registry *domain.Registry
	logger   logger.ILogger
}

func NewChatSocketHandler(dialog service.IDialogService, hub *internalWS.Hub, tokens *serverutils.SessionTokens, registry *domain.Registry, log logger.ILogger) *ChatSocketHandler {
	return &ChatSocketHandler{
		dialog:   dialog,
		hub:      hub,
		tokens:   tokens,
		registry: registry,
		logger:   log,
	}
}

func (h *ChatSocketHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/chat/:domain", h.ServeWs)
}

// ServeWs upgrades a chat connection. Browsers cannot set headers on the handshake,
// so a session token in the sid query parameter takes priority over the cookie.
func (h *ChatSocketHandler) ServeWs(c *fiber.Ctx) error {
	domainName := c.Params("domain")
	if _, ok := h.registry.Get(domainName); !ok {
		return fiber.ErrNotFound
	}

	sessionID := serverutils.SessionID(c)
	if tokenStr := c.Query("sid"); tokenStr != "" {
		id, err := h.tokens.Parse(tokenStr)
		if err != nil {
			h.logger.Warn("ChatSocketHandler", "Invalid session token in WS handshake", map[string]interface{}{"error": err.Error()})
			return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Invalid session token"))
		}
		sessionID = id
	}
	if sessionID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(fiber.StatusUnauthorized, "Missing session"))
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ChatSocketHandler", "Starting WebSocket session", map[string]interface{}{"session_id": sessionID, "domain": domainName})
			internalWS.ServeWs(h.hub, conn, sessionID, domainName, h.dialog.HandleTurn)
			h.logger.Info("ChatSocketHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}
