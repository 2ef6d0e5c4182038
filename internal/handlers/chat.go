package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	authsvc "github.com/gearsphere/motorclub-backend/internal/auth"
	"github.com/gearsphere/motorclub-backend/internal/chat"
	"github.com/gearsphere/motorclub-backend/internal/events"
	authmw "github.com/gearsphere/motorclub-backend/internal/middleware/auth"
	"github.com/gearsphere/motorclub-backend/internal/models"
	"github.com/gearsphere/motorclub-backend/internal/util"
)

type ChatHandler struct {
	DB       *gorm.DB
	Hub      *chat.Hub
	Auth     *authsvc.Service
	Producer *events.Producer

	upgrader websocket.Upgrader
}

func NewChatHandler(db *gorm.DB, hub *chat.Hub, auth *authsvc.Service, producer *events.Producer) *ChatHandler {
	return &ChatHandler{
		DB:       db,
		Hub:      hub,
		Auth:     auth,
		Producer: producer,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type chatMessageDTO struct {
	ID        uint      `json:"id"`
	Message   string    `json:"message"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *ChatHandler) messageQuery(c echo.Context) *gorm.DB {
	return h.DB.WithContext(c.Request().Context()).
		Model(&models.ChatMessage{}).
		Select("chat_messages.id, chat_messages.message, users.username, chat_messages.created_at AS timestamp").
		Joins("JOIN users ON users.id = chat_messages.user_id")
}

// Recent returns the latest messages, newest first.
func (h *ChatHandler) Recent(c echo.Context) error {
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	_, limit := util.Calculate(1, size)

	var messages []chatMessageDTO
	if err := h.messageQuery(c).Order("chat_messages.created_at DESC").Limit(limit).Scan(&messages).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, messages)
}

// History returns messages in chronological order, paginated.
func (h *ChatHandler) History(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var messages []chatMessageDTO
	if err := h.messageQuery(c).Order("chat_messages.created_at ASC").Offset(offset).Limit(limit).Scan(&messages).Error; err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, messages)
}

// Send persists a message over plain HTTP and fans it out to websocket
// clients, so the REST API and the socket share one stream.
func (h *ChatHandler) Send(c echo.Context) error {
	user := authmw.CurrentUser(c)

	var req struct {
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil || req.Message == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "message is required")
	}

	dto, err := h.store(c.Request().Context(), user, req.Message)
	if err != nil {
		return httpError(err)
	}

	if payload, err := json.Marshal(dto); err == nil {
		h.Hub.Broadcast(payload)
	}

	h.publishSent(c, user, dto)

	return c.JSON(http.StatusCreated, dto)
}

func (h *ChatHandler) DeleteMessage(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	res := h.DB.WithContext(c.Request().Context()).Delete(&models.ChatMessage{}, id)
	if res.Error != nil {
		return httpError(res.Error)
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "message not found")
	}
	return c.NoContent(http.StatusNoContent)
}

// ServeWS authenticates the handshake and upgrades to a websocket. The token
// comes from the Authorization header or, for browser clients that cannot set
// headers on websocket connects, the access_token query parameter. Invalid
// tokens are rejected before the upgrade.
func (h *ChatHandler) ServeWS(c echo.Context) error {
	token := authmw.BearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
	if token == "" {
		token = c.QueryParam("access_token")
	}
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	username, err := h.Auth.VerifyAccessToken(token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
	}
	user, err := h.Auth.ResolveUser(c.Request().Context(), username)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid access token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := chat.NewClient(h.Hub, conn, user, func(u *models.User, msg chat.InboundMessage) ([]byte, error) {
		dto, err := h.store(c.Request().Context(), u, msg.Message)
		if err != nil {
			return nil, err
		}
		h.publishSent(c, u, dto)
		return json.Marshal(dto)
	})
	client.Serve()
	return nil
}

func (h *ChatHandler) publishSent(c echo.Context, user *models.User, dto *chatMessageDTO) {
	publish(c, h.Producer, events.TopicChatEvents, fmt.Sprint(user.ID), map[string]any{
		"type":      "message_sent",
		"messageID": dto.ID,
		"userID":    user.ID,
		"username":  user.Username,
	})
}

func (h *ChatHandler) store(ctx context.Context, user *models.User, text string) (*chatMessageDTO, error) {
	msg := models.ChatMessage{UserID: user.ID, Message: text}
	if err := h.DB.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	return &chatMessageDTO{
		ID:        msg.ID,
		Message:   msg.Message,
		Username:  user.Username,
		Timestamp: msg.CreatedAt,
	}, nil
}
