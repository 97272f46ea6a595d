package session

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"chat-eats-backend/internal/api"
	"chat-eats-backend/internal/models"
)

// Handler exposes the conversation flow the chat gateway drives: start an
// ordering session, pick a location, pick a restaurant, render the cart.
type Handler struct {
	manager  *Manager
	validate *validator.Validate
}

func NewHandler(manager *Manager) *Handler {
	return &Handler{manager: manager, validate: validator.New()}
}

// RegisterRoutes mounts the session endpoints on a group gated to the client
// role.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/sessions", h.Start)
	g.GET("/sessions/:conversationId", h.Get)
	g.PUT("/sessions/:conversationId/location", h.ChooseLocation)
	g.PUT("/sessions/:conversationId/restaurant", h.ChooseRestaurant)
	g.GET("/sessions/:conversationId/cart", h.Cart)
	g.PUT("/sessions/:conversationId/messages", h.TrackMessage)
	g.DELETE("/sessions/:conversationId", h.Clear)
}

type startRequest struct {
	ConversationID string `json:"conversation_id"`
}

type chooseLocationRequest struct {
	ClientLocationID int64 `json:"client_location_id" validate:"required"`
}

type chooseRestaurantRequest struct {
	RestaurantID         int64 `json:"restaurant_id" validate:"required"`
	RestaurantLocationID int64 `json:"restaurant_location_id" validate:"required"`
}

type trackMessageRequest struct {
	Purpose   string `json:"purpose" validate:"required"`
	MessageID int    `json:"message_id" validate:"required"`
}

func (h *Handler) Start(c echo.Context) error {
	ctx := c.Request().Context()
	clientID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	var req startRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}

	draft, err := h.manager.StartOrder(ctx, req.ConversationID, clientID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusCreated, draft)
}

// ownDraft loads the draft and checks the actor owns the conversation.
func (h *Handler) ownDraft(c echo.Context) (*Draft, error) {
	clientID, ok := api.ActorID(c)
	if !ok {
		return nil, models.ErrForbidden
	}
	draft, err := h.manager.Get(c.Request().Context(), c.Param("conversationId"))
	if err != nil {
		return nil, err
	}
	if draft.ClientID != clientID {
		return nil, models.ErrNotFound
	}
	return draft, nil
}

func (h *Handler) Get(c echo.Context) error {
	draft, err := h.ownDraft(c)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, draft)
}

func (h *Handler) ChooseLocation(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.ownDraft(c); err != nil {
		return api.WriteError(c, err)
	}
	var req chooseLocationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	draft, err := h.manager.ChooseLocation(ctx, c.Param("conversationId"), req.ClientLocationID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, draft)
}

func (h *Handler) ChooseRestaurant(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.ownDraft(c); err != nil {
		return api.WriteError(c, err)
	}
	var req chooseRestaurantRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	draft, err := h.manager.ChooseRestaurant(ctx, c.Param("conversationId"), req.RestaurantID, req.RestaurantLocationID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, draft)
}

func (h *Handler) Cart(c echo.Context) error {
	if _, err := h.ownDraft(c); err != nil {
		return api.WriteError(c, err)
	}
	header, err := h.manager.CartHeader(c.Request().Context(), c.Param("conversationId"))
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, models.CartSummary{Header: header, Total: header.Total()})
}

func (h *Handler) TrackMessage(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.ownDraft(c); err != nil {
		return api.WriteError(c, err)
	}
	var req trackMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	draft, err := h.manager.TrackMessage(ctx, c.Param("conversationId"), req.Purpose, req.MessageID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, draft)
}

func (h *Handler) Clear(c echo.Context) error {
	if _, err := h.ownDraft(c); err != nil {
		return api.WriteError(c, err)
	}
	if err := h.manager.Clear(c.Request().Context(), c.Param("conversationId")); err != nil {
		return api.WriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
