package promotion

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"chat-eats-backend/internal/api"
	"chat-eats-backend/internal/models"
)

// Handler exposes the application endpoint for clients and the review
// endpoints for admins.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// RegisterRoutes mounts the client-facing endpoint.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/promotions", h.Apply)
}

// RegisterAdminRoutes mounts the review endpoints on a group gated to the
// admin role.
func (h *Handler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/promotions", h.ListOpen)
	g.POST("/promotions/:userId/accept", h.Accept)
	g.POST("/promotions/:userId/reject", h.Reject)
	g.POST("/users/:userId/demote", h.Demote)
}

func (h *Handler) Apply(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	var req models.ApplyPromotionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	appl, err := h.svc.Apply(ctx, userID, req.RoleToPromote)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusCreated, appl)
}

// ListOpen returns the open applications for one requested role, oldest
// first, matching the admin review queue.
func (h *Handler) ListOpen(c echo.Context) error {
	role := models.Role(c.QueryParam("role"))
	applications, err := h.svc.ListOpen(c.Request().Context(), role)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, applications)
}

func userParam(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("userId"), 10, 64)
}

func (h *Handler) Accept(c echo.Context) error {
	userID, err := userParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid user id"})
	}
	role, err := h.svc.Accept(c.Request().Context(), userID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"user_id": userID, "role": role})
}

func (h *Handler) Reject(c echo.Context) error {
	userID, err := userParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid user id"})
	}
	if err := h.svc.Reject(c.Request().Context(), userID); err != nil {
		return api.WriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Demote(c echo.Context) error {
	userID, err := userParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid user id"})
	}
	if err := h.svc.Demote(c.Request().Context(), userID); err != nil {
		return api.WriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
