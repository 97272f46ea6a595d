package shifts

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"chat-eats-backend/internal/api"
	"chat-eats-backend/internal/models"
)

// Handler exposes the courier check-in endpoints.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// RegisterRoutes mounts the endpoints on a group gated to the delivery_guy
// role.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/shifts/check-in", h.CheckIn)
	g.GET("/shifts/status", h.Status)
}

type checkInResponse struct {
	Active bool `json:"active"`
	// ElapsedSeconds is the length of the state that just ended; absent for
	// a courier's first ever entry.
	ElapsedSeconds *int64 `json:"elapsed_seconds,omitempty"`
}

func (h *Handler) CheckIn(c echo.Context) error {
	ctx := c.Request().Context()
	courierID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	var req models.CheckInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	elapsed, known, err := h.svc.CheckIn(ctx, courierID, *req.Active)
	if err != nil {
		return api.WriteError(c, err)
	}
	resp := checkInResponse{Active: *req.Active}
	if known {
		seconds := int64(elapsed.Seconds())
		resp.ElapsedSeconds = &seconds
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Status(c echo.Context) error {
	courierID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	entry, err := h.svc.CurrentStatus(c.Request().Context(), courierID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}
