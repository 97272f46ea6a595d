package identity

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"chat-eats-backend/internal/api"
	"chat-eats-backend/internal/models"
)

// Handler exposes registration, profile and saved-location endpoints.
type Handler struct {
	svc       ServiceInterface
	validate  *validator.Validate
	jwtSecret string
	tokenTTL  time.Duration
}

func NewHandler(svc ServiceInterface, jwtSecret string, tokenTTL time.Duration) *Handler {
	return &Handler{
		svc:       svc,
		validate:  validator.New(),
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// RegisterPublicRoutes mounts the unauthenticated endpoints.
func (h *Handler) RegisterPublicRoutes(g *echo.Group) {
	g.POST("/auth/register", h.Register)
}

// RegisterRoutes mounts the authenticated endpoints.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/me", h.Me)
	g.GET("/me/profile", h.Profile)
	g.POST("/me/locations", h.AddLocation)
	g.GET("/me/locations", h.ListLocations)
	g.PATCH("/me/locations/:locationId", h.RenameLocation)
	g.DELETE("/me/locations/:locationId", h.DeleteLocation)
}

type registerResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Register creates a client account from the contact data the chat gateway
// captured and returns the bearer token the gateway uses from then on.
func (h *Handler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	user, err := h.svc.Register(ctx, req)
	if err != nil {
		return api.WriteError(c, err)
	}
	token, err := api.IssueToken(h.jwtSecret, user, h.tokenTTL)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{Message: "could not issue token"})
	}
	return c.JSON(http.StatusCreated, registerResponse{Token: token, User: user})
}

func (h *Handler) Me(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	user, err := h.svc.Get(ctx, userID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *Handler) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	profile, err := h.svc.Profile(ctx, userID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, profile)
}

func (h *Handler) AddLocation(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	var req models.SavedLocationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	loc, err := h.svc.AddLocation(ctx, userID, req)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusCreated, loc)
}

func (h *Handler) ListLocations(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	locations, err := h.svc.ListLocations(ctx, userID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, locations)
}

func (h *Handler) RenameLocation(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	locationID, err := strconv.ParseInt(c.Param("locationId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid location id"})
	}
	var req models.RenameLocationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	if err := h.svc.RenameLocation(ctx, userID, locationID, req.Name); err != nil {
		return api.WriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteLocation(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	locationID, err := strconv.ParseInt(c.Param("locationId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid location id"})
	}
	if err := h.svc.DeleteLocation(ctx, userID, locationID); err != nil {
		return api.WriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
