package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"chat-eats-backend/internal/api"
	"chat-eats-backend/internal/models"
)

// Handler exposes the public browse endpoints and the owner management
// endpoints. The owner group is role-gated by the router, so handlers only
// resolve ownership, never the role itself.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// RegisterRoutes mounts the browse endpoints, available to every
// authenticated user.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/restaurants", h.ListRestaurants)
	g.GET("/restaurants/:restaurantId", h.GetRestaurant)
	g.GET("/restaurants/:restaurantId/locations", h.ListLocations)
	g.GET("/restaurants/:restaurantId/categories", h.ListCategories)
	g.GET("/categories/:categoryId/items", h.ListMenuItems)
}

// RegisterOwnerRoutes mounts the management endpoints on a group gated to the
// restaurant_owner role.
func (h *Handler) RegisterOwnerRoutes(g *echo.Group) {
	g.POST("/restaurant", h.CreateRestaurant)
	g.GET("/restaurant", h.MyRestaurant)
	g.DELETE("/restaurant", h.DeleteRestaurant)
	g.POST("/restaurant/locations", h.AddLocation)
	g.POST("/restaurant/tags", h.AddTag)
	g.DELETE("/restaurant/tags/:tag", h.RemoveTag)
	g.POST("/restaurant/categories", h.CreateCategory)
	g.PATCH("/restaurant/categories/:categoryId", h.RenameCategory)
	g.DELETE("/restaurant/categories/:categoryId", h.DeleteCategory)
	g.POST("/restaurant/categories/:categoryId/items", h.CreateMenuItem)
	g.PUT("/restaurant/items/:itemId", h.UpdateMenuItem)
	g.DELETE("/restaurant/items/:itemId", h.DeleteMenuItem)
}

func (h *Handler) ListRestaurants(c echo.Context) error {
	restaurants, err := h.svc.ListRestaurants(c.Request().Context())
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, restaurants)
}

func (h *Handler) GetRestaurant(c echo.Context) error {
	restaurantID, err := strconv.ParseInt(c.Param("restaurantId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid restaurant id"})
	}
	rest, err := h.svc.GetRestaurant(c.Request().Context(), restaurantID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, rest)
}

func (h *Handler) ListLocations(c echo.Context) error {
	restaurantID, err := strconv.ParseInt(c.Param("restaurantId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid restaurant id"})
	}
	locations, err := h.svc.ListLocations(c.Request().Context(), restaurantID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, locations)
}

func (h *Handler) ListCategories(c echo.Context) error {
	restaurantID, err := strconv.ParseInt(c.Param("restaurantId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid restaurant id"})
	}
	categories, err := h.svc.ListCategories(c.Request().Context(), restaurantID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *Handler) ListMenuItems(c echo.Context) error {
	categoryID, err := strconv.ParseInt(c.Param("categoryId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid category id"})
	}
	items, err := h.svc.ListMenuItems(c.Request().Context(), categoryID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CreateRestaurant(c echo.Context) error {
	ctx := c.Request().Context()
	ownerID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	var req models.CreateRestaurantRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	rest, err := h.svc.CreateRestaurant(ctx, ownerID, req)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusCreated, rest)
}

func (h *Handler) MyRestaurant(c echo.Context) error {
	ownerID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	rest, err := h.svc.MyRestaurant(c.Request().Context(), ownerID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, rest)
}

func (h *Handler) DeleteRestaurant(c echo.Context) error {
	ownerID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	if err := h.svc.DeleteRestaurant(c.Request().Context(), ownerID); err != nil {
		return api.WriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddLocation(c echo.Context) error {
	ctx := c.Request().Context()
	ownerID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	var req models.RestaurantLocationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	loc, err := h.svc.AddLocation(ctx, ownerID, req)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusCreated, loc)
}

func (h *Handler) AddTag(c echo.Context) error {
	ctx := c.Request().Context()
	ownerID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	var req models.TagRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	if err := h.svc.AddTag(ctx, ownerID, req.Tag); err != nil {
		return api.WriteError(c, err)
	}
	return c.NoContent(http.StatusCreated)
}

func (h *Handler) RemoveTag(c echo.Context) error {
	ownerID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	if err := h.svc.RemoveTag(c.Request().Context(), ownerID, c.Param("tag")); err != nil {
		return api.WriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()
	ownerID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	var req models.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	cat, err := h.svc.CreateCategory(ctx, ownerID, req.Name)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *Handler) RenameCategory(c echo.Context) error {
	ctx := c.Request().Context()
	ownerID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	categoryID, err := strconv.ParseInt(c.Param("categoryId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid category id"})
	}
	var req models.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	if err := h.svc.RenameCategory(ctx, ownerID, categoryID, req.Name); err != nil {
		return api.WriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) DeleteCategory(c echo.Context) error {
	ownerID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	categoryID, err := strconv.ParseInt(c.Param("categoryId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid category id"})
	}
	if err := h.svc.DeleteCategory(c.Request().Context(), ownerID, categoryID); err != nil {
		return api.WriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreateMenuItem(c echo.Context) error {
	ctx := c.Request().Context()
	ownerID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	categoryID, err := strconv.ParseInt(c.Param("categoryId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid category id"})
	}
	var req models.MenuItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	item, err := h.svc.CreateMenuItem(ctx, ownerID, categoryID, req)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateMenuItem(c echo.Context) error {
	ctx := c.Request().Context()
	ownerID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	itemID, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid item id"})
	}
	var req models.MenuItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	item, err := h.svc.UpdateMenuItem(ctx, ownerID, itemID, req)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteMenuItem(c echo.Context) error {
	ownerID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	itemID, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid item id"})
	}
	if err := h.svc.DeleteMenuItem(c.Request().Context(), ownerID, itemID); err != nil {
		return api.WriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
