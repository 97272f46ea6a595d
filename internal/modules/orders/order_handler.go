package orders

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"chat-eats-backend/internal/api"
	"chat-eats-backend/internal/models"
)

// Handler exposes the cart endpoints for clients and the lifecycle endpoints
// for restaurant owners and couriers.
type Handler struct {
	svc      ServiceInterface
	validate *validator.Validate
}

func NewHandler(svc ServiceInterface) *Handler {
	return &Handler{svc: svc, validate: validator.New()}
}

// RegisterClientRoutes mounts the cart endpoints on a group gated to the
// client role.
func (h *Handler) RegisterClientRoutes(g *echo.Group) {
	g.POST("/cart", h.CreateCart)
	g.GET("/cart/:headerId", h.GetCart)
	g.POST("/cart/:headerId/items", h.AddItem)
	g.DELETE("/cart/:headerId/items/:menuItemId", h.RemoveItem)
	g.PUT("/cart/:headerId/comment", h.SetComment)
	g.POST("/cart/:headerId/publish", h.Publish)
	g.GET("/orders", h.ListMyOrders)
}

// RegisterStaffRoutes mounts the lifecycle endpoints on a group gated to
// owners, couriers and admins.
func (h *Handler) RegisterStaffRoutes(g *echo.Group) {
	g.GET("/orders/available", h.ListAwaitingCourier)
	g.POST("/orders/:headerId/status", h.AdvanceStatus)
	g.GET("/orders/:headerId/status", h.StatusHistory)
}

func headerParam(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("headerId"), 10, 64)
}

// ownCart re-fetches the header and checks the actor owns it. Foreign carts
// come back as not found so header ids cannot be probed.
func (h *Handler) ownCart(c echo.Context, headerID int64) (*models.OrderHeader, error) {
	clientID, ok := api.ActorID(c)
	if !ok {
		return nil, models.ErrForbidden
	}
	header, err := h.svc.Refresh(c.Request().Context(), headerID)
	if err != nil {
		return nil, err
	}
	if header.ClientID != clientID {
		return nil, models.ErrNotFound
	}
	return header, nil
}

// CreateCart opens an empty cart bound to a restaurant outlet and a delivery
// location. The chat session layer normally calls this exactly once per
// ordering session.
func (h *Handler) CreateCart(c echo.Context) error {
	ctx := c.Request().Context()
	clientID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	var req models.CreateCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	header, err := h.svc.CreateCart(ctx, clientID, req.RestaurantLocationID, req.ClientLocationID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusCreated, header)
}

func (h *Handler) GetCart(c echo.Context) error {
	headerID, err := headerParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid cart id"})
	}
	header, err := h.ownCart(c, headerID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, models.CartSummary{Header: header, Total: header.Total()})
}

type quantityResponse struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"quantity"`
}

func (h *Handler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	headerID, err := headerParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid cart id"})
	}
	var req models.CartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}
	if _, err := h.ownCart(c, headerID); err != nil {
		return api.WriteError(c, err)
	}

	quantity, err := h.svc.AddItem(ctx, headerID, req.MenuItemID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, quantityResponse{MenuItemID: req.MenuItemID, Quantity: quantity})
}

func (h *Handler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	headerID, err := headerParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid cart id"})
	}
	menuItemID, err := strconv.ParseInt(c.Param("menuItemId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid menu item id"})
	}
	if _, err := h.ownCart(c, headerID); err != nil {
		return api.WriteError(c, err)
	}

	quantity, err := h.svc.RemoveItem(ctx, headerID, menuItemID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, quantityResponse{MenuItemID: menuItemID, Quantity: quantity})
}

func (h *Handler) SetComment(c echo.Context) error {
	ctx := c.Request().Context()
	headerID, err := headerParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid cart id"})
	}
	var req models.CartCommentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}
	if _, err := h.ownCart(c, headerID); err != nil {
		return api.WriteError(c, err)
	}

	if err := h.svc.SetComment(ctx, headerID, req.Comment); err != nil {
		return api.WriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Publish(c echo.Context) error {
	ctx := c.Request().Context()
	headerID, err := headerParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid cart id"})
	}
	if _, err := h.ownCart(c, headerID); err != nil {
		return api.WriteError(c, err)
	}

	header, err := h.svc.Publish(ctx, headerID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, models.CartSummary{Header: header, Total: header.Total()})
}

func (h *Handler) ListMyOrders(c echo.Context) error {
	clientID, ok := api.ActorID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
	}
	headers, err := h.svc.ListClientOrders(c.Request().Context(), clientID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, headers)
}

func (h *Handler) ListAwaitingCourier(c echo.Context) error {
	headers, err := h.svc.ListAwaitingCourier(c.Request().Context())
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, headers)
}

// AdvanceStatus moves a published order one step forward. When a courier
// takes the order their id from the token becomes the assignment.
func (h *Handler) AdvanceStatus(c echo.Context) error {
	ctx := c.Request().Context()
	headerID, err := headerParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid order id"})
	}
	var req models.AdvanceStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: err.Error()})
	}

	var courierID *int64
	if role, _ := api.ActorRole(c); role == models.RoleDeliveryGuy {
		actorID, ok := api.ActorID(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Message: "missing or malformed token"})
		}
		courierID = &actorID
	}

	if err := h.svc.AdvanceStatus(ctx, headerID, req.Status, courierID); err != nil {
		return api.WriteError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) StatusHistory(c echo.Context) error {
	headerID, err := headerParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{Message: "invalid order id"})
	}
	updates, err := h.svc.StatusHistory(c.Request().Context(), headerID)
	if err != nil {
		return api.WriteError(c, err)
	}
	return c.JSON(http.StatusOK, updates)
}
