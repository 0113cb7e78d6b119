package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ordersapp "github.com/storefront/backend/internal/application/orders"
)

// OrderHandler serves order history
type OrderHandler struct {
	BaseHandler
	history *ordersapp.HistoryService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(history *ordersapp.HistoryService) *OrderHandler {
	return &OrderHandler{history: history}
}

// RegisterRoutes registers order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
	}
}

// List returns the acting account's orders
func (h *OrderHandler) List(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.BadRequest(c, "Missing or invalid account")
		return
	}

	views, err := h.history.ListForAccount(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

// Get returns one of the acting account's orders
func (h *OrderHandler) Get(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.BadRequest(c, "Missing or invalid account")
		return
	}
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	view, err := h.history.GetForAccount(c.Request.Context(), accountID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}
