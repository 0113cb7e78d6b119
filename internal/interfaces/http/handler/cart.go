package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	checkoutapp "github.com/storefront/backend/internal/application/checkout"
)

// CartHandler manages the account's cart and order submission
type CartHandler struct {
	BaseHandler
	checkout *checkoutapp.Service
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(checkout *checkoutapp.Service) *CartHandler {
	return &CartHandler{checkout: checkout}
}

// RegisterRoutes registers cart and checkout routes
func (h *CartHandler) RegisterRoutes(rg *gin.RouterGroup) {
	cart := rg.Group("/cart")
	{
		cart.GET("", h.Get)
		cart.POST("/items", h.AddItem)
		cart.DELETE("/items/:productId", h.RemoveItem)
	}
	rg.POST("/checkout", h.Submit)
}

// AddItemRequest represents a request to put a product into the cart
type AddItemRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// Get returns the current cart
func (h *CartHandler) Get(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.BadRequest(c, "Missing or invalid account")
		return
	}
	h.Success(c, h.checkout.Cart(c.Request.Context(), accountID))
}

// AddItem puts a product into the cart
func (h *CartHandler) AddItem(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.BadRequest(c, "Missing or invalid account")
		return
	}

	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	cart, err := h.checkout.AddItem(c.Request.Context(), accountID, productID, req.Quantity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// RemoveItem drops a product from the cart
func (h *CartHandler) RemoveItem(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.BadRequest(c, "Missing or invalid account")
		return
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	h.Success(c, h.checkout.RemoveItem(c.Request.Context(), accountID, productID))
}

// Submit turns the cart into an ERP order
func (h *CartHandler) Submit(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.BadRequest(c, "Missing or invalid account")
		return
	}

	receipt, err := h.checkout.SubmitOrder(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, receipt)
}
