package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	checkoutapp "github.com/storefront/backend/internal/application/checkout"
)

// CatalogHandler serves the mirrored product catalog
type CatalogHandler struct {
	BaseHandler
	products *catalogapp.ProductService
	stock    *checkoutapp.StockChecker
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(products *catalogapp.ProductService, stock *checkoutapp.StockChecker) *CatalogHandler {
	return &CatalogHandler{products: products, stock: stock}
}

// RegisterRoutes registers catalog routes
func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.GET("", h.List)
		products.GET("/:id", h.Get)
		products.GET("/:id/stock", h.Stock)
	}
}

// List returns all mirrored products
func (h *CatalogHandler) List(c *gin.Context) {
	views, err := h.products.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, views)
}

// Get returns one product by GUID
func (h *CatalogHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	view, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Stock returns the live sellable quantity of one product
func (h *CatalogHandler) Stock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	h.Success(c, gin.H{
		"productId": id,
		"stock":     h.stock.StockOf(c.Request.Context(), id),
	})
}
