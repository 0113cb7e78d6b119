package handler

import (
	"github.com/gin-gonic/gin"

	syncapp "github.com/storefront/backend/internal/application/sync"
)

// SyncHandler exposes the reconciliation and feed import triggers
type SyncHandler struct {
	BaseHandler
	reconciler *syncapp.Reconciler
	importer   *syncapp.CSVImporter
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(reconciler *syncapp.Reconciler, importer *syncapp.CSVImporter) *SyncHandler {
	return &SyncHandler{reconciler: reconciler, importer: importer}
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sync := rg.Group("/sync")
	{
		sync.POST("/catalog", h.Reconcile)
		sync.POST("/prices", h.ImportFeed)
	}
}

// Reconcile runs one catalog reconciliation pass. A pass already in flight
// answers 409 instead of queueing another one.
func (h *SyncHandler) Reconcile(c *gin.Context) {
	report, err := h.reconciler.Reconcile(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// ImportFeed downloads and applies the CSV price feed once
func (h *SyncHandler) ImportFeed(c *gin.Context) {
	report, err := h.importer.Import(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
