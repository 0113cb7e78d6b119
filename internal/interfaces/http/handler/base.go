package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/erp"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getAccountID extracts the acting account from the X-Account-ID header.
// The storefront frontend authenticates the session and forwards the
// account it belongs to.
func getAccountID(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader("X-Account-ID")
	if raw == "" {
		return uuid.Nil, errors.New("account ID not found in request")
	}
	return uuid.Parse(raw)
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeBadRequest, message))
}

// HandleError maps service errors onto HTTP responses. ERP validation
// rejections keep their upstream message and details; transport-level
// failures read as a bad gateway, never as a storefront bug.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	var erpErr *erp.Error
	if errors.As(err, &erpErr) {
		switch erpErr.Kind {
		case erp.KindValidation:
			c.JSON(http.StatusUnprocessableEntity,
				dto.NewErrorResponseWithDetails("ERP_REJECTED", erpErr.Message, erpErr.Details))
		case erp.KindNotFound:
			c.JSON(http.StatusNotFound,
				dto.NewErrorResponse(dto.ErrCodeNotFound, "Resource not found"))
		default:
			// connection, timeout, auth, server: the ERP could not serve us
			c.JSON(http.StatusBadGateway,
				dto.NewErrorResponse(dto.ErrCodeUpstream, "The ERP system is currently unavailable"))
		}
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.JSON(dto.GetHTTPStatus(domainErr.Code),
			dto.NewErrorResponse(domainErr.Code, domainErr.Message))
		return
	}

	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponse(dto.ErrCodeInternalError, "Internal server error"))
}
