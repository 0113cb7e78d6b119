package handler

import (
	"github.com/gin-gonic/gin"

	customerapp "github.com/storefront/backend/internal/application/customer"
)

// AccountHandler manages local storefront accounts
type AccountHandler struct {
	BaseHandler
	accounts *customerapp.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accounts *customerapp.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// RegisterRoutes registers account routes
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.Register)
		accounts.GET("/me", h.Me)
		accounts.PUT("/me", h.UpdateProfile)
	}
}

// RegisterAccountRequest represents a request to create a local account
type RegisterAccountRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=120"`
	Email       string `json:"email" binding:"required,email,max=200"`
	Street      string `json:"street" binding:"max=200"`
	HouseNumber string `json:"houseNumber" binding:"max=20"`
	PostalCode  string `json:"postalCode" binding:"max=20"`
	City        string `json:"city" binding:"max=120"`
	CountryCode string `json:"countryCode" binding:"omitempty,len=2"`
}

// UpdateProfileRequest represents a request to edit the account profile
type UpdateProfileRequest struct {
	Name        string `json:"name" binding:"omitempty,min=1,max=120"`
	Street      string `json:"street" binding:"max=200"`
	HouseNumber string `json:"houseNumber" binding:"max=20"`
	PostalCode  string `json:"postalCode" binding:"max=20"`
	City        string `json:"city" binding:"max=120"`
	CountryCode string `json:"countryCode" binding:"omitempty,len=2"`
}

// Register creates a local account
func (h *AccountHandler) Register(c *gin.Context) {
	var req RegisterAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	view, err := h.accounts.Register(c.Request.Context(), req.Name, req.Email, customerapp.Profile{
		Street:      req.Street,
		HouseNumber: req.HouseNumber,
		PostalCode:  req.PostalCode,
		City:        req.City,
		CountryCode: req.CountryCode,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

// Me returns the acting account
func (h *AccountHandler) Me(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.BadRequest(c, "Missing or invalid account")
		return
	}

	view, err := h.accounts.Get(c.Request.Context(), accountID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// UpdateProfile edits the acting account's profile
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.BadRequest(c, "Missing or invalid account")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	view, err := h.accounts.UpdateProfile(c.Request.Context(), accountID, customerapp.Profile{
		Name:        req.Name,
		Street:      req.Street,
		HouseNumber: req.HouseNumber,
		PostalCode:  req.PostalCode,
		City:        req.City,
		CountryCode: req.CountryCode,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}
