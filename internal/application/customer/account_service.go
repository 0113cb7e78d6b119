package customer

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
)

// Profile is the editable slice of an account
type Profile struct {
	Name        string `json:"name"`
	Street      string `json:"street"`
	HouseNumber string `json:"houseNumber"`
	PostalCode  string `json:"postalCode"`
	City        string `json:"city"`
	CountryCode string `json:"countryCode"`
}

// AccountView is the account read model
type AccountView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Street      string    `json:"street"`
	HouseNumber string    `json:"houseNumber"`
	PostalCode  string    `json:"postalCode"`
	City        string    `json:"city"`
	CountryCode string    `json:"countryCode"`
	Linked      bool      `json:"linked"`
}

// AccountService manages local storefront accounts. The ERP learns about an
// account lazily, through the resolver, and profile edits are pushed only
// once a link exists.
type AccountService struct {
	accounts customer.AccountRepository
	resolver *Resolver
	logger   *zap.Logger
}

// NewAccountService creates a new AccountService
func NewAccountService(accounts customer.AccountRepository, resolver *Resolver, logger *zap.Logger) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		accounts: accounts,
		resolver: resolver,
		logger:   logger,
	}
}

// Register creates a local account. No ERP call happens here.
func (s *AccountService) Register(ctx context.Context, name, email string, profile Profile) (*AccountView, error) {
	if existing, err := s.accounts.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, shared.ErrAlreadyExists
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	account, err := customer.NewAccount(name, email)
	if err != nil {
		return nil, err
	}
	applyProfile(account, profile)

	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, err
	}

	view := toAccountView(account)
	return &view, nil
}

// Get returns one account
func (s *AccountService) Get(ctx context.Context, accountID uuid.UUID) (*AccountView, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	view := toAccountView(account)
	return &view, nil
}

// UpdateProfile edits the local profile and, when the account is already
// linked, pushes the change to the ERP customer as well. The local edit
// stands even when the push fails; the error still surfaces.
func (s *AccountService) UpdateProfile(ctx context.Context, accountID uuid.UUID, profile Profile) (*AccountView, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	applyProfile(account, profile)
	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, err
	}

	if account.Linked() {
		if err := s.resolver.Push(ctx, accountID); err != nil {
			return nil, err
		}
	}

	view := toAccountView(account)
	return &view, nil
}

func applyProfile(account *customer.Account, profile Profile) {
	if profile.Name != "" {
		account.Name = profile.Name
	}
	account.Street = profile.Street
	account.HouseNumber = profile.HouseNumber
	account.PostalCode = profile.PostalCode
	account.City = profile.City
	if profile.CountryCode != "" {
		account.CountryCode = profile.CountryCode
	}
}

func toAccountView(account *customer.Account) AccountView {
	return AccountView{
		ID:          account.ID,
		Name:        account.Name,
		Email:       account.Email,
		Street:      account.Street,
		HouseNumber: account.HouseNumber,
		PostalCode:  account.PostalCode,
		City:        account.City,
		CountryCode: account.CountryCode,
		Linked:      account.Linked(),
	}
}
