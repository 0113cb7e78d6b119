package customer

import (
	"context"
	gosync "sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/infrastructure/erp"
)

// Directory is the ERP customer surface the resolver depends on
type Directory interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (*erp.CustomerRecord, error)
	FindCustomerByEmail(ctx context.Context, email string) (*erp.CustomerRecord, error)
	CreateCustomer(ctx context.Context, payload erp.CustomerPayload) (*erp.CustomerRecord, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, payload erp.CustomerPayload) error
}

// Resolver maps local accounts onto ERP customers without ever creating a
// duplicate. Resolution is verify, then search by email, then create, in
// that order; a transport failure at any step aborts instead of falling
// through to the next one.
type Resolver struct {
	directory Directory
	accounts  customer.AccountRepository
	logger    *zap.Logger

	// emailLocks serializes resolution per email within this process, so
	// two concurrent checkouts of the same account cannot both reach the
	// create step. Entries are never removed; the map is bounded by the
	// number of distinct accounts seen since startup.
	mu         gosync.Mutex
	emailLocks map[string]*gosync.Mutex
}

// NewResolver creates a new Resolver
func NewResolver(directory Directory, accounts customer.AccountRepository, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		directory:  directory,
		accounts:   accounts,
		logger:     logger,
		emailLocks: make(map[string]*gosync.Mutex),
	}
}

// Resolve returns the ERP customer GUID for an account, verifying a cached
// link, healing a stale one, and creating the customer upstream only when
// no record with the account's email exists.
func (r *Resolver) Resolve(ctx context.Context, accountID uuid.UUID) (uuid.UUID, error) {
	account, err := r.accounts.FindByID(ctx, accountID)
	if err != nil {
		return uuid.Nil, err
	}

	unlock := r.lockEmail(account.Email)
	defer unlock()

	// Reload under the lock: a concurrent resolve may have just bound it.
	account, err = r.accounts.FindByID(ctx, accountID)
	if err != nil {
		return uuid.Nil, err
	}

	if account.Linked() {
		_, err := r.directory.GetCustomer(ctx, *account.ERPCustomerID)
		if err == nil {
			return *account.ERPCustomerID, nil
		}
		if !erp.IsNotFound(err) {
			// Unverifiable is not the same as stale. Creating here
			// could duplicate the customer once the ERP recovers.
			return uuid.Nil, err
		}

		r.logger.Info("Clearing stale ERP customer link",
			zap.String("account_id", account.ID.String()),
			zap.String("erp_customer_id", account.ERPCustomerID.String()),
		)
		account.ClearLink()
		if err := r.accounts.Save(ctx, account); err != nil {
			return uuid.Nil, err
		}
	}

	record, err := r.directory.FindCustomerByEmail(ctx, account.Email)
	if err != nil {
		return uuid.Nil, err
	}
	if record == nil {
		record, err = r.directory.CreateCustomer(ctx, payloadFrom(account))
		if err != nil {
			return uuid.Nil, err
		}
		r.logger.Info("Created ERP customer",
			zap.String("account_id", account.ID.String()),
			zap.String("erp_customer_id", record.ID.String()),
		)
	}

	// The binding must survive a crash before it is handed out.
	account.Bind(record.ID)
	if err := r.accounts.Save(ctx, account); err != nil {
		return uuid.Nil, err
	}

	return record.ID, nil
}

// Push propagates the account's current profile to the ERP. A 404 on the
// PATCH means the linked customer vanished since resolution; the link is
// re-resolved once and the update retried against the fresh customer.
func (r *Resolver) Push(ctx context.Context, accountID uuid.UUID) error {
	erpID, err := r.Resolve(ctx, accountID)
	if err != nil {
		return err
	}

	account, err := r.accounts.FindByID(ctx, accountID)
	if err != nil {
		return err
	}

	err = r.directory.UpdateCustomer(ctx, erpID, payloadFrom(account))
	if err == nil || !erp.IsNotFound(err) {
		return err
	}

	r.logger.Warn("Linked ERP customer vanished mid-update, re-resolving",
		zap.String("account_id", account.ID.String()),
	)
	unlock := r.lockEmail(account.Email)
	account.ClearLink()
	saveErr := r.accounts.Save(ctx, account)
	unlock()
	if saveErr != nil {
		return saveErr
	}

	erpID, err = r.Resolve(ctx, accountID)
	if err != nil {
		return err
	}
	return r.directory.UpdateCustomer(ctx, erpID, payloadFrom(account))
}

// lockEmail takes the per-email resolution lock and returns its release
func (r *Resolver) lockEmail(email string) func() {
	r.mu.Lock()
	lock, ok := r.emailLocks[email]
	if !ok {
		lock = &gosync.Mutex{}
		r.emailLocks[email] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// payloadFrom maps an account profile to the ERP customer field set
func payloadFrom(account *customer.Account) erp.CustomerPayload {
	return erp.CustomerPayload{
		Name:        account.Name,
		Email:       account.Email,
		Street:      account.Street,
		HouseNumber: account.HouseNumber,
		PostalCode:  account.PostalCode,
		City:        account.City,
		CountryCode: account.CountryCode,
	}
}
