package customer

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/erp"
)

// fakeAccounts is an in-memory customer.AccountRepository
type fakeAccounts struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]customer.Account
}

func newFakeAccounts(seed ...*customer.Account) *fakeAccounts {
	f := &fakeAccounts{accounts: make(map[uuid.UUID]customer.Account)}
	for _, a := range seed {
		f.accounts[a.ID] = *a
	}
	return f
}

func (f *fakeAccounts) FindByID(_ context.Context, id uuid.UUID) (*customer.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := a
	return &clone, nil
}

func (f *fakeAccounts) FindByEmail(_ context.Context, email string) (*customer.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Email == email {
			clone := a
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *fakeAccounts) Save(_ context.Context, account *customer.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[account.ID] = *account
	return nil
}

// stubDirectory implements Directory with function fields and call counters
type stubDirectory struct {
	getCustomer         func(ctx context.Context, id uuid.UUID) (*erp.CustomerRecord, error)
	findCustomerByEmail func(ctx context.Context, email string) (*erp.CustomerRecord, error)
	createCustomer      func(ctx context.Context, payload erp.CustomerPayload) (*erp.CustomerRecord, error)
	updateCustomer      func(ctx context.Context, id uuid.UUID, payload erp.CustomerPayload) error

	creates int64
	updates int64
}

func (s *stubDirectory) GetCustomer(ctx context.Context, id uuid.UUID) (*erp.CustomerRecord, error) {
	return s.getCustomer(ctx, id)
}

func (s *stubDirectory) FindCustomerByEmail(ctx context.Context, email string) (*erp.CustomerRecord, error) {
	return s.findCustomerByEmail(ctx, email)
}

func (s *stubDirectory) CreateCustomer(ctx context.Context, payload erp.CustomerPayload) (*erp.CustomerRecord, error) {
	atomic.AddInt64(&s.creates, 1)
	return s.createCustomer(ctx, payload)
}

func (s *stubDirectory) UpdateCustomer(ctx context.Context, id uuid.UUID, payload erp.CustomerPayload) error {
	atomic.AddInt64(&s.updates, 1)
	return s.updateCustomer(ctx, id, payload)
}

func testAccount(t *testing.T) *customer.Account {
	t.Helper()
	account, err := customer.NewAccount("Ada Lovelace", "ada@example.com")
	require.NoError(t, err)
	return account
}

func notFoundErr() error {
	return &erp.Error{Kind: erp.KindNotFound, Status: 404}
}

func connectionErr() error {
	return &erp.Error{Kind: erp.KindConnection}
}

func TestResolver_Resolve(t *testing.T) {
	t.Run("verified link is returned without search or create", func(t *testing.T) {
		account := testAccount(t)
		erpID := uuid.New()
		account.Bind(erpID)
		accounts := newFakeAccounts(account)

		directory := &stubDirectory{
			getCustomer: func(_ context.Context, id uuid.UUID) (*erp.CustomerRecord, error) {
				return &erp.CustomerRecord{ID: id, Email: account.Email}, nil
			},
			findCustomerByEmail: func(context.Context, string) (*erp.CustomerRecord, error) {
				t.Fatal("email search must not run for a verified link")
				return nil, nil
			},
		}

		resolver := NewResolver(directory, accounts, nil)
		resolved, err := resolver.Resolve(context.Background(), account.ID)

		require.NoError(t, err)
		assert.Equal(t, erpID, resolved)
		assert.Zero(t, directory.creates)
	})

	t.Run("stale link is cleared and healed via email search", func(t *testing.T) {
		account := testAccount(t)
		account.Bind(uuid.New()) // points at a deleted ERP customer
		accounts := newFakeAccounts(account)

		healed := uuid.New()
		directory := &stubDirectory{
			getCustomer: func(context.Context, uuid.UUID) (*erp.CustomerRecord, error) {
				return nil, notFoundErr()
			},
			findCustomerByEmail: func(_ context.Context, email string) (*erp.CustomerRecord, error) {
				return &erp.CustomerRecord{ID: healed, Email: email}, nil
			},
		}

		resolver := NewResolver(directory, accounts, nil)
		resolved, err := resolver.Resolve(context.Background(), account.ID)

		require.NoError(t, err)
		assert.Equal(t, healed, resolved)
		assert.Zero(t, directory.creates)

		stored, err := accounts.FindByID(context.Background(), account.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.ERPCustomerID)
		assert.Equal(t, healed, *stored.ERPCustomerID, "healed link must be persisted")
	})

	t.Run("unverifiable link aborts instead of creating a duplicate", func(t *testing.T) {
		account := testAccount(t)
		linked := uuid.New()
		account.Bind(linked)
		accounts := newFakeAccounts(account)

		directory := &stubDirectory{
			getCustomer: func(context.Context, uuid.UUID) (*erp.CustomerRecord, error) {
				return nil, connectionErr()
			},
		}

		resolver := NewResolver(directory, accounts, nil)
		_, err := resolver.Resolve(context.Background(), account.ID)

		require.Error(t, err)
		assert.Equal(t, erp.KindConnection, erp.KindOf(err))
		assert.Zero(t, directory.creates)

		stored, _ := accounts.FindByID(context.Background(), account.ID)
		require.NotNil(t, stored.ERPCustomerID)
		assert.Equal(t, linked, *stored.ERPCustomerID, "link must survive a transport failure")
	})

	t.Run("search failure aborts instead of falling through to create", func(t *testing.T) {
		account := testAccount(t)
		accounts := newFakeAccounts(account)

		directory := &stubDirectory{
			findCustomerByEmail: func(context.Context, string) (*erp.CustomerRecord, error) {
				return nil, connectionErr()
			},
		}

		resolver := NewResolver(directory, accounts, nil)
		_, err := resolver.Resolve(context.Background(), account.ID)

		require.Error(t, err)
		assert.Zero(t, directory.creates)
	})

	t.Run("creates the customer when no email match exists", func(t *testing.T) {
		account := testAccount(t)
		accounts := newFakeAccounts(account)

		created := uuid.New()
		directory := &stubDirectory{
			findCustomerByEmail: func(context.Context, string) (*erp.CustomerRecord, error) {
				return nil, nil
			},
			createCustomer: func(_ context.Context, payload erp.CustomerPayload) (*erp.CustomerRecord, error) {
				assert.Equal(t, account.Email, payload.Email)
				assert.Equal(t, account.Name, payload.Name)
				return &erp.CustomerRecord{ID: created, Email: payload.Email}, nil
			},
		}

		resolver := NewResolver(directory, accounts, nil)
		resolved, err := resolver.Resolve(context.Background(), account.ID)

		require.NoError(t, err)
		assert.Equal(t, created, resolved)
		assert.EqualValues(t, 1, directory.creates)
	})

	t.Run("concurrent resolution of one account creates at most once", func(t *testing.T) {
		account := testAccount(t)
		accounts := newFakeAccounts(account)

		created := uuid.New()
		directory := &stubDirectory{
			getCustomer: func(_ context.Context, id uuid.UUID) (*erp.CustomerRecord, error) {
				return &erp.CustomerRecord{ID: id, Email: account.Email}, nil
			},
			findCustomerByEmail: func(context.Context, string) (*erp.CustomerRecord, error) {
				return nil, nil
			},
			createCustomer: func(context.Context, erp.CustomerPayload) (*erp.CustomerRecord, error) {
				return &erp.CustomerRecord{ID: created, Email: account.Email}, nil
			},
		}

		resolver := NewResolver(directory, accounts, nil)

		var wg sync.WaitGroup
		results := make([]uuid.UUID, 4)
		for n := 0; n < 4; n++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				resolved, err := resolver.Resolve(context.Background(), account.ID)
				assert.NoError(t, err)
				results[n] = resolved
			}(n)
		}
		wg.Wait()

		assert.EqualValues(t, 1, directory.creates)
		for _, resolved := range results {
			assert.Equal(t, created, resolved)
		}
	})
}

func TestResolver_Push(t *testing.T) {
	t.Run("re-resolves and retries when the linked customer vanished", func(t *testing.T) {
		account := testAccount(t)
		stale := uuid.New()
		account.Bind(stale)
		accounts := newFakeAccounts(account)

		recreated := uuid.New()
		verified := map[uuid.UUID]bool{stale: true}
		directory := &stubDirectory{}
		directory.getCustomer = func(_ context.Context, id uuid.UUID) (*erp.CustomerRecord, error) {
			// The stale customer verifies at first, then vanishes.
			if verified[id] {
				return &erp.CustomerRecord{ID: id, Email: account.Email}, nil
			}
			return nil, notFoundErr()
		}
		directory.findCustomerByEmail = func(context.Context, string) (*erp.CustomerRecord, error) {
			return nil, nil
		}
		directory.createCustomer = func(context.Context, erp.CustomerPayload) (*erp.CustomerRecord, error) {
			verified[recreated] = true
			return &erp.CustomerRecord{ID: recreated, Email: account.Email}, nil
		}
		directory.updateCustomer = func(_ context.Context, id uuid.UUID, _ erp.CustomerPayload) error {
			if id == stale {
				delete(verified, stale)
				return notFoundErr()
			}
			return nil
		}

		resolver := NewResolver(directory, accounts, nil)
		err := resolver.Push(context.Background(), account.ID)

		require.NoError(t, err)
		assert.EqualValues(t, 1, directory.creates)
		assert.EqualValues(t, 2, directory.updates)

		stored, _ := accounts.FindByID(context.Background(), account.ID)
		require.NotNil(t, stored.ERPCustomerID)
		assert.Equal(t, recreated, *stored.ERPCustomerID)
	})
}
