package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/customer"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/erp"
)

// OrderSource reads orders live from the ERP
type OrderSource interface {
	ListOrders(ctx context.Context, customerID uuid.UUID) ([]erp.OrderRecord, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*erp.OrderRecord, error)
}

// OrderItemView is one line of a displayed order
type OrderItemView struct {
	ProductID   uuid.UUID `json:"productId"`
	ProductName string    `json:"productName,omitempty"`
	Quantity    int       `json:"quantity"`
	Amount      string    `json:"amount"`
}

// OrderView is an order as shown in the account's history
type OrderView struct {
	ID        uuid.UUID       `json:"id"`
	OrderDate string          `json:"orderDate"`
	Currency  string          `json:"currency"`
	Amount    string          `json:"amount"`
	Items     []OrderItemView `json:"items"`
	// Source is "live" when read from the ERP, "mirror" when the ERP was
	// unreachable and the local copy answered instead.
	Source string `json:"source"`
}

// HistoryService serves order history. The ERP is authoritative and is
// always asked first; the local mirror only answers when the ERP cannot.
type HistoryService struct {
	source   OrderSource
	accounts customer.AccountRepository
	mirror   order.Repository
	logger   *zap.Logger
}

// NewHistoryService creates a new HistoryService
func NewHistoryService(source OrderSource, accounts customer.AccountRepository, mirror order.Repository, logger *zap.Logger) *HistoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HistoryService{
		source:   source,
		accounts: accounts,
		mirror:   mirror,
		logger:   logger,
	}
}

// ListForAccount returns the account's orders. An account that has never
// been linked to an ERP customer cannot have ordered anything.
func (s *HistoryService) ListForAccount(ctx context.Context, accountID uuid.UUID) ([]OrderView, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.Linked() {
		return []OrderView{}, nil
	}

	records, err := s.source.ListOrders(ctx, *account.ERPCustomerID)
	if err == nil {
		views := make([]OrderView, 0, len(records))
		for i := range records {
			views = append(views, liveView(&records[i]))
		}
		return views, nil
	}
	if !erp.IsTransient(err) {
		return nil, err
	}

	s.logger.Warn("Live order history unavailable, serving mirror",
		zap.String("account_id", accountID.String()),
		zap.Error(err),
	)

	mirrored, err := s.mirror.FindByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	views := make([]OrderView, 0, len(mirrored))
	for i := range mirrored {
		views = append(views, mirrorView(&mirrored[i]))
	}
	return views, nil
}

// GetForAccount returns one order, only if it belongs to the account. A
// foreign order reads as not found rather than forbidden.
func (s *HistoryService) GetForAccount(ctx context.Context, accountID, orderID uuid.UUID) (*OrderView, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.Linked() {
		return nil, shared.ErrNotFound
	}

	record, err := s.source.GetOrder(ctx, orderID)
	if err != nil {
		if erp.IsNotFound(err) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if record.CustomerID != *account.ERPCustomerID {
		return nil, shared.ErrNotFound
	}

	view := liveView(record)
	return &view, nil
}

func liveView(record *erp.OrderRecord) OrderView {
	items := make([]OrderItemView, 0, len(record.Items))
	for _, item := range record.Items {
		view := OrderItemView{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Amount:    item.ItemAmount.String(),
		}
		if item.Product != nil {
			view.ProductName = item.Product.Name
		}
		items = append(items, view)
	}
	return OrderView{
		ID:        record.ID,
		OrderDate: record.OrderDate,
		Currency:  record.CurrencyCode,
		Amount:    record.OrderAmount.String(),
		Items:     items,
		Source:    "live",
	}
}

func mirrorView(o *order.Order) OrderView {
	items := make([]OrderItemView, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemView{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Amount:    item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).StringFixed(2),
		})
	}
	return OrderView{
		ID:        o.ERPOrderID,
		OrderDate: o.CreatedAt.Format("2006-01-02"),
		Currency:  o.CurrencyCode,
		Amount:    o.TotalPrice.StringFixed(2),
		Items:     items,
		Source:    "mirror",
	}
}
