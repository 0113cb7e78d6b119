package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/erp"
)

const orderCurrency = "EUR"

// OrderGateway submits a deep-insert order to the ERP
type OrderGateway interface {
	CreateOrder(ctx context.Context, payload erp.OrderPayload) (*erp.OrderRecord, error)
}

// CustomerResolver maps an account to a verified ERP customer GUID
type CustomerResolver interface {
	Resolve(ctx context.Context, accountID uuid.UUID) (uuid.UUID, error)
}

// ReceiptItem is one confirmed line of a submitted order
type ReceiptItem struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
}

// Receipt is the result of a confirmed order submission
type Receipt struct {
	ERPOrderID uuid.UUID       `json:"orderId"`
	Total      decimal.Decimal `json:"total"`
	Currency   string          `json:"currency"`
	Items      []ReceiptItem   `json:"items"`
}

// Service runs the checkout pipeline. An order reaches the ERP only after
// the account resolves to a verified customer and every line passes a live
// stock check; the local order mirror is written only after the ERP has
// confirmed the create.
type Service struct {
	carts    *CartStore
	products catalog.ProductRepository
	resolver CustomerResolver
	stock    *StockChecker
	gateway  OrderGateway
	orders   order.Repository
	logger   *zap.Logger
}

// NewService creates a new checkout Service
func NewService(
	carts *CartStore,
	products catalog.ProductRepository,
	resolver CustomerResolver,
	stock *StockChecker,
	gateway OrderGateway,
	orders order.Repository,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		carts:    carts,
		products: products,
		resolver: resolver,
		stock:    stock,
		gateway:  gateway,
		orders:   orders,
		logger:   logger,
	}
}

// AddItem puts quantity of a product into the account's cart. The stock
// check here is advisory, against the live count at this moment; the
// binding check happens again at submission.
func (s *Service) AddItem(ctx context.Context, accountID, productID uuid.UUID, quantity int) (Cart, error) {
	if quantity <= 0 {
		return Cart{}, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return Cart{}, err
	}

	cart := s.carts.Get(accountID)
	carted := cart.QuantityOf(productID)
	if carted+quantity > s.stock.StockOf(ctx, productID) {
		return Cart{}, shared.NewDomainError("INSUFFICIENT_STOCK",
			"Not enough stock of "+product.Name)
	}

	return s.carts.Add(accountID, productID, quantity), nil
}

// RemoveItem drops a product from the account's cart
func (s *Service) RemoveItem(_ context.Context, accountID, productID uuid.UUID) Cart {
	return s.carts.Remove(accountID, productID)
}

// Cart returns the account's current cart
func (s *Service) Cart(_ context.Context, accountID uuid.UUID) Cart {
	return s.carts.Get(accountID)
}

// SubmitOrder turns the account's cart into an ERP order. Requesting
// exactly the available stock is allowed; requesting more is rejected
// before anything is sent. The cart survives every failure.
func (s *Service) SubmitOrder(ctx context.Context, accountID uuid.UUID) (*Receipt, error) {
	cart := s.carts.Get(accountID)
	if cart.Empty() {
		return nil, shared.ErrCartEmpty
	}

	customerID, err := s.resolver.Resolve(ctx, accountID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	payloadItems := make([]erp.OrderItemPayload, 0, len(cart.Items))
	mirrorItems := make([]order.Item, 0, len(cart.Items))
	receiptItems := make([]ReceiptItem, 0, len(cart.Items))

	for _, item := range cart.Items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}

		if available := s.stock.StockOf(ctx, item.ProductID); item.Quantity > available {
			return nil, shared.NewDomainError("INSUFFICIENT_STOCK",
				"Not enough stock of "+product.Name)
		}

		amount := product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(amount)

		payloadItems = append(payloadItems, erp.OrderItemPayload{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			ItemAmount: amount.StringFixed(2),
		})
		mirrorItems = append(mirrorItems, order.Item{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
		})
		receiptItems = append(receiptItems, ReceiptItem{
			ProductID: item.ProductID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			Amount:    amount,
		})
	}

	record, err := s.gateway.CreateOrder(ctx, erp.OrderPayload{
		CustomerID:   customerID,
		OrderDate:    time.Now().Format("2006-01-02"),
		CurrencyCode: orderCurrency,
		OrderAmount:  total.StringFixed(2),
		Items:        payloadItems,
	})
	if err != nil {
		return nil, err
	}

	s.carts.Clear(accountID)

	mirror := order.NewMirror(record.ID, accountID, total, orderCurrency, mirrorItems)
	if err := s.orders.Save(ctx, mirror); err != nil {
		// The ERP accepted the order; a mirror failure must not turn
		// the submission into an error.
		s.logger.Error("Order mirror write failed after ERP confirmation",
			zap.String("erp_order_id", record.ID.String()),
			zap.String("account_id", accountID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("Order submitted",
		zap.String("erp_order_id", record.ID.String()),
		zap.String("account_id", accountID.String()),
		zap.String("total", total.StringFixed(2)),
	)

	return &Receipt{
		ERPOrderID: record.ID,
		Total:      total,
		Currency:   orderCurrency,
		Items:      receiptItems,
	}, nil
}
