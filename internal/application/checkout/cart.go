package checkout

import (
	"sync"

	"github.com/google/uuid"
)

// CartItem is one line of a cart
type CartItem struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// Cart holds the items an account intends to order
type Cart struct {
	Items []CartItem `json:"items"`
}

// Empty reports whether the cart has no items
func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

// QuantityOf returns the carted quantity of one product
func (c *Cart) QuantityOf(productID uuid.UUID) int {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item.Quantity
		}
	}
	return 0
}

// CartStore keeps carts in process memory, one per account. Carts are
// working state, not records; losing them on restart is acceptable.
type CartStore struct {
	mu    sync.Mutex
	carts map[uuid.UUID]*Cart
}

// NewCartStore creates a new CartStore
func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[uuid.UUID]*Cart)}
}

// Get returns a snapshot of the account's cart
func (s *CartStore) Get(accountID uuid.UUID) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart, ok := s.carts[accountID]
	if !ok {
		return Cart{}
	}
	snapshot := Cart{Items: make([]CartItem, len(cart.Items))}
	copy(snapshot.Items, cart.Items)
	return snapshot
}

// Add merges quantity into the account's cart line for the product
func (s *CartStore) Add(accountID, productID uuid.UUID, quantity int) Cart {
	s.mu.Lock()
	cart, ok := s.carts[accountID]
	if !ok {
		cart = &Cart{}
		s.carts[accountID] = cart
	}
	merged := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, CartItem{ProductID: productID, Quantity: quantity})
	}
	s.mu.Unlock()
	return s.Get(accountID)
}

// Remove drops the product's line from the account's cart
func (s *CartStore) Remove(accountID, productID uuid.UUID) Cart {
	s.mu.Lock()
	if cart, ok := s.carts[accountID]; ok {
		items := cart.Items[:0]
		for _, item := range cart.Items {
			if item.ProductID != productID {
				items = append(items, item)
			}
		}
		cart.Items = items
	}
	s.mu.Unlock()
	return s.Get(accountID)
}

// Clear empties the account's cart
func (s *CartStore) Clear(accountID uuid.UUID) {
	s.mu.Lock()
	delete(s.carts, accountID)
	s.mu.Unlock()
}
