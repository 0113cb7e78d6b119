package erp

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// listEnvelope is the OData collection wrapper: { "value": [ ... ] }
type listEnvelope[T any] struct {
	Value []T `json:"value"`
}

// errorEnvelope is the OData error wrapper on 4xx/5xx responses
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details []struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
}

// RawValue is a JSON scalar delivered by the ERP either as a number or as a
// string. The catalog feed is known to emit prices like "2500 EUR" or
// "3 null", so the raw token is kept verbatim for the cleaning step.
type RawValue string

// UnmarshalJSON accepts strings, numbers, and null
func (v *RawValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = RawValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = RawValue(n.String())
	return nil
}

// IsSet reports whether the field was present and non-null
func (v RawValue) IsSet() bool {
	return v != ""
}

// String returns the raw token
func (v RawValue) String() string {
	return string(v)
}

// ProductRecord is one entry of the ERP product snapshot. IDs stay strings
// here; the reconciler decides which records are complete enough to mirror.
type ProductRecord struct {
	ID          string   `json:"ID"`
	ProductID   string   `json:"productID"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       RawValue `json:"price"`
	Stock       *int     `json:"stock,omitempty"`
}

// CustomerRecord is an ERP customer as returned by lookups and creates
type CustomerRecord struct {
	ID          uuid.UUID `json:"ID"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Street      string    `json:"street"`
	HouseNumber string    `json:"houseNumber"`
	PostalCode  string    `json:"postalCode"`
	City        string    `json:"city"`
	CountryCode string    `json:"country_code"`
}

// CustomerPayload is the field set accepted by POST and PATCH /Customers
type CustomerPayload struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Street      string `json:"street"`
	HouseNumber string `json:"houseNumber"`
	PostalCode  string `json:"postalCode"`
	City        string `json:"city"`
	CountryCode string `json:"country_code"`
}

// OrderItemPayload is one line of a deep-insert order create
type OrderItemPayload struct {
	ProductID  uuid.UUID `json:"product_ID"`
	Quantity   int       `json:"quantity"`
	ItemAmount string    `json:"itemAmount"`
}

// OrderPayload is the deep-insert body of POST /Orders: the ERP creates the
// order and its items transactionally on its side.
type OrderPayload struct {
	CustomerID   uuid.UUID          `json:"customer_ID"`
	OrderDate    string             `json:"orderDate"` // YYYY-MM-DD
	CurrencyCode string             `json:"currency_code"`
	OrderAmount  string             `json:"orderAmount"`
	Items        []OrderItemPayload `json:"items"`
}

// OrderItemRecord is one line of an ERP order, optionally expanded with the
// product it refers to
type OrderItemRecord struct {
	ID         uuid.UUID      `json:"ID"`
	ProductID  uuid.UUID      `json:"product_ID"`
	Quantity   int            `json:"quantity"`
	ItemAmount RawValue       `json:"itemAmount"`
	Product    *ProductRecord `json:"product,omitempty"`
}

// OrderRecord is an ERP order as returned by GET /Orders
type OrderRecord struct {
	ID           uuid.UUID         `json:"ID"`
	CustomerID   uuid.UUID         `json:"customer_ID"`
	OrderDate    string            `json:"orderDate"`
	CurrencyCode string            `json:"currency_code"`
	OrderAmount  RawValue          `json:"orderAmount"`
	CreatedAt    string            `json:"createdAt"`
	Items        []OrderItemRecord `json:"items,omitempty"`
}

// odataKey renders an OData primary-key segment, e.g. Products(guid)
func odataKey(entity string, id uuid.UUID) string {
	return entity + "(" + id.String() + ")"
}

// odataQuote renders a quoted OData string literal with embedded quotes doubled
func odataQuote(s string) string {
	quoted := make([]byte, 0, len(s)+2)
	quoted = append(quoted, '\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			quoted = append(quoted, '\'', '\'')
			continue
		}
		quoted = append(quoted, s[i])
	}
	return string(append(quoted, '\''))
}
