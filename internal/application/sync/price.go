package sync

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/shared"
)

// cleanPrice normalizes a price token from the ERP feed. The feed is known
// to append unit suffixes ("2500 EUR") and to spell missing values as the
// literal "null"; everything after the first space is dropped and the rest
// must parse as a non-negative decimal.
func cleanPrice(raw string) (decimal.Decimal, error) {
	token := strings.TrimSpace(raw)
	if i := strings.IndexByte(token, ' '); i >= 0 {
		token = token[:i]
	}
	if token == "" || strings.EqualFold(token, "null") {
		return decimal.Zero, shared.NewDomainError("INVALID_PRICE", "Price is missing")
	}

	price, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Zero, shared.NewDomainError("INVALID_PRICE", "Price is not a number: "+token)
	}
	if price.IsNegative() {
		return decimal.Zero, shared.NewDomainError("INVALID_PRICE", "Price is negative")
	}
	return price, nil
}
