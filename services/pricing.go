package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultMarkupFactor is the multiplier applied to supplier prices when no
// tenant-specific factor is configured.
const DefaultMarkupFactor = 1.3

// ApplyMarkup derives the tenant-facing retail price from a supplier price.
// Decimal math keeps 10.00 * 1.3 at exactly 13.00; results round half-up to
// two places.
func ApplyMarkup(supplierPrice, factor float64) float64 {
	price := decimal.NewFromFloat(supplierPrice).
		Mul(decimal.NewFromFloat(factor)).
		Round(2)
	f, _ := price.Float64()
	return f
}

// DropshipSKU builds the marketplace SKU for an imported provider product,
// e.g. ("alibaba", "p1") -> "ALI-p1".
func DropshipSKU(provider, providerProductID string) string {
	prefix := strings.ToUpper(provider)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return fmt.Sprintf("%s-%s", prefix, providerProductID)
}
