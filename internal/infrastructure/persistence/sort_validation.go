package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// fields. Returns the defaultField if the input is invalid, empty, or not in
// the whitelist. Sort fields come from query strings and must never be
// interpolated into ORDER BY unchecked.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"order_number":     true,
	"customer_ref":     true,
	"status":           true,
	"confirmed_at":     true,
	"ready_to_ship_at": true,
	"shipped_at":       true,
	"delivered_at":     true,
}

// ProductSortFields contains allowed sort fields for products
var ProductSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"stock":      true,
}

// MovementSortFields contains allowed sort fields for inventory movements
var MovementSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"kind":       true,
	"delta":      true,
}

// SessionSortFields contains allowed sort fields for picking sessions
var SessionSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"code":             true,
	"status":           true,
	"last_activity_at": true,
	"completed_at":     true,
}
