// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthTokenExpired = "auth.token_expired"

	// House items
	KeyHouseItemCreated      = "house_item.created"
	KeyHouseItemUpdated      = "house_item.updated"
	KeyHouseItemDeleted      = "house_item.deleted"
	KeyHouseItemNotFound     = "house_item.not_found"
	KeyHouseItemStockUpdated = "house_item.stock_updated"

	// Vendor selections
	KeyVendorSelectionNotFound   = "vendor_selection.not_found"
	KeyVendorSelectionOverridden = "vendor_selection.overridden"
	KeyVendorSelectionReset      = "vendor_selection.reset"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
	KeyDomainRuleViolated = "domain.rule_violated"

	// Resources
	KeyResourceHouseItem       = "resource.house_item"
	KeyResourceVendorSelection = "resource.vendor_selection"
	KeyResourceNotFound        = "resource.not_found"

	// System
	KeyInternalError     = "system.internal_error"
	KeyRateLimitExceeded = "system.rate_limit_exceeded"
)
