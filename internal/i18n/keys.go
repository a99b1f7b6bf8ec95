// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeyInternal    = "error.internal"
	KeyUnavailable = "error.unavailable"
	KeyRateLimited = "error.rate_limited"

	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// User
	KeyUserDetails        = "user.details"
	KeyUserProfileUpdated = "user.profile_updated"
	KeyUserNotFound       = "user.not_found"

	// Catalog
	KeyCategoriesListed    = "category.listed"
	KeyCategoryNotFound    = "category.not_found"
	KeySubcategoriesListed = "subcategory.listed"
	KeyProductsNotFound    = "products.not_found"
	KeyProductNotFound     = "product.not_found"
	KeyRelatedNotFound     = "related.not_found"

	// Validation
	KeyValidationInvalid = "validation.invalid"
	KeyValidationID      = "validation.invalid_id"
	KeyValidationQuery   = "validation.invalid_query"
)
