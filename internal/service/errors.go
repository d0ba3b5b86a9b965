package service

import "errors"

// 服务层业务错误
var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductInactive      = errors.New("product inactive")
	ErrProductOutOfStock    = errors.New("product out of stock")
	ErrProductSlugExists    = errors.New("product slug exists")
	ErrProductInputInvalid  = errors.New("product input invalid")
	ErrSalePriceInvalid     = errors.New("sale price must be lower than price")
	ErrCategoryNotFound     = errors.New("category not found")
	ErrCategorySlugExists   = errors.New("category slug exists")
	ErrCategoryInputInvalid = errors.New("category input invalid")
	ErrCategoryNotEmpty     = errors.New("category still has products")
	ErrQuantityInvalid      = errors.New("quantity invalid")
	ErrCartEmpty            = errors.New("cart is empty")
	ErrCompareLimitReached  = errors.New("compare list is full")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderStatusInvalid   = errors.New("order status transition invalid")
	ErrOrderItemsEmpty      = errors.New("order has no items")
	ErrCustomerInfoInvalid  = errors.New("customer info invalid")
	ErrReviewNotFound       = errors.New("review not found")
	ErrReviewRatingInvalid  = errors.New("review rating out of range")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("user already exists")
	ErrUserDisabled         = errors.New("user disabled")
	ErrUserStatusInvalid    = errors.New("user status invalid")
	ErrCredentialsInvalid   = errors.New("credentials invalid")
	ErrAdminNotFound        = errors.New("admin not found")
	ErrSettingNotFound      = errors.New("setting not found")
	ErrSubscriptionInvalid  = errors.New("push subscription invalid")
	ErrNotificationDisabled = errors.New("notification channel disabled")
	ErrOfflineUnavailable   = errors.New("service offline and no cached data")
)
