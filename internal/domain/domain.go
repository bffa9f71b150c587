package domain

import (
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
)

type (
	Product         = commerce.Product
	ProductCategory = commerce.ProductCategory

	Cart     = commerce.Cart
	CartItem = commerce.CartItem
	Owner    = commerce.Owner

	Order         = commerce.Order
	OrderLineItem = commerce.OrderLineItem
	OrderStatus   = commerce.OrderStatus
	PaymentStatus = commerce.PaymentStatus
	PaymentMethod = commerce.PaymentMethod
	Address       = commerce.Address
	SavedAddress  = commerce.SavedAddress

	Pagination = commerce.Pagination
)

const (
	OrderPending    = commerce.OrderPending
	OrderConfirmed  = commerce.OrderConfirmed
	OrderProcessing = commerce.OrderProcessing
	OrderShipped    = commerce.OrderShipped
	OrderDelivered  = commerce.OrderDelivered
	OrderCancelled  = commerce.OrderCancelled

	PaymentPending  = commerce.PaymentPending
	PaymentPaid     = commerce.PaymentPaid
	PaymentFailed   = commerce.PaymentFailed
	PaymentRefunded = commerce.PaymentRefunded
)

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&commerce.Product{},
		&commerce.Cart{},
		&commerce.CartItem{},
		&commerce.Order{},
		&commerce.OrderLineItem{},
		&commerce.SavedAddress{},
	}
}
