// Package commerce holds the storefront entities (products, carts, orders)
// together with the in-memory rules that keep them consistent: cart quantity
// bounds, the order status machine and input validation.
//
// Persistence lives in internal/data; pricing arithmetic in internal/domain/pricing.
package commerce
