package commerce

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	MinLineQuantity = 1
	MaxLineQuantity = 99

	// CartTTL is how long an untouched cart survives before the janitor purges it.
	CartTTL = 30 * 24 * time.Hour
)

type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerKey  string     `gorm:"column:owner_key;not null;uniqueIndex" json:"-"`
	UserID    *uuid.UUID `gorm:"type:uuid;column:user_id;index" json:"user_id,omitempty"`
	SessionID string     `gorm:"column:session_id;size:128;index" json:"session_id,omitempty"`
	Items     []CartItem `gorm:"foreignKey:CartID" json:"items"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null;index" json:"expires_at"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time  `gorm:"not null" json:"updated_at"`
}

func (Cart) TableName() string { return "carts" }

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CartItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CartID    uuid.UUID `gorm:"type:uuid;column:cart_id;not null;uniqueIndex:idx_cart_items_cart_product" json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;column:product_id;not null;uniqueIndex:idx_cart_items_cart_product;index" json:"product_id"`
	Quantity  int       `gorm:"column:quantity;not null" json:"quantity"`
	Position  int       `gorm:"column:position;not null" json:"-"`
	AddedAt   time.Time `gorm:"column:added_at;not null" json:"added_at"`
}

func (CartItem) TableName() string { return "cart_items" }

func (i *CartItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// NewCart returns an empty, unpersisted cart for the owner.
func NewCart(owner Owner, now time.Time) *Cart {
	c := &Cart{OwnerKey: owner.Key(), SessionID: owner.SessionID}
	if owner.IsUser() {
		uid := owner.UserID
		c.UserID = &uid
		c.SessionID = ""
	}
	c.Touch(now)
	return c
}

// Touch slides the expiry window forward.
func (c *Cart) Touch(now time.Time) {
	c.ExpiresAt = now.UTC().Add(CartTTL)
}

func (c *Cart) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

func (c *Cart) IsEmpty() bool { return c == nil || len(c.Items) == 0 }

func (c *Cart) indexOf(productID uuid.UUID) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Quantity returns the quantity held for productID, 0 when absent.
func (c *Cart) Quantity(productID uuid.UUID) int {
	if c == nil {
		return 0
	}
	if i := c.indexOf(productID); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

// AddItem increments an existing line or appends a new one.
// The resulting line quantity must stay within 1..99; on violation nothing changes.
func (c *Cart) AddItem(productID uuid.UUID, quantity int, now time.Time) error {
	const op = "Cart.AddItem"
	if productID == uuid.Nil {
		return ValidationError(op, "product_id is required")
	}
	if quantity < MinLineQuantity || quantity > MaxLineQuantity {
		return ValidationError(op, fmt.Sprintf("quantity must be between %d and %d", MinLineQuantity, MaxLineQuantity))
	}
	if i := c.indexOf(productID); i >= 0 {
		next := c.Items[i].Quantity + quantity
		if next > MaxLineQuantity {
			return ValidationError(op, fmt.Sprintf("quantity cannot exceed %d per product", MaxLineQuantity))
		}
		c.Items[i].Quantity = next
		c.Touch(now)
		return nil
	}
	c.Items = append(c.Items, CartItem{
		CartID:    c.ID,
		ProductID: productID,
		Quantity:  quantity,
		Position:  c.nextPosition(),
		AddedAt:   now.UTC(),
	})
	c.Touch(now)
	return nil
}

// UpdateQuantity sets a line quantity. A quantity <= 0 removes the line.
// Updating an absent product to a positive quantity is a no-op.
func (c *Cart) UpdateQuantity(productID uuid.UUID, quantity int, now time.Time) error {
	const op = "Cart.UpdateQuantity"
	if quantity > MaxLineQuantity {
		return ValidationError(op, fmt.Sprintf("quantity cannot exceed %d per product", MaxLineQuantity))
	}
	if quantity <= 0 {
		c.RemoveItem(productID, now)
		return nil
	}
	i := c.indexOf(productID)
	if i < 0 {
		return nil
	}
	c.Items[i].Quantity = quantity
	c.Touch(now)
	return nil
}

// RemoveItem drops the line for productID, reporting whether anything was removed.
func (c *Cart) RemoveItem(productID uuid.UUID, now time.Time) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.Touch(now)
	return true
}

func (c *Cart) Clear(now time.Time) {
	c.Items = nil
	c.Touch(now)
}

func (c *Cart) TotalItemCount() int {
	if c == nil {
		return 0
	}
	n := 0
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) ProductIDs() []uuid.UUID {
	if c == nil {
		return nil
	}
	out := make([]uuid.UUID, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, it.ProductID)
	}
	return out
}

// Subtotal sums price × quantity using the supplied current prices.
// Lines without a known price contribute nothing.
func (c *Cart) Subtotal(prices map[uuid.UUID]decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	if c == nil {
		return total
	}
	for _, it := range c.Items {
		price, ok := prices[it.ProductID]
		if !ok {
			continue
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func (c *Cart) nextPosition() int {
	max := -1
	for _, it := range c.Items {
		if it.Position > max {
			max = it.Position
		}
	}
	return max + 1
}
