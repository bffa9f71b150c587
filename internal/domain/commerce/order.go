package commerce

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit-card"
	PaymentPayPal       PaymentMethod = "paypal"
	PaymentBankTransfer PaymentMethod = "bank-transfer"
)

const MaxOrderNotes = 500

type Order struct {
	ID              uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber     string                      `gorm:"column:order_number;size:40;not null;uniqueIndex" json:"order_number"`
	UserID          uuid.UUID                   `gorm:"type:uuid;column:user_id;not null;index" json:"user_id"`
	Items           []OrderLineItem             `gorm:"foreignKey:OrderID" json:"items"`
	Subtotal        decimal.Decimal             `gorm:"column:subtotal;type:numeric(12,2);not null" json:"subtotal"`
	Shipping        decimal.Decimal             `gorm:"column:shipping;type:numeric(12,2);not null" json:"shipping"`
	VAT             decimal.Decimal             `gorm:"column:vat;type:numeric(12,2);not null" json:"vat"`
	Total           decimal.Decimal             `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	Status          OrderStatus                 `gorm:"column:status;size:20;not null;index" json:"status"`
	PaymentStatus   PaymentStatus               `gorm:"column:payment_status;size:20;not null" json:"payment_status"`
	PaymentMethod   PaymentMethod               `gorm:"column:payment_method;size:20;not null" json:"payment_method"`
	ShippingAddress datatypes.JSONType[Address] `gorm:"column:shipping_address" json:"shipping_address"`
	BillingAddress  datatypes.JSONType[Address] `gorm:"column:billing_address" json:"billing_address"`
	Notes           string                      `gorm:"column:notes;size:500" json:"notes,omitempty"`
	CreatedAt       time.Time                   `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time                   `gorm:"not null" json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderLineItem is an immutable snapshot of a product at order time.
type OrderLineItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID      uuid.UUID       `gorm:"type:uuid;column:order_id;not null;index" json:"-"`
	ProductID    uuid.UUID       `gorm:"type:uuid;column:product_id;not null;index" json:"product_id"`
	ProductName  string          `gorm:"column:product_name;size:200;not null" json:"product_name"`
	ProductImage string          `gorm:"column:product_image" json:"product_image,omitempty"`
	Quantity     int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	LineTotal    decimal.Decimal `gorm:"column:line_total;type:numeric(12,2);not null" json:"line_total"`
	Position     int             `gorm:"column:position;not null" json:"-"`
}

func (OrderLineItem) TableName() string { return "order_line_items" }

func (li *OrderLineItem) BeforeCreate(tx *gorm.DB) error {
	if li.ID == uuid.Nil {
		li.ID = uuid.New()
	}
	return nil
}

// SnapshotLine copies the product fields an order keeps forever.
func SnapshotLine(p *Product, quantity, position int) OrderLineItem {
	return OrderLineItem{
		ProductID:    p.ID,
		ProductName:  p.Name,
		ProductImage: p.PrimaryImage(),
		Quantity:     quantity,
		UnitPrice:    p.Price,
		LineTotal:    p.Price.Mul(decimal.NewFromInt(int64(quantity))),
		Position:     position,
	}
}

// LinesSubtotal sums line totals.
func LinesSubtotal(lines []OrderLineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, li := range lines {
		sum = sum.Add(li.LineTotal)
	}
	return sum
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped, OrderCancelled},
	OrderShipped:    {OrderDelivered, OrderCancelled},
}

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped, OrderDelivered, OrderCancelled:
		return true
	default:
		return false
	}
}

func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PredecessorsOf lists the statuses from which to is reachable in one step.
func PredecessorsOf(to OrderStatus) []OrderStatus {
	var out []OrderStatus
	for _, from := range []OrderStatus{OrderPending, OrderConfirmed, OrderProcessing, OrderShipped} {
		if CanTransition(from, to) {
			out = append(out, from)
		}
	}
	return out
}

// TransitionTo moves the order along the status machine.
func (o *Order) TransitionTo(to OrderStatus) error {
	const op = "Order.TransitionTo"
	if !ValidOrderStatus(to) {
		return ValidationError(op, fmt.Sprintf("unknown order status %q", to))
	}
	if !CanTransition(o.Status, to) {
		return NewError(CodeConflict, op, fmt.Sprintf("cannot move order from %s to %s", o.Status, to), nil)
	}
	o.Status = to
	return nil
}

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCreditCard, PaymentPayPal, PaymentBankTransfer:
		return true
	default:
		return false
	}
}
