package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// OrderStats aggregates the admin dashboard figures.
type OrderStats struct {
	TotalOrders int64           `json:"total_orders"`
	Pending     int64           `json:"pending_orders"`
	Cancelled   int64           `json:"cancelled_orders"`
	Revenue     decimal.Decimal `json:"total_revenue"`
}

type OrderRepo interface {
	Create(dbc dbctx.Context, order *types.Order) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Order, error)
	GetByIDForUser(dbc dbctx.Context, id uuid.UUID, userID uuid.UUID) (*types.Order, error)
	GetByOrderNumber(dbc dbctx.Context, orderNumber string) (*types.Order, error)
	ListForUser(dbc dbctx.Context, userID uuid.UUID, offset, limit int) ([]*types.Order, error)
	CountForUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	ListRecent(dbc dbctx.Context, status types.OrderStatus, limit int) ([]*types.Order, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error)
	Stats(dbc dbctx.Context) (OrderStats, error)
}

type orderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrderRepo(db *gorm.DB, baseLog *logger.Logger) OrderRepo {
	return &orderRepo{
		db:  db,
		log: baseLog.With("repo", "OrderRepo"),
	}
}

// Create inserts the order and its line items in one statement batch.
func (r *orderRepo) Create(dbc dbctx.Context, order *types.Order) error {
	if order == nil {
		return nil
	}
	conn := dbc.Conn(r.db)
	if err := conn.Omit(clause.Associations).Create(order).Error; err != nil {
		return err
	}
	if len(order.Items) == 0 {
		return nil
	}
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		order.Items[i].Position = i
	}
	return conn.Create(&order.Items).Error
}

func (r *orderRepo) withItems(conn *gorm.DB) *gorm.DB {
	return conn.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

func (r *orderRepo) first(conn *gorm.DB) (*types.Order, error) {
	var o types.Order
	if err := r.withItems(conn).Limit(1).Find(&o).Error; err != nil {
		return nil, err
	}
	if o.ID == uuid.Nil {
		return nil, nil
	}
	return &o, nil
}

func (r *orderRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Order, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.Conn(r.db).Where("id = ?", id))
}

// GetByIDForUser returns (nil, nil) when the order belongs to someone else.
func (r *orderRepo) GetByIDForUser(dbc dbctx.Context, id uuid.UUID, userID uuid.UUID) (*types.Order, error) {
	if id == uuid.Nil || userID == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.Conn(r.db).Where("id = ? AND user_id = ?", id, userID))
}

func (r *orderRepo) GetByOrderNumber(dbc dbctx.Context, orderNumber string) (*types.Order, error) {
	if orderNumber == "" {
		return nil, nil
	}
	return r.first(dbc.Conn(r.db).Where("order_number = ?", orderNumber))
}

func (r *orderRepo) ListForUser(dbc dbctx.Context, userID uuid.UUID, offset, limit int) ([]*types.Order, error) {
	var out []*types.Order
	if userID == uuid.Nil {
		return out, nil
	}
	q := r.withItems(dbc.Conn(r.db)).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC")
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) CountForUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	if userID == uuid.Nil {
		return 0, nil
	}
	err := dbc.Conn(r.db).Model(&types.Order{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

// ListRecent returns the newest orders, optionally filtered by status.
func (r *orderRepo) ListRecent(dbc dbctx.Context, status types.OrderStatus, limit int) ([]*types.Order, error) {
	if limit <= 0 {
		limit = 10
	}
	q := r.withItems(dbc.Conn(r.db)).Order("created_at DESC").Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []*types.Order
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) (bool, error) {
	if id == uuid.Nil || len(updates) == 0 {
		return false, nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	res := dbc.Conn(r.db).Model(&types.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Stats counts orders by bucket; revenue excludes cancelled orders.
func (r *orderRepo) Stats(dbc dbctx.Context) (OrderStats, error) {
	var row struct {
		TotalOrders int64
		Pending     int64
		Cancelled   int64
		Revenue     decimal.Decimal
	}
	err := dbc.Conn(r.db).Model(&types.Order{}).
		Select(
			"COUNT(*) AS total_orders, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS pending, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0) AS cancelled, "+
				"COALESCE(SUM(CASE WHEN status <> ? THEN total ELSE 0 END), 0) AS revenue",
			types.OrderPending, types.OrderCancelled, types.OrderCancelled,
		).
		Scan(&row).Error
	if err != nil {
		return OrderStats{}, err
	}
	return OrderStats{
		TotalOrders: row.TotalOrders,
		Pending:     row.Pending,
		Cancelled:   row.Cancelled,
		Revenue:     row.Revenue.Round(2),
	}, nil
}
