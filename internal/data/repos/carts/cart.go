package carts

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

type CartRepo interface {
	GetByOwnerKey(dbc dbctx.Context, ownerKey string) (*types.Cart, error)
	Save(dbc dbctx.Context, cart *types.Cart) error
	DeleteByOwnerKey(dbc dbctx.Context, ownerKey string) (bool, error)
	DeleteExpired(dbc dbctx.Context, now time.Time, limit int) (int64, error)
}

type cartRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCartRepo(db *gorm.DB, baseLog *logger.Logger) CartRepo {
	return &cartRepo{
		db:  db,
		log: baseLog.With("repo", "CartRepo"),
	}
}

// GetByOwnerKey returns the owner's cart with items in insertion order, or (nil, nil).
func (r *cartRepo) GetByOwnerKey(dbc dbctx.Context, ownerKey string) (*types.Cart, error) {
	if ownerKey == "" {
		return nil, nil
	}
	var c types.Cart
	err := dbc.Conn(r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("owner_key = ?", ownerKey).
		Limit(1).
		Find(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == uuid.Nil {
		return nil, nil
	}
	return &c, nil
}

// Save writes the cart row and replaces its item set.
func (r *cartRepo) Save(dbc dbctx.Context, cart *types.Cart) error {
	if cart == nil {
		return nil
	}
	if dbc.Tx != nil {
		return r.save(dbc.Conn(r.db), cart)
	}
	return dbc.Conn(r.db).Transaction(func(txx *gorm.DB) error {
		return r.save(txx, cart)
	})
}

func (r *cartRepo) save(txx *gorm.DB, cart *types.Cart) error {
	now := time.Now().UTC()
	if cart.ID == uuid.Nil {
		if err := txx.Omit(clause.Associations).Create(cart).Error; err != nil {
			return err
		}
	} else {
		if err := txx.Model(&types.Cart{}).
			Where("id = ?", cart.ID).
			Updates(map[string]interface{}{
				"expires_at": cart.ExpiresAt,
				"updated_at": now,
			}).Error; err != nil {
			return err
		}
	}
	if err := txx.Where("cart_id = ?", cart.ID).Delete(&types.CartItem{}).Error; err != nil {
		return err
	}
	if len(cart.Items) == 0 {
		return nil
	}
	for i := range cart.Items {
		cart.Items[i].ID = uuid.Nil
		cart.Items[i].CartID = cart.ID
		cart.Items[i].Position = i
	}
	return txx.Create(&cart.Items).Error
}

func (r *cartRepo) DeleteByOwnerKey(dbc dbctx.Context, ownerKey string) (bool, error) {
	if ownerKey == "" {
		return false, nil
	}
	var ids []uuid.UUID
	conn := dbc.Conn(r.db)
	if err := conn.Model(&types.Cart{}).Where("owner_key = ?", ownerKey).Pluck("id", &ids).Error; err != nil {
		return false, err
	}
	if len(ids) == 0 {
		return false, nil
	}
	return true, r.deleteIDs(conn, ids)
}

// DeleteExpired purges at most limit carts whose expiry has passed.
func (r *cartRepo) DeleteExpired(dbc dbctx.Context, now time.Time, limit int) (int64, error) {
	if limit <= 0 {
		limit = 500
	}
	var ids []uuid.UUID
	conn := dbc.Conn(r.db)
	if err := conn.Model(&types.Cart{}).
		Where("expires_at <= ?", now.UTC()).
		Order("expires_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	if err := r.deleteIDs(conn, ids); err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

func (r *cartRepo) deleteIDs(conn *gorm.DB, ids []uuid.UUID) error {
	if err := conn.Where("cart_id IN ?", ids).Delete(&types.CartItem{}).Error; err != nil {
		return err
	}
	return conn.Where("id IN ?", ids).Delete(&types.Cart{}).Error
}
