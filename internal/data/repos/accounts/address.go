package accounts

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// AddressRepo stores address book entries. Every read and write is scoped by owner.
type AddressRepo interface {
	Create(dbc dbctx.Context, addr *types.SavedAddress) error
	GetForUser(dbc dbctx.Context, id uuid.UUID, userID uuid.UUID) (*types.SavedAddress, error)
	ListForUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.SavedAddress, error)
	CountForUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	DefaultForUser(dbc dbctx.Context, userID uuid.UUID, t commerce.AddressType) (*types.SavedAddress, error)
	Update(dbc dbctx.Context, addr *types.SavedAddress) (bool, error)
	DeleteForUser(dbc dbctx.Context, id uuid.UUID, userID uuid.UUID) (bool, error)
}

var errNoRow = errors.New("address entry not found")

type addressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAddressRepo(db *gorm.DB, baseLog *logger.Logger) AddressRepo {
	return &addressRepo{
		db:  db,
		log: baseLog.With("repo", "AddressRepo"),
	}
}

// Create inserts the entry; a default entry demotes the owner's other defaults of the same type.
func (r *addressRepo) Create(dbc dbctx.Context, addr *types.SavedAddress) error {
	if addr == nil {
		return nil
	}
	return dbc.Conn(r.db).Transaction(func(tx *gorm.DB) error {
		if addr.IsDefault {
			if err := clearDefault(tx, addr.UserID, addr.Type, uuid.Nil); err != nil {
				return err
			}
		}
		return tx.Create(addr).Error
	})
}

func (r *addressRepo) first(conn *gorm.DB) (*types.SavedAddress, error) {
	var a types.SavedAddress
	if err := conn.Limit(1).Find(&a).Error; err != nil {
		return nil, err
	}
	if a.ID == uuid.Nil {
		return nil, nil
	}
	return &a, nil
}

// GetForUser returns (nil, nil) when the entry belongs to someone else.
func (r *addressRepo) GetForUser(dbc dbctx.Context, id uuid.UUID, userID uuid.UUID) (*types.SavedAddress, error) {
	if id == uuid.Nil || userID == uuid.Nil {
		return nil, nil
	}
	return r.first(dbc.Conn(r.db).Where("id = ? AND user_id = ?", id, userID))
}

// ListForUser returns defaults first, then newest.
func (r *addressRepo) ListForUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.SavedAddress, error) {
	out := []*types.SavedAddress{}
	if userID == uuid.Nil {
		return out, nil
	}
	err := dbc.Conn(r.db).
		Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *addressRepo) CountForUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var n int64
	if userID == uuid.Nil {
		return 0, nil
	}
	err := dbc.Conn(r.db).Model(&types.SavedAddress{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}

func (r *addressRepo) DefaultForUser(dbc dbctx.Context, userID uuid.UUID, t commerce.AddressType) (*types.SavedAddress, error) {
	if userID == uuid.Nil || t == "" {
		return nil, nil
	}
	return r.first(dbc.Conn(r.db).Where("user_id = ? AND type = ? AND is_default = ?", userID, t, true))
}

// Update replaces type, details and default flag of an entry the owner holds.
// It reports false when no such entry exists.
func (r *addressRepo) Update(dbc dbctx.Context, addr *types.SavedAddress) (bool, error) {
	if addr == nil || addr.ID == uuid.Nil || addr.UserID == uuid.Nil {
		return false, nil
	}
	var updated bool
	err := dbc.Conn(r.db).Transaction(func(tx *gorm.DB) error {
		if addr.IsDefault {
			if err := clearDefault(tx, addr.UserID, addr.Type, addr.ID); err != nil {
				return err
			}
		}
		addr.UpdatedAt = time.Now().UTC()
		res := tx.Model(&types.SavedAddress{}).
			Where("id = ? AND user_id = ?", addr.ID, addr.UserID).
			Updates(map[string]interface{}{
				"type":       addr.Type,
				"details":    addr.Details,
				"is_default": addr.IsDefault,
				"updated_at": addr.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		updated = res.RowsAffected > 0
		if !updated {
			// Roll back the demotion when the entry is not the caller's.
			return errNoRow
		}
		return nil
	})
	if errors.Is(err, errNoRow) {
		return false, nil
	}
	return updated, err
}

func (r *addressRepo) DeleteForUser(dbc dbctx.Context, id uuid.UUID, userID uuid.UUID) (bool, error) {
	if id == uuid.Nil || userID == uuid.Nil {
		return false, nil
	}
	res := dbc.Conn(r.db).Where("id = ? AND user_id = ?", id, userID).Delete(&types.SavedAddress{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func clearDefault(tx *gorm.DB, userID uuid.UUID, t commerce.AddressType, except uuid.UUID) error {
	q := tx.Model(&types.SavedAddress{}).
		Where("user_id = ? AND type = ? AND is_default = ?", userID, t, true)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	return q.Updates(map[string]interface{}{
		"is_default": false,
		"updated_at": time.Now().UTC(),
	}).Error
}
