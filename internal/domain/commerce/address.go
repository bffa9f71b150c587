package commerce

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AddressType string

const (
	AddressBilling  AddressType = "billing"
	AddressShipping AddressType = "shipping"
)

// Address is stored as a JSON document on the order.
type Address struct {
	Type      AddressType `json:"type" validate:"omitempty,oneof=billing shipping"`
	FirstName string      `json:"first_name" validate:"required,max=50"`
	LastName  string      `json:"last_name" validate:"required,max=50"`
	Company   string      `json:"company,omitempty" validate:"max=100"`
	Address1  string      `json:"address1" validate:"required,max=200"`
	Address2  string      `json:"address2,omitempty" validate:"max=200"`
	City      string      `json:"city" validate:"required,max=100"`
	State     string      `json:"state" validate:"required,max=100"`
	ZipCode   string      `json:"zip_code" validate:"required,max=20"`
	Country   string      `json:"country" validate:"required,max=100"`
	Phone     string      `json:"phone,omitempty" validate:"omitempty,phone"`
}

// As returns a copy tagged with the given type.
func (a Address) As(t AddressType) Address {
	a.Type = t
	return a
}

// MaxSavedAddresses caps one user's address book.
const MaxSavedAddresses = 20

// SavedAddress is an entry in a signed-in user's address book.
// At most one entry per (user, type) has IsDefault set.
type SavedAddress struct {
	ID        uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID                   `gorm:"type:uuid;column:user_id;not null;index:idx_saved_address_owner,priority:1" json:"-"`
	Type      AddressType                 `gorm:"column:type;size:16;not null;index:idx_saved_address_owner,priority:2" json:"type"`
	Details   datatypes.JSONType[Address] `gorm:"column:details;not null" json:"address"`
	IsDefault bool                        `gorm:"column:is_default;not null;default:false" json:"is_default"`
	CreatedAt time.Time                   `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time                   `gorm:"not null" json:"updated_at"`
}

func (SavedAddress) TableName() string { return "saved_addresses" }

func (a *SavedAddress) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// Address returns the stored address tagged with the entry's type.
func (a *SavedAddress) Address() Address {
	return a.Details.Data().As(a.Type)
}
