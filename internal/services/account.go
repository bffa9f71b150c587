package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	types "github.com/yungbote/storefront-backend/internal/domain"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/platform/ctxutil"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/identity"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

// AddressInput is one address book entry as submitted by the owner.
type AddressInput struct {
	commerce.Address
	IsDefault bool `json:"is_default"`
}

// Profile is the signed-in user's account view. Name and email stay with the identity provider.
type Profile struct {
	UserID     uuid.UUID             `json:"user_id"`
	Role       string                `json:"role,omitempty"`
	Addresses  []*types.SavedAddress `json:"addresses"`
	OrderCount int64                 `json:"order_count"`
	Defaults   map[string]uuid.UUID  `json:"default_addresses"`
}

type AccountService interface {
	GetProfile(ctx context.Context) (*Profile, error)
	ListAddresses(ctx context.Context) ([]*types.SavedAddress, error)
	AddAddress(ctx context.Context, in AddressInput) (*types.SavedAddress, error)
	UpdateAddress(ctx context.Context, id uuid.UUID, in AddressInput) (*types.SavedAddress, error)
	DeleteAddress(ctx context.Context, id uuid.UUID) error
	AddressBook
}

// AddressBook resolves saved addresses for checkout.
type AddressBook interface {
	SavedAddress(ctx context.Context, userID, id uuid.UUID) (commerce.Address, error)
	DefaultAddress(ctx context.Context, userID uuid.UUID, t commerce.AddressType) (*commerce.Address, error)
}

type accountService struct {
	log       *logger.Logger
	addresses repos.AddressRepo
	orders    repos.OrderRepo
	identity  identity.Resolver
}

func NewAccountService(
	baseLog *logger.Logger,
	addresses repos.AddressRepo,
	orders repos.OrderRepo,
	resolver identity.Resolver,
) AccountService {
	if resolver == nil {
		resolver = identity.NewRequestResolver()
	}
	return &accountService{
		log:       baseLog.With("service", "AccountService"),
		addresses: addresses,
		orders:    orders,
		identity:  resolver,
	}
}

func (s *accountService) GetProfile(ctx context.Context) (*Profile, error) {
	const op = "AccountService.GetProfile"
	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}

	var (
		list  []*types.SavedAddress
		count int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = s.addresses.ListForUser(dbctx.New(gctx), userID)
		return err
	})
	g.Go(func() error {
		var err error
		count, err = s.orders.CountForUser(dbctx.New(gctx), userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if list == nil {
		list = []*types.SavedAddress{}
	}

	p := &Profile{
		UserID:     userID,
		Addresses:  list,
		OrderCount: count,
		Defaults:   map[string]uuid.UUID{},
	}
	if rd := ctxutil.GetRequestData(ctx); rd != nil {
		p.Role = rd.Role
	}
	for _, a := range list {
		if a.IsDefault {
			p.Defaults[string(a.Type)] = a.ID
		}
	}
	return p, nil
}

func (s *accountService) ListAddresses(ctx context.Context) ([]*types.SavedAddress, error) {
	const op = "AccountService.ListAddresses"
	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	list, err := s.addresses.ListForUser(dbctx.New(ctx), userID)
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	return list, nil
}

func (s *accountService) AddAddress(ctx context.Context, in AddressInput) (*types.SavedAddress, error) {
	const op = "AccountService.AddAddress"
	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	in, err = normalizeAddressInput(op, in)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	n, err := s.addresses.CountForUser(dbc, userID)
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if n >= commerce.MaxSavedAddresses {
		return nil, commerce.ValidationError(op, "address book is full")
	}
	// The first entry of a type becomes its default.
	if !in.IsDefault {
		def, err := s.addresses.DefaultForUser(dbc, userID, in.Type)
		if err != nil {
			return nil, commerce.Wrap(commerce.CodeInternal, op, err)
		}
		in.IsDefault = def == nil
	}

	entry := &types.SavedAddress{
		UserID:    userID,
		Type:      in.Type,
		Details:   datatypes.NewJSONType(in.Address),
		IsDefault: in.IsDefault,
	}
	if err := s.addresses.Create(dbc, entry); err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	s.log.Info("address saved", "user_id", userID, "address_id", entry.ID, "type", entry.Type, "default", entry.IsDefault)
	return entry, nil
}

// UpdateAddress replaces the entry. Clearing the flag on the current default leaves the type without one.
func (s *accountService) UpdateAddress(ctx context.Context, id uuid.UUID, in AddressInput) (*types.SavedAddress, error) {
	const op = "AccountService.UpdateAddress"
	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	in, err = normalizeAddressInput(op, in)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	entry := &types.SavedAddress{
		ID:        id,
		UserID:    userID,
		Type:      in.Type,
		Details:   datatypes.NewJSONType(in.Address),
		IsDefault: in.IsDefault,
	}
	ok, err := s.addresses.Update(dbc, entry)
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if !ok {
		return nil, commerce.NotFoundError(op, "address")
	}
	saved, err := s.addresses.GetForUser(dbc, id, userID)
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if saved == nil {
		return nil, commerce.NotFoundError(op, "address")
	}
	return saved, nil
}

func (s *accountService) DeleteAddress(ctx context.Context, id uuid.UUID) error {
	const op = "AccountService.DeleteAddress"
	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return err
	}
	ok, err := s.addresses.DeleteForUser(dbctx.New(ctx), id, userID)
	if err != nil {
		return commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if !ok {
		return commerce.NotFoundError(op, "address")
	}
	s.log.Info("address deleted", "user_id", userID, "address_id", id)
	return nil
}

// SavedAddress returns the owner's entry; someone else's entry reads as missing.
func (s *accountService) SavedAddress(ctx context.Context, userID, id uuid.UUID) (commerce.Address, error) {
	const op = "AccountService.SavedAddress"
	a, err := s.addresses.GetForUser(dbctx.New(ctx), id, userID)
	if err != nil {
		return commerce.Address{}, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if a == nil {
		return commerce.Address{}, commerce.NotFoundError(op, "address")
	}
	return a.Address(), nil
}

// DefaultAddress returns nil when the owner has no default of that type.
func (s *accountService) DefaultAddress(ctx context.Context, userID uuid.UUID, t commerce.AddressType) (*commerce.Address, error) {
	const op = "AccountService.DefaultAddress"
	a, err := s.addresses.DefaultForUser(dbctx.New(ctx), userID, t)
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if a == nil {
		return nil, nil
	}
	addr := a.Address()
	return &addr, nil
}

func normalizeAddressInput(op string, in AddressInput) (AddressInput, error) {
	in.Type = commerce.AddressType(strings.ToLower(strings.TrimSpace(string(in.Type))))
	if in.Type == "" {
		return in, commerce.ValidationError(op, "type is required")
	}
	if err := commerce.Validate(op, in); err != nil {
		return in, err
	}
	return in, nil
}
