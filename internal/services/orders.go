package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/storefront-backend/internal/data/repos"
	types "github.com/yungbote/storefront-backend/internal/domain"
	domainagg "github.com/yungbote/storefront-backend/internal/domain/aggregates"
	"github.com/yungbote/storefront-backend/internal/domain/commerce"
	"github.com/yungbote/storefront-backend/internal/observability"
	"github.com/yungbote/storefront-backend/internal/platform/dbctx"
	"github.com/yungbote/storefront-backend/internal/platform/events"
	"github.com/yungbote/storefront-backend/internal/platform/identity"
	"github.com/yungbote/storefront-backend/internal/platform/logger"
)

const recentOrdersLimit = 5

type OrderPage struct {
	Orders     []*types.Order      `json:"orders"`
	Pagination commerce.Pagination `json:"pagination"`
}

type AdminStats struct {
	TotalProducts    int64           `json:"total_products"`
	ActiveProducts   int64           `json:"active_products"`
	InactiveProducts int64           `json:"inactive_products"`
	Orders           repos.OrderStats `json:"orders"`
	RecentOrders     []*types.Order  `json:"recent_orders"`
}

type OrderService interface {
	GetOrderByID(ctx context.Context, orderID uuid.UUID) (*types.Order, error)
	ListOrdersForUser(ctx context.Context, page, limit int) (*OrderPage, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status commerce.OrderStatus, notes string) (*types.Order, error)
	AdminStats(ctx context.Context) (*AdminStats, error)
}

type orderService struct {
	log      *logger.Logger
	orders   repos.OrderRepo
	products repos.ProductRepo
	status   domainagg.OrderStatusAggregate
	events   events.Publisher
	identity identity.Resolver
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewOrderService(
	baseLog *logger.Logger,
	orders repos.OrderRepo,
	products repos.ProductRepo,
	status domainagg.OrderStatusAggregate,
	publisher events.Publisher,
	resolver identity.Resolver,
	metrics *observability.Metrics,
) OrderService {
	if publisher == nil {
		publisher = events.Noop()
	}
	if resolver == nil {
		resolver = identity.NewRequestResolver()
	}
	return &orderService{
		log:      baseLog.With("service", "OrderService"),
		orders:   orders,
		products: products,
		status:   status,
		events:   publisher,
		identity: resolver,
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetOrderByID only ever returns the caller's own order; anything else reads as missing.
func (s *orderService) GetOrderByID(ctx context.Context, orderID uuid.UUID) (*types.Order, error) {
	const op = "OrderService.GetOrderByID"
	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	if orderID == uuid.Nil {
		return nil, commerce.NotFoundError(op, "order")
	}
	o, err := s.orders.GetByIDForUser(dbctx.New(ctx), orderID, userID)
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if o == nil {
		return nil, commerce.NotFoundError(op, "order")
	}
	return o, nil
}

func (s *orderService) ListOrdersForUser(ctx context.Context, page, limit int) (*OrderPage, error) {
	const op = "OrderService.ListOrdersForUser"
	userID, err := s.identity.UserID(ctx)
	if err != nil {
		return nil, err
	}
	page, limit = commerce.NormalizePage(page, limit, commerce.DefaultOrderPageSize)

	var (
		list  []*types.Order
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		list, err = s.orders.ListForUser(dbctx.New(gctx), userID, commerce.Offset(page, limit), limit)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.orders.CountForUser(dbctx.New(gctx), userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if list == nil {
		list = []*types.Order{}
	}
	return &OrderPage{Orders: list, Pagination: commerce.NewPagination(page, limit, total)}, nil
}

// UpdateStatus is an admin operation; the route guard enforces the role.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, status commerce.OrderStatus, notes string) (*types.Order, error) {
	const op = "OrderService.UpdateStatus"
	at := s.now()
	res, err := s.status.TransitionStatus(ctx, domainagg.TransitionOrderStatusInput{
		OrderID:      orderID,
		ToStatus:     commerce.OrderStatus(strings.ToLower(strings.TrimSpace(string(status)))),
		Notes:        notes,
		TransitionAt: at,
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("order status changed",
		"order_id", res.OrderID,
		"from", res.FromStatus,
		"to", res.Status,
		"restocked", res.Restocked,
	)

	evt := events.OrderStatusChanged{
		OrderID:       res.OrderID,
		OrderNumber:   res.OrderNumber,
		UserID:        res.UserID,
		From:          string(res.FromStatus),
		To:            string(res.Status),
		PaymentStatus: string(res.PaymentStatus),
		ChangedAt:     res.TransitionAt,
	}
	if perr := s.events.Publish(ctx, events.TopicOrderStatusChanged, res.OrderID.String(), evt); perr != nil {
		s.metrics.IncEventPublished(events.TopicOrderStatusChanged, "error")
		s.log.Warn("publish status change failed", "order_id", res.OrderID, "error", perr)
	} else {
		s.metrics.IncEventPublished(events.TopicOrderStatusChanged, "ok")
	}

	o, err := s.orders.GetByID(dbctx.New(ctx), res.OrderID)
	if err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if o == nil {
		return nil, commerce.NotFoundError(op, "order")
	}
	return o, nil
}

func (s *orderService) AdminStats(ctx context.Context) (*AdminStats, error) {
	const op = "OrderService.AdminStats"
	var (
		counts repos.ProductCounts
		stats  repos.OrderStats
		recent []*types.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		counts, err = s.products.Counts(dbctx.New(gctx))
		return err
	})
	g.Go(func() error {
		var err error
		stats, err = s.orders.Stats(dbctx.New(gctx))
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.orders.ListRecent(dbctx.New(gctx), "", recentOrdersLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, commerce.Wrap(commerce.CodeInternal, op, err)
	}
	if recent == nil {
		recent = []*types.Order{}
	}
	return &AdminStats{
		TotalProducts:    counts.Total,
		ActiveProducts:   counts.Active,
		InactiveProducts: counts.Inactive,
		Orders:           stats,
		RecentOrders:     recent,
	}, nil
}
