package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/99minutos/order-tracking/internal/core/domain"
	"github.com/99minutos/order-tracking/internal/core/ports"
)

const (
	trackingPrefix      = "ORD-"
	trackingLength      = 10
	maxTrackingAttempts = 3
	defaultPageLimit    = 10
)

type OrderService struct {
	orders   ports.OrderRepository
	users    ports.UserRepository
	events   ports.OrderEventLog
	notifier ports.Notifier
	logger   zerolog.Logger

	now               func() time.Time
	newTrackingNumber func() string
}

// NewOrderService wires the order use cases. events and notifier may be nil,
// in which case auditing and notifications are skipped.
func NewOrderService(
	orders ports.OrderRepository,
	users ports.UserRepository,
	events ports.OrderEventLog,
	notifier ports.Notifier,
	logger zerolog.Logger,
) *OrderService {
	return &OrderService{
		orders:            orders,
		users:             users,
		events:            events,
		notifier:          notifier,
		logger:            logger,
		now:               time.Now,
		newTrackingNumber: generateTrackingNumber,
	}
}

// CreateOrder validates the request, computes the total and stores the order
// with its items and initial PLACED history entry.
func (s *OrderService) CreateOrder(ctx context.Context, in ports.CreateOrderInput) (*domain.Order, error) {
	if err := validateCreateOrder(in); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, len(in.Items))
	for i, it := range in.Items {
		items[i] = domain.OrderItem{
			Name:        strings.TrimSpace(it.Name),
			Description: it.Description,
			Quantity:    it.Quantity,
			Price:       it.Price,
		}
	}

	now := s.now().UTC()
	order := &domain.Order{
		ID:              uuid.NewString(),
		UserID:          user.ID,
		Status:          domain.StatusPlaced,
		TotalAmount:     domain.TotalOf(items),
		ShippingAddress: strings.TrimSpace(in.ShippingAddress),
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
		Items:           items,
		StatusHistory: []domain.OrderStatusEvent{{
			Status:    domain.StatusPlaced,
			Notes:     domain.InitialStatusNote,
			CreatedAt: now,
		}},
	}

	for attempt := 1; ; attempt++ {
		order.TrackingNumber = s.newTrackingNumber()
		err = s.orders.Create(ctx, order)
		if err == nil {
			break
		}
		if errors.Is(err, domain.ErrTrackingNumberTaken) {
			if attempt < maxTrackingAttempts {
				s.logger.Warn().Str("tracking_number", order.TrackingNumber).Int("attempt", attempt).Msg("tracking number collision, regenerating")
				continue
			}
			s.logger.Error().Int("attempts", attempt).Str("user_id", user.ID).Msg("tracking number generation exhausted")
			return nil, fmt.Errorf("create order: tracking number generation exhausted after %d attempts", attempt)
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to create order")
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("tracking_number", order.TrackingNumber).
		Str("user_id", user.ID).
		Float64("total", order.TotalAmount).
		Msg("order created")

	s.audit(ctx, order, domain.InitialStatusNote, now)
	s.notify(domain.NotificationOrderPlaced, user.Email, order)

	return order, nil
}

// GetOrderByID returns the order with its items and history.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// GetUserOrders lists the orders of userID, newest first. An unknown user is
// reported as not found rather than as an empty list.
func (s *OrderService) GetUserOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.orders.ListByUser(ctx, userID)
}

// GetAllOrders returns a page of all orders, newest first, and the total count.
func (s *OrderService) GetAllOrders(ctx context.Context, page ports.Page) ([]domain.Order, int64, error) {
	return s.orders.List(ctx, normalizePage(page))
}

// UpdateOrderStatus moves an order to a new status and records the transition.
// Any status may follow any other.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, in ports.UpdateOrderStatusInput) (*domain.Order, error) {
	if in.Status == "" {
		return nil, domain.NewValidationError("Status is required")
	}
	status, ok := domain.ParseOrderStatus(in.Status)
	if !ok {
		return nil, domain.NewValidationError("Invalid status")
	}

	now := s.now().UTC()
	order, err := s.orders.UpdateStatus(ctx, in.OrderID, ports.StatusChange{
		Status: status,
		Notes:  in.Notes,
		At:     now,
	})
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("order_id", in.OrderID).Msg("failed to update order status")
		return nil, fmt.Errorf("update order status: %w", err)
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("status", string(status)).
		Msg("order status updated")

	s.audit(ctx, order, in.Notes, now)
	s.notify(domain.NotificationStatusChanged, "", order)

	return order, nil
}

// DeleteOrder removes the order together with its items and history.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	if err := s.orders.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return err
		}
		return fmt.Errorf("delete order: %w", err)
	}
	s.logger.Info().Str("order_id", id).Msg("order deleted")
	return nil
}

// audit hands the status the order just entered to the event log. Failures
// are logged and otherwise ignored; production wires a queued writer so the
// store is never on the request path.
func (s *OrderService) audit(ctx context.Context, order *domain.Order, notes string, at time.Time) {
	if s.events == nil {
		return
	}
	event := &domain.OrderEvent{
		OrderID:        order.ID,
		TrackingNumber: order.TrackingNumber,
		UserID:         order.UserID,
		Status:         order.Status,
		Notes:          notes,
		OccurredAt:     at,
	}
	if err := s.events.InsertEvent(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("order_id", order.ID).Msg("failed to insert audit event")
	}
}

// notify queues a message for the order owner. An empty email leaves the
// address lookup to the delivery worker.
func (s *OrderService) notify(kind domain.NotificationKind, email string, order *domain.Order) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(domain.Notification{
		Kind:           kind,
		UserID:         order.UserID,
		Email:          email,
		OrderID:        order.ID,
		TrackingNumber: order.TrackingNumber,
		Status:         order.Status,
		TotalAmount:    order.TotalAmount,
	})
}

func validateCreateOrder(in ports.CreateOrderInput) error {
	v := &domain.ValidationError{}
	if in.UserID == "" {
		v.Add("UserId is required")
	}
	if len(in.Items) == 0 {
		v.Add("At least one item is required")
	}
	for i, it := range in.Items {
		if strings.TrimSpace(it.Name) == "" {
			v.Add(fmt.Sprintf("items[%d].name is required", i))
		}
		if it.Quantity <= 0 {
			v.Add(fmt.Sprintf("items[%d].quantity must be greater than 0", i))
		}
		if it.Price < 0 {
			v.Add(fmt.Sprintf("items[%d].price must not be negative", i))
		}
	}
	if strings.TrimSpace(in.ShippingAddress) == "" {
		v.Add("Shipping address is required")
	}
	return v.OrNil()
}

// generateTrackingNumber returns ORD- followed by 10 random characters from
// the base32 alphabet (A-Z, 2-7).
func generateTrackingNumber() string {
	return trackingPrefix + rand.Text()[:trackingLength]
}

func normalizePage(p ports.Page) ports.Page {
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
