package cart

import (
	"context"
	"errors"

	"storefront/internal/domain"
)

type Service struct {
	items  itemRepo
	orders orderRepo
}

type itemRepo interface {
	GetBySlug(ctx context.Context, slug string) (*domain.Item, error)
}

type orderRepo interface {
	GetActiveByCustomer(ctx context.Context, customerID string) (*domain.Order, error)
	AddItem(ctx context.Context, customerID string, item domain.Item) (*domain.Order, error)
	RemoveLine(ctx context.Context, orderID, itemID string) error
	DecrementLine(ctx context.Context, orderID, itemID string) error
}

func New(items itemRepo, orders orderRepo) *Service {
	return &Service{items: items, orders: orders}
}

// AddItem puts one unit of the item into the customer's cart, creating the
// cart when none is active. Unknown slugs surface domain.ErrNotFound.
func (s *Service) AddItem(ctx context.Context, customerID, slug string) (*domain.Order, error) {
	item, err := s.items.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.orders.AddItem(ctx, customerID, *item)
}

// RemoveItem deletes the line entirely regardless of quantity. A missing
// cart or line is a silent no-op: the caller gets the current cart back.
func (s *Service) RemoveItem(ctx context.Context, customerID, slug string) (*domain.Order, error) {
	if _, err := s.items.GetBySlug(ctx, slug); err != nil {
		return nil, err
	}
	order, err := s.orders.GetActiveByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return emptyCart(customerID), nil
		}
		return nil, err
	}
	line := order.Line(slug)
	if line == nil {
		return order, nil
	}
	if err := s.orders.RemoveLine(ctx, order.ID, line.ItemID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.View(ctx, customerID)
}

// RemoveSingleItem lowers the line quantity by one, deleting the line when
// it reaches zero. Same silent no-op semantics as RemoveItem.
func (s *Service) RemoveSingleItem(ctx context.Context, customerID, slug string) (*domain.Order, error) {
	if _, err := s.items.GetBySlug(ctx, slug); err != nil {
		return nil, err
	}
	order, err := s.orders.GetActiveByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return emptyCart(customerID), nil
		}
		return nil, err
	}
	line := order.Line(slug)
	if line == nil {
		return order, nil
	}
	if err := s.orders.DecrementLine(ctx, order.ID, line.ItemID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.View(ctx, customerID)
}

// View returns the active cart, or an empty placeholder when none exists.
func (s *Service) View(ctx context.Context, customerID string) (*domain.Order, error) {
	order, err := s.orders.GetActiveByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return emptyCart(customerID), nil
		}
		return nil, err
	}
	return order, nil
}

func emptyCart(customerID string) *domain.Order {
	return &domain.Order{
		CustomerID: customerID,
		Status:     domain.OrderStatusActive,
		Lines:      []domain.OrderItem{},
	}
}
