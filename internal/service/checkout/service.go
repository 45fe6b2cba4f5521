package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/stripe"
	"github.com/google/uuid"
)

// Charges are fixed to Japanese yen.
const currency = "jpy"

var (
	// ErrNoActiveCart is returned when the customer has nothing to pay for.
	ErrNoActiveCart = errors.New("no active cart")
	// ErrEmptyCart is returned when the active cart has no lines.
	ErrEmptyCart = errors.New("cart is empty")
)

type Gateway interface {
	Charge(ctx context.Context, in stripe.ChargeInput) (*stripe.Charge, error)
	FindByCheckoutRef(ctx context.Context, ref string) (*stripe.Charge, error)
}

type Mailer interface {
	SendOrderConfirmation(ctx context.Context, to string, order domain.Order, payment domain.Payment) error
}

type orderRepo interface {
	GetActiveByCustomer(ctx context.Context, customerID string) (*domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	MarkPendingPayment(ctx context.Context, orderID, checkoutRef string) error
	Reactivate(ctx context.Context, orderID string) error
	Finalize(ctx context.Context, orderID string, payment domain.Payment) (*domain.Payment, error)
	ListStalePending(ctx context.Context, cutoff time.Time) ([]domain.Order, error)
}

type customerRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
}

type paymentRepo interface {
	ListByCustomer(ctx context.Context, customerID string) ([]domain.Payment, error)
}

type Service struct {
	orders    orderRepo
	customers customerRepo
	payments  paymentRepo
	gateway   Gateway
	mailer    Mailer
	logger    *log.Logger
}

// New builds the checkout service. mailer may be nil to disable
// confirmation mail.
func New(orders orderRepo, customers customerRepo, payments paymentRepo, gateway Gateway, mailer Mailer, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		orders:    orders,
		customers: customers,
		payments:  payments,
		gateway:   gateway,
		mailer:    mailer,
		logger:    logger,
	}
}

// Info returns the data the payment form needs: the active cart and the
// customer record.
func (s *Service) Info(ctx context.Context, customerID string) (*domain.Order, *domain.Customer, error) {
	order, err := s.orders.GetActiveByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, ErrNoActiveCart
		}
		return nil, nil, err
	}
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	return order, customer, nil
}

// Pay finalizes the active cart. The order is marked pending_payment with a
// fresh checkout reference before the gateway is called, so a crash between
// charge and persistence leaves a reconcilable marker instead of silent
// inconsistency. A failed charge reverts the order to active.
func (s *Service) Pay(ctx context.Context, customerID, cardToken string) (*domain.Order, *domain.Payment, error) {
	order, err := s.orders.GetActiveByCustomer(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, ErrNoActiveCart
		}
		return nil, nil, err
	}
	amount := order.Total()
	if amount == 0 {
		return nil, nil, ErrEmptyCart
	}

	ref := uuid.NewString()
	if err := s.orders.MarkPendingPayment(ctx, order.ID, ref); err != nil {
		return nil, nil, fmt.Errorf("mark pending: %w", err)
	}

	charge, err := s.gateway.Charge(ctx, stripe.ChargeInput{
		Amount:      amount,
		Currency:    currency,
		Description: description(*order),
		SourceToken: cardToken,
		CheckoutRef: ref,
	})
	if err != nil {
		if rerr := s.orders.Reactivate(ctx, order.ID); rerr != nil {
			s.logger.Printf("checkout: reactivate order=%s failed: %v", order.ID, rerr)
		}
		return nil, nil, err
	}

	payment, err := s.orders.Finalize(ctx, order.ID, domain.Payment{
		CustomerID: customerID,
		ChargeID:   charge.ID,
		AmountYen:  amount,
	})
	if err != nil {
		// money moved but the order did not, the reconciler will pick
		// this up by checkout_ref
		s.logger.Printf("checkout: finalize order=%s charge=%s failed: %v", order.ID, charge.ID, err)
		return nil, nil, fmt.Errorf("finalize order: %w", err)
	}

	final, err := s.orders.GetByID(ctx, order.ID)
	if err != nil {
		return nil, nil, err
	}

	s.sendConfirmation(ctx, customerID, *final, *payment)
	return final, payment, nil
}

// Payments lists the customer's payment history, newest first.
func (s *Service) Payments(ctx context.Context, customerID string) ([]domain.Payment, error) {
	return s.payments.ListByCustomer(ctx, customerID)
}

// Reconcile sweeps orders stuck in pending_payment longer than olderThan.
// When the gateway knows a charge for the checkout reference the order is
// finalized, otherwise it goes back to active. Returns the number of orders
// settled either way.
func (s *Service) Reconcile(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := s.orders.ListStalePending(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, order := range stale {
		if order.CheckoutRef == nil {
			continue
		}
		charge, err := s.gateway.FindByCheckoutRef(ctx, *order.CheckoutRef)
		switch {
		case err == nil:
			if _, err := s.orders.Finalize(ctx, order.ID, domain.Payment{
				CustomerID: order.CustomerID,
				ChargeID:   charge.ID,
				AmountYen:  order.Total(),
			}); err != nil {
				s.logger.Printf("reconcile: finalize order=%s failed: %v", order.ID, err)
				continue
			}
			s.logger.Printf("reconcile: order=%s finalized from charge=%s", order.ID, charge.ID)
			settled++
		case errors.Is(err, stripe.ErrChargeNotFound):
			if err := s.orders.Reactivate(ctx, order.ID); err != nil {
				s.logger.Printf("reconcile: reactivate order=%s failed: %v", order.ID, err)
				continue
			}
			s.logger.Printf("reconcile: order=%s reactivated, no charge found", order.ID)
			settled++
		default:
			s.logger.Printf("reconcile: lookup order=%s failed: %v", order.ID, err)
		}
	}
	return settled, nil
}

func (s *Service) sendConfirmation(ctx context.Context, customerID string, order domain.Order, payment domain.Payment) {
	if s.mailer == nil {
		return
	}
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		s.logger.Printf("checkout: load customer=%s for mail failed: %v", customerID, err)
		return
	}
	if err := s.mailer.SendOrderConfirmation(ctx, customer.Email, order, payment); err != nil {
		s.logger.Printf("checkout: confirmation mail to %s failed: %v", customer.Email, err)
	}
}

// description mirrors the receipt line the storefront always used:
// "<name>:<qty>" per line, space separated.
func description(order domain.Order) string {
	parts := make([]string, 0, len(order.Lines))
	for _, line := range order.Lines {
		parts = append(parts, fmt.Sprintf("%s:%d", line.ItemName, line.Quantity))
	}
	return strings.Join(parts, " ")
}
