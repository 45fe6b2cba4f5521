package mail

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"github.com/keighl/postmark"
)

// Mailer sends transactional mail through Postmark.
type Mailer struct {
	client *postmark.Client
	from   string
}

func New(serverToken, from string) *Mailer {
	return &Mailer{
		client: postmark.NewClient(serverToken, ""),
		from:   from,
	}
}

// SendOrderConfirmation mails a plain-text receipt. The postmark client has
// no context support, the ctx parameter keeps the interface uniform.
func (m *Mailer) SendOrderConfirmation(_ context.Context, to string, order domain.Order, payment domain.Payment) error {
	var b strings.Builder
	b.WriteString("Thank you for your purchase!\n\n")
	for _, line := range order.Lines {
		fmt.Fprintf(&b, "%s x%d: %d yen\n", line.ItemName, line.Quantity, line.UnitPriceYen*int64(line.Quantity))
	}
	fmt.Fprintf(&b, "\nTotal: %d yen\nCharge: %s\n", payment.AmountYen, payment.ChargeID)

	_, err := m.client.SendEmail(postmark.Email{
		From:     m.from,
		To:       to,
		Subject:  "Order confirmation",
		TextBody: b.String(),
	})
	if err != nil {
		return fmt.Errorf("send order confirmation: %w", err)
	}
	return nil
}
