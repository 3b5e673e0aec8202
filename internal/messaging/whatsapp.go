// Package messaging builds wa.me deep links used for manual merchant
// follow-up. Links are fire-and-forget: nothing here sends a message.
package messaging

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const waBaseURL = "https://wa.me/"

// Link builds a wa.me URL for the merchant number with prefilled text.
// Non-digit characters are stripped from the number as wa.me requires.
func Link(number, text string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	return waBaseURL + digits + "?text=" + url.QueryEscape(text)
}

// OrderLink encodes the order summary a bank-transfer customer sends to the
// merchant together with their proof of payment.
func OrderLink(number string, o *domain.Order) string {
	return Link(number, OrderText(o))
}

func OrderText(o *domain.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello, I just placed order %s and paid by %s.\n", o.ID, o.Payment.Method)
	fmt.Fprintf(&b, "Name: %s\n", o.Customer.FullName())
	fmt.Fprintf(&b, "Phone: %s\n", o.Customer.Phone)
	fmt.Fprintf(&b, "Address: %s, %s, %s, %s\n", o.ShippingAddress.Street, o.ShippingAddress.City,
		o.ShippingAddress.State, o.ShippingAddress.Country)
	b.WriteString("Items:\n")
	for _, item := range o.Items {
		fmt.Fprintf(&b, "- %s x%d (%s)\n", item.Name, item.Quantity, item.Price.Times(item.Quantity).Format(item.Currency))
	}
	fmt.Fprintf(&b, "Delivery: %s (%s)\n", o.Shipping.Method, o.Shipping.Cost.Format(o.Payment.Currency))
	fmt.Fprintf(&b, "Total: %s", o.Total.Format(o.Payment.Currency))
	return b.String()
}

// InquiryLink prefills a product question.
func InquiryLink(number string, p *domain.Product) string {
	text := fmt.Sprintf("Hello, I would like to know more about %s (%s).", p.Name, p.Price.Format(p.Currency))
	return Link(number, text)
}
