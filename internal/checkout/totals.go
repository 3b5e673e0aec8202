package checkout

import "github.com/fjod/go_cart/storefront/internal/domain"

type Totals struct {
	Subtotal        domain.Money  `json:"subtotal"`
	Shipping        ShippingQuote `json:"shipping"`
	ShippingDisplay string        `json:"shipping_display"`
	Discount        domain.Money  `json:"discount"`
	Total           domain.Money  `json:"total"`
	TotalDisplay    string        `json:"total_display"`
	Currency        string        `json:"currency"`
}

// ComputeTotals returns subtotal + shipping fee. There is no tax and no
// discount source, and nothing is rounded.
func ComputeTotals(subtotal domain.Money, quote ShippingQuote, currency string) Totals {
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	var discount domain.Money
	total := subtotal.Add(quote.FeeOrZero()).Sub(discount)
	return Totals{
		Subtotal:        subtotal,
		Shipping:        quote,
		ShippingDisplay: quote.Display(currency),
		Discount:        discount,
		Total:           total,
		TotalDisplay:    total.Format(currency),
		Currency:        currency,
	}
}
