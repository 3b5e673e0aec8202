package checkout

import (
	"fmt"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

const DefaultCarrier = "Local courier"

// BuildOrder assembles the order document from the session form, the pinned
// cart snapshot and the payment record. Line items are copied by value.
func BuildOrder(s *Session, cart domain.CartSnapshot, payment domain.PaymentRecord, id string, now time.Time) *domain.Order {
	currency := cart.Currency
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	totals := ComputeTotals(cart.Subtotal, s.Delivery.Quote(), currency)

	items := make([]domain.OrderItem, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		lineCurrency := line.Currency
		if lineCurrency == "" {
			lineCurrency = currency
		}
		items = append(items, domain.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Price:     line.UnitPrice,
			Quantity:  line.Quantity,
			Currency:  lineCurrency,
			Image:     line.Image,
		})
	}

	payment.Amount = totals.Total
	if payment.Currency == "" {
		payment.Currency = currency
	}

	return &domain.Order{
		ID:     id,
		UserID: s.UserID,
		Customer: domain.Customer{
			FirstName: strings.TrimSpace(s.Form.FirstName),
			LastName:  strings.TrimSpace(s.Form.LastName),
			Email:     strings.TrimSpace(s.Form.Email),
			Phone:     strings.TrimSpace(s.Form.Phone),
		},
		ShippingAddress: domain.ShippingAddress{
			Street:       strings.TrimSpace(s.Form.Address),
			City:         shippingCity(s.Delivery),
			State:        s.Form.State,
			Country:      s.Form.Country,
			PostalCode:   strings.TrimSpace(s.Form.PostalCode),
			Instructions: strings.TrimSpace(s.Form.Instructions),
		},
		Items:   items,
		Payment: payment,
		Shipping: domain.ShippingRecord{
			Method:  shippingMethod(s.Delivery),
			Cost:    totals.Shipping.FeeOrZero(),
			Carrier: shippingCarrier(s.Delivery),
		},
		Subtotal:     totals.Subtotal,
		ShippingCost: totals.Shipping.FeeOrZero(),
		Discount:     totals.Discount,
		Total:        totals.Total,
		Status:       domain.OrderStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func shippingCity(sel DeliverySelection) string {
	if sel.Kind == SelectionCustom {
		return sel.City
	}
	return sel.OptionName
}

func shippingMethod(sel DeliverySelection) string {
	if sel.Kind == SelectionCustom {
		return fmt.Sprintf("Custom delivery (%s)", sel.City)
	}
	return sel.OptionName
}

func shippingCarrier(sel DeliverySelection) string {
	if sel.Carrier != "" {
		return sel.Carrier
	}
	return DefaultCarrier
}
