package checkout

import (
	"fmt"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type QuoteState string

const (
	QuoteUnset          QuoteState = "unset"
	QuoteQuoted         QuoteState = "quoted"
	QuoteRequiresManual QuoteState = "requires_manual_quote"
)

// ShippingQuote keeps "no location yet", "priced" and "merchant must quote"
// apart. A zero fee only means free delivery in the quoted state.
type ShippingQuote struct {
	State QuoteState   `json:"state"`
	Fee   domain.Money `json:"fee"`
}

func UnsetQuote() ShippingQuote {
	return ShippingQuote{State: QuoteUnset}
}

func Quoted(fee domain.Money) ShippingQuote {
	return ShippingQuote{State: QuoteQuoted, Fee: fee}
}

func ManualQuote() ShippingQuote {
	return ShippingQuote{State: QuoteRequiresManual}
}

// FeeOrZero is the amount added to the order total.
func (q ShippingQuote) FeeOrZero() domain.Money {
	if q.State != QuoteQuoted {
		return domain.Money{}
	}
	return q.Fee
}

func (q ShippingQuote) Display(currency string) string {
	switch q.State {
	case QuoteQuoted:
		if q.Fee.IsZero() {
			return "Free"
		}
		return q.Fee.Format(currency)
	case QuoteRequiresManual:
		return "Quote required"
	default:
		return "Select a delivery location"
	}
}

type SelectionKind string

const (
	SelectionNone   SelectionKind = ""
	SelectionOption SelectionKind = "option"
	SelectionCustom SelectionKind = "custom"
)

// DeliverySelection is either a listed option or a typed city. For a
// custom city ResolvedFee is nil until a trigger matched.
type DeliverySelection struct {
	Kind          SelectionKind `json:"kind"`
	OptionID      string        `json:"id,omitempty"`
	OptionName    string        `json:"name,omitempty"`
	Price         domain.Money  `json:"price"`
	Carrier       string        `json:"carrier,omitempty"`
	City          string        `json:"city,omitempty"`
	ResolvedFee   *domain.Money `json:"resolvedFee,omitempty"`
	MatchedOption string        `json:"matchedOption,omitempty"`
}

func (s DeliverySelection) Quote() ShippingQuote {
	switch s.Kind {
	case SelectionOption:
		return Quoted(s.Price)
	case SelectionCustom:
		if s.ResolvedFee != nil {
			return Quoted(*s.ResolvedFee)
		}
		return ManualQuote()
	default:
		return UnsetQuote()
	}
}

// MatchCustomCity returns the first option, in list order, that has a
// trigger contained in city.
func MatchCustomCity(options []domain.DeliveryOption, city string) (domain.DeliveryOption, bool) {
	for _, option := range options {
		if option.MatchesCity(city) {
			return option, true
		}
	}
	return domain.DeliveryOption{}, false
}

// ResolveSelection turns a location value (an option value, "custom", or
// empty to clear) into a selection. state limits which listed options can
// be picked; custom triggers are checked against the full list.
func ResolveSelection(options []domain.DeliveryOption, state, location, city string) (DeliverySelection, error) {
	location = strings.TrimSpace(location)
	switch location {
	case "":
		return DeliverySelection{}, nil
	case domain.CustomDeliveryValue:
		sel := DeliverySelection{Kind: SelectionCustom, City: strings.TrimSpace(city)}
		if option, ok := MatchCustomCity(options, city); ok {
			fee := option.Price
			sel.ResolvedFee = &fee
			sel.MatchedOption = option.Value
			sel.Carrier = option.Carrier
		}
		return sel, nil
	}

	for _, option := range options {
		if option.Value != location {
			continue
		}
		if state != "" && !option.AvailableIn(state) {
			return DeliverySelection{}, fmt.Errorf("%w: %q is not offered in %s", ErrUnknownDeliveryOption, location, state)
		}
		return DeliverySelection{
			Kind:       SelectionOption,
			OptionID:   option.Value,
			OptionName: option.Name,
			Price:      option.Price,
			Carrier:    option.Carrier,
		}, nil
	}
	return DeliverySelection{}, fmt.Errorf("%w: %q", ErrUnknownDeliveryOption, location)
}
