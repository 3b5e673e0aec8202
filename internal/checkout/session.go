package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Form holds what the customer typed. DeliveryLocation is an option value or
// domain.CustomDeliveryValue.
type Form struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Address          string `json:"address"`
	PostalCode       string `json:"postalCode"`
	Instructions     string `json:"instructions"`
	Country          string `json:"country"`
	State            string `json:"state"`
	DeliveryLocation string `json:"deliveryLocation"`
	City             string `json:"city"`
}

// ContactDetails is the part of the form that can be edited without
// touching the location cascade.
type ContactDetails struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	PostalCode   string `json:"postalCode"`
	Instructions string `json:"instructions"`
}

type Session struct {
	ID               string                  `json:"id"`
	UserID           string                  `json:"user_id"`
	Status           domain.CheckoutStatus   `json:"status"`
	Form             Form                    `json:"form"`
	Delivery         DeliverySelection       `json:"delivery"`
	Options          []domain.DeliveryOption `json:"options"`
	Cart             *domain.CartSnapshot    `json:"cart,omitempty"`
	PaymentReference string                  `json:"payment_reference,omitempty"`
	PaymentDone      bool                    `json:"payment_done"`
	OrderID          string                  `json:"order_id,omitempty"`
	Version          int64                   `json:"version"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// SessionStore persists sessions between requests. Save must fail with
// ErrSessionConflict when the stored version differs from s.Version and bump
// s.Version on success.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
}

func (s *Session) transition(to domain.CheckoutStatus) error {
	if !domain.CanTransitionTo(s.Status, to) {
		return illegal(s.Status, to)
	}
	s.Status = to
	return nil
}

// reopenForm moves the session back to form entry after any edit. The pinned
// cart snapshot is dropped so the next proceed reads the live cart.
func (s *Session) reopenForm() error {
	if err := s.transition(domain.CheckoutStatusFormEntry); err != nil {
		return err
	}
	s.Cart = nil
	return nil
}

func (s *Session) UpdateContact(c ContactDetails) error {
	if err := s.reopenForm(); err != nil {
		return err
	}
	s.Form.FirstName = c.FirstName
	s.Form.LastName = c.LastName
	s.Form.Email = c.Email
	s.Form.Phone = c.Phone
	s.Form.Address = c.Address
	s.Form.PostalCode = c.PostalCode
	s.Form.Instructions = c.Instructions
	return nil
}

// SelectCountry resets state, location, city and shipping, even when the
// country did not change.
func (s *Session) SelectCountry(country string) error {
	if err := s.reopenForm(); err != nil {
		return err
	}
	s.Form.Country = strings.TrimSpace(country)
	s.Form.State = ""
	s.clearLocation()
	return nil
}

func (s *Session) SelectState(state string) error {
	if err := s.reopenForm(); err != nil {
		return err
	}
	s.Form.State = strings.TrimSpace(state)
	s.clearLocation()
	return nil
}

// SelectDelivery picks a listed option or a custom city. On error the
// selection is left as it was.
func (s *Session) SelectDelivery(location, city string) error {
	if s.Status == domain.CheckoutStatusCompleted || s.Status == domain.CheckoutStatusPaystack {
		return illegal(s.Status, domain.CheckoutStatusFormEntry)
	}
	sel, err := ResolveSelection(s.Options, s.Form.State, location, city)
	if err != nil {
		return err
	}
	if err := s.reopenForm(); err != nil {
		return err
	}
	s.Delivery = sel
	s.Form.DeliveryLocation = strings.TrimSpace(location)
	if sel.Kind == SelectionCustom {
		s.Form.City = sel.City
	} else {
		s.Form.City = ""
	}
	return nil
}

func (s *Session) clearLocation() {
	s.Form.DeliveryLocation = ""
	s.Form.City = ""
	s.Delivery = DeliverySelection{}
}

// AvailableOptions lists the options that can be picked for the current
// state, in their stored order.
func (s *Session) AvailableOptions() []domain.DeliveryOption {
	out := make([]domain.DeliveryOption, 0, len(s.Options))
	for _, option := range s.Options {
		if s.Form.State == "" || option.AvailableIn(s.Form.State) {
			out = append(out, option)
		}
	}
	return out
}
