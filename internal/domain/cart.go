package domain

import "time"

// MaxLineQuantity caps the quantity of a single cart line.
const MaxLineQuantity = 99

type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"id,omitempty"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Lines     []CartLine `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

// CartLine copies name, price and image from the catalog when the item is
// added, so later catalog edits do not reprice an open cart.
type CartLine struct {
	ProductID string    `bson:"product_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	UnitPrice Money     `bson:"unit_price" json:"price"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	Currency  string    `bson:"currency" json:"currency"`
	Image     string    `bson:"image" json:"image"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

func (l CartLine) Total() Money {
	return l.UnitPrice.Times(l.Quantity)
}

func (c *Cart) Subtotal() Money {
	var subtotal Money
	for _, line := range c.Lines {
		subtotal = subtotal.Add(line.Total())
	}
	return subtotal
}

// Snapshot returns a detached copy of the cart lines.
func (c *Cart) Snapshot(now time.Time) CartSnapshot {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)

	currency := DefaultCurrency
	if len(lines) > 0 && lines[0].Currency != "" {
		currency = lines[0].Currency
	}
	return CartSnapshot{
		Lines:      lines,
		Subtotal:   c.Subtotal(),
		Currency:   currency,
		CapturedAt: now,
	}
}

// CartSnapshot represents the full cart state at checkout time
type CartSnapshot struct {
	Lines      []CartLine `json:"items"`
	Subtotal   Money      `json:"subtotal"`
	Currency   string     `json:"currency"`
	CapturedAt time.Time  `json:"captured_at"`
}

func (s CartSnapshot) IsEmpty() bool {
	return len(s.Lines) == 0
}
