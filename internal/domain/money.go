package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultCurrency is the store currency. Amounts are whole Naira unless a
// product is explicitly priced in kobo.
const DefaultCurrency = "NGN"

var amountPrinter = message.NewPrinter(language.English)

// Money is an already-rounded currency amount. No rounding happens on
// arithmetic; conversion to minor units is exact for two decimal places.
type Money struct {
	amount decimal.Decimal
}

func NewMoney(units int64) Money {
	return Money{amount: decimal.NewFromInt(units)}
}

func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{amount: d}
}

func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("parse money %q: %w", s, err)
	}
	return Money{amount: d}, nil
}

func (m Money) Add(o Money) Money {
	return Money{amount: m.amount.Add(o.amount)}
}

func (m Money) Sub(o Money) Money {
	return Money{amount: m.amount.Sub(o.amount)}
}

func (m Money) Times(quantity int) Money {
	return Money{amount: m.amount.Mul(decimal.NewFromInt(int64(quantity)))}
}

func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

func (m Money) Equal(o Money) bool {
	return m.amount.Equal(o.amount)
}

func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// MinorUnits returns the amount in kobo (hundredths), as card gateways expect.
func (m Money) MinorUnits() int64 {
	return m.amount.Shift(2).IntPart()
}

func (m Money) String() string {
	return m.amount.String()
}

// Format renders the amount for display, e.g. "₦13,500" or "₦1,250.50".
func (m Money) Format(currency string) string {
	prefix := currency + " "
	if currency == "" || currency == DefaultCurrency {
		prefix = "₦"
	}
	if m.amount.IsNegative() {
		prefix = "-" + prefix
	}

	abs := m.amount.Abs()
	if abs.IsInteger() {
		return prefix + amountPrinter.Sprintf("%d", abs.IntPart())
	}
	rounded := abs.Round(2)
	_, frac, _ := strings.Cut(rounded.StringFixed(2), ".")
	return prefix + amountPrinter.Sprintf("%d", rounded.IntPart()) + "." + frac
}

// MarshalJSON encodes the amount as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.amount.String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("decode money: %w", err)
	}
	m.amount = d
	return nil
}

// MarshalBSONValue stores amounts as Decimal128 so the document store keeps
// exact values.
func (m Money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d128, err := primitive.ParseDecimal128(m.amount.String())
	if err != nil {
		return 0, nil, fmt.Errorf("encode money %s: %w", m.amount, err)
	}
	return bson.MarshalValue(d128)
}

func (m *Money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	rv := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeDecimal128:
		d, err := decimal.NewFromString(rv.Decimal128().String())
		if err != nil {
			return fmt.Errorf("decode money: %w", err)
		}
		m.amount = d
	case bson.TypeInt32:
		m.amount = decimal.NewFromInt(int64(rv.Int32()))
	case bson.TypeInt64:
		m.amount = decimal.NewFromInt(rv.Int64())
	case bson.TypeDouble:
		m.amount = decimal.NewFromFloat(rv.Double())
	case bson.TypeString:
		d, err := decimal.NewFromString(rv.StringValue())
		if err != nil {
			return fmt.Errorf("decode money: %w", err)
		}
		m.amount = d
	case bson.TypeNull:
		m.amount = decimal.Zero
	default:
		return fmt.Errorf("decode money: unsupported bson type %s", t)
	}
	return nil
}
