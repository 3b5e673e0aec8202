package domain

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("unknown order status %q", s)
	}
}

type PaymentMethod string

const (
	PaymentMethodPaystack     PaymentMethod = "Paystack"
	PaymentMethodBankTransfer PaymentMethod = "Bank Transfer"
)

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusPending   PaymentStatus = "pending"
)

type Customer struct {
	FirstName string `bson:"first_name" json:"firstName"`
	LastName  string `bson:"last_name" json:"lastName"`
	Email     string `bson:"email" json:"email"`
	Phone     string `bson:"phone" json:"phone"`
}

func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

type ShippingAddress struct {
	Street       string `bson:"street" json:"street"`
	City         string `bson:"city" json:"city"`
	State        string `bson:"state" json:"state"`
	Country      string `bson:"country" json:"country"`
	PostalCode   string `bson:"postal_code,omitempty" json:"postalCode,omitempty"`
	Instructions string `bson:"instructions,omitempty" json:"instructions,omitempty"`
}

// OrderItem is a copy of the cart line at order time, never a live product
// reference.
type OrderItem struct {
	ProductID string `bson:"product_id" json:"productId"`
	Name      string `bson:"name" json:"name"`
	Price     Money  `bson:"price" json:"price"`
	Quantity  int    `bson:"quantity" json:"quantity"`
	Currency  string `bson:"currency" json:"currency"`
	Image     string `bson:"image,omitempty" json:"image,omitempty"`
}

type PaymentRecord struct {
	Method        PaymentMethod `bson:"method" json:"method"`
	Status        PaymentStatus `bson:"status" json:"status"`
	TransactionID string        `bson:"transaction_id,omitempty" json:"transactionId,omitempty"`
	Amount        Money         `bson:"amount" json:"amount"`
	Currency      string        `bson:"currency" json:"currency"`
}

type ShippingRecord struct {
	Method  string `bson:"method" json:"method"`
	Cost    Money  `bson:"cost" json:"cost"`
	Carrier string `bson:"carrier" json:"carrier"`
}

type Order struct {
	ID              string          `bson:"_id" json:"id"`
	UserID          string          `bson:"user_id" json:"userId"`
	Customer        Customer        `bson:"customer" json:"customer"`
	ShippingAddress ShippingAddress `bson:"shipping_address" json:"shippingAddress"`
	Items           []OrderItem     `bson:"items" json:"items"`
	Payment         PaymentRecord   `bson:"payment" json:"payment"`
	Shipping        ShippingRecord  `bson:"shipping" json:"shipping"`
	Subtotal        Money           `bson:"subtotal" json:"subtotal"`
	ShippingCost    Money           `bson:"shipping_cost" json:"shippingCost"`
	Discount        Money           `bson:"discount" json:"discount"`
	Total           Money           `bson:"total" json:"total"`
	Status          OrderStatus     `bson:"status" json:"status"`
	CreatedAt       time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `bson:"updated_at" json:"updatedAt"`
}

// TotalsConsistent checks total == subtotal + shippingCost - discount.
func (o *Order) TotalsConsistent() bool {
	return o.Total.Equal(o.Subtotal.Add(o.ShippingCost).Sub(o.Discount))
}
