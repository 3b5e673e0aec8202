package repository

import "errors"

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrProfileNotFound = errors.New("profile not found")
	ErrDuplicateOrder  = errors.New("order already exists")
	ErrQuantityLimit   = errors.New("cart line quantity limit reached")
)
