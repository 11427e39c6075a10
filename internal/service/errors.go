package service

import "errors"

var (
	ErrValidation       = errors.New("validation failed")
	ErrProductNotFound  = errors.New("product not found")
	ErrOutOfStock       = errors.New("product is out of stock")
	ErrOrderNotFound    = errors.New("order not found")
	ErrInvalidStatus    = errors.New("invalid order status")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrCheckoutPending  = errors.New("a checkout is already awaiting payment")
	ErrSessionNotFound  = errors.New("checkout session not found")
	ErrUnknownReference = errors.New("unknown payment reference")
)
