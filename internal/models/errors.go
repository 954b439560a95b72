package models

import (
	"errors"
)

var (
	ErrNoSession          = errors.New("models: no active session")
	ErrRequestNotFound    = errors.New("models: request not found")
	ErrOfferNotFound      = errors.New("models: offer not found")
	ErrInvalidTransition  = errors.New("models: invalid status transition")
	ErrCartNotLoaded      = errors.New("models: cart not loaded yet")
	ErrCartItemNotFound   = errors.New("models: cart item not found")
	ErrDeadlineConflict   = errors.New("models: expiration and payment deadline both set")
	ErrRouterNotConnected = errors.New("models: realtime router not connected")
)
