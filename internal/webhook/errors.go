package webhook

import "errors"

// Common errors returned by the delivery client.
var (
	// ErrDeliveryFailed is returned after every attempt for a payload has
	// been exhausted without a 2xx response.
	ErrDeliveryFailed = errors.New("webhook delivery failed")

	// ErrUnexpectedStatus is returned when an attempt reaches the endpoint
	// but receives a status code outside [200, 300).
	ErrUnexpectedStatus = errors.New("unexpected webhook response status")
)
