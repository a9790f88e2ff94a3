// Package checkout abstracts the external payment-checkout step of a paid
// registration behind a single injectable Provider, replacing the hosted
// widget's global-object dependency so implementations can be swapped in
// tests and server-side flows.
package checkout

import (
	"context"
	"errors"
)

// ErrProviderMissing is returned when a paid registration reaches the
// checkout step but no Provider was configured.
var ErrProviderMissing = errors.New("checkout provider is not configured; inject a checkout.Provider before submitting paid registrations")

// Prefill carries attendee details handed to the checkout surface.
type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// Theme customizes the checkout surface.
type Theme struct {
	Color string `json:"color"`
}

// Options mirrors the hosted widget's construction object: the publishable
// key, the order amount in the currency's smallest unit, the pending order
// id and the attendee prefill.
type Options struct {
	Key         string  `json:"key"`
	Amount      int64   `json:"amount"`
	Currency    string  `json:"currency"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	OrderID     string  `json:"order_id"`
	Prefill     Prefill `json:"prefill"`
	Theme       Theme   `json:"theme"`
}

// Result is what the checkout surface reports on success, matching the
// widget's success-handler payload.
type Result struct {
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
	Signature string `json:"signature,omitempty"`
}

// Provider runs one checkout for a pending order. Open blocks until the
// payment either succeeds (returning the Result the widget's handler would
// receive) or fails.
type Provider interface {
	Open(ctx context.Context, opts Options) (*Result, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context, opts Options) (*Result, error)

// Open implements Provider.
func (f ProviderFunc) Open(ctx context.Context, opts Options) (*Result, error) {
	return f(ctx, opts)
}
