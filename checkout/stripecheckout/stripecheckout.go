// Package stripecheckout is a checkout.Provider backed by Stripe, for
// deployments that route the platform's pending orders through their own
// Stripe account instead of the hosted widget.
package stripecheckout

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"

	"gatherly-go/checkout"
)

// Provider creates a Stripe PaymentIntent for each pending order. The
// intent carries the order id in its metadata so webhook consumers can map
// the payment back to the registration.
type Provider struct{}

// New sets the Stripe secret key and returns a Provider.
func New(secretKey string) *Provider {
	stripe.Key = secretKey
	return &Provider{}
}

// Open creates a PaymentIntent for the order amount and reports its id as
// the payment id. The intent's client secret is returned as the signature so
// the caller can finish confirmation on its own payment surface.
func (p *Provider) Open(ctx context.Context, opts checkout.Options) (*checkout.Result, error) {
	if opts.OrderID == "" {
		return nil, fmt.Errorf("stripe checkout: order id is required")
	}

	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context: ctx,
		},
		Amount:      stripe.Int64(opts.Amount),
		Currency:    stripe.String(opts.Currency),
		Description: stripe.String(opts.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("order_id", opts.OrderID)
	if opts.Prefill.Email != "" {
		params.ReceiptEmail = stripe.String(opts.Prefill.Email)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout: failed to create payment intent: %w", err)
	}

	return &checkout.Result{
		PaymentID: intent.ID,
		OrderID:   opts.OrderID,
		Signature: intent.ClientSecret,
	}, nil
}
