package registration

import (
	gatherly "gatherly-go"
)

// Breakdown is the derived price of one registration attempt. It is
// recomputed from the current selections on every call and never cached.
type Breakdown struct {
	BaseAmount        float64 `json:"baseAmount"`
	DiscountAmount    float64 `json:"discountAmount"`
	Subtotal          float64 `json:"subtotal"`
	PlatformFeeAmount float64 `json:"platformFeeAmount"`
	TotalAmount       float64 `json:"totalAmount"`
}

// ComputeBreakdown derives the price for an event given the selected tier
// and applied promo code:
//
//  1. base is the tier amount when a tier is selected, else the event's flat
//     price.
//  2. discount is the promo's value (flat) or base*value/100 (percentage).
//  3. subtotal is base minus discount, floored at zero.
//  4. the platform fee applies only when the event both has one and passes
//     it to the attendee: flat magnitude, or subtotal*fee/100 (percentage).
//  5. total is subtotal plus platform fee.
func ComputeBreakdown(event *gatherly.Event, tier *gatherly.SpecialPrice, promo *gatherly.PromoCode) Breakdown {
	var b Breakdown
	if event == nil {
		return b
	}

	if tier != nil {
		b.BaseAmount = tier.Amount
	} else {
		b.BaseAmount = event.Price
	}

	if promo != nil {
		switch promo.Type {
		case gatherly.FeePercentage:
			b.DiscountAmount = b.BaseAmount * promo.Value / 100
		default:
			b.DiscountAmount = promo.Value
		}
	}

	b.Subtotal = b.BaseAmount - b.DiscountAmount
	if b.Subtotal < 0 {
		b.Subtotal = 0
	}

	if event.HasPlatformFee && event.PassPlatformFeeToUser {
		if event.PlatformFeeType == gatherly.FeePercentage {
			b.PlatformFeeAmount = b.Subtotal * event.PlatformFee / 100
		} else {
			b.PlatformFeeAmount = event.PlatformFee
		}
	}

	b.TotalAmount = b.Subtotal + b.PlatformFeeAmount
	return b
}
