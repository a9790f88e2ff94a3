package gatherly

import (
	"context"
	"net/http"
)

// PaymentsService wraps the /api/v1/payments endpoints.
type PaymentsService struct {
	client *Client
}

// Verify checks a completed checkout's payment id, order id and signature
// against the platform. It is a read-only check and safe to retry.
func (s *PaymentsService) Verify(ctx context.Context, req VerifyPaymentRequest) (*PaymentVerification, error) {
	var verification PaymentVerification
	if err := s.client.do(ctx, http.MethodPost, "/api/v1/payments/verify", req, &verification); err != nil {
		return nil, err
	}
	return &verification, nil
}
