package gatherly

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// EventsService wraps the /api/v1/events endpoints.
type EventsService struct {
	client *Client
}

// List fetches every event visible to the API key.
func (s *EventsService) List(ctx context.Context) ([]Event, error) {
	var events []Event
	if err := s.client.do(ctx, http.MethodGet, "/api/v1/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Get fetches a single event by ID.
func (s *EventsService) Get(ctx context.Context, id string) (*Event, error) {
	var event Event
	path := fmt.Sprintf("/api/v1/events/%s", url.PathEscape(id))
	if err := s.client.do(ctx, http.MethodGet, path, nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// Register submits a registration for an event. The SDK source marker is
// stamped on the payload before sending. When the response carries an
// OrderID the registration is pending external payment; calling Register
// again with PaymentID, OrderID and the original RegistrationID set on the
// request confirms it.
func (s *EventsService) Register(ctx context.Context, id string, req RegistrationRequest) (*RegistrationResult, error) {
	req.Source = sourceSDK

	var result RegistrationResult
	path := fmt.Sprintf("/api/v1/events/%s/register", url.PathEscape(id))
	if err := s.client.do(ctx, http.MethodPost, path, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
