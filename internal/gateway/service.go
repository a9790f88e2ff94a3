package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	gatherly "gatherly-go"
	"gatherly-go/checkout"
	"gatherly-go/internal/cache"
	"gatherly-go/internal/journal"
	"gatherly-go/internal/logger"
	"gatherly-go/internal/stream"
	"gatherly-go/internal/ticket"
	"gatherly-go/internal/utils"
	"gatherly-go/registration"
)

// PlatformAPI is the slice of the SDK the gateway calls. The SDK's
// EventsService satisfies it.
type PlatformAPI interface {
	List(ctx context.Context) ([]gatherly.Event, error)
	Get(ctx context.Context, id string) (*gatherly.Event, error)
	Register(ctx context.Context, id string, req gatherly.RegistrationRequest) (*gatherly.RegistrationResult, error)
}

var _ PlatformAPI = (*gatherly.EventsService)(nil)

// JournalStore is the journal surface the service needs.
type JournalStore interface {
	CreateAttempt(ctx context.Context, attempt journal.Attempt) error
	GetAttemptByID(ctx context.Context, id string) (*journal.Attempt, error)
	MarkPending(ctx context.Context, id, registrationID, orderID string, amount float64, currency string) error
	MarkCompleted(ctx context.Context, id, registrationID, paymentID string) error
	MarkFailed(ctx context.Context, id, reason string) error
	MarkOrphaned(ctx context.Context, id, paymentID, reason string) error
	ListByStatus(ctx context.Context, status journal.AttemptStatus) ([]journal.Attempt, error)
}

// Service wires the SDK, journal, cache, event stream and checkout provider
// into the gateway's registration flow.
type Service struct {
	API      PlatformAPI
	Journal  JournalStore
	Cache    *cache.EventCache
	Stream   *stream.Producer
	Checkout checkout.Provider
	QR       *ticket.QRGenerator
	Logger   *logger.Logger

	ThemeColor string
}

// QuoteRequest selects the pricing inputs for a price quote.
type QuoteRequest struct {
	SpecialPrice string `json:"specialPrice,omitempty"`
	PromoCode    string `json:"promoCode,omitempty"`
}

// SubmitRequest is the gateway's registration payload, mirroring the form
// draft.
type SubmitRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	TeamName    string                `json:"teamName,omitempty"`
	TeamMembers []gatherly.TeamMember `json:"teamMembers,omitempty"`

	CustomFields    map[string]string `json:"customFields,omitempty"`
	CollectDefaults map[string]bool   `json:"collectDefaults,omitempty"`

	SpecialPrice string `json:"specialPrice,omitempty"`
	PromoCode    string `json:"promoCode,omitempty"`
}

// SubmitResponse reports the outcome of a submission.
type SubmitResponse struct {
	AttemptID      string                 `json:"attemptId"`
	RegistrationID string                 `json:"registrationId"`
	Status         string                 `json:"status"`
	Breakdown      registration.Breakdown `json:"breakdown"`
}

// FormResponse is the form-rendering payload: the event, its validated
// field schema and the derived base price.
type FormResponse struct {
	Event     *gatherly.Event        `json:"event"`
	Fields    []gatherly.CustomField `json:"fields"`
	Breakdown registration.Breakdown `json:"breakdown"`
}

// GetEvent fetches an event, serving from the Redis cache when possible.
func (s *Service) GetEvent(ctx context.Context, eventID string) (*gatherly.Event, error) {
	if cached, err := s.Cache.Get(ctx, eventID); err != nil {
		s.Logger.Warn("CACHE", fmt.Sprintf("Event cache read failed for %s: %v", eventID, err))
	} else if cached != nil {
		return cached, nil
	}

	event, err := s.API.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.Cache.Set(ctx, event); err != nil {
		s.Logger.Warn("CACHE", fmt.Sprintf("Event cache write failed for %s: %v", eventID, err))
	}
	return event, nil
}

// ListEvents proxies the platform's event listing.
func (s *Service) ListEvents(ctx context.Context) ([]gatherly.Event, error) {
	return s.API.List(ctx)
}

// Form returns the form-rendering payload for an event.
func (s *Service) Form(ctx context.Context, eventID string) (*FormResponse, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	schema, err := registration.NewFieldSchema(event.CustomFields)
	if err != nil {
		return nil, err
	}

	return &FormResponse{
		Event:     event,
		Fields:    schema.Fields(),
		Breakdown: registration.ComputeBreakdown(event, nil, nil),
	}, nil
}

// Quote computes the price breakdown for a tier/promo selection without
// submitting anything.
func (s *Service) Quote(ctx context.Context, eventID string, req QuoteRequest) (registration.Breakdown, error) {
	var zero registration.Breakdown

	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return zero, err
	}

	ctrl, err := registration.NewControllerWithEvent(s.API, event, registration.Options{})
	if err != nil {
		return zero, err
	}

	if req.SpecialPrice != "" {
		if err := ctrl.SelectTier(req.SpecialPrice); err != nil {
			return zero, err
		}
	}
	if req.PromoCode != "" {
		if err := ctrl.ApplyPromo(req.PromoCode); err != nil {
			return zero, err
		}
	}

	return ctrl.Price(), nil
}

// Submit runs one registration attempt through the controller, journaling
// every state it passes through.
func (s *Service) Submit(ctx context.Context, eventID string, req SubmitRequest) (*SubmitResponse, error) {
	attemptID := utils.GenerateAttemptID()

	attempt := journal.Attempt{
		AttemptID: attemptID,
		EventID:   eventID,
		Email:     req.Email,
		Status:    journal.StatusSubmitted,
		CreatedAt: time.Now(),
	}
	if err := s.Journal.CreateAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to journal attempt: %w", err)
	}

	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		s.journalFailure(ctx, attempt, err)
		return nil, err
	}

	ctrl, err := s.buildController(ctx, event, &attempt, req)
	if err != nil {
		s.journalFailure(ctx, attempt, err)
		return nil, err
	}

	breakdown := ctrl.Price()

	if err := ctrl.Submit(ctx); err != nil {
		var confirmErr *registration.ConfirmError
		if errors.As(err, &confirmErr) {
			s.Logger.LogCheckout("ORPHANED", confirmErr.OrderID, confirmErr.Error())
			if jerr := s.Journal.MarkOrphaned(ctx, attemptID, confirmErr.PaymentID, confirmErr.Error()); jerr != nil {
				s.Logger.Error("JOURNAL", fmt.Sprintf("Failed to mark attempt %s orphaned: %v", attemptID, jerr))
			}
		} else {
			s.journalFailure(ctx, attempt, err)
		}
		if serr := s.Stream.PublishFailed(ctx, attempt, err.Error()); serr != nil {
			s.Logger.Error("STREAM", fmt.Sprintf("Failed to publish failure for %s: %v", attemptID, serr))
		}
		return nil, err
	}

	registrationID := ctrl.RegistrationID()
	if err := s.Journal.MarkCompleted(ctx, attemptID, registrationID, ctrl.PaymentID()); err != nil {
		s.Logger.Error("JOURNAL", fmt.Sprintf("Failed to mark attempt %s completed: %v", attemptID, err))
	}

	attempt.RegistrationID = registrationID
	if err := s.Stream.PublishCompleted(ctx, attempt); err != nil {
		s.Logger.Error("STREAM", fmt.Sprintf("Failed to publish completion for %s: %v", attemptID, err))
	}

	s.Logger.LogRegistration("COMPLETED", registrationID, fmt.Sprintf("event %s attempt %s", eventID, attemptID))

	return &SubmitResponse{
		AttemptID:      attemptID,
		RegistrationID: registrationID,
		Status:         string(journal.StatusCompleted),
		Breakdown:      breakdown,
	}, nil
}

func (s *Service) buildController(ctx context.Context, event *gatherly.Event, attempt *journal.Attempt, req SubmitRequest) (*registration.Controller, error) {
	attemptID := attempt.AttemptID

	opts := registration.Options{
		ThemeColor: s.ThemeColor,
		Checkout:   s.Checkout,
		OnPending: func(result gatherly.RegistrationResult) {
			s.Logger.LogCheckout("PENDING", result.OrderID, fmt.Sprintf("attempt %s awaiting payment", attemptID))
			attempt.RegistrationID = result.RegistrationID
			attempt.OrderID = result.OrderID
			if err := s.Journal.MarkPending(ctx, attemptID, result.RegistrationID, result.OrderID, float64(result.Amount), result.Currency); err != nil {
				s.Logger.Error("JOURNAL", fmt.Sprintf("Failed to mark attempt %s pending: %v", attemptID, err))
			}
			if err := s.Stream.PublishPending(ctx, *attempt); err != nil {
				s.Logger.Error("STREAM", fmt.Sprintf("Failed to publish pending for %s: %v", attemptID, err))
			}
		},
		OnSuccess: func(registrationID string) {
			attempt.RegistrationID = registrationID
		},
	}

	ctrl, err := registration.NewControllerWithEvent(s.API, event, opts)
	if err != nil {
		return nil, err
	}

	ctrl.SetName(req.Name)
	ctrl.SetEmail(req.Email)
	ctrl.SetPhone(req.Phone)

	if event.IsTeamEvent {
		ctrl.SetTeamName(req.TeamName)
		for _, member := range req.TeamMembers {
			i := ctrl.AddTeamMember()
			if err := ctrl.SetTeamMember(i, member); err != nil {
				return nil, err
			}
		}
	}

	for name, value := range req.CustomFields {
		if err := ctrl.SetCustomField(name, value); err != nil {
			return nil, err
		}
	}
	for name, collect := range req.CollectDefaults {
		ctrl.SetCollectDefault(name, collect)
	}

	if req.SpecialPrice != "" {
		if err := ctrl.SelectTier(req.SpecialPrice); err != nil {
			return nil, err
		}
	}
	if req.PromoCode != "" {
		if err := ctrl.ApplyPromo(req.PromoCode); err != nil {
			return nil, err
		}
	}

	return ctrl, nil
}

func (s *Service) journalFailure(ctx context.Context, attempt journal.Attempt, cause error) {
	if err := s.Journal.MarkFailed(ctx, attempt.AttemptID, cause.Error()); err != nil {
		s.Logger.Error("JOURNAL", fmt.Sprintf("Failed to mark attempt %s failed: %v", attempt.AttemptID, err))
	}
}

// Ticket renders the QR confirmation for a completed attempt.
func (s *Service) Ticket(ctx context.Context, attemptID string) ([]byte, error) {
	attempt, err := s.Journal.GetAttemptByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("attempt %s not found: %w", attemptID, err)
	}
	if attempt.Status != journal.StatusCompleted {
		return nil, fmt.Errorf("attempt %s is %s, not completed", attemptID, attempt.Status)
	}

	return s.QR.GenerateEncryptedQR(ticket.Confirmation{
		RegistrationID: attempt.RegistrationID,
		EventID:        attempt.EventID,
		Email:          attempt.Email,
		Code:           utils.GenerateConfirmationCode(),
		IssuedAt:       time.Now(),
	})
}

// Attempts lists journal entries by status for the admin surface.
func (s *Service) Attempts(ctx context.Context, status journal.AttemptStatus) ([]journal.Attempt, error) {
	return s.Journal.ListByStatus(ctx, status)
}
