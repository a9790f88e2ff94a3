package journal

import (
	"time"

	"github.com/uptrace/bun"
)

// AttemptStatus is the lifecycle of one journaled submission.
type AttemptStatus string

const (
	// StatusSubmitted: register call issued, no response recorded yet.
	StatusSubmitted AttemptStatus = "submitted"
	// StatusPending: the platform issued a pending order; checkout is in
	// flight.
	StatusPending AttemptStatus = "pending"
	// StatusCompleted: registration confirmed.
	StatusCompleted AttemptStatus = "completed"
	// StatusFailed: the attempt failed before any money moved.
	StatusFailed AttemptStatus = "failed"
	// StatusOrphaned: checkout succeeded but the confirmation call failed.
	// The pending order remains on the platform and must be reconciled out
	// of band.
	StatusOrphaned AttemptStatus = "orphaned"
)

// Attempt is one journaled registration submission.
type Attempt struct {
	bun.BaseModel `bun:"table:registration_attempts"`

	AttemptID      string        `bun:"attempt_id,pk" json:"attemptId"`
	EventID        string        `bun:"event_id,notnull" json:"eventId"`
	Email          string        `bun:"email" json:"email"`
	RegistrationID string        `bun:"registration_id,nullzero" json:"registrationId,omitempty"`
	OrderID        string        `bun:"order_id,nullzero" json:"orderId,omitempty"`
	PaymentID      string        `bun:"payment_id,nullzero" json:"paymentId,omitempty"`
	Amount         float64       `bun:"amount" json:"amount"`
	Currency       string        `bun:"currency,nullzero" json:"currency,omitempty"`
	Status         AttemptStatus `bun:"status,notnull" json:"status"`
	Reason         string        `bun:"reason,nullzero" json:"reason,omitempty"`
	CreatedAt      time.Time     `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt      time.Time     `bun:"updated_at,nullzero" json:"updatedAt,omitempty"`
}
