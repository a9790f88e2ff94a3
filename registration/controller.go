// Package registration drives one event-registration attempt end to end:
// loading event metadata, tracking attendee input, deriving the price
// breakdown and running the submit/checkout/confirm protocol against the
// platform API.
package registration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gatherly "gatherly-go"
	"gatherly-go/checkout"
)

// State is the controller's position in the registration lifecycle.
type State int

const (
	StateLoading State = iota
	StateReady
	StateSubmitting
	StateAwaitingPayment
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	case StateAwaitingPayment:
		return "awaiting_payment"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const defaultThemeColor = "#2563eb"

// API is the slice of the platform client the controller needs. The SDK's
// EventsService satisfies it.
type API interface {
	Get(ctx context.Context, id string) (*gatherly.Event, error)
	Register(ctx context.Context, id string, req gatherly.RegistrationRequest) (*gatherly.RegistrationResult, error)
}

var _ API = (*gatherly.EventsService)(nil)

// Prefill carries caller-supplied attendee details. When contact fields are
// hidden these values are trusted as-is.
type Prefill struct {
	Name  string
	Email string
	Phone string
}

// Options parameterizes one form instance. The zero value renders the full
// form: the Hide flags switch individual sections off for embedders that
// collect those inputs elsewhere. Hiding a section relaxes its validation
// gate; HidePromo additionally rejects promo input outright.
type Options struct {
	HideContactFields bool
	HideTeamFields    bool
	HideTiers         bool
	HidePromo         bool

	Prefill    Prefill
	ThemeColor string

	// Checkout handles the external payment step for pending orders.
	// Leaving it nil is a configuration error surfaced at submit time for
	// paid events.
	Checkout checkout.Provider

	// OnSuccess fires exactly once when the registration completes.
	// OnError fires each time the attempt fails; the draft is retained so
	// the attendee can retry.
	OnSuccess func(registrationID string)
	OnError   func(message string)

	// OnPending fires when the platform issues a pending order, before the
	// checkout provider is opened. Embedders use it to journal the order.
	OnPending func(result gatherly.RegistrationResult)
}

// ConfirmError reports a confirmation failure after a successful checkout.
// The pending order referenced by OrderID is left on the platform and must
// be reconciled out of band.
type ConfirmError struct {
	RegistrationID string
	OrderID        string
	PaymentID      string
	Err            error
}

func (e *ConfirmError) Error() string {
	return fmt.Sprintf("payment captured but confirmation failed for order %s: %v", e.OrderID, e.Err)
}

func (e *ConfirmError) Unwrap() error { return e.Err }

// Controller is the stateful form driver for a single registration attempt.
// It is not safe for concurrent use; each form instance owns its own draft
// and derived pricing.
type Controller struct {
	api     API
	eventID string
	opts    Options

	event  *gatherly.Event
	schema *FieldSchema
	draft  Draft

	selectedTier string
	appliedPromo *gatherly.PromoCode
	promoErr     string

	state          State
	lastErr        string
	registrationID string
	paymentID      string
}

// NewController prepares a controller that will fetch the event on Load.
func NewController(api API, eventID string, opts Options) *Controller {
	c := &Controller{
		api:     api,
		eventID: eventID,
		opts:    opts,
		draft:   newDraft(),
		state:   StateLoading,
	}
	c.applyPrefill()
	return c
}

// NewControllerWithEvent builds a controller from already-fetched event
// metadata, skipping the Loading state.
func NewControllerWithEvent(api API, event *gatherly.Event, opts Options) (*Controller, error) {
	c := NewController(api, event.ID, opts)
	if err := c.attachEvent(event); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Controller) applyPrefill() {
	c.draft.Name = c.opts.Prefill.Name
	c.draft.Email = c.opts.Prefill.Email
	c.draft.Phone = c.opts.Prefill.Phone
}

func (c *Controller) attachEvent(event *gatherly.Event) error {
	schema, err := NewFieldSchema(event.CustomFields)
	if err != nil {
		return fmt.Errorf("invalid custom fields for event %s: %w", event.ID, err)
	}
	c.event = event
	c.schema = schema
	c.state = StateReady
	return nil
}

// Load fetches the event metadata. A fetch failure is terminal for this
// controller instance; there is no automatic retry.
func (c *Controller) Load(ctx context.Context) error {
	if c.event != nil {
		return nil
	}

	event, err := c.api.Get(ctx, c.eventID)
	if err != nil {
		return c.fail(err)
	}
	if err := c.attachEvent(event); err != nil {
		return c.fail(err)
	}
	return nil
}

// ---------------- draft input ----------------

// SetName sets the attendee name.
func (c *Controller) SetName(name string) { c.draft.Name = name }

// SetEmail sets the attendee email.
func (c *Controller) SetEmail(email string) { c.draft.Email = email }

// SetPhone sets the attendee phone number.
func (c *Controller) SetPhone(phone string) { c.draft.Phone = phone }

// SetTeamName sets the team name for team events.
func (c *Controller) SetTeamName(name string) { c.draft.TeamName = name }

// AddTeamMember appends a blank roster entry and returns its index.
func (c *Controller) AddTeamMember() int {
	c.draft.TeamMembers = append(c.draft.TeamMembers, gatherly.TeamMember{})
	return len(c.draft.TeamMembers) - 1
}

// SetTeamMember replaces the roster entry at index i.
func (c *Controller) SetTeamMember(i int, member gatherly.TeamMember) error {
	if i < 0 || i >= len(c.draft.TeamMembers) {
		return fmt.Errorf("team member index %d out of range", i)
	}
	c.draft.TeamMembers[i] = member
	return nil
}

// RemoveTeamMember deletes exactly the entry at index i, preserving the
// order of the rest.
func (c *Controller) RemoveTeamMember(i int) error {
	if i < 0 || i >= len(c.draft.TeamMembers) {
		return fmt.Errorf("team member index %d out of range", i)
	}
	c.draft.TeamMembers = append(c.draft.TeamMembers[:i], c.draft.TeamMembers[i+1:]...)
	return nil
}

// SetCustomField records a value for one of the event's custom fields.
func (c *Controller) SetCustomField(name, value string) error {
	if c.schema == nil {
		return errors.New("event is not loaded")
	}
	field, ok := c.schema.Lookup(name)
	if !ok {
		return &ValidationError{Field: name, Reason: "unknown field"}
	}
	if field.Type == gatherly.FieldDropdown && value != "" {
		valid := false
		for _, opt := range field.Options {
			if opt == value {
				valid = true
				break
			}
		}
		if !valid {
			return &ValidationError{Field: name, Reason: fmt.Sprintf("%q is not one of the field's options", value)}
		}
	}
	c.draft.CustomValues[name] = value
	return nil
}

// SetCollectDefault records a default-collection preference.
func (c *Controller) SetCollectDefault(name string, collect bool) {
	c.draft.CollectDefaults[name] = collect
}

// SelectTier selects a pricing tier by name.
func (c *Controller) SelectTier(name string) error {
	if c.event == nil {
		return errors.New("event is not loaded")
	}
	for _, tier := range c.event.SpecialPrices {
		if tier.Name == name {
			c.selectedTier = name
			return nil
		}
	}
	return &ValidationError{Field: "specialPrice", Reason: fmt.Sprintf("unknown tier %q", name)}
}

// ClearTier drops the tier selection.
func (c *Controller) ClearTier() { c.selectedTier = "" }

// ApplyPromo looks up code case-insensitively against the event's promo
// list, accepting only active entries. A miss clears any previously applied
// promo and records a user-visible error; a hit clears any prior error.
func (c *Controller) ApplyPromo(code string) error {
	if c.event == nil {
		return errors.New("event is not loaded")
	}
	if c.opts.HidePromo {
		return &ValidationError{Field: "promoCode", Reason: "promo input is disabled for this form"}
	}

	trimmed := strings.TrimSpace(code)
	for i := range c.event.PromoCodes {
		promo := c.event.PromoCodes[i]
		if strings.EqualFold(promo.Code, trimmed) && promo.IsActive {
			c.appliedPromo = &promo
			c.promoErr = ""
			return nil
		}
	}

	c.appliedPromo = nil
	c.promoErr = "Invalid or inactive promo code"
	return &ValidationError{Field: "promoCode", Reason: c.promoErr}
}

// ClearPromo drops the applied promo and any promo error.
func (c *Controller) ClearPromo() {
	c.appliedPromo = nil
	c.promoErr = ""
}

// ---------------- derived state ----------------

// Price recomputes the breakdown from the current selections. It is derived
// on every call and never cached.
func (c *Controller) Price() Breakdown {
	return ComputeBreakdown(c.event, c.tier(), c.appliedPromo)
}

func (c *Controller) tier() *gatherly.SpecialPrice {
	if c.event == nil || c.selectedTier == "" {
		return nil
	}
	for i := range c.event.SpecialPrices {
		if c.event.SpecialPrices[i].Name == c.selectedTier {
			return &c.event.SpecialPrices[i]
		}
	}
	return nil
}

// State reports the controller's lifecycle state.
func (c *Controller) State() State { return c.state }

// Event returns the loaded event, or nil while loading.
func (c *Controller) Event() *gatherly.Event { return c.event }

// Schema returns the validated custom-field schema, or nil while loading.
func (c *Controller) Schema() *FieldSchema { return c.schema }

// Draft returns a copy of the current draft.
func (c *Controller) Draft() Draft { return c.draft.clone() }

// SelectedTier returns the selected tier name, or empty.
func (c *Controller) SelectedTier() string { return c.selectedTier }

// AppliedPromo returns the applied promo, or nil.
func (c *Controller) AppliedPromo() *gatherly.PromoCode { return c.appliedPromo }

// PromoError returns the user-visible promo error, or empty.
func (c *Controller) PromoError() string { return c.promoErr }

// LastError returns the user-visible message from the most recent failure.
func (c *Controller) LastError() string { return c.lastErr }

// RegistrationID returns the completed registration's id, or empty before
// completion.
func (c *Controller) RegistrationID() string { return c.registrationID }

// PaymentID returns the checkout payment id for a completed paid
// registration, or empty for free registrations and before completion.
func (c *Controller) PaymentID() string { return c.paymentID }

// Options returns the form's capability flags and prefill.
func (c *Controller) Options() Options { return c.opts }

// ---------------- validation ----------------

// Validate applies the submission gates: contact fields unless hidden,
// required custom fields, a tier selection when the event declares special
// pricing, and a team name for team events.
func (c *Controller) Validate() error {
	if c.event == nil {
		return errors.New("event is not loaded")
	}

	if !c.opts.HideContactFields {
		if strings.TrimSpace(c.draft.Name) == "" {
			return &ValidationError{Field: "name", Reason: "required"}
		}
		if strings.TrimSpace(c.draft.Email) == "" {
			return &ValidationError{Field: "email", Reason: "required"}
		}
		if strings.TrimSpace(c.draft.Phone) == "" {
			return &ValidationError{Field: "phone", Reason: "required"}
		}
	}

	for _, field := range c.schema.Fields() {
		if !field.Required || field.Type == gatherly.FieldInfo {
			continue
		}
		if strings.TrimSpace(c.draft.CustomValues[field.Name]) == "" {
			return &ValidationError{Field: field.Name, Reason: "required"}
		}
	}

	if c.event.HasSpecialPrices && !c.event.IsFree && !c.opts.HideTiers && c.selectedTier == "" {
		return &ValidationError{Field: "specialPrice", Reason: "select a ticket tier"}
	}

	if c.event.IsTeamEvent && !c.opts.HideTeamFields && strings.TrimSpace(c.draft.TeamName) == "" {
		return &ValidationError{Field: "teamName", Reason: "required"}
	}

	return nil
}

// CanSubmit reports whether the submit control should be enabled.
func (c *Controller) CanSubmit() bool {
	if c.state != StateReady && c.state != StateFailed {
		return false
	}
	return c.Validate() == nil
}

// ---------------- submission ----------------

// Submit runs the registration protocol: register, and for pending orders
// hand the checkout provider control before confirming with a second
// register call. At most one submission is in flight at a time. On failure
// the draft is retained and the controller returns to an editable state.
func (c *Controller) Submit(ctx context.Context) error {
	switch c.state {
	case StateSubmitting, StateAwaitingPayment:
		return errors.New("a submission is already in flight")
	case StateCompleted:
		return errors.New("registration already completed")
	case StateLoading:
		return errors.New("event is not loaded")
	}

	if err := c.Validate(); err != nil {
		c.lastErr = err.Error()
		if c.opts.OnError != nil {
			c.opts.OnError(c.lastErr)
		}
		return err
	}

	payload := c.buildPayload()
	c.state = StateSubmitting

	result, err := c.api.Register(ctx, c.event.ID, payload)
	if err != nil {
		return c.fail(err)
	}

	if !result.Pending() {
		c.complete(result.RegistrationID)
		return nil
	}

	c.state = StateAwaitingPayment
	if c.opts.OnPending != nil {
		c.opts.OnPending(*result)
	}

	if c.opts.Checkout == nil {
		return c.fail(checkout.ErrProviderMissing)
	}

	paid, err := c.opts.Checkout.Open(ctx, c.checkoutOptions(result))
	if err != nil {
		return c.fail(err)
	}

	// Confirm with the payment details. If this call fails after a
	// successful checkout the pending order is left on the server to be
	// reconciled out of band.
	confirm := payload
	confirm.PaymentID = paid.PaymentID
	confirm.OrderID = result.OrderID
	confirm.RegistrationID = result.RegistrationID
	if _, err := c.api.Register(ctx, c.event.ID, confirm); err != nil {
		return c.fail(&ConfirmError{
			RegistrationID: result.RegistrationID,
			OrderID:        result.OrderID,
			PaymentID:      paid.PaymentID,
			Err:            err,
		})
	}

	c.paymentID = paid.PaymentID
	c.complete(result.RegistrationID)
	return nil
}

func (c *Controller) buildPayload() gatherly.RegistrationRequest {
	req := gatherly.RegistrationRequest{
		Name:         c.draft.Name,
		Email:        c.draft.Email,
		Phone:        c.draft.Phone,
		SpecialPrice: c.selectedTier,
	}
	if c.appliedPromo != nil {
		req.PromoCode = c.appliedPromo.Code
	}
	if c.event.IsTeamEvent {
		req.TeamName = c.draft.TeamName
		req.TeamMembers = append([]gatherly.TeamMember(nil), c.draft.TeamMembers...)
	}
	if len(c.draft.CustomValues) > 0 {
		req.CustomFields = make(map[string]string, len(c.draft.CustomValues))
		for k, v := range c.draft.CustomValues {
			req.CustomFields[k] = v
		}
	}
	if len(c.draft.CollectDefaults) > 0 {
		req.CollectDefaults = make(map[string]bool, len(c.draft.CollectDefaults))
		for k, v := range c.draft.CollectDefaults {
			req.CollectDefaults[k] = v
		}
	}
	return req
}

func (c *Controller) checkoutOptions(result *gatherly.RegistrationResult) checkout.Options {
	color := c.opts.ThemeColor
	if color == "" {
		color = defaultThemeColor
	}
	return checkout.Options{
		Key:         result.Key,
		Amount:      result.Amount,
		Currency:    result.Currency,
		Name:        c.event.Title,
		Description: fmt.Sprintf("Registration for %s", c.event.Title),
		OrderID:     result.OrderID,
		Prefill: checkout.Prefill{
			Name:    c.draft.Name,
			Email:   c.draft.Email,
			Contact: c.draft.Phone,
		},
		Theme: checkout.Theme{Color: color},
	}
}

func (c *Controller) fail(err error) error {
	c.state = StateFailed
	c.lastErr = err.Error()
	if c.opts.OnError != nil {
		c.opts.OnError(c.lastErr)
	}
	return err
}

func (c *Controller) complete(registrationID string) {
	c.state = StateCompleted
	c.lastErr = ""
	c.registrationID = registrationID
	if c.opts.OnSuccess != nil {
		c.opts.OnSuccess(registrationID)
	}
}
