package gatherly

// FeeType describes how a platform fee or promo discount is applied.
type FeeType string

const (
	FeeFlat       FeeType = "flat"
	FeePercentage FeeType = "percentage"
)

// CustomFieldType is the closed set of input types an organizer can attach
// to an event's registration form.
type CustomFieldType string

const (
	FieldText     CustomFieldType = "text"
	FieldEmail    CustomFieldType = "email"
	FieldPhone    CustomFieldType = "phone"
	FieldDropdown CustomFieldType = "dropdown"
	FieldNumber   CustomFieldType = "number"
	FieldDate     CustomFieldType = "date"
	FieldTextarea CustomFieldType = "textarea"
	FieldInfo     CustomFieldType = "info"
	FieldFile     CustomFieldType = "file"
)

// SpecialPrice is a named pricing tier for an event.
type SpecialPrice struct {
	Name            string  `json:"name"`
	Amount          float64 `json:"amount"`
	EarlyBirdAmount float64 `json:"earlyBirdAmount,omitempty"`
	RequiresValidID bool    `json:"requiresValidId,omitempty"`
}

// PromoCode is a discount code attached to an event. Codes are matched
// case-insensitively and only active codes may be applied.
type PromoCode struct {
	Code     string  `json:"code"`
	Type     FeeType `json:"type"`
	Value    float64 `json:"value"`
	IsActive bool    `json:"isActive"`
}

// CustomField is an organizer-defined registration field. Options is
// required and non-empty when Type is FieldDropdown.
type CustomField struct {
	Name     string          `json:"name"`
	Type     CustomFieldType `json:"type"`
	Required bool            `json:"required"`
	Options  []string        `json:"options,omitempty"`
}

// Event is the platform's event resource as returned by the events API.
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`

	IsFree   bool    `json:"isFree"`
	Price    float64 `json:"price"`
	Currency string  `json:"currency,omitempty"`

	HasSpecialPrices bool           `json:"hasSpecialPrices"`
	SpecialPrices    []SpecialPrice `json:"specialPrices,omitempty"`
	PromoCodes       []PromoCode    `json:"promoCodes,omitempty"`
	CustomFields     []CustomField  `json:"customFields,omitempty"`

	HasPlatformFee        bool    `json:"hasPlatformFee"`
	PassPlatformFeeToUser bool    `json:"passPlatformFeeToUser"`
	PlatformFeeType       FeeType `json:"platformFeeType,omitempty"`
	PlatformFee           float64 `json:"platformFee,omitempty"`

	IsTeamEvent bool `json:"isTeamEvent"`
	MinTeamSize int  `json:"minTeamSize,omitempty"`
	MaxTeamSize int  `json:"maxTeamSize,omitempty"`
}

// TeamMember is a single roster entry for a team registration.
type TeamMember struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// RegistrationRequest is the payload for the register endpoint. The same
// shape is used twice in a paid flow: first to create the registration (and
// possibly a pending order), then again with PaymentID/OrderID/RegistrationID
// filled in to confirm the checkout.
type RegistrationRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	TeamName    string       `json:"teamName,omitempty"`
	TeamMembers []TeamMember `json:"teamMembers,omitempty"`

	CustomFields    map[string]string `json:"customFields,omitempty"`
	CollectDefaults map[string]bool   `json:"collectDefaults,omitempty"`

	SpecialPrice string `json:"specialPrice,omitempty"`
	PromoCode    string `json:"promoCode,omitempty"`

	PaymentID      string `json:"paymentId,omitempty"`
	OrderID        string `json:"orderId,omitempty"`
	RegistrationID string `json:"registrationId,omitempty"`

	// Source is stamped by the client on every register call.
	Source string `json:"source,omitempty"`
}

// RegistrationResult is the register endpoint's response. A zero OrderID
// means the registration completed immediately (free event or zero balance);
// otherwise a pending order was created and the checkout fields are set.
type RegistrationResult struct {
	RegistrationID string  `json:"registrationId"`
	OrderID        string  `json:"orderId,omitempty"`
	Key            string  `json:"key,omitempty"`
	Amount         int64   `json:"amount,omitempty"`
	Currency       string  `json:"currency,omitempty"`
	AmountDue      float64 `json:"amountDue,omitempty"`
}

// Pending reports whether the result carries a server-side order awaiting
// external payment confirmation.
func (r *RegistrationResult) Pending() bool {
	return r != nil && r.OrderID != ""
}

// VerifyPaymentRequest is the payload for the payment verification endpoint.
type VerifyPaymentRequest struct {
	PaymentID string `json:"paymentId"`
	OrderID   string `json:"orderId"`
	Signature string `json:"signature"`
}

// PaymentVerification is the verification endpoint's response.
type PaymentVerification struct {
	Verified  bool   `json:"verified"`
	Status    string `json:"status,omitempty"`
	PaymentID string `json:"paymentId,omitempty"`
	OrderID   string `json:"orderId,omitempty"`
}
