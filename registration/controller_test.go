package registration_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	gatherly "gatherly-go"
	"gatherly-go/checkout"
	"gatherly-go/registration"
)

// MockAPI mocks the platform client surface the controller uses.
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Get(ctx context.Context, id string) (*gatherly.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gatherly.Event), args.Error(1)
}

func (m *MockAPI) Register(ctx context.Context, id string, req gatherly.RegistrationRequest) (*gatherly.RegistrationResult, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gatherly.RegistrationResult), args.Error(1)
}

func paidEvent() *gatherly.Event {
	return &gatherly.Event{
		ID:    "evt_1",
		Title: "GopherCon",
		Price: 1000,
		PromoCodes: []gatherly.PromoCode{
			{Code: "SAVE10", Type: gatherly.FeePercentage, Value: 10, IsActive: true},
			{Code: "EXPIRED", Type: gatherly.FeeFlat, Value: 100, IsActive: false},
		},
	}
}

func readyController(t *testing.T, api registration.API, event *gatherly.Event, opts registration.Options) *registration.Controller {
	t.Helper()
	ctrl, err := registration.NewControllerWithEvent(api, event, opts)
	require.NoError(t, err)
	ctrl.SetName("Asha")
	ctrl.SetEmail("asha@example.com")
	ctrl.SetPhone("5550100")
	return ctrl
}

func TestLoadFetchesEvent(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", mock.Anything, "evt_1").Return(paidEvent(), nil)

	ctrl := registration.NewController(api, "evt_1", registration.Options{})
	assert.Equal(t, registration.StateLoading, ctrl.State())

	require.NoError(t, ctrl.Load(context.Background()))
	assert.Equal(t, registration.StateReady, ctrl.State())
	assert.Equal(t, "GopherCon", ctrl.Event().Title)
	api.AssertExpectations(t)
}

func TestLoadFailureIsTerminal(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", mock.Anything, "evt_1").Return(nil, errors.New("event not found"))

	var gotErr string
	ctrl := registration.NewController(api, "evt_1", registration.Options{
		OnError: func(msg string) { gotErr = msg },
	})

	err := ctrl.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, registration.StateFailed, ctrl.State())
	assert.Equal(t, "event not found", gotErr)
}

func TestLoadRejectsInvalidCustomFields(t *testing.T) {
	event := paidEvent()
	event.CustomFields = []gatherly.CustomField{
		{Name: "college", Type: gatherly.FieldText},
		{Name: "college", Type: gatherly.FieldText},
	}
	api := new(MockAPI)
	api.On("Get", mock.Anything, "evt_1").Return(event, nil)

	ctrl := registration.NewController(api, "evt_1", registration.Options{})
	err := ctrl.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate custom field")
	assert.Equal(t, registration.StateFailed, ctrl.State())
}

func TestApplyPromoCaseInsensitive(t *testing.T) {
	ctrl := readyController(t, new(MockAPI), paidEvent(), registration.Options{})

	require.NoError(t, ctrl.ApplyPromo("save10"))
	require.NotNil(t, ctrl.AppliedPromo())
	assert.Equal(t, "SAVE10", ctrl.AppliedPromo().Code)
	assert.Empty(t, ctrl.PromoError())
}

func TestApplyPromoInactiveCodeRejected(t *testing.T) {
	ctrl := readyController(t, new(MockAPI), paidEvent(), registration.Options{})

	err := ctrl.ApplyPromo("EXPIRED")
	require.Error(t, err)
	assert.Nil(t, ctrl.AppliedPromo())
	assert.NotEmpty(t, ctrl.PromoError())
}

func TestApplyPromoMissClearsPriorPromo(t *testing.T) {
	ctrl := readyController(t, new(MockAPI), paidEvent(), registration.Options{})

	require.NoError(t, ctrl.ApplyPromo("SAVE10"))
	require.Error(t, ctrl.ApplyPromo("NOPE"))

	assert.Nil(t, ctrl.AppliedPromo())
	assert.NotEmpty(t, ctrl.PromoError())
}

func TestApplyPromoHitClearsPriorError(t *testing.T) {
	ctrl := readyController(t, new(MockAPI), paidEvent(), registration.Options{})

	require.Error(t, ctrl.ApplyPromo("NOPE"))
	require.NoError(t, ctrl.ApplyPromo("SAVE10"))
	assert.Empty(t, ctrl.PromoError())
}

func TestSelectTierUnknownName(t *testing.T) {
	event := paidEvent()
	event.HasSpecialPrices = true
	event.SpecialPrices = []gatherly.SpecialPrice{{Name: "Student", Amount: 500}}
	ctrl := readyController(t, new(MockAPI), event, registration.Options{})

	require.Error(t, ctrl.SelectTier("VIP"))
	require.NoError(t, ctrl.SelectTier("Student"))
	assert.Equal(t, "Student", ctrl.SelectedTier())
}

func TestSubmitBlockedUntilTierSelected(t *testing.T) {
	event := paidEvent()
	event.HasSpecialPrices = true
	event.SpecialPrices = []gatherly.SpecialPrice{{Name: "Student", Amount: 500}}
	ctrl := readyController(t, new(MockAPI), event, registration.Options{})

	assert.False(t, ctrl.CanSubmit())

	require.NoError(t, ctrl.SelectTier("Student"))
	assert.True(t, ctrl.CanSubmit())
}

func TestValidateRequiredCustomFields(t *testing.T) {
	event := paidEvent()
	event.CustomFields = []gatherly.CustomField{
		{Name: "college", Type: gatherly.FieldText, Required: true},
		{Name: "note", Type: gatherly.FieldTextarea},
	}
	ctrl := readyController(t, new(MockAPI), event, registration.Options{})

	err := ctrl.Validate()
	require.Error(t, err)
	var verr *registration.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "college", verr.Field)

	require.NoError(t, ctrl.SetCustomField("college", "MIT"))
	assert.NoError(t, ctrl.Validate())
}

func TestValidateTeamNameRequired(t *testing.T) {
	event := paidEvent()
	event.IsTeamEvent = true
	ctrl := readyController(t, new(MockAPI), event, registration.Options{})

	err := ctrl.Validate()
	require.Error(t, err)

	ctrl.SetTeamName("Go Rangers")
	// Member list may be empty.
	assert.NoError(t, ctrl.Validate())
}

func TestHideTiersRelaxesTierGate(t *testing.T) {
	event := paidEvent()
	event.HasSpecialPrices = true
	event.SpecialPrices = []gatherly.SpecialPrice{{Name: "Student", Amount: 500}}

	ctrl := readyController(t, new(MockAPI), event, registration.Options{HideTiers: true})

	// The embedder manages tiers elsewhere, so no selection is required.
	assert.NoError(t, ctrl.Validate())
	assert.True(t, ctrl.CanSubmit())
}

func TestHideTeamFieldsSkipsTeamNameGate(t *testing.T) {
	event := paidEvent()
	event.IsTeamEvent = true

	ctrl := readyController(t, new(MockAPI), event, registration.Options{HideTeamFields: true})

	assert.NoError(t, ctrl.Validate())
}

func TestHidePromoRejectsPromoInput(t *testing.T) {
	ctrl := readyController(t, new(MockAPI), paidEvent(), registration.Options{HidePromo: true})

	err := ctrl.ApplyPromo("SAVE10")
	require.Error(t, err)
	assert.Nil(t, ctrl.AppliedPromo())
}

func TestValidateHiddenContactFieldsTrustPrefill(t *testing.T) {
	ctrl, err := registration.NewControllerWithEvent(new(MockAPI), paidEvent(), registration.Options{
		HideContactFields: true,
	})
	require.NoError(t, err)

	// Empty contact fields pass because the caller opted to hide them.
	assert.NoError(t, ctrl.Validate())
}

func TestTeamMemberAddRemovePreservesOrder(t *testing.T) {
	event := paidEvent()
	event.IsTeamEvent = true
	ctrl := readyController(t, new(MockAPI), event, registration.Options{})

	for _, name := range []string{"a", "b", "c"} {
		i := ctrl.AddTeamMember()
		require.NoError(t, ctrl.SetTeamMember(i, gatherly.TeamMember{Name: name}))
	}

	require.NoError(t, ctrl.RemoveTeamMember(1))

	members := ctrl.Draft().TeamMembers
	require.Len(t, members, 2)
	assert.Equal(t, "a", members[0].Name)
	assert.Equal(t, "c", members[1].Name)

	require.Error(t, ctrl.RemoveTeamMember(5))
}

func TestSetCustomFieldRejectsUnknownAndBadOption(t *testing.T) {
	event := paidEvent()
	event.CustomFields = []gatherly.CustomField{
		{Name: "size", Type: gatherly.FieldDropdown, Options: []string{"S", "M", "L"}},
	}
	ctrl := readyController(t, new(MockAPI), event, registration.Options{})

	require.Error(t, ctrl.SetCustomField("nope", "x"))
	require.Error(t, ctrl.SetCustomField("size", "XXL"))
	require.NoError(t, ctrl.SetCustomField("size", "M"))
}

func TestSubmitFreeEventCompletesImmediately(t *testing.T) {
	event := &gatherly.Event{ID: "evt_free", Title: "Community Day", IsFree: true}

	api := new(MockAPI)
	api.On("Register", mock.Anything, "evt_free", mock.Anything).
		Return(&gatherly.RegistrationResult{RegistrationID: "reg_1"}, nil).Once()

	var successes []string
	ctrl := readyController(t, api, event, registration.Options{
		OnSuccess: func(id string) { successes = append(successes, id) },
	})

	require.NoError(t, ctrl.Submit(context.Background()))

	assert.Equal(t, registration.StateCompleted, ctrl.State())
	assert.Equal(t, []string{"reg_1"}, successes)
	assert.Equal(t, "reg_1", ctrl.RegistrationID())
	assert.Empty(t, ctrl.PaymentID())
	api.AssertNumberOfCalls(t, "Register", 1)
}

func TestSubmitPaidEventRunsCheckoutAndConfirms(t *testing.T) {
	event := paidEvent()

	api := new(MockAPI)
	api.On("Register", mock.Anything, "evt_1", mock.MatchedBy(func(req gatherly.RegistrationRequest) bool {
		return req.PaymentID == "" && req.PromoCode == "SAVE10"
	})).Return(&gatherly.RegistrationResult{
		RegistrationID: "reg_1",
		OrderID:        "order_1",
		Key:            "k",
		Amount:         90000,
		Currency:       "INR",
	}, nil).Once()
	api.On("Register", mock.Anything, "evt_1", mock.MatchedBy(func(req gatherly.RegistrationRequest) bool {
		return req.PaymentID == "pay_1" && req.OrderID == "order_1" && req.RegistrationID == "reg_1"
	})).Return(&gatherly.RegistrationResult{RegistrationID: "reg_1"}, nil).Once()

	var sequence []string
	var gotOpts checkout.Options
	provider := checkout.ProviderFunc(func(ctx context.Context, opts checkout.Options) (*checkout.Result, error) {
		sequence = append(sequence, "checkout")
		gotOpts = opts
		return &checkout.Result{PaymentID: "pay_1", OrderID: opts.OrderID}, nil
	})

	ctrl := readyController(t, api, event, registration.Options{
		Checkout:  provider,
		OnSuccess: func(id string) { sequence = append(sequence, "success:"+id) },
		OnPending: func(result gatherly.RegistrationResult) { sequence = append(sequence, "pending:"+result.OrderID) },
	})
	require.NoError(t, ctrl.ApplyPromo("SAVE10"))

	breakdown := ctrl.Price()
	assert.Equal(t, 100.0, breakdown.DiscountAmount)
	assert.Equal(t, 900.0, breakdown.Subtotal)
	assert.Equal(t, 900.0, breakdown.TotalAmount)

	require.NoError(t, ctrl.Submit(context.Background()))

	assert.Equal(t, int64(90000), gotOpts.Amount)
	assert.Equal(t, "k", gotOpts.Key)
	assert.Equal(t, "order_1", gotOpts.OrderID)
	assert.Equal(t, "Asha", gotOpts.Prefill.Name)
	assert.Equal(t, "asha@example.com", gotOpts.Prefill.Email)
	assert.Equal(t, "5550100", gotOpts.Prefill.Contact)

	// Success fires only after the confirmation register call resolves.
	assert.Equal(t, []string{"pending:order_1", "checkout", "success:reg_1"}, sequence)
	assert.Equal(t, registration.StateCompleted, ctrl.State())
	assert.Equal(t, "pay_1", ctrl.PaymentID())
	api.AssertExpectations(t)
}

func TestSubmitPaidEventWithoutProviderFailsFast(t *testing.T) {
	api := new(MockAPI)
	api.On("Register", mock.Anything, "evt_1", mock.Anything).
		Return(&gatherly.RegistrationResult{RegistrationID: "reg_1", OrderID: "order_1"}, nil).Once()

	var gotErr string
	ctrl := readyController(t, api, paidEvent(), registration.Options{
		OnError: func(msg string) { gotErr = msg },
	})

	err := ctrl.Submit(context.Background())
	require.ErrorIs(t, err, checkout.ErrProviderMissing)
	assert.Equal(t, registration.StateFailed, ctrl.State())
	assert.NotEmpty(t, gotErr)
	// Draft is retained for retry.
	assert.Equal(t, "Asha", ctrl.Draft().Name)
	api.AssertNumberOfCalls(t, "Register", 1)
}

func TestSubmitConfirmationFailureLeavesOrphanedOrder(t *testing.T) {
	api := new(MockAPI)
	api.On("Register", mock.Anything, "evt_1", mock.MatchedBy(func(req gatherly.RegistrationRequest) bool {
		return req.PaymentID == ""
	})).Return(&gatherly.RegistrationResult{RegistrationID: "reg_1", OrderID: "order_1", Amount: 100000}, nil).Once()
	api.On("Register", mock.Anything, "evt_1", mock.MatchedBy(func(req gatherly.RegistrationRequest) bool {
		return req.PaymentID != ""
	})).Return(nil, errors.New("confirmation timed out")).Once()

	provider := checkout.ProviderFunc(func(ctx context.Context, opts checkout.Options) (*checkout.Result, error) {
		return &checkout.Result{PaymentID: "pay_1", OrderID: opts.OrderID}, nil
	})

	var gotErr string
	ctrl := readyController(t, api, paidEvent(), registration.Options{
		Checkout: provider,
		OnError:  func(msg string) { gotErr = msg },
	})

	err := ctrl.Submit(context.Background())
	require.Error(t, err)

	var confirmErr *registration.ConfirmError
	require.ErrorAs(t, err, &confirmErr)
	assert.Equal(t, "order_1", confirmErr.OrderID)
	assert.Equal(t, "pay_1", confirmErr.PaymentID)
	assert.Equal(t, "reg_1", confirmErr.RegistrationID)

	assert.Equal(t, registration.StateFailed, ctrl.State())
	assert.Contains(t, gotErr, "order_1")
}

func TestSubmitCheckoutFailureRetainsDraft(t *testing.T) {
	api := new(MockAPI)
	api.On("Register", mock.Anything, "evt_1", mock.Anything).
		Return(&gatherly.RegistrationResult{RegistrationID: "reg_1", OrderID: "order_1"}, nil)

	provider := checkout.ProviderFunc(func(ctx context.Context, opts checkout.Options) (*checkout.Result, error) {
		return nil, errors.New("payment cancelled")
	})

	ctrl := readyController(t, api, paidEvent(), registration.Options{Checkout: provider})

	require.Error(t, ctrl.Submit(context.Background()))
	assert.Equal(t, registration.StateFailed, ctrl.State())
	assert.Equal(t, "Asha", ctrl.Draft().Name)
	assert.Equal(t, "payment cancelled", ctrl.LastError())
}

func TestSubmitValidationFailureKeepsFormEditable(t *testing.T) {
	api := new(MockAPI)

	var gotErr string
	ctrl, err := registration.NewControllerWithEvent(api, paidEvent(), registration.Options{
		OnError: func(msg string) { gotErr = msg },
	})
	require.NoError(t, err)

	submitErr := ctrl.Submit(context.Background())
	require.Error(t, submitErr)

	var verr *registration.ValidationError
	require.ErrorAs(t, submitErr, &verr)
	assert.Equal(t, "name", verr.Field)
	assert.NotEmpty(t, gotErr)
	assert.Equal(t, registration.StateReady, ctrl.State())
	api.AssertNumberOfCalls(t, "Register", 0)
}

func TestSubmitRejectedWhileInFlight(t *testing.T) {
	api := new(MockAPI)
	api.On("Register", mock.Anything, "evt_1", mock.Anything).
		Return(&gatherly.RegistrationResult{RegistrationID: "reg_1", OrderID: "order_1"}, nil).Once()
	api.On("Register", mock.Anything, "evt_1", mock.Anything).
		Return(&gatherly.RegistrationResult{RegistrationID: "reg_1"}, nil).Once()

	var ctrl *registration.Controller
	var reentrantErr error
	provider := checkout.ProviderFunc(func(ctx context.Context, opts checkout.Options) (*checkout.Result, error) {
		// A second click while the widget is open must be rejected.
		reentrantErr = ctrl.Submit(ctx)
		return &checkout.Result{PaymentID: "pay_1", OrderID: opts.OrderID}, nil
	})

	ctrl = readyController(t, api, paidEvent(), registration.Options{Checkout: provider})

	require.NoError(t, ctrl.Submit(context.Background()))
	require.Error(t, reentrantErr)
	assert.Contains(t, reentrantErr.Error(), "already in flight")
}

func TestSubmitAfterCompletionRejected(t *testing.T) {
	api := new(MockAPI)
	api.On("Register", mock.Anything, "evt_free", mock.Anything).
		Return(&gatherly.RegistrationResult{RegistrationID: "reg_1"}, nil).Once()

	event := &gatherly.Event{ID: "evt_free", IsFree: true}
	ctrl := readyController(t, api, event, registration.Options{})

	require.NoError(t, ctrl.Submit(context.Background()))
	require.Error(t, ctrl.Submit(context.Background()))
}

func TestRetryAfterFailureReusesDraft(t *testing.T) {
	api := new(MockAPI)
	api.On("Register", mock.Anything, "evt_free", mock.Anything).
		Return(nil, errors.New("temporarily unavailable")).Once()
	api.On("Register", mock.Anything, "evt_free", mock.Anything).
		Return(&gatherly.RegistrationResult{RegistrationID: "reg_1"}, nil).Once()

	event := &gatherly.Event{ID: "evt_free", IsFree: true}

	var errCount int
	ctrl := readyController(t, api, event, registration.Options{
		OnError: func(string) { errCount++ },
	})

	require.Error(t, ctrl.Submit(context.Background()))
	assert.Equal(t, registration.StateFailed, ctrl.State())

	require.NoError(t, ctrl.Submit(context.Background()))
	assert.Equal(t, registration.StateCompleted, ctrl.State())
	assert.Equal(t, 1, errCount)
}
