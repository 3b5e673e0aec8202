package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

func completedGateway(ref string) PaymentGateway {
	return GatewayFunc(func(_ context.Context, _ PaymentRequest) (PaymentOutcome, error) {
		return Completed(ref), nil
	})
}

func TestFlow_StartPrefillsFromProfile(t *testing.T) {
	fx := newFlowFixture()
	options := testOptions()
	viewer := domain.NewViewer("user-1", &domain.Profile{UserID: "user-1", FirstName: "Ada", LastName: "Obi", Email: "ada@example.com"})

	s := fx.flow.Start(viewer, options)
	options[0].Price = domain.NewMoney(99)

	assert.Equal(t, "id-1", s.ID)
	assert.Equal(t, domain.CheckoutStatusFormEntry, s.Status)
	assert.Equal(t, "Ada", s.Form.FirstName)
	assert.Equal(t, "ada@example.com", s.Form.Email)
	assert.True(t, s.Options[0].Price.Equal(domain.NewMoney(1500)), "options are frozen at start")
}

func TestFlow_ProceedInvalidFormHasNoSideEffects(t *testing.T) {
	fx := newFlowFixture(line("p1", "Serum", 12000, 1))
	s := fx.readySession()
	s.Form.Phone = ""

	_, err := fx.flow.Proceed(context.Background(), s)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, FieldPhone, ve.Fields.First())
	assert.Equal(t, domain.CheckoutStatusFormEntry, s.Status)
	assert.Nil(t, s.Cart)
	assert.Empty(t, fx.calls)
}

func TestFlow_ProceedEmptyCart(t *testing.T) {
	fx := newFlowFixture()
	s := fx.readySession()

	_, err := fx.flow.Proceed(context.Background(), s)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, domain.CheckoutStatusFormEntry, s.Status)
}

func TestFlow_ProceedOpensMethodChoice(t *testing.T) {
	fx := newFlowFixture(line("p1", "Serum", 12000, 1))
	s := fx.readySession()

	choice, err := fx.flow.Proceed(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, domain.CheckoutStatusMethodChoice, s.Status)
	require.Len(t, choice.Methods, 2)
	assert.Equal(t, domain.PaymentMethodPaystack, choice.Methods[0].ID)
	assert.Equal(t, domain.PaymentMethodBankTransfer, choice.Methods[1].ID)
	assert.Equal(t, "₦13,500", choice.Totals.TotalDisplay)
	require.NotNil(t, s.Cart)

	again, err := fx.flow.Proceed(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, choice.Totals.Total, again.Totals.Total)
}

func TestFlow_EditAfterProceedReturnsToForm(t *testing.T) {
	fx := newFlowFixture(line("p1", "Serum", 12000, 1))
	s := fx.readySession()
	_, err := fx.flow.Proceed(context.Background(), s)
	require.NoError(t, err)

	require.NoError(t, s.SelectDelivery("pickup", ""))

	assert.Equal(t, domain.CheckoutStatusFormEntry, s.Status)
	assert.Nil(t, s.Cart)
}

func TestFlow_SummaryUsesLiveCartUntilPinned(t *testing.T) {
	fx := newFlowFixture(line("p1", "Serum", 12000, 1))
	s := fx.readySession()

	sum, err := fx.flow.Summary(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "₦13,500", sum.Totals.TotalDisplay)

	_, err = fx.flow.Proceed(context.Background(), s)
	require.NoError(t, err)
	fx.cart.Lines = append(fx.cart.Lines, line("p2", "Toner", 5000, 1))

	sum, err = fx.flow.Summary(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "₦13,500", sum.Totals.TotalDisplay)
}

func TestFlow_StartPaystackBuildsWidgetParams(t *testing.T) {
	fx := newFlowFixture(line("p1", "Serum", 6000, 2))
	s := fx.readySession()
	_, err := fx.flow.Proceed(context.Background(), s)
	require.NoError(t, err)

	init, err := fx.flow.StartPaystack(context.Background(), s)
	require.NoError(t, err)

	assert.Equal(t, domain.CheckoutStatusPaystack, s.Status)
	assert.Equal(t, "pk_test_123", init.PublicKey)
	assert.Equal(t, "id-2", init.Request.Reference)
	assert.Equal(t, int64(1350000), init.Request.AmountMinor)
	assert.Equal(t, "NGN", init.Request.Currency)
	assert.Equal(t, "ada@example.com", init.Request.Email)

	fields := map[string]string{}
	for _, f := range init.Request.Metadata.CustomFields {
		fields[f.VariableName] = f.Value
	}
	assert.Equal(t, "Ada Obi", fields["customer_name"])
	assert.Equal(t, "08031234567", fields["phone"])
	assert.Equal(t, "12 Marina Road", fields["address"])
	assert.Equal(t, "Lagos Island", fields["city"])
	assert.Equal(t, "Lagos", fields["state"])
	assert.Equal(t, "Nigeria", fields["country"])

	assert.ErrorIs(t, s.SelectCountry("Ghana"), ErrIllegalTransition)
}

func TestFlow_StartPaystackReopensWithSameReference(t *testing.T) {
	fx := newFlowFixture(line("p1", "Serum", 12000, 1))
	s := fx.readySession()
	_, err := fx.flow.Proceed(context.Background(), s)
	require.NoError(t, err)

	first, err := fx.flow.StartPaystack(context.Background(), s)
	require.NoError(t, err)

	// the widget tab was reloaded and no callback ever arrived
	again, err := fx.flow.StartPaystack(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusPaystack, s.Status)
	assert.Equal(t, first.Request.Reference, again.Request.Reference)
	assert.Equal(t, first.Request.AmountMinor, again.Request.AmountMinor)

	res, err := fx.flow.CompletePaystack(context.Background(), s, completedGateway(first.Request.Reference))
	require.NoError(t, err)
	assert.True(t, res.OrderRecorded)
	assert.Len(t, fx.orders.Orders, 1)
}

func TestFlow_StartPaystackRequiresMethodChoice(t *testing.T) {
	fx := newFlowFixture(line("p1", "Serum", 6000, 2))
	s := fx.readySession()

	_, err := fx.flow.StartPaystack(context.Background(), s)
	assert.ErrorIs(t, err, ErrIllegalTransition)
}

func TestFlow_CompletePaystackRecordsOrderThenClearsCart(t *testing.T) {
	fx := newFlowFixture(line("p1", "Serum", 12000, 1))
	s := fx.readySession()
	_, err := fx.flow.Proceed(context.Background(), s)
	require.NoError(t, err)
	_, err = fx.flow.StartPaystack(context.Background(), s)
	require.NoError(t, err)

	res, err := fx.flow.CompletePaystack(context.Background(), s, completedGateway("txn_abc"))
	require.NoError(t, err)

	require.Len(t, fx.orders.Orders, 1)
	order := fx.orders.Orders[0]
	assert.Equal(t, "txn_abc", order.Payment.TransactionID)
	assert.Equal(t, domain.PaymentStatusCompleted, order.Payment.Status)
	assert.Equal(t, domain.PaymentMethodPaystack, order.Payment.Method)
	assert.True(t, order.Total.Equal(domain.NewMoney(13500)))
	assert.True(t, order.TotalsConsistent())

	assert.True(t, res.OrderRecorded)
	assert.Empty(t, res.Alert)
	assert.Equal(t, []string{"create_order", "clear"}, fx.calls)
	assert.Empty(t, fx.cart.Lines)
	assert.Equal(t, domain.CheckoutStatusCompleted, s.Status)
	assert.True(t, s.PaymentDone)
	assert.Equal(t, order.ID, s.OrderID)
}

func TestFlow_CompletePaystackWriteFailureStillClearsCart(t *testing.T) {
	fx := newFlowFixture(line("p1", "Serum", 12000, 1))
	fx.orders.Err = errors.New("document store unavailable")
	s := fx.readySession()
	_, err := fx.flow.Proceed(context.Background(), s)
	require.NoError(t, err)
	_, err = fx.flow.StartPaystack(context.Background(), s)
	require.NoError(t, err)

	res, err := fx.flow.CompletePaystack(context.Background(), s, completedGateway("txn_abc"))
	require.NoError(t, err)

	assert.False(t, res.OrderRecorded)
	assert.Contains(t, res.Alert, "txn_abc")
	assert.Contains(t, res.Alert, "support@glow.test")
	assert.Equal(t, []string{"create_order", "clear"}, fx.calls)
	assert.Empty(t, fx.cart.Lines)
	assert.True(t, s.PaymentDone)
	assert.Empty(t, s.OrderID)
}

func TestFlow_CompletePaystackCancelledReopensChoice(t *testing.T) {
	fx := newFlowFixture(line("p1", "Serum", 12000, 1))
	s := fx.readySession()
	_, err := fx.flow.Proceed(context.Background(), s)
	require.NoError(t, err)
	_, err = fx.flow.StartPaystack(context.Background(), s)
	require.NoError(t, err)

	cancel := GatewayFunc(func(_ context.Context, _ PaymentRequest) (PaymentOutcome, error) {
		return Cancelled(), nil
	})
	res, err := fx.flow.CompletePaystack(context.Background(), s, cancel)
	require.NoError(t, err)

	assert.True(t, res.Cancelled)
	require.NotNil(t, res.MethodChoice)
	assert.Equal(t, domain.CheckoutStatusMethodChoice, s.Status)
	assert.Empty(t, s.PaymentReference)
	assert.Empty(t, fx.orders.Orders)
	assert.Empty(t, fx.calls)
	assert.NotEmpty(t, fx.cart.Lines)
	assert.False(t, s.PaymentDone)
}

func TestFlow_CompletePaystackGatewayError(t *testing.T) {
	fx := newFlowFixture(line("p1", "Serum", 12000, 1))
	s := fx.readySession()
	_, err := fx.flow.Proceed(context.Background(), s)
	require.NoError(t, err)
	_, err = fx.flow.StartPaystack(context.Background(), s)
	require.NoError(t, err)

	boom := errors.New("verify failed")
	failing := GatewayFunc(func(_ context.Context, _ PaymentRequest) (PaymentOutcome, error) {
		return PaymentOutcome{}, boom
	})
	_, err = fx.flow.CompletePaystack(context.Background(), s, failing)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domain.CheckoutStatusPaystack, s.Status)
	assert.Empty(t, fx.calls)
}

func TestFlow_BankTransferConfirm(t *testing.T) {
	fx := newFlowFixture(line("p1", "Serum", 12000, 1))
	s := fx.readySession()
	_, err := fx.flow.Proceed(context.Background(), s)
	require.NoError(t, err)

	instr, err := fx.flow.StartBankTransfer(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "0123456789", instr.Bank.AccountNumber)
	assert.Equal(t, "₦13,500", instr.Amount)

	res, err := fx.flow.ConfirmBankTransfer(context.Background(), s)
	require.NoError(t, err)

	require.Len(t, fx.orders.Orders, 1)
	order := fx.orders.Orders[0]
	assert.Equal(t, domain.PaymentMethodBankTransfer, order.Payment.Method)
	assert.Equal(t, domain.PaymentStatusPending, order.Payment.Status)
	assert.Empty(t, order.Payment.TransactionID)
	assert.True(t, order.Total.Equal(domain.NewMoney(13500)))
	assert.Empty(t, fx.cart.Lines)
	assert.Equal(t, domain.CheckoutStatusCompleted, s.Status)
	assert.True(t, s.PaymentDone)
	assert.Contains(t, res.WhatsAppLink, "https://wa.me/2348012345678?text=")
}

func TestFlow_BankTransferWriteFailureKeepsCart(t *testing.T) {
	fx := newFlowFixture(line("p1", "Serum", 12000, 1))
	fx.orders.Err = errors.New("write failed")
	s := fx.readySession()
	_, err := fx.flow.Proceed(context.Background(), s)
	require.NoError(t, err)
	_, err = fx.flow.StartBankTransfer(context.Background(), s)
	require.NoError(t, err)

	_, err = fx.flow.ConfirmBankTransfer(context.Background(), s)

	assert.Error(t, err)
	assert.Equal(t, domain.CheckoutStatusBankTransfer, s.Status)
	assert.NotEmpty(t, fx.cart.Lines)
	assert.Equal(t, 0, fx.cart.ClearCalls)
}

func TestFlow_BankTransferBackToChoice(t *testing.T) {
	fx := newFlowFixture(line("p1", "Serum", 12000, 1))
	s := fx.readySession()
	_, err := fx.flow.Proceed(context.Background(), s)
	require.NoError(t, err)
	_, err = fx.flow.StartBankTransfer(context.Background(), s)
	require.NoError(t, err)

	_, err = fx.flow.Proceed(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStatusMethodChoice, s.Status)
}

func TestFlow_CompletedSessionRejectsEverything(t *testing.T) {
	fx := newFlowFixture(line("p1", "Serum", 12000, 1))
	s := fx.readySession()
	_, err := fx.flow.Proceed(context.Background(), s)
	require.NoError(t, err)
	_, err = fx.flow.StartBankTransfer(context.Background(), s)
	require.NoError(t, err)
	_, err = fx.flow.ConfirmBankTransfer(context.Background(), s)
	require.NoError(t, err)

	_, err = fx.flow.Proceed(context.Background(), s)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	_, err = fx.flow.ConfirmBankTransfer(context.Background(), s)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.ErrorIs(t, s.SelectState("Oyo"), ErrIllegalTransition)
	assert.Len(t, fx.orders.Orders, 1)
}

func TestFlow_RemoveItemReopensForm(t *testing.T) {
	fx := newFlowFixture(line("p1", "Serum", 12000, 1), line("p2", "Toner", 5000, 1))
	s := fx.readySession()
	_, err := fx.flow.Proceed(context.Background(), s)
	require.NoError(t, err)

	require.NoError(t, fx.flow.RemoveItem(context.Background(), s, "p2"))

	assert.Equal(t, domain.CheckoutStatusFormEntry, s.Status)
	require.Len(t, fx.cart.Lines, 1)
	sum, err := fx.flow.Summary(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, "₦13,500", sum.Totals.TotalDisplay)
}

func TestBuildOrder_CustomDelivery(t *testing.T) {
	fx := newFlowFixture()
	s := fx.flow.Start(domain.NewViewer("user-9", nil), testOptions())
	s.Form = validForm()
	require.NoError(t, s.SelectState("Oyo"))
	require.NoError(t, s.SelectDelivery(domain.CustomDeliveryValue, "Ogbomoso central"))

	cart := (&domain.Cart{Lines: []domain.CartLine{line("p1", "Serum", 4000, 3)}}).Snapshot(fixedNow)
	order := BuildOrder(s, cart, domain.PaymentRecord{Method: domain.PaymentMethodBankTransfer, Status: domain.PaymentStatusPending}, "ord-1", fixedNow)

	assert.Equal(t, "ord-1", order.ID)
	assert.Equal(t, "user-9", order.UserID)
	assert.Equal(t, "Ogbomoso central", order.ShippingAddress.City)
	assert.Equal(t, "Custom delivery (Ogbomoso central)", order.Shipping.Method)
	assert.Equal(t, DefaultCarrier, order.Shipping.Carrier)
	assert.True(t, order.ShippingCost.Equal(domain.NewMoney(2000)))
	assert.True(t, order.Subtotal.Equal(domain.NewMoney(12000)))
	assert.True(t, order.Total.Equal(domain.NewMoney(14000)))
	assert.True(t, order.Payment.Amount.Equal(order.Total))
	assert.Equal(t, "NGN", order.Payment.Currency)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.True(t, order.TotalsConsistent())

	cart.Lines[0].Name = "changed"
	assert.Equal(t, "Serum", order.Items[0].Name)
}
