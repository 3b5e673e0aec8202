package domain

type CheckoutStatus string

const (
	CheckoutStatusFormEntry    CheckoutStatus = "FORM_ENTRY"
	CheckoutStatusValidated    CheckoutStatus = "VALIDATED"
	CheckoutStatusMethodChoice CheckoutStatus = "METHOD_CHOICE"
	CheckoutStatusPaystack     CheckoutStatus = "PAYSTACK"
	CheckoutStatusBankTransfer CheckoutStatus = "BANK_TRANSFER"
	CheckoutStatusCompleted    CheckoutStatus = "COMPLETED"
	CheckoutStatusCancelled    CheckoutStatus = "CANCELLED"
)

var checkoutTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusFormEntry:    {CheckoutStatusFormEntry, CheckoutStatusValidated},
	CheckoutStatusValidated:    {CheckoutStatusFormEntry, CheckoutStatusMethodChoice},
	CheckoutStatusMethodChoice: {CheckoutStatusFormEntry, CheckoutStatusPaystack, CheckoutStatusBankTransfer},
	CheckoutStatusPaystack:     {CheckoutStatusPaystack, CheckoutStatusCompleted, CheckoutStatusCancelled},
	CheckoutStatusBankTransfer: {CheckoutStatusFormEntry, CheckoutStatusMethodChoice, CheckoutStatusPaystack, CheckoutStatusCompleted},
	CheckoutStatusCancelled:    {CheckoutStatusMethodChoice},
}

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusCompleted
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, next := range checkoutTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
