package checkout

import "errors"

var (
	ErrInvalidTransition   = errors.New("transition not allowed from current step")
	ErrSubmitInFlight      = errors.New("order submission already in progress")
	ErrSessionClosed       = errors.New("checkout already completed")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrUnknownDistrict     = errors.New("unknown district")
	ErrSectorNotInDistrict = errors.New("sector does not belong to district")
	ErrUnknownTimeBand     = errors.New("unknown delivery time")
	ErrUnknownPayment      = errors.New("unknown payment method")
	ErrUnknownField        = errors.New("unknown field")
	ErrSubmitFailed        = errors.New("order submission failed")
)

// ValidationError is a user-correctable failure on one form field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
