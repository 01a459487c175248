package flow

import "errors"

var (
	ErrExited             = errors.New("checkout flow already handed off to payment")
	ErrAtFinalStep        = errors.New("already at the final step")
	ErrNotAtPayment       = errors.New("finalize is only available on the payment step")
	ErrModalClosed        = errors.New("checkout modal is closed")
	ErrFinalizeInProgress = errors.New("payment session request already in progress")
	ErrNoRedirectURL      = errors.New("payment session has no redirect url")
)
