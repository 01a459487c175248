package checkout

import "errors"

var (
	ErrMissingSiteURL   = errors.New("site url is not configured")
	ErrMissingSecretKey = errors.New("stripe secret key is not configured")
	ErrEmptySession     = errors.New("provider returned an empty session")
)

// ProviderError is a failure reported by the payment provider. Its message
// is the provider's own text.
type ProviderError struct {
	Err error
}

func (e *ProviderError) Error() string {
	return e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
