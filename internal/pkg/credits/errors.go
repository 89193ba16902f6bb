package credits

import "errors"

var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidCredits       = errors.New("invalid credits value")
	ErrMissingSessionID     = errors.New("missing session ID")
	ErrSessionNotFound      = errors.New("stripe session not found")
	ErrSessionMismatch      = errors.New("invalid session")
	ErrPaymentNotCompleted  = errors.New("payment not completed")
	ErrInvalidCreditsAmount = errors.New("invalid credits amount")

	// ErrAlreadyProcessed is returned by Ledger.ApplyAward when the event row
	// already exists. The service reports it as success.
	ErrAlreadyProcessed = errors.New("checkout session already processed")
)

var validationErrors = []error{
	ErrInvalidCredits,
	ErrMissingSessionID,
	ErrSessionNotFound,
	ErrSessionMismatch,
	ErrPaymentNotCompleted,
	ErrInvalidCreditsAmount,
}

// IsValidation reports whether err is caused by caller input rather than by a
// failing dependency.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
