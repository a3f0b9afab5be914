package loan

import (
	"errors"
	"fmt"
)

// Error kinds returned by every public operation of the engine. Use errors.Is
// against these; details are wrapped with %w.
var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrOverallocation    = errors.New("allocation exceeds approved amount")
)

var (
	ErrAlreadyApproved   = fmt.Errorf("%w: loan already approved", ErrInvalidTransition)
	ErrPendingLoanExists = fmt.Errorf("%w: applicant already has a pending loan", ErrValidation)
)

// Validationf wraps ErrValidation with a formatted detail.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// Transitionf wraps ErrInvalidTransition with a formatted detail.
func Transitionf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidTransition}, args...)...)
}
