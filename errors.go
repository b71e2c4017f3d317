package rewards

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound     = errors.New("rewards: not found")
	ErrInvalidInput = errors.New("rewards: invalid input")

	// Credential errors
	ErrUnknownCredential   = errors.New("rewards: unknown credential")
	ErrNotCredentialHolder = errors.New("rewards: caller holds no credential tokens")

	// Claim errors
	ErrClaimTooSoon       = errors.New("rewards: claim interval has not elapsed")
	ErrNoRewardsAvailable = errors.New("rewards: no rewards available")
	ErrNoTokensToClaim    = errors.New("rewards: no tokens to claim")

	// A cap-clamped claim is still a claim with nothing mintable, so the
	// cap error matches ErrNoTokensToClaim under errors.Is.
	ErrSupplyCapReached = fmt.Errorf("%w: token supply cap reached", ErrNoTokensToClaim)

	// Configuration errors
	ErrInvalidFeePercentage  = errors.New("rewards: fee rate exceeds maximum")
	ErrInvalidParameterRange = errors.New("rewards: parameter outside permitted range")
	ErrNilSettlement         = errors.New("rewards: settlement reference must not be nil")

	// Batch errors
	ErrArrayLengthMismatch = errors.New("rewards: batch input lengths do not match")
	ErrEmptyBatch          = errors.New("rewards: batch input is empty")

	// External boundary errors
	ErrTransferFailed = errors.New("rewards: settlement transfer failed")
	ErrMintFailed     = errors.New("rewards: token mint failed")

	// Store errors
	ErrStoreNotReady     = errors.New("rewards: store not ready")
	ErrStoreClosed       = errors.New("rewards: store is closed")
	ErrMigrationFailed   = errors.New("rewards: migration failed")
	ErrTransactionFailed = errors.New("rewards: transaction failed")
)

// ClaimTooSoonError reports a claim attempted before its interval elapsed.
// It carries the earliest time the claim will be accepted and matches
// ErrClaimTooSoon under errors.Is.
type ClaimTooSoonError struct {
	NextClaimAt time.Time
}

func (e *ClaimTooSoonError) Error() string {
	return fmt.Sprintf("rewards: claim interval has not elapsed, next claim at %s",
		e.NextClaimAt.UTC().Format(time.RFC3339))
}

// Unwrap makes errors.Is(err, ErrClaimTooSoon) hold.
func (e *ClaimTooSoonError) Unwrap() error { return ErrClaimTooSoon }

// ParamRangeError reports a configuration value outside its permitted
// bounds. A zero Max means the parameter has a floor only. It matches
// ErrInvalidParameterRange under errors.Is.
type ParamRangeError struct {
	Param string
	Value int64
	Min   int64
	Max   int64
}

func (e *ParamRangeError) Error() string {
	if e.Max == 0 {
		return fmt.Sprintf("rewards: %s = %d below permitted minimum %d",
			e.Param, e.Value, e.Min)
	}
	return fmt.Sprintf("rewards: %s = %d outside permitted range [%d, %d]",
		e.Param, e.Value, e.Min, e.Max)
}

// Unwrap makes errors.Is(err, ErrInvalidParameterRange) hold.
func (e *ParamRangeError) Unwrap() error { return ErrInvalidParameterRange }

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("rewards: validation failed for %s: %s", e.Field, e.Message)
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "rewards: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("rewards: %d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsNotFound returns true if the error indicates a missing record or
// credential.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnknownCredential)
}

// IsClaimRejected returns true if the error is a claim-side rejection the
// caller can resolve by waiting or by accruing more rewards.
func IsClaimRejected(err error) bool {
	return errors.Is(err, ErrClaimTooSoon) ||
		errors.Is(err, ErrNoRewardsAvailable) ||
		errors.Is(err, ErrNoTokensToClaim) ||
		errors.Is(err, ErrNotCredentialHolder) ||
		errors.Is(err, ErrSupplyCapReached)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed) ||
		errors.Is(err, ErrTransferFailed) ||
		errors.Is(err, ErrMintFailed)
}
