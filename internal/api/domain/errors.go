package domain

import (
	"errors"
)

// ErrorKind classifies a failure for the transport layer
type ErrorKind int

const (
	// KindValidation marks missing or malformed input
	KindValidation ErrorKind = iota + 1
	// KindPrecondition marks a lifecycle guard that the current state does not satisfy
	KindPrecondition
	// KindNotFound marks a job, user or record that does not exist
	KindNotFound
	// KindAuthorization marks a caller without the capability for the operation
	KindAuthorization
	// KindStore marks a persistence failure; its detail never leaves the process
	KindStore
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPrecondition:
		return "precondition"
	case KindNotFound:
		return "not_found"
	case KindAuthorization:
		return "authorization"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Error is a tagged failure carrying a user-facing message and alert
type Error struct {
	Kind    ErrorKind
	Message string
	Alert   string
	// Fields lists the offending request fields for validation failures
	Fields []string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, message, alert string) *Error {
	return &Error{Kind: kind, Message: message, Alert: alert}
}

var (
	ErrJobNotFound          = newError(KindNotFound, "Job not found", "This job is no longer available")
	ErrUserNotFound         = newError(KindNotFound, "User not found", "Your account could not be found")
	ErrApplicantNotFound    = newError(KindNotFound, "Applicant not found", "This user did not apply to this job")
	ErrNotificationNotFound = newError(KindNotFound, "Notification not found", "This notification no longer exists")

	ErrNotAuthorized           = newError(KindAuthorization, "Not authorized", "You can only manage your own jobs")
	ErrEmployerCannotApply     = newError(KindAuthorization, "Employers cannot apply to jobs", "Employers cannot apply to jobs. Use your employer dashboard to find workers instead.")
	ErrEmployeeProfileRequired = newError(KindAuthorization, "Employee profile required", "You need an employee profile to apply to jobs")

	ErrOwnJob              = newError(KindPrecondition, "Cannot apply to own job", "You cannot apply to your own job posting")
	ErrJobClosed           = newError(KindPrecondition, "Job is closed", "This job is no longer accepting applications")
	ErrAlreadyApplied      = newError(KindPrecondition, "Already applied", "You've already applied to this job")
	ErrNoApplication       = newError(KindPrecondition, "No application found", "You haven't applied to this job")
	ErrApplicationAccepted = newError(KindPrecondition, "Cannot cancel accepted application", "Your application has already been accepted and cannot be cancelled")
	ErrNotApplicant        = newError(KindPrecondition, "User didn't apply", "You can only assign workers who applied to this job")
	ErrApplicationNotFound = newError(KindPrecondition, "Application not found", "This user hasn't applied to this job")
	ErrApplicantRejected   = newError(KindPrecondition, "Application was rejected", "You cannot assign a worker whose application was rejected")
	ErrAcceptedIsFinal     = newError(KindPrecondition, "Cannot change accepted application", "An accepted application cannot be rejected or reset")
	ErrJobNotOpen          = newError(KindPrecondition, "Job is not open", "This job has already been closed or assigned")
	ErrVersionConflict     = newError(KindPrecondition, "Job was modified concurrently", "This job was just updated by someone else. Please try again.")

	ErrMissingUserID = &Error{
		Kind:    KindValidation,
		Message: "Missing userId",
		Alert:   "You must provide the applicant's userId",
		Fields:  []string{"userId"},
	}
	ErrInvalidApplicantStatus = &Error{
		Kind:    KindValidation,
		Message: "Invalid status",
		Alert:   "Status must be pending, accepted, or rejected",
		Fields:  []string{"status"},
	}
)

// NewValidationError reports missing or malformed request fields
func NewValidationError(message, alert string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Alert: alert, Fields: fields}
}

// StoreError hides a persistence failure behind a generic message
func StoreError(err error) *Error {
	return &Error{
		Kind:    KindStore,
		Message: "Internal server error",
		Alert:   "Something went wrong. Please try again.",
		Err:     err,
	}
}

// KindOf returns the kind of a tagged error; untagged errors count as store failures
func KindOf(err error) ErrorKind {
	var derr *Error
	if errors.As(err, &derr) {
		return derr.Kind
	}
	return KindStore
}
