// internal/apperr/errors.go
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindAuthorization Kind = "authorization"
	KindValidation    Kind = "validation"
	KindState         Kind = "state"
	KindResource      Kind = "resource"
	KindExternalCall  Kind = "external_call"
)

// Error is a failure with a stable Code callers can branch on.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// Is matches on Code so wrapped and re-described errors compare equal to the sentinels.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Withf returns a copy of e carrying a formatted detail message.
func (e *Error) Withf(format string, args ...interface{}) *Error {
	return &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

func newError(kind Kind, code string) *Error {
	return &Error{Kind: kind, Code: code}
}

// Authorization
var (
	ErrUnauthorized       = newError(KindAuthorization, "Unauthorized")
	ErrNoRole             = newError(KindAuthorization, "NoRole")
	ErrCompanyNotVerified = newError(KindAuthorization, "CompanyNotVerified")
)

// Validation
var (
	ErrInsufficientFunds   = newError(KindValidation, "InsufficientFunds")
	ErrInsufficientBalance = newError(KindValidation, "InsufficientBalance")
	ErrMilestoneMismatch   = newError(KindValidation, "MilestoneMismatch")
	ErrInvalidAddress      = newError(KindValidation, "InvalidAddress")
	ErrInvalidAmount       = newError(KindValidation, "InvalidAmount")
	ErrInvalidDeadline     = newError(KindValidation, "InvalidDeadline")
	ErrInvalidMilestone    = newError(KindValidation, "InvalidMilestone")
	ErrGasLimitTooLow      = newError(KindValidation, "GasLimitTooLow")
	ErrInvalidPerformData  = newError(KindValidation, "InvalidPerformData")
	ErrUnknownTarget       = newError(KindValidation, "UnknownTarget")
	ErrIndexOutOfRange     = newError(KindValidation, "IndexOutOfRange")
)

// State
var (
	ErrAlreadyVerified     = newError(KindState, "AlreadyVerified")
	ErrAlreadyApplied      = newError(KindState, "AlreadyApplied")
	ErrDeadlinePassed      = newError(KindState, "DeadlinePassed")
	ErrApplicationNotFound = newError(KindState, "ApplicationNotFound")
	ErrAlreadyApproved     = newError(KindState, "AlreadyApproved")
	ErrStudentNotApproved  = newError(KindState, "StudentNotApproved")
	ErrMilestoneCompleted  = newError(KindState, "MilestoneCompleted")
	ErrScholarshipNotOpen  = newError(KindState, "ScholarshipNotOpen")
	ErrScholarshipInactive = newError(KindState, "ScholarshipInactive")
	ErrRoleAlreadyAssigned = newError(KindState, "RoleAlreadyAssigned")
)

// Resource
var (
	ErrRoleCapReached = newError(KindResource, "RoleCapReached")
)

// ExternalCall wraps a failure raised by a target during batch processing.
func ExternalCall(err error) *Error {
	return &Error{Kind: KindExternalCall, Code: "ExternalCallFailed", Message: Reason(err)}
}

// UnknownReason is reported when a failure cause cannot be decoded.
const UnknownReason = "Unknown error"

// Reason renders err as a best-effort reason string.
func Reason(err error) string {
	if err == nil {
		return UnknownReason
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return UnknownReason
}

// KindOf reports the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// CodeOf reports the stable code of err, or "" when err is not an *Error.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
