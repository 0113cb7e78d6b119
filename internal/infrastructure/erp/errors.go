package erp

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a failed ERP call. The boundary uses the kind to
// decide between "retry later", "fix your input" and "contact support".
type ErrorKind string

const (
	// KindConnection means the ERP could not be reached at all.
	KindConnection ErrorKind = "connection"
	// KindTimeout means the call exceeded its per-call timeout.
	KindTimeout ErrorKind = "timeout"
	// KindAuth covers 401 and 403 responses.
	KindAuth ErrorKind = "auth"
	// KindValidation covers 400 and 422; the ERP-supplied message and
	// detail list are preserved.
	KindValidation ErrorKind = "validation"
	// KindServer covers 5xx responses once retries are exhausted, and any
	// other unexpected status.
	KindServer ErrorKind = "server"
	// KindNotFound covers 404 on a keyed lookup.
	KindNotFound ErrorKind = "not_found"
)

// Error is a typed failure of one ERP call.
type Error struct {
	Kind    ErrorKind
	Status  int      // HTTP status, 0 for connection-level failures
	Message string   // ERP-supplied message where available
	Details []string // ERP validation details (400/422)
	cause   error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "erp: %s", e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (HTTP %d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Details) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Details, ", "))
	}
	if e.cause != nil && e.Message == "" {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.cause
}

// FullMessage returns the ERP message with its detail list appended,
// the way the storefront surfaces validation rejections to the user.
func (e *Error) FullMessage() string {
	if len(e.Details) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Details, ", ")
}

// KindOf extracts the error kind from err, or "" if err is not an *Error
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsNotFound reports whether err is a 404 from the ERP
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsValidation reports whether err is an ERP validation rejection
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// IsTransient reports whether the failure is worth retrying later:
// the ERP was unreachable, timed out, or failed server-side.
func IsTransient(err error) bool {
	switch KindOf(err) {
	case KindConnection, KindTimeout, KindServer:
		return true
	}
	return false
}
