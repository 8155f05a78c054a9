package httperr

import (
	"errors"
	"fmt"
)

// ===============================
// Error kinds
// ===============================

type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindValidation    Kind = "validation"
	KindConflict      Kind = "conflict"
	KindNotFound      Kind = "not_found"
	KindStorage       Kind = "storage"
	KindInvalidState  Kind = "invalid_state"
	KindTimeout       Kind = "timeout"
)

// Common codes. Validation codes are the availability reasons.
const (
	CodeConflict     = "CONFLICT"
	CodeInvalidState = "INVALID_STATE"
	CodeTimeout      = "TIMEOUT"
	CodeStorage      = "STORAGE"
)

// BusinessError is the typed error every layer below the handlers returns
// for expected outcomes.
type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	case e.Message != "":
		return e.Code + ": " + e.Message
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return e.Code
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// ===============================
// Constructors
// ===============================

func ErrBusiness(kind Kind, code string) error {
	return &BusinessError{Kind: kind, Code: code}
}

func Configuration(code, message string) error {
	return &BusinessError{Kind: KindConfiguration, Code: code, Message: message}
}

func Validation(code string) error {
	return &BusinessError{Kind: KindValidation, Code: code}
}

func Conflict(code string) error {
	return &BusinessError{Kind: KindConflict, Code: code}
}

func NotFound(code string) error {
	return &BusinessError{Kind: KindNotFound, Code: code}
}

func InvalidState(code string) error {
	return &BusinessError{Kind: KindInvalidState, Code: code}
}

func Timeout(code string) error {
	return &BusinessError{Kind: KindTimeout, Code: code}
}

// Storage wraps a driver error. A nil err stays nil.
func Storage(err error) error {
	if err == nil {
		return nil
	}
	return &BusinessError{Kind: KindStorage, Code: CodeStorage, Err: err}
}

// ===============================
// Predicates
// ===============================

func IsBusiness(err error, code string) bool {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// KindOf returns the kind of err, or "" when err is not a BusinessError.
func KindOf(err error) Kind {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return ""
}

func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}
