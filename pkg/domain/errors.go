package common

import "fmt"

// Tagged domain error types. Each carries a machine-readable Code matching
// the vocabulary in the HTTP surface and a human message. Callers use the
// Is*Error predicates rather than errors.As, matching the rest of the
// codebase's type-assertion idiom.

type ErrValidation struct {
	Code    string
	message string
}

func (e *ErrValidation) Error() string { return e.message }

func NewErrValidation(code, message string) error {
	return &ErrValidation{Code: code, message: message}
}

type ErrUnauthorized struct{ message string }

func (e *ErrUnauthorized) Error() string { return e.message }

func NewErrUnauthorized() error {
	return &ErrUnauthorized{message: "unauthorized"}
}

type ErrForbidden struct{ message string }

func (e *ErrForbidden) Error() string { return e.message }

func NewErrForbidden(message string) error {
	if message == "" {
		message = "forbidden"
	}
	return &ErrForbidden{message: message}
}

type ErrNotFound struct{ message string }

func (e *ErrNotFound) Error() string { return e.message }

func NewErrNotFound(resourceType, field string, value interface{}) error {
	return &ErrNotFound{message: fmt.Sprintf("%s with %s %v not found", resourceType, field, value)}
}

type ErrConflict struct {
	Code    string
	message string
}

func (e *ErrConflict) Error() string { return e.message }

func NewErrConflict(code, message string) error {
	return &ErrConflict{Code: code, message: message}
}

type ErrInvalidState struct {
	Code    string
	message string
}

func (e *ErrInvalidState) Error() string { return e.message }

func NewErrInvalidState(code, message string) error {
	return &ErrInvalidState{Code: code, message: message}
}

type ErrSanctioned struct{ message string }

func (e *ErrSanctioned) Error() string { return e.message }

// NewErrSanctioned builds the OFAC_SANCTIONED error, naming the first matched SDN entity.
func NewErrSanctioned(address, sdnName string) error {
	return &ErrSanctioned{message: fmt.Sprintf("address %s on OFAC SDN list (%s)", address, sdnName)}
}

func IsNotFoundError(err error) bool {
	_, ok := err.(*ErrNotFound)
	return ok
}

func IsUnauthorizedError(err error) bool {
	_, ok := err.(*ErrUnauthorized)
	return ok
}

func IsForbiddenError(err error) bool {
	_, ok := err.(*ErrForbidden)
	return ok
}

func IsValidationError(err error) bool {
	_, ok := err.(*ErrValidation)
	return ok
}

func IsConflictError(err error) bool {
	_, ok := err.(*ErrConflict)
	return ok
}

func IsInvalidStateError(err error) bool {
	_, ok := err.(*ErrInvalidState)
	return ok
}

func IsSanctionedError(err error) bool {
	_, ok := err.(*ErrSanctioned)
	return ok
}
