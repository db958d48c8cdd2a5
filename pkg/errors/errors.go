// pkg/errors/errors.go

package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Sentinel errors. Concrete errors are built with NewError/WithError and
// marked with one of these so callers can classify them with errors.Is.
var (
	ErrConfiguration  = new(ErrCodeConfiguration, "invalid configuration")
	ErrDataLoad       = new(ErrCodeDataLoad, "failed to load line items")
	ErrEncoding       = new(ErrCodeEncoding, "payment descriptor encoding error")
	ErrInvalidAccount = new(ErrCodeInvalidAccount, "invalid bank account")
	ErrEmptyInvoice   = new(ErrCodeEmptyInvoice, "invoice has no line items")
	ErrRender         = new(ErrCodeRender, "failed to render document")
	ErrValidation     = new(ErrCodeValidation, "validation error")
	ErrSystem         = new(ErrCodeSystem, "system error")

	// checked in order, the most specific first
	sentinels = []*InternalError{
		ErrInvalidAccount,
		ErrEncoding,
		ErrEmptyInvoice,
		ErrDataLoad,
		ErrValidation,
		ErrConfiguration,
		ErrRender,
		ErrSystem,
	}

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrConfiguration:  http.StatusInternalServerError,
		ErrDataLoad:       http.StatusBadRequest,
		ErrEncoding:       http.StatusUnprocessableEntity,
		ErrInvalidAccount: http.StatusUnprocessableEntity,
		ErrEmptyInvoice:   http.StatusBadRequest,
		ErrValidation:     http.StatusBadRequest,
		ErrRender:         http.StatusInternalServerError,
		ErrSystem:         http.StatusInternalServerError,
	}
)

const (
	ErrCodeConfiguration  = "configuration_error"
	ErrCodeDataLoad       = "data_load_error"
	ErrCodeEncoding       = "encoding_error"
	ErrCodeInvalidAccount = "invalid_account"
	ErrCodeEmptyInvoice   = "empty_invoice"
	ErrCodeRender         = "render_error"
	ErrCodeValidation     = "validation_error"
	ErrCodeSystem         = "system_error"
)

// InternalError represents a classified application error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsDataLoad(err error) bool {
	return errors.Is(err, ErrDataLoad)
}

// IsEncoding reports whether err came from the payment descriptor encoder.
// An invalid account is an encoding failure as well.
func IsEncoding(err error) bool {
	return errors.Is(err, ErrEncoding) || errors.Is(err, ErrInvalidAccount)
}

func IsInvalidAccount(err error) bool {
	return errors.Is(err, ErrInvalidAccount)
}

func IsEmptyInvoice(err error) bool {
	return errors.Is(err, ErrEmptyInvoice)
}

func IsRender(err error) bool {
	return errors.Is(err, ErrRender)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// HTTPStatusFromErr maps a classified error to an HTTP status code
func HTTPStatusFromErr(err error) int {
	for _, e := range sentinels {
		if errors.Is(err, e) {
			return statusCodeMap[e]
		}
	}
	return http.StatusInternalServerError
}

// Code returns the machine readable code err is classified with
func Code(err error) string {
	for _, e := range sentinels {
		if errors.Is(err, e) {
			return e.Code
		}
	}
	return ErrCodeSystem
}

// Hints returns the user facing hints attached to err
func Hints(err error) []string {
	return errors.GetAllHints(err)
}
