package restclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind int

const (
	// KindTransport covers failures where no HTTP response arrived at all.
	KindTransport ErrorKind = iota + 1
	// KindValidation covers 4xx rejections carrying a server message.
	KindValidation
	// KindServerFault covers 5xx responses.
	KindServerFault
)

// APIError is the single error type every failed API call surfaces.
// Message holds whatever detail/error/message text the server provided,
// falling back to a generic string; nothing is retried automatically.
type APIError struct {
	Status  int    // HTTP status, 0 when the request never completed
	Message string // user-facing text
	Err     error  // underlying transport error, if any
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("request failed: %v", e.Err)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Kind() ErrorKind {
	switch {
	case e.Status == 0:
		return KindTransport
	case e.Status >= 500:
		return KindServerFault
	default:
		return KindValidation
	}
}

// errorBody mirrors the shapes observed across the API: DRF-style {"detail": ...},
// plus {"error": ...} and {"message": ...} variants.
type errorBody struct {
	Detail  string `json:"detail"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

func newAPIError(status int, body []byte) *APIError {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)

	msg := eb.Detail
	if msg == "" {
		msg = eb.Error
	}
	if msg == "" {
		msg = eb.Message
	}
	if msg == "" {
		msg = fmt.Sprintf("request failed (status %d)", status)
	}

	return &APIError{Status: status, Message: msg}
}

func asAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func IsTransport(err error) bool {
	e, ok := asAPIError(err)
	return ok && e.Kind() == KindTransport
}

func IsValidation(err error) bool {
	e, ok := asAPIError(err)
	return ok && e.Kind() == KindValidation
}

func IsServerFault(err error) bool {
	e, ok := asAPIError(err)
	return ok && e.Kind() == KindServerFault
}

func IsNotFound(err error) bool {
	e, ok := asAPIError(err)
	return ok && e.Status == http.StatusNotFound
}

func IsConflict(err error) bool {
	e, ok := asAPIError(err)
	return ok && e.Status == http.StatusConflict
}

// ErrorMessage extracts the user-facing text from an API error, or the plain
// error string for anything else. Dashboards render this verbatim.
func ErrorMessage(err error) string {
	if e, ok := asAPIError(err); ok {
		return e.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}
