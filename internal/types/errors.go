package types

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrorKind classifies a failed call
type ErrorKind string

const (
	KindInvalidURL           ErrorKind = "INVALID_URL"
	KindInvalidRequest       ErrorKind = "INVALID_REQUEST"
	KindRequestFailed        ErrorKind = "REQUEST_FAILED"
	KindDecodingError        ErrorKind = "DECODING_ERROR"
	KindInvalidJSON          ErrorKind = "INVALID_JSON"
	KindParseError           ErrorKind = "PARSE_ERROR"
	KindUnknown              ErrorKind = "UNKNOWN"
	KindNoData               ErrorKind = "NO_DATA"
	KindDownloadFailed       ErrorKind = "DOWNLOAD_FAILED"
	KindUploadFailed         ErrorKind = "UPLOAD_FAILED"
	KindNoInternetConnection ErrorKind = "NO_INTERNET_CONNECTION"
	KindTimeout              ErrorKind = "TIMEOUT"
	KindNetworkUnavailable   ErrorKind = "NETWORK_UNAVAILABLE"
	KindClientError          ErrorKind = "CLIENT_ERROR"
	KindServerError          ErrorKind = "SERVER_ERROR"
	KindNetworkError         ErrorKind = "NETWORK_ERROR"
)

// Error is the terminal value of a failed call attempt
type Error struct {
	Kind       ErrorKind `json:"kind"`
	StatusCode int       `json:"statusCode,omitempty"`
	Data       []byte    `json:"data,omitempty"`
	Message    string    `json:"message,omitempty"`
	Err        error     `json:"-"`
}

// NewError creates an error of the given kind
func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// WrapError creates an error of the given kind with a cause
func WrapError(kind ErrorKind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// StatusError creates an error carrying an HTTP status and the response body
func StatusError(kind ErrorKind, statusCode int, data []byte, message string) *Error {
	return &Error{Kind: kind, StatusCode: statusCode, Data: data, Message: message}
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (%d)", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind. A target with a
// non-zero status code must also match the status code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	return t.StatusCode == 0 || t.StatusCode == e.StatusCode
}

// Equal compares kind, status code and data. Causes are not compared.
func (e *Error) Equal(other *Error) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.Kind == other.Kind &&
		e.StatusCode == other.StatusCode &&
		bytes.Equal(e.Data, other.Data)
}

// AsError extracts an *Error from err, classifying anything else as unknown
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return WrapError(KindUnknown, err, "")
}
