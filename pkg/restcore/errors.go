package restcore

import (
	"github.com/eshaffer321/restcore-go/internal/types"
)

// Error is the failure value of every call
type Error = types.Error

// ErrorKind classifies an Error
type ErrorKind = types.ErrorKind

const (
	KindInvalidURL           = types.KindInvalidURL
	KindInvalidRequest       = types.KindInvalidRequest
	KindRequestFailed        = types.KindRequestFailed
	KindDecodingError        = types.KindDecodingError
	KindInvalidJSON          = types.KindInvalidJSON
	KindParseError           = types.KindParseError
	KindUnknown              = types.KindUnknown
	KindNoData               = types.KindNoData
	KindDownloadFailed       = types.KindDownloadFailed
	KindUploadFailed         = types.KindUploadFailed
	KindNoInternetConnection = types.KindNoInternetConnection
	KindTimeout              = types.KindTimeout
	KindNetworkUnavailable   = types.KindNetworkUnavailable
	KindClientError          = types.KindClientError
	KindServerError          = types.KindServerError
	KindNetworkError         = types.KindNetworkError
)

// NewError creates an error of the given kind
func NewError(kind ErrorKind, message string) *Error {
	return types.NewError(kind, message)
}

// WrapError creates an error of the given kind with a cause
func WrapError(kind ErrorKind, err error, message string) *Error {
	return types.WrapError(kind, err, message)
}

// AsError extracts an *Error from err
func AsError(err error) *Error {
	return types.AsError(err)
}

// IsKind reports whether err is an *Error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	e := types.AsError(err)
	return e != nil && e.Kind == kind
}
