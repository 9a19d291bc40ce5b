// Package transport dispatches HTTP requests and classifies their outcomes.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"syscall"

	"github.com/eshaffer321/restcore-go/internal/types"
)

// ClassifyError turns a dispatch failure into a typed error. ctx is the
// caller's context: its own deadline maps to TIMEOUT, while per-attempt
// timeouts are ordinary network errors. Upload failures are reported as
// UPLOAD_FAILED unless connectivity is missing.
func ClassifyError(ctx context.Context, err error, upload bool) *types.Error {
	if err == nil {
		return nil
	}

	var typed *types.Error
	if errors.As(err, &typed) {
		return typed
	}

	if ctx != nil && ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return types.WrapError(types.KindTimeout, err, "request deadline exceeded")
		}
		return types.WrapError(types.KindNetworkError, err, "request cancelled")
	}

	if IsNoConnectivity(err) {
		return types.WrapError(types.KindNoInternetConnection, err, "no internet connection")
	}

	var readErr *ReadError
	if errors.As(err, &readErr) {
		return types.WrapError(types.KindDownloadFailed, err, "failed to read response body")
	}

	if upload {
		return types.WrapError(types.KindUploadFailed, err, "upload failed")
	}
	return types.WrapError(types.KindNetworkError, err, "request failed")
}

// IsNoConnectivity reports whether err indicates the network itself is
// unavailable: DNS resolution failure, unreachable network or host, or a
// downed interface.
func IsNoConnectivity(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return !dnsErr.IsTimeout
	}

	return errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETDOWN)
}

// ClassifyStatus maps a non-2xx status code to a typed error carrying the
// response body. It returns nil for 2xx.
func ClassifyStatus(statusCode int, body []byte) *types.Error {
	if statusCode >= 200 && statusCode <= 299 {
		return nil
	}

	message := statusMessage(statusCode, body)

	switch {
	case statusCode >= 400 && statusCode <= 499:
		return types.StatusError(types.KindClientError, statusCode, body, message)
	case statusCode >= 500 && statusCode <= 599:
		return types.StatusError(types.KindServerError, statusCode, body, message)
	default:
		return types.StatusError(types.KindNetworkError, statusCode, body, message)
	}
}

// statusMessage builds an informative message from the status code and any
// error message in a JSON body
func statusMessage(statusCode int, body []byte) string {
	// Try to parse error response
	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &errResp)

	msg := errResp.Message
	if msg == "" {
		msg = errResp.Error
	}

	// Create base message with status code and description
	desc := httpStatusDescription(statusCode)
	if desc == "" {
		desc = http.StatusText(statusCode)
	}
	baseMsg := fmt.Sprintf("HTTP %d", statusCode)
	if desc != "" {
		baseMsg = fmt.Sprintf("HTTP %d (%s)", statusCode, desc)
	}

	// Append parsed error message if available
	if msg != "" {
		baseMsg = fmt.Sprintf("%s: %s", baseMsg, msg)
	}
	return baseMsg
}

// httpStatusDescription returns a human-readable description for common HTTP status codes.
// This helps users understand errors like 525 (SSL Handshake Failed) which are Cloudflare-specific.
func httpStatusDescription(statusCode int) string {
	descriptions := map[int]string{
		500: "Internal Server Error",
		501: "Not Implemented",
		502: "Bad Gateway",
		503: "Service Unavailable",
		504: "Gateway Timeout",
		520: "Web Server Error",
		521: "Web Server Is Down",
		522: "Connection Timed Out",
		523: "Origin Is Unreachable",
		524: "A Timeout Occurred",
		525: "SSL Handshake Failed",
		526: "Invalid SSL Certificate",
		527: "Railgun Error",
		530: "Origin DNS Error",
	}
	return descriptions[statusCode]
}
