// Copyright (c) 2026 ToeiRei
// Signet - SSH signing key resolver
// This source code is licensed under the MIT license found in the LICENSE file.

package source

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
)

// Sentinel errors returned by sources. ErrUserNotFound is the only soft
// failure: the queried identity does not exist on that source. Everything
// else aborts the run.
var (
	ErrUserNotFound      = errors.New("requested user could not be found")
	ErrBadCredentials    = errors.New("used credentials are invalid")
	ErrRatelimitExceeded = errors.New("rate limit has been exceeded")
	ErrConnection        = errors.New("connection error occurred")
)

// ClientError reports a 4xx status code that no provider-specific rule
// claimed.
type ClientError struct {
	StatusCode int
}

func (e *ClientError) Error() string {
	return "client request error"
}

// ServerError reports a response the client could not make sense of: an
// unexpected 5xx status, an undecodable body or a malformed header.
type ServerError struct {
	Reason string
}

func (e *ServerError) Error() string {
	return "invalid response, " + e.Reason
}

func newUnexpectedStatusError(code int) *ServerError {
	return &ServerError{Reason: fmt.Sprintf("unexpected status code %d %s", code, http.StatusText(code))}
}

func newInvalidBodyError() *ServerError {
	return &ServerError{Reason: "body is invalid"}
}

func newMalformedHeaderError(name, msg string) *ServerError {
	return &ServerError{Reason: fmt.Sprintf("malformed `%s` header: %s", name, msg)}
}

// classifyStatus converts a failed HTTP status into a source error. It must
// only be called with a status the provider-specific rules did not claim.
// A status outside the error ranges indicates a bug in the calling adapter,
// so it panics rather than misclassify.
func classifyStatus(code int) error {
	switch {
	case code >= 500 && code < 600:
		return newUnexpectedStatusError(code)
	case code >= 400 && code < 500:
		return &ClientError{StatusCode: code}
	default:
		panic(fmt.Sprintf("status code %d escaped error classification", code))
	}
}

// classifyTransportError converts an error returned by the HTTP client into
// a source error. Context cancellation passes through untouched so that
// callers aborting a run do not see it reclassified. An error matching no
// known failure class panics rather than misclassify.
func classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrConnection
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ErrConnection
	}
	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return ErrConnection
	}
	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return ErrConnection
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrConnection
	}
	panic(fmt.Sprintf("unexpected transport error: %v", err))
}
