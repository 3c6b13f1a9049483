// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies backend failures for consistent handling in handlers.
type Kind string

const (
	KindUnknown      Kind = "unknown"
	KindTransport    Kind = "transport"
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindDecode       Kind = "decode"
	KindServer       Kind = "server"
)

// Error is a typed backend call failure.
type Error struct {
	Kind     Kind
	Status   int    // HTTP status, 0 for transport failures
	Method   string // HTTP method of the failed call
	Endpoint string // Path relative to the API base URL
	Message  string // Message reported by the backend, if any
	Err      error  // Underlying cause
}

// Error renders a log-friendly description of the failure.
func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString("api ")
	sb.WriteString(e.Method)
	sb.WriteString(" ")
	sb.WriteString(e.Endpoint)
	sb.WriteString(": ")
	sb.WriteString(string(e.Kind))
	if e.Status != 0 {
		fmt.Fprintf(&sb, " (status %d)", e.Status)
	}
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	} else if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a backend error, or KindUnknown for other errors.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is a backend error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the backend-reported message carried by err,
// or fallback when there is none.
func MessageOf(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// kindForStatus maps a non-2xx status code to an error kind.
func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 400 && status < 500:
		return KindValidation
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// errorBody is the set of shapes the backend uses to report failures.
type errorBody struct {
	Message string `json:"message"`
	Error   any    `json:"error"`
	Errors  []struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
	} `json:"errors"`
}

// extractMessage pulls a human-readable message out of an error response body.
func extractMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(eb.Message); msg != "" {
		return msg
	}
	if s, ok := eb.Error.(string); ok && strings.TrimSpace(s) != "" {
		return strings.TrimSpace(s)
	}
	for _, e := range eb.Errors {
		if e.Msg != "" {
			return e.Msg
		}
		if e.Message != "" {
			return e.Message
		}
	}
	return ""
}
