// Package apierror defines the error taxonomy shared by the backend-facing
// packages and extracts readable messages from backend error bodies.
package apierror

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// User-facing messages.
const (
	MsgNoTokenList     = "Tidak ada token. Silakan login terlebih dahulu."
	MsgNoTokenMutation = "Token tidak ditemukan. Silakan login ulang."
	MsgInvalidStatus   = "Status tidak valid"
	MsgBusy            = "Masih ada proses yang berjalan"
)

var (
	// ErrNotAuthenticated is returned when an operation needs a session token
	// and none is stored.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidStatus is returned for status values outside aktif/nonaktif.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrBusy is returned while another mutation is still outstanding.
	ErrBusy = errors.New("operation in progress")
)

// AuthError carries the message shown when no token is available.
type AuthError struct {
	Msg string
}

func (e AuthError) Error() string {
	if e.Msg == "" {
		return ErrNotAuthenticated.Error()
	}
	return e.Msg
}

func (e AuthError) Unwrap() error { return ErrNotAuthenticated }

// TransportError wraps network level failures (DNS, refused, timeout).
type TransportError struct {
	Op  string
	Err error
}

func (e TransportError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("gagal menghubungi server: %v", e.Err)
	}
	return fmt.Sprintf("%s: gagal menghubungi server: %v", e.Op, e.Err)
}

func (e TransportError) Unwrap() error { return e.Err }

// ServerError is a non-2xx backend response.
type ServerError struct {
	Status  int
	Message string
}

func (e ServerError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned status %d", e.Status)
}

// NotFoundError reports a missing record.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// ValidationError is a client-side required-field check failure.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Field != "" && e.Msg != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Msg)
	}
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("invalid %s", e.Field)
}

// StatusError wraps an invalid status value.
type StatusError struct {
	Value string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("%s: %q", MsgInvalidStatus, e.Value)
}

func (e StatusError) Unwrap() error { return ErrInvalidStatus }

func IsNotFound(err error) bool {
	var target NotFoundError
	if errors.As(err, &target) {
		return true
	}
	var server ServerError
	return errors.As(err, &server) && server.Status == 404
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsTransport(err error) bool {
	var target TransportError
	return errors.As(err, &target)
}

// StatusOf returns the HTTP status of a ServerError, or 0.
func StatusOf(err error) int {
	var server ServerError
	if errors.As(err, &server) {
		return server.Status
	}
	return 0
}

type fieldIssue struct {
	Loc any    `json:"loc"`
	Msg string `json:"msg"`
}

// MessageFromBody extracts a readable message from an error body. A string
// detail wins, then a detail list joined as "field: msg, ...", then message,
// then fallback.
func MessageFromBody(body []byte, fallback string) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
		return fallback
	}

	if len(payload.Detail) > 0 {
		var detail string
		if err := json.Unmarshal(payload.Detail, &detail); err == nil && detail != "" {
			return detail
		}

		var issues []fieldIssue
		if err := json.Unmarshal(payload.Detail, &issues); err == nil && len(issues) > 0 {
			parts := make([]string, 0, len(issues))
			for _, issue := range issues {
				if field := issue.field(); field != "" {
					parts = append(parts, field+": "+issue.Msg)
				} else {
					parts = append(parts, issue.Msg)
				}
			}
			return strings.Join(parts, ", ")
		}
	}

	if payload.Message != "" {
		return payload.Message
	}
	return fallback
}

// field is the last element of loc, which is either a list or a scalar.
func (i fieldIssue) field() string {
	switch loc := i.Loc.(type) {
	case []any:
		if len(loc) == 0 {
			return ""
		}
		return fmt.Sprint(loc[len(loc)-1])
	case string:
		return loc
	case nil:
		return ""
	default:
		return fmt.Sprint(loc)
	}
}
