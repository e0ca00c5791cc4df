// Package result provides the success/failure envelope returned by every
// backend-facing operation.
package result

import (
	"errors"
	"math"
)

// Result is either a Success carrying data and an optional message, or a
// Failure carrying a human readable error. Exactly one side is populated.
type Result[T any] struct {
	ok      bool
	data    T
	message string
	errText string
	cause   error
}

// Success creates a successful result
func Success[T any](data T, message string) Result[T] {
	return Result[T]{ok: true, data: data, message: message}
}

// Failure creates a failed result with a plain message
func Failure[T any](message string) Result[T] {
	return Result[T]{errText: message, cause: errors.New(message)}
}

// Fail creates a failed result from an error, keeping it for errors.Is/As.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = errors.New("unknown error")
	}
	return Result[T]{errText: err.Error(), cause: err}
}

// OK reports whether the result is a Success.
func (r Result[T]) OK() bool { return r.ok }

// Data returns the payload of a Success; zero value on Failure.
func (r Result[T]) Data() T { return r.data }

// Message returns the optional success message.
func (r Result[T]) Message() string { return r.message }

// Err returns the failure text; empty on Success.
func (r Result[T]) Err() string { return r.errText }

// Cause returns the underlying error of a Failure.
func (r Result[T]) Cause() error { return r.cause }

// Unwrap returns data and the underlying error in the usual Go shape.
func (r Result[T]) Unwrap() (T, error) {
	if !r.ok {
		return r.data, r.cause
	}
	return r.data, nil
}

// Pagination describes where a page sits in the full result set.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}

// Page is one page of records plus its pagination.
type Page[T any] struct {
	Records    []T        `json:"records"`
	Pagination Pagination `json:"pagination"`
}

// TotalPages computes ceil(total/limit). It is only a fallback for backends
// that do not report the page count themselves.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}
