package core

import (
	"fmt"
	"slices"
	"sync"

	"github.com/huangsam/gitsummary/internal/contract"
)

// ErrorCollector is an append-only, concurrency-safe list of failure descriptions.
type ErrorCollector struct {
	mu   sync.Mutex
	errs []string
}

// NewErrorCollector returns an empty collector.
func NewErrorCollector() *ErrorCollector {
	return &ErrorCollector{errs: []string{}}
}

// Add records the digest of err. Nil errors are ignored.
func (c *ErrorCollector) Add(err error) {
	if err == nil {
		return
	}
	c.append(contract.ErrorDigest(err))
}

// AddTitled records err prefixed with the operation it came from.
func (c *ErrorCollector) AddTitled(title string, err error) {
	if err == nil {
		return
	}
	c.append(title + ": " + contract.ErrorDigest(err))
}

func (c *ErrorCollector) append(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, msg)
}

// Len returns the number of recorded failures.
func (c *ErrorCollector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errs)
}

// Errors returns a copy of the recorded failures in insertion order.
func (c *ErrorCollector) Errors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.errs)
}

// Result is the outcome of one wave operation.
type Result[T any] struct {
	Value T
	Title string
	Err   error
}

// Success wraps a value.
func Success[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Failure wraps an error under a human readable title.
func Failure[T any](title string, err error) Result[T] {
	return Result[T]{Title: title, Err: err}
}

// OK reports whether the operation succeeded.
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Record adds a failed result to the collector and reports whether it succeeded.
func (r Result[T]) Record(c *ErrorCollector) bool {
	if r.Err == nil {
		return true
	}
	c.AddTitled(r.Title, r.Err)
	return false
}

// attempt runs fn and turns a panic into a failure.
func attempt[T any](title string, fn func() (T, error)) (res Result[T]) {
	defer func() {
		if p := recover(); p != nil {
			res = Failure[T](title, fmt.Errorf("panic: %v", p))
		}
	}()
	v, err := fn()
	if err != nil {
		return Failure[T](title, err)
	}
	return Success(v)
}
