// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import (
	"errors"
	"sync"
)

// ErrorFilter classifies a captured Error, mirroring WebGPU's
// GPUErrorFilter and grounded on the teacher's core.ErrorFilter
// (error_scope.go).
type ErrorFilter int

const (
	ErrorFilterValidation ErrorFilter = iota
	ErrorFilterOutOfMemory
	ErrorFilterInternal
)

func (f ErrorFilter) String() string {
	switch f {
	case ErrorFilterValidation:
		return "validation"
	case ErrorFilterOutOfMemory:
		return "out-of-memory"
	case ErrorFilterInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is a captured, classified backend error, the value PopErrorScope
// returns when the matching scope caught something.
type Error struct {
	Type    ErrorFilter
	Message string
}

func (e *Error) Error() string { return e.Type.String() + " error: " + e.Message }

// classifyError maps a driver error onto the ErrorFilter an error scope
// would have been pushed with, via the same errors.As(&Result) path
// resultError.Is relies on elsewhere in this package.
func classifyError(err error) ErrorFilter {
	var r Result
	if !errors.As(err, &r) {
		return ErrorFilterInternal
	}
	switch r {
	case OutOfMemory:
		return ErrorFilterOutOfMemory
	case InvalidArgument, NotFound, FeatureNotSupported:
		return ErrorFilterValidation
	default:
		return ErrorFilterInternal
	}
}

// errorScope is a single entry on an errorScopeManager's stack: the
// filter it was pushed with, and the first matching error (if any) that
// has been reported to it.
type errorScope struct {
	filter ErrorFilter
	err    *Error
}

// errorScopeManager is the LIFO error-scope stack backing
// Device.PushErrorScope/PopErrorScope, grounded on the teacher's
// core.ErrorScopeManager (error_scope.go). Unlike the teacher, it is
// created eagerly by RequestDevice rather than lazily, sidestepping the
// teacher's own documented lazy-init race, and PopErrorScope on an empty
// stack returns an error instead of panicking, matching this package's
// explicit-error-return idiom.
type errorScopeManager struct {
	mu     sync.Mutex
	scopes []errorScope
}

func (m *errorScopeManager) push(filter ErrorFilter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scopes = append(m.scopes, errorScope{filter: filter})
}

func (m *errorScopeManager) pop() (*Error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.scopes)
	if n == 0 {
		return nil, errf(InvalidArgument, "PopErrorScope: no matching PushErrorScope")
	}
	s := m.scopes[n-1]
	m.scopes = m.scopes[:n-1]
	return s.err, nil
}

// report delivers err to the innermost scope whose filter matches and
// which has not already captured an earlier error, mirroring WebGPU's
// "first error wins" capture rule. A nil err is a no-op.
func (m *errorScopeManager) report(err error) {
	if err == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	filter := classifyError(err)
	for n := len(m.scopes) - 1; n >= 0; n-- {
		if m.scopes[n].filter == filter && m.scopes[n].err == nil {
			m.scopes[n].err = &Error{Type: filter, Message: err.Error()}
			return
		}
	}
}

// PushErrorScope opens a new error scope on d that captures the first
// error matching filter raised by any subsequent operation on d or its
// Queue, until the matching PopErrorScope (spec.md §6).
func (d *Device) PushErrorScope(filter ErrorFilter) {
	d.errScopes.push(filter)
}

// PopErrorScope closes the innermost open error scope on d, returning
// the error it captured (nil if none occurred). It returns a non-nil
// error itself only if there is no open scope to pop.
func (d *Device) PopErrorScope() (*Error, error) {
	return d.errScopes.pop()
}
