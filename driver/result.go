// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import "fmt"

// Result is a unified result code returned by most operations in this
// package. It distinguishes non-error successes (Success, Timeout,
// NotReady) from errors (everything else), matching the C ABI the public
// façade built on top of this package must project (see GfxResult in
// original_source/gfx/src/GfxBackend.h).
//
// Result implements error so call sites that only care whether an
// operation failed can treat it as a plain error; call sites that need to
// distinguish Timeout/NotReady from failure should compare against the
// named constants directly.
type Result int

// Result codes. Non-errors come first; IsError reports false for them.
const (
	Success Result = iota
	Timeout
	NotReady

	InvalidArgument
	NotFound
	OutOfMemory
	DeviceLost
	SurfaceLost
	OutOfDate
	BackendNotLoaded
	FeatureNotSupported
	Unknown
)

// ErrNoDevice and ErrNotInstalled are the two Results a package-level
// test gates on: RequestAdapter returning NotFound means the backend
// loaded but found no usable physical device/adapter, while
// BackendNotLoaded means the backend's native library (the Vulkan
// loader, a hal.Backend implementation) could not be reached at all.
// Either way the test environment lacks a real device and the test
// should t.Skip rather than fail.
const (
	ErrNoDevice     = NotFound
	ErrNotInstalled = BackendNotLoaded
)

// IsError reports whether r represents a failure rather than a
// (possibly non-trivial) success.
func (r Result) IsError() bool { return r >= InvalidArgument }

func (r Result) String() string {
	switch r {
	case Success:
		return "success"
	case Timeout:
		return "timeout"
	case NotReady:
		return "not ready"
	case InvalidArgument:
		return "invalid argument"
	case NotFound:
		return "not found"
	case OutOfMemory:
		return "out of memory"
	case DeviceLost:
		return "device lost"
	case SurfaceLost:
		return "surface lost"
	case OutOfDate:
		return "out of date"
	case BackendNotLoaded:
		return "backend not loaded"
	case FeatureNotSupported:
		return "feature not supported"
	default:
		return "unknown"
	}
}

// Error implements the error interface. Non-error codes still produce a
// descriptive string so that a Result can be logged uniformly; callers
// that need to avoid treating Timeout/NotReady as failures must check
// IsError (or compare against the named constant) before doing so.
func (r Result) Error() string { return "driver: " + r.String() }

// resultError wraps a Result with additional context, keeping the
// original Result comparable via errors.Is/errors.As while fitting the
// package's "errors.New / fmt.Errorf(...: %w...)" idiom (see
// github.com/gogpu/wgpu's error style, e.g. instance.go's
// fmt.Errorf("wgpu: failed to get adapter info: %w", err)).
type resultError struct {
	result Result
	detail string
}

func (e *resultError) Error() string {
	if e.detail == "" {
		return e.result.Error()
	}
	return fmt.Sprintf("%s: %s", e.result.Error(), e.detail)
}

func (e *resultError) Unwrap() error { return e.result }

func (e *resultError) Is(target error) bool {
	r, ok := target.(Result)
	return ok && r == e.result
}

// wrapResult annotates r with a human-readable detail message. It
// returns nil when r is Success so call sites can write
// `return wrapResult(r, "...")` unconditionally.
func wrapResult(r Result, detail string) error {
	if r == Success {
		return nil
	}
	return &resultError{result: r, detail: detail}
}

// errf builds an error carrying the Result r, mirroring the teacher's
// errors.New(driver: ...) sentinels but parameterized with fmt.Errorf so
// messages can embed the offending values.
func errf(r Result, format string, args ...any) error {
	return wrapResult(r, fmt.Sprintf(format, args...))
}
