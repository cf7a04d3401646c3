// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package fmterr provides the errors reported while tracing kernels,
// positioned at the host code that triggered them, as well as helpers
// to accumulate errors.
package fmterr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kinds of construction errors. Use errors.Is to test the kind of an error.
var (
	// ErrTypeMismatch is returned when operand types are incompatible for an operation.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrContextMisuse is raised when a proxy operation runs without an active builder.
	ErrContextMisuse = errors.New("context misuse")
	// ErrForeignValue is returned when a value recorded by another builder is used.
	ErrForeignValue = errors.New("foreign value")
	// ErrScope is returned when scopes are not balanced
	// or when a value is used outside of the block defining it.
	ErrScope = errors.New("scope error")
	// ErrDuplicateRegistration is returned when a buffer type is registered twice for a key.
	ErrDuplicateRegistration = errors.New("duplicate registration")
	// ErrMissingRegistration is returned when dispatching over an empty namespace.
	ErrMissingRegistration = errors.New("missing registration")
	// ErrUnreachableDowncast is raised when a dynamic callable cannot handle its arguments.
	ErrUnreachableDowncast = errors.New("unreachable downcast")
	// ErrRecursiveCallable is returned when a callable specialization calls itself.
	ErrRecursiveCallable = errors.New("recursive callable")
	// ErrInvalidGraph is returned when a sealed function violates a graph invariant.
	ErrInvalidGraph = errors.New("invalid graph")
)

// IsFatal returns true if the error signals a programming error
// from which tracing cannot recover.
func IsFatal(err error) bool {
	return errors.Is(err, ErrContextMisuse) || errors.Is(err, ErrUnreachableDowncast)
}

// PrefixWith returns a function to prefix errors with a formatted string.
func PrefixWith(s string, o ...any) func(err error) error {
	return func(err error) error {
		return fmt.Errorf("%s%w", fmt.Sprintf(s, o...), err)
	}
}

// Internal marks an error as internal, potentially adding additional information.
func Internal(err error) error {
	return fmt.Errorf("kernelir internal error. This is a bug in kernelir. Please report it. Error:\n%+v", err)
}
