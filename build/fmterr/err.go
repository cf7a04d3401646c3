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

package fmterr

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/pkg/errors"
)

const modulePrefix = "github.com/gx-org/kernelir/"

// Error is a construction error attached to the position
// of the host code that was being traced.
type Error struct {
	kind error
	pos  string
	err  error
}

var _ error = (*Error)(nil)

// Errorf returns a construction error of a given kind.
// The error is positioned at the first caller outside of this module.
func Errorf(kind error, format string, a ...any) *Error {
	return &Error{
		kind: kind,
		pos:  hostPos(),
		err:  errors.Errorf(format, a...),
	}
}

// Position attaches a kind and the position of the host code to an existing error.
func Position(kind error, err error) *Error {
	return &Error{
		kind: kind,
		pos:  hostPos(),
		err:  errors.WithStack(err),
	}
}

// Raise aborts the construction in progress with a construction error.
// The error is recovered by the builder which started the construction.
func Raise(kind error, format string, a ...any) {
	panic(Errorf(kind, format, a...))
}

// hostPos returns the file and line of the first frame outside of the module.
// Test files of the module are considered as host code.
func hostPos() string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		inModule := strings.HasPrefix(frame.Function, modulePrefix)
		if !inModule || strings.HasSuffix(frame.File, "_test.go") {
			return fmt.Sprintf("%s:%d", frame.File, frame.Line)
		}
		if !more {
			return ""
		}
	}
}

// Kind returns the kind of the error.
func (err *Error) Kind() error {
	return err.kind
}

// Pos returns the position of the host code where the error occurred.
func (err *Error) Pos() string {
	return err.pos
}

// Error returns a string description of the error.
func (err *Error) Error() (s string) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		s = fmt.Sprintf("recovered from panic when building error message: %T:\n%v", err.err, string(debug.Stack()))
	}()
	msg := err.kind.Error() + ": " + err.err.Error()
	if err.pos == "" {
		return msg
	}
	return err.pos + ": " + msg
}

// Unwrap returns the kind and the underlying error.
func (err *Error) Unwrap() []error {
	return []error{err.kind, err.err}
}

// Format writes the error into the state of the formatter.
func (err *Error) Format(s fmt.State, verb rune) {
	format(err, s, verb)
}
