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
	"go.uber.org/multierr"
)

// Errors accumulates errors.
// Errors can be grouped in contexts: all the errors appended while a context
// is on the stack are transformed by the context function when it is popped.
type Errors struct {
	stack []contextError
	errs  error
}

type contextError struct {
	f    func(error) error
	errs error
}

// Push a new context in the error stack.
func (errs *Errors) Push(f func(error) error) {
	errs.stack = append(errs.stack, contextError{f: f})
}

// Pop removes the last error context in the stack.
func (errs *Errors) Pop() {
	last := errs.stack[len(errs.stack)-1]
	errs.stack = errs.stack[:len(errs.stack)-1]
	if last.errs == nil {
		return
	}
	for _, err := range multierr.Errors(last.errs) {
		errs.Append(last.f(err))
	}
}

// Append an error to the list of errors.
// Always returns false so that checks can be written as
// return errs.Append(...).
func (errs *Errors) Append(err error) bool {
	if err == nil {
		return false
	}
	if len(errs.stack) == 0 {
		errs.errs = multierr.Append(errs.errs, err)
	} else {
		top := &errs.stack[len(errs.stack)-1]
		top.errs = multierr.Append(top.errs, err)
	}
	return false
}

// Empty returns true if no error has been appended.
func (errs *Errors) Empty() bool {
	if errs.errs != nil {
		return false
	}
	for _, st := range errs.stack {
		if st.errs != nil {
			return false
		}
	}
	return true
}

// Errors returns the list of all the errors appended outside of a context.
func (errs *Errors) Errors() []error {
	return multierr.Errors(errs.errs)
}

// ToError returns the errors as an error interface.
func (errs *Errors) ToError() error {
	if errs == nil {
		return nil
	}
	return errs.errs
}
