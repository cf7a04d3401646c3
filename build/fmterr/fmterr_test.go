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

package fmterr_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/build/fmterr"
)

func TestErrorKind(t *testing.T) {
	err := fmterr.Errorf(fmterr.ErrTypeMismatch, "cannot add %s and %s", "float32", "int32")
	if !errors.Is(err, fmterr.ErrTypeMismatch) {
		t.Errorf("error %v is not a type mismatch", err)
	}
	if errors.Is(err, fmterr.ErrContextMisuse) {
		t.Errorf("error %v should not be a context misuse", err)
	}
	if fmterr.IsFatal(err) {
		t.Errorf("type mismatch should not be fatal")
	}
	if !strings.Contains(err.Pos(), "fmterr_test.go") {
		t.Errorf("error positioned at %q but want the test file", err.Pos())
	}
	if !strings.HasSuffix(err.Error(), "type mismatch: cannot add float32 and int32") {
		t.Errorf("unexpected error message: %q", err.Error())
	}
	verbose := fmt.Sprintf("%+v", err)
	if !strings.Contains(verbose, "Error generated at:") {
		t.Errorf("verbose formatting does not include the stack trace:\n%s", verbose)
	}
}

func TestFatal(t *testing.T) {
	for _, kind := range []error{fmterr.ErrContextMisuse, fmterr.ErrUnreachableDowncast} {
		if err := fmterr.Errorf(kind, "x"); !fmterr.IsFatal(err) {
			t.Errorf("%v should be fatal", err)
		}
	}
}

func TestRaise(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(*fmterr.Error)
		if !ok {
			t.Fatalf("recovered %T but want %T", r, err)
		}
		if !errors.Is(err, fmterr.ErrScope) {
			t.Errorf("recovered %v but want a scope error", err)
		}
	}()
	fmterr.Raise(fmterr.ErrScope, "no scope to pop")
}

func TestErrors(t *testing.T) {
	var errs fmterr.Errors
	if !errs.Empty() || errs.ToError() != nil {
		t.Fatalf("new error set is not empty")
	}
	errs.Append(nil)
	errs.Append(errors.New("a"))
	errs.Push(fmterr.PrefixWith("block %d: ", 2))
	errs.Append(errors.New("b"))
	errs.Append(errors.New("c"))
	if errs.Empty() {
		t.Errorf("error set should not be empty")
	}
	errs.Pop()
	var got []string
	for _, err := range errs.Errors() {
		got = append(got, err.Error())
	}
	want := []string{"a", "block 2: b", "block 2: c"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("got errors %v but want %v", got, want)
	}
	if !errors.Is(errs.ToError(), errs.Errors()[0]) {
		t.Errorf("combined error does not wrap its members")
	}
}
