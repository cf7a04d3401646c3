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

package kernels

import (
	"strings"

	"github.com/pkg/errors"
)

// Tuple is a structure or a fixed-length array of kernel values.
type Tuple struct {
	elems []Value
}

var _ Value = (*Tuple)(nil)

// NewTuple returns a new tuple owning elems.
func NewTuple(elems []Value) *Tuple {
	return &Tuple{elems: elems}
}

// Len returns the number of elements in the tuple.
func (t *Tuple) Len() int {
	return len(t.elems)
}

// Elem returns the ith element.
func (t *Tuple) Elem(i int) (Value, error) {
	if i < 0 || i >= len(t.elems) {
		return nil, errors.Errorf("element %d out of range [0, %d)", i, len(t.elems))
	}
	return t.elems[i], nil
}

// WithElem returns a copy of the tuple with its ith element set to v.
func (t *Tuple) WithElem(i int, v Value) (*Tuple, error) {
	if i < 0 || i >= len(t.elems) {
		return nil, errors.Errorf("element %d out of range [0, %d)", i, len(t.elems))
	}
	out := t.Clone().(*Tuple)
	out.elems[i] = v.Clone()
	return out, nil
}

// Clone returns a deep copy of the tuple.
func (t *Tuple) Clone() Value {
	elems := make([]Value, len(t.elems))
	for i, el := range t.elems {
		elems[i] = el.Clone()
	}
	return &Tuple{elems: elems}
}

// String representation of the tuple.
func (t *Tuple) String() string {
	elems := make([]string, len(t.elems))
	for i, el := range t.elems {
		elems[i] = el.String()
	}
	return "{" + strings.Join(elems, ", ") + "}"
}
