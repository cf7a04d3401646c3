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
	"github.com/pkg/errors"
	"github.com/gx-org/backend/shape"
	"github.com/gx-org/kernelir/build/ir"
)

// ShapeOf returns the shape of the arrays representing a scalar,
// a vector, or a matrix type.
func ShapeOf(typ *ir.Type) (*shape.Shape, error) {
	sh := &shape.Shape{DType: typ.Kind().DType()}
	switch typ.Class() {
	case ir.ScalarClass:
	case ir.VectorClass:
		sh.AxisLengths = []int{typ.Len()}
	case ir.MatrixClass:
		sh.AxisLengths = []int{typ.Len(), typ.Len()}
	default:
		return nil, errors.Errorf("values of type %s are not arrays", typ)
	}
	return sh, nil
}

// Zero returns the zero value of a type.
func Zero(typ *ir.Type) (Value, error) {
	switch typ.Class() {
	case ir.StructClass, ir.ArrayClass:
		elems := make([]Value, typ.Len())
		for i := range elems {
			compType, err := typ.Component(i)
			if err != nil {
				return nil, err
			}
			if elems[i], err = Zero(compType); err != nil {
				return nil, err
			}
		}
		return NewTuple(elems), nil
	}
	sh, err := ShapeOf(typ)
	if err != nil {
		return nil, err
	}
	return NewArrayFromRaw(make([]byte, sh.ByteSize()), sh)
}
