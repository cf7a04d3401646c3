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

// Package kernels implements the operations of the kernel IR on host values.
package kernels

import (
	"github.com/pkg/errors"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
	"github.com/gx-org/kernelir/build/ir"
)

type (
	// Value is a kernel value held by the host.
	Value interface {
		// Clone returns a deep copy of the value.
		Clone() Value

		// String representation of the value.
		String() string
	}

	// Array is a scalar, a vector, or a square matrix.
	// Values are stored as a flat slice of scalars.
	// Matrices have the axes [columns, rows] and are stored in column-major order.
	Array interface {
		Value

		// base returns the array supporting the implementation.
		base() baseArray

		// Shape returns the shape of the value.
		Shape() *shape.Shape

		// Buffer returns the raw data of the array.
		Buffer() []byte

		// Factory returns the kernels available for the value.
		Factory() Factory

		// ToAtom returns the atomic value contained in the array.
		// It returns an error if the value is not atomic.
		ToAtom() (any, error)

		// Component returns the ith component of a vector
		// or the ith column of a matrix.
		Component(i int) (Array, error)

		// WithComponent returns a copy of the array with its
		// ith component set to c.
		WithComponent(i int, c Array) (Array, error)
	}

	// Unary like -, sqrt, or reductions.
	Unary func(Array) (Array, error)

	// Binary like +, -, *, /.
	Binary func(Array, Array) (Array, error)

	// NAry like vector construction.
	NAry func([]Array) (Array, error)

	// Factory creates kernels for arrays of a given data type.
	Factory interface {
		// UnaryOp returns the kernel of a unary operator.
		UnaryOp(ir.Op) (Unary, error)

		// BinaryOp returns the kernel of a binary operator.
		// If one operand is atomic, it is broadcast to the shape of the other operand.
		BinaryOp(ir.Op) (Binary, error)

		// Reduce returns the kernel reducing all the components to one.
		Reduce(ir.Op) (Unary, error)

		// Cast returns the kernel converting arrays to another data type.
		Cast(target dtype.DataType) (Unary, error)

		// Compose builds a vector from atoms or a matrix from vectors.
		Compose() NAry

		// Splat returns a vector of n components equal to an atom.
		Splat(n int) Unary

		// Select returns the components of the first array where
		// the mask is true and the components of the second otherwise.
		Select(mask Array) Binary
	}
)

func isAtomic(sh *shape.Shape) bool {
	return len(sh.AxisLengths) == 0
}

// FactoryFor returns a factory given a data type.
func FactoryFor(dt dtype.DataType) (Factory, error) {
	switch dt {
	case dtype.Bool:
		return boolFactory{}, nil
	case dtype.Float32:
		return floatFactory{}, nil
	case dtype.Int32:
		return integerFactory[int32]{}, nil
	case dtype.Uint32:
		return integerFactory[uint32]{}, nil
	default:
		return nil, errors.Errorf("no kernel factory for %s", dt)
	}
}

// NewArrayFromRaw returns a new array from raw data.
func NewArrayFromRaw(data []byte, sh *shape.Shape) (Array, error) {
	if len(data) != sh.ByteSize() {
		return nil, errors.Errorf("buffer size is %d but shape specify a buffer size of %d", len(data), sh.ByteSize())
	}
	switch sh.DType {
	case dtype.Bool:
		return ToArray(append([]bool{}, dtype.ToSlice[bool](data)...), sh.AxisLengths), nil
	case dtype.Float32:
		return ToArray(append([]float32{}, dtype.ToSlice[float32](data)...), sh.AxisLengths), nil
	case dtype.Int32:
		return ToArray(append([]int32{}, dtype.ToSlice[int32](data)...), sh.AxisLengths), nil
	case dtype.Uint32:
		return ToArray(append([]uint32{}, dtype.ToSlice[uint32](data)...), sh.AxisLengths), nil
	default:
		return nil, errors.Errorf("cannot create an array from raw data: %s not supported", sh.DType.String())
	}
}
