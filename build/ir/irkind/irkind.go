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

// Package irkind defines the scalar kinds of the kernel intermediate representation (IR).
package irkind

import "github.com/gx-org/backend/dtype"

// Kind of a scalar.
type Kind uint

// Scalar kinds supported by kernels.
const (
	Invalid = Kind(dtype.Invalid)

	Bool    = Kind(dtype.Bool)
	Int32   = Kind(dtype.Int32)
	Uint32  = Kind(dtype.Uint32)
	Float32 = Kind(dtype.Float32)
)

// All returns all the valid scalar kinds.
func All() []Kind {
	return []Kind{Bool, Int32, Uint32, Float32}
}

// String returns a string representation of a kind.
func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Float32:
		return "float32"
	}
	return "invalid"
}

// DType converts a kind into a backend data type.
func (k Kind) DType() dtype.DataType {
	if !k.IsValid() {
		return dtype.Invalid
	}
	return dtype.DataType(k)
}

// IsValid returns true if the kind is supported by kernels.
func (k Kind) IsValid() bool {
	switch k {
	case Bool, Int32, Uint32, Float32:
		return true
	}
	return false
}

// IsInteger returns true if the kind is an integer.
func (k Kind) IsInteger() bool {
	return k == Int32 || k == Uint32
}

// IsFloat returns true if the kind is a float.
func (k Kind) IsFloat() bool {
	return k == Float32
}

// IsSigned returns true if negative values can be represented.
func (k Kind) IsSigned() bool {
	return k == Int32 || k == Float32
}

// FromDType returns the kind of a backend data type.
// Data types not supported by kernels return Invalid.
func FromDType(dt dtype.DataType) Kind {
	k := Kind(dt)
	if !k.IsValid() {
		return Invalid
	}
	return k
}

// KindFromString returns a kind given an identifier.
func KindFromString(ident string) Kind {
	switch ident {
	case "bool":
		return Bool
	case "int32":
		return Int32
	case "uint32":
		return Uint32
	case "float32":
		return Float32
	default:
		return Invalid
	}
}

// KindGeneric returns the kind of a Go scalar type.
// If the type is not supported by kernels, Invalid is returned.
func KindGeneric[T dtype.GoDataType]() Kind {
	return FromDType(dtype.Generic[T]())
}
