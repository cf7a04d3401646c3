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

package ir

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/build/ir/irkind"
)

// Class of a type.
type Class uint8

// Classes of types.
const (
	InvalidClass Class = iota
	VoidClass
	ScalarClass
	VectorClass
	MatrixClass
	StructClass
	ArrayClass
	PointerClass
)

// String representation of the class.
func (c Class) String() string {
	switch c {
	case VoidClass:
		return "void"
	case ScalarClass:
		return "scalar"
	case VectorClass:
		return "vector"
	case MatrixClass:
		return "matrix"
	case StructClass:
		return "struct"
	case ArrayClass:
		return "array"
	case PointerClass:
		return "pointer"
	}
	return "invalid"
}

// Arity bounds of vectors and matrices.
const (
	MinArity = 2
	MaxArity = 4
)

type (
	// Field of a structure type.
	Field struct {
		Name string
		Type *Type
	}

	// Type is a canonical type owned by a registry.
	// Two types registered in the same registry are structurally
	// equal if and only if their pointers are equal.
	Type struct {
		reg    *Registry
		id     int
		class  Class
		kind   irkind.Kind
		elem   *Type
		n      int
		fields []Field
		key    string
	}
)

// ID returns the dense identifier of the type in its registry.
func (t *Type) ID() int {
	return t.id
}

// Registry owning the type.
func (t *Type) Registry() *Registry {
	return t.reg
}

// Class of the type.
func (t *Type) Class() Class {
	return t.class
}

// Kind returns the scalar kind of a scalar type or the element kind
// of a vector or a matrix. It returns irkind.Invalid for other types.
func (t *Type) Kind() irkind.Kind {
	return t.kind
}

// Elem returns the scalar type of a vector, the column type of a matrix,
// the element type of an array, or the pointee of a pointer.
func (t *Type) Elem() *Type {
	return t.elem
}

// Len returns the number of components of a vector, the dimension
// of a matrix, the length of an array, or the number of fields of
// a structure.
func (t *Type) Len() int {
	if t.class == StructClass {
		return len(t.fields)
	}
	return t.n
}

// Fields returns the fields of a structure.
func (t *Type) Fields() []Field {
	return append([]Field{}, t.fields...)
}

// FieldIndex returns the index of a field given its name.
func (t *Type) FieldIndex(name string) (int, bool) {
	for i, f := range t.fields {
		if f.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Component returns the type of the ith component of a composite type,
// that is the type of the value returned by extracting the component.
func (t *Type) Component(i int) (*Type, error) {
	if i < 0 || i >= t.Len() {
		return nil, errors.Errorf("index %d out of range [0:%d] for %s", i, t.Len(), t)
	}
	switch t.class {
	case VectorClass, MatrixClass, ArrayClass:
		return t.elem, nil
	case StructClass:
		return t.fields[i].Type, nil
	}
	return nil, errors.Errorf("%s has no component", t)
}

// IsScalar returns true if the type is a scalar.
func (t *Type) IsScalar() bool { return t.class == ScalarClass }

// IsVector returns true if the type is a vector.
func (t *Type) IsVector() bool { return t.class == VectorClass }

// IsMatrix returns true if the type is a matrix.
func (t *Type) IsMatrix() bool { return t.class == MatrixClass }

// IsVoid returns true if the type is the void type.
func (t *Type) IsVoid() bool { return t.class == VoidClass }

// IsNumeric returns true for scalars, vectors and matrices of integers or floats.
func (t *Type) IsNumeric() bool {
	return t.kind.IsInteger() || t.kind.IsFloat()
}

// IsInteger returns true for scalars and vectors of integers.
func (t *Type) IsInteger() bool { return t.kind.IsInteger() }

// IsFloat returns true for scalars, vectors, and matrices of floats.
func (t *Type) IsFloat() bool { return t.kind.IsFloat() }

// IsBool returns true for scalars and vectors of booleans.
func (t *Type) IsBool() bool { return t.kind == irkind.Bool }

// String representation of the type.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	return t.key
}

// Desc is a structural type descriptor.
type Desc interface {
	// key returns the canonical string of the descriptor.
	key() string
	// build a new type. Types referenced by the descriptor
	// must already be registered in the registry.
	build(*Registry) (*Type, error)
}

type (
	// VoidDesc describes the type of nodes producing no value.
	VoidDesc struct{}

	// ScalarDesc describes a scalar type.
	ScalarDesc struct {
		Kind irkind.Kind
	}

	// VectorDesc describes a vector type.
	VectorDesc struct {
		Elem irkind.Kind
		Len  int
	}

	// MatrixDesc describes a square floating-point matrix stored as columns.
	MatrixDesc struct {
		Elem irkind.Kind
		Dim  int
	}

	// StructDesc describes a structure type.
	StructDesc struct {
		Fields []Field
	}

	// ArrayDesc describes a fixed-length array type.
	ArrayDesc struct {
		Elem *Type
		Len  int
	}

	// PointerDesc describes the type of an assignable storage location.
	PointerDesc struct {
		Elem *Type
	}
)

func (VoidDesc) key() string { return "void" }

func (VoidDesc) build(r *Registry) (*Type, error) {
	return &Type{class: VoidClass}, nil
}

func (d ScalarDesc) key() string { return d.Kind.String() }

func (d ScalarDesc) build(r *Registry) (*Type, error) {
	if !d.Kind.IsValid() {
		return nil, errors.Errorf("scalar kind %d not supported", d.Kind)
	}
	return &Type{class: ScalarClass, kind: d.Kind}, nil
}

func checkArity(what string, n int) error {
	if n < MinArity || n > MaxArity {
		return errors.Errorf("%s arity %d not supported: must be in [%d:%d]", what, n, MinArity, MaxArity)
	}
	return nil
}

func (d VectorDesc) key() string { return fmt.Sprintf("vec%d<%s>", d.Len, d.Elem) }

func (d VectorDesc) build(r *Registry) (*Type, error) {
	if err := checkArity("vector", d.Len); err != nil {
		return nil, err
	}
	elem, err := r.Register(ScalarDesc{Kind: d.Elem})
	if err != nil {
		return nil, err
	}
	return &Type{class: VectorClass, kind: d.Elem, elem: elem, n: d.Len}, nil
}

func (d MatrixDesc) key() string { return fmt.Sprintf("mat%d<%s>", d.Dim, d.Elem) }

func (d MatrixDesc) build(r *Registry) (*Type, error) {
	if err := checkArity("matrix", d.Dim); err != nil {
		return nil, err
	}
	if !d.Elem.IsFloat() {
		return nil, errors.Errorf("matrix of %s not supported: matrix elements are floating-point", d.Elem)
	}
	col, err := r.Register(VectorDesc{Elem: d.Elem, Len: d.Dim})
	if err != nil {
		return nil, err
	}
	return &Type{class: MatrixClass, kind: d.Elem, elem: col, n: d.Dim}, nil
}

func (d StructDesc) key() string {
	fields := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		fields[i] = strconv.Quote(f.Name) + ":" + f.Type.String()
	}
	return "struct{" + strings.Join(fields, ",") + "}"
}

func (d StructDesc) build(r *Registry) (*Type, error) {
	if len(d.Fields) == 0 {
		return nil, errors.Errorf("structure with no field not supported")
	}
	names := make(map[string]bool)
	for _, f := range d.Fields {
		if f.Name == "" {
			return nil, errors.Errorf("structure field has no name")
		}
		if names[f.Name] {
			return nil, errors.Errorf("field %s defined more than once", f.Name)
		}
		names[f.Name] = true
		if err := r.checkOwned(f.Type); err != nil {
			return nil, err
		}
		if f.Type.class == VoidClass || f.Type.class == PointerClass {
			return nil, errors.Errorf("field %s of type %s not supported", f.Name, f.Type)
		}
	}
	return &Type{class: StructClass, fields: append([]Field{}, d.Fields...)}, nil
}

func (d ArrayDesc) key() string { return fmt.Sprintf("[%d]%s", d.Len, d.Elem) }

func (d ArrayDesc) build(r *Registry) (*Type, error) {
	if d.Len <= 0 {
		return nil, errors.Errorf("invalid array length %d", d.Len)
	}
	if err := r.checkOwned(d.Elem); err != nil {
		return nil, err
	}
	return &Type{class: ArrayClass, elem: d.Elem, n: d.Len}, nil
}

func (d PointerDesc) key() string { return "*" + d.Elem.String() }

func (d PointerDesc) build(r *Registry) (*Type, error) {
	if err := r.checkOwned(d.Elem); err != nil {
		return nil, err
	}
	if d.Elem.class == VoidClass || d.Elem.class == PointerClass {
		return nil, errors.Errorf("pointer to %s not supported", d.Elem)
	}
	return &Type{class: PointerClass, elem: d.Elem}, nil
}
