// Copyright 2024 Google LLC
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
// Package native converts Go host values to kernel values and back.
//
// Host values are scalars (bool, int32, uint32, float32), fixed-length
// arrays, slices, structures, and maps of type map[string]any.
// Vectors and matrices are read from nested arrays in column-major order.
package native

import (
	"reflect"
	"slices"

	"github.com/pkg/errors"
	"github.com/gx-org/backend/dtype"
	"github.com/gx-org/backend/shape"
	"github.com/gx-org/kernelir/api/values"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/golang/backend/kernels"
	"github.com/gx-org/kernelir/golang/encoding"
)

type (
	walkerStruct struct{ data reflect.Value }
	walkerSlice  struct{ data reflect.Value }
	walkerData   struct{ data reflect.Value }
)

var arrayType = reflect.TypeFor[kernels.Array]()

func newWalker(v reflect.Value) walkerData {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) && !v.Type().Implements(arrayType) {
		v = v.Elem()
	}
	return walkerData{data: v}
}

func (w walkerStruct) Field(name string) (encoding.Data, error) {
	var field reflect.Value
	switch w.data.Kind() {
	case reflect.Map:
		field = w.data.MapIndex(reflect.ValueOf(name))
	case reflect.Struct:
		field = w.data.FieldByName(name)
	}
	if !field.IsValid() {
		return nil, errors.Errorf("no field %s in %s", name, w.data.Type())
	}
	return newWalker(field), nil
}

func (w walkerSlice) Len() int {
	return w.data.Len()
}

func (w walkerSlice) Index(i int) (encoding.Data, error) {
	if i < 0 || i >= w.data.Len() {
		return nil, errors.Errorf("index %d out of range [0, %d)", i, w.data.Len())
	}
	return newWalker(w.data.Index(i)), nil
}

func (w walkerData) ToDataSlice() (encoding.DataSlice, error) {
	if !w.data.IsValid() {
		return nil, errors.Errorf("cannot convert nil to a slice")
	}
	switch w.data.Kind() {
	case reflect.Slice, reflect.Array:
		return walkerSlice{data: w.data}, nil
	}
	return nil, errors.Errorf("cannot convert %s to a slice", w.data.Type())
}

func (w walkerData) ToDataStruct() (encoding.DataStruct, error) {
	if !w.data.IsValid() {
		return nil, errors.Errorf("cannot convert nil to a structure")
	}
	switch w.data.Kind() {
	case reflect.Struct:
		return walkerStruct{data: w.data}, nil
	case reflect.Map:
		if w.data.Type().Key().Kind() == reflect.String {
			return walkerStruct{data: w.data}, nil
		}
	}
	return nil, errors.Errorf("cannot convert %s to a structure", w.data.Type())
}

func (w walkerData) ValueFuture() (encoding.ValueFuture, error) {
	return w, nil
}

// Value returns the array stored in the data.
func (w walkerData) Value(typ *ir.Type) (kernels.Array, error) {
	sh, err := kernels.ShapeOf(typ)
	if err != nil {
		return nil, err
	}
	if !w.data.IsValid() {
		return nil, errors.Errorf("cannot convert nil to %s", typ)
	}
	if w.data.Type().Implements(arrayType) {
		arr := w.data.Interface().(kernels.Array)
		if got := arr.Shape(); got.DType != sh.DType || !slices.Equal(got.AxisLengths, sh.AxisLengths) {
			return nil, errors.Errorf("cannot use an array of shape %s as %s", arr.Shape(), typ)
		}
		return arr, nil
	}
	leaves, err := flatten(w.data, nil)
	if err != nil {
		return nil, err
	}
	if len(leaves) != sh.Size() {
		return nil, errors.Errorf("cannot convert %s to %s: got %d components but want %d", w.data.Type(), typ, len(leaves), sh.Size())
	}
	switch sh.DType {
	case dtype.Bool:
		return toArray[bool](leaves, sh)
	case dtype.Float32:
		return toArray[float32](leaves, sh)
	case dtype.Int32:
		return toArray[int32](leaves, sh)
	case dtype.Uint32:
		return toArray[uint32](leaves, sh)
	}
	return nil, errors.Errorf("cannot convert %s to %s: not supported", w.data.Type(), typ)
}

// flatten appends the scalars of a host value to leaves in memory order.
func flatten(v reflect.Value, leaves []reflect.Value) ([]reflect.Value, error) {
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		return flatten(v.Elem(), leaves)
	case reflect.Array, reflect.Slice:
		var err error
		for i := range v.Len() {
			if leaves, err = flatten(v.Index(i), leaves); err != nil {
				return nil, err
			}
		}
		return leaves, nil
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return append(leaves, v), nil
	}
	return nil, errors.Errorf("cannot convert %s to a kernel value", v.Kind())
}

func toArray[T values.Scalar](leaves []reflect.Value, sh *shape.Shape) (kernels.Array, error) {
	target := reflect.TypeFor[T]()
	vals := make([]T, len(leaves))
	for i, leaf := range leaves {
		if !leaf.CanConvert(target) || (leaf.Kind() == reflect.Bool) != (target.Kind() == reflect.Bool) {
			return nil, errors.Errorf("cannot convert %s to %s", leaf.Type(), target)
		}
		vals[i] = leaf.Convert(target).Interface().(T)
	}
	return kernels.ToArray(vals, append([]int{}, sh.AxisLengths...)), nil
}

// Encode returns the kernel value of type typ for a host value.
func Encode(typ *ir.Type, host any) (kernels.Value, error) {
	return encoding.Decode(typ, newWalker(reflect.ValueOf(host)))
}

// EncodeSlice returns the kernel values of type typ for a slice of host values.
func EncodeSlice[T any](typ *ir.Type, host []T) ([]kernels.Value, error) {
	return encoding.DecodeSlice(typ, walkerSlice{data: reflect.ValueOf(host)})
}

// Decode writes a kernel value into the host value pointed to by target.
func Decode(val kernels.Value, target any) error {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() {
		return errors.Errorf("cannot decode into %T: not a pointer", target)
	}
	return decode(val, ptr.Elem())
}

func decode(val kernels.Value, target reflect.Value) error {
	switch valT := val.(type) {
	case *kernels.Tuple:
		return decodeTuple(valT, target)
	case kernels.Array:
		if target.Type().Implements(arrayType) {
			target.Set(reflect.ValueOf(valT.Clone()))
			return nil
		}
		leaves, err := arrayLeaves(valT)
		if err != nil {
			return err
		}
		rest, err := assign(target, leaves)
		if err != nil {
			return err
		}
		if len(rest) > 0 {
			return errors.Errorf("cannot decode %s into %s: %d components left", valT, target.Type(), len(rest))
		}
		return nil
	}
	return errors.Errorf("cannot decode %T", val)
}

func decodeTuple(tuple *kernels.Tuple, target reflect.Value) error {
	var elem func(int) reflect.Value
	switch target.Kind() {
	case reflect.Struct:
		if target.NumField() != tuple.Len() {
			return errors.Errorf("cannot decode %d fields into %s", tuple.Len(), target.Type())
		}
		elem = target.Field
	case reflect.Array:
		if target.Len() != tuple.Len() {
			return errors.Errorf("cannot decode %d elements into %s", tuple.Len(), target.Type())
		}
		elem = target.Index
	default:
		return errors.Errorf("cannot decode a tuple into %s", target.Type())
	}
	for i := range tuple.Len() {
		el, err := tuple.Elem(i)
		if err != nil {
			return err
		}
		if err := decode(el, elem(i)); err != nil {
			return errors.WithMessagef(err, "element %d", i)
		}
	}
	return nil
}

func leavesOf[T values.Scalar](a kernels.Array) ([]reflect.Value, error) {
	vals, err := kernels.ToSlice[T](a)
	if err != nil {
		return nil, err
	}
	leaves := make([]reflect.Value, len(vals))
	for i, v := range vals {
		leaves[i] = reflect.ValueOf(v)
	}
	return leaves, nil
}

func arrayLeaves(a kernels.Array) ([]reflect.Value, error) {
	switch a.Shape().DType {
	case dtype.Bool:
		return leavesOf[bool](a)
	case dtype.Float32:
		return leavesOf[float32](a)
	case dtype.Int32:
		return leavesOf[int32](a)
	case dtype.Uint32:
		return leavesOf[uint32](a)
	}
	return nil, errors.Errorf("cannot decode an array of %s", a.Shape().DType)
}

// assign sets the scalars of target from leaves and returns the leaves left.
func assign(target reflect.Value, leaves []reflect.Value) ([]reflect.Value, error) {
	if target.Kind() == reflect.Array {
		var err error
		for i := range target.Len() {
			if leaves, err = assign(target.Index(i), leaves); err != nil {
				return nil, err
			}
		}
		return leaves, nil
	}
	if len(leaves) == 0 {
		return nil, errors.Errorf("not enough components to decode %s", target.Type())
	}
	leaf := leaves[0]
	if !leaf.CanConvert(target.Type()) {
		return nil, errors.Errorf("cannot decode %s into %s", leaf.Type(), target.Type())
	}
	target.Set(leaf.Convert(target.Type()))
	return leaves[1:], nil
}
