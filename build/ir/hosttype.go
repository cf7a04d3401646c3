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
	"reflect"

	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/build/ir/irkind"
)

// HostType is implemented by Go types declaring their own kernel type,
// for example host vectors and matrices.
// The method is called on the zero value of the Go type.
type HostType interface {
	KernelType(*Registry) (*Type, error)
}

var hostTypeIface = reflect.TypeFor[HostType]()

// TypeOf returns the kernel type of a Go type.
//
// Supported Go types are bool, int32, uint32, float32, types implementing
// HostType, fixed-length arrays, and structures for which all the fields
// are exported and supported.
func TypeOf[T any](r *Registry) (*Type, error) {
	return r.TypeOfHost(reflect.TypeFor[T]())
}

// TypeOfHost returns the kernel type of a Go type given its reflect type.
func (r *Registry) TypeOfHost(rt reflect.Type) (*Type, error) {
	if t, ok := r.hostTypes.Load(rt); ok {
		return t, nil
	}
	t, err := r.typeOfHost(rt)
	if err != nil {
		return nil, err
	}
	t, _ = r.hostTypes.LoadOrStore(rt, t)
	return t, nil
}

func (r *Registry) typeOfHost(rt reflect.Type) (*Type, error) {
	if rt.Implements(hostTypeIface) {
		return reflect.Zero(rt).Interface().(HostType).KernelType(r)
	}
	switch rt.Kind() {
	case reflect.Bool:
		return r.Scalar(irkind.Bool), nil
	case reflect.Int32:
		return r.Scalar(irkind.Int32), nil
	case reflect.Uint32:
		return r.Scalar(irkind.Uint32), nil
	case reflect.Float32:
		return r.Scalar(irkind.Float32), nil
	case reflect.Array:
		elem, err := r.TypeOfHost(rt.Elem())
		if err != nil {
			return nil, err
		}
		return r.Array(elem, rt.Len())
	case reflect.Struct:
		fields := make([]Field, rt.NumField())
		for i := range fields {
			field := rt.Field(i)
			if !field.IsExported() {
				return nil, errors.Errorf("cannot convert %s to a kernel type: field %s is not exported", rt, field.Name)
			}
			typ, err := r.TypeOfHost(field.Type)
			if err != nil {
				return nil, errors.WithMessagef(err, "field %s of %s", field.Name, rt)
			}
			fields[i] = Field{Name: field.Name, Type: typ}
		}
		return r.Struct(fields...)
	}
	return nil, errors.Errorf("Go type %s has no kernel type", rt)
}
