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

// Package encoding decodes host data into kernel values.
package encoding

import (
	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/golang/backend/kernels"
)

type (
	// DataSlice is serialized data of a slice.
	DataSlice interface {
		Index(int) (Data, error)
		Len() int
	}

	// DataStruct is serialized data of a struct.
	DataStruct interface {
		Field(name string) (Data, error)
	}

	// ValueFuture is a proxy to a scalar, a vector, or a matrix
	// being loaded perhaps in the background.
	ValueFuture interface {
		Value(typ *ir.Type) (kernels.Array, error)
	}

	// Data is a generic kind of data.
	Data interface {
		// ToDataSlice returns a slice view on the serialized data.
		ToDataSlice() (DataSlice, error)

		// ToDataStruct returns a struct view on the serialized data.
		ToDataStruct() (DataStruct, error)

		// ValueFuture able to return data once it has been loaded.
		ValueFuture() (ValueFuture, error)
	}

	setter func(kernels.Value)
)

func decode(ld *loader, typ *ir.Type, data Data, set setter) error {
	switch typ.Class() {
	case ir.StructClass:
		return decodeStruct(ld, typ, data, set)
	case ir.ArrayClass:
		return decodeArray(ld, typ, data, set)
	case ir.ScalarClass, ir.VectorClass, ir.MatrixClass:
		return ld.setLeaf(typ, data, set)
	}
	return errors.Errorf("cannot decode a value of type %s", typ)
}

func decodeStruct(ld *loader, typ *ir.Type, data Data, set setter) error {
	dataStruct, err := data.ToDataStruct()
	if err != nil {
		return err
	}
	fields := typ.Fields()
	elems := make([]kernels.Value, len(fields))
	for i, field := range fields {
		fieldData, err := dataStruct.Field(field.Name)
		if err != nil {
			return err
		}
		if err := decode(ld, field.Type, fieldData, func(v kernels.Value) {
			elems[i] = v
		}); err != nil {
			return errors.WithMessagef(err, "field %s", field.Name)
		}
	}
	set(kernels.NewTuple(elems))
	return nil
}

func decodeArray(ld *loader, typ *ir.Type, data Data, set setter) error {
	sliceData, err := data.ToDataSlice()
	if err != nil {
		return err
	}
	if sliceData.Len() != typ.Len() {
		return errors.Errorf("cannot decode %d elements into %s", sliceData.Len(), typ)
	}
	elems, err := decodeElements(ld, typ.Elem(), sliceData)
	if err != nil {
		return err
	}
	set(kernels.NewTuple(elems))
	return nil
}

func decodeElements(ld *loader, typ *ir.Type, sliceData DataSlice) ([]kernels.Value, error) {
	elems := make([]kernels.Value, sliceData.Len())
	for i := range elems {
		elemData, err := sliceData.Index(i)
		if err != nil {
			return nil, err
		}
		if err := decode(ld, typ, elemData, func(v kernels.Value) {
			elems[i] = v
		}); err != nil {
			return nil, errors.WithMessagef(err, "element %d", i)
		}
	}
	return elems, nil
}

// Decode returns the kernel value of type typ stored in data.
func Decode(typ *ir.Type, data Data) (val kernels.Value, err error) {
	ld := newLoader()
	defer func() {
		errClose := ld.close()
		if err == nil {
			// We only report closing error if we had no previous errors.
			err = errClose
		}
		if err != nil {
			val = nil
		}
	}()
	err = decode(ld, typ, data, func(v kernels.Value) {
		val = v
	})
	return
}

// DecodeSlice returns the kernel values of type typ stored in a slice.
func DecodeSlice(typ *ir.Type, data DataSlice) (vals []kernels.Value, err error) {
	ld := newLoader()
	defer func() {
		errClose := ld.close()
		if err == nil {
			err = errClose
		}
		if err != nil {
			vals = nil
		}
	}()
	vals, err = decodeElements(ld, typ, data)
	return
}
