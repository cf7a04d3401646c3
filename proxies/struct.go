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

package proxies

import (
	"github.com/gx-org/kernelir/build/builder"
	"github.com/gx-org/kernelir/build/fmterr"
	"github.com/gx-org/kernelir/build/ir"
)

// Struct is a proxy for a structure with the layout of the Go structure S.
type Struct[S any] struct {
	base
}

var _ Proxy[Struct[struct{ X float32 }]] = Struct[struct{ X float32 }]{}

func (Struct[S]) accepts(typ *ir.Type) bool {
	st, err := ir.TypeOf[S](typ.Registry())
	return err == nil && st == typ
}

func (Struct[S]) withNode(b *builder.Builder, id ir.NodeID) Struct[S] {
	return Struct[S]{base{b: b, id: id}}
}

func (s Struct[S]) fieldIndex(name string) (int, *ir.Type) {
	typ := s.Type()
	i, ok := typ.FieldIndex(name)
	if !ok {
		fmterr.Raise(fmterr.ErrTypeMismatch, "%s has no field %s", typ, name)
	}
	return i, typ.Fields()[i].Type
}

// Field returns the value of a field given its name.
func (s Struct[S]) Field(name string) Dyn {
	i, typ := s.fieldIndex(name)
	return emit[Dyn](ir.OpExtract, typ, i, s)
}

// WithField returns a copy of the structure with a field set to v.
// The receiver is not modified.
func (s Struct[S]) WithField(name string, v Value) Struct[S] {
	i, typ := s.fieldIndex(name)
	checkSameType("setting field "+name, typ, v.Type())
	return emit[Struct[S]](ir.OpInsert, s.Type(), i, s, v)
}

// FieldAs returns the value of a field as a typed proxy.
// It raises a type mismatch if the field cannot be represented by P.
func FieldAs[P Proxy[P], S any](s Struct[S], name string) P {
	f := s.Field(name)
	return FromNode[P](f.Builder(), f.Node())
}

// StructOf returns a structure literal given a host value.
func StructOf[S any](b *builder.Builder, v S) Struct[S] {
	typ, err := ir.TypeOf[S](b.Registry())
	if err != nil {
		panic(fmterr.Position(fmterr.ErrTypeMismatch, err))
	}
	if typ.Class() != ir.StructClass {
		fmterr.Raise(fmterr.ErrTypeMismatch, "%T is not a structure", v)
	}
	return emitIn[Struct[S]](b, ir.OpLiteral, typ, v)
}

// MakeStruct returns a structure given the values of its fields in order.
func MakeStruct[S any](fields ...Value) Struct[S] {
	if len(fields) == 0 {
		fmterr.Raise(fmterr.ErrTypeMismatch, "cannot build a structure without fields")
	}
	b := current(fields...)
	typ, err := ir.TypeOf[S](b.Registry())
	if err != nil {
		panic(fmterr.Position(fmterr.ErrTypeMismatch, err))
	}
	want := typ.Fields()
	if typ.Class() != ir.StructClass || len(want) != len(fields) {
		fmterr.Raise(fmterr.ErrTypeMismatch, "cannot build %s from %d values", typ, len(fields))
	}
	for i, f := range fields {
		checkSameType("field "+want[i].Name, want[i].Type, f.Type())
	}
	return emit[Struct[S]](ir.OpCompose, typ, nil, fields...)
}
