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

package poly

import (
	"github.com/gx-org/kernelir/build/builder"
	"github.com/gx-org/kernelir/build/fmterr"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/internal/base/scope"
	"github.com/gx-org/kernelir/proxies"
)

type (
	// TagIndex addresses an object in a table: the tag selects the buffer
	// and the index selects the element in the buffer.
	TagIndex struct {
		Tag   proxies.Expr[uint32]
		Index proxies.Expr[uint32]
	}

	// Ref is a reference to an object in a table.
	// The object is resolved when an operation is dispatched.
	Ref[K comparable, I any] struct {
		poly *Polymorphic[K, I]
		key  K
		ti   TagIndex
	}
)

// NewTagIndex returns a (tag, index) pair.
func NewTagIndex(tag, index proxies.Expr[uint32]) TagIndex {
	return TagIndex{Tag: tag, Index: index}
}

// Get returns a reference to the object addressed by ti
// in the namespace of key.
func (p *Polymorphic[K, I]) Get(key K, ti TagIndex) Ref[K, I] {
	proxies.BuilderOf(ti.Tag, ti.Index)
	return Ref[K, I]{poly: p, key: key, ti: ti}
}

// TagIndex returns the address of the object.
func (r Ref[K, I]) TagIndex() TagIndex {
	return r.ti
}

// Dispatch traces f once for each buffer of the namespace and returns
// the value computed by the branch selected by the tag at runtime.
// All branches must return values of the same type.
func Dispatch[K comparable, I any, P proxies.Proxy[P]](r Ref[K, I], f func(tag Tag, key K, obj I) P) P {
	b, id := r.dispatch(func(tag Tag, key K, obj I) proxies.Value {
		return f(tag, key, obj)
	})
	return proxies.FromNode[P](b, id)
}

// Visit traces f once for each buffer of the namespace. Only the branch
// selected by the tag is executed at runtime.
func (r Ref[K, I]) Visit(f func(tag Tag, key K, obj I)) {
	r.dispatch(func(tag Tag, key K, obj I) proxies.Value {
		f(tag, key, obj)
		return nil
	})
}

func (r Ref[K, I]) dispatch(f func(Tag, K, I) proxies.Value) (*builder.Builder, ir.NodeID) {
	if r.poly == nil {
		fmterr.Raise(fmterr.ErrContextMisuse, "dispatch on a zero reference")
	}
	b := proxies.BuilderOf(r.ti.Tag, r.ti.Index)
	n := r.poly.Len(r.key)
	if n == 0 {
		fmterr.Raise(fmterr.ErrMissingRegistration, "dispatch on namespace %v without registered buffers", r.key)
	}
	var resultType *ir.Type
	cases := make([]ir.Case, 0, n)
	for entry := range r.poly.Entries(r.key) {
		body := proxies.Block(b, scope.Block, func() proxies.Value {
			obj := proxies.Buffer[proxies.Dyn](b, entry.Buffer).Read(r.ti.Index)
			res := f(entry.Tag, entry.Key, entry.view(obj))
			typ := b.Registry().Void()
			if res != nil {
				typ = res.Type()
			}
			if resultType == nil {
				resultType = typ
			} else if typ != resultType {
				fmterr.Raise(fmterr.ErrTypeMismatch, "dispatch branch for tag %d returns %s but previous branches return %s", entry.Tag, typ, resultType)
			}
			return res
		})
		cases = append(cases, ir.Case{Value: int32(entry.Tag), Body: body})
	}
	deflt := proxies.Block(b, scope.Block, func() proxies.Value {
		proxies.Unreachable(b, "polymorphic tag out of range [0, %d)", n)
		return nil
	})
	aux := ir.SwitchAux{Cases: cases, Default: deflt}
	return b, b.Emit(ir.OpSwitch, []ir.NodeID{r.ti.Tag.Node()}, resultType, aux)
}
