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

// Package poly dispatches an operation over objects of different types
// stored in different buffers without indirect calls.
//
// Each buffer registered in a table is assigned a dense tag. A kernel
// addresses an object with a (tag, index) pair known only when the kernel
// runs. Dispatching traces the operation once per registered tag, in
// registration order, and records a switch selecting the branch matching
// the runtime tag. Tags outside of the registered range trap.
package poly

import (
	"iter"

	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/base/ordered"
	"github.com/gx-org/kernelir/build/fmterr"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/proxies"
)

// Tag identifies a registered buffer in a table.
type Tag uint32

type (
	// Entry is a buffer registered in a table.
	Entry[K comparable, I any] struct {
		Tag    Tag
		Key    K
		Type   *ir.Type
		Buffer ir.Buffer

		view func(proxies.Dyn) I
	}

	namespace[K comparable, I any] struct {
		entries *ordered.Map[*ir.Type, *Entry[K, I]]
	}

	// Polymorphic is a table of buffers storing objects implementing
	// the interface I.
	//
	// Buffers are grouped in namespaces identified by a key K chosen by
	// the caller, for instance to process objects of the same type
	// differently. Tags are dense within a namespace. Use struct{} as K
	// if a single namespace is required.
	//
	// Registering buffers is not safe for concurrent use.
	Polymorphic[K comparable, I any] struct {
		namespaces *ordered.Map[K, *namespace[K, I]]
	}
)

// New returns a new empty table.
func New[K comparable, I any]() *Polymorphic[K, I] {
	return &Polymorphic[K, I]{namespaces: ordered.NewMap[K, *namespace[K, I]]()}
}

// Register adds a buffer of objects to the namespace of key and returns
// the tag of the buffer in that namespace. view returns the interface
// implementation of an object read from the buffer while tracing.
//
// Registering two buffers with the same key and element type is an error.
func Register[K comparable, I any, P proxies.Proxy[P]](p *Polymorphic[K, I], key K, buf ir.Buffer, view func(P) I) (Tag, error) {
	elem := buf.ElemType()
	if elem == nil {
		return 0, errors.Errorf("buffer %v has no element type", buf)
	}
	if !proxies.Accepts[P](elem) {
		var zero P
		return 0, fmterr.Errorf(fmterr.ErrTypeMismatch, "buffer of %s cannot be accessed as %T", elem, zero)
	}
	ns, ok := p.namespaces.Load(key)
	if !ok {
		ns = &namespace[K, I]{entries: ordered.NewMap[*ir.Type, *Entry[K, I]]()}
		p.namespaces.Store(key, ns)
	}
	if prev, ok := ns.entries.Load(elem); ok {
		return 0, fmterr.Errorf(fmterr.ErrDuplicateRegistration, "buffer of %s with key %v already registered with tag %d", elem, key, prev.Tag)
	}
	entry := &Entry[K, I]{
		Tag:    Tag(ns.entries.Size()),
		Key:    key,
		Type:   elem,
		Buffer: buf,
		view: func(obj proxies.Dyn) I {
			return view(proxies.MustDowncast[P](obj))
		},
	}
	ns.entries.Store(elem, entry)
	return entry.Tag, nil
}

// Keys returns the keys of the namespaces in registration order.
func (p *Polymorphic[K, I]) Keys() iter.Seq[K] {
	return p.namespaces.Keys()
}

// Len returns the number of buffers registered in the namespace of key.
func (p *Polymorphic[K, I]) Len(key K) int {
	ns, ok := p.namespaces.Load(key)
	if !ok {
		return 0
	}
	return ns.entries.Size()
}

// Entries returns the buffers registered in the namespace of key in tag order.
func (p *Polymorphic[K, I]) Entries(key K) iter.Seq[*Entry[K, I]] {
	return func(yield func(*Entry[K, I]) bool) {
		ns, ok := p.namespaces.Load(key)
		if !ok {
			return
		}
		for entry := range ns.entries.Values() {
			if !yield(entry) {
				return
			}
		}
	}
}

// Entry returns the buffer registered with a tag in the namespace of key.
func (p *Polymorphic[K, I]) Entry(key K, tag Tag) (*Entry[K, I], bool) {
	if int(tag) >= p.Len(key) {
		return nil, false
	}
	ns, _ := p.namespaces.Load(key)
	_, entry := ns.entries.At(int(tag))
	return entry, true
}

// Tag returns the tag of the buffer registered with a key and an element type.
func (p *Polymorphic[K, I]) Tag(key K, typ *ir.Type) (Tag, bool) {
	ns, ok := p.namespaces.Load(key)
	if !ok {
		return 0, false
	}
	i, ok := ns.entries.Index(typ)
	return Tag(i), ok
}
