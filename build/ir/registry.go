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
	gosync "sync"

	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/base/sync"
	"github.com/gx-org/kernelir/build/ir/irkind"
)

// Registry interns type descriptors.
// Registering structurally equal descriptors returns the same type.
// Types are never removed from a registry.
//
// A registry is safe for concurrent use: lookups never block and
// insertions are serialized.
type Registry struct {
	mu    gosync.Mutex
	byKey sync.Map[string, *Type]
	byID  []*Type

	hostTypes sync.Map[reflect.Type, *Type]
}

var defaultRegistry = NewRegistry()

// NewRegistry returns a new empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register a descriptor in the process-wide registry.
func Register(d Desc) (*Type, error) {
	return defaultRegistry.Register(d)
}

// Register a descriptor and returns its canonical type.
func (r *Registry) Register(d Desc) (*Type, error) {
	key := d.key()
	if t, ok := r.byKey.Load(key); ok {
		return t, nil
	}
	// Types referenced by the descriptor are registered while building,
	// so the lock is only taken once the new type is ready.
	t, err := d.build(r)
	if err != nil {
		return nil, errors.WithMessagef(err, "cannot register type %s", key)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.byKey.Load(key); ok {
		return prev, nil
	}
	t.reg = r
	t.key = key
	t.id = len(r.byID)
	r.byID = append(r.byID, t)
	r.byKey.LoadOrStore(key, t)
	return t, nil
}

// Lookup returns a type given its identifier.
func (r *Registry) Lookup(id int) (*Type, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 0 || id >= len(r.byID) {
		return nil, false
	}
	return r.byID[id], true
}

// Size returns the number of types in the registry.
func (r *Registry) Size() int {
	return r.byKey.Size()
}

func (r *Registry) checkOwned(t *Type) error {
	if t == nil {
		return errors.Errorf("nil type")
	}
	if t.reg != r {
		return errors.Errorf("type %s is owned by another registry", t)
	}
	return nil
}

func (r *Registry) mustRegister(d Desc) *Type {
	t, err := r.Register(d)
	if err != nil {
		panic(errors.Wrapf(err, "cannot register builtin type"))
	}
	return t
}

// Void returns the void type.
func (r *Registry) Void() *Type {
	return r.mustRegister(VoidDesc{})
}

// Scalar returns a scalar type. It panics if the kind is invalid.
func (r *Registry) Scalar(k irkind.Kind) *Type {
	return r.mustRegister(ScalarDesc{Kind: k})
}

// Vector returns a vector type.
func (r *Registry) Vector(k irkind.Kind, n int) (*Type, error) {
	return r.Register(VectorDesc{Elem: k, Len: n})
}

// Matrix returns a square matrix type.
func (r *Registry) Matrix(k irkind.Kind, dim int) (*Type, error) {
	return r.Register(MatrixDesc{Elem: k, Dim: dim})
}

// Struct returns a structure type.
func (r *Registry) Struct(fields ...Field) (*Type, error) {
	return r.Register(StructDesc{Fields: fields})
}

// Array returns a fixed-length array type.
func (r *Registry) Array(elem *Type, n int) (*Type, error) {
	return r.Register(ArrayDesc{Elem: elem, Len: n})
}

// Pointer returns the type of an assignable location storing a value of type elem.
func (r *Registry) Pointer(elem *Type) (*Type, error) {
	return r.Register(PointerDesc{Elem: elem})
}

// WithKind returns the type with the same shape as t but with
// a different scalar kind. Only scalars, vectors and matrices are supported.
func (r *Registry) WithKind(t *Type, k irkind.Kind) (*Type, error) {
	switch t.class {
	case ScalarClass:
		return r.Register(ScalarDesc{Kind: k})
	case VectorClass:
		return r.Vector(k, t.n)
	case MatrixClass:
		return r.Matrix(k, t.n)
	}
	return nil, errors.Errorf("cannot change the kind of %s", t)
}
