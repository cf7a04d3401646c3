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

// Package sync provides synchronized data structures.
package sync

import (
	"iter"
	"sync"
	"sync/atomic"
)

// Map is a generic append-only synchronized map. It is a wrapper around Go's
// standard sync.Map: entries can be added but never replaced or removed.
// Reads never block.
type Map[K comparable, V any] struct {
	m    sync.Map
	size atomic.Int64
}

// Load returns a value given a key.
func (sm *Map[K, V]) Load(k K) (v V, ok bool) {
	vAny, ok := sm.m.Load(k)
	if !ok {
		return
	}
	return vAny.(V), true
}

// LoadOrStore returns the value of a key if it is present.
// Otherwise, it stores v. The loaded result is true if the value
// was loaded, false if stored.
func (sm *Map[K, V]) LoadOrStore(k K, v V) (actual V, loaded bool) {
	vAny, loaded := sm.m.LoadOrStore(k, v)
	if !loaded {
		sm.size.Add(1)
	}
	return vAny.(V), loaded
}

// Size returns the number of elements in the map.
func (sm *Map[K, V]) Size() int {
	return int(sm.size.Load())
}

// Iter returns an iterator to range over the elements of the map.
// The order is unspecified.
func (sm *Map[K, V]) Iter() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		sm.m.Range(func(k, v any) bool {
			return yield(k.(K), v.(V))
		})
	}
}
