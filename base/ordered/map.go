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

// Package ordered provides ordered data structure.
package ordered

import "iter"

// Map is an ordered map. Iter iterates over the map
// using the same order in which the keys have been added.
//
// Every key is assigned a dense position when it is first stored.
// Positions start at 0 and never change, even when the value of
// a key is overwritten.
type Map[K comparable, V any] struct {
	keys []K
	pos  map[K]int
	vals []V
}

// NewMap returns a new ordered map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{pos: make(map[K]int)}
}

// Store a key,value pair and returns the position of the key.
func (m *Map[K, V]) Store(k K, v V) int {
	i, in := m.pos[k]
	if in {
		m.vals[i] = v
		return i
	}
	i = len(m.keys)
	m.pos[k] = i
	m.keys = append(m.keys, k)
	m.vals = append(m.vals, v)
	return i
}

// Load returns a value given a key.
func (m *Map[K, V]) Load(k K) (v V, ok bool) {
	i, ok := m.pos[k]
	if !ok {
		return
	}
	return m.vals[i], true
}

// Index returns the position of a key.
func (m *Map[K, V]) Index(k K) (int, bool) {
	i, ok := m.pos[k]
	return i, ok
}

// At returns the key,value pair stored at position i.
// It panics if i is out of range.
func (m *Map[K, V]) At(i int) (K, V) {
	return m.keys[i], m.vals[i]
}

// Iter returns an iterator to range over the elements of the map.
func (m *Map[K, V]) Iter() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for i, k := range m.keys {
			if !yield(k, m.vals[i]) {
				break
			}
		}
	}
}

// Keys returns an iterator to range over the keys of the map.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for _, k := range m.keys {
			if !yield(k) {
				break
			}
		}
	}
}

// Values returns an iterator to range over the values of the map.
func (m *Map[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range m.vals {
			if !yield(v) {
				break
			}
		}
	}
}

// Size returns the number of elements in the map.
func (m *Map[K, V]) Size() int {
	return len(m.keys)
}
