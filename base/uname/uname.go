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

// Package uname provides unique names.
package uname

import (
	"fmt"
	"sync"
)

// Unique generates unique names. It is safe for concurrent use.
type Unique struct {
	mu    sync.Mutex
	names map[string]int
}

// New name generator.
func New() *Unique {
	return &Unique{names: make(map[string]int)}
}

// Register reserves a name such that it is never returned by Name.
func (n *Unique) Register(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if _, ok := n.names[name]; !ok {
		n.names[name] = 1
	}
}

// Name returns a unique name given a desired base name.
// If the base name is available, it is returned directly.
// Else, the first available suffix _1, _2, ... is appended.
func (n *Unique) Name(root string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	next, ok := n.names[root]
	if !ok {
		n.names[root] = 1
		return root
	}
	for {
		name := fmt.Sprintf("%s_%d", root, next)
		next++
		if _, taken := n.names[name]; taken {
			continue
		}
		n.names[root] = next
		n.names[name] = 1
		return name
	}
}
