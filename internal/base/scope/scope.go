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

// Package scope provides types for modeling the nested blocks in which
// nodes are recorded while a function is being traced.
package scope

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/build/ir"
)

// Kind of a scope.
type Kind uint8

// Kinds of scopes.
const (
	// Func is the top-level scope of a function.
	Func Kind = iota
	// Block is a nested block of a structured node (branch or case).
	Block
	// LoopCond is the condition of a loop.
	LoopCond
	// LoopBody is the body of a loop.
	LoopBody
)

// String representation of the kind.
func (k Kind) String() string {
	switch k {
	case Func:
		return "func"
	case Block:
		return "block"
	case LoopCond:
		return "loop condition"
	case LoopBody:
		return "loop body"
	}
	return "invalid"
}

// Scope records the identifiers of the nodes emitted while it is open.
// A scope can be queried for properties of its parents.
type Scope struct {
	parent *Scope
	kind   Kind
	nodes  []ir.NodeID
}

// Kind returns the kind of the scope.
func (s *Scope) Kind() Kind {
	return s.kind
}

// Parent returns the parent scope or nil for the top-level scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

// Record appends a node to the scope.
func (s *Scope) Record(id ir.NodeID) {
	s.nodes = append(s.nodes, id)
}

// Len returns the number of recorded nodes.
func (s *Scope) Len() int {
	return len(s.nodes)
}

// InLoop returns true if the scope, or one of its parents up to
// the function scope, is the body of a loop.
func (s *Scope) InLoop() bool {
	for sc := s; sc != nil; sc = sc.parent {
		if sc.kind == LoopBody {
			return true
		}
	}
	return false
}

// Encloses returns true if s is other or one of its parents.
// Nodes recorded in s are visible to nodes recorded in other.
func (s *Scope) Encloses(other *Scope) bool {
	for sc := other; sc != nil; sc = sc.parent {
		if sc == s {
			return true
		}
	}
	return false
}

// Seal returns a block containing all the recorded nodes.
func (s *Scope) Seal(result ir.NodeID) *ir.Block {
	return ir.NewBlock(s.nodes, result)
}

// String representation of the scope.
func (s *Scope) String() string {
	ids := make([]string, len(s.nodes))
	for i, id := range s.nodes {
		ids[i] = id.String()
	}
	return fmt.Sprintf("%s{%s}", s.kind, strings.Join(ids, " "))
}

// Stack of open scopes.
type Stack struct {
	top   *Scope
	depth int
}

// Push opens a new scope.
func (st *Stack) Push(kind Kind) *Scope {
	st.top = &Scope{parent: st.top, kind: kind}
	st.depth++
	return st.top
}

// Pop closes the innermost scope and returns it.
func (st *Stack) Pop() (*Scope, error) {
	if st.top == nil {
		return nil, errors.Errorf("no scope to close")
	}
	top := st.top
	st.top = top.parent
	st.depth--
	return top, nil
}

// Top returns the innermost open scope or nil if no scope is open.
func (st *Stack) Top() *Scope {
	return st.top
}

// Depth returns the number of open scopes.
func (st *Stack) Depth() int {
	return st.depth
}
