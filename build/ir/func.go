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
	"iter"
	"slices"

	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/build/fmterr"
)

// FuncKind is the kind of a function.
type FuncKind uint8

// Kinds of functions.
const (
	// Kernel is an entry point dispatched over a grid of threads.
	Kernel FuncKind = iota
	// Callable is a function called by kernels or other callables.
	Callable
)

// String representation of the kind.
func (k FuncKind) String() string {
	if k == Kernel {
		return "kernel"
	}
	return "callable"
}

// Func is a sealed subgraph: a kernel or a callable.
// A Func is immutable and can be shared by multiple goroutines.
type Func struct {
	name    string
	kind    FuncKind
	nodes   []*Node
	params  []NodeID
	body    *Block
	result  *Type
	buffers []Buffer
}

// NewFunc returns a sealed function.
// nodes[i] must have the identifier i+1.
func NewFunc(name string, kind FuncKind, nodes []*Node, params []NodeID, body *Block, result *Type, buffers []Buffer) *Func {
	return &Func{
		name:    name,
		kind:    kind,
		nodes:   slices.Clone(nodes),
		params:  slices.Clone(params),
		body:    body,
		result:  result,
		buffers: slices.Clone(buffers),
	}
}

// Name of the function.
func (f *Func) Name() string { return f.name }

// Kind of the function.
func (f *Func) Kind() FuncKind { return f.kind }

// NumNodes returns the number of nodes in the arena.
func (f *Func) NumNodes() int { return len(f.nodes) }

// Node returns a node given its identifier.
func (f *Func) Node(id NodeID) *Node {
	if !id.IsValid() || int(id) > len(f.nodes) {
		return nil
	}
	return f.nodes[id-1]
}

// Nodes iterates over all the nodes of the arena in creation order.
func (f *Func) Nodes() iter.Seq[*Node] {
	return slices.Values(f.nodes)
}

// Params returns the argument nodes of the function.
func (f *Func) Params() []NodeID { return slices.Clone(f.params) }

// ParamTypes returns the types of the arguments of the function.
func (f *Func) ParamTypes() []*Type {
	types := make([]*Type, len(f.params))
	for i, param := range f.params {
		types[i] = f.Node(param).Type()
	}
	return types
}

// Body returns the top-level block of the function.
func (f *Func) Body() *Block { return f.body }

// Result returns the type of the value returned by the function.
func (f *Func) Result() *Type { return f.result }

// Buffers returns the buffers bound by the function, in binding order.
func (f *Func) Buffers() []Buffer { return slices.Clone(f.buffers) }

type validator struct {
	f     *Func
	errs  fmterr.Errors
	owner map[NodeID]int

	blockOf map[NodeID]*Block
	parent  map[*Block]*Block
}

// Validate checks the invariants of the graph: operands are defined before
// being used, which guarantees that the graph is acyclic, every node belongs
// to exactly one block, operands are visible from the block of their user,
// and calls match the signature of their callee.
func (f *Func) Validate() error {
	v := &validator{
		f:       f,
		owner:   make(map[NodeID]int),
		blockOf: make(map[NodeID]*Block),
		parent:  make(map[*Block]*Block),
	}
	for i, node := range f.nodes {
		v.checkNode(NodeID(i+1), node)
	}
	if f.body == nil {
		v.errs.Append(errors.Errorf("function %s has no body", f.name))
	} else {
		v.checkBlock(f.body, NodeID(len(f.nodes)+1))
	}
	for i := range f.nodes {
		id := NodeID(i + 1)
		if count := v.owner[id]; count != 1 {
			v.errs.Append(errors.Errorf("node %s belongs to %d blocks", id, count))
		}
	}
	for i, param := range f.params {
		if node := f.Node(param); node == nil || node.Op() != OpArgument {
			v.errs.Append(errors.Errorf("parameter %d is not an argument node", i))
		}
	}
	if f.body != nil && v.errs.Empty() {
		v.nest(f.body, nil)
		v.checkVisibility()
	}
	if v.errs.Empty() {
		return nil
	}
	return fmterr.Position(fmterr.ErrInvalidGraph, errors.WithMessagef(v.errs.ToError(), "%s %s", f.kind, f.name))
}

func (v *validator) checkNode(id NodeID, node *Node) {
	if node == nil {
		v.errs.Append(errors.Errorf("node %s is nil", id))
		return
	}
	v.errs.Push(fmterr.PrefixWith("node %s (%s): ", id, node.Op()))
	defer v.errs.Pop()
	if node.ID() != id {
		v.errs.Append(errors.Errorf("stored at %s", node.ID()))
	}
	if node.Type() == nil {
		v.errs.Append(errors.Errorf("no type"))
	}
	for _, operand := range node.operands {
		if !operand.IsValid() || operand >= id {
			v.errs.Append(errors.Errorf("operand %s is not defined before the node", operand))
		}
	}
	for _, block := range node.Blocks() {
		v.checkBlock(block, id)
	}
	if node.Op() == OpCall {
		v.checkCall(node)
	}
}

func (v *validator) checkBlock(block *Block, owner NodeID) {
	for _, id := range block.nodes {
		if !id.IsValid() || id >= owner {
			v.errs.Append(errors.Errorf("block member %s is not defined before its owner %s", id, owner))
			continue
		}
		v.owner[id]++
	}
	if block.result.IsValid() && block.result >= owner {
		v.errs.Append(errors.Errorf("block result %s is not defined before its owner %s", block.result, owner))
	}
}

func (v *validator) checkCall(node *Node) {
	callee, ok := node.Aux().(*Func)
	if !ok || callee == nil {
		v.errs.Append(errors.Errorf("call has no callee"))
		return
	}
	params := callee.ParamTypes()
	if len(params) != len(node.operands) {
		v.errs.Append(errors.Errorf("call to %s with %d arguments but want %d", callee.Name(), len(node.operands), len(params)))
		return
	}
	for i, operand := range node.operands {
		arg := v.f.Node(operand)
		if arg == nil {
			continue
		}
		if arg.Type() != params[i] {
			v.errs.Append(errors.Errorf("argument %d of type %s passed to %s parameter of type %s", i, arg.Type(), callee.Name(), params[i]))
		}
	}
	if node.Type() != callee.Result() {
		v.errs.Append(errors.Errorf("call of type %s but %s returns %s", node.Type(), callee.Name(), callee.Result()))
	}
}

// nest records the block owning each node and the parent of each block.
func (v *validator) nest(block, parent *Block) {
	if block == nil {
		return
	}
	if _, done := v.parent[block]; done {
		return
	}
	v.parent[block] = parent
	for _, id := range block.nodes {
		v.blockOf[id] = block
		for _, sub := range v.f.Node(id).Blocks() {
			v.nest(sub, block)
		}
	}
}

// encloses returns true if outer is inner or one of its parents.
func (v *validator) encloses(outer, inner *Block) bool {
	for b := inner; b != nil; b = v.parent[b] {
		if b == outer {
			return true
		}
	}
	return false
}

func (v *validator) checkVisibility() {
	v.checkResult(v.f.body)
	for i, node := range v.f.nodes {
		id := NodeID(i + 1)
		for _, block := range node.Blocks() {
			v.checkResult(block)
		}
		for _, operand := range node.operands {
			if !v.encloses(v.blockOf[operand], v.blockOf[id]) {
				v.errs.Append(errors.Errorf("node %s: operand %s is defined in a block not enclosing the node", id, operand))
			}
		}
	}
}

func (v *validator) checkResult(block *Block) {
	if block == nil {
		return
	}
	if res := block.result; res.IsValid() && !v.encloses(v.blockOf[res], block) {
		v.errs.Append(errors.Errorf("block result %s is not visible from its block", res))
	}
}
