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

package builder

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/build/fmterr"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/build/ir/irkind"
	"github.com/gx-org/kernelir/internal/base/scope"
)

// Builder records the nodes of one function being traced.
type Builder struct {
	ctx  *Context
	name string
	kind ir.FuncKind

	nodes  []*ir.Node
	owners []*scope.Scope
	params []ir.NodeID
	scopes scope.Stack
	root   *scope.Scope

	buffers     []ir.Buffer
	bufferNodes map[ir.Buffer]ir.NodeID
	dispatchID  ir.NodeID

	sealed bool
}

func newBuilder(ctx *Context, name string, kind ir.FuncKind) *Builder {
	b := &Builder{
		ctx:         ctx,
		name:        name,
		kind:        kind,
		bufferNodes: make(map[ir.Buffer]ir.NodeID),
	}
	b.root = b.scopes.Push(scope.Func)
	return b
}

// Context returns the construction context owning the builder.
func (b *Builder) Context() *Context { return b.ctx }

// Registry returns the registry interning the types of the function.
func (b *Builder) Registry() *ir.Registry { return b.ctx.reg }

// Logger returns the logger of the construction context.
func (b *Builder) Logger() *slog.Logger { return b.ctx.logger }

// Name of the function being traced.
func (b *Builder) Name() string { return b.name }

// Kind of the function being traced.
func (b *Builder) Kind() ir.FuncKind { return b.kind }

// Sealed returns true once the function has been sealed or its tracing failed.
func (b *Builder) Sealed() bool { return b.sealed }

// NumNodes returns the number of nodes recorded so far.
func (b *Builder) NumNodes() int { return len(b.nodes) }

// Node returns a node recorded by the builder.
func (b *Builder) Node(id ir.NodeID) *ir.Node {
	if !id.IsValid() || int(id) > len(b.nodes) {
		return nil
	}
	return b.nodes[id-1]
}

// Type returns the type of a node recorded by the builder.
func (b *Builder) Type(id ir.NodeID) *ir.Type {
	node := b.Node(id)
	if node == nil {
		fmterr.Raise(fmterr.ErrContextMisuse, "node %s has not been recorded by %s %s", id, b.kind, b.name)
	}
	return node.Type()
}

// CheckActive raises an error if the builder cannot record nodes:
// it has been sealed or it is not the innermost builder of its context.
func (b *Builder) CheckActive() {
	if b.sealed {
		fmterr.Raise(fmterr.ErrContextMisuse, "%s %s has been sealed: its values cannot be used anymore", b.kind, b.name)
	}
	b.ctx.Current(func(cur *Builder) {
		if cur != b {
			fmterr.Raise(fmterr.ErrForeignValue, "value of %s %s used while tracing %s %s: pass it as an argument instead", b.kind, b.name, cur.kind, cur.name)
		}
	})
}

// InLoop returns true if nodes are being recorded in the body of a loop.
func (b *Builder) InLoop() bool {
	return b.scopes.Top().InLoop()
}

// ScopeDepth returns the number of open scopes, including the function scope.
func (b *Builder) ScopeDepth() int {
	return b.scopes.Depth()
}

// PushScope opens a nested block. Nodes are recorded in the block until it is closed.
func (b *Builder) PushScope(kind scope.Kind) {
	b.CheckActive()
	if kind == scope.Func {
		fmterr.Raise(fmterr.ErrScope, "cannot open a function scope in %s %s", b.kind, b.name)
	}
	b.scopes.Push(kind)
}

// PopScope closes the innermost nested block and returns it.
// result is the node yielding the value of the block or NoNode.
func (b *Builder) PopScope(result ir.NodeID) *ir.Block {
	b.CheckActive()
	if b.scopes.Depth() <= 1 {
		fmterr.Raise(fmterr.ErrScope, "no nested scope to close in %s %s", b.kind, b.name)
	}
	sc, err := b.scopes.Pop()
	if err != nil {
		panic(fmterr.Position(fmterr.ErrScope, err))
	}
	if result.IsValid() {
		if node := b.Node(result); node == nil || !b.owners[result-1].Encloses(sc) {
			fmterr.Raise(fmterr.ErrScope, "%s yielded by a %s in which it is not visible", result, sc.Kind())
		}
	}
	return sc.Seal(result)
}

// Emit appends a node to the arena and records it in the innermost scope.
// Operands must have been recorded by the builder.
func (b *Builder) Emit(op ir.Op, operands []ir.NodeID, typ *ir.Type, aux any) ir.NodeID {
	b.CheckActive()
	return b.emitIn(b.scopes.Top(), op, operands, typ, aux)
}

func (b *Builder) emitIn(sc *scope.Scope, op ir.Op, operands []ir.NodeID, typ *ir.Type, aux any) ir.NodeID {
	if typ == nil {
		panic(fmterr.Internal(errors.Errorf("%s node emitted without a type", op)))
	}
	if typ.Registry() != b.ctx.reg {
		fmterr.Raise(fmterr.ErrTypeMismatch, "type %s has not been registered by the registry of %s %s", typ, b.kind, b.name)
	}
	id := ir.NodeID(len(b.nodes) + 1)
	for _, operand := range operands {
		if !operand.IsValid() || operand >= id {
			fmterr.Raise(fmterr.ErrForeignValue, "operand %s has not been recorded by %s %s", operand, b.kind, b.name)
		}
		if owner := b.owners[operand-1]; !owner.Encloses(sc) {
			fmterr.Raise(fmterr.ErrScope, "%s used by %s outside of the %s defining it in %s %s", operand, op, owner.Kind(), b.kind, b.name)
		}
	}
	b.nodes = append(b.nodes, ir.NewNode(id, op, operands, typ, aux))
	b.owners = append(b.owners, sc)
	sc.Record(id)
	return id
}

// Literal records a constant. value must be a Go value of the kind of typ.
func (b *Builder) Literal(typ *ir.Type, value any) ir.NodeID {
	return b.Emit(ir.OpLiteral, nil, typ, value)
}

// Argument declares the next parameter of the function.
// Parameters can only be declared in the function scope.
func (b *Builder) Argument(typ *ir.Type) ir.NodeID {
	b.CheckActive()
	if b.scopes.Top() != b.root {
		fmterr.Raise(fmterr.ErrScope, "argument declared in a nested scope of %s %s", b.kind, b.name)
	}
	id := b.emitIn(b.root, ir.OpArgument, nil, typ, ir.ArgumentAux{Index: len(b.params)})
	b.params = append(b.params, id)
	return id
}

// NumParams returns the number of parameters declared so far.
func (b *Builder) NumParams() int {
	return len(b.params)
}

// BindBuffer returns the node referencing a buffer in the function.
// The node is recorded in the function scope the first time the buffer
// is bound such that it can be used in any nested block.
func (b *Builder) BindBuffer(buf ir.Buffer) ir.NodeID {
	b.CheckActive()
	if id, ok := b.bufferNodes[buf]; ok {
		return id
	}
	elem := buf.ElemType()
	if elem == nil || elem.Registry() != b.ctx.reg {
		fmterr.Raise(fmterr.ErrTypeMismatch, "buffer element type %v has not been registered by the registry of %s %s", elem, b.kind, b.name)
	}
	ptr, err := b.ctx.reg.Pointer(elem)
	if err != nil {
		panic(fmterr.Position(fmterr.ErrTypeMismatch, err))
	}
	id := b.emitIn(b.root, ir.OpBuffer, nil, ptr, buf)
	b.bufferNodes[buf] = id
	b.buffers = append(b.buffers, buf)
	return id
}

// DispatchID returns the node yielding the index of the current thread
// as a vec3<uint32>. The node is recorded once in the function scope.
func (b *Builder) DispatchID() ir.NodeID {
	b.CheckActive()
	if b.dispatchID.IsValid() {
		return b.dispatchID
	}
	typ, err := b.ctx.reg.Vector(irkind.Uint32, 3)
	if err != nil {
		panic(fmterr.Internal(err))
	}
	b.dispatchID = b.emitIn(b.root, ir.OpDispatchID, nil, typ, nil)
	return b.dispatchID
}

func (b *Builder) seal(result ir.NodeID) (*ir.Func, error) {
	if depth := b.scopes.Depth(); depth != 1 {
		return nil, fmterr.Errorf(fmterr.ErrScope, "%s %s sealed with %d nested scopes still open", b.kind, b.name, depth-1)
	}
	resultType := b.ctx.reg.Void()
	if result.IsValid() {
		node := b.Node(result)
		if node == nil {
			return nil, fmterr.Errorf(fmterr.ErrForeignValue, "result %s of %s %s has not been recorded by its builder", result, b.kind, b.name)
		}
		resultType = node.Type()
	}
	if b.kind == ir.Kernel && !resultType.IsVoid() {
		return nil, fmterr.Errorf(fmterr.ErrTypeMismatch, "kernel %s returns a value of type %s", b.name, resultType)
	}
	root, err := b.scopes.Pop()
	if err != nil {
		return nil, fmterr.Position(fmterr.ErrScope, err)
	}
	fn := ir.NewFunc(b.name, b.kind, b.nodes, b.params, root.Seal(result), resultType, b.buffers)
	if b.ctx.validate {
		if err := fn.Validate(); err != nil {
			return nil, err
		}
	}
	b.ctx.logger.Debug("function sealed", "name", b.name, "kind", b.kind, "nodes", len(b.nodes), "params", len(b.params), "buffers", len(b.buffers))
	return fn, nil
}
