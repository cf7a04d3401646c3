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
	"fmt"

	"github.com/gx-org/kernelir/api/values"
	"github.com/gx-org/kernelir/build/builder"
	"github.com/gx-org/kernelir/build/fmterr"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/internal/base/scope"
)

// Block traces f in a nested block and seals it.
// The value returned by f, if not nil, is the value yielded by the block.
func Block(b *builder.Builder, kind scope.Kind, f func() Value) *ir.Block {
	b.PushScope(kind)
	var result ir.NodeID
	if r := f(); r != nil {
		current(r)
		result = r.Node()
	}
	return b.PopScope(result)
}

func statements(f func()) func() Value {
	return func() Value {
		if f != nil {
			f()
		}
		return nil
	}
}

// If traces a conditional statement. els can be nil.
func If(cond Expr[bool], then, els func()) {
	b := current(cond)
	aux := ir.IfAux{Then: Block(b, scope.Block, statements(then))}
	if els != nil {
		aux.Else = Block(b, scope.Block, statements(els))
	}
	b.Emit(ir.OpIf, []ir.NodeID{cond.Node()}, b.Registry().Void(), aux)
}

// IfElse traces a conditional expression: the value of then
// if cond is true, the value of els otherwise.
// Both branches must yield values of the same type.
func IfElse[P Proxy[P]](cond Expr[bool], then, els func() P) P {
	b := current(cond)
	var thenVal, elsVal P
	thenBlock := Block(b, scope.Block, func() Value {
		thenVal = then()
		return thenVal
	})
	elsBlock := Block(b, scope.Block, func() Value {
		elsVal = els()
		return elsVal
	})
	typ := thenVal.Type()
	checkSameType("branches of a conditional expression", typ, elsVal.Type())
	return emitIn[P](b, ir.OpIf, typ, ir.IfAux{Then: thenBlock, Else: elsBlock}, cond)
}

// While traces a loop executing body as long as cond returns true.
func While(b *builder.Builder, cond func() Expr[bool], body func()) {
	condBlock := Block(b, scope.LoopCond, func() Value { return cond() })
	bodyBlock := Block(b, scope.LoopBody, statements(body))
	b.Emit(ir.OpLoop, nil, b.Registry().Void(), ir.LoopAux{Cond: condBlock, Body: bodyBlock})
}

// ForRange traces a loop calling body for i in [start, end).
func ForRange[T values.Integer](start, end Expr[T], body func(i Expr[T])) {
	b := current(start, end)
	i := NewVar(start)
	While(b, func() Expr[bool] {
		return i.Load().Lt(end)
	}, func() {
		cur := i.Load()
		body(cur)
		i.Store(cur.Add(One[T](b)))
	})
}

// Break exits the innermost loop.
func Break(b *builder.Builder) {
	if !b.InLoop() {
		fmterr.Raise(fmterr.ErrScope, "break outside of a loop")
	}
	b.Emit(ir.OpBreak, nil, b.Registry().Void(), nil)
}

// Unreachable traces an instruction trapping when it is executed.
func Unreachable(b *builder.Builder, format string, a ...any) {
	b.Emit(ir.OpUnreachable, nil, b.Registry().Void(), fmt.Sprintf(format, a...))
}
