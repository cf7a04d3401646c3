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

// Package irstring prints functions of the IR in a human-readable form.
package irstring

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	gxfmt "github.com/gx-org/kernelir/base/fmt"
	"github.com/gx-org/kernelir/base/iter"
	"github.com/gx-org/kernelir/base/stringseq"
	"github.com/gx-org/kernelir/base/tmpl"
	"github.com/gx-org/kernelir/build/ir"
)

type printer struct {
	fn      *ir.Func
	buffers map[ir.Buffer]int
}

// Func returns the string representation of a function.
// Functions called by fn are referenced by name only.
func Func(fn *ir.Func) string {
	p := printer{fn: fn, buffers: make(map[ir.Buffer]int)}
	for i, buf := range fn.Buffers() {
		p.buffers[buf] = i
	}
	var s strings.Builder
	if bufs, _ := tmpl.IterateFunc(fn.Buffers(), bufferString); bufs != "" {
		s.WriteString(bufs)
		s.WriteString("\n")
	}
	s.WriteString(p.header())
	s.WriteString(" {\n")
	s.WriteString(gxfmt.Indent(p.block(fn.Body())))
	s.WriteString("}\n")
	return s.String()
}

// Program returns the string representation of a function
// followed by all the functions it calls.
func Program(fn *ir.Func) string {
	fns := iter.Concat(slices.Values([]*ir.Func{fn}), slices.Values(Callees(fn)))
	var s strings.Builder
	for f := range fns {
		if s.Len() > 0 {
			s.WriteString("\n")
		}
		s.WriteString(Func(f))
	}
	return s.String()
}

func isCall(node *ir.Node) bool {
	return node.Op() == ir.OpCall
}

func calleeOf(node *ir.Node) *ir.Func {
	return node.Aux().(*ir.Func)
}

// Callees returns the functions called directly or indirectly by fn,
// in the order of their first call. Each function appears once.
func Callees(fn *ir.Func) []*ir.Func {
	var callees []*ir.Func
	seen := map[*ir.Func]bool{fn: true}
	var visit func(*ir.Func)
	visit = func(f *ir.Func) {
		for callee := range iter.Map(iter.Filter(f.Nodes(), isCall), calleeOf) {
			if seen[callee] {
				continue
			}
			seen[callee] = true
			callees = append(callees, callee)
			visit(callee)
		}
	}
	visit(fn)
	return callees
}

func bufferString(i int, buf ir.Buffer) (string, error) {
	return fmt.Sprintf("// #%d: [%d]%s", i, buf.Len(), buf.ElemType()), nil
}

func (p *printer) header() string {
	params := stringseq.JoinFunc(slices.Values(p.fn.Params()), ", ", func(id ir.NodeID) string {
		return id.String() + " " + p.fn.Node(id).Type().String()
	})
	s := fmt.Sprintf("%s %s(%s)", p.fn.Kind(), p.fn.Name(), params)
	if res := p.fn.Result(); res != nil && !res.IsVoid() {
		s += " " + res.String()
	}
	return s
}

func (p *printer) block(block *ir.Block) string {
	var s strings.Builder
	for _, id := range block.Nodes() {
		s.WriteString(p.node(p.fn.Node(id)))
		s.WriteString("\n")
	}
	if res := block.Result(); res.IsValid() {
		fmt.Fprintf(&s, "yield %s\n", res)
	}
	return s.String()
}

func (p *printer) nested(block *ir.Block) string {
	return " {\n" + gxfmt.Indent(p.block(block)) + "}"
}

func (p *printer) node(node *ir.Node) string {
	var s strings.Builder
	if !node.Type().IsVoid() {
		fmt.Fprintf(&s, "%s = ", node.ID())
	}
	s.WriteString(node.Op().String())
	s.WriteString(p.aux(node))
	if node.NumOperands() > 0 {
		s.WriteString(" ")
		s.WriteString(stringseq.JoinStringer(slices.Values(node.Operands()), ", "))
	}
	if !node.Type().IsVoid() {
		s.WriteString(" : ")
		s.WriteString(node.Type().String())
	}
	switch aux := node.Aux().(type) {
	case ir.IfAux:
		s.WriteString(p.nested(aux.Then))
		if aux.Else != nil {
			s.WriteString(" else")
			s.WriteString(p.nested(aux.Else))
		}
	case ir.SwitchAux:
		s.WriteString(" {\n")
		for _, c := range aux.Cases {
			fmt.Fprintf(&s, "case %d:\n", c.Value)
			s.WriteString(gxfmt.Indent(p.block(c.Body)))
		}
		if aux.Default != nil {
			s.WriteString("default:\n")
			s.WriteString(gxfmt.Indent(p.block(aux.Default)))
		}
		s.WriteString("}")
	case ir.LoopAux:
		s.WriteString(" {\n")
		s.WriteString("cond:\n")
		s.WriteString(gxfmt.Indent(p.block(aux.Cond)))
		s.WriteString("body:\n")
		s.WriteString(gxfmt.Indent(p.block(aux.Body)))
		s.WriteString("}")
	}
	return s.String()
}

func (p *printer) aux(node *ir.Node) string {
	switch node.Op() {
	case ir.OpLiteral:
		return fmt.Sprintf(" %v", node.Aux())
	case ir.OpArgument:
		return fmt.Sprintf("[%d]", node.Aux().(ir.ArgumentAux).Index)
	case ir.OpExtract, ir.OpInsert:
		return fmt.Sprintf("[%d]", node.Index())
	case ir.OpBuffer:
		buf, _ := node.Aux().(ir.Buffer)
		if i, ok := p.buffers[buf]; ok {
			return fmt.Sprintf(" #%d", i)
		}
		return " #?"
	case ir.OpCall:
		return " @" + node.Aux().(*ir.Func).Name()
	case ir.OpUnreachable:
		msg, _ := node.Aux().(string)
		return " " + strconv.Quote(msg)
	}
	return ""
}
