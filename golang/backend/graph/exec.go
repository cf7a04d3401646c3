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

package graph

import (
	"github.com/pkg/errors"
	"github.com/gx-org/kernelir/build/ir"
	"github.com/gx-org/kernelir/golang/backend/kernels"
	goplatform "github.com/gx-org/kernelir/golang/backend/platform"
)

type (
	// frame stores the values computed by one invocation of a function.
	// Values are kernel values, locals, or buffers.
	frame struct {
		fn   *ir.Func
		args []kernels.Value
		vals []any
	}

	// local is an assignable storage location.
	local struct {
		val kernels.Value
	}
)

func (fr *frame) value(id ir.NodeID) (kernels.Value, error) {
	val, ok := fr.vals[id].(kernels.Value)
	if !ok {
		return nil, errors.Errorf("%s has no value", id)
	}
	return val, nil
}

func (fr *frame) array(id ir.NodeID) (kernels.Array, error) {
	val, ok := fr.vals[id].(kernels.Array)
	if !ok {
		return nil, errors.Errorf("%s is a %T: not an array", id, fr.vals[id])
	}
	return val, nil
}

func (fr *frame) operands(node *ir.Node) ([]kernels.Array, error) {
	arrays := make([]kernels.Array, node.NumOperands())
	for i := range arrays {
		var err error
		if arrays[i], err = fr.array(node.Operand(i)); err != nil {
			return nil, err
		}
	}
	return arrays, nil
}

func atomAsInt(a kernels.Array) (int64, error) {
	atom, err := a.ToAtom()
	if err != nil {
		return 0, err
	}
	switch atomT := atom.(type) {
	case uint32:
		return int64(atomT), nil
	case int32:
		return int64(atomT), nil
	}
	return 0, errors.Errorf("%s is not an integer", a)
}

func (fr *frame) index(id ir.NodeID) (int, error) {
	a, err := fr.array(id)
	if err != nil {
		return 0, err
	}
	i, err := atomAsInt(a)
	return int(i), err
}

func (fr *frame) boolean(id ir.NodeID) (bool, error) {
	a, err := fr.array(id)
	if err != nil {
		return false, err
	}
	atom, err := a.ToAtom()
	if err != nil {
		return false, err
	}
	b, ok := atom.(bool)
	if !ok {
		return false, errors.Errorf("%s is not a boolean", a)
	}
	return b, nil
}

func (fr *frame) buffer(id ir.NodeID) (*goplatform.Buffer, error) {
	buf, ok := fr.vals[id].(*goplatform.Buffer)
	if !ok {
		return nil, errors.Errorf("%s is a %T: not a buffer", id, fr.vals[id])
	}
	return buf, nil
}

func (fr *frame) local(id ir.NodeID) (*local, error) {
	loc, ok := fr.vals[id].(*local)
	if !ok {
		return nil, errors.Errorf("%s is a %T: not a local variable", id, fr.vals[id])
	}
	return loc, nil
}

// call evaluates a function with arguments and returns its result.
func (e *executor) call(fn *ir.Func, args []kernels.Value) (kernels.Value, error) {
	if len(args) != len(fn.Params()) {
		return nil, errors.Errorf("%s called with %d arguments but want %d", fn.Name(), len(args), len(fn.Params()))
	}
	fr := &frame{fn: fn, args: args, vals: make([]any, fn.NumNodes()+1)}
	if _, err := e.block(fr, fn.Body()); err != nil {
		return nil, err
	}
	res := fn.Body().Result()
	if !res.IsValid() {
		return nil, nil
	}
	return fr.value(res)
}

// block evaluates the nodes of a block in order.
// It returns true if a break has been executed.
func (e *executor) block(fr *frame, block *ir.Block) (bool, error) {
	for _, id := range block.Nodes() {
		node := fr.fn.Node(id)
		var (
			val any
			brk bool
			err error
		)
		switch node.Op() {
		case ir.OpBreak:
			return true, nil
		case ir.OpIf:
			val, brk, err = e.ifNode(fr, node)
		case ir.OpSwitch:
			val, brk, err = e.switchNode(fr, node)
		case ir.OpLoop:
			err = e.loop(fr, node)
		case ir.OpCall:
			val, err = e.callNode(fr, node)
		default:
			if val, err = e.eval(fr, node); err != nil {
				err = errors.WithMessagef(err, "%s: %s = %s", fr.fn.Name(), id, node.Op())
			}
		}
		if err != nil {
			return false, err
		}
		fr.vals[id] = val
		if brk {
			return true, nil
		}
	}
	return false, nil
}

// eval evaluates a node without nested blocks.
func (e *executor) eval(fr *frame, node *ir.Node) (any, error) {
	op := node.Op()
	switch {
	case op.IsUnary():
		return e.unary(fr, node)
	case op.IsBinary():
		return e.binary(fr, node)
	}
	switch op {
	case ir.OpLiteral:
		return e.runner.literal(node)
	case ir.OpArgument:
		aux := node.Aux().(ir.ArgumentAux)
		if aux.Index < 0 || aux.Index >= len(fr.args) {
			return nil, errors.Errorf("argument %d out of range", aux.Index)
		}
		return fr.args[aux.Index], nil
	case ir.OpBuffer:
		buf, ok := node.Aux().(*goplatform.Buffer)
		if !ok {
			return nil, errors.Errorf("buffer %T not supported by the Go platform", node.Aux())
		}
		return buf, nil
	case ir.OpDispatchID:
		return kernels.ToArray([]uint32{e.tid, 0, 0}, []int{3}), nil
	case ir.OpCast:
		x, err := fr.array(node.Operand(0))
		if err != nil {
			return nil, err
		}
		cast, err := x.Factory().Cast(node.Type().Kind().DType())
		if err != nil {
			return nil, err
		}
		return cast(x)
	case ir.OpExtract:
		return e.extract(fr, node)
	case ir.OpInsert:
		return e.insert(fr, node)
	case ir.OpCompose:
		return e.compose(fr, node)
	case ir.OpSplat:
		x, err := fr.array(node.Operand(0))
		if err != nil {
			return nil, err
		}
		return x.Factory().Splat(node.Type().Len())(x)
	case ir.OpSelect:
		args, err := fr.operands(node)
		if err != nil {
			return nil, err
		}
		return args[1].Factory().Select(args[0])(args[1], args[2])
	case ir.OpReduceSum, ir.OpReduceProd, ir.OpReduceMin, ir.OpReduceMax, ir.OpAll, ir.OpAny:
		x, err := fr.array(node.Operand(0))
		if err != nil {
			return nil, err
		}
		reduce, err := x.Factory().Reduce(op)
		if err != nil {
			return nil, err
		}
		return reduce(x)
	case ir.OpDot, ir.OpCross, ir.OpMatVec, ir.OpMatMul:
		args, err := fr.operands(node)
		if err != nil {
			return nil, err
		}
		return geometry2[op](args[0], args[1])
	case ir.OpLength, ir.OpNormalize, ir.OpTranspose, ir.OpInverse:
		x, err := fr.array(node.Operand(0))
		if err != nil {
			return nil, err
		}
		return geometry1[op](x)
	case ir.OpLocal, ir.OpLoad, ir.OpStore:
		return e.variable(fr, node)
	case ir.OpBufferRead, ir.OpBufferWrite, ir.OpAtomicAdd:
		return e.storage(fr, node)
	case ir.OpUnreachable:
		return nil, errors.Wrapf(ErrUnreachable, "%v", node.Aux())
	}
	return nil, errors.Errorf("operation %s not supported", op)
}

var (
	geometry1 = map[ir.Op]kernels.Unary{
		ir.OpLength:    kernels.Length,
		ir.OpNormalize: kernels.Normalize,
		ir.OpTranspose: kernels.Transpose,
		ir.OpInverse:   kernels.Inverse,
	}
	geometry2 = map[ir.Op]kernels.Binary{
		ir.OpDot:    kernels.Dot,
		ir.OpCross:  kernels.Cross,
		ir.OpMatVec: kernels.MatVec,
		ir.OpMatMul: kernels.MatMul,
	}
)

func (e *executor) unary(fr *frame, node *ir.Node) (any, error) {
	x, err := fr.array(node.Operand(0))
	if err != nil {
		return nil, err
	}
	f, err := x.Factory().UnaryOp(node.Op())
	if err != nil {
		return nil, err
	}
	return f(x)
}

func (e *executor) binary(fr *frame, node *ir.Node) (any, error) {
	args, err := fr.operands(node)
	if err != nil {
		return nil, err
	}
	f, err := args[0].Factory().BinaryOp(node.Op())
	if err != nil {
		return nil, err
	}
	return f(args[0], args[1])
}

func (e *executor) extract(fr *frame, node *ir.Node) (any, error) {
	val, err := fr.value(node.Operand(0))
	if err != nil {
		return nil, err
	}
	switch valT := val.(type) {
	case *kernels.Tuple:
		return valT.Elem(node.Index())
	case kernels.Array:
		return valT.Component(node.Index())
	}
	return nil, errors.Errorf("cannot extract a component from %T", val)
}

func (e *executor) insert(fr *frame, node *ir.Node) (any, error) {
	val, err := fr.value(node.Operand(0))
	if err != nil {
		return nil, err
	}
	comp, err := fr.value(node.Operand(1))
	if err != nil {
		return nil, err
	}
	switch valT := val.(type) {
	case *kernels.Tuple:
		return valT.WithElem(node.Index(), comp)
	case kernels.Array:
		compArray, ok := comp.(kernels.Array)
		if !ok {
			return nil, errors.Errorf("cannot insert %T into an array", comp)
		}
		return valT.WithComponent(node.Index(), compArray)
	}
	return nil, errors.Errorf("cannot insert a component into %T", val)
}

func (e *executor) compose(fr *frame, node *ir.Node) (any, error) {
	switch node.Type().Class() {
	case ir.StructClass, ir.ArrayClass:
		elems := make([]kernels.Value, node.NumOperands())
		for i := range elems {
			var err error
			if elems[i], err = fr.value(node.Operand(i)); err != nil {
				return nil, err
			}
		}
		return kernels.NewTuple(elems), nil
	}
	comps, err := fr.operands(node)
	if err != nil {
		return nil, err
	}
	if len(comps) == 0 {
		return nil, errors.Errorf("cannot compose %s without components", node.Type())
	}
	return comps[0].Factory().Compose()(comps)
}

func (e *executor) variable(fr *frame, node *ir.Node) (any, error) {
	if node.Op() == ir.OpLocal {
		init, err := fr.value(node.Operand(0))
		if err != nil {
			return nil, err
		}
		return &local{val: init}, nil
	}
	loc, err := fr.local(node.Operand(0))
	if err != nil {
		return nil, err
	}
	if node.Op() == ir.OpLoad {
		return loc.val, nil
	}
	if loc.val, err = fr.value(node.Operand(1)); err != nil {
		return nil, err
	}
	return nil, nil
}

func (e *executor) storage(fr *frame, node *ir.Node) (any, error) {
	buf, err := fr.buffer(node.Operand(0))
	if err != nil {
		return nil, err
	}
	i, err := fr.index(node.Operand(1))
	if err != nil {
		return nil, err
	}
	switch node.Op() {
	case ir.OpBufferRead:
		return buf.Load(i)
	case ir.OpBufferWrite:
		x, err := fr.value(node.Operand(2))
		if err != nil {
			return nil, err
		}
		return nil, buf.Store(i, x)
	}
	x, err := fr.array(node.Operand(2))
	if err != nil {
		return nil, err
	}
	return buf.AtomicAdd(i, x)
}
