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

// Op is the operation of a node.
type Op uint16

// Operations recorded in the graph.
const (
	OpInvalid Op = iota

	// Values
	OpLiteral    // aux: Go scalar value
	OpArgument   // aux: ArgumentAux
	OpBuffer     // aux: Buffer
	OpDispatchID // uint3 thread index

	// Unary operators
	OpNeg
	OpNot
	OpAbs
	OpSqrt
	OpFloor
	OpCast

	// Binary operators
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpMin
	OpMax
	OpLt
	OpLe
	OpGt
	OpGe
	OpEq
	OpNe

	// Composite values
	OpExtract // aux: component index
	OpInsert  // aux: component index
	OpCompose
	OpSplat
	OpSelect

	// Reductions and geometry
	OpReduceSum
	OpReduceProd
	OpReduceMin
	OpReduceMax
	OpAll
	OpAny
	OpDot
	OpCross
	OpLength
	OpNormalize
	OpMatVec
	OpMatMul
	OpTranspose
	OpInverse

	// Storage
	OpLocal
	OpLoad
	OpStore
	OpBufferRead
	OpBufferWrite
	OpAtomicAdd

	// Calls and control flow
	OpCall   // aux: *Func
	OpIf     // aux: IfAux
	OpSwitch // aux: SwitchAux
	OpLoop   // aux: LoopAux
	OpBreak
	OpUnreachable // aux: string message

	opMax
)

var opNames = [...]string{
	OpInvalid:     "invalid",
	OpLiteral:     "literal",
	OpArgument:    "argument",
	OpBuffer:      "buffer",
	OpDispatchID:  "dispatch_id",
	OpNeg:         "neg",
	OpNot:         "not",
	OpAbs:         "abs",
	OpSqrt:        "sqrt",
	OpFloor:       "floor",
	OpCast:        "cast",
	OpAdd:         "add",
	OpSub:         "sub",
	OpMul:         "mul",
	OpDiv:         "div",
	OpRem:         "rem",
	OpAnd:         "and",
	OpOr:          "or",
	OpXor:         "xor",
	OpShl:         "shl",
	OpShr:         "shr",
	OpMin:         "min",
	OpMax:         "max",
	OpLt:          "lt",
	OpLe:          "le",
	OpGt:          "gt",
	OpGe:          "ge",
	OpEq:          "eq",
	OpNe:          "ne",
	OpExtract:     "extract",
	OpInsert:      "insert",
	OpCompose:     "compose",
	OpSplat:       "splat",
	OpSelect:      "select",
	OpReduceSum:   "reduce_sum",
	OpReduceProd:  "reduce_prod",
	OpReduceMin:   "reduce_min",
	OpReduceMax:   "reduce_max",
	OpAll:         "all",
	OpAny:         "any",
	OpDot:         "dot",
	OpCross:       "cross",
	OpLength:      "length",
	OpNormalize:   "normalize",
	OpMatVec:      "matvec",
	OpMatMul:      "matmul",
	OpTranspose:   "transpose",
	OpInverse:     "inverse",
	OpLocal:       "local",
	OpLoad:        "load",
	OpStore:       "store",
	OpBufferRead:  "buffer_read",
	OpBufferWrite: "buffer_write",
	OpAtomicAdd:   "atomic_add",
	OpCall:        "call",
	OpIf:          "if",
	OpSwitch:      "switch",
	OpLoop:        "loop",
	OpBreak:       "break",
	OpUnreachable: "unreachable",
}

// String returns the name of the operation.
func (op Op) String() string {
	if op >= opMax {
		return "invalid"
	}
	return opNames[op]
}

// IsComparison returns true if the operation compares its operands.
func (op Op) IsComparison() bool {
	return op >= OpLt && op <= OpNe
}

// IsBitwise returns true for operations only supported by integers and booleans.
func (op Op) IsBitwise() bool {
	switch op {
	case OpAnd, OpOr, OpXor, OpShl, OpShr:
		return true
	}
	return false
}

// IsBinary returns true for binary operators.
func (op Op) IsBinary() bool {
	return op >= OpAdd && op <= OpNe
}

// IsUnary returns true for unary operators, excluding casts.
func (op Op) IsUnary() bool {
	return op >= OpNeg && op <= OpFloor
}

// HasSideEffect returns true if the node must be executed
// even if its value is not used.
func (op Op) HasSideEffect() bool {
	switch op {
	case OpStore, OpBufferWrite, OpAtomicAdd, OpIf, OpSwitch, OpLoop, OpBreak, OpUnreachable, OpCall:
		return true
	}
	return false
}
