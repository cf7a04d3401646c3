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

// Package ir is the kernel Intermediate Representation (IR).
//
// A kernel or a callable is represented by a function owning an arena
// of immutable nodes. Each node has an operation, a list of operands
// referencing nodes of the same arena, and a canonical type interned
// by a registry. Nodes are appended to the arena in construction order
// and operands must exist before being referenced, which makes the
// graph a directed acyclic graph.
package ir

import (
	"fmt"
	"slices"
)

// NodeID identifies a node in the arena of a function.
// Identifiers are dense and start at 1.
type NodeID uint32

// NoNode is the invalid node identifier.
const NoNode NodeID = 0

// IsValid returns true if the identifier is valid (non-zero).
func (id NodeID) IsValid() bool { return id != NoNode }

// String representation of the identifier.
func (id NodeID) String() string {
	return fmt.Sprintf("%%%d", uint32(id))
}

type (
	// Buffer is an opaque reference to device memory provided by a backend.
	// Buffers are compared by identity and must be comparable.
	Buffer interface {
		// ElemType returns the type of the elements stored in the buffer.
		ElemType() *Type
		// Len returns the number of elements in the buffer.
		Len() int
	}

	// ArgumentAux is the auxiliary data of an argument node.
	ArgumentAux struct {
		Index int
	}

	// IfAux is the auxiliary data of a conditional node.
	// Else can be nil.
	IfAux struct {
		Then, Else *Block
	}

	// Case of a switch.
	Case struct {
		Value int32
		Body  *Block
	}

	// SwitchAux is the auxiliary data of a switch node.
	// Cases are executed when the switch operand equals their value.
	// The default block is executed when no case matches.
	SwitchAux struct {
		Cases   []Case
		Default *Block
	}

	// LoopAux is the auxiliary data of a loop node.
	// The loop executes Cond, exits if its result is false,
	// then executes Body.
	LoopAux struct {
		Cond, Body *Block
	}

	// Node is an immutable instruction.
	Node struct {
		id       NodeID
		op       Op
		operands []NodeID
		typ      *Type
		aux      any
	}
)

// NewNode returns a new node. The operands are copied.
func NewNode(id NodeID, op Op, operands []NodeID, typ *Type, aux any) *Node {
	return &Node{
		id:       id,
		op:       op,
		operands: slices.Clone(operands),
		typ:      typ,
		aux:      aux,
	}
}

// ID of the node in its arena.
func (n *Node) ID() NodeID { return n.id }

// Op returns the operation of the node.
func (n *Node) Op() Op { return n.op }

// NumOperands returns the number of operands.
func (n *Node) NumOperands() int { return len(n.operands) }

// Operand returns the ith operand.
func (n *Node) Operand(i int) NodeID { return n.operands[i] }

// Operands returns a copy of the operands of the node.
func (n *Node) Operands() []NodeID { return slices.Clone(n.operands) }

// Type of the value produced by the node.
func (n *Node) Type() *Type { return n.typ }

// Aux returns the auxiliary data of the node, if any.
func (n *Node) Aux() any { return n.aux }

// Index returns the component index of an extract or insert node.
func (n *Node) Index() int {
	i, _ := n.aux.(int)
	return i
}

// Blocks returns the nested blocks of a structured node.
func (n *Node) Blocks() []*Block {
	switch aux := n.aux.(type) {
	case IfAux:
		blocks := []*Block{aux.Then}
		if aux.Else != nil {
			blocks = append(blocks, aux.Else)
		}
		return blocks
	case SwitchAux:
		var blocks []*Block
		for _, c := range aux.Cases {
			blocks = append(blocks, c.Body)
		}
		if aux.Default != nil {
			blocks = append(blocks, aux.Default)
		}
		return blocks
	case LoopAux:
		return []*Block{aux.Cond, aux.Body}
	}
	return nil
}

// Block is a sealed sequence of nodes. A block can yield a value.
type Block struct {
	nodes  []NodeID
	result NodeID
}

// NewBlock returns a new sealed block.
func NewBlock(nodes []NodeID, result NodeID) *Block {
	return &Block{nodes: slices.Clone(nodes), result: result}
}

// Nodes returns the nodes of the block in execution order.
func (b *Block) Nodes() []NodeID { return slices.Clone(b.nodes) }

// Len returns the number of nodes in the block.
func (b *Block) Len() int { return len(b.nodes) }

// Result returns the node yielding the value of the block or NoNode.
func (b *Block) Result() NodeID { return b.result }
