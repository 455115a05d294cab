// Copyright 2024-2026 The Climacs Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package syntax

import (
	"fmt"
	"iter"

	"github.com/quek/climacs/buffer"
	"github.com/quek/climacs/internal/arena"
)

// ID identifies a node within its [Tree]. The zero ID is nil. IDs are
// stable for the life of the tree: a node reused across an incremental
// reparse keeps its ID, which is how tests verify reuse by identity.
type ID uint32

// Nil returns whether this is the nil ID.
func (id ID) Nil() bool {
	return id == 0
}

// nodeData is the arena representation of a parse tree node.
//
// A lexeme stores its start mark and length directly. A nonterminal
// derives both from its children; its start mark is nil unless the
// reduction matched zero spanned children, in which case it holds a
// position snapshot taken at the point of reduction.
type nodeData struct {
	kind  Kind
	entry State

	start  *buffer.Mark
	length int

	parent   arena.Pointer[nodeData]
	pred     arena.Pointer[nodeData]
	children []arena.Pointer[nodeData]
}

// Node is a handle to a parse tree node: a tree plus an [ID]. The zero
// Node is nil and most methods on it panic; check [Node.IsZero] first.
type Node struct {
	tree *Tree
	ptr  arena.Pointer[nodeData]
}

// IsZero returns whether this is the nil node.
func (n Node) IsZero() bool {
	return n.ptr.Nil()
}

// ID returns this node's identity within its tree.
func (n Node) ID() ID {
	return ID(n.ptr)
}

// Tree returns the tree this node belongs to.
func (n Node) Tree() *Tree {
	return n.tree
}

func (n Node) data() *nodeData {
	return n.ptr.In(&n.tree.nodes)
}

// Kind returns the node's kind.
func (n Node) Kind() Kind {
	return n.data().kind
}

// EntryState returns the automaton state that was active when this node
// was pushed onto the parse stack.
func (n Node) EntryState() State {
	return n.data().entry
}

// Start returns the node's current absolute start offset. For a
// nonterminal it is derived from the first child; marks auto-adjust, so
// the result is always in post-edit coordinates.
func (n Node) Start() int {
	d := n.data()
	if d.start != nil {
		return d.start.Offset()
	}
	if len(d.children) == 0 {
		panic(fmt.Sprintf("climacs/syntax: %v node has neither start nor children", d.kind))
	}
	return Node{n.tree, d.children[0]}.Start()
}

// End returns the offset just past the node's span.
func (n Node) End() int {
	d := n.data()
	if d.start != nil {
		return d.start.Offset() + d.length
	}
	return Node{n.tree, d.children[len(d.children)-1]}.End()
}

// StartCollapsed reports whether the node's start mark was collapsed by a
// deletion, meaning the text the node was built over is gone and its span
// no longer describes live buffer contents. For a nonterminal the check
// follows the first child, mirroring [Node.Start].
func (n Node) StartCollapsed() bool {
	d := n.data()
	if d.start != nil {
		return d.start.Collapsed()
	}
	if len(d.children) == 0 {
		return false
	}
	return Node{n.tree, d.children[0]}.StartCollapsed()
}

// Len returns the node's span length in elements.
func (n Node) Len() int {
	return n.End() - n.Start()
}

// Text returns the buffer text the node spans. Inter-child whitespace is
// included for nonterminals; it is part of the parent's span even though
// no child records it.
func (n Node) Text() string {
	return n.tree.buf.Slice(n.Start(), n.End())
}

// Parent returns the node's parent, or the nil node for the root.
func (n Node) Parent() Node {
	return Node{n.tree, n.data().parent}
}

// StackPred returns the node that was immediately below this one on the
// parse stack when it was created.
func (n Node) StackPred() Node {
	return Node{n.tree, n.data().pred}
}

// NumChildren returns the number of children.
func (n Node) NumChildren() int {
	return len(n.data().children)
}

// Child returns the i-th child.
func (n Node) Child(i int) Node {
	return Node{n.tree, n.data().children[i]}
}

// Children iterates over the node's children in order.
func (n Node) Children() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		for _, c := range n.data().children {
			if !yield(Node{n.tree, c}) {
				return
			}
		}
	}
}

// ChildIndex returns this node's index among its parent's children, or -1
// for the root.
func (n Node) ChildIndex() int {
	parent := n.Parent()
	if parent.IsZero() {
		return -1
	}
	for i, c := range parent.data().children {
		if c == n.ptr {
			return i
		}
	}
	return -1
}

// NextSibling returns the node after this one among its parent's
// children, or the nil node.
func (n Node) NextSibling() Node {
	parent := n.Parent()
	if parent.IsZero() {
		return Node{}
	}
	idx := n.ChildIndex()
	if idx < 0 || idx+1 >= parent.NumChildren() {
		return Node{}
	}
	return parent.Child(idx + 1)
}

// FirstLexeme returns the leftmost lexeme descendant, or n itself if it is
// a lexeme. Returns the nil node for a childless nonterminal.
func (n Node) FirstLexeme() Node {
	if n.Kind().IsLexeme() {
		return n
	}
	for c := range n.Children() {
		if first := c.FirstLexeme(); !first.IsZero() {
			return first
		}
	}
	return Node{}
}

// LastLexeme returns the rightmost lexeme descendant, or n itself if it is
// a lexeme.
func (n Node) LastLexeme() Node {
	if n.Kind().IsLexeme() {
		return n
	}
	d := n.data()
	for i := len(d.children) - 1; i >= 0; i-- {
		if last := (Node{n.tree, d.children[i]}).LastLexeme(); !last.IsZero() {
			return last
		}
	}
	return Node{}
}

// String implements [fmt.Stringer].
func (n Node) String() string {
	if n.IsZero() {
		return "Node(nil)"
	}
	return fmt.Sprintf("%v@%v [%d, %d)", n.Kind(), n.EntryState(), n.Start(), n.End())
}

// Equal reports whether two nodes are structurally equal: same kind, same
// entry state, same span, and pairwise equal children. This is the
// equality the incremental reparser's reconvergence guarantee is stated
// in; the two nodes may belong to different trees.
func Equal(a, b Node) bool {
	if a.IsZero() || b.IsZero() {
		return a.IsZero() == b.IsZero()
	}
	if a.Kind() != b.Kind() || a.EntryState() != b.EntryState() {
		return false
	}
	if a.Start() != b.Start() || a.End() != b.End() {
		return false
	}
	if a.NumChildren() != b.NumChildren() {
		return false
	}
	for i := range a.NumChildren() {
		if !Equal(a.Child(i), b.Child(i)) {
			return false
		}
	}
	return true
}

// Summary is a plain-data rendering of a subtree, convenient for
// comparison with go-cmp in tests.
type Summary struct {
	Kind       Kind
	State      State
	Start, End int
	Children   []Summary
}

// Summarize converts the subtree rooted at n into a [Summary].
func (n Node) Summarize() Summary {
	s := Summary{
		Kind:  n.Kind(),
		State: n.EntryState(),
		Start: n.Start(),
		End:   n.End(),
	}
	for c := range n.Children() {
		s.Children = append(s.Children, c.Summarize())
	}
	return s
}
