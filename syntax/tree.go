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
	"strings"

	"github.com/quek/climacs/buffer"
	"github.com/quek/climacs/internal/arena"
)

// Tree owns the arena of parse tree nodes for one buffer. The tree is
// long-lived: incremental reparses allocate new nodes into the same arena
// and swap the root, so reused nodes keep their identity. Nodes cut loose
// by a reparse stay allocated until the tree is dropped; documents are
// edited incrementally, so this garbage is proportional to churn, not to
// document size.
type Tree struct {
	buf   *buffer.Buffer
	nodes arena.Arena[nodeData]
	root  arena.Pointer[nodeData]
}

// NewTree returns an empty tree over the given buffer.
func NewTree(buf *buffer.Buffer) *Tree {
	return &Tree{buf: buf}
}

// Buffer returns the buffer this tree describes.
func (t *Tree) Buffer() *buffer.Buffer {
	return t.buf
}

// Root returns the tree's root, or the nil node if nothing has been
// parsed yet.
func (t *Tree) Root() Node {
	return Node{t, t.root}
}

// SetRoot installs a new root node.
func (t *Tree) SetRoot(n Node) {
	t.mustOwn(n)
	t.root = n.ptr
}

// NodeAt resolves an [ID] back into a node handle.
func (t *Tree) NodeAt(id ID) Node {
	return Node{t, arena.Pointer[nodeData](id)}
}

// NewLexeme allocates a lexeme node. Its start is stamped as a
// right-sticky mark: an insertion exactly at the lexeme's start belongs
// before it, so the mark must move past the insertion and keep tracking
// the lexeme's own text.
func (t *Tree) NewLexeme(kind Kind, entry State, start, length int) Node {
	if !kind.IsLexeme() {
		panic(fmt.Sprintf("climacs/syntax: NewLexeme called with %v", kind))
	}
	ptr := t.nodes.New(nodeData{
		kind:   kind,
		entry:  entry,
		start:  t.buf.NewMark(start, buffer.Right),
		length: length,
	})
	return Node{t, ptr}
}

// NewNonterminal allocates a nonterminal node, attaching the given nodes
// as its children and setting their parent links. The node's span is
// derived from its children; `at` is used only for an empty reduction, as
// the position snapshot of its zero-length span.
func (t *Tree) NewNonterminal(kind Kind, entry State, children []Node, at int) Node {
	if kind.IsLexeme() || kind == KindInvalid {
		panic(fmt.Sprintf("climacs/syntax: NewNonterminal called with %v", kind))
	}
	d := nodeData{kind: kind, entry: entry}
	if len(children) == 0 {
		d.start = t.buf.NewMark(at, buffer.Left)
	} else {
		d.children = make([]arena.Pointer[nodeData], len(children))
		for i, c := range children {
			t.mustOwn(c)
			d.children[i] = c.ptr
		}
	}
	ptr := t.nodes.New(d)
	for _, c := range children {
		c.data().parent = ptr
	}
	return Node{t, ptr}
}

// SetStackPred patches a node's stack predecessor link. The parser sets
// it at creation; the incremental reparser re-points it when splicing a
// reused subtree into a new stack history.
func (t *Tree) SetStackPred(n, pred Node) {
	t.mustOwn(n)
	if !pred.IsZero() {
		t.mustOwn(pred)
	}
	n.data().pred = pred.ptr
}

// AllNodes iterates over the subtree under the root in preorder.
func (t *Tree) AllNodes() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if t.root.Nil() {
			return
		}
		walk(Node{t, t.root}, yield)
	}
}

func walk(n Node, yield func(Node) bool) bool {
	if !yield(n) {
		return false
	}
	for c := range n.Children() {
		if !walk(c, yield) {
			return false
		}
	}
	return true
}

// Dump renders the tree as an indented outline, one node per line, with
// lexeme text quoted. Meant for tests and the CLI, not for parsing.
func (t *Tree) Dump() string {
	var b strings.Builder
	if t.root.Nil() {
		return "<empty>\n"
	}
	dump(&b, Node{t, t.root}, 0)
	return b.String()
}

func dump(b *strings.Builder, n Node, depth int) {
	for range depth {
		b.WriteString("  ")
	}
	fmt.Fprintf(b, "%v@%v [%d, %d)", n.Kind(), n.EntryState(), n.Start(), n.End())
	if n.Kind().IsLexeme() {
		fmt.Fprintf(b, " %q", n.Text())
	}
	b.WriteByte('\n')
	for c := range n.Children() {
		dump(b, c, depth+1)
	}
}

func (t *Tree) mustOwn(n Node) {
	if n.tree != t {
		panic("climacs/syntax: node belongs to a different tree")
	}
}
