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

package parser

import (
	"sync/atomic"

	"github.com/petermattis/goid"

	"github.com/quek/climacs/buffer"
	"github.com/quek/climacs/syntax"
)

// Syntax keeps a buffer's parse tree up to date across edits. It observes
// the buffer to accumulate the damaged region and reparses lazily: queries
// call [Syntax.Update] first, and an unedited document costs nothing.
//
// Syntax is not safe for concurrent use. Reparsing mutates the shared
// tree in place, so a second goroutine entering Update mid-reparse would
// corrupt it; that misuse panics instead.
type Syntax struct {
	buf  *buffer.Buffer
	tree *syntax.Tree

	// The damaged region. low is left-sticky and high right-sticky, so
	// edits inside the region keep it covering them without help.
	low, high *buffer.Mark
	dirty     bool

	updating atomic.Int64
}

// New attaches syntax analysis to a buffer. The whole document is
// initially dirty; the first [Syntax.Update] parses it from scratch.
func New(buf *buffer.Buffer) *Syntax {
	s := &Syntax{
		buf:   buf,
		tree:  syntax.NewTree(buf),
		low:   buf.NewMark(0, buffer.Left),
		high:  buf.NewMark(buf.Len(), buffer.Right),
		dirty: true,
	}
	buf.Observe(s.noteEdit)
	return s
}

// Buffer returns the underlying buffer.
func (s *Syntax) Buffer() *buffer.Buffer {
	return s.buf
}

// Tree returns the current tree without reparsing. It may be stale;
// callers that need post-edit structure use [Syntax.Update].
func (s *Syntax) Tree() *syntax.Tree {
	return s.tree
}

func (s *Syntax) noteEdit(low, high int) {
	if !s.dirty {
		s.low.MoveTo(low)
		s.high.MoveTo(high)
		s.dirty = true
		return
	}
	if low < s.low.Offset() {
		s.low.MoveTo(low)
	}
	if high > s.high.Offset() {
		s.high.MoveTo(high)
	}
}

// Update reparses the damaged region, if any, and returns the tree.
// Nodes outside the damage are reused by identity; the update cost is
// proportional to the damage, not the document.
func (s *Syntax) Update() *syntax.Tree {
	if !s.dirty {
		return s.tree
	}

	me := goid.Get()
	if !s.updating.CompareAndSwap(0, me) {
		panic("climacs/parser: concurrent Update on the same Syntax")
	}
	defer s.updating.Store(0)

	st := newStepper(s.tree)
	if oldRoot := s.tree.Root(); !oldRoot.IsZero() {
		st.resume(oldRoot, s.low.Offset(), s.high.Offset())
	}
	st.run()

	s.dirty = false
	return s.tree
}
