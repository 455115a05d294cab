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
	"slices"

	"github.com/quek/climacs/syntax"
)

// resume prepares the stepper to reparse only the damaged region
// [low, high): the parse restarts just after the last lexeme that ends
// strictly before low, with the stack rebuilt from that lexeme's recorded
// stack history, and nodes of the old tree starting at or after high
// become candidates for wholesale reuse.
//
// The bound is strict because a lexeme ending exactly at low may yet
// grow: an insert at a token's end extends the token, and a deletion can
// join it with its successor.
func (s *stepper) resume(oldRoot syntax.Node, low, high int) {
	s.cand = oldRoot
	s.reuseFloor = high

	anchor := lastLexemeBefore(oldRoot, low)
	if anchor.IsZero() {
		return
	}

	var chain []syntax.Node
	for n := anchor; !n.IsZero(); n = n.StackPred() {
		chain = append(chain, n)
	}
	slices.Reverse(chain)

	s.stack = chain[:len(chain)-1]
	s.rebuildOpeners(anchor)
	s.state = anchor.EntryState()
	s.lex.cursor = anchor.End()

	// Replay the anchor's shift so the automaton lands in the state it
	// was in just after consuming it the first time.
	s.push(anchor)
	s.accept(anchor)
}

// lastLexemeBefore finds the rightmost lexeme in the subtree that ends
// strictly before the offset, or the nil node.
func lastLexemeBefore(n syntax.Node, low int) syntax.Node {
	if n.Kind().IsLexeme() {
		if n.End() < low {
			return n
		}
		return syntax.Node{}
	}
	for i := n.NumChildren() - 1; i >= 0; i-- {
		c := n.Child(i)
		if c.Start() >= low {
			continue
		}
		if found := lastLexemeBefore(c, low); !found.IsZero() {
			return found
		}
	}
	return syntax.Node{}
}

// rebuildOpeners reconstructs the open-construct index stack from the
// rebuilt parse stack. A raw opener-kind lexeme on the stack is exactly an
// unreduced opener: once a construct reduces, its opener is buried inside
// the form node. The two exceptions are block comment openers nested in a
// block comment (plain children, since nesting is untracked) and error
// lexemes, which open a recovery only when the following entry state shows
// the automaton actually entered it.
func (s *stepper) rebuildOpeners(anchor syntax.Node) {
	s.openers = s.openers[:0]
	s.opens = 0
	for i, n := range s.stack {
		if !n.Kind().IsLexeme() {
			continue
		}
		switch n.Kind() {
		case syntax.LeftParen:
			s.openers = append(s.openers, i)
			s.opens++
		case syntax.StringStart, syntax.LineCommentStart, syntax.SymbolStart,
			syntax.Quote, syntax.Backquote, syntax.Comma, syntax.FunctionQuote,
			syntax.UninternedMarker, syntax.ReaderCondPositive, syntax.ReaderCondNegative:
			s.openers = append(s.openers, i)
		case syntax.BlockCommentStart:
			if n.EntryState() != syntax.StateBlockComment {
				s.openers = append(s.openers, i)
			}
		case syntax.Error:
			next := anchor.EntryState()
			if i+1 < len(s.stack) {
				next = s.stack[i+1].EntryState()
			}
			if next == syntax.StateRecover && n.EntryState() != syntax.StateRecover {
				s.openers = append(s.openers, i)
			}
		}
	}
}

// syncCandidate advances the reuse candidate to the first old node usable
// at the current position: starting at or after both the cursor and the
// reuse floor, complete, not the old root, and not built over deleted
// text. The last test is what the floor alone cannot decide: a deletion
// collapses the consumed nodes' marks onto the join point, exactly where
// the floor sits, while their recorded lengths keep describing text that
// no longer exists. It descends into nodes the cursor has entered and
// skips past nodes the cursor has passed.
func (s *stepper) syncCandidate() {
	floor := max(s.lex.cursor, s.reuseFloor)
	for !s.cand.IsZero() {
		c := s.cand
		if c.Start() >= floor && c.Kind() != syntax.TopSequence &&
			!c.Kind().IsIncomplete() && !c.StartCollapsed() {
			return
		}
		if c.End() > floor && c.NumChildren() > 0 {
			descended := false
			for child := range c.Children() {
				if child.End() > floor {
					s.cand = child
					descended = true
					break
				}
			}
			if descended {
				continue
			}
		}
		s.cand = nextInOldTree(c)
	}
}

// nextInOldTree steps to the node after n in the old tree's sibling
// order: the next sibling, or the nearest ancestor's next sibling.
// Ascending from a not-yet-adopted node is safe; parent links are only
// rewritten when a node is absorbed into a new reduction.
func nextInOldTree(n syntax.Node) syntax.Node {
	for !n.IsZero() {
		if sib := n.NextSibling(); !sib.IsZero() {
			return sib
		}
		n = n.Parent()
	}
	return syntax.Node{}
}

// tryAdopt pushes the candidate itself onto the stack when the parse has
// reconverged with the old one: same position, same entry state, same
// lexical mode. The node keeps its identity; only its stack history is
// rewritten.
func (s *stepper) tryAdopt() bool {
	c := s.cand
	if c.IsZero() || c.Start() != s.lex.cursor || c.EntryState() != s.state {
		return false
	}
	if c.EntryState().Mode(lexedInList(c)) != s.state.Mode(s.opens > 0) {
		return false
	}
	// The successor must be found before reductions rewrite parents.
	s.cand = nextInOldTree(c)

	s.spliceSpine(c)
	s.push(c)
	s.lex.cursor = c.End()
	if c.Kind().IsLexeme() {
		s.accept(c)
	} else {
		s.produced(c)
	}
	return true
}

// lexedInList reports whether an old node was shifted inside an open
// list. The entry state alone does not say: prefix-operator states lex
// with the innermost container's mode, so a node recorded under such a
// state at top level, where a right paren lexes as an error, must not be
// adopted into a list position, where it lexes as the closer. The parent
// chain is intact here; ancestors of a not-yet-adopted candidate were
// never pushed onto the new stack.
func lexedInList(n syntax.Node) bool {
	for p := n.Parent(); !p.IsZero(); p = p.Parent() {
		if p.Kind() == syntax.ListForm || p.Kind() == syntax.IncompleteListForm {
			return true
		}
	}
	return false
}

// spliceSpine points the stack predecessors along the adopted subtree's
// leftmost spine at the current stack top. Every lexeme on that spine was
// once on the old parse stack above the adopted node's predecessor; a
// later resume that anchors inside the subtree walks these links, so they
// must describe the new stack, not the old one.
func (s *stepper) spliceSpine(c syntax.Node) {
	var top syntax.Node
	if len(s.stack) > 0 {
		top = s.stack[len(s.stack)-1]
	}
	for n := c; ; n = n.Child(0) {
		s.tree.SetStackPred(n, top)
		if n.Kind().IsLexeme() || n.NumChildren() == 0 {
			break
		}
	}
}
