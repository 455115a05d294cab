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

// Package parser turns buffer text into a syntax tree: a modal lexer, an
// explicit-state shift-reduce stepper, and an incremental reparser that
// reuses subtrees from the previous parse.
package parser

import (
	"fmt"
	"slices"
	"strings"

	"github.com/quek/climacs/buffer"
	"github.com/quek/climacs/syntax"
)

// stepper runs the shift-reduce automaton one lexeme at a time. The parse
// stack holds tree nodes; each open construct remembers the stack index of
// its opener, so reductions pop exactly the opener's run even when the
// same state nests.
type stepper struct {
	tree *syntax.Tree
	lex  *lexer

	stack   []syntax.Node
	openers []int
	state   syntax.State
	opens   int // unreduced LeftParens; decides top-level vs in-list mode

	// Incremental reuse: the next old-tree node that may be adopted, and
	// the offset below which nothing from the old tree is trusted.
	cand       syntax.Node
	reuseFloor int
}

func newStepper(tree *syntax.Tree) *stepper {
	return &stepper{
		tree:  tree,
		lex:   &lexer{buf: tree.Buffer()},
		state: syntax.StateInitial,
	}
}

// Parse builds a fresh tree over the buffer. Incremental updates go
// through [Syntax] instead.
func Parse(buf *buffer.Buffer) *syntax.Tree {
	tree := syntax.NewTree(buf)
	newStepper(tree).run()
	return tree
}

func (s *stepper) run() {
	for s.step() {
	}
}

// step advances the parse by one action: adopt an old subtree, shift a
// fresh lexeme, or force a reduction when the mode yields no lexeme.
// Returns false once the root has been produced.
func (s *stepper) step() bool {
	mode := s.state.Mode(s.opens > 0)
	s.lex.skip(mode)

	if !s.cand.IsZero() {
		s.syncCandidate()
		if s.tryAdopt() {
			return true
		}
	}

	lx, ok := s.lex.lex(mode)
	if !ok {
		return s.reduceHere()
	}
	if lx.kind == syntax.RightParen {
		// A closer in operand position abandons the pending prefix
		// operators first: ('), for example, is a quote with no operand.
		for {
			kind, pending := operandFormFor(s.state)
			if !pending {
				break
			}
			s.reduceCurrent(kind)
		}
	}
	n := s.tree.NewLexeme(lx.kind, s.state, lx.start, lx.length)
	s.push(n)
	s.accept(n)
	return true
}

func (s *stepper) push(n syntax.Node) {
	var pred syntax.Node
	if len(s.stack) > 0 {
		pred = s.stack[len(s.stack)-1]
	}
	s.tree.SetStackPred(n, pred)
	s.stack = append(s.stack, n)
}

// accept runs the state transition for a lexeme already on top of the
// stack. The kind switch here is the automaton's action function, written
// kind-major with shift-and-stay as the default arm; the goto side lives
// in reduceFrom, which restores the opener's entry state, and in
// produced, which reacts to the finished form. accept is shared by fresh
// shifts, the resume replay of the anchor, and adoption of old lexemes,
// so all three agree on the automaton.
func (s *stepper) accept(n syntax.Node) {
	switch n.Kind() {
	case syntax.RightParen:
		s.reduceCurrent(syntax.ListForm)
	case syntax.StringEnd:
		s.reduceCurrent(syntax.StringForm)
	case syntax.BlockCommentEnd:
		s.reduceCurrent(syntax.BlockCommentForm)
	case syntax.SymbolEnd:
		s.reduceCurrent(syntax.SymbolForm)
	case syntax.LineCommentEnd:
		s.reduceCurrent(syntax.LineCommentForm)

	case syntax.LeftParen:
		s.openConstruct(syntax.StateList)
		s.opens++
	case syntax.StringStart:
		s.openConstruct(syntax.StateString)
	case syntax.LineCommentStart:
		s.openConstruct(syntax.StateLineComment)
	case syntax.BlockCommentStart:
		// Nested openers inside a comment stay plain children; nesting
		// depth is not tracked, so the first closer ends the comment.
		if s.state != syntax.StateBlockComment {
			s.openConstruct(syntax.StateBlockComment)
		}
	case syntax.SymbolStart:
		s.openConstruct(syntax.StateSymbol)
	case syntax.Quote:
		s.openConstruct(syntax.StateQuote)
	case syntax.Backquote:
		s.openConstruct(syntax.StateBackquote)
	case syntax.Comma:
		s.openConstruct(syntax.StateComma)
	case syntax.FunctionQuote:
		s.openConstruct(syntax.StateFunctionQuote)
	case syntax.UninternedMarker:
		s.openConstruct(syntax.StateUninterned)
	case syntax.ReaderCondPositive:
		s.openConstruct(syntax.StateReaderCondPos1)
	case syntax.ReaderCondNegative:
		s.openConstruct(syntax.StateReaderCondNeg1)

	case syntax.Token, syntax.CharLiteral:
		s.produced(n)

	case syntax.Error:
		switch {
		case s.state == syntax.StateRecover:
			// The rest-of-line junk completes the recovery.
			s.reduceCurrent(syntax.ErrorForm)
		case strings.HasPrefix(n.Text(), "#"):
			// An unreadable dispatch poisons the rest of the line.
			s.openConstruct(syntax.StateRecover)
		default:
			// A stray closer or an unreadable element wraps alone, so the
			// damage stays local.
			s.reduceFrom(len(s.stack)-1, syntax.ErrorForm)
		}

	default:
		// Word, Delimiter, SymbolText: interior lexemes, no transition.
	}
}

func (s *stepper) openConstruct(state syntax.State) {
	s.openers = append(s.openers, len(s.stack)-1)
	s.state = state
}

// reduceCurrent closes the innermost open construct into a node of the
// given kind: everything from its opener to the stack top becomes the
// children.
func (s *stepper) reduceCurrent(kind syntax.Kind) {
	if len(s.openers) == 0 {
		panic(fmt.Sprintf("climacs/parser: reduce %v with no open construct", kind))
	}
	idx := s.openers[len(s.openers)-1]
	s.openers = s.openers[:len(s.openers)-1]
	s.reduceFrom(idx, kind)
}

// reduceFrom pops stack[idx:] into a new nonterminal and pushes it. The
// new node takes over the opener's entry state and stack predecessor, so
// the stack history stays linked for future resumes.
func (s *stepper) reduceFrom(idx int, kind syntax.Kind) {
	children := slices.Clone(s.stack[idx:])
	s.stack = s.stack[:idx]

	entry := children[0].EntryState()
	pred := children[0].StackPred()
	n := s.tree.NewNonterminal(kind, entry, children, s.lex.cursor)
	s.tree.SetStackPred(n, pred)
	if kind == syntax.ListForm || kind == syntax.IncompleteListForm {
		s.opens--
	}

	s.stack = append(s.stack, n)
	s.state = entry
	s.produced(n)
}

// produced reacts to a finished node on top of the stack: an expression
// satisfies a pending prefix operator or advances a reader conditional,
// cascading outward as each reduction finishes the next operand.
// Non-expressions (comments) are absorbed without a transition.
func (s *stepper) produced(n syntax.Node) {
	if !n.Kind().IsExpression() {
		return
	}
	switch s.state {
	case syntax.StateQuote:
		s.reduceCurrent(syntax.QuoteForm)
	case syntax.StateBackquote:
		s.reduceCurrent(syntax.BackquoteForm)
	case syntax.StateComma:
		s.reduceCurrent(syntax.CommaForm)
	case syntax.StateFunctionQuote:
		s.reduceCurrent(syntax.FunctionForm)
	case syntax.StateUninterned:
		s.reduceCurrent(syntax.UninternedSymbolForm)
	case syntax.StateReaderCondPos1:
		s.state = syntax.StateReaderCondPos2
	case syntax.StateReaderCondNeg1:
		s.state = syntax.StateReaderCondNeg2
	case syntax.StateReaderCondPos2:
		s.reduceCurrent(syntax.ReaderCondPositiveForm)
	case syntax.StateReaderCondNeg2:
		s.reduceCurrent(syntax.ReaderCondNegativeForm)
	}
}

// operandFormFor maps a state that is waiting for an operand expression to
// the form kind an abandoning reduction produces.
func operandFormFor(state syntax.State) (syntax.Kind, bool) {
	switch state {
	case syntax.StateQuote:
		return syntax.QuoteForm, true
	case syntax.StateBackquote:
		return syntax.BackquoteForm, true
	case syntax.StateComma:
		return syntax.CommaForm, true
	case syntax.StateFunctionQuote:
		return syntax.FunctionForm, true
	case syntax.StateUninterned:
		return syntax.UninternedSymbolForm, true
	case syntax.StateReaderCondPos1, syntax.StateReaderCondPos2:
		return syntax.ReaderCondPositiveForm, true
	case syntax.StateReaderCondNeg1, syntax.StateReaderCondNeg2:
		return syntax.ReaderCondNegativeForm, true
	default:
		return syntax.KindInvalid, false
	}
}

// reduceHere handles the no-lexeme condition: end of input, or end of line
// in a mode whose construct cannot span lines. One construct is closed per
// step; at the top level the whole stack becomes the root and the parse
// is finished.
func (s *stepper) reduceHere() bool {
	switch s.state {
	case syntax.StateInitial:
		if !s.lex.done() {
			panic("climacs/parser: lexer yielded nothing before end of input")
		}
		children := slices.Clone(s.stack)
		s.stack = nil
		root := s.tree.NewNonterminal(syntax.TopSequence, syntax.StateInitial, children, s.lex.cursor)
		s.tree.SetRoot(root)
		return false
	case syntax.StateList:
		s.reduceCurrent(syntax.IncompleteListForm)
	case syntax.StateString:
		s.reduceCurrent(syntax.IncompleteStringForm)
	case syntax.StateLineComment:
		// End of input on a comment line: complete, just unterminated.
		s.reduceCurrent(syntax.LineCommentForm)
	case syntax.StateBlockComment:
		s.reduceCurrent(syntax.IncompleteBlockCommentForm)
	case syntax.StateSymbol:
		s.reduceCurrent(syntax.IncompleteSymbolForm)
	case syntax.StateRecover:
		s.reduceCurrent(syntax.ErrorForm)
	default:
		kind, pending := operandFormFor(s.state)
		if !pending {
			panic(fmt.Sprintf("climacs/parser: no reduction for %v at end of input", s.state))
		}
		s.reduceCurrent(kind)
	}
	return true
}
