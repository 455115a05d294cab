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

// Package syntax defines the parse tree model for Lisp-family source text:
// the node kinds, the lexer modes, the parser automaton states, and the
// arena-backed tree the parser produces and the query layer reads.
package syntax

import "fmt"

// Kind identifies what kind of node a particular [Node] is. Values below
// [ListForm] are lexeme (terminal) kinds produced by the lexer; the rest
// are nonterminal kinds produced by grammar reductions.
type Kind byte

const (
	KindInvalid Kind = iota

	// Lexeme kinds.

	LeftParen
	RightParen
	Quote
	Backquote
	Comma
	FunctionQuote // #'
	StringStart
	StringEnd
	LineCommentStart // A run of consecutive semicolons.
	LineCommentEnd   // The newline terminating a line comment.
	BlockCommentStart
	BlockCommentEnd
	SymbolStart // | opening an escaped symbol.
	SymbolEnd
	Word    // A constituent run inside a string or comment.
	Token   // A constituent run in expression position.
	CharLiteral
	ReaderCondPositive // #+
	ReaderCondNegative // #-
	UninternedMarker   // #:
	Delimiter          // A single non-constituent element inside a string or comment.
	SymbolText         // The body of an escaped symbol.
	Error

	// Nonterminal (form) kinds.

	ListForm
	IncompleteListForm
	StringForm
	IncompleteStringForm
	LineCommentForm
	BlockCommentForm
	IncompleteBlockCommentForm
	SymbolForm
	IncompleteSymbolForm
	QuoteForm
	BackquoteForm
	CommaForm
	FunctionForm
	ReaderCondPositiveForm
	ReaderCondNegativeForm
	UninternedSymbolForm
	ErrorForm
	TopSequence
)

// IsLexeme returns whether this is a terminal kind.
func (k Kind) IsLexeme() bool {
	return k > KindInvalid && k < ListForm
}

// IsForm returns whether this is a nonterminal kind other than the
// top-level sequence.
func (k Kind) IsForm() bool {
	return k >= ListForm && k < TopSequence
}

// IsIncomplete returns whether this kind marks a construct that was
// force-reduced at end-of-input before its closing lexeme was seen.
func (k Kind) IsIncomplete() bool {
	switch k {
	case IncompleteListForm, IncompleteStringForm, IncompleteBlockCommentForm, IncompleteSymbolForm:
		return true
	default:
		return false
	}
}

// IsExpression returns whether a node of this kind stands for a Lisp
// expression: a form other than a comment, or an atom lexeme. Prefix
// operators (quote and friends) take exactly the next expression as their
// operand; comments between the operator and the operand are absorbed as
// extra children without satisfying the operator.
func (k Kind) IsExpression() bool {
	switch k {
	case Token, CharLiteral,
		ListForm, IncompleteListForm,
		StringForm, IncompleteStringForm,
		SymbolForm, IncompleteSymbolForm,
		QuoteForm, BackquoteForm, CommaForm, FunctionForm,
		ReaderCondPositiveForm, ReaderCondNegativeForm,
		UninternedSymbolForm, ErrorForm:
		return true
	default:
		return false
	}
}

// String implements [fmt.Stringer].
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("syntax.Kind(%d)", int(k))
}

var kindNames = [...]string{
	KindInvalid:                "Invalid",
	LeftParen:                  "LeftParen",
	RightParen:                 "RightParen",
	Quote:                      "Quote",
	Backquote:                  "Backquote",
	Comma:                      "Comma",
	FunctionQuote:              "FunctionQuote",
	StringStart:                "StringStart",
	StringEnd:                  "StringEnd",
	LineCommentStart:           "LineCommentStart",
	LineCommentEnd:             "LineCommentEnd",
	BlockCommentStart:          "BlockCommentStart",
	BlockCommentEnd:            "BlockCommentEnd",
	SymbolStart:                "SymbolStart",
	SymbolEnd:                  "SymbolEnd",
	Word:                       "Word",
	Token:                      "Token",
	CharLiteral:                "CharLiteral",
	ReaderCondPositive:         "ReaderCondPositive",
	ReaderCondNegative:         "ReaderCondNegative",
	UninternedMarker:           "UninternedMarker",
	Delimiter:                  "Delimiter",
	SymbolText:                 "SymbolText",
	Error:                      "Error",
	ListForm:                   "ListForm",
	IncompleteListForm:         "IncompleteListForm",
	StringForm:                 "StringForm",
	IncompleteStringForm:       "IncompleteStringForm",
	LineCommentForm:            "LineCommentForm",
	BlockCommentForm:           "BlockCommentForm",
	IncompleteBlockCommentForm: "IncompleteBlockCommentForm",
	SymbolForm:                 "SymbolForm",
	IncompleteSymbolForm:       "IncompleteSymbolForm",
	QuoteForm:                  "QuoteForm",
	BackquoteForm:              "BackquoteForm",
	CommaForm:                  "CommaForm",
	FunctionForm:               "FunctionForm",
	ReaderCondPositiveForm:     "ReaderCondPositiveForm",
	ReaderCondNegativeForm:     "ReaderCondNegativeForm",
	UninternedSymbolForm:       "UninternedSymbolForm",
	ErrorForm:                  "ErrorForm",
	TopSequence:                "TopSequence",
}
