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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quek/climacs/buffer"
	"github.com/quek/climacs/syntax"
)

// lexAll runs the lexer to exhaustion under one fixed mode.
func lexAll(text string, mode syntax.Mode) []lexeme {
	l := &lexer{buf: buffer.New(text)}
	var out []lexeme
	for {
		l.skip(mode)
		lx, ok := l.lex(mode)
		if !ok {
			return out
		}
		out = append(out, lx)
	}
}

func TestLexExpression(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want []lexeme
	}{
		{"(foo)", []lexeme{
			{syntax.LeftParen, 0, 1},
			{syntax.Token, 1, 3},
			{syntax.RightParen, 4, 1},
		}},
		{"  foo-bar ", []lexeme{{syntax.Token, 2, 7}}},
		{"'`,", []lexeme{
			{syntax.Quote, 0, 1},
			{syntax.Backquote, 1, 1},
			{syntax.Comma, 2, 1},
		}},
		{`"`, []lexeme{{syntax.StringStart, 0, 1}}},
		{";;; hi", []lexeme{
			{syntax.LineCommentStart, 0, 3},
			// Mode stays fixed in this test, so "hi" lexes as a token.
			{syntax.Token, 4, 2},
		}},
		{"|", []lexeme{{syntax.SymbolStart, 0, 1}}},
		{"#'car", []lexeme{
			{syntax.FunctionQuote, 0, 2},
			{syntax.Token, 2, 3},
		}},
		{"#|", []lexeme{{syntax.BlockCommentStart, 0, 2}}},
		{"#+sbcl #-ccl", []lexeme{
			{syntax.ReaderCondPositive, 0, 2},
			{syntax.Token, 2, 4},
			{syntax.ReaderCondNegative, 7, 2},
			{syntax.Token, 9, 3},
		}},
		{"#:gensym", []lexeme{
			{syntax.UninternedMarker, 0, 2},
			{syntax.Token, 2, 6},
		}},
		{`#\a`, []lexeme{{syntax.CharLiteral, 0, 3}}},
		{`#\space`, []lexeme{{syntax.CharLiteral, 0, 7}}},
		{`#\(`, []lexeme{{syntax.CharLiteral, 0, 3}}},
		{`#\`, []lexeme{{syntax.CharLiteral, 0, 2}}},
		{"#9", []lexeme{{syntax.Error, 0, 2}}},
		{"#", []lexeme{{syntax.Error, 0, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, lexAll(tt.text, syntax.ModeList))
		})
	}
}

func TestLexCloserByMode(t *testing.T) {
	t.Parallel()

	// The closer is only a closer inside a list; at the top level it is
	// garbage.
	assert.Equal(t, []lexeme{{syntax.RightParen, 0, 1}}, lexAll(")", syntax.ModeList))
	assert.Equal(t, []lexeme{{syntax.Error, 0, 1}}, lexAll(")", syntax.ModeTopLevel))
}

func TestLexString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []lexeme{
		{syntax.Word, 0, 2},
		{syntax.Delimiter, 3, 2},  // \"
		{syntax.Delimiter, 5, 1},  // (
		{syntax.StringEnd, 6, 1},
	}, lexAll(`hi \"("`, syntax.ModeString))
}

func TestLexLineComment(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []lexeme{
		{syntax.Word, 0, 5},
		{syntax.Delimiter, 6, 1}, // (
		{syntax.LineCommentEnd, 7, 1},
	}, lexAll("notes (\nafter", syntax.ModeLineComment)[:3])
}

func TestLexBlockComment(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []lexeme{
		{syntax.Word, 0, 1},
		{syntax.BlockCommentStart, 2, 2},
		{syntax.Word, 4, 5},
		{syntax.BlockCommentEnd, 9, 2},
	}, lexAll("a #|inner|#", syntax.ModeBlockComment))
}

func TestLexEscapedSymbol(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []lexeme{
		{syntax.SymbolText, 0, 9}, // escapes consume pairwise
		{syntax.SymbolEnd, 9, 1},
	}, lexAll(`a b\| c d|`, syntax.ModeEscapedSymbol))

	// The construct never crosses a newline.
	assert.Equal(t, []lexeme{{syntax.SymbolText, 0, 3}}, lexAll("abc\ndef", syntax.ModeEscapedSymbol))
}

func TestLexErrorMode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []lexeme{{syntax.Error, 0, 8}}, lexAll("junk (#\"\nok", syntax.ModeError))
	assert.Empty(t, lexAll("\nok", syntax.ModeError))
}
