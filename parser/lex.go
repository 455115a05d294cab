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
	"unicode"

	"github.com/quek/climacs/buffer"
	"github.com/quek/climacs/syntax"
)

// lexeme is the lexer's output before it is turned into a tree node: a
// kind plus the consumed span.
type lexeme struct {
	kind   syntax.Kind
	start  int
	length int
}

// lexer produces lexemes from a buffer under a lexical mode. The cursor
// is a plain offset; lexemes are stamped with marks only when they become
// tree nodes.
type lexer struct {
	buf    *buffer.Buffer
	cursor int
}

func (l *lexer) done() bool {
	return l.cursor >= l.buf.Len()
}

// peek returns the element under the cursor, or -1 at the buffer end.
func (l *lexer) peek() rune {
	return l.peekAt(0)
}

func (l *lexer) peekAt(n int) rune {
	if l.cursor+n >= l.buf.Len() {
		return -1
	}
	return l.buf.At(l.cursor + n)
}

func (l *lexer) pop() rune {
	r := l.peek()
	if r != -1 {
		l.cursor++
	}
	return r
}

func (l *lexer) takeWhile(f func(rune) bool) int {
	start := l.cursor
	for !l.done() && f(l.peek()) {
		l.cursor++
	}
	return l.cursor - start
}

func (l *lexer) atLineEnd() bool {
	return l.done() || l.peek() == '\n'
}

// skip consumes inter-lexeme filler under the given mode: whitespace in
// most modes, whitespace short of the newline in a line comment, and
// nothing at all in an escaped symbol or the error mode.
func (l *lexer) skip(mode syntax.Mode) {
	switch mode {
	case syntax.ModeLineComment:
		l.takeWhile(func(r rune) bool { return unicode.IsSpace(r) && r != '\n' })
	case syntax.ModeEscapedSymbol, syntax.ModeError:
	default:
		l.takeWhile(unicode.IsSpace)
	}
}

// lex produces the next lexeme under the given mode. The caller must have
// called skip first. Returns false when no lexeme exists: at the buffer
// end, or at the end of the line in the escaped-symbol and error modes,
// where a construct is forced closed rather than spanning lines.
func (l *lexer) lex(mode syntax.Mode) (lexeme, bool) {
	switch mode {
	case syntax.ModeTopLevel, syntax.ModeList:
		return l.lexExpression(mode)
	case syntax.ModeString:
		return l.lexString()
	case syntax.ModeLineComment:
		return l.lexLineComment()
	case syntax.ModeBlockComment:
		return l.lexBlockComment()
	case syntax.ModeEscapedSymbol:
		return l.lexEscapedSymbol()
	case syntax.ModeError:
		return l.lexError()
	default:
		panic("climacs/parser: unknown lexer mode")
	}
}

func (l *lexer) lexExpression(mode syntax.Mode) (lexeme, bool) {
	if l.done() {
		return lexeme{}, false
	}
	start := l.cursor
	emit := func(kind syntax.Kind) (lexeme, bool) {
		return lexeme{kind, start, l.cursor - start}, true
	}

	switch r := l.peek(); {
	case r == '(':
		l.pop()
		return emit(syntax.LeftParen)
	case r == ')' && mode == syntax.ModeList:
		l.pop()
		return emit(syntax.RightParen)
	case r == '\'':
		l.pop()
		return emit(syntax.Quote)
	case r == '`':
		l.pop()
		return emit(syntax.Backquote)
	case r == ',':
		l.pop()
		return emit(syntax.Comma)
	case r == '"':
		l.pop()
		return emit(syntax.StringStart)
	case r == ';':
		l.takeWhile(func(r rune) bool { return r == ';' })
		return emit(syntax.LineCommentStart)
	case r == '|':
		l.pop()
		return emit(syntax.SymbolStart)
	case r == '#':
		l.pop()
		switch l.peek() {
		case '\\':
			l.pop()
			// One escaped element, or a run naming the character
			// (#\space and friends).
			if n := l.takeWhile(constituent); n == 0 && !l.done() {
				l.pop()
			}
			return emit(syntax.CharLiteral)
		case '\'':
			l.pop()
			return emit(syntax.FunctionQuote)
		case '|':
			l.pop()
			return emit(syntax.BlockCommentStart)
		case '+':
			l.pop()
			return emit(syntax.ReaderCondPositive)
		case '-':
			l.pop()
			return emit(syntax.ReaderCondNegative)
		case ':':
			l.pop()
			return emit(syntax.UninternedMarker)
		default:
			if !l.done() {
				l.pop()
			}
			return emit(syntax.Error)
		}
	case constituent(r):
		l.takeWhile(constituent)
		return emit(syntax.Token)
	default:
		l.pop()
		return emit(syntax.Error)
	}
}

func (l *lexer) lexString() (lexeme, bool) {
	if l.done() {
		return lexeme{}, false
	}
	start := l.cursor
	switch r := l.peek(); {
	case r == '"':
		l.pop()
		return lexeme{syntax.StringEnd, start, 1}, true
	case r == '\\':
		// The escape spans both elements.
		l.pop()
		if !l.done() {
			l.pop()
		}
		return lexeme{syntax.Delimiter, start, l.cursor - start}, true
	case constituent(r):
		l.takeWhile(constituent)
		return lexeme{syntax.Word, start, l.cursor - start}, true
	default:
		l.pop()
		return lexeme{syntax.Delimiter, start, 1}, true
	}
}

func (l *lexer) lexLineComment() (lexeme, bool) {
	if l.done() {
		return lexeme{}, false
	}
	start := l.cursor
	switch r := l.peek(); {
	case r == '\n':
		l.pop()
		return lexeme{syntax.LineCommentEnd, start, 1}, true
	case constituent(r):
		l.takeWhile(constituent)
		return lexeme{syntax.Word, start, l.cursor - start}, true
	default:
		l.pop()
		return lexeme{syntax.Delimiter, start, 1}, true
	}
}

func (l *lexer) lexBlockComment() (lexeme, bool) {
	if l.done() {
		return lexeme{}, false
	}
	start := l.cursor
	switch r := l.peek(); {
	case r == '|' && l.peekAt(1) == '#':
		l.pop()
		l.pop()
		return lexeme{syntax.BlockCommentEnd, start, 2}, true
	case r == '#' && l.peekAt(1) == '|':
		l.pop()
		l.pop()
		return lexeme{syntax.BlockCommentStart, start, 2}, true
	case constituent(r):
		l.takeWhile(constituent)
		return lexeme{syntax.Word, start, l.cursor - start}, true
	default:
		l.pop()
		return lexeme{syntax.Delimiter, start, 1}, true
	}
}

func (l *lexer) lexEscapedSymbol() (lexeme, bool) {
	if l.atLineEnd() {
		// An escaped symbol never spans lines; the parser force-closes
		// it here.
		return lexeme{}, false
	}
	start := l.cursor
	if l.peek() == '|' {
		l.pop()
		return lexeme{syntax.SymbolEnd, start, 1}, true
	}
	for !l.atLineEnd() && l.peek() != '|' {
		if l.pop() == '\\' && !l.atLineEnd() {
			l.pop()
		}
	}
	return lexeme{syntax.SymbolText, start, l.cursor - start}, true
}

func (l *lexer) lexError() (lexeme, bool) {
	if l.atLineEnd() {
		return lexeme{}, false
	}
	start := l.cursor
	for !l.atLineEnd() {
		l.pop()
	}
	return lexeme{syntax.Error, start, l.cursor - start}, true
}

// constituent returns whether r may appear in a token or word: any
// graphic element that is neither whitespace nor one of the syntax
// characters.
func constituent(r rune) bool {
	if r < 0 || unicode.IsSpace(r) || !unicode.IsGraphic(r) {
		return false
	}
	switch r {
	case '(', ')', '\'', '`', ',', '"', ';', '|', '#', '\\':
		return false
	}
	return true
}
