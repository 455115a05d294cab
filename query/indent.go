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

package query

import (
	"fmt"
	"io"
	"strings"

	"github.com/rivo/uniseg"
	"gopkg.in/yaml.v3"

	"github.com/quek/climacs/buffer"
	"github.com/quek/climacs/syntax"
)

// Rule classes. A call indents arguments under each other; a body form
// indents distinguished leading arguments deep and the body shallow; an
// if form indents both branches deep.
const (
	ClassCall = "call"
	ClassBody = "body"
	ClassIf   = "if"
)

// Rule describes how lists headed by a particular operator indent.
type Rule struct {
	Class string `yaml:"class"`
	// Special is the number of leading arguments that take the deep
	// indent when broken onto their own line. Only body rules use it.
	Special int `yaml:"special"`
}

// Table maps operator names (lowercase) to indentation rules and carries
// the tabstop used for column arithmetic. Operators without an entry get
// the default call rule.
type Table struct {
	Tabstop int             `yaml:"tabstop"`
	Rules   map[string]Rule `yaml:"rules"`
}

// DefaultTable returns the built-in rules for the common special
// operators.
func DefaultTable() *Table {
	t := &Table{Tabstop: 8, Rules: map[string]Rule{}}
	for _, op := range []string{
		"defun", "defmacro", "defmethod", "deftype", "define",
		"destructuring-bind", "multiple-value-bind", "lambda",
	} {
		t.Rules[op] = Rule{Class: ClassBody, Special: 2}
	}
	for _, op := range []string{
		"let", "let*", "flet", "labels", "macrolet", "when", "unless",
		"case", "ecase", "typecase", "dolist", "dotimes", "with-open-file",
	} {
		t.Rules[op] = Rule{Class: ClassBody, Special: 1}
	}
	for _, op := range []string{"progn", "prog1", "block", "unwind-protect"} {
		t.Rules[op] = Rule{Class: ClassBody, Special: 0}
	}
	t.Rules["if"] = Rule{Class: ClassIf}
	return t
}

// LoadTable reads a rule table in YAML form and merges it over the
// built-in defaults. A zero tabstop keeps the default.
func LoadTable(r io.Reader) (*Table, error) {
	var loaded Table
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&loaded); err != nil {
		return nil, fmt.Errorf("loading indent rules: %w", err)
	}
	t := DefaultTable()
	if loaded.Tabstop > 0 {
		t.Tabstop = loaded.Tabstop
	}
	for op, rule := range loaded.Rules {
		t.Rules[strings.ToLower(op)] = rule
	}
	return t, nil
}

// Indent computes the suggested indentation column for the line
// containing the offset. A top-level line indents to column zero.
func (tb *Table) Indent(t *syntax.Tree, offset int) int {
	buf := t.Buffer()
	lineStart := buf.LineStart(offset)

	list := containerAt(t, lineStart)
	if list.IsZero() || list.Kind() == syntax.TopSequence {
		return 0
	}

	openCol := tb.Column(buf, list.Start())
	elems := listElements(list)
	if len(elems) == 0 {
		return openCol + 1
	}

	op := elems[0]
	rule := Rule{Class: ClassCall}
	if op.Kind() == syntax.Token {
		if r, ok := tb.Rules[strings.ToLower(op.Text())]; ok {
			rule = r
		}
	}

	switch rule.Class {
	case ClassBody:
		// The new line holds the argument after those already present.
		ordinal := 0
		for _, e := range elems[1:] {
			if e.Start() < lineStart {
				ordinal++
			}
		}
		ordinal++
		if ordinal <= rule.Special {
			return openCol + 4
		}
		return openCol + 2
	case ClassIf:
		return openCol + 4
	default:
		// Align under the first argument when it shares the operator's
		// line, else under the operator itself.
		if len(elems) > 1 && buf.LineStart(elems[1].Start()) == buf.LineStart(op.Start()) {
			return tb.Column(buf, elems[1].Start())
		}
		return tb.Column(buf, op.Start())
	}
}

// listElements returns a list's expression children in order, skipping
// the paren lexemes and any interior comments.
func listElements(list syntax.Node) []syntax.Node {
	var elems []syntax.Node
	for c := range list.Children() {
		switch c.Kind() {
		case syntax.LeftParen, syntax.RightParen:
			continue
		}
		if c.Kind().IsExpression() {
			elems = append(elems, c)
		}
	}
	return elems
}

// Column returns the display column of the offset: the rendered width of
// the line's text up to it, with tabs expanded at the table's tabstop and
// everything else measured per grapheme cluster.
func (tb *Table) Column(buf *buffer.Buffer, offset int) int {
	text := buf.Slice(buf.LineStart(offset), offset)
	col := 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		if g.Str() == "\t" {
			col += tb.Tabstop - col%tb.Tabstop
			continue
		}
		col += uniseg.StringWidth(g.Str())
	}
	return col
}
