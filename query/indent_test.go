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

package query_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quek/climacs/buffer"
	"github.com/quek/climacs/query"
)

// indentOfLastLine parses the text and asks for the indentation of its
// final line.
func indentOfLastLine(tb *query.Table, text string) int {
	tree := parse(text)
	return tb.Indent(tree, tree.Buffer().Len())
}

func TestIndentCallRule(t *testing.T) {
	t.Parallel()
	tb := query.DefaultTable()

	// Argument on the operator's line: align under it.
	assert.Equal(t, 6, indentOfLastLine(tb, "(frob x\n"))

	// Operator alone on its line: align under the operator.
	assert.Equal(t, 1, indentOfLastLine(tb, "(frob\n"))

	// No operator yet: one past the open paren.
	assert.Equal(t, 1, indentOfLastLine(tb, "(\n"))

	// Nested: the innermost list governs.
	assert.Equal(t, 9, indentOfLastLine(tb, "(a (frob x\n"))

	// Top level indents to zero.
	assert.Equal(t, 0, indentOfLastLine(tb, "(a b)\n"))
}

func TestIndentBodyRule(t *testing.T) {
	t.Parallel()
	tb := query.DefaultTable()

	// defun: name and lambda list take the deep indent, the body the
	// shallow one.
	assert.Equal(t, 4, indentOfLastLine(tb, "(defun\n"))
	assert.Equal(t, 4, indentOfLastLine(tb, "(defun f\n"))
	assert.Equal(t, 2, indentOfLastLine(tb, "(defun f (x)\n"))
	assert.Equal(t, 2, indentOfLastLine(tb, "(defun f (x)\n  (print x)\n"))

	// let: only the bindings are special.
	assert.Equal(t, 4, indentOfLastLine(tb, "(let\n"))
	assert.Equal(t, 2, indentOfLastLine(tb, "(let ((x 1))\n"))

	// Shifted by the enclosing column.
	assert.Equal(t, 4, indentOfLastLine(tb, "(progn\n  (let ((x 1))\n"))
}

func TestIndentIfRule(t *testing.T) {
	t.Parallel()
	tb := query.DefaultTable()

	assert.Equal(t, 4, indentOfLastLine(tb, "(if (zerop x)\n"))
	assert.Equal(t, 4, indentOfLastLine(tb, "(if (zerop x)\n    y\n"))
}

func TestIndentColumns(t *testing.T) {
	t.Parallel()
	tb := query.DefaultTable()

	buf := buffer.New("\tx")
	assert.Equal(t, 0, tb.Column(buf, 0))
	assert.Equal(t, 8, tb.Column(buf, 1))
	assert.Equal(t, 9, tb.Column(buf, 2))

	// A double-width element occupies two columns.
	wide := buffer.New("世x")
	assert.Equal(t, 2, tb.Column(wide, 1))

	// Columns feed alignment: a tab before the open paren shifts the
	// suggested indent with it.
	assert.Equal(t, 14, indentOfLastLine(tb, "\t(frob x\n"))
}

func TestLoadTable(t *testing.T) {
	t.Parallel()

	loaded, err := query.LoadTable(strings.NewReader(`
tabstop: 4
rules:
  with-frobs:
    class: body
    special: 1
  my-if:
    class: if
`))
	require.NoError(t, err)

	assert.Equal(t, 4, loaded.Tabstop)
	assert.Equal(t, query.Rule{Class: query.ClassBody, Special: 1}, loaded.Rules["with-frobs"])
	assert.Equal(t, query.Rule{Class: query.ClassIf}, loaded.Rules["my-if"])
	// Defaults survive the merge.
	assert.Equal(t, query.Rule{Class: query.ClassBody, Special: 2}, loaded.Rules["defun"])

	assert.Equal(t, 4, indentOfLastLine(loaded, "(with-frobs\n"))
	assert.Equal(t, 2, indentOfLastLine(loaded, "(with-frobs (a b)\n"))

	_, err = query.LoadTable(strings.NewReader("rules: [not, a, map]"))
	assert.Error(t, err)
}

func TestIndentInsideIncompleteNesting(t *testing.T) {
	t.Parallel()
	tb := query.DefaultTable()

	// The innermost open list still governs even with every closer
	// missing.
	assert.Equal(t, 12, indentOfLastLine(tb, "(a (b (frob x\n"))
}
