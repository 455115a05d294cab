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

package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quek/climacs/buffer"
	"github.com/quek/climacs/syntax"
)

// buildList hand-assembles the tree for "(a)" the way the parser would.
func buildList(t *testing.T, buf *buffer.Buffer) (*syntax.Tree, syntax.Node) {
	t.Helper()
	tree := syntax.NewTree(buf)
	open := tree.NewLexeme(syntax.LeftParen, syntax.StateInitial, 0, 1)
	a := tree.NewLexeme(syntax.Token, syntax.StateList, 1, 1)
	closer := tree.NewLexeme(syntax.RightParen, syntax.StateList, 2, 1)
	tree.SetStackPred(a, open)
	tree.SetStackPred(closer, a)
	list := tree.NewNonterminal(syntax.ListForm, syntax.StateInitial, []syntax.Node{open, a, closer}, 3)
	root := tree.NewNonterminal(syntax.TopSequence, syntax.StateInitial, []syntax.Node{list}, 3)
	tree.SetRoot(root)
	return tree, list
}

func TestNodeBasics(t *testing.T) {
	t.Parallel()

	buf := buffer.New("(a)")
	tree, list := buildList(t, buf)

	assert.Equal(t, syntax.ListForm, list.Kind())
	assert.Equal(t, syntax.StateInitial, list.EntryState())
	assert.Equal(t, 0, list.Start())
	assert.Equal(t, 3, list.End())
	assert.Equal(t, 3, list.Len())
	assert.Equal(t, "(a)", list.Text())
	assert.Equal(t, 3, list.NumChildren())

	a := list.Child(1)
	assert.Equal(t, syntax.Token, a.Kind())
	assert.Equal(t, "a", a.Text())
	assert.Equal(t, list.ID(), a.Parent().ID())
	assert.Equal(t, 1, a.ChildIndex())
	assert.Equal(t, syntax.RightParen, a.NextSibling().Kind())
	assert.True(t, list.NextSibling().IsZero())

	assert.Equal(t, list.Child(0).ID(), a.StackPred().ID())
	assert.Equal(t, syntax.LeftParen, list.FirstLexeme().Kind())
	assert.Equal(t, syntax.RightParen, list.LastLexeme().Kind())

	root := tree.Root()
	assert.Equal(t, syntax.TopSequence, root.Kind())
	assert.True(t, root.Parent().IsZero())
	assert.Equal(t, -1, root.ChildIndex())
}

func TestSpansFollowEdits(t *testing.T) {
	t.Parallel()

	buf := buffer.New("(a)")
	_, list := buildList(t, buf)

	buf.Insert(0, "  ")
	assert.Equal(t, 2, list.Start())
	assert.Equal(t, 5, list.End())
	assert.Equal(t, "(a)", list.Text())
}

func TestAllNodesPreorder(t *testing.T) {
	t.Parallel()

	buf := buffer.New("(a)")
	tree, _ := buildList(t, buf)

	var kinds []syntax.Kind
	for n := range tree.AllNodes() {
		kinds = append(kinds, n.Kind())
	}
	assert.Equal(t, []syntax.Kind{
		syntax.TopSequence, syntax.ListForm,
		syntax.LeftParen, syntax.Token, syntax.RightParen,
	}, kinds)
}

func TestEqual(t *testing.T) {
	t.Parallel()

	bufA := buffer.New("(a)")
	treeA, listA := buildList(t, bufA)
	bufB := buffer.New("(a)")
	treeB, listB := buildList(t, bufB)

	assert.True(t, syntax.Equal(treeA.Root(), treeB.Root()))
	assert.True(t, syntax.Equal(listA, listB))
	assert.False(t, syntax.Equal(listA, treeB.Root()))
	assert.False(t, syntax.Equal(listA, syntax.Node{}))
	assert.True(t, syntax.Equal(syntax.Node{}, syntax.Node{}))
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	buf := buffer.New("(a)")
	_, list := buildList(t, buf)

	got := list.Summarize()
	require.Len(t, got.Children, 3)
	assert.Equal(t, syntax.ListForm, got.Kind)
	assert.Equal(t, 0, got.Start)
	assert.Equal(t, 3, got.End)
	assert.Equal(t, syntax.Token, got.Children[1].Kind)
}

func TestDump(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<empty>\n", syntax.NewTree(buffer.New("")).Dump())

	buf := buffer.New("(a)")
	tree, _ := buildList(t, buf)
	dump := tree.Dump()
	assert.Contains(t, dump, "TopSequence@Initial [0, 3)")
	assert.Contains(t, dump, `  ListForm@Initial [0, 3)`)
	assert.Contains(t, dump, `    Token@List [1, 2) "a"`)
}

func TestKindPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, syntax.Token.IsLexeme())
	assert.False(t, syntax.ListForm.IsLexeme())
	assert.True(t, syntax.ListForm.IsForm())
	assert.False(t, syntax.TopSequence.IsForm())
	assert.True(t, syntax.IncompleteStringForm.IsIncomplete())
	assert.False(t, syntax.StringForm.IsIncomplete())

	assert.True(t, syntax.Token.IsExpression())
	assert.True(t, syntax.QuoteForm.IsExpression())
	assert.False(t, syntax.LineCommentForm.IsExpression())
	assert.False(t, syntax.BlockCommentForm.IsExpression())
	assert.False(t, syntax.Word.IsExpression())
	assert.False(t, syntax.TopSequence.IsExpression())
}
