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

package buffer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quek/climacs/buffer"
)

func TestEdits(t *testing.T) {
	t.Parallel()

	b := buffer.New("hello world")
	assert.Equal(t, 11, b.Len())
	assert.Equal(t, "hello world", b.String())
	assert.Equal(t, "world", b.Slice(6, 11))
	assert.Equal(t, 'w', b.At(6))

	b.Insert(5, ",")
	assert.Equal(t, "hello, world", b.String())

	b.Delete(5, 2)
	assert.Equal(t, "helloworld", b.String())

	b.Insert(10, "!")
	assert.Equal(t, "helloworld!", b.String())

	assert.Panics(t, func() { b.At(11) })
	assert.Panics(t, func() { b.Slice(0, 12) })
}

func TestEditsAreRunes(t *testing.T) {
	t.Parallel()

	b := buffer.New("(λ x)")
	assert.Equal(t, 5, b.Len())
	assert.Equal(t, 'λ', b.At(1))

	b.Delete(1, 1)
	assert.Equal(t, "( x)", b.String())
}

func TestMarkAdjustment(t *testing.T) {
	t.Parallel()

	b := buffer.New("abcdef")
	left := b.NewMark(3, buffer.Left)
	right := b.NewMark(3, buffer.Right)
	far := b.NewMark(6, buffer.Left)

	// Insertion at the marks: bias decides who moves.
	b.Insert(3, "XY")
	assert.Equal(t, 3, left.Offset())
	assert.Equal(t, 5, right.Offset())
	assert.Equal(t, 8, far.Offset())

	// Insertion strictly before moves both.
	b.Insert(0, "Z")
	assert.Equal(t, 4, left.Offset())
	assert.Equal(t, 6, right.Offset())

	// Deletion spanning a mark collapses it to the deletion start.
	// "Zabc" + "XY" + "def": delete the XY plus one element either side.
	b.Delete(3, 4)
	assert.Equal(t, 3, left.Offset())
	assert.Equal(t, 3, right.Offset())
	assert.Equal(t, 5, far.Offset())
	assert.Equal(t, "Zabef", b.String())
}

func TestMarkCollapse(t *testing.T) {
	t.Parallel()

	b := buffer.New("abcdef")
	at := b.NewMark(2, buffer.Right)
	inside := b.NewMark(3, buffer.Left)
	after := b.NewMark(4, buffer.Right)

	// Delete "cd": the marks whose element is removed collapse and say so;
	// the mark just past the range only shifts.
	b.Delete(2, 2)
	assert.Equal(t, "abef", b.String())
	assert.True(t, at.Collapsed())
	assert.True(t, inside.Collapsed())
	assert.False(t, after.Collapsed())
	assert.Equal(t, 2, at.Offset())
	assert.Equal(t, 2, after.Offset())

	// Insertions never collapse, and repositioning clears the flag.
	b.Insert(2, "x")
	assert.False(t, after.Collapsed())
	at.MoveTo(0)
	assert.False(t, at.Collapsed())
}

func TestMarkNavigation(t *testing.T) {
	t.Parallel()

	b := buffer.New("ab\ncd\n")
	m := b.NewMark(0, buffer.Left)
	assert.True(t, m.IsAtBufferStart())
	assert.True(t, m.IsAtLineStart())
	assert.Equal(t, 'a', m.Element())

	m.Advance(2)
	assert.True(t, m.IsAtLineEnd())
	assert.False(t, m.IsAtLineStart())

	m.Advance(1)
	assert.True(t, m.IsAtLineStart())

	m.MoveTo(b.Len())
	assert.True(t, m.IsAtBufferEnd())
	assert.True(t, m.IsAtLineEnd())

	m.Retreat(1)
	assert.Equal(t, '\n', m.Element())

	clone := m.Clone(buffer.Right)
	require.Equal(t, m.Offset(), clone.Offset())
	assert.Equal(t, buffer.Right, clone.Bias())
}

func TestLineBounds(t *testing.T) {
	t.Parallel()

	b := buffer.New("one\ntwo\n\nfour")
	assert.Equal(t, 0, b.LineStart(2))
	assert.Equal(t, 3, b.LineEnd(0))
	assert.Equal(t, 4, b.LineStart(5))
	assert.Equal(t, 7, b.LineEnd(4))
	// The empty line.
	assert.Equal(t, 8, b.LineStart(8))
	assert.Equal(t, 8, b.LineEnd(8))
	// The last line, unterminated.
	assert.Equal(t, 9, b.LineStart(13))
	assert.Equal(t, 13, b.LineEnd(10))
}

func TestObservers(t *testing.T) {
	t.Parallel()

	b := buffer.New("abc")
	type edit struct{ low, high int }
	var edits []edit
	b.Observe(func(low, high int) {
		edits = append(edits, edit{low, high})
	})

	b.Insert(1, "xy")
	b.Delete(0, 2)
	b.Insert(3, "")

	// The empty insert is not an edit; the deletion reports the empty
	// range at the join point.
	assert.Equal(t, []edit{{1, 3}, {0, 0}}, edits)
}
