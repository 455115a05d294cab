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

// Package buffer provides the mutable text storage the syntax engine reads,
// together with marks: stable position references that automatically adjust
// as text is inserted or deleted elsewhere in the buffer.
//
// Offsets and lengths are measured in buffer elements, which are runes.
package buffer

import (
	"fmt"

	"github.com/tidwall/btree"
)

// Observer is notified after every edit with the dirtied element range
// [low, high) in post-edit coordinates. For a deletion the range is empty
// but still marks the join point.
type Observer func(low, high int)

// Buffer is a mutable sequence of runes.
//
// All live marks into a buffer are kept in a B-tree ordered by offset, so
// an edit only touches the marks at or after the edit point.
type Buffer struct {
	text  []rune
	marks *btree.BTreeG[*Mark]

	nextMark  uint64
	observers []Observer
}

// New returns a buffer holding the given initial text.
func New(text string) *Buffer {
	b := &Buffer{
		marks: btree.NewBTreeG(func(a, b *Mark) bool {
			if a.offset != b.offset {
				return a.offset < b.offset
			}
			return a.id < b.id
		}),
	}
	b.text = []rune(text)
	return b
}

// Len returns the number of elements in the buffer.
func (b *Buffer) Len() int {
	return len(b.text)
}

// String returns the entire buffer contents.
func (b *Buffer) String() string {
	return string(b.text)
}

// Slice returns the text in [lo, hi).
func (b *Buffer) Slice(lo, hi int) string {
	b.check(lo)
	b.check(hi)
	return string(b.text[lo:hi])
}

// At returns the element at the given offset.
func (b *Buffer) At(offset int) rune {
	if offset < 0 || offset >= len(b.text) {
		panic(fmt.Sprintf("climacs/buffer: offset out of range: %d", offset))
	}
	return b.text[offset]
}

// LineStart returns the offset of the first element of the line containing
// offset.
func (b *Buffer) LineStart(offset int) int {
	b.check(offset)
	for offset > 0 && b.text[offset-1] != '\n' {
		offset--
	}
	return offset
}

// LineEnd returns the offset just past the last non-newline element of the
// line containing offset.
func (b *Buffer) LineEnd(offset int) int {
	b.check(offset)
	for offset < len(b.text) && b.text[offset] != '\n' {
		offset++
	}
	return offset
}

// Observe registers an observer called after every edit.
func (b *Buffer) Observe(fn Observer) {
	b.observers = append(b.observers, fn)
}

// Insert inserts text at the given offset. Marks at the insertion point
// stay put if left-biased and move past the insertion if right-biased.
func (b *Buffer) Insert(offset int, text string) {
	b.check(offset)
	runes := []rune(text)
	if len(runes) == 0 {
		return
	}

	b.text = append(b.text[:offset], append(runes, b.text[offset:]...)...)

	b.adjustMarks(offset, func(m *Mark) {
		if m.offset > offset || m.bias == Right {
			m.offset += len(runes)
		}
	})
	b.notify(offset, offset+len(runes))
}

// Delete removes n elements starting at offset. Marks whose element is in
// the deleted range collapse to its start and are flagged as collapsed;
// their text is gone, and offsets alone cannot tell them apart from marks
// that merely shifted down to the join point.
func (b *Buffer) Delete(offset, n int) {
	b.check(offset)
	b.check(offset + n)
	if n == 0 {
		return
	}

	b.text = append(b.text[:offset], b.text[offset+n:]...)

	b.adjustMarks(offset, func(m *Mark) {
		if m.offset >= offset+n {
			m.offset -= n
			return
		}
		m.offset = offset
		m.collapsed = true
	})
	b.notify(offset, offset)
}

// adjustMarks applies fn to every mark at or after offset. The affected
// marks are pulled out of the tree first: fn changes their sort keys, and
// the tree must never hold a mark whose key is out of order.
func (b *Buffer) adjustMarks(offset int, fn func(*Mark)) {
	var affected []*Mark
	pivot := &Mark{offset: offset}
	b.marks.Ascend(pivot, func(m *Mark) bool {
		affected = append(affected, m)
		return true
	})
	for _, m := range affected {
		b.marks.Delete(m)
	}
	for _, m := range affected {
		fn(m)
		b.marks.Set(m)
	}
}

func (b *Buffer) notify(low, high int) {
	for _, fn := range b.observers {
		fn(low, high)
	}
}

func (b *Buffer) check(offset int) {
	if offset < 0 || offset > len(b.text) {
		panic(fmt.Sprintf("climacs/buffer: offset out of range: %d (len %d)", offset, len(b.text)))
	}
}
