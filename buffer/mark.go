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

package buffer

import "fmt"

// Bias determines which way a mark moves when text is inserted exactly at
// its position: a left-biased mark stays before the insertion, a
// right-biased one ends up after it.
type Bias int8

const (
	Left Bias = iota
	Right
)

// String implements [fmt.Stringer].
func (b Bias) String() string {
	if b == Left {
		return "left"
	}
	return "right"
}

// Mark is a stable position reference into a [Buffer]. It remains valid
// across edits: the buffer shifts it as text is inserted or deleted before
// it.
type Mark struct {
	buf       *Buffer
	offset    int
	bias      Bias
	id        uint64
	collapsed bool
}

// NewMark creates a mark at the given offset.
func (b *Buffer) NewMark(offset int, bias Bias) *Mark {
	b.check(offset)
	b.nextMark++
	m := &Mark{buf: b, offset: offset, bias: bias, id: b.nextMark}
	b.marks.Set(m)
	return m
}

// Offset dereferences the mark to its current absolute offset.
func (m *Mark) Offset() int {
	return m.offset
}

// Bias returns the mark's stickiness.
func (m *Mark) Bias() Bias {
	return m.bias
}

// Collapsed reports whether a deletion has removed the element the mark
// pointed at. The mark still dereferences to the deletion's join point,
// but it no longer tracks the text it was created on. Repositioning the
// mark clears the flag.
func (m *Mark) Collapsed() bool {
	return m.collapsed
}

// Clone returns a new mark at the same position with the given bias.
func (m *Mark) Clone(bias Bias) *Mark {
	return m.buf.NewMark(m.offset, bias)
}

// MoveTo repositions the mark at the given offset.
func (m *Mark) MoveTo(offset int) {
	m.buf.check(offset)
	m.buf.marks.Delete(m)
	m.offset = offset
	m.collapsed = false
	m.buf.marks.Set(m)
}

// Advance steps the mark forward by n elements.
func (m *Mark) Advance(n int) {
	m.MoveTo(m.offset + n)
}

// Retreat steps the mark backward by n elements.
func (m *Mark) Retreat(n int) {
	m.MoveTo(m.offset - n)
}

// Element returns the buffer element at the mark. Panics if the mark is at
// the buffer end.
func (m *Mark) Element() rune {
	return m.buf.At(m.offset)
}

// IsAtBufferStart returns whether the mark is at offset zero.
func (m *Mark) IsAtBufferStart() bool {
	return m.offset == 0
}

// IsAtBufferEnd returns whether the mark is past the last element.
func (m *Mark) IsAtBufferEnd() bool {
	return m.offset == m.buf.Len()
}

// IsAtLineStart returns whether the mark is at the start of a line.
func (m *Mark) IsAtLineStart() bool {
	return m.offset == 0 || m.buf.At(m.offset-1) == '\n'
}

// IsAtLineEnd returns whether the mark is at the end of a line (just
// before a newline, or at the buffer end).
func (m *Mark) IsAtLineEnd() bool {
	return m.offset == m.buf.Len() || m.buf.At(m.offset) == '\n'
}

// String implements [fmt.Stringer].
func (m *Mark) String() string {
	return fmt.Sprintf("mark(%d, %v)", m.offset, m.bias)
}
