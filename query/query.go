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

// Package query answers structural questions about a parse tree: which
// expression encloses a position, where the neighboring expressions are,
// how a line should be indented, and what symbol a token names. All
// queries are read-only; callers reparse first via parser.Syntax.Update.
package query

import (
	"errors"

	"github.com/quek/climacs/syntax"
)

// ErrNoExpression reports that no expression satisfies the query at the
// given position.
var ErrNoExpression = errors.New("no expression at position")

// EnclosingForm returns the innermost expression strictly containing the
// offset. A position on an expression's boundary is outside it.
func EnclosingForm(t *syntax.Tree, offset int) (syntax.Node, error) {
	var best syntax.Node
	n := t.Root()
	for !n.IsZero() {
		var next syntax.Node
		for c := range n.Children() {
			if c.Start() < offset && offset < c.End() {
				next = c
				break
			}
		}
		if next.IsZero() {
			break
		}
		if next.Kind().IsExpression() {
			best = next
		}
		n = next
	}
	if best.IsZero() {
		return syntax.Node{}, ErrNoExpression
	}
	return best, nil
}

// NextForm returns the outermost expression beginning at or after the
// offset: an expression that starts past the offset is returned whole,
// without descending into it.
func NextForm(t *syntax.Tree, offset int) (syntax.Node, error) {
	root := t.Root()
	if root.IsZero() {
		return syntax.Node{}, ErrNoExpression
	}
	if found := nextForm(root, offset); !found.IsZero() {
		return found, nil
	}
	return syntax.Node{}, ErrNoExpression
}

func nextForm(n syntax.Node, offset int) syntax.Node {
	for c := range n.Children() {
		if c.End() <= offset {
			continue
		}
		if c.Start() >= offset && c.Kind().IsExpression() {
			return c
		}
		// c straddles the offset, or is a non-expression that may hold
		// one further in.
		if found := nextForm(c, offset); !found.IsZero() {
			return found
		}
	}
	return syntax.Node{}
}

// PreviousForm returns the outermost expression ending at or before the
// offset.
func PreviousForm(t *syntax.Tree, offset int) (syntax.Node, error) {
	root := t.Root()
	if root.IsZero() {
		return syntax.Node{}, ErrNoExpression
	}
	if found := prevForm(root, offset); !found.IsZero() {
		return found, nil
	}
	return syntax.Node{}, ErrNoExpression
}

func prevForm(n syntax.Node, offset int) syntax.Node {
	for i := n.NumChildren() - 1; i >= 0; i-- {
		c := n.Child(i)
		if c.Start() >= offset {
			continue
		}
		if c.End() <= offset && c.Kind().IsExpression() {
			return c
		}
		if found := prevForm(c, offset); !found.IsZero() {
			return found
		}
	}
	return syntax.Node{}
}

// MoveForwardByExpression returns the position just past the next
// expression at the current nesting level. With no expression left in
// the enclosing list, the position past the list itself is returned,
// stepping out of it.
func MoveForwardByExpression(t *syntax.Tree, offset int) (int, error) {
	container := containerAt(t, offset)
	if container.IsZero() {
		return 0, ErrNoExpression
	}
	for c := range container.Children() {
		if c.Start() >= offset && c.Kind().IsExpression() {
			return c.End(), nil
		}
	}
	if container.Kind() == syntax.TopSequence {
		return 0, ErrNoExpression
	}
	return container.End(), nil
}

// MoveBackwardByExpression returns the position of the start of the
// previous expression at the current nesting level, or the start of the
// enclosing list when none precedes the offset.
func MoveBackwardByExpression(t *syntax.Tree, offset int) (int, error) {
	container := containerAt(t, offset)
	if container.IsZero() {
		return 0, ErrNoExpression
	}
	for i := container.NumChildren() - 1; i >= 0; i-- {
		c := container.Child(i)
		if c.End() <= offset && c.Kind().IsExpression() {
			return c.Start(), nil
		}
	}
	if container.Kind() == syntax.TopSequence {
		return 0, ErrNoExpression
	}
	return container.Start(), nil
}

// containerAt returns the innermost list containing the offset, or the
// top-level sequence. An incomplete construct has no closer, so its
// interior extends past its last child to the end of input; incomplete
// nodes only ever sit on the tree's right spine, so nothing follows them.
func containerAt(t *syntax.Tree, offset int) syntax.Node {
	root := t.Root()
	if root.IsZero() {
		return syntax.Node{}
	}
	container := root
	n := root
	for {
		var next syntax.Node
		for c := range n.Children() {
			if c.Start() >= offset {
				break
			}
			if offset < c.End() || c.Kind().IsIncomplete() {
				next = c
				break
			}
		}
		if next.IsZero() {
			return container
		}
		switch next.Kind() {
		case syntax.ListForm, syntax.IncompleteListForm:
			container = next
		}
		n = next
	}
}
