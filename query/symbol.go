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
	"errors"
	"strings"

	"github.com/quek/climacs/syntax"
)

// ErrNotSymbol reports that a node does not name a symbol: it is not a
// token, or it reads as a number.
var ErrNotSymbol = errors.New("node does not name a symbol")

// DefaultPackage is the namespace in effect before any in-package form.
const DefaultPackage = "COMMON-LISP-USER"

// Symbol is a resolved symbol reference: the namespace it lives in and
// its name, both in canonical (upper) case.
type Symbol struct {
	Package string
	Name    string
}

// String implements [fmt.Stringer].
func (s Symbol) String() string {
	if s.Package == "KEYWORD" {
		return ":" + s.Name
	}
	return s.Package + "::" + s.Name
}

// ResolveSymbol resolves a token node to the symbol it names. Package
// markers inside the token are honored; an unqualified token belongs to
// the package established by the closest preceding top-level in-package
// form, or to [DefaultPackage].
func ResolveSymbol(t *syntax.Tree, n syntax.Node) (Symbol, error) {
	if n.IsZero() || n.Kind() != syntax.Token {
		return Symbol{}, ErrNotSymbol
	}
	text := n.Text()
	if text == "" || readsAsNumber(text) {
		return Symbol{}, ErrNotSymbol
	}

	switch {
	case strings.HasPrefix(text, ":"):
		return Symbol{Package: "KEYWORD", Name: canonical(text[1:])}, nil
	default:
		if i := strings.Index(text, "::"); i > 0 {
			return Symbol{Package: canonical(text[:i]), Name: canonical(text[i+2:])}, nil
		}
		if i := strings.Index(text, ":"); i > 0 {
			return Symbol{Package: canonical(text[:i]), Name: canonical(text[i+1:])}, nil
		}
		return Symbol{Package: activePackage(t, n.Start()), Name: canonical(text)}, nil
	}
}

// activePackage scans the top-level forms before the offset for the last
// in-package form and returns the package it names.
func activePackage(t *syntax.Tree, before int) string {
	pkg := DefaultPackage
	root := t.Root()
	if root.IsZero() {
		return pkg
	}
	for c := range root.Children() {
		if c.Start() >= before {
			break
		}
		if name, ok := inPackageName(c); ok {
			pkg = name
		}
	}
	return pkg
}

// inPackageName recognizes an (in-package designator) form and extracts
// the designated package name.
func inPackageName(n syntax.Node) (string, bool) {
	if n.Kind() != syntax.ListForm {
		return "", false
	}
	elems := listElements(n)
	if len(elems) < 2 || elems[0].Kind() != syntax.Token {
		return "", false
	}
	if !strings.EqualFold(elems[0].Text(), "in-package") {
		return "", false
	}
	return canonical(packageDesignator(elems[1])), true
}

// packageDesignator extracts the name from a package designator: a
// keyword, an uninterned symbol, a string, or a bare token.
func packageDesignator(n syntax.Node) string {
	switch n.Kind() {
	case syntax.Token:
		return strings.TrimPrefix(n.Text(), ":")
	case syntax.UninternedSymbolForm:
		// #:name, where the operand token carries the name.
		for c := range n.Children() {
			if c.Kind() == syntax.Token {
				return c.Text()
			}
		}
		return ""
	case syntax.StringForm:
		text := n.Text()
		return strings.Trim(text, `"`)
	default:
		return ""
	}
}

// canonical folds a symbol name to the reader's canonical upper case,
// honoring |...| escapes, whose content is taken verbatim.
func canonical(name string) string {
	if strings.HasPrefix(name, "|") && strings.HasSuffix(name, "|") && len(name) >= 2 {
		return name[1 : len(name)-1]
	}
	return strings.ToUpper(name)
}

// readsAsNumber reports whether a token reads as an integer, ratio, or
// decimal float rather than a symbol.
func readsAsNumber(text string) bool {
	s := text
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	digits, slashes, dots := 0, 0, 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '/':
			slashes++
		case r == '.':
			dots++
		default:
			return false
		}
	}
	return digits > 0 && slashes <= 1 && dots <= 1 && !(slashes == 1 && dots == 1)
}
