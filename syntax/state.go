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

package syntax

import "fmt"

// State is the parser automaton's position in the grammar. Each state is a
// variant in this closed enumeration; the parser's action and goto
// functions are total over (State, Kind) pairs with explicit default arms.
//
// Every node records the state that was active when it was pushed onto the
// parse stack, which is what lets the incremental reparser resume parsing
// from an arbitrary point in a previous tree.
type State byte

const (
	// StateInitial is the top-level sequence position: zero or more forms
	// until end of input.
	StateInitial State = iota

	// StateList is inside an open paren, expecting forms or the closer.
	StateList

	// Interior states for delimited, non-expression constructs.

	StateString
	StateLineComment
	StateBlockComment
	StateSymbol

	// Prefix-operator states, each expecting one expression.

	StateQuote
	StateBackquote
	StateComma
	StateFunctionQuote
	StateUninterned

	// Reader conditionals expect two expressions.

	StateReaderCondPos1
	StateReaderCondPos2
	StateReaderCondNeg1
	StateReaderCondNeg2

	// StateRecover consumes the rest of the line after an unreadable
	// reader-macro dispatch.
	StateRecover
)

// Mode returns the lexical mode the lexer uses while the parser is in this
// state. Prefix-operator and reader-conditional states do not constrain
// the mode themselves; the caller supplies the innermost container's mode
// via inList.
func (s State) Mode(inList bool) Mode {
	switch s {
	case StateList:
		return ModeList
	case StateString:
		return ModeString
	case StateLineComment:
		return ModeLineComment
	case StateBlockComment:
		return ModeBlockComment
	case StateSymbol:
		return ModeEscapedSymbol
	case StateRecover:
		return ModeError
	case StateInitial:
		return ModeTopLevel
	default:
		if inList {
			return ModeList
		}
		return ModeTopLevel
	}
}

// String implements [fmt.Stringer].
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("syntax.State(%d)", int(s))
}

var stateNames = [...]string{
	StateInitial:        "Initial",
	StateList:           "List",
	StateString:         "String",
	StateLineComment:    "LineComment",
	StateBlockComment:   "BlockComment",
	StateSymbol:         "Symbol",
	StateQuote:          "Quote",
	StateBackquote:      "Backquote",
	StateComma:          "Comma",
	StateFunctionQuote:  "FunctionQuote",
	StateUninterned:     "Uninterned",
	StateReaderCondPos1: "ReaderCondPos1",
	StateReaderCondPos2: "ReaderCondPos2",
	StateReaderCondNeg1: "ReaderCondNeg1",
	StateReaderCondNeg2: "ReaderCondNeg2",
	StateRecover:        "Recover",
}

// Mode is the lexer's current lexical context, governing which lexeme
// kinds it may produce and how inter-lexeme filler is skipped.
type Mode byte

const (
	ModeTopLevel Mode = iota
	ModeList
	ModeString
	ModeLineComment
	ModeBlockComment
	ModeEscapedSymbol
	ModeError
)

// String implements [fmt.Stringer].
func (m Mode) String() string {
	switch m {
	case ModeTopLevel:
		return "TopLevel"
	case ModeList:
		return "List"
	case ModeString:
		return "String"
	case ModeLineComment:
		return "LineComment"
	case ModeBlockComment:
		return "BlockComment"
	case ModeEscapedSymbol:
		return "EscapedSymbol"
	case ModeError:
		return "Error"
	default:
		return fmt.Sprintf("syntax.Mode(%d)", int(m))
	}
}
