// Copyright Amazon.com Inc or its affiliates and the project contributors
// Written by James Shubin <purple@amazon.com> and the project contributors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.
//
// We will never require a CLA to submit a patch. All contributions follow the
// `inbound == outbound` rule.
//
// This is not an official Amazon product. Amazon does not offer support for
// this project.
//
// SPDX-License-Identifier: Apache-2.0

package expression

import (
	"fmt"
	"strings"
)

// ErrorCode identifies the kind of syntax problem that a ParseError reports.
type ErrorCode int

const (
	// ErrInvalidExpression is used when an operand is missing, for example
	// with a dangling operator or two operators in a row.
	ErrInvalidExpression ErrorCode = iota + 1

	// ErrInvalidSymbolSequence is used when two symbols follow each other
	// without an operator in between. With alias matching this usually
	// means that a phrase could not be resolved unambiguously.
	ErrInvalidSymbolSequence

	// ErrUnbalancedParenthesis is used when a parenthesis is never closed,
	// or closed without having been opened.
	ErrUnbalancedParenthesis

	// ErrInvalidNesting is used when a parenthesized group appears where an
	// operator was expected.
	ErrInvalidNesting
)

// String returns the message template for this error code.
func (obj ErrorCode) String() string {
	switch obj {
	case ErrInvalidExpression:
		return "Invalid expression"
	case ErrInvalidSymbolSequence:
		return "Invalid symbols sequence such as (A B)"
	case ErrUnbalancedParenthesis:
		return "Unbalanced parenthesis"
	case ErrInvalidNesting:
		return "Invalid expression nesting such as (AND xx)"
	}
	return fmt.Sprintf("ErrorCode(%d)", int(obj))
}

// ParseError is returned when the text is not a syntactically valid license
// expression.
type ParseError struct {
	Code ErrorCode

	// Token is the text of the offending token.
	Token string

	// Position is the character offset of Token in the input string. It
	// is -1 when it can't be determined.
	Position int
}

// Error fulfills the error interface of this type.
func (obj *ParseError) Error() string {
	if obj.Position < 0 {
		return obj.Code.String()
	}
	return fmt.Sprintf(`%s for token: "%s" at position: %d`, obj.Code, obj.Token, obj.Position)
}

func newParseError(code ErrorCode, token *Token) *ParseError {
	if token == nil {
		return &ParseError{Code: code, Position: -1}
	}
	return &ParseError{
		Code:     code,
		Token:    token.Text,
		Position: token.Pos,
	}
}

// ExpressionError is returned when an expression parses, but breaks one of the
// semantic rules. This includes unknown license keys, and the rules about what
// can appear on each side of a WITH.
type ExpressionError struct {
	Message string

	// Unknown is the list of unknown license keys, in order of first
	// appearance, when this error is about unknown keys.
	Unknown []string
}

// Error fulfills the error interface of this type.
func (obj *ExpressionError) Error() string {
	return obj.Message
}

func newUnknownKeysError(keys []string) *ExpressionError {
	return &ExpressionError{
		Message: "Unknown license key(s): " + strings.Join(keys, ", "),
		Unknown: keys,
	}
}

// ValidationError is what NormalizeAndValidate returns. It wraps the ParseError
// or ExpressionError that caused it, and can list the available license keys to
// help whoever has to fix the expression.
type ValidationError struct {
	Err error

	// Available is the sorted list of known license keys. It is only set
	// when it was requested.
	Available []string
}

// Error fulfills the error interface of this type.
func (obj *ValidationError) Error() string {
	s := obj.Err.Error()
	if len(obj.Available) > 0 {
		s += "\nAvailable licenses: " + strings.Join(obj.Available, ", ")
	}
	return s
}

// Unwrap returns the underlying parse or expression error.
func (obj *ValidationError) Unwrap() error {
	return obj.Err
}
