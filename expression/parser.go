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

// parser is a recursive descent parser over the output of Tokenize. Operator
// precedence from highest to lowest is: parenthesis, WITH, AND, OR. A run of
// the same operator builds a single node with all of the operands.
//
//	expr := term (("AND"|"OR") term)*
//	term := atom ("WITH" atom)?
//	atom := symbol | "(" expr ")"
type parser struct {
	tokens []*Token
	index  int
}

func parseTokens(tokens []*Token) (Expression, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	obj := &parser{tokens: tokens}
	expr, err := obj.parseOr()
	if err != nil {
		return nil, err
	}
	if token := obj.peek(); token != nil {
		return nil, unexpected(token)
	}
	return expr, nil
}

func (obj *parser) peek() *Token {
	if obj.index >= len(obj.tokens) {
		return nil
	}
	return obj.tokens[obj.index]
}

func (obj *parser) next() *Token {
	token := obj.peek()
	if token != nil {
		obj.index++
	}
	return token
}

// previous returns the last consumed token, which is what we blame when the
// input ends too early.
func (obj *parser) previous() *Token {
	if obj.index == 0 {
		return nil
	}
	return obj.tokens[obj.index-1]
}

func (obj *parser) parseOr() (Expression, error) {
	args := []Expression{}
	for {
		arg, err := obj.parseAnd()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if token := obj.peek(); token == nil || token.Kind != TokenOr {
			break
		}
		obj.next()
	}
	if len(args) == 1 {
		return args[0], nil
	}
	return &Or{Args: args}, nil
}

func (obj *parser) parseAnd() (Expression, error) {
	args := []Expression{}
	for {
		arg, err := obj.parseWith()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if token := obj.peek(); token == nil || token.Kind != TokenAnd {
			break
		}
		obj.next()
	}
	if len(args) == 1 {
		return args[0], nil
	}
	return &And{Args: args}, nil
}

func (obj *parser) parseWith() (Expression, error) {
	license, err := obj.parseAtom()
	if err != nil {
		return nil, err
	}
	if token := obj.peek(); token == nil || token.Kind != TokenWith {
		return license, nil
	}
	obj.next()

	exception, err := obj.parseAtom()
	if err != nil {
		return nil, err
	}
	// WITH does not chain
	if token := obj.peek(); token != nil && token.Kind == TokenWith {
		return nil, newParseError(ErrInvalidExpression, token)
	}
	return &With{License: license, Exception: exception}, nil
}

func (obj *parser) parseAtom() (Expression, error) {
	token := obj.next()
	if token == nil {
		return nil, newParseError(ErrInvalidExpression, obj.previous())
	}

	switch token.Kind {
	case TokenSymbol:
		return &Symbol{
			Text:    token.Text,
			Pos:     token.Pos,
			License: token.License,
		}, nil

	case TokenOpen:
		expr, err := obj.parseOr()
		if err != nil {
			return nil, err
		}
		closing := obj.next()
		if closing == nil {
			return nil, newParseError(ErrUnbalancedParenthesis, token)
		}
		if closing.Kind != TokenClose {
			return nil, unexpected(closing)
		}
		return expr, nil
	}

	// an operator or a closing parenthesis where an operand belongs
	return nil, newParseError(ErrInvalidExpression, token)
}

// unexpected builds the error for a token found where an operator or the end of
// the input was expected.
func unexpected(token *Token) error {
	switch token.Kind {
	case TokenClose:
		return newParseError(ErrUnbalancedParenthesis, token)
	case TokenOpen:
		return newParseError(ErrInvalidNesting, token)
	case TokenSymbol:
		return newParseError(ErrInvalidSymbolSequence, token)
	}
	return newParseError(ErrInvalidExpression, token)
}
