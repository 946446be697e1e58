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
	"strings"
	"unicode"
)

// TokenKind is the type of a lexical token.
type TokenKind int

const (
	// TokenSymbol is a license symbol, either known or raw.
	TokenSymbol TokenKind = iota
	// TokenAnd is the AND operator.
	TokenAnd
	// TokenOr is the OR operator.
	TokenOr
	// TokenWith is the WITH operator.
	TokenWith
	// TokenOpen is an opening parenthesis.
	TokenOpen
	// TokenClose is a closing parenthesis.
	TokenClose
)

func (obj TokenKind) String() string {
	switch obj {
	case TokenSymbol:
		return "symbol"
	case TokenAnd:
		return "AND"
	case TokenOr:
		return "OR"
	case TokenWith:
		return "WITH"
	case TokenOpen:
		return "("
	case TokenClose:
		return ")"
	}
	return "unknown"
}

// operators are matched without regard to case.
var operators = map[string]TokenKind{
	"and":  TokenAnd,
	"or":   TokenOr,
	"with": TokenWith,
}

// Token is one lexical element of an expression.
type Token struct {
	Kind TokenKind

	// Text is the token as written in the input. For a multi-word alias it
	// spans from the first to the last word, including the spaces between.
	Text string

	// Pos is the character offset of the token in the input.
	Pos int

	// License is the resolved symbol for a TokenSymbol. It is nil when the
	// symbol is unknown, and for every other kind of token.
	License *LicenseSymbol
}

// word is a run of characters which are neither whitespace nor parenthesis, or
// a single parenthesis.
type word struct {
	text  string
	pos   int
	end   int // exclusive
	paren bool
}

func splitWords(runes []rune) []word {
	words := []word{}
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		words = append(words, word{
			text: string(runes[start:end]),
			pos:  start,
			end:  end,
		})
		start = -1
	}
	for i, r := range runes {
		switch {
		case r == '(' || r == ')':
			flush(i)
			words = append(words, word{
				text:  string(r),
				pos:   i,
				end:   i + 1,
				paren: true,
			})
		case unicode.IsSpace(r):
			flush(i)
		default:
			if start < 0 {
				start = i
			}
		}
	}
	flush(len(runes))
	return words
}

// Tokenize splits an expression into tokens. In simple mode every word is
// looked up on its own. Otherwise, at each word the longest run of words that
// spells a known alias is folded into a single symbol token before falling
// back to single words. Two symbol tokens in a row are an error, since there
// would be no way to tell how they were meant to be combined.
func Tokenize(expression string, licensing *Licensing, simple bool) ([]*Token, error) {
	if licensing == nil {
		licensing = emptyLicensing
	}
	runes := []rune(expression)
	words := splitWords(runes)

	tokens := []*Token{}
	for i := 0; i < len(words); {
		w := words[i]
		if w.paren {
			kind := TokenOpen
			if w.text == ")" {
				kind = TokenClose
			}
			tokens = append(tokens, &Token{Kind: kind, Text: w.text, Pos: w.pos})
			i++
			continue
		}

		if !simple {
			if token, n := licensing.longestMatch(runes, words[i:]); token != nil {
				tokens = append(tokens, token)
				i += n
				continue
			}
		}

		if kind, exists := operators[strings.ToLower(w.text)]; exists {
			tokens = append(tokens, &Token{Kind: kind, Text: w.text, Pos: w.pos})
			i++
			continue
		}

		tokens = append(tokens, &Token{
			Kind:    TokenSymbol,
			Text:    w.text,
			Pos:     w.pos,
			License: licensing.Lookup(w.text), // nil if unknown
		})
		i++
	}

	if err := checkSymbolSequence(tokens); err != nil {
		return nil, err
	}
	return tokens, nil
}

// longestMatch looks for the longest multi-word alias starting at the first of
// the words. It never crosses a parenthesis. It returns nil if there is no
// alias of two or more words that matches.
func (obj *Licensing) longestMatch(runes []rune, words []word) (*Token, int) {
	limit := 0
	for limit < len(words) && limit < obj.maxWords && !words[limit].paren {
		limit++
	}
	for n := limit; n >= 2; n-- {
		parts := make([]string, 0, n)
		for _, w := range words[:n] {
			parts = append(parts, w.text)
		}
		symbol, exists := obj.tokens[strings.ToLower(strings.Join(parts, " "))]
		if !exists {
			continue
		}
		first, last := words[0], words[n-1]
		return &Token{
			Kind:    TokenSymbol,
			Text:    string(runes[first.pos:last.end]),
			Pos:     first.pos,
			License: symbol,
		}, n
	}
	return nil, 0
}

func checkSymbolSequence(tokens []*Token) error {
	for i := 1; i < len(tokens); i++ {
		if tokens[i-1].Kind == TokenSymbol && tokens[i].Kind == TokenSymbol {
			return newParseError(ErrInvalidSymbolSequence, tokens[i])
		}
	}
	return nil
}
