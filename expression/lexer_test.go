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

package expression_test

import (
	"errors"
	"testing"

	"github.com/awslabs/licexp/expression"

	"github.com/google/go-cmp/cmp"
)

// tok is a token without its resolved license, for comparing.
type tok struct {
	Kind expression.TokenKind
	Text string
	Pos  int
	Key  string
}

func flatten(tokens []*expression.Token) []tok {
	result := []tok{}
	for _, x := range tokens {
		t := tok{Kind: x.Kind, Text: x.Text, Pos: x.Pos}
		if x.License != nil {
			t.Key = x.License.Key
		}
		result = append(result, t)
	}
	return result
}

func TestTokenize(t *testing.T) {
	licensing := testLicensing(t)
	tests := []struct {
		input  string
		simple bool
		exp    []tok
	}{
		{
			input: "",
			exp:   []tok{},
		},
		{
			input: "mit AnD apache-2.0",
			exp: []tok{
				{expression.TokenSymbol, "mit", 0, "mit"},
				{expression.TokenAnd, "AnD", 4, ""},
				{expression.TokenSymbol, "apache-2.0", 8, "apache-2.0"},
			},
		},
		{
			input: "(GPL 2.0)",
			exp: []tok{
				{expression.TokenOpen, "(", 0, ""},
				{expression.TokenSymbol, "GPL 2.0", 1, "gps-2.0"},
				{expression.TokenClose, ")", 8, ""},
			},
		},
		{
			// the spacing of the input is kept in the token text
			input: "GPL   2.0 or later with foo",
			exp: []tok{
				{expression.TokenSymbol, "GPL   2.0 or later", 0, "gps-2.0-plus"},
				{expression.TokenWith, "with", 19, ""},
				{expression.TokenSymbol, "foo", 24, ""},
			},
		},
		{
			input: "withorand with orribleand",
			exp: []tok{
				{expression.TokenSymbol, "withorand", 0, ""},
				{expression.TokenWith, "with", 10, ""},
				{expression.TokenSymbol, "orribleand", 15, ""},
			},
		},
		{
			// positions are in characters, not bytes
			input: "é or mit",
			exp: []tok{
				{expression.TokenSymbol, "é", 0, ""},
				{expression.TokenOr, "or", 2, ""},
				{expression.TokenSymbol, "mit", 5, "mit"},
			},
		},
		{
			input:  "gps-2.0 or mit",
			simple: true,
			exp: []tok{
				{expression.TokenSymbol, "gps-2.0", 0, "gps-2.0"},
				{expression.TokenOr, "or", 8, ""},
				{expression.TokenSymbol, "mit", 11, "mit"},
			},
		},
	}
	for _, test := range tests {
		tokens, err := expression.Tokenize(test.input, licensing, test.simple)
		if err != nil {
			t.Errorf("tokenize %q: %+v", test.input, err)
			continue
		}
		if diff := cmp.Diff(test.exp, flatten(tokens)); diff != "" {
			t.Errorf("tokenize %q (-want +got):\n%s", test.input, diff)
		}
	}
}

func TestTokenizeSimpleNoAliases(t *testing.T) {
	licensing := testLicensing(t)
	_, err := expression.Tokenize("GPL 2.0", licensing, true)
	exp := &expression.ParseError{
		Code:     expression.ErrInvalidSymbolSequence,
		Token:    "2.0",
		Position: 4,
	}
	var got *expression.ParseError
	if !errors.As(err, &got) {
		t.Errorf("expected a parse error, got: %v", err)
		return
	}
	if diff := cmp.Diff(exp, got); diff != "" {
		t.Errorf("unexpected error (-want +got):\n%s", diff)
	}
}

func TestTokenizeAmbiguous(t *testing.T) {
	licensing, err := expression.Build(expression.Records{
		{Key: "x11", Aliases: []string{"X11 License"}},
		{Key: "x11-xconsortium", Aliases: []string{"X11 XConsortium Veillard"}},
	})
	if err != nil {
		t.Errorf("err: %+v", err)
		return
	}
	_, err = expression.Tokenize("x11 or x11 Xconsortium", licensing, false)
	if err == nil {
		t.Errorf("expected an error")
		return
	}
	exp := `Invalid symbols sequence such as (A B) for token: "Xconsortium" at position: 11`
	if s := err.Error(); s != exp {
		t.Errorf("exp: %s", exp)
		t.Errorf("got: %s", s)
	}
}

// TestTokenizeLongestMatch uses a two word alias, so "x11 Xconsortium" is a
// complete alias and wins over the shorter "x11" key. No ambiguity error is
// raised here, unlike TestTokenizeAmbiguous where the alias is only partially
// matched. The longest match is also what makes "GPL 2.0 or later" a single
// symbol instead of an OR.
func TestTokenizeLongestMatch(t *testing.T) {
	licensing, err := expression.Build(expression.Records{
		{Key: "x11", Aliases: []string{"X11 License"}},
		{Key: "x11-xconsortium", Aliases: []string{"X11 XConsortium"}},
	})
	if err != nil {
		t.Errorf("err: %+v", err)
		return
	}
	tree, err := expression.Parse("x11 or x11 Xconsortium", licensing, expression.ParseOptions{ValidateKnown: true})
	if err != nil {
		t.Errorf("err: %+v", err)
		return
	}
	if s := tree.String(); s != "x11 OR x11-xconsortium" {
		t.Errorf("exp: x11 OR x11-xconsortium")
		t.Errorf("got: %s", s)
	}
}

func TestTokenKindString(t *testing.T) {
	if s := expression.TokenWith.String(); s != "WITH" {
		t.Errorf("got: %s", s)
	}
}
