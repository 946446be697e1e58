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
)

// Expression is a node of a parsed license expression. Trees are never modified
// once built; Simplify and the combinators return new trees.
type Expression interface {
	fmt.Stringer

	isExpression()
}

// Symbol is a leaf. It is resolved when License is set, and raw otherwise.
type Symbol struct {
	// Text is the symbol as written in the input.
	Text string

	// Pos is the character offset of Text in the input.
	Pos int

	License *LicenseSymbol
}

// Key returns the canonical key of a resolved symbol, or the raw text.
func (obj *Symbol) Key() string {
	if obj.License != nil {
		return obj.License.Key
	}
	return obj.Text
}

// And is true when all of its arguments are.
type And struct {
	Args []Expression
}

// Or is true when any of its arguments is.
type Or struct {
	Args []Expression
}

// With pairs a license with an exception to it. It is never distributed over
// AND or OR.
type With struct {
	License   Expression
	Exception Expression
}

func (obj *Symbol) isExpression() {}
func (obj *And) isExpression()    {}
func (obj *Or) isExpression()     {}
func (obj *With) isExpression()   {}

// AND combines the expressions with AND. Nil expressions are skipped. With no
// expressions it returns nil, and with one it returns that expression.
func AND(exprs ...Expression) Expression {
	args := nonNil(exprs)
	switch len(args) {
	case 0:
		return nil
	case 1:
		return args[0]
	}
	return &And{Args: args}
}

// OR is like AND, but for OR.
func OR(exprs ...Expression) Expression {
	args := nonNil(exprs)
	switch len(args) {
	case 0:
		return nil
	case 1:
		return args[0]
	}
	return &Or{Args: args}
}

func nonNil(exprs []Expression) []Expression {
	args := []Expression{}
	for _, x := range exprs {
		if x != nil {
			args = append(args, x)
		}
	}
	return args
}

// Walk calls the callback for every node, parents before children, in the
// order they appear.
func Walk(expr Expression, callback func(Expression)) {
	if expr == nil {
		return
	}
	callback(expr)
	switch x := expr.(type) {
	case *And:
		for _, arg := range x.Args {
			Walk(arg, callback)
		}
	case *Or:
		for _, arg := range x.Args {
			Walk(arg, callback)
		}
	case *With:
		Walk(x.License, callback)
		Walk(x.Exception, callback)
	}
}

// Symbols returns every leaf in the order it appears.
func Symbols(expr Expression) []*Symbol {
	leaves := []*Symbol{}
	Walk(expr, func(x Expression) {
		if leaf, ok := x.(*Symbol); ok {
			leaves = append(leaves, leaf)
		}
	})
	return leaves
}

// LicenseSymbols returns the resolved license symbols in order of first
// appearance, without duplicates.
func LicenseSymbols(expr Expression) []*LicenseSymbol {
	seen := make(map[string]struct{})
	result := []*LicenseSymbol{}
	for _, leaf := range Symbols(expr) {
		if leaf.License == nil {
			continue
		}
		if _, exists := seen[leaf.License.Key]; exists {
			continue
		}
		seen[leaf.License.Key] = struct{}{}
		result = append(result, leaf.License)
	}
	return result
}

// UniqueKeys returns the key of every leaf, resolved or raw, in order of first
// appearance and without duplicates.
func UniqueKeys(expr Expression) []string {
	seen := make(map[string]struct{})
	keys := []string{}
	for _, leaf := range Symbols(expr) {
		k := leaf.Key()
		if _, exists := seen[k]; exists {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}
