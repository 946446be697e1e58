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
	"sort"
	"strings"
)

// Simplify returns a smaller tree with the same meaning. Nested groups of the
// same operator are merged, repeated operands are removed, and absorbed groups
// are dropped, so that "a AND (a OR b)" becomes "a". Operands keep the order
// in which they first appeared. A WITH is never looked into or distributed.
func Simplify(expr Expression) Expression {
	switch x := expr.(type) {
	case *And:
		return simplifyGroup(x.Args, true)
	case *Or:
		return simplifyGroup(x.Args, false)
	}
	return expr
}

func simplifyGroup(in []Expression, and bool) Expression {
	args := []Expression{}
	seen := make(map[string]struct{})
	add := func(x Expression) {
		c := canonical(x)
		if _, exists := seen[c]; exists {
			return
		}
		seen[c] = struct{}{}
		args = append(args, x)
	}
	for _, arg := range in {
		arg = Simplify(arg)
		if same, ok := groupArgs(arg, and); ok {
			for _, x := range same {
				add(x)
			}
			continue
		}
		add(arg)
	}

	args = absorb(args, and)

	if len(args) == 1 {
		return args[0]
	}
	if and {
		return &And{Args: args}
	}
	return &Or{Args: args}
}

// groupArgs returns the operands of expr if it is an AND (when and is true) or
// an OR (when it isn't).
func groupArgs(expr Expression, and bool) ([]Expression, bool) {
	switch x := expr.(type) {
	case *And:
		if and {
			return x.Args, true
		}
	case *Or:
		if !and {
			return x.Args, true
		}
	}
	return nil, false
}

// absorb drops every operand of the other operator whose terms include all of
// the terms of some other operand. In an AND that's "a AND (a OR b)" and in an
// OR it's "a OR (a AND b)".
func absorb(args []Expression, and bool) []Expression {
	terms := make([]map[string]struct{}, len(args))
	for i, arg := range args {
		terms[i] = make(map[string]struct{})
		if inner, ok := groupArgs(arg, !and); ok {
			for _, x := range inner {
				terms[i][canonical(x)] = struct{}{}
			}
			continue
		}
		terms[i][canonical(arg)] = struct{}{}
	}

	result := []Expression{}
	for i, arg := range args {
		if _, ok := groupArgs(arg, !and); ok && absorbed(terms, i) {
			continue
		}
		result = append(result, arg)
	}
	return result
}

func absorbed(terms []map[string]struct{}, i int) bool {
	for j := range terms {
		if j == i || len(terms[j]) >= len(terms[i]) {
			continue
		}
		if isSubset(terms[j], terms[i]) {
			return true
		}
	}
	return false
}

func isSubset(a, b map[string]struct{}) bool {
	for k := range a {
		if _, exists := b[k]; !exists {
			return false
		}
	}
	return true
}

// canonical returns a string which is the same for two trees that only differ
// in the order of AND and OR operands, in nesting of the same operator, or in
// repeated operands. Leaves are identified by their key.
func canonical(expr Expression) string {
	switch x := expr.(type) {
	case *Symbol:
		return x.Key()
	case *And:
		return "AND(" + canonicalGroup(x.Args, true) + ")"
	case *Or:
		return "OR(" + canonicalGroup(x.Args, false) + ")"
	case *With:
		return "WITH(" + canonical(x.License) + " " + canonical(x.Exception) + ")"
	}
	return ""
}

func canonicalGroup(in []Expression, and bool) string {
	set := make(map[string]struct{})
	var walk func([]Expression)
	walk = func(args []Expression) {
		for _, arg := range args {
			if same, ok := groupArgs(arg, and); ok {
				walk(same)
				continue
			}
			set[canonical(arg)] = struct{}{}
		}
	}
	walk(in)

	parts := make([]string, 0, len(set))
	for k := range set {
		parts = append(parts, k)
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
