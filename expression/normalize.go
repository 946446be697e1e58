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
)

// ParseOptions control which checks Parse runs.
type ParseOptions struct {
	// ValidateKnown makes every unresolved symbol an error.
	ValidateKnown bool

	// ValidateStrict enforces the WITH rules. See ValidateStrict.
	ValidateStrict bool

	// Simple disables multi-word alias matching. Use it when the input is
	// known to contain keys only.
	Simple bool
}

// Parse tokenizes and parses the expression, and then runs the validations that
// were requested. A blank expression returns a nil tree and no error. The
// errors are of type *ParseError or *ExpressionError.
func Parse(expression string, licensing *Licensing, opts ParseOptions) (Expression, error) {
	tokens, err := Tokenize(expression, licensing, opts.Simple)
	if err != nil {
		return nil, err
	}
	tree, err := parseTokens(tokens)
	if err != nil {
		return nil, err
	}
	if opts.ValidateKnown {
		if err := ValidateKnown(tree); err != nil {
			return nil, err
		}
	}
	if opts.ValidateStrict {
		if err := ValidateStrict(tree); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

// NormalizeOptions are the options of NormalizeAndValidate.
type NormalizeOptions struct {
	ParseOptions

	// IncludeAvailable adds the list of known keys to the returned error.
	IncludeAvailable bool

	// Template is passed to Render. It defaults to DefaultTemplate.
	Template string
}

// DefaultNormalizeOptions checks that every symbol is known, and nothing else.
func DefaultNormalizeOptions() *NormalizeOptions {
	return &NormalizeOptions{
		ParseOptions: ParseOptions{
			ValidateKnown: true,
		},
	}
}

// NormalizeAndValidate returns the canonical string of the expression, or a
// *ValidationError explaining why it could not be parsed or validated. Errors
// building the symbol table are returned as is.
func NormalizeAndValidate(expression string, src Source, opts *NormalizeOptions) (string, error) {
	if opts == nil {
		opts = DefaultNormalizeOptions()
	}
	licensing, err := Build(src)
	if err != nil {
		return "", err
	}

	tree, err := Parse(expression, licensing, opts.ParseOptions)
	if err != nil {
		e := &ValidationError{Err: err}
		if opts.IncludeAvailable {
			e.Available = licensing.Keys()
		}
		return "", e
	}
	return Render(tree, opts.Template)
}

// ExpressionAsSPDX renders the expression with SPDX identifiers. Symbols which
// are not known are written as is.
func ExpressionAsSPDX(expression string, licensing *Licensing) (string, error) {
	tree, err := Parse(expression, licensing, ParseOptions{})
	if err != nil {
		return "", err
	}
	return Render(tree, SPDXTemplate)
}

// ValidateOnRelations checks that the child expression only uses licenses that
// appear in the parent expression. The returned *ValidationError lists the
// licenses of the parent as the available ones. A blank parent places no
// restriction on the child.
func ValidateOnRelations(child, parent string, licensing *Licensing) error {
	if strings.TrimSpace(parent) == "" {
		return nil
	}
	if licensing == nil {
		licensing = emptyLicensing
	}
	parentTree, err := Parse(parent, licensing, ParseOptions{})
	if err != nil {
		return err
	}

	keys := []string{}
	for _, x := range LicenseSymbols(parentTree) {
		keys = append(keys, x.Key)
	}
	subset, err := licensing.Subset(keys)
	if err != nil {
		return err
	}

	if _, err := Parse(child, subset, ParseOptions{ValidateKnown: true}); err != nil {
		return &ValidationError{
			Err:       err,
			Available: subset.Keys(),
		}
	}
	return nil
}
