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

const (
	msgExceptionAsLicense = `A license exception symbol can only be used as an exception in a "WITH exception" statement.`
	msgLicenseAsException = `A plain license symbol cannot be used as an exception in a "WITH symbol" statement.`
	msgCompoundLicense    = `A license expression cannot be used as the license in a "WITH exception" statement.`
	msgCompoundException  = `A license expression cannot be used as the exception in a "WITH symbol" statement.`
)

// ValidateKnown returns an error listing every leaf that did not resolve to a
// known symbol. Each unknown text is listed once, in order of first appearance.
func ValidateKnown(expr Expression) error {
	seen := make(map[string]struct{})
	unknown := []string{}
	for _, leaf := range Symbols(expr) {
		if leaf.License != nil {
			continue
		}
		if _, exists := seen[leaf.Text]; exists {
			continue
		}
		seen[leaf.Text] = struct{}{}
		unknown = append(unknown, leaf.Text)
	}
	if len(unknown) == 0 {
		return nil
	}
	return newUnknownKeysError(unknown)
}

// ValidateStrict checks the WITH rules. The left side of a WITH must be a known
// license which is not an exception, and the right side must be a known
// exception. An exception may not appear anywhere else.
func ValidateStrict(expr Expression) error {
	return validateStrict(expr)
}

func validateStrict(expr Expression) error {
	switch x := expr.(type) {
	case nil:
		return nil

	case *Symbol:
		if x.License != nil && x.License.IsException {
			return symbolError(msgExceptionAsLicense, x.License.Key)
		}
		return nil

	case *And:
		for _, arg := range x.Args {
			if err := validateStrict(arg); err != nil {
				return err
			}
		}
		return nil

	case *Or:
		for _, arg := range x.Args {
			if err := validateStrict(arg); err != nil {
				return err
			}
		}
		return nil

	case *With:
		license, ok := x.License.(*Symbol)
		if !ok {
			return expressionError(msgCompoundLicense, x.License)
		}
		if license.License == nil {
			return newUnknownKeysError([]string{license.Text})
		}
		if license.License.IsException {
			return symbolError(msgExceptionAsLicense, license.License.Key)
		}

		exception, ok := x.Exception.(*Symbol)
		if !ok {
			return expressionError(msgCompoundException, x.Exception)
		}
		if exception.License == nil || !exception.License.IsException {
			return symbolError(msgLicenseAsException, exception.Text)
		}
		return nil
	}
	return fmt.Errorf("unexpected expression type %T", expr)
}

func symbolError(msg, symbol string) *ExpressionError {
	return &ExpressionError{
		Message: fmt.Sprintf(`%s for symbol: "%s"`, msg, symbol),
	}
}

func expressionError(msg string, expr Expression) *ExpressionError {
	return &ExpressionError{
		Message: fmt.Sprintf(`%s for expression: "%s"`, msg, expr),
	}
}
