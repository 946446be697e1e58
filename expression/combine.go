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

// CombineLicenseExpressions joins already normalized expressions with AND.
// Blank entries are ignored. A single expression is returned as is, without
// being parsed. Otherwise every expression is parsed in simple mode, which
// expects keys only, and the result is optionally simplified before it is
// rendered. A nil licensing means that every symbol stays unresolved.
func CombineLicenseExpressions(expressions []string, simplify bool, licensing *Licensing) (string, error) {
	nonBlank := []string{}
	for _, x := range expressions {
		if strings.TrimSpace(x) == "" {
			continue
		}
		nonBlank = append(nonBlank, x)
	}
	switch len(nonBlank) {
	case 0:
		return "", nil
	case 1:
		return nonBlank[0], nil
	}

	trees := []Expression{}
	for _, x := range nonBlank {
		tree, err := Parse(x, licensing, ParseOptions{Simple: true})
		if err != nil {
			return "", err
		}
		trees = append(trees, tree)
	}

	combined := AND(trees...)
	if simplify {
		combined = Simplify(combined)
	}
	return Render(combined, DefaultTemplate)
}
