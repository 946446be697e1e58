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

// maxTruthTableAtoms is the largest number of distinct atoms for which every
// truth assignment is tried.
const maxTruthTableAtoms = 16

// IsEquivalent returns true if both trees denote the same boolean function. The
// atoms are the license keys (or raw texts) and every WITH as a whole, so
// "a WITH e" is never equivalent to "a". Two empty trees are equivalent.
func IsEquivalent(a, b Expression) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	index := make(map[string]int)
	collectAtoms(a, index)
	collectAtoms(b, index)

	if len(index) > maxTruthTableAtoms {
		return canonical(Simplify(a)) == canonical(Simplify(b))
	}

	n := uint(len(index))
	for bits := uint64(0); bits < uint64(1)<<n; bits++ {
		if evaluate(a, index, bits) != evaluate(b, index, bits) {
			return false
		}
	}
	return true
}

func collectAtoms(expr Expression, index map[string]int) {
	switch x := expr.(type) {
	case *And:
		for _, arg := range x.Args {
			collectAtoms(arg, index)
		}
	case *Or:
		for _, arg := range x.Args {
			collectAtoms(arg, index)
		}
	default: // symbols and WITH pairs
		k := canonical(x)
		if _, exists := index[k]; !exists {
			index[k] = len(index)
		}
	}
}

func evaluate(expr Expression, index map[string]int, bits uint64) bool {
	switch x := expr.(type) {
	case *And:
		for _, arg := range x.Args {
			if !evaluate(arg, index, bits) {
				return false
			}
		}
		return true
	case *Or:
		for _, arg := range x.Args {
			if evaluate(arg, index, bits) {
				return true
			}
		}
		return false
	}
	return bits&(1<<uint(index[canonical(expr)])) != 0
}
