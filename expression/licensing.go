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

// Package expression parses, validates and renders license expressions such as
// "mit OR (gps-2.0-plus WITH classpath-2.0)". A vocabulary of license records
// is compiled into a Licensing symbol table, which resolves keys and multi-word
// aliases while an expression is tokenized. The resulting tree can be checked,
// simplified, compared and rendered back into a canonical string.
package expression

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/awslabs/licexp/util/licenses"
)

// SPDXRefPrefix is prepended to the key of a license that has no SPDX ID, so
// that it can still appear in an SPDX document.
const SPDXRefPrefix = "LicenseRef-"

// LicenseSymbol is one known license or license exception.
type LicenseSymbol struct {
	// Key is the canonical identifier. Two symbols are the same if their
	// keys are equal.
	Key string

	// Aliases are other names for this license. They are matched without
	// regard to case, and may contain spaces.
	Aliases []string

	// IsException is true if this symbol may only appear on the right side
	// of a WITH.
	IsException bool

	// SpdxID is the SPDX license identifier, if there is one.
	SpdxID string

	// Name is a human readable name, used by the {symbol.name} template.
	Name string
}

// SPDX returns the identifier to use when exporting to SPDX.
func (obj *LicenseSymbol) SPDX() string {
	if obj.SpdxID != "" {
		return obj.SpdxID
	}
	return SPDXRefPrefix + obj.Key
}

// Source is anything that a Licensing can be built from. It's either an
// already built *Licensing, which is passed through, or a list of Records.
type Source interface {
	licensing() (*Licensing, error)
}

// Records is a list of license symbols that a Licensing can be built from.
type Records []*LicenseSymbol

func (obj Records) licensing() (*Licensing, error) {
	return newLicensing(obj)
}

// FromLicenses converts store records into symbols. The name and short name of
// each license are used as aliases along with the explicit aliases.
func FromLicenses(list []*licenses.License) Records {
	records := Records{}
	for _, x := range list {
		records = append(records, &LicenseSymbol{
			Key:         x.Key,
			Aliases:     x.AliasList(),
			IsException: x.IsException,
			SpdxID:      x.SPDX,
			Name:        x.Name,
		})
	}
	return records
}

// Conflict records a token which two different symbols wanted to register. The
// Kept symbol owns the token and the Dropped one does not.
type Conflict struct {
	Token   string
	Kept    string
	Dropped string
}

// Licensing is the compiled symbol table. It maps every key and alias to its
// symbol, without regard to case. It is never modified once built, so it can be
// shared between goroutines.
type Licensing struct {
	// symbols are sorted by key
	symbols []*LicenseSymbol

	// tokens maps lower case keys and whitespace normalized, lower case
	// aliases to their symbol
	tokens map[string]*LicenseSymbol

	// maxWords is the largest number of words found in any alias
	maxWords int

	conflicts []Conflict
}

func (obj *Licensing) licensing() (*Licensing, error) {
	return obj, nil
}

var emptyLicensing = &Licensing{
	tokens:   make(map[string]*LicenseSymbol),
	maxWords: 1,
}

// Build returns the symbol table for the source. A *Licensing is returned as
// is. A list of records is registered in key order: every key is registered
// first, and then every alias. A later registration of an existing token is
// dropped and reported by the Conflicts method. This makes the result
// independent of the order in which the records were supplied.
func Build(src Source) (*Licensing, error) {
	if src == nil {
		return nil, fmt.Errorf("nil license source")
	}
	return src.licensing()
}

func newLicensing(records []*LicenseSymbol) (*Licensing, error) {
	sorted := make([]*LicenseSymbol, 0, len(records))
	for i, x := range records {
		if x == nil {
			return nil, fmt.Errorf("nil license symbol at index %d", i)
		}
		if !isValidKey(x.Key) {
			return nil, fmt.Errorf("invalid license key: %q", x.Key)
		}
		sorted = append(sorted, x)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Key < sorted[j].Key
	})

	obj := &Licensing{
		tokens:   make(map[string]*LicenseSymbol),
		maxWords: 1,
	}

	for _, x := range sorted {
		if n := len(obj.symbols); n > 0 && obj.symbols[n-1].Key == x.Key {
			continue // duplicate key, the first one wins
		}
		obj.symbols = append(obj.symbols, x)
		obj.register(x.Key, x)
	}

	for _, x := range obj.symbols {
		for _, alias := range x.Aliases {
			obj.register(alias, x)
		}
	}

	return obj, nil
}

// register adds a token for the symbol unless it is already taken.
func (obj *Licensing) register(token string, symbol *LicenseSymbol) {
	words := strings.Fields(token)
	if len(words) == 0 {
		return
	}
	phrase := strings.ToLower(strings.Join(words, " "))
	if prev, exists := obj.tokens[phrase]; exists {
		if prev != symbol {
			obj.conflicts = append(obj.conflicts, Conflict{
				Token:   token,
				Kept:    prev.Key,
				Dropped: symbol.Key,
			})
		}
		return
	}
	obj.tokens[phrase] = symbol
	if len(words) > obj.maxWords {
		obj.maxWords = len(words)
	}
}

// Lookup returns the symbol for a key or alias, or nil if it is unknown.
func (obj *Licensing) Lookup(token string) *LicenseSymbol {
	phrase := strings.ToLower(strings.Join(strings.Fields(token), " "))
	return obj.tokens[phrase]
}

// Symbols returns every symbol sorted by key.
func (obj *Licensing) Symbols() []*LicenseSymbol {
	return append([]*LicenseSymbol{}, obj.symbols...)
}

// Keys returns the sorted list of every known key. This is what is shown as
// the list of available licenses.
func (obj *Licensing) Keys() []string {
	keys := []string{}
	for _, x := range obj.symbols {
		keys = append(keys, x.Key)
	}
	return keys
}

// Len returns the number of symbols.
func (obj *Licensing) Len() int {
	return len(obj.symbols)
}

// Conflicts returns the tokens that were dropped while building.
func (obj *Licensing) Conflicts() []Conflict {
	return append([]Conflict{}, obj.conflicts...)
}

// Subset returns a new Licensing with only the symbols whose key is listed.
func (obj *Licensing) Subset(keys []string) (*Licensing, error) {
	m := make(map[string]struct{})
	for _, k := range keys {
		m[k] = struct{}{}
	}
	records := Records{}
	for _, x := range obj.symbols {
		if _, exists := m[x.Key]; exists {
			records = append(records, x)
		}
	}
	return newLicensing(records)
}

// isValidKey rejects keys that the lexer could never return as a symbol.
func isValidKey(key string) bool {
	if key == "" {
		return false
	}
	if _, exists := operators[strings.ToLower(key)]; exists {
		return false
	}
	for _, r := range key {
		if unicode.IsSpace(r) || r == '(' || r == ')' {
			return false
		}
	}
	return true
}
