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

// Package licenses provides the structures used to describe the license
// records that make up a license vocabulary. A vocabulary is the list of every
// license (and license exception) that a tenant knows about. Each record has a
// unique key, a few human-readable names, and some optional SPDX information.
// Vocabularies are usually stored as a JSON or YAML document.
package licenses

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/awslabs/licexp/util/errwrap"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

const (
	// FormatJSON is the name of the JSON vocabulary document format.
	FormatJSON = "json"

	// FormatYAML is the name of the YAML vocabulary document format.
	FormatYAML = "yaml"
)

var (
	once     sync.Once
	validate *validator.Validate // this gets populated on first use
)

func initValidator() {
	validate = validator.New()
	// a license key must be usable as a single word in an expression
	if err := validate.RegisterValidation("licensekey", isLicenseKey); err != nil {
		panic(fmt.Sprintf("error registering license key validator: %+v", err))
	}
}

// isLicenseKey is the "licensekey" validation tag. It rejects anything which
// could not be tokenized back into the same key.
func isLicenseKey(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return false
	}
	for _, r := range s {
		if unicode.IsSpace(r) || r == '(' || r == ')' {
			return false
		}
	}
	return true
}

// LicenseList is modelled after the vocabulary documents that are stored on
// disk, in git or in s3.
type LicenseList struct {
	// Version is a free-form version string for the vocabulary.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// Licenses is the list of license records. The order is not important.
	Licenses []*License `json:"licenses" yaml:"licenses" validate:"dive,required"`
}

// Validate returns an error if any of the records in the list are invalid.
func (obj *LicenseList) Validate() error {
	once.Do(initValidator)
	if err := validate.Struct(obj); err != nil {
		return errwrap.Wrapf(err, "invalid license list")
	}
	return nil
}

// License is a representation of a single license record. It's better than a
// simple key as a string, because it allows us to store the alternative names
// a license is known by, and whether it's an exception.
type License struct {
	// Key is the canonical, unique identifier for the license. It is case
	// sensitive and must not contain whitespace or parenthesis.
	Key string `json:"key" yaml:"key" validate:"required,licensekey"`

	// Name is a friendly name for the license. It's used as an alias.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// ShortName is a shorter friendly name. It's also used as an alias.
	ShortName string `json:"short_name,omitempty" yaml:"short_name,omitempty"`

	// SPDX is the well-known SPDX ID for the license if there is one.
	SPDX string `json:"spdx_license_key,omitempty" yaml:"spdx_license_key,omitempty" validate:"omitempty,licensekey"`

	// Aliases are any additional names which should resolve to this key.
	Aliases []string `json:"aliases,omitempty" yaml:"aliases,omitempty" validate:"dive,required"`

	// IsException is true if this record is a license exception, which can
	// only appear on the right side of a WITH.
	IsException bool `json:"is_exception,omitempty" yaml:"is_exception,omitempty"`
}

// String returns the key, since that's what identifies the license.
func (obj *License) String() string {
	return obj.Key
}

// Validate returns an error if the license doesn't have a valid representation.
func (obj *License) Validate() error {
	once.Do(initValidator)
	if err := validate.Struct(obj); err != nil {
		return errwrap.Wrapf(err, "invalid license: %s", obj.Key)
	}
	return nil
}

// Cmp compares two licenses and determines if they are identical. Only the key
// is used, since that is the identity of a license.
func (obj *License) Cmp(license *License) error {
	if obj.Key != license.Key {
		return fmt.Errorf("the Key field differs")
	}
	return nil
}

// AliasList returns every alternate name for this license. This is the name,
// the short name, and the aliases, without empty strings, without any names
// that are the key itself, and without case-insensitive duplicates.
func (obj *License) AliasList() []string {
	seen := map[string]struct{}{
		strings.ToLower(obj.Key): {},
	}
	aliases := []string{}
	candidates := append([]string{obj.Name, obj.ShortName}, obj.Aliases...)
	for _, x := range candidates {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		lower := strings.ToLower(x)
		if _, exists := seen[lower]; exists {
			continue
		}
		seen[lower] = struct{}{}
		aliases = append(aliases, x)
	}
	return aliases
}

// FormatFromFilename returns the document format to use for the filename. It
// defaults to json when the extension is not recognized.
func FormatFromFilename(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Decode parses a vocabulary document in the given format and validates it.
func Decode(data []byte, format string) (*LicenseList, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty input file")
	}

	var list LicenseList // this gets populated during decode
	switch format {
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewBuffer(data))
		if err := decoder.Decode(&list); err != nil {
			return nil, errwrap.Wrapf(err, "error decoding license list json")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &list); err != nil {
			return nil, errwrap.Wrapf(err, "error decoding license list yaml")
		}
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}

	if err := list.Validate(); err != nil {
		return nil, err
	}
	return &list, nil
}

// Encode is the opposite of Decode.
func Encode(list *LicenseList, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(list, "", "\t")
	case FormatYAML:
		return yaml.Marshal(list)
	}
	return nil, fmt.Errorf("unknown format: %s", format)
}

// Join joins the keys of a list of licenses with comma space.
func Join(licenses []*License) string {
	xs := []string{}
	for _, license := range licenses {
		xs = append(xs, license.String())
	}
	return strings.Join(xs, ", ")
}

// InList returns true if a license exists inside a list, otherwise false. It
// uses the license Cmp method to determine equality.
func InList(needle *License, haystack []*License) bool {
	for _, x := range haystack {
		if needle.Cmp(x) == nil {
			return true
		}
	}
	return false
}

// Filter returns the licenses whose key is in the list of keys. The order of
// the input licenses is preserved. If keys is empty, nothing is returned.
func Filter(licenses []*License, keys []string) []*License {
	m := make(map[string]struct{})
	for _, k := range keys {
		m[k] = struct{}{}
	}
	result := []*License{}
	for _, x := range licenses {
		if _, exists := m[x.Key]; exists {
			result = append(result, x)
		}
	}
	return result
}
