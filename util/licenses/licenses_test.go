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

package licenses_test

import (
	"testing"

	"github.com/awslabs/licexp/util/licenses"

	"github.com/google/go-cmp/cmp"
)

func TestValidate(t *testing.T) {
	license := licenses.License{
		Key:  "gps-2.0-plus",
		Name: "GPL 2.0 or later",
	}
	if err := license.Validate(); err != nil {
		t.Errorf("err: %+v", err)
		return
	}
}

func TestValidateBadKey(t *testing.T) {
	tests := []string{
		"",
		"gpl 2.0",
		"(mit)",
		"mit\t",
	}
	for _, key := range tests {
		license := licenses.License{Key: key}
		if err := license.Validate(); err == nil {
			t.Errorf("expected an error for key: %q", key)
		}
	}
}

func TestAliasList(t *testing.T) {
	license := &licenses.License{
		Key:       "mit",
		Name:      "MIT License",
		ShortName: "MIT",
		Aliases:   []string{"mit license", "Expat", " "},
	}
	exp := []string{"MIT License", "Expat"}
	if diff := cmp.Diff(exp, license.AliasList()); diff != "" {
		t.Errorf("unexpected aliases (-want +got):\n%s", diff)
	}
}

func TestDecodeJSON(t *testing.T) {
	data := []byte(`{
	"version": "1",
	"licenses": [
		{"key": "mit", "name": "MIT License"},
		{"key": "classpath-2.0", "name": "Classpath Exception 2.0", "is_exception": true}
	]
}`)
	list, err := licenses.Decode(data, licenses.FormatJSON)
	if err != nil {
		t.Errorf("err: %+v", err)
		return
	}
	if len(list.Licenses) != 2 {
		t.Errorf("exp: 2 licenses")
		t.Errorf("got: %d licenses", len(list.Licenses))
		return
	}
	if !list.Licenses[1].IsException {
		t.Errorf("expected an exception")
	}
}

func TestDecodeYAML(t *testing.T) {
	data := []byte(`
version: "2"
licenses:
  - key: gps-2.0
    aliases:
      - GPL 2.0
  - key: lgps-2.1-plus
    short_name: LGPL 2.1 or later
`)
	list, err := licenses.Decode(data, licenses.FormatYAML)
	if err != nil {
		t.Errorf("err: %+v", err)
		return
	}
	exp := &licenses.LicenseList{
		Version: "2",
		Licenses: []*licenses.License{
			{Key: "gps-2.0", Aliases: []string{"GPL 2.0"}},
			{Key: "lgps-2.1-plus", ShortName: "LGPL 2.1 or later"},
		},
	}
	if diff := cmp.Diff(exp, list); diff != "" {
		t.Errorf("unexpected list (-want +got):\n%s", diff)
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := licenses.Decode([]byte("  "), licenses.FormatJSON); err == nil {
		t.Errorf("expected an error on empty input")
	}
	data := []byte(`{"licenses": [{"key": "has space"}]}`)
	if _, err := licenses.Decode(data, licenses.FormatJSON); err == nil {
		t.Errorf("expected a validation error")
	}
}

func TestFormatFromFilename(t *testing.T) {
	tests := map[string]string{
		"licenses.json": licenses.FormatJSON,
		"licenses.YAML": licenses.FormatYAML,
		"licenses.yml":  licenses.FormatYAML,
		"licenses":      licenses.FormatJSON,
	}
	for name, exp := range tests {
		if got := licenses.FormatFromFilename(name); got != exp {
			t.Errorf("%s: exp: %s, got: %s", name, exp, got)
		}
	}
}

func TestFilter(t *testing.T) {
	list := []*licenses.License{{Key: "a"}, {Key: "b"}, {Key: "c"}}
	got := licenses.Filter(list, []string{"c", "a", "z"})
	if s := licenses.Join(got); s != "a, c" {
		t.Errorf("exp: %s", "a, c")
		t.Errorf("got: %s", s)
	}
	if !licenses.InList(&licenses.License{Key: "b"}, list) {
		t.Errorf("expected b to be in the list")
	}
}
