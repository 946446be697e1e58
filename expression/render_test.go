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
	"testing"

	"github.com/awslabs/licexp/expression"
)

func TestRender(t *testing.T) {
	licensing := testLicensing(t)
	tests := []struct {
		input string
		exp   string
	}{
		{"mit", "mit"},
		{"MIT License", "mit"},
		{"mit and apache 2", "mit AND apache-2.0"},
		{"mit OR (apache-2.0 and gps-2.0)", "mit OR (apache-2.0 AND gps-2.0)"},
		{"mit and (apache-2.0 or gps-2.0)", "mit AND (apache-2.0 OR gps-2.0)"},
		{"(mit and apache-2.0) and gps-2.0", "(mit AND apache-2.0) AND gps-2.0"},
		{"((mit or apache-2.0))", "mit OR apache-2.0"},
		{"(mit or apache-2.0) with classpath-2.0", "(mit OR apache-2.0) WITH classpath-2.0"},
		{"gps-2.0 with classpath-2.0 and mit", "gps-2.0 WITH classpath-2.0 AND mit"},
		{"(gps-2.0 with classpath-2.0) or mit", "gps-2.0 WITH classpath-2.0 OR mit"},
		{"Foo aNd bar", "Foo AND bar"},
		{"withorand with orribleand", "withorand WITH orribleand"},
		{
			"GPL 2.0 or later with Classpath Exception 2.0 or GPL 2.0 or later and LGPL 2.1 or later",
			"gps-2.0-plus WITH classpath-2.0 OR (gps-2.0-plus AND lgps-2.1-plus)",
		},
	}
	for _, test := range tests {
		tree := mustParse(t, test.input, licensing)
		s, err := expression.Render(tree, expression.DefaultTemplate)
		if err != nil {
			t.Errorf("render %q: %+v", test.input, err)
			continue
		}
		if s != test.exp {
			t.Errorf("render %q", test.input)
			t.Errorf("exp: %s", test.exp)
			t.Errorf("got: %s", s)
			continue
		}
		if s != tree.String() {
			t.Errorf("String() differs from Render: %s", tree.String())
		}

		// normalizing something normalized changes nothing
		again, err := expression.Render(mustParse(t, s, licensing), expression.DefaultTemplate)
		if err != nil {
			t.Errorf("render %q: %+v", s, err)
			continue
		}
		if again != s {
			t.Errorf("not idempotent: %q became %q", s, again)
		}
	}
}

func TestRenderTemplates(t *testing.T) {
	licensing := testLicensing(t)
	tree := mustParse(t, "mit or gps-2.0-plus with classpath-2.0 or foo", licensing)
	tests := []struct {
		template string
		exp      string
	}{
		{"", "mit OR gps-2.0-plus WITH classpath-2.0 OR foo"},
		{expression.SPDXTemplate, "MIT OR LicenseRef-gps-2.0-plus WITH Classpath-exception-2.0 OR foo"},
		{"{symbol.name}", "MIT License OR gps-2.0-plus WITH classpath-2.0 OR foo"},
		{"<{symbol.key}>", "<mit> OR <gps-2.0-plus> WITH <classpath-2.0> OR foo"},
	}
	for _, test := range tests {
		s, err := expression.Render(tree, test.template)
		if err != nil {
			t.Errorf("template %q: %+v", test.template, err)
			continue
		}
		if s != test.exp {
			t.Errorf("template %q", test.template)
			t.Errorf("exp: %s", test.exp)
			t.Errorf("got: %s", s)
		}
	}
}

func TestRenderBadTemplate(t *testing.T) {
	licensing := testLicensing(t)
	tree := mustParse(t, "mit", licensing)
	for _, template := range []string{"{symbol.nope}", "{symbol.key"} {
		if _, err := expression.Render(tree, template); err == nil {
			t.Errorf("expected an error for template: %s", template)
		}
	}
}

func TestRenderNil(t *testing.T) {
	s, err := expression.Render(nil, expression.DefaultTemplate)
	if err != nil || s != "" {
		t.Errorf("got: %q, %v", s, err)
	}
}
