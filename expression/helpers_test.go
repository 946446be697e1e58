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

// records is the vocabulary used by most of the tests in this package.
func records() expression.Records {
	return expression.Records{
		{Key: "gps-2.0", Aliases: []string{"GPL 2.0"}, SpdxID: "GPL-2.0-only"},
		{Key: "classpath-2.0", Aliases: []string{"Classpath Exception 2.0"}, IsException: true, SpdxID: "Classpath-exception-2.0"},
		{Key: "gps-2.0-plus", Aliases: []string{"GPL 2.0 or later"}},
		{Key: "lgps-2.1-plus", Aliases: []string{"LGPL 2.1 or later"}},
		{Key: "mit", Aliases: []string{"MIT License"}, SpdxID: "MIT", Name: "MIT License"},
		{Key: "apache-2.0", Aliases: []string{"Apache License 2.0", "Apache 2"}, SpdxID: "Apache-2.0"},
	}
}

func testLicensing(t *testing.T) *expression.Licensing {
	t.Helper()
	licensing, err := expression.Build(records())
	if err != nil {
		t.Fatalf("build: %+v", err)
	}
	return licensing
}

func mustParse(t *testing.T, s string, licensing *expression.Licensing) expression.Expression {
	t.Helper()
	tree, err := expression.Parse(s, licensing, expression.ParseOptions{})
	if err != nil {
		t.Fatalf("parse %q: %+v", s, err)
	}
	return tree
}
