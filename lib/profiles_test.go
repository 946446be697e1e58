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

package lib_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/awslabs/licexp/lib"

	"github.com/google/go-cmp/cmp"
)

func testResults() []*lib.Result {
	return []*lib.Result{
		{
			Input:      "mit or apache 2",
			Normalized: "mit OR apache-2.0",
			Keys:       []string{"mit", "apache-2.0"},
		},
		{
			Input: "nope",
			Error: "Unknown license key(s): nope",
		},
	}
}

func TestSimpleProfiles(t *testing.T) {
	tests := []struct {
		name    string
		profile *lib.ProfileData
		summary bool
		style   string
		exp     string
	}{
		{
			name:    "default",
			profile: nil,
			summary: true,
			style:   "text",
			exp: "summary:\napache-2.0: 1\nmit: 1\n" +
				"mit or apache 2\n    mit OR apache-2.0  (mit, apache-2.0)\n" +
				"nope\n    error: Unknown license key(s): nope\n",
		},
		{
			name:    "no match",
			profile: &lib.ProfileData{Licenses: []string{"gps-2.0"}},
			summary: true,
			style:   "text",
			exp:     "nope\n    error: Unknown license key(s): nope\n",
		},
		{
			name:    "exclude",
			profile: &lib.ProfileData{Licenses: []string{"mit"}, Exclude: true},
			summary: false,
			style:   "text",
			exp: "mit or apache 2\n    mit OR apache-2.0  (mit, apache-2.0)\n" +
				"nope\n    error: Unknown license key(s): nope\n",
		},
		{
			name:    "html",
			profile: &lib.ProfileData{Licenses: []string{"mit"}},
			summary: false,
			style:   "html",
			exp: `<tr><td>mit or apache 2<ul><li>mit OR apache-2.0</li><li><span style="color: red;">mit</span>, apache-2.0</li></ul></td></tr>` +
				`<tr><td>nope<ul><li><span style="color: red;">Unknown license key(s): nope</span></li></ul></td></tr>`,
		},
	}
	for _, test := range tests {
		s, err := lib.SimpleProfiles(testResults(), test.profile, test.summary, test.style)
		if err != nil {
			t.Errorf("%s: err: %+v", test.name, err)
			continue
		}
		if s != test.exp {
			t.Errorf("%s: exp: %s", test.name, test.exp)
			t.Errorf("%s: got: %s", test.name, s)
		}
	}

	if _, err := lib.SimpleProfiles(nil, nil, false, "text"); err == nil {
		t.Errorf("expected an error without results")
	}
}

func TestProfileMatch(t *testing.T) {
	var profile *lib.ProfileData
	if !profile.Match("anything") {
		t.Errorf("a nil profile should match everything")
	}
	profile = &lib.ProfileData{Licenses: []string{"mit"}}
	if !profile.Match("mit") || profile.Match("apache-2.0") {
		t.Errorf("unexpected include match")
	}
	profile.Exclude = true
	if profile.Match("mit") || !profile.Match("apache-2.0") {
		t.Errorf("unexpected exclude match")
	}
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "copyleft.json")
	data := `{"licenses": ["gps-2.0", "gps-2.0", "lgps-2.1"], "comment": "strong and weak"}`
	if err := os.WriteFile(good, []byte(data), 0600); err != nil {
		t.Fatalf("write: %+v", err)
	}
	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, []byte{}, 0600); err != nil {
		t.Fatalf("write: %+v", err)
	}

	profile, err := lib.LoadProfile("licexp", good)
	if err != nil {
		t.Errorf("err: %+v", err)
		return
	}
	exp := &lib.ProfileData{Licenses: []string{"gps-2.0", "lgps-2.1"}}
	if diff := cmp.Diff(exp, profile); diff != "" {
		t.Errorf("unexpected profile (-want +got):\n%s", diff)
	}

	for _, name := range []string{empty, filepath.Join(dir, "missing.json")} {
		if _, err := lib.LoadProfile("licexp", name); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
