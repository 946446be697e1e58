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

package lib

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/awslabs/licexp/util"
	"github.com/awslabs/licexp/util/errwrap"

	colour "github.com/fatih/color"
	homedir "github.com/mitchellh/go-homedir"
)

const (
	// UseColour specifies whether we use ANSI/HTML colours or not.
	UseColour = true

	// DefaultProfileName is the name given to the built-in "include all"
	// profile.
	DefaultProfileName = "default"
)

// ProfileConfig is the datastructure representing the profile config that is
// used for the .json files on disk.
type ProfileConfig struct {

	// Licenses is the list of license keys to match.
	Licenses []string `json:"licenses"`

	// Exclude these licenses from match instead of including by default.
	Exclude bool `json:"exclude"`

	// Comment adds a user friendly comment for this file.
	Comment string `json:"comment"`
}

// ProfileData is the parsed version of ProfileConfig.
type ProfileData struct {

	// Licenses is the list of license keys to match.
	Licenses []string

	// Exclude these licenses from match instead of including by default.
	Exclude bool
}

// Match returns true if the key is one that this profile is interested in. A
// nil profile matches everything.
func (obj *ProfileData) Match(key string) bool {
	if obj == nil {
		return true
	}
	return util.StrInList(key, obj.Licenses) != obj.Exclude
}

// LoadProfile reads a profile by name from ~/.config/<program>/profiles/ or, if
// it's not found there, from the name as a path.
func LoadProfile(program, name string) (*ProfileData, error) {
	var err error
	data := []byte{}
	home, homeErr := homedir.Dir()
	if homeErr == nil {
		p := fmt.Sprintf("%s.json", name)
		profilePath := filepath.Join(home, ".config/", program+"/profiles/", p)
		data, err = os.ReadFile(filepath.Clean(profilePath))
	}
	if homeErr != nil || os.IsNotExist(err) {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return nil, err
	}

	buffer := bytes.NewBuffer(data)
	if buffer.Len() == 0 {
		return nil, fmt.Errorf("empty input file")
	}
	decoder := json.NewDecoder(buffer)

	var profileConfig ProfileConfig // this gets populated during decode
	if err := decoder.Decode(&profileConfig); err != nil {
		return nil, errwrap.Wrapf(err, "error decoding json")
	}

	return &ProfileData{
		Licenses: util.StrRemoveDuplicatesInList(profileConfig.Licenses),
		Exclude:  profileConfig.Exclude,
	}, nil
}

// SimpleProfiles formats the results that are of interest to the profile. The
// style is one of ansi, text or html. Failed expressions are always shown.
func SimpleProfiles(results []*Result, profile *ProfileData, summary bool, style string) (string, error) {
	if len(results) == 0 {
		return "", fmt.Errorf("no results obtained")
	}
	escape := func(s string) string {
		if style == "html" {
			return html.EscapeString(s)
		}
		return s
	}
	redString := colour.New(colour.FgRed).Add(colour.Bold).SprintFunc()
	red := func(s string) string {
		if !UseColour {
			return s
		}
		switch style {
		case "ansi":
			return redString(s)
		case "html":
			return `<span style="color: red;">` + s + "</span>"
		}
		return s
	}

	str := ""
	hasResults := false
	licenseMap := make(map[string]int64) // for computing a summary
	for _, result := range results {
		if result.Error != "" {
			if style == "html" {
				str += fmt.Sprintf("<tr><td>%s<ul><li>%s</li></ul></td></tr>", escape(result.Input), red(escape(result.Error)))
			} else {
				str += fmt.Sprintf("%s\n    %s\n", result.Input, red("error: "+result.Error))
			}
			hasResults = true
			continue
		}

		matched := false
		ll := []string{}
		for _, key := range result.Keys {
			r := escape(key)
			m := profile.Match(key)
			if m && profile != nil {
				r = red(r) // only colour the matched ones!
			}
			matched = matched || m
			ll = append(ll, r)
		}
		if !matched && profile != nil {
			continue
		}
		for _, key := range result.Keys {
			licenseMap[key]++
		}
		l := strings.Join(ll, ", ")

		if style == "html" {
			str += fmt.Sprintf("<tr><td>%s<ul><li>%s</li><li>%s</li></ul></td></tr>", escape(result.Input), escape(result.Normalized), l)
		} else {
			str += fmt.Sprintf("%s\n    %s  (%s)\n", result.Input, result.Normalized, l)
		}
		hasResults = true
	}
	if !hasResults {
		if style == "html" {
			return "<tr><td>no results</td></tr>", nil
		}
		return "<no results>\n", nil
	}

	if !summary || len(licenseMap) == 0 {
		return str, nil
	}

	names := []string{}
	for k := range licenseMap { // map[string]int64
		names = append(names, k)
	}
	sort.Strings(names)

	if style == "html" {
		s := `<tr><td><table id="summary">`
		s += `<tr><th colspan="2">summary:</th></tr>`
		for _, x := range names {
			s += fmt.Sprintf("<tr><td>%s</td><td>%d</td></tr>", escape(x), licenseMap[x])
		}
		s += "</table></td></tr>"
		return s + str, nil
	}

	s := "summary:\n"
	for _, x := range names {
		s += fmt.Sprintf("%s: %d\n", x, licenseMap[x])
	}
	return s + str, nil
}
