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

// Package lib runs batches of license expressions through the engine and
// formats the results. It's shared by the command line and the web frontend.
package lib

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/awslabs/licexp/cache"
	"github.com/awslabs/licexp/expression"
	"github.com/awslabs/licexp/interfaces"
	"github.com/awslabs/licexp/util/errwrap"
)

// Main is the general entry point for running this software. Populate this
// struct with the inputs and then call the Run() method.
type Main struct {
	Program string
	Version string
	Debug   bool
	Logf    func(format string, v ...interface{})

	// This is the argv of the function. Each arg is an expression. A dash
	// reads one expression per line from stdin, and so does an empty list.
	Args []string

	// Stdin is read instead of os.Stdin if it is set.
	Stdin io.Reader

	// Cache is where the vocabulary is obtained from. If it's nil, a new one
	// is made around Store.
	Cache *cache.Cache

	// Store is used to make a cache if none was given.
	Store interfaces.Store

	// TTL is passed to the cache that is made from Store.
	TTL time.Duration

	// Tenant is the vocabulary to use.
	Tenant string

	// Keys restricts the vocabulary to these licenses if not empty.
	Keys []string

	// Options are passed to the engine. The default checks that every
	// license is known.
	Options *expression.NormalizeOptions

	// Combine joins every normalized expression with AND into one result.
	Combine bool

	// Simplify is used with Combine to remove duplicate and redundant
	// licenses.
	Simplify bool

	// Profiles is the list of profiles to use. Either the names from
	// ~/.config/licexp/profiles/<name>.json or full paths.
	Profiles []string
}

// Run is the main method for the Main struct. We use a struct as a way to pass
// in a ton of different arguments in a cleaner way. Expressions which fail are
// reported in their result and in the Errors field of the output. Only errors
// which prevent any result from being produced are returned.
func (obj *Main) Run(ctx context.Context) (*Output, error) {
	inputStrings, err := obj.inputs()
	if err != nil {
		return nil, err
	}

	licensing, err := obj.licensing(ctx)
	if err != nil {
		return nil, err
	}

	opts := obj.Options
	if opts == nil {
		opts = expression.DefaultNormalizeOptions()
	}

	var errs error
	results := []*Result{}
	for _, s := range inputStrings {
		if obj.Debug {
			obj.Logf("input: %s", s)
		}
		result := &Result{
			Input: s,
		}
		results = append(results, result)

		normalized, err := expression.NormalizeAndValidate(s, licensing, opts)
		if err != nil {
			result.Error = err.Error()
			errs = errwrap.Append(errs, errwrap.Wrapf(err, "invalid expression %q", s))
			continue
		}
		result.Normalized = normalized

		// the checks already passed, so only the symbols are needed here
		tree, err := expression.Parse(s, licensing, expression.ParseOptions{Simple: opts.Simple})
		if err != nil {
			return nil, errwrap.Wrapf(err, "could not parse %q again", s)
		}
		result.Keys = expression.UniqueKeys(tree)
	}

	if obj.Combine {
		combined, err := obj.combine(results, licensing, opts)
		if err != nil {
			return nil, err
		}
		results = []*Result{combined}
	}

	profilesData := make(map[string]*ProfileData)
	profilesData[DefaultProfileName] = nil // add a "default" profile
	profiles := []string{}
	for _, x := range obj.Profiles {
		data, err := LoadProfile(obj.Program, x)
		if err != nil {
			obj.Logf("profile %s: %+v", x, err)
			continue
		}
		profilesData[x] = data
		profiles = append(profiles, x)
	}
	if len(profiles) == 0 {
		profiles = append(profiles, DefaultProfileName)
	}

	return &Output{
		Program:      obj.Program,
		Version:      obj.Version,
		Tenant:       obj.Tenant,
		Args:         inputStrings,
		Results:      results,
		Errors:       errs,
		Profiles:     profiles,
		ProfilesData: profilesData,
	}, nil
}

// Equivalent returns true if the two expressions in Args denote the same
// licensing terms.
func (obj *Main) Equivalent(ctx context.Context) (bool, error) {
	if len(obj.Args) != 2 {
		return false, fmt.Errorf("expected two expressions, got %d", len(obj.Args))
	}
	licensing, err := obj.licensing(ctx)
	if err != nil {
		return false, err
	}
	opts := expression.ParseOptions{}
	if obj.Options != nil {
		opts = obj.Options.ParseOptions
	}

	trees := []expression.Expression{}
	for _, s := range obj.Args {
		tree, err := expression.Parse(s, licensing, opts)
		if err != nil {
			return false, errwrap.Wrapf(err, "invalid expression %q", s)
		}
		trees = append(trees, tree)
	}
	return expression.IsEquivalent(trees[0], trees[1]), nil
}

// combine merges the successful results. The combination fails if any of the
// inputs did.
func (obj *Main) combine(results []*Result, licensing *expression.Licensing, opts *expression.NormalizeOptions) (*Result, error) {
	inputs := []string{}
	keyed := []string{}
	for _, x := range results {
		if x.Error != "" {
			return &Result{
				Input: x.Input,
				Error: x.Error,
			}, nil
		}
		inputs = append(inputs, x.Input)
		// the normalized form might use another template, so go by keys
		if x.Normalized == "" {
			continue
		}
		tree, err := expression.Parse(x.Input, licensing, expression.ParseOptions{Simple: opts.Simple})
		if err != nil {
			return nil, err
		}
		s, err := expression.Render(tree, expression.DefaultTemplate)
		if err != nil {
			return nil, err
		}
		keyed = append(keyed, s)
	}

	combined, err := expression.CombineLicenseExpressions(keyed, obj.Simplify, licensing)
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not combine expressions")
	}
	tree, err := expression.Parse(combined, licensing, expression.ParseOptions{Simple: true})
	if err != nil {
		return nil, err
	}
	normalized, err := expression.Render(tree, opts.Template)
	if err != nil {
		return nil, err
	}
	return &Result{
		Input:      strings.Join(inputs, " AND "),
		Normalized: normalized,
		Keys:       expression.UniqueKeys(tree),
	}, nil
}

func (obj *Main) inputs() ([]string, error) {
	inputStrings := []string{}
	for _, s := range obj.Args {
		if s != "-" {
			inputStrings = append(inputStrings, s)
			continue
		}
		lines, err := obj.stdinAsLines()
		if err != nil {
			return nil, err
		}
		inputStrings = append(inputStrings, lines...)
	}
	if len(obj.Args) == 0 { // if we didn't get any args, assume stdin
		lines, err := obj.stdinAsLines()
		if err != nil {
			return nil, err
		}
		inputStrings = append(inputStrings, lines...)
	}
	if len(inputStrings) == 0 {
		return nil, fmt.Errorf("no expressions given")
	}
	return inputStrings, nil
}

func (obj *Main) licensing(ctx context.Context) (*expression.Licensing, error) {
	c := obj.Cache
	if c == nil {
		c = &cache.Cache{
			Debug: obj.Debug,
			Logf: func(format string, v ...interface{}) {
				obj.Logf("cache: "+format, v...)
			},
			Store: obj.Store,
			TTL:   obj.TTL,
		}
		if err := c.Init(); err != nil {
			return nil, errwrap.Wrapf(err, "could not initialize cache")
		}
		obj.Cache = c
	}
	licensing, err := c.GetOrBuild(ctx, obj.Tenant, obj.Keys)
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not get licenses")
	}
	return licensing, nil
}

// stdinAsLines returns the non blank lines of stdin.
func (obj *Main) stdinAsLines() ([]string, error) {
	reader := obj.Stdin
	if reader == nil {
		obj.Logf("waiting for stdin...")
		reader = os.Stdin
	}
	lines := []string{}
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		s := strings.TrimSpace(scanner.Text())
		if s == "" {
			continue
		}
		lines = append(lines, s)
	}
	if err := scanner.Err(); err != nil {
		return nil, errwrap.Wrapf(err, "error reading stdin")
	}
	return lines, nil
}

// Result is the outcome of one expression.
type Result struct {
	// Input is the expression as it was given.
	Input string `json:"input"`

	// Normalized is the rendered expression. It's empty if there was an
	// error, or if the input was blank.
	Normalized string `json:"normalized"`

	// Keys are the license keys in the expression in order of appearance.
	Keys []string `json:"keys,omitempty"`

	// Error is the reason the expression was rejected.
	Error string `json:"error,omitempty"`
}

// Output combines all of the returned data from Run() into a consistent form.
type Output struct {
	Program string
	Version string
	Tenant  string

	Args    []string
	Results []*Result

	// Errors contains every failed expression, or nil if there weren't any.
	Errors error

	Profiles     []string
	ProfilesData map[string]*ProfileData
}

// ReturnOutputConsole returns a string of output, formatted for the console.
func ReturnOutputConsole(output *Output) (string, error) {
	s := ""
	summary := len(output.Results) > 1
	for _, x := range output.Profiles {
		pro, err := SimpleProfiles(output.Results, output.ProfilesData[x], summary, "ansi")
		if err != nil {
			return "", err
		}

		s += fmt.Sprintf("profile %s:\n%s\n", x, pro)
	}

	return s, nil
}

// ReturnOutputFile returns a string of output, formatted for a text file.
func ReturnOutputFile(output *Output) (string, error) {
	s := ""
	summary := len(output.Results) > 1
	for _, x := range output.Profiles {
		pro, err := SimpleProfiles(output.Results, output.ProfilesData[x], summary, "text")
		if err != nil {
			return "", err
		}

		s += fmt.Sprintf("profile %s:\n%s\n", x, pro)
	}

	return s, nil
}

// ReturnOutputJSON returns the results as a json document.
func ReturnOutputJSON(output *Output) (string, error) {
	b, err := json.MarshalIndent(struct {
		Program string    `json:"program"`
		Version string    `json:"version"`
		Tenant  string    `json:"tenant,omitempty"`
		Results []*Result `json:"results"`
	}{
		Program: output.Program,
		Version: output.Version,
		Tenant:  output.Tenant,
		Results: output.Results,
	}, "", "  ")
	if err != nil {
		return "", errwrap.Wrapf(err, "error encoding json output")
	}
	return string(b) + "\n", nil
}
