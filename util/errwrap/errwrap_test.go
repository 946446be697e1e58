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

package errwrap_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/awslabs/licexp/util/errwrap"
)

func TestAppendNil(t *testing.T) {
	if err := errwrap.Append(nil, nil); err != nil {
		t.Errorf("expected nil, got: %+v", err)
	}

	e1 := fmt.Errorf("e1")
	if err := errwrap.Append(nil, e1); err != e1 {
		t.Errorf("exp: %v", e1)
		t.Errorf("got: %v", err)
	}
	if err := errwrap.Append(e1, nil); err != e1 {
		t.Errorf("exp: %v", e1)
		t.Errorf("got: %v", err)
	}
}

func TestAppendBoth(t *testing.T) {
	e1 := fmt.Errorf("first")
	e2 := fmt.Errorf("second")
	err := errwrap.Append(e1, e2)
	if err == nil {
		t.Errorf("expected an error")
		return
	}
	s := err.Error()
	if !strings.Contains(s, "first") || !strings.Contains(s, "second") {
		t.Errorf("missing error text in: %s", s)
	}
}

func TestWrapfCause(t *testing.T) {
	if err := errwrap.Wrapf(nil, "nothing"); err != nil {
		t.Errorf("expected nil, got: %+v", err)
	}

	root := fmt.Errorf("root")
	err := errwrap.Wrapf(root, "layer %d", 1)
	if s := err.Error(); s != "layer 1: root" {
		t.Errorf("exp: %s", "layer 1: root")
		t.Errorf("got: %s", s)
	}
	if errwrap.Cause(err) != root {
		t.Errorf("cause did not unwrap")
	}
	if errwrap.String(nil) != "" {
		t.Errorf("expected empty string")
	}
}
