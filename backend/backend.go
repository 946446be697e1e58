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

// Package backend contains the stores that license vocabularies can be read
// from. Each one implements interfaces.Store.
package backend

import (
	"github.com/awslabs/licexp/util/errwrap"
	"github.com/awslabs/licexp/util/licenses"
)

// Stores are a list of the available store kinds. We will eventually replace
// this with a registration mechanism.
var Stores = []string{
	"file",
	"git",
	"s3",
}

// decode parses a vocabulary document and returns its licenses, filtered to the
// keys if there are any.
func decode(data []byte, format string, keys []string) ([]*licenses.License, error) {
	list, err := licenses.Decode(data, format)
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not decode %s vocabulary", format)
	}
	if len(keys) == 0 {
		return list.Licenses, nil
	}
	return licenses.Filter(list.Licenses, keys), nil
}
