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

package backend

import (
	"context"

	"github.com/awslabs/licexp/util/licenses"
)

// Static is a store that keeps a fixed list of licenses in memory. Every tenant
// sees the same list.
type Static struct {
	List []*licenses.License
}

func (obj *Static) String() string {
	return "static"
}

// Licenses returns the list, or the part of it with the requested keys.
func (obj *Static) Licenses(ctx context.Context, tenant string, keys []string) ([]*licenses.License, error) {
	if len(keys) == 0 {
		return obj.List, nil
	}
	return licenses.Filter(obj.List, keys), nil
}
