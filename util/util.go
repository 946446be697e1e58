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

package util

import (
	"strings"

	"github.com/valyala/fasttemplate"
)

const (
	// TenantTag is replaced by the tenant name in store locations.
	TenantTag = "tenant"
)

// HasTenant returns true if the pattern contains the {tenant} tag.
func HasTenant(pattern string) bool {
	return strings.Contains(pattern, "{"+TenantTag+"}")
}

// ExpandTenant replaces every {tenant} tag in the pattern with the tenant name.
// Other tags are removed.
func ExpandTenant(pattern, tenant string) string {
	return fasttemplate.ExecuteString(pattern, "{", "}", map[string]interface{}{
		TenantTag: tenant,
	})
}

// StrInList returns true if the needle is found in the haystack.
func StrInList(needle string, haystack []string) bool {
	for _, x := range haystack {
		if needle == x {
			return true
		}
	}
	return false
}

// StrRemoveDuplicatesInList removes any duplicate strings from the list. It
// keeps the first occurrence of each one, and drops the empty strings too.
func StrRemoveDuplicatesInList(list []string) []string {
	result := []string{}
	for _, x := range list {
		if x == "" || StrInList(x, result) {
			continue
		}
		result = append(result, x)
	}
	return result
}
