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
	"fmt"
	"os"

	"github.com/awslabs/licexp/interfaces"
	"github.com/awslabs/licexp/util"
	"github.com/awslabs/licexp/util/errwrap"
	"github.com/awslabs/licexp/util/licenses"

	"github.com/mitchellh/go-homedir"
)

// File reads the vocabulary from a json or yaml file on the local filesystem.
// The file is read on every call, caching is done elsewhere.
type File struct {
	Debug bool
	Logf  func(format string, v ...interface{})

	// Path is the location of the file. It may start with a tilde to mean
	// the home directory. If it contains the {tenant} tag, then each tenant
	// gets its own file, and a missing file means an unknown tenant.
	// Otherwise every tenant shares the one file.
	Path string

	// Format is either json or yaml. If empty, it's guessed from the file
	// extension.
	Format string
}

func (obj *File) String() string {
	return fmt.Sprintf("file(%s)", obj.Path)
}

// Setup checks that the path can be expanded.
func (obj *File) Setup(ctx context.Context) error {
	if obj.Path == "" {
		return fmt.Errorf("empty path")
	}
	if _, err := homedir.Expand(obj.Path); err != nil {
		return errwrap.Wrapf(err, "could not expand path: %s", obj.Path)
	}
	return nil
}

// Licenses returns the licenses from the file of this tenant.
func (obj *File) Licenses(ctx context.Context, tenant string, keys []string) ([]*licenses.License, error) {
	perTenant := util.HasTenant(obj.Path)
	if perTenant && tenant == "" {
		return nil, interfaces.ErrEmptyTenant
	}

	p, err := homedir.Expand(util.ExpandTenant(obj.Path, tenant))
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not expand path: %s", obj.Path)
	}
	if obj.Debug {
		obj.Logf("reading %s", p)
	}

	data, err := os.ReadFile(p)
	if os.IsNotExist(err) && perTenant {
		return nil, errwrap.Wrapf(interfaces.ErrUnknownTenant, "no file for tenant %s", tenant)
	}
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not read file: %s", p)
	}

	format := obj.Format
	if format == "" {
		format = licenses.FormatFromFilename(p)
	}
	return decode(data, format, keys)
}
