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
	"errors"
	"fmt"

	"github.com/awslabs/licexp/interfaces"
	"github.com/awslabs/licexp/s3"
	"github.com/awslabs/licexp/util"
	"github.com/awslabs/licexp/util/errwrap"
	"github.com/awslabs/licexp/util/licenses"
)

// S3 reads the vocabulary from an object in an s3 bucket.
type S3 struct {
	Debug bool
	Logf  func(format string, v ...interface{})

	// Region is the region of the bucket. It defaults to s3.DefaultRegion.
	Region string

	// BucketName is the name of the bucket.
	BucketName string

	// ObjectName is the name of the object, which may contain the {tenant}
	// tag, in which case a missing object means an unknown tenant.
	ObjectName string

	// Format is either json or yaml. If empty, it's guessed from the object
	// name.
	Format string
}

func (obj *S3) String() string {
	return fmt.Sprintf("s3(%s/%s)", obj.BucketName, obj.ObjectName)
}

// Licenses returns the licenses from the object of this tenant.
func (obj *S3) Licenses(ctx context.Context, tenant string, keys []string) ([]*licenses.License, error) {
	perTenant := util.HasTenant(obj.ObjectName)
	if perTenant && tenant == "" {
		return nil, interfaces.ErrEmptyTenant
	}
	region := obj.Region
	if region == "" {
		region = s3.DefaultRegion
	}
	name := util.ExpandTenant(obj.ObjectName, tenant)

	data, err := s3.Load(ctx, &s3.LoadInputs{
		Region:     region,
		BucketName: obj.BucketName,
		ObjectName: name,
		Debug:      obj.Debug,
		Logf: func(format string, v ...interface{}) {
			obj.Logf("s3: "+format, v...)
		},
	})
	if errors.Is(err, s3.ErrNotFound) && perTenant {
		return nil, errwrap.Wrapf(interfaces.ErrUnknownTenant, "no object for tenant %s", tenant)
	}
	if err != nil {
		return nil, err
	}

	format := obj.Format
	if format == "" {
		format = licenses.FormatFromFilename(name)
	}
	return decode(data, format, keys)
}
