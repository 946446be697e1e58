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
	"context"
	"fmt"
	"time"

	"github.com/awslabs/licexp/backend"
	"github.com/awslabs/licexp/interfaces"
	"github.com/awslabs/licexp/util/errwrap"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is the prefix of the environment variables read by LoadConfig.
const EnvPrefix = "LICEXP"

// Config holds the settings that can come from the environment. They are used
// as the defaults of the command line flags. Each field is read from the
// variable named after it, so Path comes from LICEXP_PATH.
type Config struct {
	// Debug turns on the debug logs.
	Debug bool

	// Store is the kind of store, one of backend.Stores.
	Store string `default:"file"`

	// Path is the vocabulary file for the file store, or the repository for
	// the git store.
	Path string `default:"~/.config/licexp/licenses.yaml"`

	// URL is a remote repository for the git store. It replaces Path.
	URL string

	// Ref is the git reference to read. HEAD is used if it's empty.
	Ref string

	// Filename is the vocabulary file inside the git repository.
	Filename string `default:"licenses.yaml"`

	// Region is the region of the s3 bucket.
	Region string

	// Bucket is the bucket of the s3 store.
	Bucket string

	// Object is the object of the s3 store.
	Object string `default:"{tenant}.yaml"`

	// Tenant is the vocabulary to use if none is given.
	Tenant string

	// TTL is how long a vocabulary is cached for.
	TTL time.Duration `default:"10m"`

	// Listen is the address the web server listens on.
	Listen string `default:":8000"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (*Config, error) {
	config := &Config{}
	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return nil, errwrap.Wrapf(err, "could not read environment")
	}
	return config, nil
}

// NewStore builds the store that the config describes and sets it up if it
// needs that.
func (obj *Config) NewStore(ctx context.Context, debug bool, logf func(format string, v ...interface{})) (interfaces.Store, error) {
	var store interfaces.Store
	switch obj.Store {
	case "file":
		store = &backend.File{
			Debug: debug,
			Logf: func(format string, v ...interface{}) {
				logf("file: "+format, v...)
			},
			Path: obj.Path,
		}

	case "git":
		g := &backend.Git{
			Debug: debug,
			Logf: func(format string, v ...interface{}) {
				logf("git: "+format, v...)
			},
			Ref:      obj.Ref,
			Filename: obj.Filename,
		}
		if obj.URL != "" {
			g.URL = obj.URL
		} else {
			g.Path = obj.Path
		}
		store = g

	case "s3":
		store = &backend.S3{
			Debug: debug,
			Logf: func(format string, v ...interface{}) {
				logf("s3: "+format, v...)
			},
			Region:     obj.Region,
			BucketName: obj.Bucket,
			ObjectName: obj.Object,
		}

	default:
		return nil, fmt.Errorf("unknown store: %s", obj.Store)
	}

	if s, ok := store.(interfaces.SetupStore); ok {
		if err := s.Setup(ctx); err != nil {
			return nil, errwrap.Wrapf(err, "could not setup %s", store)
		}
	}
	return store, nil
}
