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

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/awslabs/licexp/cache"
	"github.com/awslabs/licexp/lib"
	"github.com/awslabs/licexp/util/errwrap"
	"github.com/awslabs/licexp/web"

	"github.com/VictoriaMetrics/metrics"
	cli "github.com/urfave/cli/v2" // imports as package "cli"
)

// Web is the general entry point for running this software as an http web
// server. The vocabulary cache lives as long as the server does.
func Web(c *cli.Context, config *lib.Config, program, version string, debug bool, logf func(format string, v ...interface{})) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	store, err := config.NewStore(ctx, debug, func(format string, v ...interface{}) {
		logf("store: "+format, v...)
	})
	if err != nil {
		return err
	}

	vocabularies := &cache.Cache{
		Debug: debug,
		Logf: func(format string, v ...interface{}) {
			logf("cache: "+format, v...)
		},
		Store:   store,
		TTL:     config.TTL,
		Metrics: metrics.NewSet(),
	}
	if err := vocabularies.Init(); err != nil {
		return errwrap.Wrapf(err, "could not initialize cache")
	}

	server := &web.Server{
		Program: program,
		Version: version,

		Debug: debug,
		Logf: func(format string, v ...interface{}) {
			logf("web: "+format, v...)
		},

		Cache:    vocabularies,
		Tenant:   config.Tenant,
		Profiles: c.StringSlice("profile"),
		Listen:   config.Listen,
	}

	return server.Run(ctx)
}
