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
	_ "embed"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/awslabs/licexp/expression"
	"github.com/awslabs/licexp/lib"
	"github.com/awslabs/licexp/s3"
	"github.com/awslabs/licexp/util/ansi"
	"github.com/awslabs/licexp/util/errwrap"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v2" // imports as package "cli"
)

// Hide a program/version string for build embedding.
//go:generate bash -c "basename $(pwd) | tr -d '\n' > .program"
//go:generate bash -c "git describe --match '[0-9]*.[0-9]*.[0-9]*' --tags --dirty --always > .version"

//go:embed .program
var program string

//go:embed .version
var version string

// Umask is used when writing output files.
const Umask = 0660

// storeFlags are shared by every command. Their defaults come from the
// environment.
func storeFlags(config *lib.Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "store", Value: config.Store, Usage: "where licenses are read from: file, git or s3"},
		&cli.StringFlag{Name: "path", Value: config.Path, Usage: "vocabulary file, or local git repository"},
		&cli.StringFlag{Name: "url", Value: config.URL, Usage: "remote git repository"},
		&cli.StringFlag{Name: "ref", Value: config.Ref, Usage: "git reference to read"},
		&cli.StringFlag{Name: "filename", Value: config.Filename, Usage: "vocabulary file in the git repository"},
		&cli.StringFlag{Name: "region", Value: config.Region},
		&cli.StringFlag{Name: "bucket", Value: config.Bucket},
		&cli.StringFlag{Name: "object", Value: config.Object},
		&cli.StringFlag{Name: "tenant", Value: config.Tenant},
		&cli.DurationFlag{Name: "ttl", Value: config.TTL},
		&cli.StringSliceFlag{Name: "key", Usage: "only use these license keys"},
	}
}

// normalizeFlags are the flags of the commands that go through lib.Main.
func normalizeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "unknown", Usage: "allow licenses that are not in the vocabulary"},
		&cli.BoolFlag{Name: "strict", Usage: "check the use of WITH"},
		&cli.BoolFlag{Name: "simple", Usage: "only match keys, not multi-word names"},
		&cli.BoolFlag{Name: "include-available", Usage: "list the known licenses on errors"},
		&cli.StringSliceFlag{Name: "profile"},
		&cli.StringFlag{Name: "output-s3bucket"},
		&cli.BoolFlag{Name: "output-public", Usage: "let anyone read the uploaded output"},
		&cli.StringFlag{Name: "output-path"},
		&cli.StringFlag{Name: "output-type", Value: "text", Usage: "text or json"},
		&cli.BoolFlag{Name: "quiet"},
	}
}

// CLI is the entry point for the CLI frontend.
func CLI(config *lib.Config, program, version string, debug bool, logf func(format string, v ...interface{})) error {

	// newConfig returns the config with the flag values.
	newConfig := func(c *cli.Context) *lib.Config {
		return &lib.Config{
			Debug:    debug,
			Store:    c.String("store"),
			Path:     c.String("path"),
			URL:      c.String("url"),
			Ref:      c.String("ref"),
			Filename: c.String("filename"),
			Region:   c.String("region"),
			Bucket:   c.String("bucket"),
			Object:   c.String("object"),
			Tenant:   c.String("tenant"),
			TTL:      c.Duration("ttl"),
			Listen:   c.String("listen"),
		}
	}

	// newMain builds the runner for the command.
	newMain := func(ctx context.Context, c *cli.Context, logf func(format string, v ...interface{})) (*lib.Main, error) {
		cfg := newConfig(c)
		store, err := cfg.NewStore(ctx, debug, func(format string, v ...interface{}) {
			logf("store: "+format, v...)
		})
		if err != nil {
			return nil, err
		}
		return &lib.Main{
			Program: program,
			Version: version,
			Debug:   debug,
			Logf:    logf,

			Args:   c.Args().Slice(),
			Store:  store,
			TTL:    cfg.TTL,
			Tenant: cfg.Tenant,
			Keys:   c.StringSlice("key"),

			Options: &expression.NormalizeOptions{
				ParseOptions: expression.ParseOptions{
					ValidateKnown:  !c.Bool("unknown"),
					ValidateStrict: c.Bool("strict"),
					Simple:         c.Bool("simple"),
				},
				IncludeAvailable: c.Bool("include-available"),
			},

			Profiles: c.StringSlice("profile"),
		}, nil
	}

	// run is the action of the commands that produce results.
	run := func(c *cli.Context, modify func(*lib.Main)) error {
		logf := logf // don't modify the parent
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		quiet := c.Bool("quiet")
		outputPath := c.String("output-path")
		outputType := c.String("output-type")
		outputS3Bucket := c.String("output-s3bucket")
		if outputPath == "-" || quiet { // if output is stdout, noop logs
			logf = func(format string, v ...interface{}) {
				// noop
			}
		}
		if outputType != "text" && outputType != "json" {
			return fmt.Errorf("unknown output type: %s", outputType)
		}

		m, err := newMain(ctx, c, logf)
		if err != nil {
			return err
		}
		if modify != nil {
			modify(m)
		}

		output, err := m.Run(ctx)
		if err != nil {
			return err
		}

		s := ""
		if outputPath != "" || outputS3Bucket != "" {
			var err error
			if outputType == "json" {
				s, err = lib.ReturnOutputJSON(output)
			} else {
				s, err = lib.ReturnOutputFile(output)
			}
			if err != nil {
				return err
			}
		}

		if outputS3Bucket != "" {
			ext := "txt"
			contentType := "text/plain"
			if outputType == "json" {
				ext = "json"
				contentType = "application/json"
			}
			region := c.String("region")
			if region == "" {
				region = s3.DefaultRegion
			}
			// a random name, so that it can only be found with the link
			objectName := fmt.Sprintf("%s-%s.%s", program, uuid.New().String(), ext)

			inputs := &s3.Inputs{
				Region:            region,
				BucketName:        outputS3Bucket,
				CreateBucket:      true,
				ObjectName:        objectName,
				GrantReadAllUsers: c.Bool("output-public"),
				ContentType:       &contentType,
				Data:              []byte(s),
				Debug:             debug,
				Logf: func(format string, v ...interface{}) {
					logf("s3: "+format, v...)
				},
			}
			u, err := s3.Store(ctx, inputs)
			if err != nil {
				logf("could not write s3 file: %+v", err)
			} else {
				fmt.Printf("S3 Sig URL: %s\n", u)
				if c.Bool("output-public") {
					fmt.Printf("S3 Pub URL: %s\n", s3.PubURL(region, outputS3Bucket, objectName))
				}
			}
		}

		if outputPath == "-" {
			// NOTE: if we get asked for stdout, we turn off other
			// output to make it sane
			quiet = true
			if _, err := fmt.Print(s); err != nil { // to stdout
				return err
			}

		} else if outputPath != "" {
			if err := os.WriteFile(outputPath, []byte(s), Umask); err != nil {
				logf("could not write output file: %+v", err)
			}
		}

		if !quiet {
			s, err := lib.ReturnOutputConsole(output)
			if err != nil {
				return err
			}

			fmt.Print(s) // display it
		}

		return output.Errors
	}

	normalize := func(c *cli.Context) error {
		return run(c, nil)
	}

	flags := append(storeFlags(config), normalizeFlags()...)

	app := &cli.App{
		Name:                 program,
		Version:              version,
		Usage:                "normalize and validate license expressions",
		Action:               normalize,
		Flags:                flags,
		EnableBashCompletion: true,

		Commands: []*cli.Command{
			{
				Name:      "normalize",
				Usage:     "normalize each expression, reading stdin if there are none",
				ArgsUsage: "[expression...]",
				Action:    normalize,
				Flags:     normalizeFlags(),
			},
			{
				Name:      "spdx",
				Usage:     "render each expression with SPDX identifiers",
				ArgsUsage: "[expression...]",
				Action: func(c *cli.Context) error {
					return run(c, func(m *lib.Main) {
						m.Options.Template = expression.SPDXTemplate
					})
				},
				Flags: normalizeFlags(),
			},
			{
				Name:      "combine",
				Usage:     "join the expressions with AND",
				ArgsUsage: "[expression...]",
				Action: func(c *cli.Context) error {
					return run(c, func(m *lib.Main) {
						m.Combine = true
						m.Simplify = c.Bool("simplify")
					})
				},
				Flags: append(normalizeFlags(), &cli.BoolFlag{Name: "simplify", Usage: "remove duplicate and redundant licenses"}),
			},
			{
				Name:      "equivalent",
				Usage:     "check if two expressions mean the same thing",
				ArgsUsage: "<expression> <expression>",
				Action: func(c *cli.Context) error {
					ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
					defer stop()
					m, err := newMain(ctx, c, logf)
					if err != nil {
						return err
					}
					equivalent, err := m.Equivalent(ctx)
					if err != nil {
						return err
					}
					fmt.Printf("%t\n", equivalent)
					if !equivalent {
						return cli.Exit("", 2)
					}
					return nil
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "simple"},
				},
			},
			{
				Name:  "web",
				Usage: "launch a web server mode",
				Action: func(c *cli.Context) error {
					logf("Hello! This is %s, version: %s", program, version)
					defer logf("Done!")

					return Web(c, newConfig(c), program, version, debug, logf)
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "listen", Value: config.Listen},
					&cli.StringSliceFlag{Name: "profile"},
				},
			},
		},
	}

	return app.Run(os.Args)
}

func main() {
	config, err := lib.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "main: %+v\n", err)
		os.Exit(1)
		return
	}
	debug := config.Debug
	logf := (&ansi.Logf{
		Prefix:   "main: ",
		Ellipsis: "...",
	}).Init()

	program = strings.TrimSpace(program)
	version = strings.TrimSpace(version)
	if program == "" || version == "" {
		// run `go generate` before you build it.
		logf("program was not compiled correctly")
		os.Exit(1)
		return
	}

	// FIXME: We discard output from lib's that use `log` package directly.
	log.SetOutput(io.Discard)

	err = CLI(config, program, version, debug, logf)
	if exitErr, ok := err.(cli.ExitCoder); ok {
		os.Exit(exitErr.ExitCode())
		return
	}
	if err != nil {
		if debug {
			logf("failed: %+v", err)
		} else {
			logf("failed: %+v", errwrap.Cause(err))
		}
		os.Exit(1)
		return
	}
	os.Exit(0)
}
