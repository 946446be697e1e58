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

// Package interfaces has all the common interfaces and structs that are needed
// throughout this software. It is imported by many packages. It must not import
// any packages other than stdlib and util libraries. This is so that we avoid
// dependency loops.
package interfaces

import (
	"context"
	"fmt"

	"github.com/awslabs/licexp/util/licenses"
)

// Error is a constant error type that implements error.
type Error string

// Error fulfills the error interface of this type.
func (e Error) Error() string { return string(e) }

const (
	// ErrUnknownTenant should be returned by any store when it has no
	// license vocabulary at all for the requested tenant. An empty
	// vocabulary is not the same thing and is not an error.
	ErrUnknownTenant = Error("tenant is unknown")

	// ErrEmptyTenant is returned when a store that needs a tenant name to
	// find the vocabulary was given an empty one.
	ErrEmptyTenant = Error("tenant is empty")
)

// Store is the interface that every source of license records must implement.
// A store lists the licenses known to a tenant. It is the only place where the
// vocabulary cache does any I/O.
type Store interface {
	fmt.Stringer

	// Licenses returns the license records of the tenant. If keys is not
	// empty, then only the licenses with one of those keys are returned.
	// Keys that don't exist are silently skipped. You should cancel any
	// work you are doing as fast as possible if the context is cancelled.
	Licenses(ctx context.Context, tenant string, keys []string) ([]*licenses.License, error)
}

// SetupStore adds a method that can be run if the store has some initial
// one-time validation or setup to do. It should always be safe and idempotent.
type SetupStore interface {
	Store

	// Setup runs an operation to check if things are okay. It should be
	// idempotent and generally safe to run. It can open connections or
	// clone data that every later call will need.
	Setup(ctx context.Context) error
}
