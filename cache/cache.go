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

// Package cache keeps the compiled license vocabulary of each tenant for a
// limited amount of time, so that it doesn't have to be fetched and built for
// every expression.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/awslabs/licexp/expression"
	"github.com/awslabs/licexp/interfaces"
	"github.com/awslabs/licexp/util/errwrap"

	"github.com/VictoriaMetrics/metrics"
	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTTL is how long a vocabulary is kept if no TTL is specified.
	DefaultTTL = 10 * time.Minute
)

type entry struct {
	licensing *expression.Licensing
	expires   time.Time
}

// Cache is a per tenant cache of built symbol tables. Entries expire after the
// TTL, and there is no other way to invalidate them. Populate the struct and
// then call Init before using it. It is safe for concurrent use.
type Cache struct {
	Debug bool
	Logf  func(format string, v ...interface{})

	// Store is where the license records are fetched from on a miss.
	Store interfaces.Store

	// TTL is how long a built vocabulary is kept. If zero, DefaultTTL is
	// used.
	TTL time.Duration

	// Now returns the current time. It defaults to time.Now and exists so
	// that expiry can be tested.
	Now func() time.Time

	// Metrics is the set that the cache counters are added to. If nil, a
	// new set is made. Use metrics.RegisterSet to export it.
	Metrics *metrics.Set

	mutex   *sync.Mutex
	entries map[string]*entry
	group   *singleflight.Group

	requests *metrics.Counter
	misses   *metrics.Counter
	builds   *metrics.Counter
}

// Init validates the struct and prepares it for use.
func (obj *Cache) Init() error {
	if obj.Store == nil {
		return fmt.Errorf("the Store field must be specified")
	}
	if obj.TTL < 0 {
		return fmt.Errorf("the TTL must not be negative")
	}
	if obj.TTL == 0 {
		obj.TTL = DefaultTTL
	}
	if obj.Now == nil {
		obj.Now = time.Now
	}
	if obj.Logf == nil {
		obj.Logf = func(format string, v ...interface{}) {}
	}
	if obj.Metrics == nil {
		obj.Metrics = metrics.NewSet()
	}

	obj.mutex = &sync.Mutex{}
	obj.entries = make(map[string]*entry)
	obj.group = &singleflight.Group{}
	obj.requests = obj.Metrics.GetOrCreateCounter(`licexp_cache_requests_total`)
	obj.misses = obj.Metrics.GetOrCreateCounter(`licexp_cache_misses_total`)
	obj.builds = obj.Metrics.GetOrCreateCounter(`licexp_cache_builds_total`)
	return nil
}

// String returns a human readable name for the cache and its store.
func (obj *Cache) String() string {
	return fmt.Sprintf("cache(%s)", obj.Store)
}

// GetOrBuild returns the symbol table of the tenant. If keys is not empty, the
// table is built from those licenses only, and the cache is neither read nor
// written. Otherwise a table younger than the TTL is returned if there is one,
// or a new one is fetched, built and kept. Concurrent misses for one tenant
// share a single build, which is not cancelled when one of the callers is.
func (obj *Cache) GetOrBuild(ctx context.Context, tenant string, keys []string) (*expression.Licensing, error) {
	obj.requests.Inc()

	if len(keys) > 0 {
		if obj.Debug {
			obj.Logf("bypass for tenant %s with %d keys", tenant, len(keys))
		}
		return obj.build(ctx, tenant, keys)
	}

	if licensing := obj.lookup(tenant); licensing != nil {
		return licensing, nil
	}

	obj.misses.Inc()
	if obj.Debug {
		obj.Logf("miss for tenant %s", tenant)
	}

	detached := context.WithoutCancel(ctx) // shared by every waiting caller
	ch := obj.group.DoChan(tenant, func() (interface{}, error) {
		// a previous flight may have finished since the lookup
		if licensing := obj.lookup(tenant); licensing != nil {
			return licensing, nil
		}
		licensing, err := obj.build(detached, tenant, nil)
		if err != nil {
			return nil, err
		}
		obj.mutex.Lock()
		obj.entries[tenant] = &entry{
			licensing: licensing,
			expires:   obj.Now().Add(obj.TTL),
		}
		obj.mutex.Unlock()
		return licensing, nil
	})

	select {
	case result := <-ch:
		if result.Err != nil {
			return nil, result.Err
		}
		return result.Val.(*expression.Licensing), nil

	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// lookup returns the table of the tenant if it has not expired.
func (obj *Cache) lookup(tenant string) *expression.Licensing {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	e, exists := obj.entries[tenant]
	if !exists || !obj.Now().Before(e.expires) {
		return nil
	}
	return e.licensing
}

// Len returns the number of tenants in the cache, including expired ones which
// were not replaced yet.
func (obj *Cache) Len() int {
	obj.mutex.Lock()
	defer obj.mutex.Unlock()
	return len(obj.entries)
}

func (obj *Cache) build(ctx context.Context, tenant string, keys []string) (*expression.Licensing, error) {
	obj.builds.Inc()

	list, err := obj.Store.Licenses(ctx, tenant, keys)
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not fetch licenses of tenant %s from %s", tenant, obj.Store)
	}
	licensing, err := expression.Build(expression.FromLicenses(list))
	if err != nil {
		return nil, errwrap.Wrapf(err, "could not build licenses of tenant %s", tenant)
	}

	if obj.Debug {
		obj.Logf("built %d licenses for tenant %s", licensing.Len(), tenant)
		for _, x := range licensing.Conflicts() {
			obj.Logf("alias %q of %s is already used by %s", x.Token, x.Dropped, x.Kept)
		}
	}
	return licensing, nil
}
