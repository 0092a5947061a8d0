// Copyright 2018-2022 CERN
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// In applying this license, CERN does not waive the privileges and immunities
// granted to it by virtue of its status as an Intergovernmental Organization
// or submit itself to any jurisdiction.

// Package cache defines the shared key/value cache used to back the lock
// registry, so that every worker sees the same lock view.
package cache

import (
	"context"
	"time"

	"github.com/davmount/davmount/pkg/errtypes"
)

// Cache is a shared key/value store with per-entry expiry.
// Implementations must make SetIfAbsent atomic: when two writers race for the
// same absent key, exactly one wins.
type Cache interface {
	// Get returns the value stored under key or errtypes.NotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous entry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// SetIfAbsent stores value under key only if no unexpired entry exists.
	// It reports whether the value was stored.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	// Delete removes the entry stored under key, if any.
	Delete(ctx context.Context, key string) error
}

// NewFunc is the function that cache drivers
// should register to at init time.
type NewFunc func(map[string]interface{}) (Cache, error)

// NewFuncs is a map containing all the registered cache drivers.
var NewFuncs = map[string]NewFunc{}

// Register registers a new cache driver new function.
// Not safe for concurrent use. Safe for use from package init.
func Register(name string, f NewFunc) {
	NewFuncs[name] = f
}

// New returns a new Cache for the given driver.
func New(driver string, m map[string]interface{}) (Cache, error) {
	f, ok := NewFuncs[driver]
	if !ok {
		return nil, errtypes.NotFound("cache driver: " + driver)
	}
	return f(m)
}
