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

// Package memory provides an in-process cache driver. It gives a single
// worker process a consistent lock view; deployments with multiple worker
// processes need the redis driver.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v2"
	"github.com/pkg/errors"

	"github.com/davmount/davmount/pkg/cache"
	"github.com/davmount/davmount/pkg/errtypes"
)

func init() {
	cache.Register("memory", New)
}

type mcache struct {
	// guards the get-then-set window in SetIfAbsent. The ttlcache itself is
	// already safe for concurrent use.
	mu sync.Mutex
	c  *ttlcache.Cache
}

// New returns a memory cache.
func New(m map[string]interface{}) (cache.Cache, error) {
	c := ttlcache.NewCache()
	// entries must expire at their absolute deadline, a cache hit
	// must not extend a lock
	c.SkipTTLExtensionOnHit(true)
	return &mcache{c: c}, nil
}

func (m *mcache) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := m.c.Get(key)
	if err == ttlcache.ErrNotFound {
		return nil, errtypes.NotFound(key)
	}
	if err != nil {
		return nil, errors.Wrap(err, "memory: error getting key "+key)
	}
	return v.([]byte), nil
}

func (m *mcache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.c.SetWithTTL(key, value, ttl); err != nil {
		return errors.Wrap(err, "memory: error setting key "+key)
	}
	return nil
}

func (m *mcache) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.c.Get(key); err == nil {
		return false, nil
	} else if err != ttlcache.ErrNotFound {
		return false, errors.Wrap(err, "memory: error getting key "+key)
	}
	if err := m.c.SetWithTTL(key, value, ttl); err != nil {
		return false, errors.Wrap(err, "memory: error setting key "+key)
	}
	return true, nil
}

func (m *mcache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.c.Remove(key); err != nil && err != ttlcache.ErrNotFound {
		return errors.Wrap(err, "memory: error removing key "+key)
	}
	return nil
}
