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

// Package lock grants, refreshes, validates and releases advisory WebDAV
// locks. Locks are keyed by the fully qualified request URI, scheme and host
// included, so the same directory exported through two virtual hosts carries
// two independent locks. State lives in the shared cache; expiry is enforced
// by the cache TTL.
package lock

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/davmount/davmount/pkg/cache"
	"github.com/davmount/davmount/pkg/errtypes"
)

const keyPrefix = "dav:lock:"

// Lock describes one advisory lock.
type Lock struct {
	URI     string    `json:"uri"`
	Token   string    `json:"token"`
	Owner   string    `json:"owner,omitempty"`
	Depth   string    `json:"depth"`
	Timeout int64     `json:"timeout"` // seconds
	Created time.Time `json:"created"`
}

// Expires returns the instant the lock stops being valid.
func (l *Lock) Expires() time.Time {
	return l.Created.Add(time.Duration(l.Timeout) * time.Second)
}

// Manager is the advisory lock registry.
type Manager struct {
	cache cache.Cache
}

// NewManager returns a Manager backed by the given cache.
func NewManager(c cache.Cache) *Manager {
	return &Manager{cache: c}
}

// Acquire grants a new lock on uri. If an unexpired lock is already held it
// returns errtypes.Locked; the set-if-absent primitive of the cache decides
// the winner between two concurrent acquires.
func (m *Manager) Acquire(ctx context.Context, uri, owner, depth string, ttl time.Duration) (*Lock, error) {
	l := &Lock{
		URI:     uri,
		Token:   "opaquelocktoken:" + uuid.New().String(),
		Owner:   owner,
		Depth:   depth,
		Timeout: int64(ttl.Seconds()),
		Created: time.Now(),
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, errors.Wrap(err, "lock: error encoding lock")
	}
	ok, err := m.cache.SetIfAbsent(ctx, keyPrefix+uri, data, ttl)
	if err != nil {
		return nil, errors.Wrap(err, "lock: error storing lock for "+uri)
	}
	if !ok {
		return nil, errtypes.Locked(uri)
	}
	return l, nil
}

// Get returns the lock currently held on uri, if any.
func (m *Manager) Get(ctx context.Context, uri string) (*Lock, error) {
	data, err := m.cache.Get(ctx, keyPrefix+uri)
	if err != nil {
		if _, ok := err.(errtypes.IsNotFound); ok {
			return nil, errtypes.NotFound(uri)
		}
		return nil, errors.Wrap(err, "lock: error reading lock for "+uri)
	}
	l := &Lock{}
	if err := json.Unmarshal(data, l); err != nil {
		return nil, errors.Wrap(err, "lock: error decoding lock for "+uri)
	}
	return l, nil
}

// Refresh extends the lock held on uri with a new timeout. The presented
// token must match the held lock.
func (m *Manager) Refresh(ctx context.Context, uri, token string, ttl time.Duration) (*Lock, error) {
	l, err := m.Get(ctx, uri)
	if err != nil {
		return nil, err
	}
	if l.Token != token {
		return nil, errtypes.NotFound(uri)
	}
	l.Timeout = int64(ttl.Seconds())
	l.Created = time.Now()
	data, err := json.Marshal(l)
	if err != nil {
		return nil, errors.Wrap(err, "lock: error encoding lock")
	}
	if err := m.cache.Set(ctx, keyPrefix+uri, data, ttl); err != nil {
		return nil, errors.Wrap(err, "lock: error storing lock for "+uri)
	}
	return l, nil
}

// Validate reports whether token holds the lock on uri.
func (m *Manager) Validate(ctx context.Context, uri, token string) error {
	l, err := m.Get(ctx, uri)
	if err != nil {
		return err
	}
	if l.Token != token {
		return errtypes.NotFound(uri)
	}
	return nil
}

// Release drops the lock held on uri. The presented token must match.
func (m *Manager) Release(ctx context.Context, uri, token string) error {
	if err := m.Validate(ctx, uri, token); err != nil {
		return err
	}
	if err := m.cache.Delete(ctx, keyPrefix+uri); err != nil {
		return errors.Wrap(err, "lock: error removing lock for "+uri)
	}
	return nil
}
