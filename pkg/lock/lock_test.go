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

package lock

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davmount/davmount/pkg/cache/memory"
	"github.com/davmount/davmount/pkg/errtypes"
)

const testURI = "http://localhost/webdav/a.txt"

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	c, err := memory.New(nil)
	require.NoError(t, err)
	return NewManager(c)
}

func TestAcquireRelease(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	l, err := m.Acquire(ctx, testURI, "<d:href>me</d:href>", "infinity", time.Minute)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(l.Token, "opaquelocktoken:"))
	require.Equal(t, testURI, l.URI)

	// a second acquire without the token is rejected
	_, err = m.Acquire(ctx, testURI, "", "0", time.Minute)
	require.Error(t, err)
	_, ok := err.(errtypes.IsLocked)
	require.True(t, ok)

	// release with the wrong token leaves the lock in place
	require.Error(t, m.Release(ctx, testURI, "opaquelocktoken:bogus"))

	require.NoError(t, m.Release(ctx, testURI, l.Token))

	// the uri is free again
	_, err = m.Acquire(ctx, testURI, "", "0", time.Minute)
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	l, err := m.Acquire(ctx, testURI, "", "0", time.Minute)
	require.NoError(t, err)

	require.NoError(t, m.Validate(ctx, testURI, l.Token))
	require.Error(t, m.Validate(ctx, testURI, "opaquelocktoken:bogus"))
	require.Error(t, m.Validate(ctx, "http://localhost/other", l.Token))
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	l, err := m.Acquire(ctx, testURI, "", "0", time.Minute)
	require.NoError(t, err)

	r, err := m.Refresh(ctx, testURI, l.Token, 2*time.Minute)
	require.NoError(t, err)
	require.Equal(t, l.Token, r.Token)
	require.EqualValues(t, 120, r.Timeout)

	_, err = m.Refresh(ctx, testURI, "opaquelocktoken:bogus", time.Minute)
	require.Error(t, err)
}

func TestExpiredLockIsAbsent(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	_, err := m.Acquire(ctx, testURI, "", "0", 50*time.Millisecond)
	require.NoError(t, err)
	time.Sleep(120 * time.Millisecond)

	_, err = m.Get(ctx, testURI)
	require.Error(t, err)

	// and the uri can be locked again
	_, err = m.Acquire(ctx, testURI, "", "0", time.Minute)
	require.NoError(t, err)
}

func TestConcurrentAcquire(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	const n = 16
	var wg sync.WaitGroup
	tokens := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l, err := m.Acquire(ctx, testURI, "", "0", time.Minute); err == nil {
				tokens <- l.Token
			}
		}()
	}
	wg.Wait()
	close(tokens)

	var won []string
	for tok := range tokens {
		won = append(won, tok)
	}
	require.Len(t, won, 1)

	// the winning token is the one persisted under the uri
	l, err := m.Get(ctx, testURI)
	require.NoError(t, err)
	require.Equal(t, won[0], l.Token)
}

func TestLocksAreScopedByHost(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t)

	_, err := m.Acquire(ctx, "http://a/f", "", "0", time.Minute)
	require.NoError(t, err)
	_, err = m.Acquire(ctx, "http://b/f", "", "0", time.Minute)
	require.NoError(t, err)
}
