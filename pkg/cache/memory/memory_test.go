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

package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davmount/davmount/pkg/errtypes"
)

func TestSetGetDelete(t *testing.T) {
	ctx := context.Background()
	c, err := New(nil)
	require.NoError(t, err)

	_, err = c.Get(ctx, "k")
	require.IsType(t, errtypes.NotFound(""), err)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), v)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.Get(ctx, "k")
	require.Error(t, err)

	// deleting an absent key is not an error
	require.NoError(t, c.Delete(ctx, "k"))
}

func TestSetIfAbsent(t *testing.T) {
	ctx := context.Background()
	c, err := New(nil)
	require.NoError(t, err)

	ok, err := c.SetIfAbsent(ctx, "k", []byte("a"), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.SetIfAbsent(ctx, "k", []byte("b"), time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	v, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("a"), v)
}

func TestSetIfAbsentConcurrent(t *testing.T) {
	ctx := context.Background()
	c, err := New(nil)
	require.NoError(t, err)

	const n = 32
	var wg sync.WaitGroup
	wins := make(chan int, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ok, err := c.SetIfAbsent(ctx, "k", []byte{byte(i)}, time.Minute)
			if err == nil && ok {
				wins <- i
			}
		}(i)
	}
	wg.Wait()
	close(wins)

	require.Len(t, chanToSlice(wins), 1)
}

func chanToSlice(ch chan int) []int {
	var s []int
	for v := range ch {
		s = append(s, v)
	}
	return s
}

func TestExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := New(nil)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 50*time.Millisecond))
	time.Sleep(120 * time.Millisecond)

	_, err = c.Get(ctx, "k")
	require.Error(t, err)

	// an expired entry does not block a fresh set-if-absent
	ok, err := c.SetIfAbsent(ctx, "k", []byte("w"), time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}
