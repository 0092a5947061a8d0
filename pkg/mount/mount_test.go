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

package mount

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestMount(t *testing.T) *Mountpoint {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub/deep"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "file.txt"), []byte("x"), 0644))
	m, err := New("/", dir)
	require.NoError(t, err)
	return m
}

func TestResolveStrict(t *testing.T) {
	m := newTestMount(t)

	p, err := m.ResolveStrict("/sub/file.txt")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(m.Docroot, "sub", "file.txt"), p)

	p, err = m.ResolveStrict("/")
	require.NoError(t, err)
	require.Equal(t, m.Docroot, p)

	_, err = m.ResolveStrict("/missing")
	require.Error(t, err)
}

func TestResolveStrictNeverEscapes(t *testing.T) {
	m := newTestMount(t)

	// a symlink pointing out of the docroot must not be resolvable
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret"), []byte("s"), 0644))
	require.NoError(t, os.Symlink(outside, filepath.Join(m.Docroot, "leak")))

	inputs := []string{
		"/..",
		"/../..",
		"/sub/../../etc",
		"/sub/../../../etc/passwd",
		"/leak",
		"/leak/secret",
		"/./../sub",
	}
	for _, in := range inputs {
		p, err := m.ResolveStrict(in)
		if err != nil {
			continue
		}
		if p != m.Docroot && !strings.HasPrefix(p, m.Docroot+"/") {
			t.Errorf("ResolveStrict(%q) escaped the docroot: %q", in, p)
		}
	}
}

func TestResolveStrictDotDotInsideDocroot(t *testing.T) {
	m := newTestMount(t)

	// dot-dot segments that stay below the docroot are fine
	p, err := m.ResolveStrict("/sub/deep/../file.txt")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(m.Docroot, "sub", "file.txt"), p)
}

func TestResolveParent(t *testing.T) {
	m := newTestMount(t)

	// parity: a strictly resolvable path resolves identically via the parent form
	strict, err := m.ResolveStrict("/sub/file.txt")
	require.NoError(t, err)
	parent, err := m.ResolveParent("/sub/file.txt")
	require.NoError(t, err)
	require.Equal(t, strict, parent)

	// the leaf need not exist, the parent must
	p, err := m.ResolveParent("/sub/new.txt")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(m.Docroot, "sub", "new.txt"), p)

	_, err = m.ResolveParent("/missing/new.txt")
	require.Error(t, err)

	// no parent/leaf split
	_, err = m.ResolveParent("name")
	require.Error(t, err)

	// a literal dot-dot leaf would step out of the resolved parent
	_, err = m.ResolveParent("/sub/..")
	require.Error(t, err)
}

func TestLookup(t *testing.T) {
	root := t.TempDir()
	docs := t.TempDir()
	table, err := NewTable(map[string]string{
		"/":     root,
		"/docs": docs,
	})
	require.NoError(t, err)

	m, rest, ok := table.Lookup("/docs/a.txt")
	require.True(t, ok)
	require.Equal(t, "/docs", m.Prefix)
	require.Equal(t, "/a.txt", rest)

	m, rest, ok = table.Lookup("/docsx/a.txt")
	require.True(t, ok)
	require.Equal(t, "/", m.Prefix)
	require.Equal(t, "/docsx/a.txt", rest)

	m, rest, ok = table.Lookup("/docs")
	require.True(t, ok)
	require.Equal(t, "/docs", m.Prefix)
	require.Equal(t, "/", rest)

	table2, err := NewTable(map[string]string{"/only": docs})
	require.NoError(t, err)
	_, _, ok = table2.Lookup("/other")
	require.False(t, ok)
}

func TestNewRejectsFiles(t *testing.T) {
	dir := t.TempDir()
	fn := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(fn, []byte("x"), 0644))
	_, err := New("/", fn)
	require.Error(t, err)
}
