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

// Package mount maps URL prefixes onto filesystem directories and translates
// request paths into filesystem paths that cannot escape the docroot.
package mount

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/davmount/davmount/pkg/errtypes"
)

// Mountpoint binds a URL prefix to a canonical docroot directory.
// A Mountpoint is created once at startup and never mutated.
type Mountpoint struct {
	Prefix  string
	Docroot string
}

// New canonicalises dir and returns a Mountpoint serving it under prefix.
func New(prefix, dir string) (*Mountpoint, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "mount: error resolving "+dir)
	}
	docroot, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, errors.Wrap(err, "mount: error canonicalising "+dir)
	}
	fi, err := os.Stat(docroot)
	if err != nil {
		return nil, errors.Wrap(err, "mount: error accessing "+docroot)
	}
	if !fi.IsDir() {
		return nil, errtypes.BadRequest("mount: docroot is not a directory: " + docroot)
	}
	if prefix == "" {
		prefix = "/"
	}
	if prefix != "/" {
		prefix = strings.TrimSuffix(path.Join("/", prefix), "/")
	}
	return &Mountpoint{Prefix: prefix, Docroot: docroot}, nil
}

// contains reports whether p equals the docroot or lies below it.
// p must already be canonical.
func (m *Mountpoint) contains(p string) bool {
	return p == m.Docroot || strings.HasPrefix(p, m.Docroot+"/")
}

// ResolveStrict canonicalises requestPath below the docroot. The target must
// exist. Missing components, dangling symlinks and paths whose canonical form
// leaves the docroot all resolve to errtypes.NotFound: the caller cannot tell
// an escape attempt from a miss, and must not.
func (m *Mountpoint) ResolveStrict(requestPath string) (string, error) {
	joined := filepath.Join(m.Docroot, requestPath)
	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		return "", errtypes.NotFound(requestPath)
	}
	if !m.contains(resolved) {
		return "", errtypes.NotFound(requestPath)
	}
	return resolved, nil
}

// ResolveParent resolves the parent of requestPath strictly and reattaches
// the final component literally. It is used by the methods that create the
// leaf: the parent must exist, the leaf need not. A request path without a
// parent/leaf split cannot be resolved.
func (m *Mountpoint) ResolveParent(requestPath string) (string, error) {
	p := strings.TrimSuffix(requestPath, "/")
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return "", errtypes.BadRequest("mount: no parent in " + requestPath)
	}
	parent, leaf := p[:i], p[i+1:]
	if leaf == "" || leaf == "." || leaf == ".." {
		return "", errtypes.BadRequest("mount: unresolvable leaf in " + requestPath)
	}
	resolved, err := m.ResolveStrict(parent)
	if err != nil {
		return "", err
	}
	return filepath.Join(resolved, leaf), nil
}

// Table is the immutable mountpoint list built at startup.
type Table []*Mountpoint

// NewTable builds a Table from prefix=directory pairs.
func NewTable(mounts map[string]string) (Table, error) {
	t := make(Table, 0, len(mounts))
	for prefix, dir := range mounts {
		m, err := New(prefix, dir)
		if err != nil {
			return nil, err
		}
		t = append(t, m)
	}
	return t, nil
}

// Lookup returns the mountpoint with the longest prefix matching urlPath and
// the remaining path below it. The remainder always starts with a slash.
func (t Table) Lookup(urlPath string) (*Mountpoint, string, bool) {
	var best *Mountpoint
	for _, m := range t {
		if !matches(m.Prefix, urlPath) {
			continue
		}
		if best == nil || len(m.Prefix) > len(best.Prefix) {
			best = m
		}
	}
	if best == nil {
		return nil, "", false
	}
	rest := strings.TrimPrefix(urlPath, best.Prefix)
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}
	return best, rest, true
}

func matches(prefix, urlPath string) bool {
	if prefix == "/" {
		return strings.HasPrefix(urlPath, "/")
	}
	if !strings.HasPrefix(urlPath, prefix) {
		return false
	}
	return len(urlPath) == len(prefix) || urlPath[len(prefix)] == '/'
}
