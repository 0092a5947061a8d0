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

package dav

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/davmount/davmount/pkg/appctx"
	"github.com/davmount/davmount/pkg/mount"
)

func (s *svc) handleDelete(w http.ResponseWriter, r *http.Request, m *mount.Mountpoint, p string) {
	ctx := r.Context()
	log := appctx.GetLogger(ctx)

	if err := s.checkLock(ctx, r, r.URL.Path); err != nil {
		w.WriteHeader(http.StatusLocked)
		return
	}

	target, err := m.ResolveStrict(p)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	fi, err := os.Lstat(target)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if fi.IsDir() {
		if err := removeTree(target); err != nil {
			log.Error().Err(err).Str("target", target).Msg("error removing collection")
			w.WriteHeader(http.StatusForbidden)
			return
		}
	} else {
		if err := os.Remove(target); err != nil {
			log.Error().Err(err).Str("target", target).Msg("error removing file")
			w.WriteHeader(http.StatusForbidden)
			return
		}
	}

	addDavHeaders(w)
	w.WriteHeader(http.StatusOK)
}

// removeTree removes dir depth first. Symlinks are removed, never followed,
// so a link pointing out of the subtree cannot drag foreign files in. The
// first failing unlink aborts the traversal.
func removeTree(dir string) error {
	fd, err := os.Open(dir)
	if err != nil {
		return err
	}
	entries, err := fd.ReadDir(-1)
	fd.Close()
	if err != nil {
		return err
	}
	for _, e := range entries {
		child := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if err := removeTree(child); err != nil {
				return err
			}
			continue
		}
		if err := os.Remove(child); err != nil {
			return err
		}
	}
	return os.Remove(dir)
}
