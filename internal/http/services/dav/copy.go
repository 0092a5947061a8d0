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
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/davmount/davmount/internal/http/services/dav/net"
	"github.com/davmount/davmount/pkg/appctx"
	"github.com/davmount/davmount/pkg/mount"
	"github.com/davmount/davmount/pkg/xattrs"
)

func (s *svc) handleCopy(w http.ResponseWriter, r *http.Request, m *mount.Mountpoint, p string) {
	ctx := r.Context()
	log := appctx.GetLogger(ctx)

	src, err := m.ResolveStrict(p)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	dst, dstPath, errCode := s.moveTarget(r, m)
	if errCode != 0 {
		w.WriteHeader(errCode)
		return
	}

	if err := s.checkLock(ctx, r, dstPath); err != nil {
		w.WriteHeader(http.StatusLocked)
		return
	}

	overwrite := r.Header.Get(net.HeaderOverwrite) != "F"
	fi, lerr := os.Lstat(dst)
	exists := lerr == nil

	if exists && !overwrite {
		w.WriteHeader(http.StatusPreconditionFailed)
		return
	}
	if exists {
		if err := removeNode(dst, fi); err != nil {
			log.Error().Err(err).Str("dst", dst).Msg("error clearing copy destination")
			w.WriteHeader(http.StatusForbidden)
			return
		}
	}

	if err := copyTree(src, dst); err != nil {
		log.Error().Err(err).Str("src", src).Str("dst", dst).Msg("error copying")
		w.WriteHeader(http.StatusForbidden)
		return
	}

	addDavHeaders(w)
	if exists {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// copyTree replicates src at dst, depth first, carrying the dead properties
// of every copied entry along. Symlinks are skipped, never followed.
func copyTree(src, dst string) error {
	fi, err := os.Lstat(src)
	if err != nil {
		return err
	}

	if fi.IsDir() {
		if err := os.Mkdir(dst, fi.Mode().Perm()); err != nil {
			return err
		}
		if err := xattrs.CopyAll(src, dst); err != nil {
			return err
		}
		fd, err := os.Open(src)
		if err != nil {
			return err
		}
		entries, err := fd.ReadDir(-1)
		fd.Close()
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.Type()&os.ModeSymlink != 0 {
				continue
			}
			if err := copyTree(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
				return err
			}
		}
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fi.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return xattrs.CopyAll(src, dst)
}
