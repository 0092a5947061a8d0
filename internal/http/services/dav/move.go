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

	"github.com/davmount/davmount/internal/http/services/dav/net"
	"github.com/davmount/davmount/pkg/appctx"
	"github.com/davmount/davmount/pkg/mount"
)

// moveTarget resolves the Destination header against the mountpoint table.
// Cross-mount destinations are refused: a mountpoint is a filesystem
// boundary and rename does not cross it.
func (s *svc) moveTarget(r *http.Request, m *mount.Mountpoint) (string, string, int) {
	dstPath, err := net.ParseDestination(r.Header.Get(net.HeaderDestination))
	if err != nil {
		return "", "", http.StatusBadRequest
	}
	dm, dstRest, ok := s.mounts.Lookup(dstPath)
	if !ok || dm != m {
		return "", "", http.StatusBadGateway
	}
	target, err := dm.ResolveParent(dstRest)
	if err != nil {
		return "", "", http.StatusConflict
	}
	return target, dstPath, 0
}

func (s *svc) handleMove(w http.ResponseWriter, r *http.Request, m *mount.Mountpoint, p string) {
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

	if err := s.checkLock(ctx, r, r.URL.Path); err != nil {
		w.WriteHeader(http.StatusLocked)
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
			log.Error().Err(err).Str("dst", dst).Msg("error clearing move destination")
			w.WriteHeader(http.StatusForbidden)
			return
		}
	}

	if err := os.Rename(src, dst); err != nil {
		log.Error().Err(err).Str("src", src).Str("dst", dst).Msg("error renaming")
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

func removeNode(p string, fi os.FileInfo) error {
	if fi.IsDir() {
		return removeTree(p)
	}
	return os.Remove(p)
}
