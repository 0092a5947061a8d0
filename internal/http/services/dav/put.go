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

	"github.com/davmount/davmount/pkg/appctx"
	"github.com/davmount/davmount/pkg/mount"
)

func (s *svc) handlePut(w http.ResponseWriter, r *http.Request, m *mount.Mountpoint, p string) {
	ctx := r.Context()
	log := appctx.GetLogger(ctx)

	if err := s.checkLock(ctx, r, r.URL.Path); err != nil {
		w.WriteHeader(http.StatusLocked)
		return
	}

	target, err := m.ResolveParent(p)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		return
	}

	fd, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		log.Error().Err(err).Str("target", target).Msg("error opening file for writing")
		w.WriteHeader(http.StatusForbidden)
		return
	}
	defer fd.Close()

	if _, err := io.Copy(fd, r.Body); err != nil {
		// a partial file stays behind, the client is expected to retry
		log.Error().Err(err).Str("target", target).Msg("error writing file")
		w.WriteHeader(http.StatusForbidden)
		return
	}

	addDavHeaders(w)
	w.WriteHeader(http.StatusCreated)
}
