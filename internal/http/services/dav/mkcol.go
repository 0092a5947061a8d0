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

func (s *svc) handleMkcol(w http.ResponseWriter, r *http.Request, m *mount.Mountpoint, p string) {
	ctx := r.Context()
	log := appctx.GetLogger(ctx)

	// RFC 4918 leaves MKCOL request bodies undefined, we refuse them
	buf := make([]byte, 1)
	if _, err := r.Body.Read(buf); err != io.EOF {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		return
	}

	if err := s.checkLock(ctx, r, r.URL.Path); err != nil {
		w.WriteHeader(http.StatusLocked)
		return
	}

	if _, err := m.ResolveStrict(p); err == nil {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	target, err := m.ResolveParent(p)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		return
	}

	if err := os.Mkdir(target, 0755); err != nil {
		if os.IsNotExist(err) {
			w.WriteHeader(http.StatusConflict)
			return
		}
		log.Error().Err(err).Str("target", target).Msg("error creating collection")
		w.WriteHeader(http.StatusForbidden)
		return
	}

	addDavHeaders(w)
	w.WriteHeader(http.StatusCreated)
}
