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
	"strconv"

	"github.com/davmount/davmount/internal/http/services/dav/net"
	"github.com/davmount/davmount/pkg/appctx"
	"github.com/davmount/davmount/pkg/mime"
	"github.com/davmount/davmount/pkg/mount"
)

func (s *svc) handleGet(w http.ResponseWriter, r *http.Request, m *mount.Mountpoint, p string) {
	s.serveResource(w, r, m, p, true)
}

func (s *svc) handleHead(w http.ResponseWriter, r *http.Request, m *mount.Mountpoint, p string) {
	s.serveResource(w, r, m, p, false)
}

func (s *svc) serveResource(w http.ResponseWriter, r *http.Request, m *mount.Mountpoint, p string, sendBody bool) {
	ctx := r.Context()
	log := appctx.GetLogger(ctx)

	target, err := m.ResolveStrict(p)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	fi, err := os.Stat(target)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if fi.IsDir() {
		s.serveListing(w, r, p, target, sendBody)
		return
	}

	fd, err := os.Open(target)
	if err != nil {
		log.Error().Err(err).Str("target", target).Msg("error opening file")
		w.WriteHeader(http.StatusForbidden)
		return
	}
	defer fd.Close()

	addDavHeaders(w)
	w.Header().Set(net.HeaderContentType, mime.Detect(false, target))
	w.Header().Set(net.HeaderContentLength, strconv.FormatInt(fi.Size(), 10))
	w.Header().Set(net.HeaderLastModified, net.FormatDate(fi.ModTime()))
	w.WriteHeader(http.StatusOK)

	if !sendBody {
		return
	}
	if _, err := io.Copy(w, fd); err != nil {
		// the status is already on the wire, all we can do is log and stop
		log.Error().Err(err).Str("target", target).Msg("error writing body")
	}
}
