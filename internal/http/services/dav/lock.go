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
	"encoding/xml"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/davmount/davmount/internal/http/services/dav/net"
	"github.com/davmount/davmount/internal/http/services/dav/props"
	"github.com/davmount/davmount/pkg/appctx"
	"github.com/davmount/davmount/pkg/errtypes"
	"github.com/davmount/davmount/pkg/lock"
	"github.com/davmount/davmount/pkg/mount"
)

// http://www.webdav.org/specs/rfc4918.html#ELEMENT_owner
type owner struct {
	InnerXML string `xml:",innerxml"`
}

// http://www.webdav.org/specs/rfc4918.html#ELEMENT_lockinfo
type lockInfo struct {
	XMLName   xml.Name  `xml:"DAV: lockinfo"`
	Shared    *struct{} `xml:"DAV: lockscope>shared"`
	Exclusive *struct{} `xml:"DAV: lockscope>exclusive"`
	Write     *struct{} `xml:"DAV: locktype>write"`
	Owner     owner     `xml:"DAV: owner"`
}

// readLockInfo parses a LOCK body. An empty body asks to refresh an existing
// lock and yields a zero lockInfo and refresh == true.
func readLockInfo(r io.Reader) (li lockInfo, refresh bool, status int, err error) {
	c := countingReader{r: r}
	if err = xml.NewDecoder(&c).Decode(&li); err != nil {
		if err == io.EOF && c.n == 0 {
			// http://www.webdav.org/specs/rfc4918.html#refreshing-locks
			return lockInfo{}, true, 0, nil
		}
		return lockInfo{}, false, http.StatusBadRequest, err
	}
	// only exclusive write locks are supported
	if li.Shared != nil || li.Exclusive == nil || li.Write == nil {
		return lockInfo{}, false, http.StatusNotImplemented, nil
	}
	return li, false, 0, nil
}

type countingReader struct {
	n int
	r io.Reader
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func (s *svc) handleLock(w http.ResponseWriter, r *http.Request, m *mount.Mountpoint, p string) {
	ctx := r.Context()
	log := appctx.GetLogger(ctx)

	ttl, err := net.ParseTimeout(r.Header.Get(net.HeaderTimeout), s.lockTimeout())
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	depth, err := net.ParseDepth(r.Header.Get(net.HeaderDepth))
	if err != nil || depth == net.DepthOne {
		// a lock is either on the resource or on the whole subtree
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	li, refresh, status, err := readLockInfo(r.Body)
	if err != nil || status != 0 {
		log.Debug().Err(err).Msg("unusable lockinfo body")
		if status == 0 {
			status = http.StatusBadRequest
		}
		w.WriteHeader(status)
		return
	}

	uri := lockURI(r, r.URL.Path)

	if refresh {
		token := submittedToken(r)
		if token == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		l, err := s.locks.Refresh(ctx, uri, token, ttl)
		if err != nil {
			w.WriteHeader(http.StatusPreconditionFailed)
			return
		}
		writeXML(w, http.StatusOK, lockDiscovery(l))
		return
	}

	l, err := s.locks.Acquire(ctx, uri, li.Owner.InnerXML, depth.String(), ttl)
	if err != nil {
		if _, ok := err.(errtypes.IsLocked); ok {
			w.WriteHeader(http.StatusLocked)
			return
		}
		log.Error().Err(err).Str("uri", uri).Msg("error acquiring lock")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	// locking an unmapped URL creates an empty resource, RFC 4918 section 9.10.4
	created := false
	if _, err := m.ResolveStrict(p); err != nil {
		target, err := m.ResolveParent(p)
		if err != nil {
			_ = s.locks.Release(ctx, uri, l.Token)
			w.WriteHeader(http.StatusConflict)
			return
		}
		fd, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if err != nil {
			_ = s.locks.Release(ctx, uri, l.Token)
			w.WriteHeader(http.StatusForbidden)
			return
		}
		fd.Close()
		created = true
	}

	w.Header().Set(net.HeaderLockToken, "<"+l.Token+">")
	if created {
		writeXML(w, http.StatusCreated, lockDiscovery(l))
		return
	}
	writeXML(w, http.StatusOK, lockDiscovery(l))
}

func (s *svc) handleUnlock(w http.ResponseWriter, r *http.Request, m *mount.Mountpoint, p string) {
	ctx := r.Context()

	token := parseToken(r.Header.Get(net.HeaderLockToken))
	if token == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if err := s.locks.Release(ctx, lockURI(r, r.URL.Path), token); err != nil {
		w.WriteHeader(http.StatusConflict)
		return
	}

	addDavHeaders(w)
	w.WriteHeader(http.StatusNoContent)
}

// lockDiscovery renders the prop/lockdiscovery/activelock body returned by
// LOCK. xml.Encoder cannot render empty tags like <d:write/>, see
// https://github.com/golang/go/issues/21399, so the body is built by hand.
func lockDiscovery(l *lock.Lock) []byte {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<d:prop xmlns:d="DAV:"><d:lockdiscovery><d:activelock>`)
	b.WriteString("<d:locktype><d:write/></d:locktype>")
	b.WriteString("<d:lockscope><d:exclusive/></d:lockscope>")
	b.WriteString("<d:depth>" + l.Depth + "</d:depth>")
	if l.Owner != "" {
		b.WriteString("<d:owner>" + l.Owner + "</d:owner>")
	}
	b.WriteString("<d:timeout>Second-" + strconv.FormatInt(l.Timeout, 10) + "</d:timeout>")
	b.WriteString("<d:locktoken><d:href>" + props.Escape(l.Token) + "</d:href></d:locktoken>")
	b.WriteString("</d:activelock></d:lockdiscovery></d:prop>")
	return []byte(b.String())
}
