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
	"context"
	"net/http"
	"strings"

	"github.com/davmount/davmount/internal/http/services/dav/net"
	"github.com/davmount/davmount/pkg/errtypes"
)

// lockURI builds the fully qualified URI a lock is keyed by. Scheme and host
// are included so the same directory exported through two virtual hosts is
// locked independently.
func lockURI(r *http.Request, urlPath string) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if urlPath != "/" {
		urlPath = strings.TrimSuffix(urlPath, "/")
	}
	return scheme + "://" + r.Host + urlPath
}

// parseToken extracts the first coded URL from a header value like
// (<opaquelocktoken:...>) or <opaquelocktoken:...>.
func parseToken(v string) string {
	i := strings.Index(v, "<")
	if i < 0 {
		return ""
	}
	j := strings.Index(v[i:], ">")
	if j < 0 {
		return ""
	}
	return v[i+1 : i+j]
}

// submittedToken returns the lock token the client presented for this
// request, from the If header or, failing that, the Lock-Token header.
func submittedToken(r *http.Request) string {
	if t := parseToken(r.Header.Get(net.HeaderIf)); t != "" {
		return t
	}
	return parseToken(r.Header.Get(net.HeaderLockToken))
}

// checkLock verifies that the resource at urlPath is not locked by someone
// else. A held lock whose token the client did not present yields
// errtypes.Locked.
func (s *svc) checkLock(ctx context.Context, r *http.Request, urlPath string) error {
	uri := lockURI(r, urlPath)
	l, err := s.locks.Get(ctx, uri)
	if err != nil {
		if _, ok := err.(errtypes.IsNotFound); ok {
			return nil
		}
		return err
	}
	if submittedToken(r) == l.Token {
		return nil
	}
	return errtypes.Locked(uri)
}
