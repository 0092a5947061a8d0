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
	"html"
	"net/http"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/davmount/davmount/internal/http/services/dav/net"
	"github.com/davmount/davmount/pkg/appctx"
)

// serveListing renders the HTML directory listing for GET on a collection.
// Entries starting with a dot are hidden; subdirectories get a trailing
// slash; names are version sorted.
func (s *svc) serveListing(w http.ResponseWriter, r *http.Request, p, target string, sendBody bool) {
	ctx := r.Context()
	log := appctx.GetLogger(ctx)

	fd, err := os.Open(target)
	if err != nil {
		log.Error().Err(err).Str("target", target).Msg("error opening collection")
		w.WriteHeader(http.StatusForbidden)
		return
	}
	entries, err := fd.ReadDir(-1)
	fd.Close()
	if err != nil {
		log.Error().Err(err).Str("target", target).Msg("error listing collection")
		w.WriteHeader(http.StatusForbidden)
		return
	}

	sort.Slice(entries, func(i, j int) bool {
		return vercmp(entries[i].Name(), entries[j].Name()) < 0
	})

	base := r.URL.Path
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}

	var b strings.Builder
	b.WriteString("<html><head>")
	b.WriteString("<title>" + html.EscapeString(r.URL.Path) + "</title>")
	for _, css := range s.c.CSS {
		b.WriteString(`<link rel="stylesheet" type="text/css" href="` + html.EscapeString(css) + `"/>`)
	}
	for _, js := range s.c.Javascript {
		b.WriteString(`<script type="text/javascript" src="` + html.EscapeString(js) + `"></script>`)
	}
	b.WriteString("</head><body>")
	b.WriteString(`<div id="` + html.EscapeString(s.c.Div) + `">`)

	if p != "/" {
		b.WriteString(`<a href="` + net.EncodePath(path.Dir(strings.TrimSuffix(base, "/"))) + `">..</a><br/>`)
	}

	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		href := net.EncodePath(base + name)
		label := html.EscapeString(name)
		if e.IsDir() {
			class := ""
			if s.c.ClassDirectory != "" {
				class = ` class="` + html.EscapeString(s.c.ClassDirectory) + `"`
			}
			b.WriteString(`<a` + class + ` href="` + href + `/">` + label + `/</a><br/>`)
			continue
		}
		b.WriteString(`<a href="` + href + `">` + label + `</a><br/>`)
	}

	b.WriteString("</div></body></html>")

	body := b.String()
	addDavHeaders(w)
	w.Header().Set(net.HeaderContentType, "text/html; charset=utf-8")
	w.Header().Set(net.HeaderContentLength, strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	if sendBody {
		_, _ = w.Write([]byte(body))
	}
}

// vercmp compares two names in the style of GNU strverscmp, so that file2
// sorts before file10. Runs of digits compare numerically with leading zeros
// ignored (01 and 1 compare equal), everything else byte-wise.
func vercmp(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if isDigit(a[i]) && isDigit(b[j]) {
			ai := i
			for ai < len(a) && isDigit(a[ai]) {
				ai++
			}
			bj := j
			for bj < len(b) && isDigit(b[bj]) {
				bj++
			}
			na := strings.TrimLeft(a[i:ai], "0")
			nb := strings.TrimLeft(b[j:bj], "0")
			if len(na) != len(nb) {
				if len(na) < len(nb) {
					return -1
				}
				return 1
			}
			if c := strings.Compare(na, nb); c != 0 {
				return c
			}
			i, j = ai, bj
			continue
		}
		if a[i] != b[j] {
			if a[i] < b[j] {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case i < len(a):
		return 1
	case j < len(b):
		return -1
	default:
		return 0
	}
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
