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
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/davmount/davmount/internal/http/services/dav/net"
	"github.com/davmount/davmount/internal/http/services/dav/propfind"
	"github.com/davmount/davmount/pkg/appctx"
	"github.com/davmount/davmount/pkg/mime"
	"github.com/davmount/davmount/pkg/mount"
	"github.com/davmount/davmount/pkg/xattrs"
)

func (s *svc) handlePropfind(w http.ResponseWriter, r *http.Request, m *mount.Mountpoint, p string) {
	ctx := r.Context()
	log := appctx.GetLogger(ctx)

	target, err := m.ResolveStrict(p)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	depth, err := net.ParseDepth(r.Header.Get(net.HeaderDepth))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	pf, status, err := propfind.ReadPropfind(r.Body)
	if err != nil {
		log.Debug().Err(err).Msg("error reading propfind body")
		w.WriteHeader(status)
		return
	}

	fi, err := os.Stat(target)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	infos := []*propfind.ResourceInfo{resourceInfo(r.URL.Path, target, fi)}
	if fi.IsDir() && depth != net.DepthZero {
		infos = append(infos, s.children(r.URL.Path, target, depth == net.DepthInfinity)...)
	}

	body, err := propfind.MultistatusResponse(&pf, infos, r.Proto)
	if err != nil {
		log.Error().Err(err).Msg("error marshalling multistatus")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	writeXML(w, http.StatusMultiStatus, body)
}

// children enumerates the entries below a collection in filesystem order.
// Entries whose stat fails are omitted: the listing must still be produced
// for the entries that can be read.
func (s *svc) children(urlPath, dir string, recurse bool) []*propfind.ResourceInfo {
	fd, err := os.Open(dir)
	if err != nil {
		return nil
	}
	entries, err := fd.ReadDir(-1)
	fd.Close()
	if err != nil {
		return nil
	}

	infos := make([]*propfind.ResourceInfo, 0, len(entries))
	for _, e := range entries {
		fi, err := e.Info()
		if err != nil {
			continue
		}
		childURL := path.Join(urlPath, e.Name())
		childFS := filepath.Join(dir, e.Name())
		infos = append(infos, resourceInfo(childURL, childFS, fi))
		if recurse && fi.IsDir() {
			infos = append(infos, s.children(childURL, childFS, true)...)
		}
	}
	return infos
}

// resourceInfo derives the live properties of one filesystem object and
// loads its dead properties.
func resourceInfo(urlPath, fsPath string, fi os.FileInfo) *propfind.ResourceInfo {
	ref := urlPath
	if fi.IsDir() && ref != "/" {
		ref += "/"
	}
	ri := &propfind.ResourceInfo{
		Ref:       ref,
		Display:   urlPath,
		IsDir:     fi.IsDir(),
		Size:      fi.Size(),
		MTime:     fi.ModTime(),
		CTime:     statCtime(fi),
		DeadProps: xattrs.List(fsPath),
	}
	if !fi.IsDir() {
		ri.ContentType = mime.Detect(false, fsPath)
		ri.Executable = fi.Mode()&0100 != 0
	}
	return ri
}

// statCtime approximates the creation date with the inode change time, the
// closest thing to a birth time the portable stat result carries.
func statCtime(fi os.FileInfo) time.Time {
	if st, ok := fi.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
	}
	return fi.ModTime()
}
