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

// Package dav implements a class 1 and 2 WebDAV service on top of one or
// more filesystem mountpoints.
package dav

import (
	"net/http"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/davmount/davmount/internal/http/services/dav/net"
	"github.com/davmount/davmount/pkg/appctx"
	"github.com/davmount/davmount/pkg/cache"

	// cache drivers
	_ "github.com/davmount/davmount/pkg/cache/memory"
	_ "github.com/davmount/davmount/pkg/cache/redis"
	"github.com/davmount/davmount/pkg/lock"
	"github.com/davmount/davmount/pkg/mount"
)

// Config holds the config options of the dav service.
type Config struct {
	// Prefix the service is mounted under, without slashes.
	Prefix string `mapstructure:"prefix"`
	// Mountpoints maps URL prefixes to docroot directories.
	Mountpoints map[string]string `mapstructure:"mountpoints"`
	// CSS and Javascript are link targets injected into directory listings.
	CSS        []string `mapstructure:"css"`
	Javascript []string `mapstructure:"javascript"`
	// ClassDirectory is the CSS class given to directory entries in listings.
	ClassDirectory string `mapstructure:"class_directory"`
	// Div is the identifier of the element wrapping a directory listing.
	Div string `mapstructure:"div"`
	// LockCache selects the cache driver backing the lock registry.
	LockCache        string                 `mapstructure:"lock_cache"`
	LockCacheOptions map[string]interface{} `mapstructure:"lock_cache_options"`
	// LockTimeout caps lock lifetimes, in seconds.
	LockTimeout int64 `mapstructure:"lock_timeout"`
}

func (c *Config) init() {
	if c.LockCache == "" {
		c.LockCache = "memory"
	}
	if c.LockTimeout <= 0 {
		c.LockTimeout = 3600
	}
	if c.Div == "" {
		c.Div = "listing"
	}
}

type svc struct {
	c      *Config
	mounts mount.Table
	locks  *lock.Manager
	log    *zerolog.Logger
}

// New returns a new dav service.
func New(m map[string]interface{}, log *zerolog.Logger) (http.Handler, error) {
	conf := &Config{}
	if err := mapstructure.Decode(m, conf); err != nil {
		return nil, errors.Wrap(err, "dav: error decoding config")
	}
	conf.init()

	mounts, err := mount.NewTable(conf.Mountpoints)
	if err != nil {
		return nil, err
	}

	lc, err := cache.New(conf.LockCache, conf.LockCacheOptions)
	if err != nil {
		return nil, errors.Wrap(err, "dav: error creating lock cache")
	}

	return &svc{
		c:      conf,
		mounts: mounts,
		locks:  lock.NewManager(lc),
		log:    log,
	}, nil
}

// Prefix returns the URL prefix the service wants to be mounted under.
func (s *svc) Prefix() string {
	return s.c.Prefix
}

func (s *svc) lockTimeout() time.Duration {
	return time.Duration(s.c.LockTimeout) * time.Second
}

func (s *svc) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := s.log.With().Str("method", r.Method).Str("path", r.URL.Path).Logger()
	ctx := appctx.WithLogger(r.Context(), &log)
	r = r.WithContext(ctx)

	log.Debug().Str("proto", r.Proto).Msg("http request")

	if len(s.mounts) == 0 {
		// the one fatal condition: the module is unusable without mountpoints
		log.Error().Msg("no mountpoints configured")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if r.Method == http.MethodOptions {
		s.handleOptions(w, r)
		return
	}

	m, rest, ok := s.mounts.Lookup(r.URL.Path)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGet(w, r, m, rest)
	case http.MethodHead:
		s.handleHead(w, r, m, rest)
	case http.MethodPut:
		s.handlePut(w, r, m, rest)
	case http.MethodDelete:
		s.handleDelete(w, r, m, rest)
	case "MKCOL":
		s.handleMkcol(w, r, m, rest)
	case "COPY":
		s.handleCopy(w, r, m, rest)
	case "MOVE":
		s.handleMove(w, r, m, rest)
	case "PROPFIND":
		s.handlePropfind(w, r, m, rest)
	case "PROPPATCH":
		s.handleProppatch(w, r, m, rest)
	case "LOCK":
		s.handleLock(w, r, m, rest)
	case "UNLOCK":
		s.handleUnlock(w, r, m, rest)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// addDavHeaders marks a response as coming from a class 1 and 2 server.
func addDavHeaders(w http.ResponseWriter) {
	w.Header().Set(net.HeaderDav, "1, 2")
}

func writeXML(w http.ResponseWriter, status int, body []byte) {
	addDavHeaders(w)
	w.Header().Set(net.HeaderContentType, `application/xml; charset="utf-8"`)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
