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

// davmountd serves one or more filesystem directories over WebDAV.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/zerolog"

	"github.com/davmount/davmount/internal/http/services/dav"
)

var (
	versionFlag = flag.Bool("version", false, "show version and exit")
	testFlag    = flag.Bool("t", false, "test configuration and exit")
	configFlag  = flag.String("c", "/etc/davmountd/davmountd.toml", "set configuration file")
)

// version is set at build time.
var version = "devel"

type coreConfig struct {
	LogLevel string `mapstructure:"log_level"`
	LogMode  string `mapstructure:"log_mode"`
	Address  string `mapstructure:"address"`
}

// webdav methods chi does not know out of the box
var davMethods = []string{"PROPFIND", "PROPPATCH", "MKCOL", "COPY", "MOVE", "LOCK", "UNLOCK"}

func init() {
	for _, m := range davMethods {
		chi.RegisterMethod(m)
	}
}

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(version)
		os.Exit(0)
	}

	v, err := readConfigFile(*configFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	core := &coreConfig{}
	if err := mapstructure.Decode(section(v, "core"), core); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if core.Address == "" {
		core.Address = ":9090"
	}

	log := newLogger(core.LogLevel, core.LogMode)

	svc, err := dav.New(section(v, "dav"), &log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating dav service")
	}

	if *testFlag {
		fmt.Println("configuration ok")
		os.Exit(0)
	}

	prefix := "/"
	if p, ok := svc.(interface{ Prefix() string }); ok && p.Prefix() != "" {
		prefix = path.Join("/", p.Prefix())
	}

	r := chi.NewRouter()
	r.Mount(prefix, svc)

	server := &http.Server{
		Addr:    core.Address,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("address", core.Address).Str("prefix", prefix).Msg("davmountd listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("error running http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("error shutting down http server")
	}
}

func newLogger(level, mode string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	var out = zerolog.MultiLevelWriter(os.Stderr)
	if mode == "dev" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl).With().Timestamp().Logger()
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
