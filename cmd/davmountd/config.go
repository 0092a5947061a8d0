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

package main

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// readConfig reads the toml configuration from the reader.
func readConfig(r io.Reader) (map[string]interface{}, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "config: error reading from reader")
	}

	v := map[string]interface{}{}
	if err := toml.Unmarshal(data, &v); err != nil {
		return nil, errors.Wrap(err, "config: error decoding toml data")
	}

	return v, nil
}

// readConfigFile reads the toml configuration from fn.
func readConfigFile(fn string) (map[string]interface{}, error) {
	fd, err := os.Open(fn)
	if err != nil {
		return nil, errors.Wrap(err, "config: error opening "+fn)
	}
	defer fd.Close()
	return readConfig(fd)
}

// section returns the named sub-table of the configuration, or an empty map.
func section(v map[string]interface{}, name string) map[string]interface{} {
	if s, ok := v[name].(map[string]interface{}); ok {
		return s
	}
	return map[string]interface{}{}
}
