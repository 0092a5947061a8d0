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

package net

import (
	"net/url"
	"strings"

	"github.com/davmount/davmount/pkg/errtypes"
)

// ParseDestination extracts the request path from a Destination header.
// The header carries an absolute URL; scheme and host are dropped so the
// path can be resolved against the same mountpoint table as the request URI.
func ParseDestination(dst string) (string, error) {
	if dst == "" {
		return "", errtypes.BadRequest("net: empty destination")
	}
	u, err := url.Parse(dst)
	if err != nil {
		// strip scheme and host by hand when the URL does not parse
		if i := strings.Index(dst, "://"); i >= 0 {
			rest := dst[i+3:]
			if j := strings.Index(rest, "/"); j >= 0 {
				return rest[j:], nil
			}
			return "/", nil
		}
		return "", errtypes.BadRequest("net: invalid destination: " + dst)
	}
	if u.Path == "" {
		return "/", nil
	}
	return u.Path, nil
}
