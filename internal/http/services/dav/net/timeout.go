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
	"strconv"
	"strings"
	"time"

	"github.com/davmount/davmount/pkg/errtypes"
)

// ParseTimeout parses a Timeout header per RFC 4918 section 10.7. The client
// may send a comma separated list; the first understood entry wins. Values
// above max, "Infinite" and an absent header all clamp to max.
func ParseTimeout(s string, max time.Duration) (time.Duration, error) {
	if s == "" {
		return max, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if strings.EqualFold(part, "Infinite") {
			return max, nil
		}
		if !strings.HasPrefix(part, "Second-") {
			continue
		}
		n, err := strconv.ParseInt(strings.TrimPrefix(part, "Second-"), 10, 64)
		if err != nil || n <= 0 {
			return 0, errtypes.BadRequest("net: invalid timeout: " + part)
		}
		d := time.Duration(n) * time.Second
		if d > max {
			d = max
		}
		return d, nil
	}
	return 0, errtypes.BadRequest("net: invalid timeout: " + s)
}
