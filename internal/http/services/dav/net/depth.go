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
	"strings"

	"github.com/davmount/davmount/pkg/errtypes"
)

// Depth is a WebDAV depth header value.
type Depth string

const (
	// DepthZero applies an operation to the target only.
	DepthZero Depth = "0"
	// DepthOne applies an operation to the target and its immediate children.
	DepthOne Depth = "1"
	// DepthInfinity applies an operation to the whole subtree.
	DepthInfinity Depth = "infinity"
)

// String returns the header representation of d.
func (d Depth) String() string {
	return string(d)
}

// ParseDepth parses a Depth header value. An absent header means the whole
// subtree, as RFC 4918 specifies for PROPFIND.
func ParseDepth(s string) (Depth, error) {
	switch strings.ToLower(s) {
	case "":
		return DepthInfinity, nil
	case "0":
		return DepthZero, nil
	case "1":
		return DepthOne, nil
	case "infinity":
		return DepthInfinity, nil
	default:
		return "", errtypes.BadRequest("net: invalid depth: " + s)
	}
}
