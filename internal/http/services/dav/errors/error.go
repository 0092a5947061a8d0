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

// Package errors carries the sentinel protocol errors of the WebDAV service
// and the d:error response body.
package errors

import (
	"bytes"
	"encoding/xml"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidDepth is an invalid depth header error
	ErrInvalidDepth = errors.New("webdav: invalid depth")
	// ErrInvalidPropfind is an invalid propfind error
	ErrInvalidPropfind = errors.New("webdav: invalid propfind")
	// ErrInvalidProppatch is an invalid proppatch error
	ErrInvalidProppatch = errors.New("webdav: invalid proppatch")
	// ErrInvalidLockInfo is an invalid lock error
	ErrInvalidLockInfo = errors.New("webdav: invalid lock info")
	// ErrUnsupportedLockInfo is an unsupported lock error
	ErrUnsupportedLockInfo = errors.New("webdav: unsupported lock info")
	// ErrInvalidTimeout is an invalid timeout error
	ErrInvalidTimeout = errors.New("webdav: invalid timeout")
	// ErrInvalidIfHeader is an invalid If header error
	ErrInvalidIfHeader = errors.New("webdav: invalid If header")
	// ErrInvalidLockToken is an invalid lock token error
	ErrInvalidLockToken = errors.New("webdav: invalid lock token")
	// ErrNoMountpoints signals a request arriving before any mountpoint
	// was configured. It is the one fatal condition of the service.
	ErrNoMountpoints = errors.New("webdav: no mountpoints configured")
)

// ErrorXML holds the xml representation of an error
// http://www.webdav.org/specs/rfc4918.html#ELEMENT_error
type ErrorXML struct {
	XMLName  xml.Name `xml:"d:error"`
	Xmlnsd   string   `xml:"xmlns:d,attr"`
	Message  string   `xml:"d:responsedescription,omitempty"`
	InnerXML []byte   `xml:",innerxml"`
}

// Marshal renders a d:error body for the given condition element and message.
func Marshal(condition, message string) ([]byte, error) {
	e := &ErrorXML{Xmlnsd: "DAV:", Message: message}
	if condition != "" {
		e.InnerXML = []byte("<d:" + condition + "/>")
	}
	xmlstring, err := xml.Marshal(e)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(xmlstring)
	return buf.Bytes(), nil
}
