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

// Package xattrs persists dead WebDAV properties as extended attributes on
// the resource they belong to. Live properties are derived by stat and never
// stored here.
package xattrs

import (
	"encoding/xml"
	"strings"

	"github.com/pkg/xattr"

	"github.com/davmount/davmount/pkg/errtypes"
)

// Prefix is the extended attribute namespace reserved for dead properties.
const Prefix = "user.davmount.webdav."

// nsSeparator splits the XML namespace from the property name inside an
// attribute key. It must not occur in a namespace URI.
const nsSeparator = "|"

// Key encodes an XML namespace and property name into an attribute key.
// The encoding round-trips: Decode(Key(ns, name)) == (ns, name).
func Key(ns, name string) (string, error) {
	if strings.Contains(ns, nsSeparator) {
		return "", errtypes.BadRequest("xattrs: namespace contains reserved separator: " + ns)
	}
	if ns == "" {
		return Prefix + name, nil
	}
	return Prefix + ns + nsSeparator + name, nil
}

// Decode splits an attribute key produced by Key back into the
// namespace and name pair. It reports false for foreign attributes.
func Decode(key string) (xml.Name, bool) {
	if !strings.HasPrefix(key, Prefix) {
		return xml.Name{}, false
	}
	k := strings.TrimPrefix(key, Prefix)
	if i := strings.Index(k, nsSeparator); i >= 0 {
		return xml.Name{Space: k[:i], Local: k[i+1:]}, true
	}
	return xml.Name{Local: k}, true
}

// Set stores a dead property on path, overwriting any previous value.
func Set(path, ns, name string, value []byte) error {
	key, err := Key(ns, name)
	if err != nil {
		return err
	}
	if err := xattr.Set(path, key, value); err != nil {
		return errtypes.PermissionDenied("xattrs: error setting " + key + " on " + path)
	}
	return nil
}

// Remove deletes a dead property from path. Removing a property that is not
// set succeeds, as RFC 4918 requires for PROPPATCH remove.
func Remove(path, ns, name string) error {
	key, err := Key(ns, name)
	if err != nil {
		return err
	}
	if err := xattr.Remove(path, key); err != nil {
		if e, ok := err.(*xattr.Error); ok && e.Err == xattr.ENOATTR {
			return nil
		}
		return errtypes.PermissionDenied("xattrs: error removing " + key + " from " + path)
	}
	return nil
}

// List returns all dead properties stored on path. Resources without dead
// properties and filesystems without xattr support yield an empty map:
// a PROPFIND over a collection must not fail because one entry cannot be
// read.
func List(path string) map[xml.Name][]byte {
	props := map[xml.Name][]byte{}
	attrs, err := xattr.List(path)
	if err != nil {
		return props
	}
	for _, a := range attrs {
		n, ok := Decode(a)
		if !ok {
			continue
		}
		v, err := xattr.Get(path, a)
		if err != nil {
			continue
		}
		props[n] = v
	}
	return props
}

// CopyAll replicates the dead properties of src onto dst. It is used by COPY
// so that copied resources keep their properties.
func CopyAll(src, dst string) error {
	for n, v := range List(src) {
		if err := Set(dst, n.Space, n.Local, v); err != nil {
			return err
		}
	}
	return nil
}
