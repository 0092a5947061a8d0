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
	"bytes"
	"encoding/xml"
	"io"
	"net/http"

	"github.com/davmount/davmount/internal/http/services/dav/errors"
	"github.com/davmount/davmount/internal/http/services/dav/net"
	"github.com/davmount/davmount/internal/http/services/dav/propfind"
	"github.com/davmount/davmount/internal/http/services/dav/props"
	"github.com/davmount/davmount/pkg/appctx"
	"github.com/davmount/davmount/pkg/mount"
	"github.com/davmount/davmount/pkg/xattrs"
)

func (s *svc) handleProppatch(w http.ResponseWriter, r *http.Request, m *mount.Mountpoint, p string) {
	ctx := r.Context()
	log := appctx.GetLogger(ctx)

	target, err := m.ResolveStrict(p)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if err := s.checkLock(ctx, r, r.URL.Path); err != nil {
		w.WriteHeader(http.StatusLocked)
		return
	}

	patches, status, err := readProppatch(r.Body)
	if err != nil {
		log.Debug().Err(err).Msg("error reading proppatch body")
		w.WriteHeader(status)
		return
	}

	okStat := propfind.PropstatXML{Status: net.StatusLine(r.Proto, http.StatusOK)}
	failStat := propfind.PropstatXML{Status: net.StatusLine(r.Proto, http.StatusForbidden)}

	for _, patch := range patches {
		for i := range patch.Props {
			prop := &patch.Props[i]
			ns, name := prop.XMLName.Space, prop.XMLName.Local
			if patch.Remove {
				err = xattrs.Remove(target, ns, name)
			} else {
				err = xattrs.Set(target, ns, name, prop.InnerXML)
			}
			entry := &props.PropertyXML{XMLName: prop.XMLName}
			if err != nil {
				log.Debug().Err(err).Str("prop", name).Msg("error updating property")
				failStat.Prop = append(failStat.Prop, entry)
				continue
			}
			okStat.Prop = append(okStat.Prop, entry)
		}
	}

	response := &propfind.ResponseXML{Href: net.EncodePath(r.URL.Path)}
	if len(okStat.Prop) > 0 {
		response.Propstat = append(response.Propstat, okStat)
	}
	if len(failStat.Prop) > 0 {
		response.Propstat = append(response.Propstat, failStat)
	}
	if len(response.Propstat) == 0 {
		response.Propstat = append(response.Propstat, okStat)
	}

	msr := propfind.NewMultiStatusResponseXML()
	msr.Responses = []*propfind.ResponseXML{response}
	msg, err := xml.Marshal(msr)
	if err != nil {
		log.Error().Err(err).Msg("error marshalling multistatus")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(msg)
	writeXML(w, http.StatusMultiStatus, buf.Bytes())
}

// Proppatch describes a property update instruction as defined in RFC 4918.
// See http://www.webdav.org/specs/rfc4918.html#METHOD_PROPPATCH
type Proppatch struct {
	// Remove specifies whether this patch removes properties. If it does not
	// remove them, it sets them.
	Remove bool
	// Props contains the properties to be set or removed.
	Props []props.PropertyXML
}

type xmlValue []byte

func (v *xmlValue) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	// The XML value of a property can be arbitrary, mixed-content XML.
	// To make sure that the unmarshalled value contains all required
	// namespaces, we encode all the property value XML tokens into a
	// buffer. This forces the encoder to redeclare any used namespaces.
	var b bytes.Buffer
	e := xml.NewEncoder(&b)
	for {
		t, err := props.Next(d)
		if err != nil {
			return err
		}
		if e, ok := t.(xml.EndElement); ok && e.Name == start.Name {
			break
		}
		if err = e.EncodeToken(t); err != nil {
			return err
		}
	}
	if err := e.Flush(); err != nil {
		return err
	}
	*v = b.Bytes()
	return nil
}

// http://www.webdav.org/specs/rfc4918.html#ELEMENT_prop (for proppatch)
type proppatchProps []props.PropertyXML

// UnmarshalXML appends the property names and values enclosed within start
// to ps.
//
// An xml:lang attribute that is defined either on the DAV:prop or property
// name XML element is propagated to the property's Lang field.
//
// UnmarshalXML returns an error if start does not contain any properties or if
// property values contain syntactically incorrect XML.
func (ps *proppatchProps) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	lang := xmlLang(start, "")
	for {
		t, err := props.Next(d)
		if err != nil {
			return err
		}
		switch elem := t.(type) {
		case xml.EndElement:
			if len(*ps) == 0 {
				return errors.ErrInvalidProppatch
			}
			return nil
		case xml.StartElement:
			p := props.PropertyXML{
				XMLName: elem.Name,
				Lang:    xmlLang(elem, lang),
			}
			if err := d.DecodeElement((*xmlValue)(&p.InnerXML), &elem); err != nil {
				return err
			}
			*ps = append(*ps, p)
		}
	}
}

// http://www.webdav.org/specs/rfc4918.html#ELEMENT_set
// http://www.webdav.org/specs/rfc4918.html#ELEMENT_remove
type setRemove struct {
	XMLName xml.Name
	Lang    string         `xml:"xml:lang,attr,omitempty"`
	Prop    proppatchProps `xml:"DAV: prop"`
}

// http://www.webdav.org/specs/rfc4918.html#ELEMENT_propertyupdate
type propertyupdate struct {
	XMLName   xml.Name    `xml:"DAV: propertyupdate"`
	Lang      string      `xml:"xml:lang,attr,omitempty"`
	SetRemove []setRemove `xml:",any"`
}

func readProppatch(r io.Reader) (patches []Proppatch, status int, err error) {
	var pu propertyupdate
	if err = xml.NewDecoder(r).Decode(&pu); err != nil {
		return nil, http.StatusBadRequest, err
	}
	for _, op := range pu.SetRemove {
		remove := false
		switch op.XMLName {
		case xml.Name{Space: net.NsDav, Local: "set"}:
			// No-op.
		case xml.Name{Space: net.NsDav, Local: "remove"}:
			for _, p := range op.Prop {
				if len(p.InnerXML) > 0 {
					return nil, http.StatusBadRequest, errors.ErrInvalidProppatch
				}
			}
			remove = true
		default:
			return nil, http.StatusBadRequest, errors.ErrInvalidProppatch
		}
		patches = append(patches, Proppatch{Remove: remove, Props: op.Prop})
	}
	return patches, 0, nil
}

var xmlLangName = xml.Name{Space: "http://www.w3.org/XML/1998/namespace", Local: "lang"}

func xmlLang(s xml.StartElement, d string) string {
	for _, attr := range s.Attr {
		if attr.Name == xmlLangName {
			return attr.Value
		}
	}
	return d
}
