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

// Package propfind parses PROPFIND request bodies and renders multistatus
// responses from filesystem state.
package propfind

import (
	"encoding/xml"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/davmount/davmount/internal/http/services/dav/errors"
	"github.com/davmount/davmount/internal/http/services/dav/net"
	"github.com/davmount/davmount/internal/http/services/dav/props"
)

type countingReader struct {
	n int
	r io.Reader
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

// Props represents properties related to a resource
// http://www.webdav.org/specs/rfc4918.html#ELEMENT_prop (for propfind)
type Props []xml.Name

// XML holds the xml representation of a propfind
// http://www.webdav.org/specs/rfc4918.html#ELEMENT_propfind
type XML struct {
	XMLName  xml.Name  `xml:"DAV: propfind"`
	Allprop  *struct{} `xml:"DAV: allprop"`
	Propname *struct{} `xml:"DAV: propname"`
	Prop     Props     `xml:"DAV: prop"`
	Include  Props     `xml:"DAV: include"`
}

// PropstatXML holds the xml representation of a propstat
// http://www.webdav.org/specs/rfc4918.html#ELEMENT_propstat
type PropstatXML struct {
	// Prop requires DAV: to be the default namespace in the enclosing
	// XML. This is due to the standard encoding/xml package currently
	// not honoring namespace declarations inside a xmltag with a
	// parent element for anonymous slice elements.
	Prop                []*props.PropertyXML `xml:"d:prop>_ignored_"`
	Status              string               `xml:"d:status"`
	Error               *errors.ErrorXML     `xml:"d:error"`
	ResponseDescription string               `xml:"d:responsedescription,omitempty"`
}

// ResponseXML holds the xml representation of a response inside a multistatus
type ResponseXML struct {
	XMLName             xml.Name         `xml:"d:response"`
	Href                string           `xml:"d:href"`
	Propstat            []PropstatXML    `xml:"d:propstat"`
	Status              string           `xml:"d:status,omitempty"`
	Error               *errors.ErrorXML `xml:"d:error"`
	ResponseDescription string           `xml:"d:responsedescription,omitempty"`
}

// MultiStatusResponseXML holds the xml representation of a multistatus response
type MultiStatusResponseXML struct {
	XMLName xml.Name `xml:"d:multistatus"`
	XmlnsD  string   `xml:"xmlns:d,attr,omitempty"`

	Responses []*ResponseXML `xml:"d:response"`
}

// NewMultiStatusResponseXML returns a preconfigured instance of MultiStatusResponseXML
func NewMultiStatusResponseXML() *MultiStatusResponseXML {
	return &MultiStatusResponseXML{
		XmlnsD: net.NsDav,
	}
}

// ResponseUnmarshalXML is a workaround for https://github.com/golang/go/issues/13400
type ResponseUnmarshalXML struct {
	XMLName             xml.Name               `xml:"response"`
	Href                string                 `xml:"href"`
	Propstat            []PropstatUnmarshalXML `xml:"propstat"`
	Status              string                 `xml:"status,omitempty"`
	ResponseDescription string                 `xml:"responsedescription,omitempty"`
}

// MultiStatusResponseUnmarshalXML is a workaround for https://github.com/golang/go/issues/13400
type MultiStatusResponseUnmarshalXML struct {
	XMLName xml.Name `xml:"multistatus"`
	XmlnsD  string   `xml:"xmlns:d,attr,omitempty"`

	Responses []*ResponseUnmarshalXML `xml:"response"`
}

// PropstatUnmarshalXML is a workaround for https://github.com/golang/go/issues/13400
type PropstatUnmarshalXML struct {
	Prop                []*props.PropertyXML `xml:"prop"`
	Status              string               `xml:"status"`
	ResponseDescription string               `xml:"responsedescription,omitempty"`
}

// ReadPropfind extracts and parses the propfind XML information from a Reader
// from https://github.com/golang/net/blob/e514e69ffb8bc3c76a71ae40de0118d794855992/webdav/xml.go#L178-L205
func ReadPropfind(r io.Reader) (pf XML, status int, err error) {
	c := countingReader{r: r}
	if err = xml.NewDecoder(&c).Decode(&pf); err != nil {
		if err == io.EOF {
			if c.n == 0 {
				// An empty body means to propfind allprop.
				// http://www.webdav.org/specs/rfc4918.html#METHOD_PROPFIND
				return XML{Allprop: new(struct{})}, 0, nil
			}
			err = errors.ErrInvalidPropfind
		}
		return XML{}, http.StatusBadRequest, err
	}

	if pf.Allprop == nil && pf.Include != nil {
		return XML{}, http.StatusBadRequest, errors.ErrInvalidPropfind
	}
	if pf.Allprop != nil && (pf.Prop != nil || pf.Propname != nil) {
		return XML{}, http.StatusBadRequest, errors.ErrInvalidPropfind
	}
	if pf.Prop != nil && pf.Propname != nil {
		return XML{}, http.StatusBadRequest, errors.ErrInvalidPropfind
	}
	if pf.Propname == nil && pf.Allprop == nil && pf.Prop == nil {
		// <d:prop></d:prop> is perfectly valid, treat it as allprop
		return XML{Allprop: new(struct{})}, 0, nil
	}
	return pf, 0, nil
}

// UnmarshalXML appends the property names enclosed within start to pn.
//
// It returns an error if properties contain values. An empty list leaves pn
// unchanged. Character data between properties is ignored.
func (pn *Props) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for {
		t, err := props.Next(d)
		if err != nil {
			return err
		}
		switch e := t.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			t, err = props.Next(d)
			if err != nil {
				return err
			}
			if _, ok := t.(xml.EndElement); !ok {
				return errors.ErrInvalidPropfind
			}
			*pn = append(*pn, e.Name)
		}
	}
}

// ResourceInfo carries everything the engine needs to render the properties
// of one resource: the stat result, the request-facing path and the dead
// properties read off the extended attributes.
type ResourceInfo struct {
	// Ref is the request-path-relative URL of the resource, used for the
	// href. Collections carry a trailing slash.
	Ref string
	// Display is the displayname value, the request URI of the resource.
	Display string

	IsDir       bool
	Size        int64
	MTime       time.Time
	CTime       time.Time
	ContentType string
	Executable  bool

	DeadProps map[xml.Name][]byte
}

// live property names in the DAV: namespace, in rendering order.
var livePropNames = []string{
	"resourcetype",
	"displayname",
	"getcontentlength",
	"getcontenttype",
	"creationdate",
	"getlastmodified",
	"executable",
}

// liveProp renders the live property local, or reports that the resource
// does not carry it.
func (ri *ResourceInfo) liveProp(local string) (*props.PropertyXML, bool) {
	switch local {
	case "resourcetype":
		if ri.IsDir {
			return props.NewPropRaw("d:resourcetype", "<d:collection/>"), true
		}
		return props.NewProp("d:resourcetype", ""), true
	case "displayname":
		return props.NewProp("d:displayname", ri.Display), true
	case "getcontentlength":
		if ri.IsDir {
			return nil, false
		}
		return props.NewProp("d:getcontentlength", strconv.FormatInt(ri.Size, 10)), true
	case "getcontenttype":
		if ri.ContentType == "" {
			return nil, false
		}
		return props.NewProp("d:getcontenttype", ri.ContentType), true
	case "creationdate":
		return props.NewProp("d:creationdate", net.FormatDate(ri.CTime)), true
	case "getlastmodified":
		return props.NewProp("d:getlastmodified", net.FormatDate(ri.MTime)), true
	case "executable":
		if !ri.Executable {
			return nil, false
		}
		return props.NewProp("d:executable", ""), true
	default:
		return nil, false
	}
}

// Response renders the propstats of one resource according to the parsed
// propfind request. Errors while reading single properties degrade to
// omitting them; the response itself is always produced.
func (ri *ResourceInfo) Response(pf *XML, proto string) *ResponseXML {
	response := &ResponseXML{
		Href:     net.EncodePath(ri.Ref),
		Propstat: []PropstatXML{},
	}

	propstatOK := PropstatXML{
		Status: net.StatusLine(proto, http.StatusOK),
		Prop:   []*props.PropertyXML{},
	}
	propstatNotFound := PropstatXML{
		Status: net.StatusLine(proto, http.StatusNotFound),
		Prop:   []*props.PropertyXML{},
	}

	switch {
	case pf.Propname != nil:
		for _, local := range livePropNames {
			if _, ok := ri.liveProp(local); ok {
				propstatOK.Prop = append(propstatOK.Prop, props.NewProp("d:"+local, ""))
			}
		}
		for n := range ri.DeadProps {
			propstatOK.Prop = append(propstatOK.Prop, &props.PropertyXML{XMLName: n})
		}
	case pf.Allprop != nil:
		for _, local := range livePropNames {
			if p, ok := ri.liveProp(local); ok {
				propstatOK.Prop = append(propstatOK.Prop, p)
			}
		}
		for n, v := range ri.DeadProps {
			propstatOK.Prop = append(propstatOK.Prop, &props.PropertyXML{XMLName: n, InnerXML: v})
		}
	default:
		for _, name := range pf.Prop {
			if name.Space == net.NsDav {
				if p, ok := ri.liveProp(name.Local); ok {
					propstatOK.Prop = append(propstatOK.Prop, p)
					continue
				}
			}
			if v, ok := ri.DeadProps[name]; ok {
				propstatOK.Prop = append(propstatOK.Prop, &props.PropertyXML{XMLName: name, InnerXML: v})
				continue
			}
			propstatNotFound.Prop = append(propstatNotFound.Prop, &props.PropertyXML{XMLName: name})
		}
	}

	if len(propstatOK.Prop) > 0 {
		response.Propstat = append(response.Propstat, propstatOK)
	}
	if len(propstatNotFound.Prop) > 0 {
		response.Propstat = append(response.Propstat, propstatNotFound)
	}
	if len(response.Propstat) == 0 {
		// a response needs at least one propstat to be schema valid
		response.Propstat = append(response.Propstat, propstatOK)
	}
	return response
}

// MultistatusResponse renders a whole multistatus document for the given
// resources.
func MultistatusResponse(pf *XML, infos []*ResourceInfo, proto string) ([]byte, error) {
	msr := NewMultiStatusResponseXML()
	msr.Responses = make([]*ResponseXML, 0, len(infos))
	for _, ri := range infos {
		msr.Responses = append(msr.Responses, ri.Response(pf, proto))
	}
	msg, err := xml.Marshal(msr)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, len(xml.Header)+len(msg))
	buf = append(buf, xml.Header...)
	buf = append(buf, msg...)
	return buf, nil
}
