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
	"testing"
	"time"
)

func TestParseDepth(t *testing.T) {
	tests := map[string]Depth{
		"":         DepthInfinity,
		"0":        DepthZero,
		"1":        DepthOne,
		"infinity": DepthInfinity,
		"INFINITY": DepthInfinity,
	}

	for input, expected := range tests {
		parsed, err := ParseDepth(input)
		if err != nil {
			t.Errorf("failed to parse depth %s", input)
		}
		if parsed != expected {
			t.Errorf("ParseDepth returned %s expected %s", parsed.String(), expected.String())
		}
	}

	_, err := ParseDepth("invalid")
	if err == nil {
		t.Error("parse depth didn't return an error for invalid depth: invalid")
	}
}

func TestEncodePath(t *testing.T) {
	tests := map[string]string{
		"/plain/path":     "/plain/path",
		"/with space":     "/with%20space",
		"/umläut":         "/uml%c3%a4ut",
		"/q?uery":         "/q%3fuery",
		"/keep~().!$/:@x": "/keep~().!$/:@x",
	}
	for input, expected := range tests {
		if got := EncodePath(input); got != expected {
			t.Errorf("EncodePath(%q) returned %q expected %q", input, got, expected)
		}
	}
}

func TestParseTimeout(t *testing.T) {
	max := time.Hour
	tests := map[string]time.Duration{
		"":                     time.Hour,
		"Infinite":             time.Hour,
		"Second-600":           10 * time.Minute,
		"Second-7200":          time.Hour,
		"Infinite, Second-600": time.Hour,
		"Second-600, Infinite": 10 * time.Minute,
	}
	for input, expected := range tests {
		d, err := ParseTimeout(input, max)
		if err != nil {
			t.Errorf("failed to parse timeout %q: %v", input, err)
			continue
		}
		if d != expected {
			t.Errorf("ParseTimeout(%q) returned %v expected %v", input, d, expected)
		}
	}

	for _, input := range []string{"Second-0", "Second--1", "Second-x", "Minute-5"} {
		if _, err := ParseTimeout(input, max); err == nil {
			t.Errorf("ParseTimeout(%q) should have failed", input)
		}
	}
}

func TestParseDestination(t *testing.T) {
	tests := map[string]string{
		"http://host/b.txt":        "/b.txt",
		"https://host:8080/d/e":    "/d/e",
		"http://host":              "/",
		"/relative/path":           "/relative/path",
		"http://host/with%20space": "/with space",
	}
	for input, expected := range tests {
		p, err := ParseDestination(input)
		if err != nil {
			t.Errorf("failed to parse destination %q: %v", input, err)
			continue
		}
		if p != expected {
			t.Errorf("ParseDestination(%q) returned %q expected %q", input, p, expected)
		}
	}

	if _, err := ParseDestination(""); err == nil {
		t.Error("ParseDestination should fail on an empty header")
	}
}

func TestStatusLine(t *testing.T) {
	if got := StatusLine("HTTP/1.1", 200); got != "HTTP/1.1 200 OK" {
		t.Errorf("unexpected status line %q", got)
	}
	if got := StatusLine("HTTP/1.0", 404); got != "HTTP/1.0 404 Not Found" {
		t.Errorf("unexpected status line %q", got)
	}
	if got := StatusLine("", 207); got != "HTTP/1.1 207 Multi-Status" {
		t.Errorf("unexpected status line %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2015, 10, 21, 7, 28, 0, 0, time.UTC)
	if got := FormatDate(d); got != "Wed, 21 Oct 2015 07:28:00 GMT" {
		t.Errorf("unexpected http date %q", got)
	}
}
