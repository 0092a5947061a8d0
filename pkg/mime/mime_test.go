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

package mime

import (
	"strings"
	"testing"
)

func TestDetect(t *testing.T) {
	if got := Detect(true, "anything"); got != "httpd/unix-directory" {
		t.Errorf("directories should map to httpd/unix-directory, got %q", got)
	}
	if got := Detect(false, "notes.txt"); !strings.HasPrefix(got, "text/plain") {
		t.Errorf("txt should map to text/plain, got %q", got)
	}
	if got := Detect(false, "blob.unknownext"); got != "application/octet-stream" {
		t.Errorf("unknown extensions should fall back to octet-stream, got %q", got)
	}
}

func TestRegisterMime(t *testing.T) {
	RegisterMime("davtest", "application/x-davtest")
	if got := Detect(false, "f.davtest"); got != "application/x-davtest" {
		t.Errorf("custom mime not honoured, got %q", got)
	}
}
