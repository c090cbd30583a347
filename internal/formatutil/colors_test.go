// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package formatutil

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	if got := Sanitize("x\x1b[31mred"); got != `x\x1b[31mred` {
		t.Errorf("escape sequence should be quoted, got %q", got)
	}
	if got := Sanitize("plain"); got != "plain" {
		t.Errorf("plain strings should not change, got %q", got)
	}
}

func TestColor(t *testing.T) {
	if got := Red("danger", 1); !strings.Contains(got, "danger1") {
		t.Errorf("colored string should contain its arguments, got %q", got)
	}
}
