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

package tools

import (
	"strings"
	"testing"
)

func validateHint(t *testing.T, errorMsg string, containedHint string) {
	hint := HintForErrorMessage(errorMsg)
	if !strings.Contains(hint, containedHint) {
		t.Fatalf("incorrect hint; check and update error message if necessary")
	}
}

func TestHintForFlagAfterFiles(t *testing.T) {
	errorMsg := "error: could not load program:\n -: named files must be .go files: -v"
	containedHint := "all command line flags should be before the path"
	validateHint(t, errorMsg, containedHint)
}

func TestHintForFailedLoadProgram(t *testing.T) {
	errorMsg := "error: could not load program:\n errors found, exiting\n"
	containedHint := "you have provided the right arguments for an analyzer to load a Go program"
	validateHint(t, errorMsg, containedHint)
}

func TestHintForProgramFile(t *testing.T) {
	errorMsg := "error: could not load program: could not decode program: yaml: line 3: did not find expected key"
	containedHint := "program files must be yaml or json"
	validateHint(t, errorMsg, containedHint)
}

func TestHintForConfig(t *testing.T) {
	errorMsg := "failed to load config file c.yaml: could not unmarshal config file: unknown taint flag \"htm\""
	containedHint := "check the config file"
	validateHint(t, errorMsg, containedHint)
}

func TestHintForInvariant(t *testing.T) {
	errorMsg := "analysis stopped at main.go:12: invariant violation: negative parameter index -1"
	containedHint := "strict-invariants"
	validateHint(t, errorMsg, containedHint)
}

func TestNoHint(t *testing.T) {
	if hint := HintForErrorMessage("some other error"); hint != "" {
		t.Errorf("expected no hint, got %q", hint)
	}
}
