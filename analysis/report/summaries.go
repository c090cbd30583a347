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

package report

import (
	"fmt"
	"io"

	"github.com/awslabs/ar-go-taintcheck/analysis/lattice"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// WriteSummaries writes the signature of every function, one per line, sorted by function name
func WriteSummaries(w io.Writer, signatures map[string]lattice.Signature) error {
	names := maps.Keys(signatures)
	slices.Sort(names)
	for _, name := range names {
		if _, err := fmt.Fprintf(w, "%s: %s\n", name, signatures[name]); err != nil {
			return err
		}
	}
	return nil
}
