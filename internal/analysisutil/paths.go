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

package analysisutil

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
)

// MakeAbsolute takes a slice of relative file paths and converts them to absolute paths, relative to the current
// working directory. Paths that are already absolute are passed through unchanged. A trailing "/" is kept.
func MakeAbsolute(excludeRelative []string) []string {
	result := make([]string, 0, len(excludeRelative))

	cwd, _ := os.Getwd()

	for _, s := range excludeRelative {
		if filepath.IsAbs(s) {
			result = append(result, s)
			continue
		}
		abs := filepath.Join(cwd, s)
		if strings.HasSuffix(s, "/") {
			abs += "/"
		}
		result = append(result, abs)
	}

	return result
}

// isExcludedOne returns true when filename is the file exclude, or is in the directory exclude. A directory
// excluded may be written with or without trailing "/".
func isExcludedOne(filename string, exclude string) bool {
	if filepath.Ext(exclude) != "" && !strings.HasSuffix(exclude, "/") {
		return filename == exclude // full match required
	} else if strings.HasSuffix(exclude, "/") {
		return strings.HasPrefix(filename, exclude) // prefix match required
	} else {
		return strings.HasPrefix(filename, exclude+"/") // prefix match plus / required
	}
}

// IsExcluded scans the exclude slices to find out whether the position is in an excluded file
func IsExcluded(pos ir.Pos, exclude []string) bool {
	for _, e := range exclude {
		if isExcludedOne(pos.File, e) {
			return true
		}
	}

	return false
}
