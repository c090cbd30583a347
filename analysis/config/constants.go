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

package config

const (
	// DefaultSafeMaxDepth is the default maximum number of nested callee analyses
	// -1 means that depth limit is ignored
	DefaultSafeMaxDepth = -1
	// MaxProvenanceLength is the length after which a provenance chain is truncated
	MaxProvenanceLength = 250
	// IgnoreDirective is the comment that suppresses issues reported on the same line or on the next line
	IgnoreDirective = "//argot:ignore"
)

// ReportFormats are the supported formats of issue reports
var ReportFormats = []string{"text", "json", "yaml", "sarif"}
