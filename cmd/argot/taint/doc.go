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

/*
Package taint implements the front-end to the Argot taint tool which runs the taint analysis on Go packages or on
program files, and reports the flows of external input into sinks.

Usage:

	argot taint [flags] -config config.yaml ./...
	argot check [flags] -config config.yaml ./...

The flags are:

	-config path      a path to the configuration file containing signatures, external inputs and hooks

	-verbose=false    setting verbose mode, overrides config file options if set

	-format text      the report format (text, json, yaml or sarif), overrides config file options if set

	-exclude path     a file or directory whose issues are not reported, can be repeated

	-dump-deps dir    writes the dependency graph of each program analyzed in dot format in dir

	-j 1              the number of program files analyzed in parallel

The check command fails with exit status 1 when an issue is reported.
*/
package taint
