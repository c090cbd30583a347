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
Package config provides a simple way to manage configuration files.

Use [Load](filename) to load a configuration from a specific filename.

Use [SetGlobalConfig](filename) to set filename as the global config, and then [LoadGlobal]() to load the global config.

A config file should be in yaml or json format. The top-level fields can be any of the fields defined in the Config
struct type. The other fields  are defined by the types of the fields of [Config] and nested struct types.
For example, a valid config file is as follows:

	options:
	  log-level: 4
	  report-format: json

	signatures:
	  - receiver: Database
	    method: query
	    overall: none
	    params:
	      0: sql-exec

	external-inputs:
	  - os.Args

	source-types:
	  - package: net/http
	    type: Request

	hooks:
	  registrars:
	    - callee: {receiver: Parser, method: setHook}
	      hook-arg: 0
	      callback-arg: 1
	      tainted-params: [0, 1]
	      return-sink: html-exec
	  dispatchers:
	    - callee: {receiver: Hooks, method: run}
	      hook-arg: 0
	      args-arg: 1

Taint values are written with the flag names of the lattice package (html, sql-exec, yes, preserve, ...), either
joined by "|" or as a list.

# Identifying code elements

The config uses [CodeIdentifier] to identify specific code entities. For example, signatures and hook callables are
CodeIdentifiers which identifies specific functions in specific packages, or types, etc..
An important feature of the code identifiers is that the string specifications are seen as regexes if they can be
compiled to regexes, otherwise they are strings. The regexes must match the whole name.
*/
package config
