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
Package taint implements the taint propagation engine. The main entry point of the analysis is the [Analyze]
function, which runs the engine over an [ir.Program] and returns an [AnalysisResult] containing the issues found and
the signature computed for every function.

The engine walks each function body once, bottom-up in the call graph. For every expression it computes a
[lattice.Taint]; the taint of variables and fields is kept in a store of cells, so that aliased bindings (globals,
by-reference parameters, writes in conditional branches) observe the same value. Facts that can only be known later
(the function is called with a tainted argument, a value flowing out of a parameter reaches a sink) are propagated
through a dependency graph linking symbols to function parameters.

Framework specific behaviour (callbacks registered to hooks and run later) is implemented by a [Collaborator],
see the hooks package.
*/
package taint
