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

import (
	"fmt"
	"regexp"
	"strings"
)

// A CodeIdentifier identifies a code element that is a callable or a type. Every non-empty field must match the
// corresponding field of the element. The strings are compiled as regexes anchored at both ends when possible and
// compared literally otherwise.
type CodeIdentifier struct {
	Package  string `yaml:"package,omitempty"`
	Receiver string `yaml:"receiver,omitempty"`
	Method   string `yaml:"method,omitempty"`
	Type     string `yaml:"type,omitempty"`
	// This will not be part of the yaml config
	computedRegexs *codeIdentifierRegex
}

type codeIdentifierRegex struct {
	packageRegex  *regexp.Regexp
	receiverRegex *regexp.Regexp
	methodRegex   *regexp.Regexp
	typeRegex     *regexp.Regexp
}

func (cid CodeIdentifier) String() string {
	var parts []string
	for _, kv := range [][2]string{{"package", cid.Package}, {"receiver", cid.Receiver}, {"method", cid.Method},
		{"type", cid.Type}} {
		if kv[1] != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", kv[0], kv[1]))
		}
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func anchored(s string) (*regexp.Regexp, error) {
	return regexp.Compile("^(?:" + s + ")$")
}

// compileRegexes compiles the strings in the code identifier into regexes. It compiles all identifiers into regexes
// or none.
func compileRegexes(cid CodeIdentifier) CodeIdentifier {
	packageRegex, err := anchored(cid.Package)
	if err != nil {
		return cid
	}
	receiverRegex, err := anchored(cid.Receiver)
	if err != nil {
		return cid
	}
	methodRegex, err := anchored(cid.Method)
	if err != nil {
		return cid
	}
	typeRegex, err := anchored(cid.Type)
	if err != nil {
		return cid
	}
	cid.computedRegexs = &codeIdentifierRegex{
		packageRegex,
		receiverRegex,
		methodRegex,
		typeRegex,
	}
	return cid
}

// equalOnNonEmptyFields returns true if each of the receiver's fields are either equal to the corresponding
// argument's field, or the argument's field is empty
func (cid *CodeIdentifier) equalOnNonEmptyFields(cidRef CodeIdentifier) bool {
	if cidRef.computedRegexs != nil {
		return (cidRef.Package == "" || cidRef.computedRegexs.packageRegex.MatchString(cid.Package)) &&
			(cidRef.Receiver == "" || cidRef.computedRegexs.receiverRegex.MatchString(cid.Receiver)) &&
			(cidRef.Method == "" || cidRef.computedRegexs.methodRegex.MatchString(cid.Method)) &&
			(cidRef.Type == "" || cidRef.computedRegexs.typeRegex.MatchString(cid.Type))
	}
	return (cidRef.Package == "" || cid.Package == cidRef.Package) &&
		(cidRef.Receiver == "" || cid.Receiver == cidRef.Receiver) &&
		(cidRef.Method == "" || cid.Method == cidRef.Method) &&
		(cidRef.Type == "" || cid.Type == cidRef.Type)
}

// Matches returns true when the callable identified by pkg, receiver and method matches the code identifier.
// The receiver type name is given without pointer.
func (cid CodeIdentifier) Matches(pkg, receiver, method string) bool {
	x := CodeIdentifier{Package: pkg, Receiver: receiver, Method: method}
	return x.equalOnNonEmptyFields(cid)
}

// MatchesType returns true when the type with name typeName matches the package and type of the code identifier.
// typeName is in the format of go/types: "*net/http.Request", "main.T".
func (cid CodeIdentifier) MatchesType(typeName string) bool {
	typeName = strings.TrimLeft(typeName, "*")
	pkg, name := "", typeName
	if i := strings.LastIndex(typeName, "."); i > strings.LastIndex(typeName, "/") {
		pkg, name = typeName[:i], typeName[i+1:]
	}
	x := CodeIdentifier{Package: pkg, Type: name}
	return x.equalOnNonEmptyFields(cid)
}

// ExistsCid is true if there is some x in a such that f(x) is true.
func ExistsCid(a []CodeIdentifier, f func(identifier CodeIdentifier) bool) bool {
	for _, x := range a {
		if f(x) {
			return true
		}
	}
	return false
}
