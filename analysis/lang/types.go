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

package lang

import (
	"go/types"

	"github.com/awslabs/ar-go-taintcheck/analysis/ir"
)

// maxTypeDepth bounds the traversal of recursive pointer types
const maxTypeDepth = 8

// TypeSet returns the ir type of values of Go type t. Byte slices are strings, maps, slices and channels are
// arrays, and interfaces may hold anything.
func TypeSet(t types.Type) ir.TypeSet {
	return typeSet(t, 0)
}

func typeSet(t types.Type, depth int) ir.TypeSet {
	if t == nil || depth > maxTypeDepth {
		return 0
	}
	switch u := t.Underlying().(type) {
	case *types.Basic:
		info := u.Info()
		switch {
		case u.Kind() == types.UntypedNil:
			return ir.TypeNull
		case info&types.IsBoolean != 0:
			return ir.TypeBool
		case info&types.IsInteger != 0:
			return ir.TypeInt
		case info&(types.IsFloat|types.IsComplex) != 0:
			return ir.TypeFloat
		case info&types.IsString != 0:
			return ir.TypeString
		}
		return ir.TypeMixed
	case *types.Pointer:
		return typeSet(u.Elem(), depth+1)
	case *types.Slice:
		if isByte(u.Elem()) {
			return ir.TypeString
		}
		return ir.TypeArray
	case *types.Array, *types.Map, *types.Chan:
		return ir.TypeArray
	case *types.Struct:
		return ir.TypeObject
	case *types.Signature:
		return ir.TypeCallable
	case *types.Tuple:
		var res ir.TypeSet
		for i := 0; i < u.Len(); i++ {
			res |= typeSet(u.At(i).Type(), depth+1)
		}
		return res
	}
	return ir.TypeMixed
}

func isByte(t types.Type) bool {
	b, ok := t.Underlying().(*types.Basic)
	return ok && (b.Kind() == types.Byte || b.Kind() == types.Rune)
}

// isByRef returns true for parameters through which the callee can modify a variable of the caller: pointers to
// values that are not structs.
func isByRef(t types.Type) bool {
	p, ok := t.Underlying().(*types.Pointer)
	if !ok {
		return false
	}
	_, isStruct := p.Elem().Underlying().(*types.Struct)
	return !isStruct
}

// returnsOf returns the type returned by a function of signature sig
func returnsOf(sig *types.Signature) ir.TypeSet {
	if sig.Results().Len() == 0 {
		return ir.TypeVoid
	}
	return TypeSet(sig.Results())
}

func typeName(t types.Type) string {
	if t == nil {
		return ""
	}
	return types.TypeString(t, nil)
}

func deref(t types.Type) types.Type {
	if p, ok := t.Underlying().(*types.Pointer); ok {
		return p.Elem()
	}
	return t
}
