// Copyright 2024 The Erigon Authors
// (modifications)
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package model

// InterpKind identifies the interpreter (or "native") that produced a
// frame. The numeric encoding is part of the on-disk schema (it is the
// low 7 bits of a FrameKind byte) and must stay stable.
type InterpKind uint8

const (
	InterpPython InterpKind = iota + 1
	InterpPhp
	InterpNative
	InterpKernel
	InterpJvm
	InterpRuby
	InterpPerl
	InterpJs
	InterpPhpJit
	InterpDotNet
	InterpBeam
	InterpGo
)

func (k InterpKind) String() string {
	switch k {
	case InterpPython:
		return "python"
	case InterpPhp:
		return "php"
	case InterpNative:
		return "native"
	case InterpKernel:
		return "kernel"
	case InterpJvm:
		return "jvm"
	case InterpRuby:
		return "ruby"
	case InterpPerl:
		return "perl"
	case InterpJs:
		return "js"
	case InterpPhpJit:
		return "phpjit"
	case InterpDotNet:
		return "dotnet"
	case InterpBeam:
		return "beam"
	case InterpGo:
		return "go"
	default:
		return "unknown"
	}
}

// interpByAttr maps the profile.frame.type attribute string (spec §4.5
// pass 1 step 1) onto an InterpKind. "abort-marker" is handled
// separately by the caller because it produces FrameKindAbort, not a
// Regular/Error variant.
var interpByAttr = map[string]InterpKind{
	"native":  InterpNative,
	"kernel":  InterpKernel,
	"jvm":     InterpJvm,
	"perl":    InterpPerl,
	"cpython": InterpPython,
	"php":     InterpPhp,
	"phpjit":  InterpPhpJit,
	"ruby":    InterpRuby,
	"dotnet":  InterpDotNet,
	"v8js":    InterpJs,
	"beam":    InterpBeam,
	"go":      InterpGo,
}

// InterpKindByAttr resolves the profile.frame.type attribute string.
func InterpKindByAttr(attr string) (InterpKind, bool) {
	k, ok := interpByAttr[attr]
	return k, ok
}
