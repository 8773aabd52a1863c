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

package archive

import (
	"encoding/binary"
	"errors"
)

// ErrCorrupt is returned by View constructors when the backing bytes
// fail a bounds or length check. Per spec.md §7 (SymbFileCorruption)
// and §9 ("a corrupt-file policy must exist: reject and skip"),
// callers treat this as "not present", never as a crash.
var ErrCorrupt = errors.New("archive: corrupt or truncated buffer")

// Builder appends fixed-width header fields and forward-pointed
// variable-length tail data, matching spec.md §4.2's "variable-length
// fields... represented with forward pointers and inline lengths".
type Builder struct {
	head []byte
	tail []byte
}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) PutU8(v uint8)   { b.head = append(b.head, v) }
func (b *Builder) PutBool(v bool)  { if v { b.PutU8(1) } else { b.PutU8(0) } }

func (b *Builder) PutU16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	b.head = append(b.head, tmp[:]...)
}

func (b *Builder) PutU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	b.head = append(b.head, tmp[:]...)
}

func (b *Builder) PutU64(v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	b.head = append(b.head, tmp[:]...)
}

func (b *Builder) PutI64(v int64) { b.PutU64(uint64(v)) }

// PutBytes writes a (offset, length) pair into the head pointing at
// freshly appended tail bytes. offset is relative to the start of the
// tail region (the tail length at the time of the call), so each
// PutBytes call appends its own data immediately.
func (b *Builder) PutBytes(data []byte) {
	b.PutU32(uint32(len(b.tail)))
	b.PutU32(uint32(len(data)))
	b.tail = append(b.tail, data...)
}

func (b *Builder) PutString(s string) { b.PutBytes([]byte(s)) }

func (b *Builder) PutOptionalString(s *string) {
	if s == nil {
		b.PutBool(false)
		b.PutString("")
		return
	}
	b.PutBool(true)
	b.PutString(*s)
}

func (b *Builder) PutOptionalU32(v *uint32) {
	if v == nil {
		b.PutBool(false)
		b.PutU32(0)
		return
	}
	b.PutBool(true)
	b.PutU32(*v)
}

func (b *Builder) PutOptionalU64(v *uint64) {
	if v == nil {
		b.PutBool(false)
		b.PutU64(0)
		return
	}
	b.PutBool(true)
	b.PutU64(*v)
}

// Finish concatenates head and tail. The returned buffer is what gets
// stored; View operates directly on it (or a copy of it handed out by
// the cache/KV layer).
func (b *Builder) Finish() []byte {
	headLen := uint32(len(b.head))
	out := make([]byte, 0, 4+len(b.head)+len(b.tail))
	var lenPrefix [4]byte
	binary.LittleEndian.PutUint32(lenPrefix[:], headLen)
	out = append(out, lenPrefix[:]...)
	out = append(out, b.head...)
	out = append(out, b.tail...)
	return out
}

// View is a cursor-based reader over a Finish()-ed buffer. It never
// copies data out of buf except for the []byte it must hand back to
// the caller for tail reads (Go has no way to mint a borrowed string
// without copying when the underlying bytes may belong to an mmap
// region the caller does not own indefinitely -- conversions below use
// the minimum copy Go safely allows).
type View struct {
	buf     []byte
	headOff int
	tailOff int
	pos     int
}

// OpenView validates the 4-byte length prefix and positions the
// cursor at the start of the header.
func OpenView(buf []byte) (*View, error) {
	if len(buf) < 4 {
		return nil, ErrCorrupt
	}
	headLen := binary.LittleEndian.Uint32(buf[:4])
	if uint64(4)+uint64(headLen) > uint64(len(buf)) {
		return nil, ErrCorrupt
	}
	return &View{buf: buf, headOff: 4, tailOff: 4 + int(headLen), pos: 4}, nil
}

func (v *View) need(n int) error {
	if v.pos+n > v.tailOff {
		return ErrCorrupt
	}
	return nil
}

func (v *View) U8() (uint8, error) {
	if err := v.need(1); err != nil {
		return 0, err
	}
	b := v.buf[v.pos]
	v.pos++
	return b, nil
}

func (v *View) Bool() (bool, error) {
	b, err := v.U8()
	return b != 0, err
}

func (v *View) U16() (uint16, error) {
	if err := v.need(2); err != nil {
		return 0, err
	}
	x := binary.LittleEndian.Uint16(v.buf[v.pos : v.pos+2])
	v.pos += 2
	return x, nil
}

func (v *View) U32() (uint32, error) {
	if err := v.need(4); err != nil {
		return 0, err
	}
	x := binary.LittleEndian.Uint32(v.buf[v.pos : v.pos+4])
	v.pos += 4
	return x, nil
}

func (v *View) U64() (uint64, error) {
	if err := v.need(8); err != nil {
		return 0, err
	}
	x := binary.LittleEndian.Uint64(v.buf[v.pos : v.pos+8])
	v.pos += 8
	return x, nil
}

func (v *View) I64() (int64, error) {
	x, err := v.U64()
	return int64(x), err
}

// Bytes reads an (offset, length) pair from the header and returns the
// referenced slice of the tail region -- a genuine sub-slice of buf,
// not a copy, as long as the caller keeps buf alive.
func (v *View) Bytes() ([]byte, error) {
	off, err := v.U32()
	if err != nil {
		return nil, err
	}
	n, err := v.U32()
	if err != nil {
		return nil, err
	}
	start := v.tailOff + int(off)
	end := start + int(n)
	if off > uint32(len(v.buf)) || end > len(v.buf) || end < start {
		return nil, ErrCorrupt
	}
	return v.buf[start:end], nil
}

func (v *View) String() (string, error) {
	b, err := v.Bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (v *View) OptionalString() (*string, error) {
	present, err := v.Bool()
	if err != nil {
		return nil, err
	}
	s, err := v.String()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	return &s, nil
}

func (v *View) OptionalU32() (*uint32, error) {
	present, err := v.Bool()
	if err != nil {
		return nil, err
	}
	x, err := v.U32()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	return &x, nil
}

func (v *View) OptionalU64() (*uint64, error) {
	present, err := v.Bool()
	if err != nil {
		return nil, err
	}
	x, err := v.U64()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	return &x, nil
}
