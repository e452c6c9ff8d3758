/*
 * Copyright 2025 Tidelang Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package strx implements the string value type exchanged between
// generated code and native host code: an immutable UTF-8 string that
// stores short content inline and shares a reference-counted heap buffer
// across copies of longer content.
package strx

import (
	"errors"
	"strings"
	"unicode/utf8"
	"unsafe"

	"github.com/bytedance/gopkg/lang/dirtmake"
	"github.com/bytedance/gopkg/util/xxhash3"

	"github.com/tidelang/hostrt/refbytes"
	"github.com/tidelang/hostrt/unsafex"
)

// SmallCapacity is the number of bytes a String can hold inline, chosen
// so the inline form occupies exactly as many bytes as a buffer handle.
const SmallCapacity = int(unsafe.Sizeof(refbytes.Buffer{})) - 1

// smallTag marks the inline form. It occupies the high bit of the tag
// byte; the low 7 bits hold the inline length. A heap value's tag byte is
// always zero, so the mask test alone discriminates the two forms.
const smallTag = 0x80

var ErrInvalidUTF8 = errors.New("strx: invalid UTF-8")

// String is an immutable UTF-8 string value.
//
// Short strings (<= SmallCapacity bytes) live inline; longer strings hold
// a refbytes.Buffer handle, and Clone shares the backing allocation by
// reference count instead of copying bytes. Heap-backed values must be
// released with Free; copying a String without Clone aliases the handle
// and must still result in exactly one Free.
//
// The zero value is a valid empty string. String is not comparable with
// ==; use Equal.
type String struct {
	// small is the inline storage: up to SmallCapacity bytes of UTF-8
	// data, then the tag byte.
	small [SmallCapacity + 1]byte
	// buf is the heap storage, zero for inline values.
	buf refbytes.Buffer
}

// Empty returns an inline empty string.
func Empty() String {
	var s String
	s.small[SmallCapacity] = smallTag
	return s
}

// FromString constructs a value from a Go string.
// The bytes must be valid UTF-8; Go strings built from trusted sources
// satisfy this, anything else should go through FromBytes.
func FromString(str string) String {
	return FromBytesUnchecked(unsafex.Bytes(str))
}

// FromBytes validates b as UTF-8 and constructs a value holding a copy of
// it. Returns ErrInvalidUTF8 without constructing anything on bad input.
func FromBytes(b []byte) (String, error) {
	if !utf8.Valid(b) {
		return String{}, ErrInvalidUTF8
	}
	return FromBytesUnchecked(b), nil
}

// FromBytesUnchecked constructs a value holding a copy of b.
// b must be valid UTF-8; violating that is not detected here and breaks
// every content-based contract downstream.
func FromBytesUnchecked(b []byte) String {
	if len(b) <= SmallCapacity {
		var s String
		copy(s.small[:], b)
		s.small[SmallCapacity] = smallTag | byte(len(b))
		return s
	}
	return String{buf: refbytes.FromBytes(b)}
}

// FromBuffer wraps an existing shared buffer without copying, taking
// ownership of the handle. On ErrInvalidUTF8 the handle stays owned by
// the caller.
func FromBuffer(b refbytes.Buffer) (String, error) {
	if !utf8.Valid(b.Bytes()) {
		return String{}, ErrInvalidUTF8
	}
	return String{buf: b}, nil
}

// FromBufferUnchecked is FromBuffer without the UTF-8 check.
// b must hold valid UTF-8.
func FromBufferUnchecked(b refbytes.Buffer) String {
	return String{buf: b}
}

func (s *String) isSmall() bool {
	return s.small[SmallCapacity]&smallTag != 0
}

func (s *String) smallLen() int {
	return int(s.small[SmallCapacity] &^ smallTag)
}

// str is the zero-copy view over the live bytes.
func (s *String) str() string {
	if s.isSmall() {
		return unsafex.String(s.small[:s.smallLen()])
	}
	return unsafex.String(s.buf.Bytes())
}

// Len returns the content length in bytes.
func (s *String) Len() int {
	if s.isSmall() {
		return s.smallLen()
	}
	return s.buf.Len()
}

// Cap returns the representation's byte capacity: SmallCapacity for
// inline values, the backing buffer's data capacity otherwise.
func (s *String) Cap() int {
	if s.isSmall() {
		return SmallCapacity
	}
	return s.buf.Cap()
}

func (s *String) IsEmpty() bool {
	return s.Len() == 0
}

// String returns the content as a zero-copy view.
// The view is valid until the value is freed. Callers that need the
// content to outlive the value must copy it (see Bytes).
func (s *String) String() string {
	return s.str()
}

// Bytes returns a fresh copy of the content.
func (s *String) Bytes() []byte {
	str := s.str()
	b := dirtmake.Bytes(len(str), len(str))
	copy(b, str)
	return b
}

// Equal reports content equality. Two values with equal bytes are equal
// regardless of inline vs heap storage.
func (s *String) Equal(o *String) bool {
	return s.str() == o.str()
}

// Compare orders lexicographically by content, like strings.Compare.
func (s *String) Compare(o *String) int {
	return strings.Compare(s.str(), o.str())
}

// Hash returns a content hash: equal content hashes equally across
// representations. Never derived from layout or address.
func (s *String) Hash() uint64 {
	return xxhash3.HashString(s.str())
}

// Clone returns a value with the same content. Inline values are plainly
// copied; heap values share the backing allocation by incrementing its
// reference count, with no byte copy. The clone needs its own Free.
func (s *String) Clone() String {
	if s.isSmall() {
		return *s
	}
	return String{buf: s.buf.Ref()}
}

// Free releases the value. A no-op for inline values; for heap values it
// decrements the backing buffer's share count, freeing the allocation
// when this was the last handle.
func (s *String) Free() {
	if !s.isSmall() {
		s.buf.Free()
	}
}
