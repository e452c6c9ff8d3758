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

package strx

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/gopkg/lang/dirtmake"
	"github.com/bytedance/gopkg/lang/mcache"
)

var ErrMissingNUL = errors.New("strx: missing NUL terminator")

// InteriorNULError reports an embedded zero byte found while converting a
// String to a NUL-terminated buffer. Pos is the byte offset of the first
// zero byte. When the failed operation had taken ownership of the value
// (WithCStr), Str carries it back unconsumed; otherwise Str is the zero
// value.
type InteriorNULError struct {
	Pos int
	Str String
}

func (e *InteriorNULError) Error() string {
	return fmt.Sprintf("strx: interior NUL byte at position %d", e.Pos)
}

// Strings below this size are copied to a stack scratch buffer instead of
// a fresh allocation when the backing buffer cannot be terminated in
// place.
const tempCStrMaxStackBytes = 64

// A zero-length NUL-terminated buffer never needs allocating.
var emptyCStr = [1]byte{0}

// firstNUL returns the byte offset of the first embedded zero byte, or -1.
func (s *String) firstNUL() int {
	return strings.IndexByte(s.str(), 0)
}

// WithCStr hands fn a NUL-terminated view of the content, in the shape
// C-string APIs expect: p points at the first byte, n is the length
// excluding the terminator, and p[n] is guaranteed zero. The view is
// valid only for the duration of the call; escaping p is unsupported.
//
// WithCStr takes ownership of s: every nil return releases the value, and
// s must not be used afterwards. On an interior NUL the value is not
// consumed and comes back inside the returned *InteriorNULError.
//
// The conversion terminates in place whenever ownership allows it and
// only falls back to copying when the backing buffer is shared:
//
//   - inline: the tag byte slot past the data becomes the terminator;
//   - unique heap with spare capacity: the terminator goes into the first
//     slack byte;
//   - unique heap with no slack: the bytes are shifted backward over the
//     share-count header (no other handle needs it anymore), freeing
//     header-sized trailing space for the terminator;
//   - shared heap: the bytes are copied to a stack scratch buffer when
//     they fit, else to a fresh allocation released before returning.
//
// All branches produce observably identical output.
func (s String) WithCStr(fn func(p *byte, n int)) error {
	if pos := s.firstNUL(); pos >= 0 {
		return &InteriorNULError{Pos: pos, Str: s}
	}

	if s.isSmall() {
		n := s.smallLen()
		// The receiver is an owned copy, so the tag byte slot right after
		// the data can hold the terminator. Covers n == SmallCapacity too.
		s.small[n] = 0
		fn(&s.small[0], n)
		return nil
	}

	n := s.buf.Len()
	switch {
	case n == 0:
		fn(&emptyCStr[0], 0)
		s.buf.Free()

	case s.buf.IsUnique():
		// Sole owner: terminate in place.
		if n < s.buf.Cap() {
			d := s.buf.Bytes()[:n+1]
			d[n] = 0
			fn(&d[0], n)
			s.buf.Free()
		} else {
			// No slack. Shift the bytes over the share-count header; the
			// ranges overlap, ReclaimHeader copies accordingly.
			d := s.buf.ReclaimHeader()[:n+1]
			d[n] = 0
			fn(&d[0], n)
			s.buf.FreeAlloc()
		}

	default:
		// Shared: other handles observe these bytes, so terminate a copy.
		if n < tempCStrMaxStackBytes {
			var scratch [tempCStrMaxStackBytes]byte
			copy(scratch[:], s.buf.Bytes())
			scratch[n] = 0
			fn(&scratch[0], n)
			s.buf.Free()
		} else {
			tmp := mcache.Malloc(n + 1)
			defer mcache.Free(tmp)
			copy(tmp, s.buf.Bytes())
			tmp[n] = 0
			fn(&tmp[0], n)
			s.buf.Free()
		}
	}
	return nil
}

// CBytes returns a fresh NUL-terminated copy of the content, Len()+1
// bytes long. Unlike WithCStr it does not consume the value and the
// result may escape. Returns *InteriorNULError (without the value) when
// the content embeds a zero byte.
func (s *String) CBytes() ([]byte, error) {
	if pos := s.firstNUL(); pos >= 0 {
		return nil, &InteriorNULError{Pos: pos}
	}
	str := s.str()
	b := dirtmake.Bytes(len(str)+1, len(str)+1)
	copy(b, str)
	b[len(str)] = 0
	return b, nil
}

// ParseCBytes reads a NUL-terminated byte region: the content is b up to
// the first zero byte, which must be present and is not part of the
// content. Returns the value, the content length, and ErrMissingNUL or
// ErrInvalidUTF8 on malformed input.
func ParseCBytes(b []byte) (String, int, error) {
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return String{}, 0, ErrMissingNUL
	}
	s, err := FromBytes(b[:i])
	if err != nil {
		return String{}, 0, err
	}
	return s, i, nil
}
