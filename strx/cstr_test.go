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
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tidelang/hostrt/refbytes"
	"github.com/tidelang/hostrt/unsafex"
)

// captureCStr converts s and returns the consumer-observed content,
// asserting the terminator contract on the way.
func captureCStr(t *testing.T, s String) string {
	t.Helper()
	var got string
	err := s.WithCStr(func(p *byte, n int) {
		require.NotNil(t, p)
		view := unsafex.Slice(p, n+1)
		require.Equal(t, byte(0), view[n])
		got = string(view[:n])
	})
	require.NoError(t, err)
	return got
}

func TestWithCStrInline(t *testing.T) {
	for _, str := range []string{
		"",
		"short",
		strings.Repeat("a", SmallCapacity), // terminator lands in the tag slot
	} {
		s := FromString(str)
		require.True(t, s.isSmall())
		require.Equal(t, str, captureCStr(t, s))
	}
}

func TestWithCStrUniqueSlack(t *testing.T) {
	// 30 data bytes: the backing allocation rounds up, leaving slack for
	// the terminator without any shifting.
	str := strings.Repeat("s", 30)
	s := FromString(str)
	require.Greater(t, s.buf.Cap(), s.buf.Len())
	require.Equal(t, str, captureCStr(t, s))
}

func TestWithCStrUniqueExactFit(t *testing.T) {
	// header + data a power of two gives an exact-fit allocation, forcing
	// the shift-over-header strategy.
	for _, n := range []int{
		32 - refbytes.HeaderLen,
		64 - refbytes.HeaderLen,
		1024 - refbytes.HeaderLen,
	} {
		str := strings.Repeat("e", n)
		s := FromString(str)
		require.False(t, s.isSmall())
		require.Equal(t, s.buf.Cap(), s.buf.Len())
		require.Equal(t, str, captureCStr(t, s))
	}
}

func TestWithCStrSharedStackScratch(t *testing.T) {
	str := strings.Repeat("b", tempCStrMaxStackBytes-1) // 63: below the threshold
	s := FromString(str)
	c := s.Clone()
	require.False(t, c.buf.IsUnique())

	require.Equal(t, str, captureCStr(t, c))
	require.Equal(t, str, s.String()) // the original's bytes were never touched
	s.Free()
}

func TestWithCStrSharedHeapCopy(t *testing.T) {
	str := strings.Repeat("b", tempCStrMaxStackBytes+1) // 65: above the threshold
	s := FromString(str)
	c := s.Clone()
	require.False(t, c.buf.IsUnique())

	require.Equal(t, str, captureCStr(t, c))
	require.Equal(t, str, s.String())
	s.Free()
}

func TestWithCStrSharedEmpty(t *testing.T) {
	s := FromBufferUnchecked(refbytes.FromBytes(nil))
	c := s.Clone()
	require.Equal(t, "", captureCStr(t, c))
	require.Equal(t, "", s.String())
	s.Free()
}

func TestWithCStrInteriorNUL(t *testing.T) {
	for _, tc := range []struct {
		str string
		pos int
	}{
		{"ab\x00cd", 2},
		{"\x00", 0},
		{strings.Repeat("x", 30) + "\x00" + "tail", 30},
		{strings.Repeat("x", 100) + "\x00", 100},
	} {
		s := FromString(tc.str)
		err := s.WithCStr(func(p *byte, n int) {
			t.Fatal("consumer must not run on interior NUL")
		})
		var nulErr *InteriorNULError
		require.ErrorAs(t, err, &nulErr)
		require.Equal(t, tc.pos, nulErr.Pos)
		// the value comes back unconsumed with its content intact
		require.Equal(t, tc.str, nulErr.Str.String())
		nulErr.Str.Free()
	}
}

func TestWithCStrOutputIndependentOfStrategy(t *testing.T) {
	content := strings.Repeat("z", SmallCapacity) // representable in every form

	inline := FromString(content)
	unique := FromBufferUnchecked(refbytes.FromBytes([]byte(content)))
	sharedSrc := FromBufferUnchecked(refbytes.FromBytes([]byte(content)))
	shared := sharedSrc.Clone()

	a := captureCStr(t, inline)
	b := captureCStr(t, unique)
	c := captureCStr(t, shared)
	sharedSrc.Free()

	require.Equal(t, content, a)
	require.Equal(t, a, b)
	require.Equal(t, b, c)
}

func TestCBytes(t *testing.T) {
	s := FromString("native")
	b, err := s.CBytes()
	require.NoError(t, err)
	require.Equal(t, []byte("native\x00"), b)
	require.Equal(t, "native", s.String()) // not consumed

	bad := FromString("na\x00tive")
	_, err = bad.CBytes()
	var nulErr *InteriorNULError
	require.ErrorAs(t, err, &nulErr)
	require.Equal(t, 2, nulErr.Pos)
}

func TestParseCBytes(t *testing.T) {
	s, n, err := ParseCBytes([]byte("host\x00garbage"))
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.Equal(t, "host", s.String())
	s.Free()

	_, _, err = ParseCBytes([]byte("no terminator"))
	require.ErrorIs(t, err, ErrMissingNUL)

	_, _, err = ParseCBytes([]byte{0xff, 0xfe, 0x00})
	require.ErrorIs(t, err, ErrInvalidUTF8)
}
