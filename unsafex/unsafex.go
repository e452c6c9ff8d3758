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

// Package unsafex holds the zero-copy view conversions shared by refbytes
// and strx. Callers own the aliasing rules: a view is valid only while the
// backing memory is alive and unmodified.
package unsafex

import "unsafe"

// String returns a string view over b without copy.
// b must not be mutated while the returned string is in use.
func String(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// Bytes returns a byte view over s without copy.
// The returned slice must not be written to.
func Bytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// Slice rehydrates a byte slice of length n starting at p.
// p must point to at least n valid bytes.
func Slice(p *byte, n int) []byte {
	return unsafe.Slice(p, n)
}
