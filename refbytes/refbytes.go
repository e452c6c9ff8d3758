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

// Package refbytes implements a reference-counted shared byte buffer.
//
// The share count lives in-band: every allocation starts with an 8-byte
// count word, the data bytes follow immediately after. A Buffer is a
// cheap value-type handle onto one allocation; copies of a Buffer made
// without Ref all act as the same handle and must be freed exactly once.
//
// Tips for usage:
//   - every FromBytes and every Ref must be paired with exactly one Free.
//   - DO NOT write through Bytes() unless IsUnique() reported true and no
//     other goroutine can call Ref concurrently.
//   - ReclaimHeader destroys the count word; release with FreeAlloc after.
package refbytes

import (
	"sync/atomic"
	"unsafe"

	"github.com/bytedance/gopkg/lang/mcache"
)

// HeaderLen is the size of the share-count word preceding the data bytes.
const HeaderLen = 8

// Buffer is a handle onto a reference-counted byte allocation.
// The zero value is an inert empty buffer: Len and Cap are 0, Free is a
// no-op and IsUnique is false (there is nothing to mutate).
type Buffer struct {
	// raw is the whole allocation: raw[:HeaderLen] holds the share count,
	// raw[HeaderLen:] the data. mcache allocations are at least 8-byte
	// aligned, so the count word can be addressed as an int64 directly.
	raw []byte
}

// FromBytes allocates a buffer holding a copy of data with share count 1.
func FromBytes(data []byte) Buffer {
	raw := mcache.Malloc(HeaderLen + len(data))
	b := Buffer{raw: raw}
	atomic.StoreInt64(b.count(), 1)
	copy(raw[HeaderLen:], data)
	return b
}

func (b Buffer) count() *int64 {
	return (*int64)(unsafe.Pointer(unsafe.SliceData(b.raw)))
}

// Len returns the number of data bytes.
func (b Buffer) Len() int {
	if b.raw == nil {
		return 0
	}
	return len(b.raw) - HeaderLen
}

// Cap returns the data capacity: the allocation capacity minus the count
// header. mcache rounds allocations up to powers of two, so Cap is
// usually larger than Len; when they are equal, ReclaimHeader can still
// expose HeaderLen bytes of trailing space.
func (b Buffer) Cap() int {
	if b.raw == nil {
		return 0
	}
	return cap(b.raw) - HeaderLen
}

// Bytes returns the live data view without copy.
// The view is read-only unless the handle is unique; it is invalidated by
// Free, FreeAlloc and ReclaimHeader.
func (b Buffer) Bytes() []byte {
	if b.raw == nil {
		return nil
	}
	return b.raw[HeaderLen:]
}

// Ptr returns a pointer to the first data byte, or nil for the zero
// value. Valid even when Len is 0.
func (b Buffer) Ptr() *byte {
	if b.raw == nil {
		return nil
	}
	return (*byte)(unsafe.Add(unsafe.Pointer(unsafe.SliceData(b.raw)), HeaderLen))
}

// IsUnique reports whether this handle is the sole owner of the
// allocation. The answer is advisory: it is exact only while the caller
// can rule out concurrent Ref/Free on other handles, typically because it
// owns the only handle by value transfer.
func (b Buffer) IsUnique() bool {
	if b.raw == nil {
		return false
	}
	return atomic.LoadInt64(b.count()) == 1
}

// Ref increments the share count and returns a new handle onto the same
// allocation. O(1), no data copy.
func (b Buffer) Ref() Buffer {
	if b.raw != nil {
		atomic.AddInt64(b.count(), 1)
	}
	return b
}

// Free decrements the share count and returns the allocation to mcache
// when the count reaches zero. The handle (and any views obtained from
// it) must not be used afterwards.
func (b Buffer) Free() {
	if b.raw == nil {
		return
	}
	if atomic.AddInt64(b.count(), -1) == 0 {
		mcache.Free(b.raw)
	}
}

// ReclaimHeader shifts the data bytes backward over the count word so the
// data begins at the start of the allocation, and returns the shifted
// data view. The source and destination ranges overlap; the shift frees
// HeaderLen bytes of trailing space, so cap(result) >= Len()+HeaderLen.
//
// The handle must be unique. The count word is destroyed: the only valid
// operation on the handle afterwards is FreeAlloc.
func (b Buffer) ReclaimHeader() []byte {
	n := b.Len()
	copy(b.raw[:n], b.raw[HeaderLen:])
	return b.raw[:n]
}

// FreeAlloc returns the raw allocation to mcache without reading the
// count word. Only valid for a handle known to be unique, typically after
// ReclaimHeader.
func (b Buffer) FreeAlloc() {
	if b.raw != nil {
		mcache.Free(b.raw)
	}
}
