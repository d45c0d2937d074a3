// This is free and unencumbered software released into the public domain.
//
// Anyone is free to copy, modify, publish, use, compile, sell, or
// distribute this software, either in source code form or as a compiled
// binary, for any purpose, commercial or non-commercial, and by any
// means.
//
// In jurisdictions that recognize copyright laws, the author or authors
// of this software dedicate any and all copyright interest in the
// software to the public domain. We make this dedication for the benefit
// of the public at large and to the detriment of our heirs and
// successors. We intend this dedication to be an overt act of
// relinquishment in perpetuity of all present and future rights to this
// software under copyright law.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
// IN NO EVENT SHALL THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR
// OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE,
// ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.
//
// For more information, please refer to <https://unlicense.org>

// Package zktdb implements the content-addressed node store that backs a
// zkTrie: a flat ZkHash -> bytes map, with optional garbage collection,
// read recording, read-only sharing, and write overlays.
package zktdb

import (
	"errors"

	"github.com/scroll-tech/zktrie-ng/zkhash"
)

var ErrReadOnly = errors.New("zktdb: store is read-only")

// Store is a content-addressed key/value store. Implementations need not
// support GC; callers must consult SupportsGC before relying on Remove
// actually freeing anything.
type Store interface {
	Put(hash zkhash.ZkHash, value []byte) error
	Get(hash zkhash.ZkHash) ([]byte, bool, error)
	Contains(hash zkhash.ZkHash) (bool, error)

	// Remove deletes hash from the store. If the store does not
	// support GC, or GC is disabled, Remove is a silent no-op: callers
	// must not rely on its return value as a presence test.
	Remove(hash zkhash.ZkHash) error

	// Retain keeps only the entries for which keep returns true,
	// deleting everything else. Only meaningful when GC is supported.
	Retain(keep func(zkhash.ZkHash) bool) error

	// Extend copies every entry from src into the store.
	Extend(src Store) error

	// Each calls fn for every entry currently in the store. fn must
	// not mutate the store.
	Each(fn func(zkhash.ZkHash, []byte) error) error

	// SupportsGC reports whether this store implementation is capable
	// of freeing storage at all (the capability). GCEnabled reports
	// whether it is currently configured to do so (the policy); both
	// must be true for Remove/Retain to have any physical effect.
	SupportsGC() bool
	GCEnabled() bool
}
