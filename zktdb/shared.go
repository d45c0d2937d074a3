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

package zktdb

import "github.com/scroll-tech/zktrie-ng/zkhash"

// SharedStore wraps a Store behind a read-only facade. It holds the
// wrapped store by value, so copies are cheap and may be held by many
// trie instances simultaneously; every write fails with ErrReadOnly.
type SharedStore struct {
	inner Store
}

func NewSharedStore(inner Store) SharedStore {
	return SharedStore{inner: inner}
}

func (s SharedStore) Put(zkhash.ZkHash, []byte) error {
	return ErrReadOnly
}

func (s SharedStore) Get(hash zkhash.ZkHash) ([]byte, bool, error) {
	return s.inner.Get(hash)
}

func (s SharedStore) Contains(hash zkhash.ZkHash) (bool, error) {
	return s.inner.Contains(hash)
}

func (s SharedStore) Remove(zkhash.ZkHash) error {
	return ErrReadOnly
}

func (s SharedStore) Retain(func(zkhash.ZkHash) bool) error {
	return ErrReadOnly
}

func (s SharedStore) Extend(Store) error {
	return ErrReadOnly
}

func (s SharedStore) Each(fn func(zkhash.ZkHash, []byte) error) error {
	return s.inner.Each(fn)
}

func (s SharedStore) SupportsGC() bool { return false }
func (s SharedStore) GCEnabled() bool  { return false }
