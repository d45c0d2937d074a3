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

package zkhash

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// KeyHasher maps an arbitrary opaque key (e.g. a 20-byte address or a
// 32-byte storage slot) to a 32-byte node key.
type KeyHasher interface {
	Hash(key []byte) (ZkHash, error)
}

// NoCacheHasher is the default KeyHasher: it hashes every key from
// scratch via HashBytes.
type NoCacheHasher struct{}

func (NoCacheHasher) Hash(key []byte) (ZkHash, error) {
	return HashBytes(key)
}

// LRUHasher wraps another KeyHasher with a bounded LRU memoization layer.
// It is observationally equivalent to the wrapped hasher; the cache is a
// pure speedup keyed by the raw key bytes.
type LRUHasher struct {
	inner KeyHasher
	cache *lru.Cache[string, ZkHash]
}

// NewLRUHasher builds an LRUHasher over inner with room for size entries.
// If inner is nil, NoCacheHasher{} is used.
func NewLRUHasher(inner KeyHasher, size int) (*LRUHasher, error) {
	if inner == nil {
		inner = NoCacheHasher{}
	}
	c, err := lru.New[string, ZkHash](size)
	if err != nil {
		return nil, err
	}
	return &LRUHasher{inner: inner, cache: c}, nil
}

func (h *LRUHasher) Hash(key []byte) (ZkHash, error) {
	if v, ok := h.cache.Get(string(key)); ok {
		return v, nil
	}
	v, err := h.inner.Hash(key)
	if err != nil {
		return ZkHash{}, err
	}
	h.cache.Add(string(key), v)
	return v, nil
}
