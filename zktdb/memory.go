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

import (
	"sync"

	"github.com/scroll-tech/zktrie-ng/zkhash"
)

// MemStore is a sync.RWMutex-guarded in-memory Store. It is GC-supported
// and GC-enabled by default, making it suitable both for tests and for a
// throwaway purge set during FullGC.
type MemStore struct {
	mu        sync.RWMutex
	data      map[zkhash.ZkHash][]byte
	gcEnabled bool
}

func NewMemStore() *MemStore {
	return &MemStore{
		data:      make(map[zkhash.ZkHash][]byte),
		gcEnabled: true,
	}
}

// SetGCEnabled toggles the GC policy for this store; GC support itself
// is always present for MemStore.
func (s *MemStore) SetGCEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gcEnabled = enabled
}

func (s *MemStore) Put(hash zkhash.ZkHash, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(value))
	copy(buf, value)
	s.data[hash] = buf
	return nil
}

func (s *MemStore) Get(hash zkhash.ZkHash) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[hash]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *MemStore) Contains(hash zkhash.ZkHash) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[hash]
	return ok, nil
}

func (s *MemStore) Remove(hash zkhash.ZkHash) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gcEnabled {
		return nil
	}
	delete(s.data, hash)
	return nil
}

func (s *MemStore) Retain(keep func(zkhash.ZkHash) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.gcEnabled {
		return nil
	}
	for h := range s.data {
		if !keep(h) {
			delete(s.data, h)
		}
	}
	return nil
}

func (s *MemStore) Extend(src Store) error {
	return src.Each(func(h zkhash.ZkHash, v []byte) error {
		return s.Put(h, v)
	})
}

func (s *MemStore) Each(fn func(zkhash.ZkHash, []byte) error) error {
	s.mu.RLock()
	snapshot := make(map[zkhash.ZkHash][]byte, len(s.data))
	for h, v := range s.data {
		snapshot[h] = v
	}
	s.mu.RUnlock()

	for h, v := range snapshot {
		if err := fn(h, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemStore) SupportsGC() bool { return true }

func (s *MemStore) GCEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gcEnabled
}
