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
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"

	"github.com/scroll-tech/zktrie-ng/zkhash"
)

// LevelStore is an on-disk Store backed by goleveldb. GC support is
// unconditional (leveldb deletes are real deletes); GC *policy* is a
// constructor flag, since a production deployment may prefer to disable
// GC on the durable store to retain history while still running GC
// against a MemStore overlay used for scratch work.
type LevelStore struct {
	db        *leveldb.DB
	gcEnabled bool
}

// OpenLevelStore opens (or creates) a goleveldb database at path.
func OpenLevelStore(path string, gcEnabled bool) (*LevelStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelStore{db: db, gcEnabled: gcEnabled}, nil
}

func (s *LevelStore) Close() error {
	return s.db.Close()
}

func (s *LevelStore) Put(hash zkhash.ZkHash, value []byte) error {
	return s.db.Put(hash[:], value, nil)
}

func (s *LevelStore) Get(hash zkhash.ZkHash) ([]byte, bool, error) {
	v, err := s.db.Get(hash[:], nil)
	if err == errors.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (s *LevelStore) Contains(hash zkhash.ZkHash) (bool, error) {
	return s.db.Has(hash[:], nil)
}

func (s *LevelStore) Remove(hash zkhash.ZkHash) error {
	if !s.gcEnabled {
		return nil
	}
	return s.db.Delete(hash[:], nil)
}

func (s *LevelStore) Retain(keep func(zkhash.ZkHash) bool) error {
	if !s.gcEnabled {
		return nil
	}
	batch := new(leveldb.Batch)
	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		var h zkhash.ZkHash
		copy(h[:], iter.Key())
		if !keep(h) {
			batch.Delete(iter.Key())
		}
	}
	if err := iter.Error(); err != nil {
		return err
	}
	return s.db.Write(batch, nil)
}

func (s *LevelStore) Extend(src Store) error {
	batch := new(leveldb.Batch)
	err := src.Each(func(h zkhash.ZkHash, v []byte) error {
		batch.Put(h.Bytes(), v)
		return nil
	})
	if err != nil {
		return err
	}
	return s.db.Write(batch, nil)
}

func (s *LevelStore) Each(fn func(zkhash.ZkHash, []byte) error) error {
	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()
	for iter.Next() {
		var h zkhash.ZkHash
		copy(h[:], iter.Key())
		v := make([]byte, len(iter.Value()))
		copy(v, iter.Value())
		if err := fn(h, v); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (s *LevelStore) SupportsGC() bool { return true }
func (s *LevelStore) GCEnabled() bool  { return s.gcEnabled }
