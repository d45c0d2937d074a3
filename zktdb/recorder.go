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

// Record is one entry captured by a Recorder: the hash that was looked
// up and the bytes that were returned for it.
type Record struct {
	Hash  zkhash.ZkHash
	Value []byte
}

// Recorder wraps a Store and records (key, bytes) for every successful
// Get, so that a replayed batch of reads can later be turned into a
// minimal witness set. Mutations pass through untouched and are never
// recorded.
type Recorder struct {
	Store
	mu  sync.Mutex
	log []Record
}

func NewRecorder(inner Store) *Recorder {
	return &Recorder{Store: inner}
}

func (r *Recorder) Get(hash zkhash.ZkHash) ([]byte, bool, error) {
	v, ok, err := r.Store.Get(hash)
	if err != nil || !ok {
		return v, ok, err
	}
	r.mu.Lock()
	r.log = append(r.log, Record{Hash: hash, Value: v})
	r.mu.Unlock()
	return v, ok, nil
}

// Drain returns every record captured so far and empties the buffer.
func (r *Recorder) Drain() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.log
	r.log = nil
	return out
}
