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

// Overlay pairs a mutable front Store with a read-only backing Store.
// Reads consult the front store first, then fall back to the backing
// store; writes always go to the front store only. Wrapping the backing
// store in a Recorder turns a read-only replay through an Overlay into a
// witness-generation pass.
type Overlay struct {
	Front   Store
	Backing Store
}

func NewOverlay(front, backing Store) *Overlay {
	return &Overlay{Front: front, Backing: backing}
}

func (o *Overlay) Put(hash zkhash.ZkHash, value []byte) error {
	return o.Front.Put(hash, value)
}

func (o *Overlay) Get(hash zkhash.ZkHash) ([]byte, bool, error) {
	v, ok, err := o.Front.Get(hash)
	if err != nil || ok {
		return v, ok, err
	}
	return o.Backing.Get(hash)
}

func (o *Overlay) Contains(hash zkhash.ZkHash) (bool, error) {
	ok, err := o.Front.Contains(hash)
	if err != nil || ok {
		return ok, err
	}
	return o.Backing.Contains(hash)
}

func (o *Overlay) Remove(hash zkhash.ZkHash) error {
	return o.Front.Remove(hash)
}

func (o *Overlay) Retain(keep func(zkhash.ZkHash) bool) error {
	return o.Front.Retain(keep)
}

func (o *Overlay) Extend(src Store) error {
	return o.Front.Extend(src)
}

func (o *Overlay) Each(fn func(zkhash.ZkHash, []byte) error) error {
	seen := make(map[zkhash.ZkHash]struct{})
	if err := o.Front.Each(func(h zkhash.ZkHash, v []byte) error {
		seen[h] = struct{}{}
		return fn(h, v)
	}); err != nil {
		return err
	}
	return o.Backing.Each(func(h zkhash.ZkHash, v []byte) error {
		if _, ok := seen[h]; ok {
			return nil
		}
		return fn(h, v)
	})
}

func (o *Overlay) SupportsGC() bool { return o.Front.SupportsGC() }
func (o *Overlay) GCEnabled() bool  { return o.Front.GCEnabled() }
