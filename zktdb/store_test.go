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
	"errors"
	"testing"

	"github.com/scroll-tech/zktrie-ng/zkhash"
)

func mustHash(b byte) zkhash.ZkHash {
	var h zkhash.ZkHash
	h[31] = b
	return h
}

func TestMemStorePutGetContainsRemove(t *testing.T) {
	s := NewMemStore()
	h := mustHash(1)

	if ok, err := s.Contains(h); err != nil || ok {
		t.Fatalf("expected absent: ok=%v err=%v", ok, err)
	}
	if err := s.Put(h, []byte("value")); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.Get(h)
	if err != nil || !ok || string(v) != "value" {
		t.Fatalf("got v=%q ok=%v err=%v", v, ok, err)
	}
	if err := s.Remove(h); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(h); ok {
		t.Fatal("expected removed entry to be gone")
	}
}

func TestMemStoreRemoveNoopWhenGCDisabled(t *testing.T) {
	s := NewMemStore()
	h := mustHash(2)
	if err := s.Put(h, []byte("x")); err != nil {
		t.Fatal(err)
	}
	s.SetGCEnabled(false)
	if err := s.Remove(h); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(h); !ok {
		t.Fatal("expected entry to survive Remove while GC is disabled")
	}
}

func TestMemStoreRetain(t *testing.T) {
	s := NewMemStore()
	keep := mustHash(1)
	drop := mustHash(2)
	_ = s.Put(keep, []byte("keep"))
	_ = s.Put(drop, []byte("drop"))

	if err := s.Retain(func(h zkhash.ZkHash) bool { return h == keep }); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(keep); !ok {
		t.Fatal("expected kept entry to survive")
	}
	if _, ok, _ := s.Get(drop); ok {
		t.Fatal("expected dropped entry to be removed")
	}
}

func TestMemStoreExtendAndEach(t *testing.T) {
	src := NewMemStore()
	_ = src.Put(mustHash(1), []byte("a"))
	_ = src.Put(mustHash(2), []byte("b"))

	dst := NewMemStore()
	if err := dst.Extend(src); err != nil {
		t.Fatal(err)
	}

	seen := make(map[zkhash.ZkHash][]byte)
	if err := dst.Each(func(h zkhash.ZkHash, v []byte) error {
		seen[h] = v
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 || string(seen[mustHash(1)]) != "a" || string(seen[mustHash(2)]) != "b" {
		t.Fatalf("unexpected contents: %v", seen)
	}
}

func TestOverlayReadsFrontBeforeBacking(t *testing.T) {
	front := NewMemStore()
	backing := NewMemStore()
	h := mustHash(1)
	_ = backing.Put(h, []byte("backing"))

	o := NewOverlay(front, backing)
	v, ok, err := o.Get(h)
	if err != nil || !ok || string(v) != "backing" {
		t.Fatalf("expected fallback to backing store: v=%q ok=%v err=%v", v, ok, err)
	}

	if err := o.Put(h, []byte("front")); err != nil {
		t.Fatal(err)
	}
	v, ok, err = o.Get(h)
	if err != nil || !ok || string(v) != "front" {
		t.Fatalf("expected front store to shadow backing: v=%q ok=%v err=%v", v, ok, err)
	}
	if v, _, _ := backing.Get(h); string(v) != "backing" {
		t.Fatal("overlay write must not mutate the backing store")
	}
}

func TestOverlayEachDedupesFrontOverBacking(t *testing.T) {
	front := NewMemStore()
	backing := NewMemStore()
	shared := mustHash(1)
	_ = backing.Put(shared, []byte("stale"))
	_ = front.Put(shared, []byte("fresh"))
	_ = backing.Put(mustHash(2), []byte("only-backing"))

	o := NewOverlay(front, backing)
	seen := make(map[zkhash.ZkHash][]byte)
	if err := o.Each(func(h zkhash.ZkHash, v []byte) error {
		seen[h] = v
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(seen) != 2 {
		t.Fatalf("expected 2 distinct entries, got %d", len(seen))
	}
	if string(seen[shared]) != "fresh" {
		t.Fatal("front's value must win over backing's stale copy")
	}
}

func TestSharedStoreRejectsWrites(t *testing.T) {
	inner := NewMemStore()
	_ = inner.Put(mustHash(1), []byte("x"))
	s := NewSharedStore(inner)

	if err := s.Put(mustHash(2), []byte("y")); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if err := s.Remove(mustHash(1)); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if err := s.Retain(func(zkhash.ZkHash) bool { return true }); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
	if err := s.Extend(inner); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}

	v, ok, err := s.Get(mustHash(1))
	if err != nil || !ok || string(v) != "x" {
		t.Fatalf("reads must pass through: v=%q ok=%v err=%v", v, ok, err)
	}
	if s.SupportsGC() || s.GCEnabled() {
		t.Fatal("a read-only facade must never report GC capability")
	}
}

func TestRecorderCapturesSuccessfulReadsOnly(t *testing.T) {
	inner := NewMemStore()
	present := mustHash(1)
	_ = inner.Put(present, []byte("value"))
	absent := mustHash(2)

	r := NewRecorder(inner)
	if _, ok, err := r.Get(present); err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if _, ok, err := r.Get(absent); err != nil || ok {
		t.Fatalf("expected absent: ok=%v err=%v", ok, err)
	}

	log := r.Drain()
	if len(log) != 1 || log[0].Hash != present || string(log[0].Value) != "value" {
		t.Fatalf("unexpected recorder log: %+v", log)
	}
	if len(r.Drain()) != 0 {
		t.Fatal("Drain must empty the buffer")
	}
}
