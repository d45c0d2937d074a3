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

package zkt

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/scroll-tech/zktrie-ng/zkhash"
)

func TestProveSingleKeyProofShape(t *testing.T) {
	tr := newTestTrie()
	key := bytes.Repeat([]byte{0x11}, 32)
	if err := tr.Update(key, val(9), 1); err != nil {
		t.Fatal(err)
	}
	root, err := tr.Commit()
	if err != nil {
		t.Fatal(err)
	}
	proof, err := tr.Prove(key)
	if err != nil {
		t.Fatal(err)
	}
	if len(proof) != 2 {
		t.Fatalf("expected leaf + magic, got %d entries", len(proof))
	}
	decoded, err := DecodeNode(proof[0])
	if err != nil {
		t.Fatal(err)
	}
	leaf, ok := decoded.(*leafNode)
	if !ok {
		t.Fatalf("expected leaf node, got %T", decoded)
	}
	if leaf.nodeKeyPreimage == nil {
		t.Fatal("terminating leaf proof entry must include its node-key preimage")
	}

	preimages, present, err := VerifyProof(zkhash.NoCacheHasher{}, root, key, proof)
	if err != nil || !present {
		t.Fatalf("present=%v err=%v", present, err)
	}
	want := val(9)
	if preimages[0] != want[0] {
		t.Fatal("value mismatch after verification")
	}
}

func TestProveTwoKeyBranchChain(t *testing.T) {
	tr := newTestTrie()
	k1 := bytes.Repeat([]byte{0x01}, 32)
	k2 := bytes.Repeat([]byte{0x02}, 32)
	if err := tr.Update(k1, val(1), 1); err != nil {
		t.Fatal(err)
	}
	if err := tr.Update(k2, val(2), 1); err != nil {
		t.Fatal(err)
	}
	root, err := tr.Commit()
	if err != nil {
		t.Fatal(err)
	}

	for _, tc := range []struct {
		key []byte
		val [][32]byte
	}{{k1, val(1)}, {k2, val(2)}} {
		proof, err := tr.Prove(tc.key)
		if err != nil {
			t.Fatal(err)
		}
		preimages, present, err := VerifyProof(zkhash.NoCacheHasher{}, root, tc.key, proof)
		if err != nil || !present {
			t.Fatalf("key %x: present=%v err=%v", tc.key, present, err)
		}
		if preimages[0] != tc.val[0] {
			t.Fatalf("key %x: value mismatch", tc.key)
		}
	}
}

func TestVerifyProofRejectsTamperedRoot(t *testing.T) {
	tr := newTestTrie()
	key := bytes.Repeat([]byte{0x05}, 32)
	if err := tr.Update(key, val(1), 1); err != nil {
		t.Fatal(err)
	}
	if _, err := tr.Commit(); err != nil {
		t.Fatal(err)
	}
	proof, err := tr.Prove(key)
	if err != nil {
		t.Fatal(err)
	}
	var wrongRoot zkhash.ZkHash
	wrongRoot[0] = 0xff
	if _, _, err := VerifyProof(zkhash.NoCacheHasher{}, wrongRoot, key, proof); err == nil {
		t.Fatal("expected hash-mismatch error against a tampered root")
	}
}

func TestVerifyProofRejectsMissingMagic(t *testing.T) {
	tr := newTestTrie()
	key := bytes.Repeat([]byte{0x06}, 32)
	if err := tr.Update(key, val(1), 1); err != nil {
		t.Fatal(err)
	}
	root, err := tr.Commit()
	if err != nil {
		t.Fatal(err)
	}
	proof, err := tr.Prove(key)
	if err != nil {
		t.Fatal(err)
	}
	truncated := proof[:len(proof)-1]
	if _, _, err := VerifyProof(zkhash.NoCacheHasher{}, root, key, truncated); err == nil {
		t.Fatal("expected error for a proof missing its magic marker")
	}
}

func TestAbsenceProofEndsInEmptyNode(t *testing.T) {
	hasher := zkhash.NoCacheHasher{}

	// Two present keys whose node keys agree on the level-0 bit leave the
	// root branch's other side empty; an absent key whose node key takes
	// that side dead-ends on the empty node at depth 1. The node keys are
	// hash outputs, so the three raw keys are found by scanning rather
	// than constructed.
	var present [][]byte
	var absentKey []byte
	var presentBit int
	for i := 0; absentKey == nil || len(present) < 2; i++ {
		raw := []byte{0x07, byte(i), byte(i >> 8)}
		nk, err := hasher.Hash(raw)
		if err != nil {
			t.Fatal(err)
		}
		bit := pathBit(nk, 0)
		switch {
		case len(present) == 0:
			present = append(present, raw)
			presentBit = bit
		case len(present) < 2 && bit == presentBit:
			present = append(present, raw)
		case absentKey == nil && bit != presentBit:
			absentKey = raw
		}
	}

	tr := newTestTrie()
	for i, k := range present {
		if err := tr.Update(k, val(byte(i+1)), 1); err != nil {
			t.Fatal(err)
		}
	}
	root, err := tr.Commit()
	if err != nil {
		t.Fatal(err)
	}

	proof, err := tr.Prove(absentKey)
	if err != nil {
		t.Fatal(err)
	}
	last, err := DecodeNode(proof[len(proof)-2])
	if err != nil {
		t.Fatal(err)
	}
	if last.NodeType() != NodeTypeEmpty {
		t.Fatalf("expected the proof chain to end in an empty node, got %v", last.NodeType())
	}
	_, present2, err := VerifyProof(zkhash.NoCacheHasher{}, root, absentKey, proof)
	if err != nil {
		t.Fatalf("well-formed absence proof must verify cleanly: %v", err)
	}
	if present2 {
		t.Fatal("expected absence")
	}
}

func TestAbsenceProofForRandomKey(t *testing.T) {
	tr := newTestTrie()
	keys := make([][]byte, 40)
	for i := range keys {
		keys[i] = make([]byte, 32)
		_, _ = rand.Read(keys[i])
		if err := tr.Update(keys[i], val(byte(i)), 1); err != nil {
			t.Fatal(err)
		}
	}
	root, err := tr.Commit()
	if err != nil {
		t.Fatal(err)
	}

	absent := make([]byte, 32)
	_, _ = rand.Read(absent)
	proof, err := tr.Prove(absent)
	if err != nil {
		t.Fatal(err)
	}
	_, present, err := VerifyProof(zkhash.NoCacheHasher{}, root, absent, proof)
	if err != nil {
		t.Fatalf("unexpected error verifying absence: %v", err)
	}
	if present {
		t.Fatal("expected absence for a freshly random key against 40 committed leaves")
	}
}
