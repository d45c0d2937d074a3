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
	"fmt"

	"github.com/scroll-tech/zktrie-ng/zkhash"
)

// MagicNodeBytes is the trailing marker appended to every proof byte
// stream, making malformed or truncated proofs identifiable.
var MagicNodeBytes = []byte("THIS IS SOME MAGIC BYTES FOR SMT m1rRXgP2xpDI")

// Prove walks the trie from the root for up to TrieMaxLevels steps,
// collecting each encountered node's canonical bytes (the terminating
// leaf, if any, includes its node-key preimage), stopping at the first
// empty or leaf node, and appends MagicNodeBytes.
func (t *ZkTrie) Prove(key []byte) ([][]byte, error) {
	target, err := t.hasher.Hash(key)
	if err != nil {
		return nil, err
	}

	var proof [][]byte
	ref := t.root
	for level := 0; level < TrieMaxLevels; level++ {
		n, err := t.fetchNode(ref)
		if err != nil {
			return nil, err
		}
		switch v := n.(type) {
		case emptyNode:
			buf, err := EncodeNode(v, false)
			if err != nil {
				return nil, err
			}
			return append(append(proof, buf), MagicNodeBytes), nil
		case *leafNode:
			buf, err := EncodeNode(v, true)
			if err != nil {
				return nil, err
			}
			return append(append(proof, buf), MagicNodeBytes), nil
		case *branchNode:
			buf, err := EncodeNode(v, false)
			if err != nil {
				return nil, err
			}
			proof = append(proof, buf)
			if pathBit(target, level) == 1 {
				ref = v.right
			} else {
				ref = v.left
			}
		default:
			return nil, fmt.Errorf("zkt: unreachable node type %T", n)
		}
	}
	return nil, ErrMaxLevelReached
}

// VerifyProof independently replays proof against key and the claimed
// root, recomputing each node's hash and checking consistency with its
// parent's recorded child hash. It returns the leaf's value preimages and
// ok=true if proof proves key present with that value; ok=false, err=nil
// if proof is a well-formed proof of absence; and a non-nil err if proof
// is malformed or inconsistent with root.
func VerifyProof(hasher zkhash.KeyHasher, root zkhash.ZkHash, key []byte, proof [][]byte) ([][32]byte, bool, error) {
	if len(proof) == 0 || !bytes.Equal(proof[len(proof)-1], MagicNodeBytes) {
		return nil, false, fmt.Errorf("%w: missing magic marker", ErrMalformedProof)
	}
	nodes := proof[:len(proof)-1]
	if len(nodes) == 0 {
		return nil, false, fmt.Errorf("%w: empty node chain", ErrMalformedProof)
	}

	target, err := hasher.Hash(key)
	if err != nil {
		return nil, false, err
	}

	cur := root
	for level, raw := range nodes {
		n, err := DecodeNode(raw)
		if err != nil {
			return nil, false, err
		}
		h, err := n.Hash()
		if err != nil {
			return nil, false, err
		}
		if h != cur {
			return nil, false, fmt.Errorf("%w: hash mismatch at level %d", ErrMalformedProof, level)
		}
		switch v := n.(type) {
		case emptyNode:
			if level != len(nodes)-1 {
				return nil, false, fmt.Errorf("%w: empty node before chain end", ErrMalformedProof)
			}
			return nil, false, nil
		case *leafNode:
			if level != len(nodes)-1 {
				return nil, false, fmt.Errorf("%w: leaf node before chain end", ErrMalformedProof)
			}
			if v.nodeKey != target {
				return nil, false, nil
			}
			out := make([][32]byte, len(v.valuePreimages))
			copy(out, v.valuePreimages)
			return out, true, nil
		case *branchNode:
			if pathBit(target, level) == 1 {
				cur, _ = v.right.Hash()
			} else {
				cur, _ = v.left.Hash()
			}
		default:
			return nil, false, fmt.Errorf("zkt: unreachable node type %T", n)
		}
	}
	return nil, false, fmt.Errorf("%w: chain exhausted without a terminal node", ErrMalformedProof)
}
