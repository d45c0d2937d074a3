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
	"encoding/binary"
	"fmt"

	"github.com/scroll-tech/zktrie-ng/zkhash"
)

// EncodeNode returns the canonical byte encoding of n:
//
//	Empty:  [0x05]
//	Branch: [node_type(1) || child_left(32) || child_right(32)]
//	Leaf:   [0x04 || node_key(32) || mark(4 LE) || value_preimages(32*N) || kp_len(1) || key_preimage(32*kp_len)]
//
// where mark = (compress_flags << 8) | (N mod 256), N = len(value_preimages),
// and kp_len is 0 or 32. A full 256-preimage leaf stores 0 in the count
// byte; the value is unambiguous because a leaf always carries at least
// one preimage. includeKeyPreimage forces kp_len=32 for a leaf that
// does carry a node_key_preimage; Prove and Commit set it (Commit so that
// a leaf read back from the store still carries its preimage for proofs),
// while Iterate leaves it false.
func EncodeNode(n Node, includeKeyPreimage bool) ([]byte, error) {
	switch v := n.(type) {
	case emptyNode:
		return []byte{byte(NodeTypeEmpty)}, nil
	case *branchNode:
		lh, err := v.left.Hash()
		if err != nil {
			return nil, err
		}
		rh, err := v.right.Hash()
		if err != nil {
			return nil, err
		}
		buf := make([]byte, 1+32+32)
		buf[0] = byte(v.nodeType)
		copy(buf[1:33], lh[:])
		copy(buf[33:65], rh[:])
		return buf, nil
	case *leafNode:
		count := len(v.valuePreimages)
		if count == 0 || count > MaxValuePreimages {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidValuePreimages, count)
		}
		kpLen := 0
		if includeKeyPreimage && v.nodeKeyPreimage != nil {
			kpLen = 32
		}
		buf := make([]byte, 1+32+4+32*count+1+kpLen)
		off := 0
		buf[off] = byte(NodeTypeLeaf)
		off++
		copy(buf[off:off+32], v.nodeKey[:])
		off += 32
		mark := (v.compressFlags << 8) | uint32(count&0xff)
		binary.LittleEndian.PutUint32(buf[off:off+4], mark)
		off += 4
		for _, p := range v.valuePreimages {
			copy(buf[off:off+32], p[:])
			off += 32
		}
		if kpLen == 32 {
			buf[off] = 32
			off++
			copy(buf[off:off+32], v.nodeKeyPreimage[:])
			off += 32
		} else {
			buf[off] = 0
			off++
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("zkt: unknown node type %T", n)
	}
}

// DecodeNode parses the canonical byte encoding produced by EncodeNode.
// Branch children are returned as resolved nodeRefs (their ZkHash is taken
// directly from the encoding); no store lookup is performed here.
func DecodeNode(b []byte) (Node, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrInvalidNodeBytes)
	}
	switch NodeType(b[0]) {
	case NodeTypeEmpty:
		if len(b) != 1 {
			return nil, fmt.Errorf("%w: trailing bytes after empty tag", ErrInvalidNodeBytes)
		}
		return theEmptyNode, nil
	case NodeTypeBranchLTRT, NodeTypeBranchLTRB, NodeTypeBranchLBRT, NodeTypeBranchLBRB:
		if len(b) != 1+32+32 {
			return nil, fmt.Errorf("%w: short branch encoding (%d bytes)", ErrInvalidNodeBytes, len(b))
		}
		left, err := zkhash.NewHashFromBytes(b[1:33])
		if err != nil {
			return nil, fmt.Errorf("%w: left child: %s", ErrInvalidNodeBytes, err)
		}
		right, err := zkhash.NewHashFromBytes(b[33:65])
		if err != nil {
			return nil, fmt.Errorf("%w: right child: %s", ErrInvalidNodeBytes, err)
		}
		br := &branchNode{nodeType: NodeType(b[0]), left: resolvedRef(left), right: resolvedRef(right)}
		return br, nil
	case NodeTypeLeaf:
		const headerLen = 1 + 32 + 4
		if len(b) < headerLen+1 {
			return nil, fmt.Errorf("%w: truncated leaf header", ErrInvalidNodeBytes)
		}
		nodeKey, err := zkhash.NewHashFromBytes(b[1:33])
		if err != nil {
			return nil, fmt.Errorf("%w: node key: %s", ErrInvalidNodeBytes, err)
		}
		mark := binary.LittleEndian.Uint32(b[33:37])
		n := int(mark & 0xff)
		if n == 0 {
			// A full 256-preimage leaf stores 0 in the count byte.
			n = MaxValuePreimages
		}
		compressFlags := mark >> 8
		off := headerLen
		need := off + 32*n + 1
		if len(b) < need {
			return nil, fmt.Errorf("%w: truncated value preimages", ErrInvalidNodeBytes)
		}
		preimages := make([][32]byte, n)
		for i := 0; i < n; i++ {
			copy(preimages[i][:], b[off:off+32])
			off += 32
		}
		kpLen := int(b[off])
		off++
		var keyPreimage *[32]byte
		switch kpLen {
		case 0:
			// no preimage shipped
		case 32:
			if len(b) < off+32 {
				return nil, fmt.Errorf("%w: truncated key preimage", ErrInvalidNodeBytes)
			}
			var kp [32]byte
			copy(kp[:], b[off:off+32])
			keyPreimage = &kp
			off += 32
		default:
			return nil, fmt.Errorf("%w: invalid kp_len %d", ErrInvalidNodeBytes, kpLen)
		}
		if off != len(b) {
			return nil, fmt.Errorf("%w: trailing bytes after leaf encoding", ErrInvalidNodeBytes)
		}
		return &leafNode{
			nodeKey:         nodeKey,
			nodeKeyPreimage: keyPreimage,
			valuePreimages:  preimages,
			compressFlags:   compressFlags,
		}, nil
	default:
		return nil, fmt.Errorf("%w: invalid node type tag %d", ErrInvalidNodeBytes, b[0])
	}
}
