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
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"
)

// rawHash interprets each of le[0], le[1] as a little-endian field
// element and hashes them, together with the domain separator kind, with
// the Poseidon permutation. The third sponge input pins the domain the
// same way a fixed capacity element would in a from-scratch sponge
// construction.
func rawHash(kind uint64, le [2][32]byte) (*big.Int, error) {
	a := leBytesToBigInt(le[0])
	b := leBytesToBigInt(le[1])
	d := new(big.Int).SetUint64(kind)

	out, err := poseidon.Hash([]*big.Int{a, b, d})
	if err != nil {
		return nil, fmt.Errorf("%w: poseidon: %s", ErrInvalidFieldElement, err)
	}
	return out, nil
}

// Hash reverses each big-endian input to little-endian, delegates to
// rawHash, then converts the result back to big-endian.
func Hash(kind uint64, inputs [2]ZkHash) (ZkHash, error) {
	le := [2][32]byte{beToLE(inputs[0]), beToLE(inputs[1])}
	out, err := rawHash(kind, le)
	if err != nil {
		return ZkHash{}, err
	}
	var h ZkHash
	b := out.Bytes()
	copy(h[32-len(b):], b)
	return h, nil
}

// HashBytes hashes up to 32 bytes of opaque data, splitting it into two
// 16-byte-aligned halves per the storage layout used by the zkEVM
// circuits: the first 16 bytes go to the low half and any bytes beyond
// the 16th to the high half, each copied starting at byte offset 16 of its
// half; a shorter run is zero-filled after its last byte.
func HashBytes(b []byte) (ZkHash, error) {
	if len(b) > 32 {
		return ZkHash{}, fmt.Errorf("%w: got %d bytes", ErrInvalidByteLength, len(b))
	}

	var lo, hi [32]byte
	if len(b) > 16 {
		copy(lo[16:], b[:16])
		copy(hi[16:], b[16:])
	} else {
		copy(lo[16:16+len(b)], b)
	}

	return Hash(HashDomainByte32, [2]ZkHash{ZkHash(lo), ZkHash(hi)})
}

// HashBytesArray computes the value hash of a leaf's preimages. Bit i of
// compressFlags (for i <= 24) means preimages[i] is an opaque 32-byte
// blob that must first be folded through HashBytes; otherwise it is
// validated as a field element and used directly.
func HashBytesArray(preimages [][32]byte, compressFlags uint32) (ZkHash, error) {
	if len(preimages) == 0 {
		return ZkHash{}, ErrEmptyPreimagesArray
	}

	leaves := make([]ZkHash, len(preimages))
	for i, p := range preimages {
		if i <= 24 && compressFlags&(1<<uint(i)) != 0 {
			h, err := HashBytes(p[:])
			if err != nil {
				return ZkHash{}, err
			}
			leaves[i] = h
		} else {
			h, err := NewHashFromBytes(p[:])
			if err != nil {
				return ZkHash{}, err
			}
			leaves[i] = h
		}
	}

	domain := uint64(len(preimages)) * HashDomainElemsBase
	for len(leaves) > 1 {
		next := make([]ZkHash, 0, (len(leaves)+1)/2)
		for i := 0; i+1 < len(leaves); i += 2 {
			h, err := Hash(domain, [2]ZkHash{leaves[i], leaves[i+1]})
			if err != nil {
				return ZkHash{}, err
			}
			next = append(next, h)
		}
		if len(leaves)%2 == 1 {
			next = append(next, leaves[len(leaves)-1])
		}
		leaves = next
	}
	return leaves[0], nil
}
