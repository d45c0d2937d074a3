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

// Package zkhash implements the Poseidon-over-BN254 hash scheme used to
// compute zkTrie node hashes: domain-separated two-to-one compression,
// variable-length byte hashing, and compressed bytes32-array hashing.
package zkhash

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Domain separator bases. Mixed into every two-to-one hash to prevent
// cross-structure collisions; either a NodeType tag or a multiple of
// HashDomainElemsBase.
const (
	HashDomainElemsBase = 256
	HashDomainByte32    = 2 * HashDomainElemsBase
)

var (
	ErrInvalidByteLength   = errors.New("zkhash: invalid byte length")
	ErrInvalidFieldElement = errors.New("zkhash: value is not a canonical field element")
	ErrEmptyPreimagesArray = errors.New("zkhash: preimages array must not be empty")
)

// ZkHash is a 32-byte big-endian value. It is valid iff its little-endian
// reinterpretation is a canonical BN254 scalar (< field modulus). The
// all-zero value denotes the empty subtree.
type ZkHash [32]byte

// Empty is the all-zero hash, the hash of the empty subtree.
var Empty ZkHash

func (h ZkHash) IsZero() bool {
	return h == Empty
}

func (h ZkHash) Bytes() []byte {
	out := make([]byte, 32)
	copy(out, h[:])
	return out
}

func (h ZkHash) String() string {
	return fmt.Sprintf("%#x", h[:])
}

// NewHashFromBytes left-pads b to 32 bytes and validates that the result
// is a canonical field element.
func NewHashFromBytes(b []byte) (ZkHash, error) {
	if len(b) > 32 {
		return ZkHash{}, fmt.Errorf("%w: got %d bytes", ErrInvalidByteLength, len(b))
	}
	var h ZkHash
	copy(h[32-len(b):], b)
	if !isCanonicalBE(h[:]) {
		return ZkHash{}, fmt.Errorf("%w: %#x", ErrInvalidFieldElement, h[:])
	}
	return h, nil
}

// isCanonicalBE reports whether the 32-byte big-endian value is strictly
// less than the BN254 scalar field modulus. gnark-crypto's fr.Element
// silently reduces any input modulo p; a value is canonical iff the
// round trip through fr.Element reproduces the same bytes.
func isCanonicalBE(be []byte) bool {
	var elt fr.Element
	elt.SetBytes(be)
	back := elt.Bytes()
	var want [32]byte
	copy(want[:], be)
	return back == want
}

func reverse(dst, src []byte) {
	n := len(src)
	for i := 0; i < n; i++ {
		dst[i] = src[n-1-i]
	}
}

// beToLE reverses a big-endian 32-byte value into little-endian order,
// the byte order the Poseidon permutation backend expects its field
// element inputs in.
func beToLE(be [32]byte) [32]byte {
	var le [32]byte
	reverse(le[:], be[:])
	return le
}

func leBytesToBigInt(le [32]byte) *big.Int {
	var be [32]byte
	reverse(be[:], le[:])
	return new(big.Int).SetBytes(be[:])
}
