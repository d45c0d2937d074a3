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

	"github.com/holiman/uint256"

	"github.com/scroll-tech/zktrie-ng/zkhash"
)

// ValueCodec turns a domain object into the leaf preimages/compress-flags
// pair consumed by zkhash.HashBytesArray.
type ValueCodec interface {
	EncodeValueBytes() ([][32]byte, uint32)
}

// AccountCompressFlags marks only slot 3 (the Keccak code hash, an opaque
// digest rather than a field element) for compression.
const AccountCompressFlags uint32 = 1 << 3

// Account is the 5-slot leaf value for an EVM account: nonce and code size
// packed into slot 0, balance, storage root, Keccak code hash, and
// Poseidon code hash.
type Account struct {
	Nonce            uint64
	CodeSize         uint64
	Balance          *uint256.Int
	StorageRoot      zkhash.ZkHash
	KeccakCodeHash   [32]byte
	PoseidonCodeHash zkhash.ZkHash
}

func (a *Account) EncodeValueBytes() ([][32]byte, uint32) {
	var slot0 [32]byte
	binary.BigEndian.PutUint64(slot0[16:24], a.Nonce)
	binary.BigEndian.PutUint64(slot0[24:32], a.CodeSize)

	balance := a.Balance
	if balance == nil {
		balance = new(uint256.Int)
	}
	slot1 := balance.Bytes32()

	var slot2, slot4 [32]byte
	copy(slot2[:], a.StorageRoot[:])
	copy(slot4[:], a.PoseidonCodeHash[:])

	return [][32]byte{slot0, slot1, slot2, a.KeccakCodeHash, slot4}, AccountCompressFlags
}

// DecodeAccount parses the 5-slot preimage layout produced by
// Account.EncodeValueBytes, returning an error if the slot count is
// unexpected (the "more general, length-checked" form of DecodeValueBytes
// picked over a fixed-array signature).
func DecodeAccount(preimages [][32]byte) (*Account, error) {
	if len(preimages) != 5 {
		return nil, fmt.Errorf("zkt: account: expected 5 value slots, got %d", len(preimages))
	}
	a := &Account{
		Nonce:            binary.BigEndian.Uint64(preimages[0][16:24]),
		CodeSize:         binary.BigEndian.Uint64(preimages[0][24:32]),
		Balance:          new(uint256.Int).SetBytes(preimages[1][:]),
		StorageRoot:      zkhash.ZkHash(preimages[2]),
		KeccakCodeHash:   preimages[3],
		PoseidonCodeHash: zkhash.ZkHash(preimages[4]),
	}
	return a, nil
}

// StorageValueCompressFlags marks the sole slot for compression, since an
// arbitrary u256 storage word is not guaranteed to be a canonical field
// element and must be folded through HashBytes.
const StorageValueCompressFlags uint32 = 1

// StorageValue is the 1-slot leaf value for an EVM storage slot.
type StorageValue struct {
	Value *uint256.Int
}

func (v *StorageValue) EncodeValueBytes() ([][32]byte, uint32) {
	val := v.Value
	if val == nil {
		val = new(uint256.Int)
	}
	return [][32]byte{val.Bytes32()}, StorageValueCompressFlags
}

// DecodeStorageValue parses the 1-slot preimage layout produced by
// StorageValue.EncodeValueBytes.
func DecodeStorageValue(preimages [][32]byte) (*StorageValue, error) {
	if len(preimages) != 1 {
		return nil, fmt.Errorf("zkt: storage value: expected 1 value slot, got %d", len(preimages))
	}
	return &StorageValue{Value: new(uint256.Int).SetBytes(preimages[0][:])}, nil
}
