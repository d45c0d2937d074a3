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
	"fmt"
	"sync"

	"github.com/scroll-tech/zktrie-ng/zkhash"
)

// NodeKey is the 32-byte output of the key hasher: the trie's addressing
// key. Only its low NodeKeyValidBytes bytes (248 bits) are ever consulted.
type NodeKey = zkhash.ZkHash

const (
	// NodeKeyValidBytes is the number of low-order bytes of a NodeKey
	// that address the trie.
	NodeKeyValidBytes = 31

	// TrieMaxLevels is the maximum trie depth: one bit of the node key
	// per level.
	TrieMaxLevels = NodeKeyValidBytes * 8

	// MaxValuePreimages is the largest number of value preimages a leaf
	// may carry.
	MaxValuePreimages = 256
)

// NodeType tags the on-disk and in-memory node variants. Tags 0-3 are
// reserved by the legacy wire format and must never be produced or
// accepted here.
type NodeType byte

const (
	NodeTypeLeaf       NodeType = 4
	NodeTypeEmpty      NodeType = 5
	NodeTypeBranchLTRT NodeType = 6 // both children terminal
	NodeTypeBranchLTRB NodeType = 7 // left terminal, right branch
	NodeTypeBranchLBRT NodeType = 8 // left branch, right terminal
	NodeTypeBranchLBRB NodeType = 9 // both branches
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeLeaf:
		return "Leaf"
	case NodeTypeEmpty:
		return "Empty"
	case NodeTypeBranchLTRT:
		return "BranchLTRT"
	case NodeTypeBranchLTRB:
		return "BranchLTRB"
	case NodeTypeBranchLBRT:
		return "BranchLBRT"
	case NodeTypeBranchLBRB:
		return "BranchLBRB"
	default:
		return fmt.Sprintf("NodeType(%d)", byte(t))
	}
}

// IsBranch reports whether t is one of the four branch variants.
func (t NodeType) IsBranch() bool {
	return t >= NodeTypeBranchLTRT && t <= NodeTypeBranchLBRB
}

// Node is the common interface satisfied by every node variant: emptyNode,
// *leafNode, *branchNode.
type Node interface {
	NodeType() NodeType
	// Hash returns the node's cached hash, computing and caching it on
	// first call. For a branch with an unresolved child it returns
	// ErrUnresolvedHashUsed.
	Hash() (zkhash.ZkHash, error)
}

// hashCell is a write-once cell: "first writer wins, subsequent writers
// silently drop". This gives cheap, mutex-guarded shared reads of an
// immutable node's hash, and is race-free under the engine's
// errgroup-parallel commit because every computed hash is a pure function
// of already-resolved children.
type hashCell struct {
	mu  sync.Mutex
	set bool
	val zkhash.ZkHash
}

func (c *hashCell) get() (zkhash.ZkHash, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.val, c.set
}

func (c *hashCell) setOnce(v zkhash.ZkHash) zkhash.ZkHash {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.set {
		c.val = v
		c.set = true
	}
	return c.val
}

// emptyNode is the singleton representing an empty subtree. Its hash is
// fixed at the all-zero value.
type emptyNode struct{}

var theEmptyNode = emptyNode{}

func (emptyNode) NodeType() NodeType { return NodeTypeEmpty }

func (emptyNode) Hash() (zkhash.ZkHash, error) { return zkhash.Empty, nil }

// leafNode holds a single key/value pair. node_key_preimage is kept only so
// it can be shipped inside Merkle proofs; it plays no role in the hash.
type leafNode struct {
	nodeKey          zkhash.ZkHash
	nodeKeyPreimage  *[32]byte
	valuePreimages   [][32]byte
	compressFlags    uint32
	hash             hashCell
	valueHash        hashCell
}

// newLeaf validates preimage count and builds a leaf. It does not compute
// any hash eagerly; hashes are lazily cached on first Hash()/ValueHash().
func newLeaf(nodeKey zkhash.ZkHash, keyPreimage *[32]byte, valuePreimages [][32]byte, compressFlags uint32) (*leafNode, error) {
	if len(valuePreimages) == 0 || len(valuePreimages) > MaxValuePreimages {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidValuePreimages, len(valuePreimages))
	}
	preimages := make([][32]byte, len(valuePreimages))
	copy(preimages, valuePreimages)
	return &leafNode{
		nodeKey:         nodeKey,
		nodeKeyPreimage: keyPreimage,
		valuePreimages:  preimages,
		compressFlags:   compressFlags,
	}, nil
}

func (l *leafNode) NodeType() NodeType { return NodeTypeLeaf }

// ValueHash computes (and caches) hash_bytes_array(value_preimages, compress_flags).
func (l *leafNode) ValueHash() (zkhash.ZkHash, error) {
	if v, ok := l.valueHash.get(); ok {
		return v, nil
	}
	v, err := zkhash.HashBytesArray(l.valuePreimages, l.compressFlags)
	if err != nil {
		return zkhash.ZkHash{}, err
	}
	return l.valueHash.setOnce(v), nil
}

func (l *leafNode) Hash() (zkhash.ZkHash, error) {
	if h, ok := l.hash.get(); ok {
		return h, nil
	}
	vh, err := l.ValueHash()
	if err != nil {
		return zkhash.ZkHash{}, err
	}
	h, err := zkhash.Hash(uint64(NodeTypeLeaf), [2]zkhash.ZkHash{l.nodeKey, vh})
	if err != nil {
		return zkhash.ZkHash{}, err
	}
	return l.hash.setOnce(h), nil
}

// nodeRef is either an already-known ZkHash or a lazy pointer into the
// engine's dirty-branch arena, resolvable to a ZkHash only after Commit.
// Terminal-ness of the referenced node is tracked separately by callers
// (the insert/delete transition tables), never inferred from the hash.
type nodeRef struct {
	hash zkhash.ZkHash
	lazy *branchNode
}

func resolvedRef(h zkhash.ZkHash) nodeRef { return nodeRef{hash: h} }

var emptyRef = nodeRef{hash: zkhash.Empty}

func lazyRef(b *branchNode) nodeRef { return nodeRef{lazy: b} }

// isEmpty reports whether the ref is known to point at the empty subtree.
func (r nodeRef) isEmpty() bool { return r.lazy == nil && r.hash == zkhash.Empty }

// Hash returns the ref's hash, or ErrUnresolvedHashUsed if it is a lazy
// reference whose branch has not yet had its hash cell filled.
func (r nodeRef) Hash() (zkhash.ZkHash, error) {
	if r.lazy == nil {
		return r.hash, nil
	}
	h, ok := r.lazy.hash.get()
	if !ok {
		return zkhash.ZkHash{}, ErrUnresolvedHashUsed
	}
	return h, nil
}

// branchNode holds the node type (truthfully tracking each child's
// terminal/branch nature, per the engine's transition tables) and two
// children, each possibly still a lazy reference.
type branchNode struct {
	nodeType NodeType
	left     nodeRef
	right    nodeRef
	hash     hashCell

	// idx is this branch's position in the owning trie's dirtyBranches
	// arena; used only as a visited-set index during Commit's post-order
	// walk (see the resolved bitset in trie.go). It carries no semantic
	// weight beyond that bookkeeping.
	idx int
}

func (b *branchNode) NodeType() NodeType { return b.nodeType }

func (b *branchNode) Hash() (zkhash.ZkHash, error) {
	if h, ok := b.hash.get(); ok {
		return h, nil
	}
	lh, err := b.left.Hash()
	if err != nil {
		return zkhash.ZkHash{}, err
	}
	rh, err := b.right.Hash()
	if err != nil {
		return zkhash.ZkHash{}, err
	}
	h, err := zkhash.Hash(uint64(b.nodeType), [2]zkhash.ZkHash{lh, rh})
	if err != nil {
		return zkhash.ZkHash{}, err
	}
	return b.hash.setOnce(h), nil
}

// branchType computes the node_type for a branch given each child's
// terminal-ness, per the (is_left_terminal, is_right_terminal) truth table.
func branchType(leftTerminal, rightTerminal bool) NodeType {
	switch {
	case leftTerminal && rightTerminal:
		return NodeTypeBranchLTRT
	case leftTerminal && !rightTerminal:
		return NodeTypeBranchLTRB
	case !leftTerminal && rightTerminal:
		return NodeTypeBranchLBRT
	default:
		return NodeTypeBranchLBRB
	}
}

// pathBit returns bit (level mod 8) of byte (31 - level/8) of key: LSB
// first within a byte, low-address byte of the 32-byte big-endian key
// consumed first. This load-bearing convention must match exactly across
// any reimplementation for proof compatibility.
func pathBit(key zkhash.ZkHash, level int) int {
	byteIdx := 31 - level/8
	bitIdx := uint(level % 8)
	return int((key[byteIdx] >> bitIdx) & 1)
}
