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

	"github.com/bits-and-blooms/bitset"
	"golang.org/x/sync/errgroup"

	"github.com/scroll-tech/zktrie-ng/zkhash"
	"github.com/scroll-tech/zktrie-ng/zktdb"
)

// ZkTrie is a path-compressed sparse binary Merkle trie with lazy
// branch-hash materialization. A single instance is not designed for
// concurrent mutation: Update/Delete/Commit require exclusive access.
// Read-only traversals of a just-committed (clean) trie need only shared
// access.
type ZkTrie struct {
	store  zktdb.Store
	hasher zkhash.KeyHasher

	root nodeRef

	dirtyBranches []*branchNode
	resolved      *bitset.BitSet
	dirtyLeaves   map[zkhash.ZkHash]*leafNode
	gcCandidates  []nodeRef

	// commitMu guards dirtyLeaves and resolved while Commit's walk fans
	// out across subtrees.
	commitMu sync.Mutex
}

// NewZkTrie builds an empty trie over store, using hasher to map opaque
// keys to node keys. If hasher is nil, zkhash.NoCacheHasher{} is used.
func NewZkTrie(store zktdb.Store, hasher zkhash.KeyHasher) *ZkTrie {
	return NewZkTrieWithRoot(store, hasher, zkhash.Empty)
}

// NewZkTrieWithRoot builds a trie over store rooted at an existing,
// already-committed root hash (e.g. to reopen state persisted earlier).
func NewZkTrieWithRoot(store zktdb.Store, hasher zkhash.KeyHasher, root zkhash.ZkHash) *ZkTrie {
	if hasher == nil {
		hasher = zkhash.NoCacheHasher{}
	}
	return &ZkTrie{
		store:       store,
		hasher:      hasher,
		root:        resolvedRef(root),
		dirtyLeaves: make(map[zkhash.ZkHash]*leafNode),
		resolved:    bitset.New(0),
	}
}

// Root returns the trie's root hash and whether it is currently resolved
// (false means the trie is dirty and Commit has not yet run).
func (t *ZkTrie) Root() (zkhash.ZkHash, bool) {
	h, err := t.root.Hash()
	if err != nil {
		return zkhash.ZkHash{}, false
	}
	return h, true
}

func (t *ZkTrie) isDirty() bool {
	return t.root.lazy != nil || len(t.dirtyBranches) > 0 || len(t.dirtyLeaves) > 0
}

func (t *ZkTrie) addBranch(b *branchNode) nodeRef {
	b.idx = len(t.dirtyBranches)
	t.dirtyBranches = append(t.dirtyBranches, b)
	return lazyRef(b)
}

func (t *ZkTrie) addLeafNode(l *leafNode) (nodeRef, error) {
	h, err := l.Hash()
	if err != nil {
		return nodeRef{}, err
	}
	t.dirtyLeaves[h] = l
	return resolvedRef(h), nil
}

// fetchNode resolves ref to its underlying Node, consulting dirtyLeaves
// before the store for a resolved hash, or returning the in-memory branch
// directly for a lazy reference.
func (t *ZkTrie) fetchNode(ref nodeRef) (Node, error) {
	if ref.lazy != nil {
		return ref.lazy, nil
	}
	if ref.hash == zkhash.Empty {
		return theEmptyNode, nil
	}
	if l, ok := t.dirtyLeaves[ref.hash]; ok {
		return l, nil
	}
	raw, ok, err := t.store.Get(ref.hash)
	if err != nil {
		return nil, fmt.Errorf("zkt: fetch %s: %w", ref.hash, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, ref.hash)
	}
	n, err := DecodeNode(raw)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// ---- lookup ----

// GetLeaf returns the leaf stored under key, or ok=false if absent.
func (t *ZkTrie) GetLeaf(key []byte) (nodeKey zkhash.ZkHash, preimages [][32]byte, compressFlags uint32, ok bool, err error) {
	target, err := t.hasher.Hash(key)
	if err != nil {
		return zkhash.ZkHash{}, nil, 0, false, err
	}
	n, err := t.getNodeByKey(t.root, target, 0)
	if err != nil {
		if err == ErrNodeNotFound {
			return zkhash.ZkHash{}, nil, 0, false, nil
		}
		return zkhash.ZkHash{}, nil, 0, false, err
	}
	leaf, isLeaf := n.(*leafNode)
	if !isLeaf {
		return zkhash.ZkHash{}, nil, 0, false, nil
	}
	out := make([][32]byte, len(leaf.valuePreimages))
	copy(out, leaf.valuePreimages)
	return leaf.nodeKey, out, leaf.compressFlags, true, nil
}

// Get is a convenience wrapper over GetLeaf returning only the value
// preimages.
func (t *ZkTrie) Get(key []byte) ([][32]byte, bool, error) {
	_, preimages, _, ok, err := t.GetLeaf(key)
	return preimages, ok, err
}

// getNodeByKey walks from ref looking for target. A terminal leaf
// collision at the deepest level is ErrNodeNotFound; anywhere else an
// unrelated terminal means "absent", returned as the empty node.
func (t *ZkTrie) getNodeByKey(ref nodeRef, target zkhash.ZkHash, level int) (Node, error) {
	n, err := t.fetchNode(ref)
	if err != nil {
		return nil, err
	}
	switch v := n.(type) {
	case emptyNode:
		return v, nil
	case *leafNode:
		if v.nodeKey == target {
			return v, nil
		}
		if level == TrieMaxLevels-1 {
			return nil, ErrNodeNotFound
		}
		return theEmptyNode, nil
	case *branchNode:
		if pathBit(target, level) == 1 {
			return t.getNodeByKey(v.right, target, level+1)
		}
		return t.getNodeByKey(v.left, target, level+1)
	default:
		return nil, fmt.Errorf("zkt: unreachable node type %T", n)
	}
}

// ---- insertion ----

// UpdateValue encodes value via its ValueCodec and inserts/overwrites the
// leaf for key with the result.
func (t *ZkTrie) UpdateValue(key []byte, value ValueCodec) error {
	preimages, compressFlags := value.EncodeValueBytes()
	return t.Update(key, preimages, compressFlags)
}

// Update inserts or overwrites the leaf for key with the given value
// preimages and compress flags.
func (t *ZkTrie) Update(key []byte, valuePreimages [][32]byte, compressFlags uint32) error {
	nodeKey, err := t.hasher.Hash(key)
	if err != nil {
		return err
	}
	var preimage [32]byte
	if len(key) <= 32 {
		copy(preimage[32-len(key):], key)
	} else {
		copy(preimage[:], key[:32])
	}
	leaf, err := newLeaf(nodeKey, &preimage, valuePreimages, compressFlags)
	if err != nil {
		return err
	}
	newRoot, _, err := t.addLeaf(t.root, leaf, 0)
	if err != nil {
		return err
	}
	t.root = newRoot
	return nil
}

// addLeaf descends from at inserting newLeaf, returning the replacement
// reference for at and whether the node it now points to is terminal.
func (t *ZkTrie) addLeaf(at nodeRef, newLeaf *leafNode, level int) (nodeRef, bool, error) {
	if level >= TrieMaxLevels {
		return nodeRef{}, false, ErrMaxLevelReached
	}
	n, err := t.fetchNode(at)
	if err != nil {
		return nodeRef{}, false, err
	}
	switch v := n.(type) {
	case emptyNode:
		ref, err := t.addLeafNode(newLeaf)
		if err != nil {
			return nodeRef{}, false, err
		}
		return ref, true, nil
	case *leafNode:
		if v.nodeKey == newLeaf.nodeKey {
			oldHash, err := v.Hash()
			if err != nil {
				return nodeRef{}, false, err
			}
			newHash, err := newLeaf.Hash()
			if err != nil {
				return nodeRef{}, false, err
			}
			if oldHash == newHash {
				return resolvedRef(oldHash), true, nil
			}
			t.gcCandidates = append(t.gcCandidates, resolvedRef(oldHash))
			ref, err := t.addLeafNode(newLeaf)
			if err != nil {
				return nodeRef{}, false, err
			}
			return ref, true, nil
		}
		ref, err := t.pushLeaf(v, newLeaf, level)
		if err != nil {
			return nodeRef{}, false, err
		}
		return ref, false, nil
	case *branchNode:
		goRight := pathBit(newLeaf.nodeKey, level) == 1
		child := v.left
		if goRight {
			child = v.right
		}
		newChild, childTerminal, err := t.addLeaf(child, newLeaf, level+1)
		if err != nil {
			return nodeRef{}, false, err
		}
		newType := nextBranchTypeOnInsert(v.nodeType, goRight, childTerminal)
		nb := &branchNode{nodeType: newType, left: v.left, right: v.right}
		if goRight {
			nb.right = newChild
		} else {
			nb.left = newChild
		}
		t.gcCandidates = append(t.gcCandidates, at)
		return t.addBranch(nb), false, nil
	default:
		return nodeRef{}, false, fmt.Errorf("zkt: unreachable node type %T", n)
	}
}

// nextBranchTypeOnInsert recomputes a branch's type after an insertion
// descended into one of its children. The touched side's terminal-ness
// becomes childTerminal; the untouched side keeps whatever terminal-ness
// old already reports for it.
func nextBranchTypeOnInsert(old NodeType, wentRight, childTerminal bool) NodeType {
	oldLeftTerminal := old == NodeTypeBranchLTRT || old == NodeTypeBranchLTRB
	oldRightTerminal := old == NodeTypeBranchLTRT || old == NodeTypeBranchLBRT
	if wentRight {
		return branchType(oldLeftTerminal, childTerminal)
	}
	return branchType(childTerminal, oldRightTerminal)
}

// pushLeaf deepens the tree while old and new share a path prefix,
// wrapping in BranchLTRB/BranchLBRT with the untaken side empty, then
// emits a BranchLTRT once the two keys diverge, ordering the two leaves
// left (bit 0) / right (bit 1).
func (t *ZkTrie) pushLeaf(old, new *leafNode, level int) (nodeRef, error) {
	if level >= TrieMaxLevels-1 {
		return nodeRef{}, ErrMaxLevelReached
	}
	oldBit := pathBit(old.nodeKey, level)
	newBit := pathBit(new.nodeKey, level)
	if oldBit == newBit {
		child, err := t.pushLeaf(old, new, level+1)
		if err != nil {
			return nodeRef{}, err
		}
		nb := &branchNode{}
		if oldBit == 1 {
			nb.nodeType = NodeTypeBranchLTRB
			nb.left = emptyRef
			nb.right = child
		} else {
			nb.nodeType = NodeTypeBranchLBRT
			nb.left = child
			nb.right = emptyRef
		}
		return t.addBranch(nb), nil
	}

	oldRef, err := t.addLeafNode(old)
	if err != nil {
		return nodeRef{}, err
	}
	newRef, err := t.addLeafNode(new)
	if err != nil {
		return nodeRef{}, err
	}
	nb := &branchNode{nodeType: NodeTypeBranchLTRT}
	if newBit == 1 {
		nb.left, nb.right = oldRef, newRef
	} else {
		nb.left, nb.right = newRef, oldRef
	}
	return t.addBranch(nb), nil
}

// ---- deletion ----

// Delete removes the leaf for key. It is a no-op if key is absent.
func (t *ZkTrie) Delete(key []byte) error {
	target, err := t.hasher.Hash(key)
	if err != nil {
		return err
	}
	newRoot, _, err := t.deleteNode(t.root, target, 0)
	if err != nil {
		if err == ErrNodeNotFound {
			return nil
		}
		return err
	}
	t.root = newRoot
	return nil
}

func (t *ZkTrie) deleteNode(at nodeRef, target zkhash.ZkHash, level int) (nodeRef, bool, error) {
	n, err := t.fetchNode(at)
	if err != nil {
		return nodeRef{}, false, err
	}
	switch v := n.(type) {
	case emptyNode:
		return nodeRef{}, false, ErrNodeNotFound
	case *leafNode:
		if v.nodeKey != target {
			return nodeRef{}, false, ErrNodeNotFound
		}
		oldHash, err := v.Hash()
		if err != nil {
			return nodeRef{}, false, err
		}
		t.gcCandidates = append(t.gcCandidates, resolvedRef(oldHash))
		return emptyRef, true, nil
	case *branchNode:
		goRight := pathBit(target, level) == 1
		child := v.left
		if goRight {
			child = v.right
		}
		newChild, childTerminal, err := t.deleteNode(child, target, level+1)
		if err != nil {
			return nodeRef{}, false, err
		}

		siblingTerminal := siblingTerminalOnDelete(v.nodeType, goRight)
		var leftTerminal, rightTerminal bool
		var left, right nodeRef
		if goRight {
			left, right = v.left, newChild
			leftTerminal, rightTerminal = siblingTerminal, childTerminal
		} else {
			left, right = newChild, v.right
			leftTerminal, rightTerminal = childTerminal, siblingTerminal
		}

		if leftTerminal && rightTerminal && (left.isEmpty() || right.isEmpty()) {
			t.gcCandidates = append(t.gcCandidates, at)
			if left.isEmpty() {
				return right, true, nil
			}
			return left, true, nil
		}

		nb := &branchNode{nodeType: branchType(leftTerminal, rightTerminal), left: left, right: right}
		t.gcCandidates = append(t.gcCandidates, at)
		return t.addBranch(nb), false, nil
	default:
		return nodeRef{}, false, fmt.Errorf("zkt: unreachable node type %T", n)
	}
}

// siblingTerminalOnDelete infers the untouched sibling's terminal-ness
// from the old node type and the side that was descended into.
func siblingTerminalOnDelete(old NodeType, wentRight bool) bool {
	switch old {
	case NodeTypeBranchLTRT:
		return true
	case NodeTypeBranchLTRB:
		return wentRight
	case NodeTypeBranchLBRT:
		return !wentRight
	default: // BranchLBRB
		return false
	}
}

// ---- commit ----

// Commit resolves every lazy branch reachable from the root (in parallel
// per branch, since write-once hash cells make concurrent resolution
// race-free), writes their canonical bytes and any pending dirty leaves to
// the store, and returns the resolved root hash. Calling Commit again with
// no intervening mutation is a no-op returning the same hash.
func (t *ZkTrie) Commit() (zkhash.ZkHash, error) {
	h, err := t.resolveAndStore(t.root)
	if err != nil {
		return zkhash.ZkHash{}, err
	}
	t.root = resolvedRef(h)
	t.dirtyBranches = nil
	t.resolved = bitset.New(0)
	t.dirtyLeaves = make(map[zkhash.ZkHash]*leafNode)

	kept := t.gcCandidates[:0]
	for _, r := range t.gcCandidates {
		if r.lazy == nil {
			kept = append(kept, r)
		}
	}
	t.gcCandidates = kept
	return h, nil
}

func (t *ZkTrie) resolveAndStore(ref nodeRef) (zkhash.ZkHash, error) {
	if ref.lazy == nil {
		t.commitMu.Lock()
		leaf, pending := t.dirtyLeaves[ref.hash]
		t.commitMu.Unlock()
		if pending {
			// Persist the key preimage too, so a leaf read back from the
			// store can still ship it inside a proof.
			buf, err := EncodeNode(leaf, true)
			if err != nil {
				return zkhash.ZkHash{}, err
			}
			if err := t.store.Put(ref.hash, buf); err != nil {
				return zkhash.ZkHash{}, fmt.Errorf("zkt: commit leaf %s: %w", ref.hash, err)
			}
			t.commitMu.Lock()
			delete(t.dirtyLeaves, ref.hash)
			t.commitMu.Unlock()
		}
		return ref.hash, nil
	}

	// The resolved bitset, not the hash cell, decides whether this branch
	// was already persisted during this Commit: the cell may have been
	// filled by an out-of-band Hash() call that never wrote any bytes.
	b := ref.lazy
	t.commitMu.Lock()
	done := uint(b.idx) < t.resolved.Len() && t.resolved.Test(uint(b.idx))
	t.commitMu.Unlock()
	if done {
		h, _ := b.hash.get()
		return h, nil
	}

	var lh, rh zkhash.ZkHash
	var grp errgroup.Group
	grp.Go(func() error {
		h, err := t.resolveAndStore(b.left)
		lh = h
		return err
	})
	grp.Go(func() error {
		h, err := t.resolveAndStore(b.right)
		rh = h
		return err
	})
	if err := grp.Wait(); err != nil {
		return zkhash.ZkHash{}, err
	}

	h, err := zkhash.Hash(uint64(b.nodeType), [2]zkhash.ZkHash{lh, rh})
	if err != nil {
		return zkhash.ZkHash{}, err
	}
	h = b.hash.setOnce(h)

	buf, err := EncodeNode(b, false)
	if err != nil {
		return zkhash.ZkHash{}, err
	}
	if err := t.store.Put(h, buf); err != nil {
		return zkhash.ZkHash{}, fmt.Errorf("zkt: commit branch %s: %w", h, err)
	}
	t.commitMu.Lock()
	t.resolved.Set(uint(b.idx))
	t.commitMu.Unlock()
	return h, nil
}

// ---- iteration & GC ----

// Iterate performs a read-only, left-first DFS from the root, yielding
// every reachable node's hash and canonical bytes exactly once. It
// expects a resolved (i.e. just-committed) trie: an uncommitted branch
// that still has a lazy child surfaces ErrUnresolvedHashUsed.
func (t *ZkTrie) Iterate(fn func(hash zkhash.ZkHash, encoded []byte) error) error {
	return t.iterateRef(t.root, fn)
}

func (t *ZkTrie) iterateRef(ref nodeRef, fn func(zkhash.ZkHash, []byte) error) error {
	n, err := t.fetchNode(ref)
	if err != nil {
		return err
	}
	switch v := n.(type) {
	case emptyNode:
		return nil
	case *leafNode:
		h, err := v.Hash()
		if err != nil {
			return err
		}
		buf, err := EncodeNode(v, false)
		if err != nil {
			return err
		}
		return fn(h, buf)
	case *branchNode:
		h, err := v.Hash()
		if err != nil {
			return err
		}
		buf, err := EncodeNode(v, false)
		if err != nil {
			return err
		}
		if err := fn(h, buf); err != nil {
			return err
		}
		if err := t.iterateRef(v.left, fn); err != nil {
			return err
		}
		return t.iterateRef(v.right, fn)
	default:
		return fmt.Errorf("zkt: unreachable node type %T", n)
	}
}

// GC deletes every resolved (already-persisted) entry in gcCandidates from
// the store. Unresolved entries are kept for a later GC call while the
// trie is still dirty, and discarded once it is clean (they were never
// persisted, so there is nothing to delete). A no-op if the store does not
// support or has disabled GC.
func (t *ZkTrie) GC() error {
	if !t.store.SupportsGC() || !t.store.GCEnabled() {
		return nil
	}
	dirty := t.isDirty()
	kept := t.gcCandidates[:0]
	for _, r := range t.gcCandidates {
		if r.lazy == nil {
			if err := t.store.Remove(r.hash); err != nil {
				return err
			}
			continue
		}
		if dirty {
			kept = append(kept, r)
		}
	}
	t.gcCandidates = kept
	return nil
}

// FullGC enumerates every node reachable from the root via Iterate into a
// temporary purge store, then retains only those keys in the backing
// store, physically discarding anything unreachable. It requires a clean
// (just-committed) trie.
func (t *ZkTrie) FullGC() error {
	if t.isDirty() {
		return ErrDirtyTrie
	}
	if !t.store.SupportsGC() || !t.store.GCEnabled() {
		return nil
	}
	purge := zktdb.NewMemStore()
	if err := t.Iterate(func(h zkhash.ZkHash, encoded []byte) error {
		return purge.Put(h, encoded)
	}); err != nil {
		return err
	}
	return t.store.Retain(func(h zkhash.ZkHash) bool {
		ok, _ := purge.Contains(h)
		return ok
	})
}
