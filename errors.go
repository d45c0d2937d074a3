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

// Package zkt implements a sparse binary Merkle trie ("zkTrie") whose node
// hashes are computed with the zkhash Poseidon-over-BN254 hash scheme. It
// backs state commitments of a zero-knowledge rollup: every insertion,
// deletion, and lookup produces state consistent with what an in-circuit
// verifier would compute, and per-key Merkle proofs can be extracted for
// verification.
package zkt

import "errors"

// Sentinel errors. Recoverable conditions are returned, never panicked;
// panics are reserved for violated internal invariants (an unresolved
// branch surfacing where only resolved hashes should exist, etc).
var (
	// ErrInvalidNodeBytes wraps a decode failure: unexpected EOF, an
	// invalid node type tag, or a nested hash-layer error while
	// validating a ZkHash. Always implies store corruption or a codec
	// version mismatch.
	ErrInvalidNodeBytes = errors.New("zkt: invalid node bytes")

	// ErrNodeNotFound is returned by the internal hash-indexed lookup
	// when a target key collides with an unrelated terminal at the
	// deepest level. The public Get/Delete recover it as "absent";
	// everywhere else it is fatal.
	ErrNodeNotFound = errors.New("zkt: node not found")

	// ErrMaxLevelReached means an insertion or deletion would have to
	// descend past TrieMaxLevels. Fatal to the operation; the trie is
	// left unmodified. Indicates a pathological key distribution or a
	// caller bug (e.g. a non-hashed raw key fed directly as a node key).
	ErrMaxLevelReached = errors.New("zkt: maximum trie level reached")

	// ErrUnresolvedHashUsed is raised when code asks for the hash of a
	// lazy branch reference that has not yet been resolved by Commit.
	// A contract violation; it should never surface from correct use of
	// the public API.
	ErrUnresolvedHashUsed = errors.New("zkt: unresolved hash used")

	// ErrInvalidValuePreimages is returned when a leaf is constructed
	// with zero or more than MaxValuePreimages value preimages.
	ErrInvalidValuePreimages = errors.New("zkt: invalid value preimages length")

	// ErrDirtyTrie is returned by FullGC when called on a trie that has
	// pending, uncommitted mutations.
	ErrDirtyTrie = errors.New("zkt: operation requires a clean (committed) trie")

	// ErrMalformedProof is returned by VerifyProof when the supplied
	// proof is missing its trailing magic marker or its node chain does
	// not hash-chain up to the claimed root.
	ErrMalformedProof = errors.New("zkt: malformed proof")
)
