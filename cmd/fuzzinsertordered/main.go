package main

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"sort"

	"github.com/scroll-tech/zktrie-ng/zkhash"
	"github.com/scroll-tech/zktrie-ng/zktdb"

	zkt "github.com/scroll-tech/zktrie-ng"
)

// keyList sorts 32-byte keys so the same multiset can be replayed in two
// different orders.
type keyList struct {
	keys [][]byte
}

func (kl keyList) Len() int           { return len(kl.keys) }
func (kl keyList) Less(i, j int) bool { return bytes.Compare(kl.keys[i], kl.keys[j]) < 0 }
func (kl keyList) Swap(i, j int)      { kl.keys[i], kl.keys[j] = kl.keys[j], kl.keys[i] }

// main repeatedly inserts the same multiset of (key, value) updates into
// two fresh tries, once in random order and once sorted, and panics if the
// two committed roots ever disagree. This exercises the root-determinism
// property: two tries that received the same multiset of updates (each
// key last-write-wins) must have equal roots after Commit, independent of
// insertion order.
func main() {
	for attempt := 0; ; attempt++ {
		fmt.Println("attempt #", attempt)

		keys := make([][]byte, 10000)
		values := make([][32]byte, len(keys))
		for i := range keys {
			keys[i] = make([]byte, 32)
			if _, err := rand.Read(keys[i]); err != nil {
				panic(err)
			}
			if _, err := rand.Read(values[i][:]); err != nil {
				panic(err)
			}
		}

		sorted := keyList{keys: append([][]byte(nil), keys...)}
		sort.Sort(sorted)

		randomTrie := zkt.NewZkTrie(zktdb.NewMemStore(), zkhash.NoCacheHasher{})
		for i, k := range keys {
			if err := randomTrie.Update(k, [][32]byte{values[i]}, 1); err != nil {
				panic(err)
			}
		}
		randomRoot, err := randomTrie.Commit()
		if err != nil {
			panic(err)
		}

		byValue := make(map[string][32]byte, len(keys))
		for i, k := range keys {
			byValue[string(k)] = values[i]
		}
		sortedTrie := zkt.NewZkTrie(zktdb.NewMemStore(), zkhash.NoCacheHasher{})
		for _, k := range sorted.keys {
			if err := sortedTrie.Update(k, [][32]byte{byValue[string(k)]}, 1); err != nil {
				panic(err)
			}
		}
		sortedRoot, err := sortedTrie.Commit()
		if err != nil {
			panic(err)
		}

		if randomRoot != sortedRoot {
			panic("differing roots for the same key/value multiset")
		}
	}
}
