package main

import (
	"crypto/rand"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/scroll-tech/zktrie-ng/zkhash"
	"github.com/scroll-tech/zktrie-ng/zktdb"

	zkt "github.com/scroll-tech/zktrie-ng"
)

func main() {
	benchmarkInsertInExisting()
}

func benchmarkInsertInExisting() {
	f, _ := os.Create("cpu.prof")
	g, _ := os.Create("mem.prof")
	_ = pprof.StartCPUProfile(f)
	defer pprof.StopCPUProfile()
	defer func() { _ = pprof.WriteHeapProfile(g) }()

	// Number of existing leaves in the trie.
	n := 100000
	// Leaves to be inserted afterwards.
	toInsert := 10000
	total := n + toInsert

	keys := make([][]byte, n)
	toInsertKeys := make([][]byte, toInsert)
	value := [][32]byte{{}}
	copy(value[0][:], []byte("value"))

	for i := 0; i < 4; i++ {
		// Generate the key set once per outer iteration.
		for i := 0; i < total; i++ {
			key := make([]byte, 32)
			if _, err := rand.Read(key); err != nil {
				panic(err)
			}
			if i < n {
				keys[i] = key
			} else {
				toInsertKeys[i-n] = key
			}
		}
		fmt.Printf("Generated key set %d\n", i)

		// Build a trie from the same keys multiple times.
		for i := 0; i < 5; i++ {
			trie := zkt.NewZkTrie(zktdb.NewMemStore(), zkhash.NoCacheHasher{})
			for _, k := range keys {
				if err := trie.Update(k, value, 1); err != nil {
					panic(err)
				}
			}
			if _, err := trie.Commit(); err != nil {
				panic(err)
			}

			// Now insert the remaining leaves and measure time.
			start := time.Now()
			for _, k := range toInsertKeys {
				if err := trie.Update(k, value, 1); err != nil {
					panic(err)
				}
			}
			if _, err := trie.Commit(); err != nil {
				panic(err)
			}
			elapsed := time.Since(start)
			fmt.Printf("Took %v to insert and commit %d leaves\n", elapsed, toInsert)
		}
	}
}
