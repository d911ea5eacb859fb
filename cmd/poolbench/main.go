// Command poolbench exercises a slabpool.Pool/ConcurrentPool under a
// configurable workload and reports the resulting Stats.
package main

import (
	"flag"
	"fmt"
	"log"
	"sync"

	"github.com/fmstephe/slabpool"
)

var (
	goroutinesFlag = flag.Int("goroutines", 1, "number of concurrent goroutines; >1 uses ConcurrentPool")
	opsFlag        = flag.Int("ops", 100_000, "get/release pairs performed per goroutine")
	blockSizeFlag  = flag.Int("block-size", 256, "slots per block, must be a power of two")
)

type benchNode struct {
	value uint64
	next  uintptr
}

func main() {
	flag.Parse()

	if *goroutinesFlag <= 1 {
		runSingleThreaded(*opsFlag, *blockSizeFlag)
		return
	}
	runConcurrent(*goroutinesFlag, *opsFlag, *blockSizeFlag)
}

func runSingleThreaded(ops, blockSize int) {
	pool, err := slabpool.NewSize[benchNode](blockSize, 0)
	if err != nil {
		log.Fatalf("poolbench: %s", err)
	}
	defer func() {
		if err := pool.Destroy(); err != nil {
			log.Fatalf("poolbench: destroy: %s", err)
		}
	}()

	for i := 0; i < ops; i++ {
		n := pool.Get()
		if n == nil {
			log.Fatalf("poolbench: allocation failed after %d ops", i)
		}
		n.value = uint64(i)
		pool.Release(n)
	}

	fmt.Printf("single-threaded: %+v\n", pool.Stats())
}

func runConcurrent(goroutines, opsPerGoroutine, blockSize int) {
	pool, err := slabpool.NewConcurrentSize[benchNode](blockSize, 0)
	if err != nil {
		log.Fatalf("poolbench: %s", err)
	}
	defer func() {
		if err := pool.Destroy(); err != nil {
			log.Fatalf("poolbench: destroy: %s", err)
		}
	}()

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < opsPerGoroutine; i++ {
				n := pool.Get()
				if n == nil {
					log.Fatalf("poolbench: allocation failed")
				}
				n.value++
				pool.Release(n)
			}
		}()
	}
	wg.Wait()

	fmt.Printf("concurrent (%d goroutines): %+v\n", goroutines, pool.Stats())
}
