// Command nrtstress hammers the memory runtime from many goroutines and
// verifies the allocation counters balance afterwards. Useful for soaking
// the refcount paths under -race and for watching the runtime's Prometheus
// metrics during a run.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "go.uber.org/automaxprocs"

	"github.com/numforge/nrt-go/metrics"
	"github.com/numforge/nrt-go/nrt"
)

func main() {
	workers := flag.Int("workers", 8, "Concurrent worker goroutines")
	iters := flag.Int("iters", 200000, "Acquire/release iterations per worker")
	handles := flag.Int("handles", 64, "Shared handles under churn")
	size := flag.Int("size", 256, "Payload size in bytes")
	safe := flag.Bool("safe", false, "Use the debug-fill allocation variant")
	varsize := flag.Bool("varsize", true, "Also churn a varsize handle per worker")
	listen := flag.String("listen", "", "Serve Prometheus metrics on this address during the run")
	flag.Parse()

	nrt.Init()

	if *listen != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(metrics.NewCollector())
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(*listen, mux); err != nil {
				exitErr("metrics server failed", err)
			}
		}()
	}

	shared := make([]*nrt.MemInfo, *handles)
	for i := range shared {
		if *safe {
			shared[i] = nrt.AllocSafe(*size)
		} else {
			shared[i] = nrt.Alloc(*size)
		}
		if shared[i] == nil {
			exitErr("allocation failed", fmt.Errorf("handle %d, size %d", i, *size))
		}
	}

	var wg sync.WaitGroup
	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			var vmi *nrt.MemInfo
			if *varsize {
				vmi = nrt.NewVarsize(16)
			}
			for i := 0; i < *iters; i++ {
				mi := shared[rng.Intn(len(shared))]
				mi.Acquire()
				mi.Release()
				if vmi != nil && i%1024 == 0 {
					if vmi.VarsizeRealloc(16+rng.Intn(4096)) == nil {
						exitErr("varsize resize failed", nil)
					}
				}
			}
			if vmi != nil {
				vmi.Release()
			}
		}(int64(w + 1))
	}
	wg.Wait()

	for _, mi := range shared {
		mi.Release()
	}

	s := nrt.ReadStats()
	fmt.Printf("bytes allocated=%d freed=%d handles allocated=%d freed=%d\n",
		s.Alloc, s.Free, s.MiAlloc, s.MiFree)
	if err := nrt.CheckLeaks(); err != nil {
		exitErr("leak check failed", err)
	}
}

func exitErr(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "nrtstress: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "nrtstress: %s\n", msg)
	}
	os.Exit(1)
}
