// Command threaddemo runs a small ping-pong scenario over the thread
// package's cooperative scheduler: two threads alternate via Yield(Any)
// a fixed number of times, then both exit.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/gooslab/oslab/internal/logging"
	"github.com/gooslab/oslab/thread"
)

func main() {
	var (
		rounds  = flag.Int("rounds", 5, "number of ping-pong round trips")
		verbose = flag.Bool("v", false, "verbose scheduler logging")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logging.SetDefault(logging.NewLogger(logConfig))

	// thread.Exit() panics with an unexported sentinel once the last
	// runnable thread exits, rather than calling os.Exit itself — that's
	// the caller's call, made here.
	defer func() {
		if r := recover(); r != nil {
			fmt.Println("all threads exited, ping-pong complete")
		}
	}()

	runPingPong(*rounds)
}

func runPingPong(rounds int) {
	self := thread.Init()
	fmt.Printf("main thread id: %d\n", self)

	other := thread.Create(func(arg any) {
		n := arg.(int)
		for i := 0; i < n; i++ {
			fmt.Println("pong")
			thread.Yield(thread.Any)
		}
	}, rounds)
	if other < 0 {
		log.Fatalf("thread.Create failed: %d", other)
	}

	for i := 0; i < rounds; i++ {
		fmt.Println("ping")
		thread.Yield(thread.Any)
	}

	// Let the other thread finish and exit first, so this thread is the last
	// one left and its Exit panics on this goroutine, where main recovers it.
	thread.Wait(other)

	m := thread.Snapshot()
	fmt.Printf("context switches: %d, threads created: %d\n", m.ContextSwitches, m.ThreadsCreated)

	thread.Exit()
}
