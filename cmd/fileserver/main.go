// Command fileserver runs webserver.Server against a directory of static
// files.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gooslab/oslab/internal/logging"
	"github.com/gooslab/oslab/webserver"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "listen address")
		root       = flag.String("root", ".", "directory to serve")
		numWorkers = flag.Int("workers", 4, "worker pool size")
		cacheMB    = flag.Int64("cache-mb", 16, "file cache capacity in MiB")
		verbose    = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	cfg := webserver.DefaultConfig(*root)
	cfg.Addr = *addr
	cfg.NumWorkers = *numWorkers
	cfg.CacheCapacity = *cacheMB << 20

	srv := webserver.New(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx)
	}()

	logger.Info("fileserver listening", "addr", *addr, "root", *root)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("received shutdown signal")
	case err := <-errCh:
		if err != nil {
			logger.Error("listen failed", "err", err)
		}
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}

	m := srv.Metrics()
	logger.Info("final metrics",
		"requests_served", m.RequestsServed,
		"cache_hits", m.CacheHits,
		"cache_misses", m.CacheMisses,
		"cache_refusals", m.CacheRefusals)
}
