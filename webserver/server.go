// Package webserver implements a multi-threaded (OS-thread, not the
// cooperative thread package) file server: a bounded request ring feeding a
// fixed worker pool, backed by a bounded LRU file cache with in-use
// pinning. HTTP parsing semantics, TLS, and wire framing beyond what the
// standard library already provides are named non-goals.
package webserver

import (
	"context"
	"net"
	"syscall"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/gooslab/oslab/internal/bufpool"
	"github.com/gooslab/oslab/internal/logging"
)

// Config configures a Server. Mirrors go-ublk's DeviceParams/DefaultParams
// pattern: a plain struct with a Default constructor, no functional options.
type Config struct {
	Addr          string     // listen address for ListenAndServe
	Root          string     // file root for the default FileReader
	NumWorkers    int        // worker pool size
	RingCapacity  int        // request ring buffer size (usable = capacity-1)
	CacheCapacity int64      // file cache capacity in bytes
	Reader        FileReader // override the default directory reader
	NewRequest    func(net.Conn) Request
}

// DefaultConfig returns sensible defaults for serving files out of root.
func DefaultConfig(root string) Config {
	return Config{
		Addr:          ":8080",
		Root:          root,
		NumWorkers:    4,
		RingCapacity:  17,
		CacheCapacity: 16 << 20,
	}
}

// Server is a running file server: accept loop (via ListenAndServe),
// request ring, worker pool, and cache.
type Server struct {
	cfg    Config
	ring   *requestRing
	cache  *Cache
	reader FileReader
	newReq func(net.Conn) Request

	metrics Metrics

	group  *errgroup.Group
	gctx   context.Context
	cancel context.CancelFunc
	ln     net.Listener
}

// New constructs a Server and starts its worker pool. Workers begin
// waiting on the request ring immediately; nothing is served until
// Request (or ListenAndServe) starts feeding it connections.
func New(cfg Config) *Server {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 4
	}
	if cfg.RingCapacity < 2 {
		cfg.RingCapacity = 17
	}
	if cfg.CacheCapacity <= 0 {
		cfg.CacheCapacity = 16 << 20
	}
	reader := cfg.Reader
	if reader == nil {
		reader = dirFileReader{root: cfg.Root}
	}
	newReq := cfg.NewRequest
	if newReq == nil {
		newReq = newHTTPRequest
	}

	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)

	s := &Server{
		cfg:    cfg,
		ring:   newRequestRing(cfg.RingCapacity),
		cache:  newCache(cfg.CacheCapacity),
		reader: reader,
		newReq: newReq,
		group:  g,
		gctx:   gctx,
		cancel: cancel,
	}

	for i := 0; i < cfg.NumWorkers; i++ {
		g.Go(func() error {
			s.workerLoop()
			return nil
		})
	}
	return s
}

// Request enqueues an accepted connection for a worker to pick up. It
// blocks while the request ring is full, exactly as the source's
// add_request did.
func (s *Server) Request(conn net.Conn) {
	if !s.ring.add(conn) {
		conn.Close()
	}
}

func (s *Server) workerLoop() {
	for {
		conn, ok := s.ring.take()
		if !ok {
			return
		}
		s.serveOne(conn)
	}
}

// serveOne looks up the requested file in the cache, falling back to the
// configured FileReader on a miss. The cache mutex is only ever held for
// the lookup-and-pin or insert-and-maybe-evict step, never while streaming
// the file back to the connection.
func (s *Server) serveOne(conn net.Conn) {
	req := s.newReq(conn)
	defer req.Release()

	name := req.FileName()
	if name == "" {
		return
	}

	if data, ok := s.cache.Get(name); ok {
		s.metrics.cacheHits.Add(1)
		req.AttachFile(data)
		if err := req.SendFile(); err != nil {
			logging.Warn("webserver: send failed", "file", name, "err", err)
		}
		s.cache.Release(name)
		s.metrics.requestsServed.Add(1)
		return
	}
	s.metrics.cacheMisses.Add(1)

	data, err := s.reader.ReadFile(name)
	if err != nil {
		logging.Warn("webserver: read failed", "file", name, "err", err)
		return
	}
	// Send before inserting: once in the cache the entry is unpinned, and
	// an eviction could hand its buffer back to the pool mid-send.
	req.AttachFile(data)
	if err := req.SendFile(); err != nil {
		logging.Warn("webserver: send failed", "file", name, "err", err)
	}
	cached := s.cache.Insert(name, data)
	if !cached {
		s.metrics.cacheRefusals.Add(1)
	}
	// A refused entry isn't owned by the cache, so nobody else will ever
	// return its buffer to the pool — do it here once this request is the
	// last one using it.
	if !cached && data.pooled {
		bufpool.Put(data.Buf)
	}
	s.metrics.requestsServed.Add(1)
}

// ListenAndServe opens cfg.Addr with SO_REUSEPORT set (so multiple server
// processes can share the port across CPUs) and feeds accepted connections
// into Request until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context) error {
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			var sockErr error
			err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
			if err != nil {
				return err
			}
			return sockErr
		},
	}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				logging.Warn("webserver: accept failed", "err", err)
				continue
			}
		}
		s.Request(conn)
	}
}

// Shutdown stops accepting new work, closes the request ring so idle
// workers exit, and waits for every in-flight request to finish or for ctx
// to expire first.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()
	s.ring.closeRing()

	done := make(chan error, 1)
	go func() { done <- s.group.Wait() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
