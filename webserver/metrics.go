package webserver

import "sync/atomic"

// Metrics holds atomic counters for server activity, in the shape of
// go-ublk's metrics.go.
type Metrics struct {
	requestsServed atomic.Uint64
	cacheHits      atomic.Uint64
	cacheMisses    atomic.Uint64
	cacheRefusals  atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of Metrics' counters.
type MetricsSnapshot struct {
	RequestsServed uint64
	CacheHits      uint64
	CacheMisses    uint64
	CacheRefusals  uint64
}

// Metrics returns the server's current counter values.
func (s *Server) Metrics() MetricsSnapshot {
	return MetricsSnapshot{
		RequestsServed: s.metrics.requestsServed.Load(),
		CacheHits:      s.metrics.cacheHits.Load(),
		CacheMisses:    s.metrics.cacheMisses.Load(),
		CacheRefusals:  s.metrics.cacheRefusals.Load(),
	}
}
