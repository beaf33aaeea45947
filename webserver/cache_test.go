package webserver

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func file(name string, n int) *FileData {
	return &FileData{Name: name, Buf: make([]byte, n), Size: int64(n)}
}

func TestCacheInsertAndGet(t *testing.T) {
	c := newCache(1024)
	require.True(t, c.Insert("a", file("a", 100)))

	data, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, "a", data.Name)
	c.Release("a")
}

func TestCacheMissReturnsFalse(t *testing.T) {
	c := newCache(1024)
	_, ok := c.Get("missing")
	require.False(t, ok)
}

// TestCacheEvictsLRU is the E5 scenario: when capacity forces an eviction,
// the least-recently-used unpinned entry goes first.
func TestCacheEvictsLRU(t *testing.T) {
	c := newCache(300)
	require.True(t, c.Insert("a", file("a", 100)))
	require.True(t, c.Insert("b", file("b", 100)))
	require.True(t, c.Insert("c", file("c", 100)))

	// Touch "a" so "b" becomes the least-recently-used.
	_, ok := c.Get("a")
	require.True(t, ok)
	c.Release("a")

	require.True(t, c.Insert("d", file("d", 100)))

	_, stillB := c.Get("b")
	require.False(t, stillB, "b should have been evicted as LRU")
	_, stillA := c.Get("a")
	require.True(t, stillA)
	c.Release("a")
}

// TestCacheSkipsPinnedEntries is the E4 scenario: a pinned (in-use) entry
// is never evicted even when it is the least-recently-used.
func TestCacheSkipsPinnedEntries(t *testing.T) {
	c := newCache(200)
	require.True(t, c.Insert("a", file("a", 100)))
	data, ok := c.Get("a") // pin a, leave it pinned
	require.True(t, ok)
	require.NotNil(t, data)

	require.True(t, c.Insert("b", file("b", 100)))

	// No room for c without evicting a or b; a is pinned so b must go.
	ok3 := c.Insert("c", file("c", 100))
	require.True(t, ok3)

	_, stillA := c.Get("a")
	require.True(t, stillA, "pinned entry must survive eviction")
	c.Release("a")
	c.Release("a")
}

func TestCacheRefusesOversizedEntry(t *testing.T) {
	c := newCache(100)
	require.False(t, c.Insert("big", file("big", 200)))
}
