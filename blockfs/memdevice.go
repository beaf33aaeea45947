package blockfs

import (
	"sync"

	"github.com/gooslab/oslab/internal/errcode"
)

// shardBlocks is the number of blocks each lock shard covers, adapted from
// go-ublk's backend.Memory (ShardSize/BlockSize): enough shards for
// parallel I/O across blocks without one lock per block.
const shardBlocks = 16

// MemDevice is an in-memory BlockDevice, keyed by logical block number
// rather than byte offset. Blocks are numbered 1..capacity; block 0 is
// never handed out, since a zero block number means "unallocated" in an
// Inode. Free block tracking is a simple free list: AllocBlock reuses the
// most recently freed block, and otherwise hands out the lowest block
// number never yet handed out.
type MemDevice struct {
	blockSize int
	capacity  uint32

	shards []sync.RWMutex
	data   map[uint32][]byte

	freeMu sync.Mutex
	free   []uint32
	next   uint32 // lowest block number never yet handed out
}

// NewMemDevice creates an in-memory device with room for capacity blocks,
// all initially free.
func NewMemDevice(capacity uint32) *MemDevice {
	numShards := (capacity + shardBlocks - 1) / shardBlocks
	if numShards == 0 {
		numShards = 1
	}
	return &MemDevice{
		blockSize: BlockSize,
		capacity:  capacity + 1, // valid block numbers are 1..capacity
		shards:    make([]sync.RWMutex, numShards),
		data:      make(map[uint32][]byte),
		next:      1,
	}
}

func (m *MemDevice) shardFor(nr uint32) *sync.RWMutex {
	return &m.shards[(nr/shardBlocks)%uint32(len(m.shards))]
}

// ReadBlocks implements BlockDevice.
func (m *MemDevice) ReadBlocks(nr uint32, buf []byte) error {
	if nr >= m.capacity {
		return errcode.New("mem_device.read", CodeIO, "block number out of range")
	}
	if len(buf) != m.blockSize {
		return errcode.New("mem_device.read", CodeIO, "buffer is not one block long")
	}
	shard := m.shardFor(nr)
	shard.RLock()
	defer shard.RUnlock()

	block, ok := m.data[nr]
	if !ok {
		for i := range buf {
			buf[i] = 0
		}
		return nil
	}
	copy(buf, block)
	return nil
}

// WriteBlocks implements BlockDevice.
func (m *MemDevice) WriteBlocks(nr uint32, buf []byte) error {
	if nr >= m.capacity {
		return errcode.New("mem_device.write", CodeIO, "block number out of range")
	}
	if len(buf) != m.blockSize {
		return errcode.New("mem_device.write", CodeIO, "buffer is not one block long")
	}
	shard := m.shardFor(nr)
	shard.Lock()
	defer shard.Unlock()

	block := make([]byte, m.blockSize)
	copy(block, buf)
	m.data[nr] = block
	return nil
}

// AllocBlock hands out the most recently freed block if there is one, and
// otherwise the lowest block number never yet handed out.
func (m *MemDevice) AllocBlock() (uint32, error) {
	m.freeMu.Lock()
	defer m.freeMu.Unlock()

	if n := len(m.free); n > 0 {
		nr := m.free[n-1]
		m.free = m.free[:n-1]
		return nr, nil
	}
	if m.next >= m.capacity {
		return 0, errcode.New("mem_device.alloc", CodeNoSpace, "device is full")
	}
	nr := m.next
	m.next++
	return nr, nil
}

// FreeBlock returns a block to the free list and clears its contents, so a
// later AllocBlock never hands back stale data from a previous owner.
func (m *MemDevice) FreeBlock(nr uint32) error {
	if nr >= m.capacity {
		return errcode.New("mem_device.free", CodeIO, "block number out of range")
	}
	shard := m.shardFor(nr)
	shard.Lock()
	delete(m.data, nr)
	shard.Unlock()

	m.freeMu.Lock()
	m.free = append(m.free, nr)
	m.freeMu.Unlock()
	return nil
}
