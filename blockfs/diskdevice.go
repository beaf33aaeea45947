package blockfs

import (
	"os"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/gooslab/oslab/internal/errcode"
	"github.com/gooslab/oslab/internal/logging"
)

// DiskDevice is a file-backed BlockDevice. It opens its backing file with
// O_DIRECT where the platform supports it (see rclone's directIOOpenFile
// pattern), falling back to buffered I/O otherwise, and tracks free blocks
// with a free list like MemDevice.
type DiskDevice struct {
	f        *os.File
	capacity uint32

	freeMu sync.Mutex
	free   []uint32
	next   uint32
}

// OpenDiskDevice opens (creating if needed) path as a disk-backed device
// with room for capacity blocks, numbered 1..capacity. Block 0 is never
// handed out, since a zero block number means "unallocated" in an Inode.
func OpenDiskDevice(path string, capacity uint32) (*DiskDevice, error) {
	f, err := openDirect(path)
	if err != nil {
		return nil, errcode.Wrap("disk_device.open", CodeIO, err)
	}
	size := (int64(capacity) + 1) * BlockSize
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, errcode.Wrap("disk_device.open", CodeIO, err)
	}
	return &DiskDevice{f: f, capacity: capacity + 1, next: 1}, nil
}

func openDirect(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|unix.O_DIRECT, 0o644)
	if err != nil {
		logging.Warn("blockfs: O_DIRECT open failed, falling back to buffered I/O", "path", path, "err", err)
		return os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	}
	return f, nil
}

// Close releases the backing file.
func (d *DiskDevice) Close() error {
	return d.f.Close()
}

func (d *DiskDevice) offset(nr uint32) int64 {
	return int64(nr) * BlockSize
}

// ReadBlocks implements BlockDevice.
func (d *DiskDevice) ReadBlocks(nr uint32, buf []byte) error {
	if nr >= d.capacity {
		return errcode.New("disk_device.read", CodeIO, "block number out of range")
	}
	if len(buf) != BlockSize {
		return errcode.New("disk_device.read", CodeIO, "buffer is not one block long")
	}
	n, err := d.f.ReadAt(buf, d.offset(nr))
	if err != nil && n != len(buf) {
		return errcode.Wrap("disk_device.read", CodeIO, err)
	}
	return nil
}

// WriteBlocks implements BlockDevice.
func (d *DiskDevice) WriteBlocks(nr uint32, buf []byte) error {
	if nr >= d.capacity {
		return errcode.New("disk_device.write", CodeIO, "block number out of range")
	}
	if len(buf) != BlockSize {
		return errcode.New("disk_device.write", CodeIO, "buffer is not one block long")
	}
	if _, err := d.f.WriteAt(buf, d.offset(nr)); err != nil {
		return errcode.Wrap("disk_device.write", CodeIO, err)
	}
	return nil
}

// AllocBlock hands out the most recently freed block if there is one, and
// otherwise the lowest block number never yet handed out.
func (d *DiskDevice) AllocBlock() (uint32, error) {
	d.freeMu.Lock()
	defer d.freeMu.Unlock()

	if n := len(d.free); n > 0 {
		nr := d.free[n-1]
		d.free = d.free[:n-1]
		return nr, nil
	}
	if d.next >= d.capacity {
		return 0, errcode.New("disk_device.alloc", CodeNoSpace, "device is full")
	}
	nr := d.next
	d.next++
	return nr, nil
}

// FreeBlock zeroes the block and returns it to the free list.
func (d *DiskDevice) FreeBlock(nr uint32) error {
	if nr >= d.capacity {
		return errcode.New("disk_device.free", CodeIO, "block number out of range")
	}
	zero := make([]byte, BlockSize)
	if _, err := d.f.WriteAt(zero, d.offset(nr)); err != nil {
		return errcode.Wrap("disk_device.free", CodeIO, err)
	}

	d.freeMu.Lock()
	d.free = append(d.free, nr)
	d.freeMu.Unlock()
	return nil
}
