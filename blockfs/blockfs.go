// Package blockfs implements single-inode block addressing over a logical
// block device: direct, indirect, and double-indirect pointers, sparse
// reads, lazy allocate-on-write with rollback, and recursive free.
// Concurrency is delegated to the caller — operations here are
// single-threaded relative to one inode, and block device reads/writes are
// synchronous (see SPEC_FULL.md §6's carried concurrency model).
package blockfs

import (
	"encoding/binary"

	"github.com/gooslab/oslab/internal/errcode"
)

const (
	// BlockSize is the size in bytes of every physical block, including
	// indirect and double-indirect index pages.
	BlockSize = 4096

	// NDirect is the number of direct block pointers an inode holds.
	NDirect = 12

	// NIndirect is the number of 32-bit block numbers that fit in one
	// index page (BlockSize / 4).
	NIndirect = BlockSize / 4
)

// maxLogicalBlocks is N_DIRECT + N_INDIRECT + N_INDIRECT².
const maxLogicalBlocks = NDirect + NIndirect + NIndirect*NIndirect

// MaxFileSize is the largest offset an inode can address.
const MaxFileSize = int64(maxLogicalBlocks) * BlockSize

// Error codes this package returns via internal/errcode.
const (
	CodeFBig    errcode.Code = "efbig"   // offset/logical block out of range
	CodeIO      errcode.Code = "eio"     // underlying block device failure
	CodeNoSpace errcode.Code = "enospc"  // device has no free blocks
)

// Inode is a single file's block map: direct pointers, one indirect
// pointer, one double-indirect pointer, and the file's byte size. A zero
// block number means "unallocated" (a hole).
type Inode struct {
	DirectBlocks [NDirect]uint32
	Indirect     uint32
	DIndirect    uint32
	Size         int64
}

// BlockDevice is the block device collaborator: blocks are addressed by
// logical block number, not byte offset, and every block is exactly
// BlockSize bytes.
type BlockDevice interface {
	ReadBlocks(nr uint32, buf []byte) error
	WriteBlocks(nr uint32, buf []byte) error
	AllocBlock() (uint32, error)
	FreeBlock(nr uint32) error
}

// readPage reads index page nr and decodes it as NIndirect little-endian
// uint32 block numbers.
func readPage(dev BlockDevice, nr uint32) ([]uint32, error) {
	raw := make([]byte, BlockSize)
	if err := dev.ReadBlocks(nr, raw); err != nil {
		return nil, errcode.Wrap("read_page", CodeIO, err)
	}
	page := make([]uint32, NIndirect)
	for i := range page {
		page[i] = binary.LittleEndian.Uint32(raw[i*4:])
	}
	return page, nil
}

// writePage encodes page as NIndirect little-endian uint32s and writes it
// to index page nr.
func writePage(dev BlockDevice, nr uint32, page []uint32) error {
	raw := make([]byte, BlockSize)
	for i, v := range page {
		binary.LittleEndian.PutUint32(raw[i*4:], v)
	}
	if err := dev.WriteBlocks(nr, raw); err != nil {
		return errcode.Wrap("write_page", CodeIO, err)
	}
	return nil
}

// resolvePhysical translates logical block log to its physical block
// number, without reading the target block itself. A zero result means the
// logical block is a hole (sparse, unallocated).
func resolvePhysical(dev BlockDevice, in *Inode, log int64) (uint32, error) {
	if log >= maxLogicalBlocks {
		return 0, errcode.New("resolve", CodeFBig, "logical block number out of range")
	}

	if log < NDirect {
		return in.DirectBlocks[log], nil
	}
	log -= NDirect

	if log < NIndirect {
		if in.Indirect == 0 {
			return 0, nil
		}
		page, err := readPage(dev, in.Indirect)
		if err != nil {
			return 0, err
		}
		return page[log], nil
	}
	log -= NIndirect

	outer := log / NIndirect
	inner := log % NIndirect
	if in.DIndirect == 0 {
		return 0, nil
	}
	dpage, err := readPage(dev, in.DIndirect)
	if err != nil {
		return 0, err
	}
	indirectNr := dpage[outer]
	if indirectNr == 0 {
		return 0, nil
	}
	ipage, err := readPage(dev, indirectNr)
	if err != nil {
		return 0, err
	}
	return ipage[inner], nil
}
