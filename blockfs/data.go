package blockfs

import "github.com/gooslab/oslab/internal/errcode"

// ReadData reads up to len(buf) bytes starting at byte offset start,
// returning the number of bytes actually read. Reads past in.Size are
// truncated to in.Size. Holes (unallocated logical blocks within the
// file's size) read back as zero, without touching the device.
func ReadData(dev BlockDevice, in *Inode, start int64, buf []byte) (int, error) {
	if start < 0 || start >= in.Size || len(buf) == 0 {
		return 0, nil
	}

	want := int64(len(buf))
	if start+want > in.Size {
		want = in.Size - start
	}

	scratch := make([]byte, BlockSize)
	var done int64
	for done < want {
		off := start + done
		logBlock := off / BlockSize
		inBlock := off % BlockSize

		phys, err := resolvePhysical(dev, in, logBlock)
		if err != nil {
			return int(done), err
		}
		if phys == 0 {
			for i := range scratch {
				scratch[i] = 0
			}
		} else if err := dev.ReadBlocks(phys, scratch); err != nil {
			return int(done), errcode.Wrap("read_data", CodeIO, err)
		}

		n := BlockSize - inBlock
		if remain := want - done; n > remain {
			n = remain
		}
		copy(buf[done:done+n], scratch[inBlock:inBlock+n])
		done += n
	}
	return int(done), nil
}

// WriteData writes buf starting at byte offset start, allocating blocks
// (including indirect/double-indirect index pages) lazily as needed. On a
// mid-write allocation failure, any growth already committed to in.Size is
// kept — bytes already written stay written — and the error is returned
// along with the partial count, matching the source's "short write"
// contract.
func WriteData(dev BlockDevice, in *Inode, start int64, buf []byte) (int, error) {
	if start < 0 {
		return 0, errcode.New("write_data", CodeFBig, "negative start offset")
	}
	if start+int64(len(buf)) > MaxFileSize {
		return 0, errcode.New("write_data", CodeFBig, "write exceeds max file size")
	}

	scratch := make([]byte, BlockSize)
	var done int64
	want := int64(len(buf))
	for done < want {
		off := start + done
		logBlock := off / BlockSize
		inBlock := off % BlockSize

		phys, err := allocateBlock(dev, in, logBlock)
		if err != nil {
			if off > in.Size {
				in.Size = off
			}
			return int(done), err
		}

		n := BlockSize - inBlock
		if remain := want - done; n > remain {
			n = remain
		}

		if n < BlockSize {
			// Partial block write: preserve the rest of the block's
			// existing contents (or zero, if it was a fresh allocation).
			if err := dev.ReadBlocks(phys, scratch); err != nil {
				return int(done), errcode.Wrap("write_data", CodeIO, err)
			}
		}
		copy(scratch[inBlock:inBlock+n], buf[done:done+n])
		if err := dev.WriteBlocks(phys, scratch); err != nil {
			return int(done), errcode.Wrap("write_data", CodeIO, err)
		}

		done += n
		if off+n > in.Size {
			in.Size = off + n
		}
	}
	return int(done), nil
}

// FreeBlocks releases every block an inode owns — direct, indirect, and
// double-indirect, including the index pages themselves — and resets Size
// to zero.
func FreeBlocks(dev BlockDevice, in *Inode) error {
	for i, nr := range in.DirectBlocks {
		if nr != 0 {
			if err := dev.FreeBlock(nr); err != nil {
				return errcode.Wrap("free_blocks", CodeIO, err)
			}
			in.DirectBlocks[i] = 0
		}
	}

	if in.Indirect != 0 {
		if err := freeIndirectPage(dev, in.Indirect); err != nil {
			return err
		}
		in.Indirect = 0
	}

	if in.DIndirect != 0 {
		dpage, err := readPage(dev, in.DIndirect)
		if err != nil {
			return err
		}
		for i, nr := range dpage {
			if nr == 0 {
				continue
			}
			if err := freeIndirectPage(dev, nr); err != nil {
				return err
			}
			dpage[i] = 0
		}
		if err := dev.FreeBlock(in.DIndirect); err != nil {
			return errcode.Wrap("free_blocks", CodeIO, err)
		}
		in.DIndirect = 0
	}

	in.Size = 0
	return nil
}

// freeIndirectPage frees every block an indirect index page points to,
// then the page itself.
func freeIndirectPage(dev BlockDevice, nr uint32) error {
	page, err := readPage(dev, nr)
	if err != nil {
		return err
	}
	for _, phys := range page {
		if phys == 0 {
			continue
		}
		if err := dev.FreeBlock(phys); err != nil {
			return errcode.Wrap("free_blocks", CodeIO, err)
		}
	}
	if err := dev.FreeBlock(nr); err != nil {
		return errcode.Wrap("free_blocks", CodeIO, err)
	}
	return nil
}
