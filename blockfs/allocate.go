package blockfs

import "github.com/gooslab/oslab/internal/errcode"

// allocateBlock returns the physical block backing logical block log,
// allocating it — and any indirect/double-indirect index pages needed to
// address it — if it doesn't exist yet. On failure partway through a
// multi-level allocation, any index pages freshly allocated for this call
// are freed again before the error is returned, so a failed write never
// leaves an orphaned, unreferenced index page behind.
func allocateBlock(dev BlockDevice, in *Inode, log int64) (uint32, error) {
	if log >= maxLogicalBlocks {
		return 0, errcode.New("allocate_block", CodeFBig, "logical block number out of range")
	}

	phys, err := resolvePhysical(dev, in, log)
	if err != nil {
		return 0, err
	}
	if phys != 0 {
		return phys, nil
	}

	if log < NDirect {
		p, err := dev.AllocBlock()
		if err != nil {
			return 0, errcode.Wrap("allocate_block", CodeNoSpace, err)
		}
		in.DirectBlocks[log] = p
		return p, nil
	}
	log -= NDirect

	if log < NIndirect {
		return allocateViaIndirect(dev, &in.Indirect, log)
	}
	log -= NIndirect

	outer := log / NIndirect
	inner := log % NIndirect
	return allocateViaDIndirect(dev, in, outer, inner)
}

// allocateViaIndirect allocates the target block within the single
// indirect page rooted at *indirectPtr, allocating the page itself first
// if it doesn't exist.
func allocateViaIndirect(dev BlockDevice, indirectPtr *uint32, idx int64) (uint32, error) {
	pageAllocated := false
	var page []uint32

	if *indirectPtr == 0 {
		p, err := dev.AllocBlock()
		if err != nil {
			return 0, errcode.Wrap("allocate_block", CodeNoSpace, err)
		}
		*indirectPtr = p
		pageAllocated = true
		page = make([]uint32, NIndirect)
	} else {
		var err error
		page, err = readPage(dev, *indirectPtr)
		if err != nil {
			return 0, err
		}
	}

	phys, err := dev.AllocBlock()
	if err != nil {
		if pageAllocated {
			dev.FreeBlock(*indirectPtr)
			*indirectPtr = 0
		}
		return 0, errcode.Wrap("allocate_block", CodeNoSpace, err)
	}

	page[idx] = phys
	if err := writePage(dev, *indirectPtr, page); err != nil {
		dev.FreeBlock(phys)
		if pageAllocated {
			dev.FreeBlock(*indirectPtr)
			*indirectPtr = 0
		}
		return 0, err
	}
	return phys, nil
}

// allocateViaDIndirect allocates the target block within the
// double-indirect tree: dpage[outer] names a second-level indirect page,
// and ipage[inner] names the target. Either or both levels may need fresh
// pages; a failure at the innermost AllocBlock rolls back every page this
// call allocated.
func allocateViaDIndirect(dev BlockDevice, in *Inode, outer, inner int64) (uint32, error) {
	dAllocated := false
	var dpage []uint32

	if in.DIndirect == 0 {
		p, err := dev.AllocBlock()
		if err != nil {
			return 0, errcode.Wrap("allocate_block", CodeNoSpace, err)
		}
		in.DIndirect = p
		dAllocated = true
		dpage = make([]uint32, NIndirect)
	} else {
		var err error
		dpage, err = readPage(dev, in.DIndirect)
		if err != nil {
			return 0, err
		}
	}

	indirectNr := dpage[outer]
	indirectAllocated := false
	var ipage []uint32

	if indirectNr == 0 {
		p, err := dev.AllocBlock()
		if err != nil {
			if dAllocated {
				dev.FreeBlock(in.DIndirect)
				in.DIndirect = 0
			}
			return 0, errcode.Wrap("allocate_block", CodeNoSpace, err)
		}
		indirectNr = p
		indirectAllocated = true
		ipage = make([]uint32, NIndirect)
	} else {
		var err error
		ipage, err = readPage(dev, indirectNr)
		if err != nil {
			return 0, err
		}
	}

	phys, err := dev.AllocBlock()
	if err != nil {
		if indirectAllocated {
			dev.FreeBlock(indirectNr)
			if dAllocated {
				dev.FreeBlock(in.DIndirect)
				in.DIndirect = 0
			}
		}
		return 0, errcode.Wrap("allocate_block", CodeNoSpace, err)
	}

	ipage[inner] = phys
	if err := writePage(dev, indirectNr, ipage); err != nil {
		dev.FreeBlock(phys)
		if indirectAllocated {
			dev.FreeBlock(indirectNr)
			if dAllocated {
				dev.FreeBlock(in.DIndirect)
				in.DIndirect = 0
			}
		}
		return 0, err
	}

	if indirectAllocated {
		dpage[outer] = indirectNr
		if err := writePage(dev, in.DIndirect, dpage); err != nil {
			dev.FreeBlock(phys)
			dev.FreeBlock(indirectNr)
			if dAllocated {
				dev.FreeBlock(in.DIndirect)
				in.DIndirect = 0
			}
			return 0, err
		}
	}
	return phys, nil
}
