package fs

import (
	"github.com/simplefs/go-sfs/common"
	"github.com/simplefs/go-sfs/disk"
	"github.com/simplefs/go-sfs/inode"
	"github.com/simplefs/go-sfs/util"
)

// Read copies data from inum's file into data. A single call reads at
// most one block: the one containing offset. Up to min(size-offset,
// BlockSize) bytes are copied from the start of that block, so an
// offset inside a block reads from that block's first byte. The
// returned count is truthful about how much of data is meaningful:
// length, capped by the size-offset bytes left in the file and by the
// one block copied.
func (fs *FileSystem) Read(inum common.Inum, data []byte, length uint64, offset uint64) (uint64, error) {
	if fs.disk == nil {
		return 0, ErrNotMounted
	}
	_, ino, err := fs.readInode(inum)
	if err != nil {
		return 0, err
	}
	size := uint64(ino.Size)
	if offset >= size {
		return 0, ErrBadOffset
	}

	ptIdx := offset / disk.BlockSize
	var bnum common.Bnum
	if ptIdx < common.NDIRECT {
		bnum = uint64(ino.Direct[ptIdx])
	} else {
		ptrs, err := fs.disk.Read(uint64(ino.Indirect))
		if err != nil {
			return 0, err
		}
		bnum = inode.PtrGet(ptrs, ptIdx-common.NDIRECT)
	}

	blk, err := fs.disk.Read(bnum)
	if err != nil {
		return 0, err
	}
	n := util.Min(size-offset, disk.BlockSize)
	copy(data, blk[:n])
	util.DPrintf(2, "Read: inode %d block %d %d bytes\n", inum, bnum, n)

	return util.Min(length, n), nil
}

// Write stores one block's worth of data at offset. A fresh data
// block is always assigned; the payload is zero-padded to a full
// block so no stale bytes leak past length. For an offset within the
// direct pointers the block is linked into the slot covering offset;
// past them it goes into the first free slot of the indirect block
// (whatever the offset), allocating the indirect block on first use.
// Size grows by length even when an existing
// block is replaced, matching the append-oriented write model.
func (fs *FileSystem) Write(inum common.Inum, data []byte, length uint64, offset uint64) (uint64, error) {
	if fs.disk == nil {
		return 0, ErrNotMounted
	}
	blk, ino, err := fs.readInode(inum)
	if err != nil {
		return 0, err
	}
	ptIdx := offset / disk.BlockSize
	if ptIdx >= common.NDIRECT+common.NINDIRECT {
		return 0, ErrMaxFileSize
	}

	bnum, err := fs.assignBlock()
	if err != nil {
		return 0, err
	}
	payload := make(disk.Block, disk.BlockSize)
	copy(payload[:util.Min(length, disk.BlockSize)], data)
	if err := fs.disk.Write(bnum, payload); err != nil {
		fs.unassignBlock(bnum)
		return 0, err
	}

	if ptIdx < common.NDIRECT {
		ino.Direct[ptIdx] = uint32(bnum)
	} else {
		if err := fs.linkIndirect(&ino, bnum); err != nil {
			fs.unassignBlock(bnum)
			return 0, err
		}
	}

	ino.Size += uint32(length)
	if err := fs.writeInode(inum, blk, &ino); err != nil {
		return 0, err
	}
	util.DPrintf(2, "Write: inode %d block %d %d bytes at %d\n",
		inum, bnum, length, offset)
	return length, nil
}

// linkIndirect installs bnum into the first free slot of ino's
// indirect block, allocating the indirect block if the inode has none
// yet. Pointers stay densely packed from index 0.
func (fs *FileSystem) linkIndirect(ino *inode.Inode, bnum common.Bnum) error {
	if ino.Indirect == 0 {
		b, err := fs.assignBlock()
		if err != nil {
			return err
		}
		ino.Indirect = uint32(b)
	}
	ptrs, err := fs.disk.Read(uint64(ino.Indirect))
	if err != nil {
		return err
	}
	var slot uint64
	for ; slot < common.NINDIRECT; slot++ {
		if inode.PtrGet(ptrs, slot) == common.NULLBNUM {
			inode.PtrPut(ptrs, slot, bnum)
			break
		}
	}
	if slot >= common.NINDIRECT {
		return ErrMaxFileSize
	}
	return fs.disk.Write(uint64(ino.Indirect), ptrs)
}
