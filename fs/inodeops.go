package fs

import (
	"github.com/simplefs/go-sfs/common"
	"github.com/simplefs/go-sfs/inode"
	"github.com/simplefs/go-sfs/util"
)

// Create allocates the lowest-numbered free inode, zeroes its
// pointers and size, writes the inode table through, and returns the
// inode number.
func (fs *FileSystem) Create() (common.Inum, error) {
	if fs.disk == nil {
		return 0, ErrNotMounted
	}
	for b := fs.meta.InodeStart(); b < fs.meta.DataStart(); b++ {
		blk, err := fs.disk.Read(b)
		if err != nil {
			return 0, err
		}
		for slot := uint64(0); slot < common.INODEBLK; slot++ {
			ino := inode.Get(blk, slot)
			if ino.IsValid() {
				continue
			}
			ino = inode.Inode{Valid: 1}
			ino.Put(blk, slot)
			if err := fs.disk.Write(b, blk); err != nil {
				return 0, err
			}
			if err := fs.initBitmap(); err != nil {
				return 0, err
			}
			inum := (b-1)*common.INODEBLK + slot
			util.DPrintf(2, "Create: inode %d\n", inum)
			return inum, nil
		}
	}
	return 0, ErrNoFreeInode
}

// Remove frees all blocks inum references in the bitmap and marks the
// inode invalid in the inode table. The indirect block's pointer run
// is densely packed from index 0, so the walk stops at the first zero
// entry.
func (fs *FileSystem) Remove(inum common.Inum) error {
	if fs.disk == nil {
		return ErrNotMounted
	}
	blk, ino, err := fs.readInode(inum)
	if err != nil {
		return err
	}
	for _, p := range ino.Direct {
		if p != 0 {
			fs.unassignBlock(uint64(p))
		}
	}
	if ino.Indirect != 0 {
		fs.unassignBlock(uint64(ino.Indirect))
		ptrs, err := fs.disk.Read(uint64(ino.Indirect))
		if err != nil {
			return err
		}
		for i := uint64(0); i < common.NINDIRECT; i++ {
			p := inode.PtrGet(ptrs, i)
			if p == 0 {
				break
			}
			fs.unassignBlock(p)
		}
	}
	ino.Valid = 0
	util.DPrintf(2, "Remove: inode %d\n", inum)
	return fs.writeInode(inum, blk, &ino)
}

// Stat returns the logical size of inum's file in bytes.
func (fs *FileSystem) Stat(inum common.Inum) (uint64, error) {
	if fs.disk == nil {
		return 0, ErrNotMounted
	}
	_, ino, err := fs.readInode(inum)
	if err != nil {
		return 0, err
	}
	return uint64(ino.Size), nil
}
