package fs

import (
	"github.com/simplefs/go-sfs/alloc"
	"github.com/simplefs/go-sfs/common"
	"github.com/simplefs/go-sfs/disk"
	"github.com/simplefs/go-sfs/inode"
	"github.com/simplefs/go-sfs/util"
)

// initBitmap rebuilds the free-block bitmap from the inode table. The
// superblock and the inode-table blocks are always in use; beyond
// that, a block is in use iff some valid inode references it directly,
// through its indirect block, or as the indirect block itself.
func (fs *FileSystem) initBitmap() error {
	bm := alloc.MkBitmap(uint64(fs.meta.Blocks))
	bm.MarkUsed(0)
	for b := fs.meta.InodeStart(); b < fs.meta.DataStart(); b++ {
		bm.MarkUsed(b)
	}
	for b := fs.meta.InodeStart(); b < fs.meta.DataStart(); b++ {
		blk, err := fs.disk.Read(b)
		if err != nil {
			return err
		}
		for slot := uint64(0); slot < common.INODEBLK; slot++ {
			ino := inode.Get(blk, slot)
			if !ino.IsValid() {
				continue
			}
			if err := fs.markInodeBlocks(&ino, bm); err != nil {
				return err
			}
		}
	}
	fs.freeBlocks = bm
	util.DPrintf(5, "initBitmap: %d of %d blocks free\n",
		bm.NumFree(), bm.Len())
	return nil
}

func (fs *FileSystem) markInodeBlocks(ino *inode.Inode, bm *alloc.Bitmap) error {
	for _, p := range ino.Direct {
		if p != 0 {
			bm.MarkUsed(uint64(p))
		}
	}
	if ino.Indirect == 0 {
		return nil
	}
	bm.MarkUsed(uint64(ino.Indirect))
	blk, err := fs.disk.Read(uint64(ino.Indirect))
	if err != nil {
		return err
	}
	for i := uint64(0); i < common.NINDIRECT; i++ {
		if p := inode.PtrGet(blk, i); p != 0 {
			bm.MarkUsed(p)
		}
	}
	return nil
}

// assignBlock claims the lowest free block and zero-fills it on disk,
// so a block later linked in as an indirect block starts out as an
// empty pointer array.
func (fs *FileSystem) assignBlock() (common.Bnum, error) {
	b, ok := fs.freeBlocks.AllocNum()
	if !ok {
		return common.NULLBNUM, ErrNoFreeBlock
	}
	if err := fs.disk.Write(b, make(disk.Block, disk.BlockSize)); err != nil {
		fs.freeBlocks.Free(b)
		return common.NULLBNUM, err
	}
	util.DPrintf(5, "assignBlock: %d\n", b)
	return b, nil
}

// unassignBlock returns a block to the free pool.
func (fs *FileSystem) unassignBlock(b common.Bnum) {
	fs.freeBlocks.Free(b)
}
