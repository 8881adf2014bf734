// Package fs implements the SimpleFS engine: formatting, mounting,
// and the inode-level operations over a block device.
//
// A FileSystem owns its Disk exclusively while mounted. Every
// state-changing operation writes through to the disk immediately; the
// only in-memory state is a copy of the superblock and the free-block
// bitmap derived from the inode table. There is no journal, no
// namespace, and no concurrency control: files are plain inode
// numbers and callers are single-threaded.
package fs

import (
	"fmt"

	"github.com/simplefs/go-sfs/alloc"
	"github.com/simplefs/go-sfs/common"
	"github.com/simplefs/go-sfs/disk"
	"github.com/simplefs/go-sfs/inode"
	"github.com/simplefs/go-sfs/super"
	"github.com/simplefs/go-sfs/util"
)

type FileSystem struct {
	disk       disk.Disk        // nil when unmounted
	meta       super.SuperBlock // copy of block 0
	freeBlocks *alloc.Bitmap    // derived from the inode table
}

// MkFs returns an unmounted filesystem.
func MkFs() *FileSystem {
	return &FileSystem{}
}

// Format writes a fresh, empty volume to d: a superblock in block 0
// and zeroes everywhere else, which clears the inode table. A
// filesystem that currently has a disk mounted refuses to format.
func (fs *FileSystem) Format(d disk.Disk) error {
	if fs.disk != nil {
		return ErrMounted
	}
	sb := super.MkSuper(d.Size())
	if err := d.Write(0, sb.Encode()); err != nil {
		return err
	}
	empty := make(disk.Block, disk.BlockSize)
	for i := uint64(1); i < d.Size(); i++ {
		if err := d.Write(i, empty); err != nil {
			return err
		}
	}
	util.DPrintf(1, "Format: %d blocks, %d inode blocks, %d inodes\n",
		sb.Blocks, sb.InodeBlocks, sb.Inodes)
	return nil
}

// Mount validates the volume on d, takes exclusive ownership of the
// disk, and derives the free-block bitmap.
func (fs *FileSystem) Mount(d disk.Disk) error {
	if fs.disk != nil {
		return ErrMounted
	}
	blk, err := d.Read(0)
	if err != nil {
		return err
	}
	sb := super.Decode(blk)
	if sb.Magic != common.MAGIC {
		return ErrBadMagic
	}
	if uint64(sb.Blocks) != d.Size() {
		return fmt.Errorf("%w: %d blocks on disk, superblock says %d",
			ErrBadLayout, d.Size(), sb.Blocks)
	}
	if uint64(sb.InodeBlocks) != util.RoundUp(d.Size(), 10) {
		return fmt.Errorf("%w: bad inode block count %d",
			ErrBadLayout, sb.InodeBlocks)
	}
	if uint64(sb.Inodes) != uint64(sb.InodeBlocks)*common.INODEBLK {
		return fmt.Errorf("%w: bad inode count %d", ErrBadLayout, sb.Inodes)
	}
	fs.meta = sb
	fs.disk = d
	if err := fs.initBitmap(); err != nil {
		fs.disk = nil
		return err
	}
	util.DPrintf(1, "Mount: %d blocks, %d free\n",
		sb.Blocks, fs.freeBlocks.NumFree())
	return nil
}

// Unmount drops the bitmap and releases the disk. Nothing needs
// flushing: every mutation was written through when it happened.
func (fs *FileSystem) Unmount() {
	fs.freeBlocks = nil
	fs.disk = nil
}

// readInode loads inum's inode-table block and decodes its slot. It
// fails if inum is out of range or the inode is free.
func (fs *FileSystem) readInode(inum common.Inum) (disk.Block, inode.Inode, error) {
	if inum >= fs.meta.NInode() {
		return nil, inode.Inode{}, ErrInvalidInode
	}
	blk, err := fs.disk.Read(fs.meta.InodeBlockNo(inum))
	if err != nil {
		return nil, inode.Inode{}, err
	}
	ino := inode.Get(blk, fs.meta.InodeSlot(inum))
	if !ino.IsValid() {
		return nil, inode.Inode{}, ErrInvalidInode
	}
	return blk, ino, nil
}

// writeInode stores ino back into its slot of blk and writes the
// block through.
func (fs *FileSystem) writeInode(inum common.Inum, blk disk.Block, ino *inode.Inode) error {
	ino.Put(blk, fs.meta.InodeSlot(inum))
	return fs.disk.Write(fs.meta.InodeBlockNo(inum), blk)
}
