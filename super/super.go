// Package super defines the on-disk superblock and the volume layout
// arithmetic derived from it.
//
// Block 0 holds the superblock. The next ⌈blocks/10⌉ blocks hold the
// inode table, densely packed with INODEBLK inodes each. Everything
// after that is data and indirect-pointer blocks.
package super

import (
	"github.com/tchajed/marshal"

	"github.com/simplefs/go-sfs/common"
	"github.com/simplefs/go-sfs/disk"
	"github.com/simplefs/go-sfs/util"
)

// SuperBlock is the contents of block 0.
type SuperBlock struct {
	Magic       uint32
	Blocks      uint32
	InodeBlocks uint32
	Inodes      uint32
}

// MkSuper computes the layout for a disk of the given size: one tenth
// of the blocks, rounded up, are reserved for the inode table.
func MkSuper(blocks uint64) SuperBlock {
	nInodeBlks := util.RoundUp(blocks, 10)
	return SuperBlock{
		Magic:       common.MAGIC,
		Blocks:      uint32(blocks),
		InodeBlocks: uint32(nInodeBlks),
		Inodes:      uint32(nInodeBlks * common.INODEBLK),
	}
}

func (sb SuperBlock) Encode() disk.Block {
	enc := marshal.NewEnc(disk.BlockSize)
	enc.PutInt32(sb.Magic)
	enc.PutInt32(sb.Blocks)
	enc.PutInt32(sb.InodeBlocks)
	enc.PutInt32(sb.Inodes)
	return enc.Finish()
}

func Decode(blk disk.Block) SuperBlock {
	dec := marshal.NewDec(blk)
	return SuperBlock{
		Magic:       dec.GetInt32(),
		Blocks:      dec.GetInt32(),
		InodeBlocks: dec.GetInt32(),
		Inodes:      dec.GetInt32(),
	}
}

// InodeStart and DataStart bound the inode table: blocks
// [InodeStart, DataStart) hold inodes, [DataStart, Blocks) hold data.
func (sb SuperBlock) InodeStart() common.Bnum {
	return 1
}

func (sb SuperBlock) DataStart() common.Bnum {
	return 1 + uint64(sb.InodeBlocks)
}

func (sb SuperBlock) NInode() common.Inum {
	return uint64(sb.Inodes)
}

// InodeBlockNo returns the inode-table block holding inum.
func (sb SuperBlock) InodeBlockNo(inum common.Inum) common.Bnum {
	return 1 + inum/common.INODEBLK
}

// InodeSlot returns inum's slot within its inode-table block.
func (sb SuperBlock) InodeSlot(inum common.Inum) uint64 {
	return inum % common.INODEBLK
}
