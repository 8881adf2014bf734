package inode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/simplefs/go-sfs/common"
	"github.com/simplefs/go-sfs/disk"
)

func TestGeometry(t *testing.T) {
	assert.Equal(t, uint64(128), common.INODEBLK)
	assert.Equal(t, disk.BlockSize, common.INODEBLK*common.INODESZ,
		"inodes must tile a block exactly")
	assert.Equal(t, uint64(1024), common.NINDIRECT)
}

func TestPutGet(t *testing.T) {
	assert := assert.New(t)
	blk := make(disk.Block, disk.BlockSize)

	ino := Inode{Valid: 1, Size: 5000}
	ino.Direct[0] = 11
	ino.Direct[4] = 15
	ino.Indirect = 20
	ino.Put(blk, 0)

	last := Inode{Valid: 1, Size: 42}
	last.Put(blk, common.INODEBLK-1)

	assert.Equal(ino, Get(blk, 0))
	assert.Equal(last, Get(blk, common.INODEBLK-1))
	untouched := Get(blk, 1)
	assert.False(untouched.IsValid(), "untouched slots decode as free")
}

func TestNDirect(t *testing.T) {
	ino := Inode{Valid: 1}
	assert.Equal(t, uint64(0), ino.NDirect())
	ino.Direct[1] = 30
	ino.Direct[3] = 31
	assert.Equal(t, uint64(2), ino.NDirect())
}

func TestPtrs(t *testing.T) {
	assert := assert.New(t)
	blk := make(disk.Block, disk.BlockSize)
	PtrPut(blk, 0, 12)
	PtrPut(blk, common.NINDIRECT-1, 99)
	assert.Equal(uint64(12), PtrGet(blk, 0))
	assert.Equal(uint64(99), PtrGet(blk, common.NINDIRECT-1))
	assert.Equal(common.NULLBNUM, PtrGet(blk, 1))
}
