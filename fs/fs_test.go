package fs

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simplefs/go-sfs/common"
	"github.com/simplefs/go-sfs/disk"
	"github.com/simplefs/go-sfs/inode"
	"github.com/simplefs/go-sfs/super"
)

const nblocks = 100

func mkMounted(t *testing.T) (*FileSystem, *disk.MemDisk) {
	t.Helper()
	d := disk.NewMemDisk(nblocks)
	fs := MkFs()
	require.NoError(t, fs.Format(d))
	require.NoError(t, fs.Mount(d))
	return fs, d
}

func blockOf(b byte) []byte {
	blk := make([]byte, disk.BlockSize)
	for i := range blk {
		blk[i] = b
	}
	return blk
}

func TestFormatMount(t *testing.T) {
	assert := assert.New(t)
	fs, _ := mkMounted(t)

	assert.Equal(common.MAGIC, fs.meta.Magic)
	assert.Equal(uint32(100), fs.meta.Blocks)
	assert.Equal(uint32(10), fs.meta.InodeBlocks)
	assert.Equal(uint32(1280), fs.meta.Inodes)

	for i := uint64(0); i <= 10; i++ {
		assert.True(fs.freeBlocks.InUse(i), "block %d is reserved", i)
	}
	for i := uint64(11); i < nblocks; i++ {
		assert.False(fs.freeBlocks.InUse(i), "block %d should be free", i)
	}
}

func TestFormatClearsInodes(t *testing.T) {
	assert := assert.New(t)
	fs, d := mkMounted(t)

	inum, err := fs.Create()
	require.NoError(t, err)
	_, err = fs.Write(inum, blockOf('a'), disk.BlockSize, 0)
	require.NoError(t, err)

	fs.Unmount()
	require.NoError(t, fs.Format(d))

	sb := super.MkSuper(nblocks)
	for b := sb.InodeStart(); b < sb.DataStart(); b++ {
		blk, err := d.Read(b)
		require.NoError(t, err)
		for slot := uint64(0); slot < common.INODEBLK; slot++ {
			ino := inode.Get(blk, slot)
			assert.False(ino.IsValid())
		}
	}
}

func TestFormatRefusedWhileMounted(t *testing.T) {
	fs, d := mkMounted(t)
	assert.ErrorIs(t, fs.Format(d), ErrMounted)
}

func TestMountTwice(t *testing.T) {
	fs, d := mkMounted(t)
	assert.ErrorIs(t, fs.Mount(d), ErrMounted)
}

func TestMountBadMagic(t *testing.T) {
	assert := assert.New(t)
	d := disk.NewMemDisk(nblocks)
	fs := MkFs()
	require.NoError(t, fs.Format(d))

	blk, err := d.Read(0)
	require.NoError(t, err)
	blk[0] ^= 0xff
	require.NoError(t, d.Write(0, blk))

	assert.ErrorIs(fs.Mount(d), ErrBadMagic)
	assert.Nil(fs.disk, "failed mount must not record the disk")
}

func TestMountBadLayout(t *testing.T) {
	// a superblock for 100 blocks copied onto a 101-block disk
	assert := assert.New(t)
	fs := MkFs()
	small := disk.NewMemDisk(nblocks)
	require.NoError(t, fs.Format(small))
	blk, err := small.Read(0)
	require.NoError(t, err)

	bigger := disk.NewMemDisk(nblocks + 1)
	require.NoError(t, bigger.Write(0, blk))
	assert.ErrorIs(fs.Mount(bigger), ErrBadLayout)
	assert.Nil(fs.disk)
}

func TestCreateStat(t *testing.T) {
	assert := assert.New(t)
	fs, _ := mkMounted(t)

	inum, err := fs.Create()
	require.NoError(t, err)
	assert.Equal(uint64(0), inum)

	inum2, err := fs.Create()
	require.NoError(t, err)
	assert.Equal(uint64(1), inum2)

	sz, err := fs.Stat(0)
	require.NoError(t, err)
	assert.Equal(uint64(0), sz)

	sz, err = fs.Stat(1)
	require.NoError(t, err)
	assert.Equal(uint64(0), sz)

	_, err = fs.Stat(2)
	assert.ErrorIs(err, ErrInvalidInode)
}

func TestStatOutOfRange(t *testing.T) {
	fs, _ := mkMounted(t)
	_, err := fs.Stat(uint64(fs.meta.Inodes))
	assert.ErrorIs(t, err, ErrInvalidInode)
}

func TestWriteRead(t *testing.T) {
	assert := assert.New(t)
	fs, _ := mkMounted(t)

	inum, err := fs.Create()
	require.NoError(t, err)

	n, err := fs.Write(inum, []byte("hello"), 5, 0)
	require.NoError(t, err)
	assert.Equal(uint64(5), n)

	sz, err := fs.Stat(inum)
	require.NoError(t, err)
	assert.Equal(uint64(5), sz)

	out := make([]byte, 5)
	n, err = fs.Read(inum, out, 5, 0)
	require.NoError(t, err)
	assert.Equal(uint64(5), n)
	assert.Equal([]byte("hello"), out)
}

func TestWriteZeroPadsTail(t *testing.T) {
	assert := assert.New(t)
	fs, d := mkMounted(t)

	inum, err := fs.Create()
	require.NoError(t, err)
	_, err = fs.Write(inum, []byte("abc"), 3, 0)
	require.NoError(t, err)

	_, ino, err := fs.readInode(inum)
	require.NoError(t, err)
	blk, err := d.Read(uint64(ino.Direct[0]))
	require.NoError(t, err)
	assert.Equal([]byte("abc"), blk[:3])
	assert.Equal(make([]byte, disk.BlockSize-3), blk[3:],
		"bytes past length must be zero")
}

func TestReadBeyondEnd(t *testing.T) {
	assert := assert.New(t)
	fs, _ := mkMounted(t)

	inum, err := fs.Create()
	require.NoError(t, err)
	_, err = fs.Read(inum, make([]byte, 1), 1, 0)
	assert.ErrorIs(err, ErrBadOffset, "empty file has nothing to read")

	_, err = fs.Write(inum, []byte("hello"), 5, 0)
	require.NoError(t, err)
	_, err = fs.Read(inum, make([]byte, 1), 1, 5)
	assert.ErrorIs(err, ErrBadOffset)
}

func TestReadTruncatesAtSize(t *testing.T) {
	assert := assert.New(t)
	fs, _ := mkMounted(t)

	inum, err := fs.Create()
	require.NoError(t, err)
	_, err = fs.Write(inum, []byte("hello"), 5, 0)
	require.NoError(t, err)

	out := make([]byte, 10)
	n, err := fs.Read(inum, out, 10, 0)
	require.NoError(t, err)
	assert.Equal(uint64(5), n, "count reports only the bytes present")
	assert.Equal([]byte("hello"), out[:n])
}

func TestIndirect(t *testing.T) {
	assert := assert.New(t)
	fs, _ := mkMounted(t)

	inum, err := fs.Create()
	require.NoError(t, err)

	for i := uint64(0); i < common.NDIRECT; i++ {
		n, err := fs.Write(inum, blockOf(byte('A'+i)), disk.BlockSize, i*disk.BlockSize)
		require.NoError(t, err)
		assert.Equal(disk.BlockSize, n)
	}
	_, ino, err := fs.readInode(inum)
	require.NoError(t, err)
	assert.Equal(uint64(common.NDIRECT), ino.NDirect())
	assert.Equal(uint32(0), ino.Indirect, "direct writes must not allocate an indirect block")

	n, err := fs.Write(inum, blockOf('F'), disk.BlockSize, common.NDIRECT*disk.BlockSize)
	require.NoError(t, err)
	assert.Equal(disk.BlockSize, n)

	_, ino, err = fs.readInode(inum)
	require.NoError(t, err)
	assert.NotEqual(uint32(0), ino.Indirect, "sixth block goes through the indirect block")

	out := make([]byte, disk.BlockSize)
	n, err = fs.Read(inum, out, disk.BlockSize, common.NDIRECT*disk.BlockSize)
	require.NoError(t, err)
	assert.Equal(disk.BlockSize, n)
	assert.True(bytes.Equal(blockOf('F'), out))

	_, err = fs.Write(inum, blockOf('X'), disk.BlockSize, common.MAXFILESZ)
	assert.ErrorIs(err, ErrMaxFileSize,
		"write at the maximum addressable offset must fail")
}

func TestRemove(t *testing.T) {
	assert := assert.New(t)
	fs, _ := mkMounted(t)

	inum, err := fs.Create()
	require.NoError(t, err)
	for i := uint64(0); i < common.NDIRECT+1; i++ {
		_, err := fs.Write(inum, blockOf(byte('a'+i)), disk.BlockSize, i*disk.BlockSize)
		require.NoError(t, err)
	}

	_, ino, err := fs.readInode(inum)
	require.NoError(t, err)
	var used []uint64
	for _, p := range ino.Direct {
		used = append(used, uint64(p))
	}
	used = append(used, uint64(ino.Indirect))
	ptrs, err := fs.disk.Read(uint64(ino.Indirect))
	require.NoError(t, err)
	used = append(used, inode.PtrGet(ptrs, 0))

	require.NoError(t, fs.Remove(inum))

	for _, b := range used {
		assert.False(fs.freeBlocks.InUse(b), "block %d should be free after remove", b)
	}

	_, err = fs.Stat(inum)
	assert.ErrorIs(err, ErrInvalidInode, "removed inode has no size")
	assert.ErrorIs(fs.Remove(inum), ErrInvalidInode, "double remove fails")

	again, err := fs.Create()
	require.NoError(t, err)
	assert.Equal(inum, again, "create reuses the lowest free inode")
}

func TestRemountBitmapIdentical(t *testing.T) {
	assert := assert.New(t)
	fs, d := mkMounted(t)

	for i := 0; i < 3; i++ {
		inum, err := fs.Create()
		require.NoError(t, err)
		for j := uint64(0); j < 2; j++ {
			_, err := fs.Write(inum, blockOf('x'), disk.BlockSize, j*disk.BlockSize)
			require.NoError(t, err)
		}
	}
	require.NoError(t, fs.Remove(1))

	before := make([]bool, nblocks)
	for i := uint64(0); i < nblocks; i++ {
		before[i] = fs.freeBlocks.InUse(i)
	}

	fs.Unmount()
	require.NoError(t, fs.Mount(d))
	for i := uint64(0); i < nblocks; i++ {
		assert.Equal(before[i], fs.freeBlocks.InUse(i),
			"block %d occupancy must survive a remount", i)
	}
}

func TestWriteSizeAppends(t *testing.T) {
	// size grows by length even when a block is overwritten; the
	// write model is append-oriented and the overwrite path inherits
	// it.
	assert := assert.New(t)
	fs, _ := mkMounted(t)

	inum, err := fs.Create()
	require.NoError(t, err)
	_, err = fs.Write(inum, []byte("aaaa"), 4, 0)
	require.NoError(t, err)
	_, err = fs.Write(inum, []byte("bbbb"), 4, 0)
	require.NoError(t, err)

	sz, err := fs.Stat(inum)
	require.NoError(t, err)
	assert.Equal(uint64(8), sz)
}

func TestOpsRequireMount(t *testing.T) {
	assert := assert.New(t)
	fs := MkFs()
	_, err := fs.Create()
	assert.ErrorIs(err, ErrNotMounted)
	assert.ErrorIs(fs.Remove(0), ErrNotMounted)
	_, err = fs.Stat(0)
	assert.ErrorIs(err, ErrNotMounted)
	_, err = fs.Read(0, nil, 0, 0)
	assert.ErrorIs(err, ErrNotMounted)
	_, err = fs.Write(0, nil, 0, 0)
	assert.ErrorIs(err, ErrNotMounted)
}

func TestCreateExhaustsInodes(t *testing.T) {
	// a 2-block disk has a single inode block; 128 creates fill it
	assert := assert.New(t)
	d := disk.NewMemDisk(2)
	fs := MkFs()
	require.NoError(t, fs.Format(d))
	require.NoError(t, fs.Mount(d))

	for i := uint64(0); i < common.INODEBLK; i++ {
		inum, err := fs.Create()
		require.NoError(t, err)
		assert.Equal(i, inum)
	}
	_, err := fs.Create()
	assert.ErrorIs(err, ErrNoFreeInode)
}

func TestWriteExhaustsBlocks(t *testing.T) {
	assert := assert.New(t)
	d := disk.NewMemDisk(13)
	fs := MkFs()
	require.NoError(t, fs.Format(d))
	require.NoError(t, fs.Mount(d))

	inum, err := fs.Create()
	require.NoError(t, err)
	// 13 blocks: 1 super + 2 inode blocks leaves 10 data blocks
	assert.Equal(uint64(10), fs.freeBlocks.NumFree())

	var written uint64
	for {
		_, err := fs.Write(inum, blockOf('z'), disk.BlockSize, written*disk.BlockSize)
		if err != nil {
			assert.ErrorIs(err, ErrNoFreeBlock)
			break
		}
		written++
	}
	assert.Equal(uint64(9), written,
		"10 data blocks hold 9 writes; the 6th write also claims the indirect block")
	assert.Equal(uint64(0), fs.freeBlocks.NumFree(),
		"failed write must leave no half-claimed blocks")
}

func TestWriteCounts(t *testing.T) {
	// format writes every block exactly once, the superblock included
	assert := assert.New(t)
	d := disk.NewMemDisk(nblocks)
	fs := MkFs()
	require.NoError(t, fs.Format(d))
	assert.Equal(uint64(nblocks), d.Writes())
	assert.Equal(uint64(0), d.Reads())

	require.NoError(t, fs.Mount(d))
	assert.Equal(uint64(11), d.Reads(), "mount reads the superblock and the inode table")
}
