package common

import (
	"github.com/simplefs/go-sfs/disk"
)

const (
	// MAGIC identifies a SimpleFS volume in block 0.
	MAGIC uint32 = 0xf0f03410

	INODESZ  uint64 = 32 // on-disk size
	INODEBLK uint64 = disk.BlockSize / INODESZ

	NDIRECT   uint64 = 5                  // direct pointers per inode
	NINDIRECT uint64 = disk.BlockSize / 4 // pointers per indirect block

	// MAXFILESZ is the largest file a single inode can address.
	MAXFILESZ uint64 = (NDIRECT + NINDIRECT) * disk.BlockSize
)

type Inum = uint64
type Bnum = uint64

const (
	NULLBNUM Bnum = 0
)
