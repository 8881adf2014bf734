// Package inode implements the 32-byte on-disk inode. Inodes are
// edited in place within their inode-table block, so a one-inode
// update still writes back the whole block it lives in.
package inode

import (
	"github.com/tchajed/marshal"

	"github.com/simplefs/go-sfs/common"
	"github.com/simplefs/go-sfs/disk"
)

// Inode describes one file: a validity flag, the logical size in
// bytes, NDIRECT direct block pointers, and one indirect block
// pointer. A zero pointer means unused.
type Inode struct {
	Valid    uint32
	Size     uint32
	Direct   [common.NDIRECT]uint32
	Indirect uint32
}

// IsValid reports whether the inode is allocated.
func (ino *Inode) IsValid() bool {
	return ino.Valid == 1
}

// NDirect counts the inode's live direct pointers.
func (ino *Inode) NDirect() uint64 {
	var n uint64
	for _, p := range ino.Direct {
		if p != 0 {
			n++
		}
	}
	return n
}

// Get decodes the inode in the given slot of an inode-table block.
func Get(blk disk.Block, slot uint64) Inode {
	dec := marshal.NewDec(blk[slot*common.INODESZ : (slot+1)*common.INODESZ])
	ino := Inode{}
	ino.Valid = dec.GetInt32()
	ino.Size = dec.GetInt32()
	for i := range ino.Direct {
		ino.Direct[i] = dec.GetInt32()
	}
	ino.Indirect = dec.GetInt32()
	return ino
}

// Put encodes ino into the given slot of an inode-table block.
func (ino *Inode) Put(blk disk.Block, slot uint64) {
	enc := marshal.NewEnc(common.INODESZ)
	enc.PutInt32(ino.Valid)
	enc.PutInt32(ino.Size)
	for _, p := range ino.Direct {
		enc.PutInt32(p)
	}
	enc.PutInt32(ino.Indirect)
	copy(blk[slot*common.INODESZ:(slot+1)*common.INODESZ], enc.Finish())
}
