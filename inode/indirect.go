package inode

import (
	"github.com/tchajed/marshal"

	"github.com/simplefs/go-sfs/common"
	"github.com/simplefs/go-sfs/disk"
)

// An indirect block is an array of NINDIRECT 32-bit block pointers,
// packed densely from index 0; the first zero entry terminates the
// live run.

// PtrGet reads the pointer at index i of an indirect block.
func PtrGet(blk disk.Block, i uint64) common.Bnum {
	dec := marshal.NewDec(blk[i*4 : i*4+4])
	return common.Bnum(dec.GetInt32())
}

// PtrPut stores v at index i of an indirect block.
func PtrPut(blk disk.Block, i uint64, v common.Bnum) {
	enc := marshal.NewEnc(4)
	enc.PutInt32(uint32(v))
	copy(blk[i*4:i*4+4], enc.Finish())
}
