package fs

import (
	"fmt"
	"os"

	"github.com/simplefs/go-sfs/common"
	"github.com/simplefs/go-sfs/disk"
	"github.com/simplefs/go-sfs/inode"
	"github.com/simplefs/go-sfs/super"
)

// Debug prints the superblock and every valid inode of the volume on
// d to stdout. It inspects the raw disk and needs no mount. A volume
// whose magic number is wrong is unreadable; that terminates the
// process with a nonzero status.
func Debug(d disk.Disk) {
	blk, err := d.Read(0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "debug: read superblock: %v\n", err)
		os.Exit(1)
	}
	sb := super.Decode(blk)
	if sb.Magic != common.MAGIC {
		fmt.Fprintf(os.Stderr, "debug: bad magic number %#x\n", sb.Magic)
		os.Exit(1)
	}

	fmt.Printf("SuperBlock:\n")
	fmt.Printf("    magic number is valid\n")
	fmt.Printf("    %d blocks\n", sb.Blocks)
	fmt.Printf("    %d inode blocks\n", sb.InodeBlocks)
	fmt.Printf("    %d inodes\n", sb.Inodes)

	for b := sb.InodeStart(); b < sb.DataStart(); b++ {
		iblk, err := d.Read(b)
		if err != nil {
			fmt.Fprintf(os.Stderr, "debug: read inode block %d: %v\n", b, err)
			return
		}
		for slot := uint64(0); slot < common.INODEBLK; slot++ {
			ino := inode.Get(iblk, slot)
			if !ino.IsValid() {
				continue
			}
			debugInode(d, (b-1)*common.INODEBLK+slot, &ino)
		}
	}
}

func debugInode(d disk.Disk, inum common.Inum, ino *inode.Inode) {
	fmt.Printf("Inode %d:\n", inum)
	fmt.Printf("    size: %d bytes\n", ino.Size)
	fmt.Printf("    direct blocks:")
	for _, p := range ino.Direct {
		if p != 0 {
			fmt.Printf(" %d", p)
		}
	}
	fmt.Printf("\n")

	if ino.Indirect == 0 {
		return
	}
	fmt.Printf("    indirect block: %d\n", ino.Indirect)
	fmt.Printf("    indirect data blocks:")
	ptrs, err := d.Read(uint64(ino.Indirect))
	if err != nil {
		fmt.Printf("\n")
		fmt.Fprintf(os.Stderr, "debug: read indirect block %d: %v\n", ino.Indirect, err)
		return
	}
	for i := uint64(0); i < common.NINDIRECT; i++ {
		if p := inode.PtrGet(ptrs, i); p != 0 {
			fmt.Printf(" %d", p)
		}
	}
	fmt.Printf("\n")
}
