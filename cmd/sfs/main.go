// Command sfs is a small interactive shell over the SimpleFS engine.
// It opens (or creates) a disk image and dispatches commands to the
// programmatic surface; it contains no filesystem logic of its own.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/simplefs/go-sfs/disk"
	"github.com/simplefs/go-sfs/fs"
)

func usage() {
	fmt.Print(`commands:
  format                      write a fresh volume to the disk
  mount                       mount the volume
  unmount                     unmount the volume
  debug                       print superblock and inode report
  create                      allocate an inode
  remove <inode>              free an inode and its blocks
  stat <inode>                print a file's size
  read <inode> <len> <off>    print file data
  write <inode> <data> <off>  store data at an offset
  help                        this text
  quit                        close the image and exit
`)
}

func main() {
	nblocks := flag.Uint64("blocks", 100, "number of blocks in the disk image")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: sfs [-blocks n] <image>\n")
		os.Exit(2)
	}

	d, err := disk.NewFileDisk(flag.Arg(0), *nblocks)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	filesys := fs.MkFs()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("sfs> ")
		if !scanner.Scan() {
			break
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" {
			break
		}
		if err := run(filesys, d, args); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", args[0], err)
		}
	}
	filesys.Unmount()
	d.Close()
}

func run(filesys *fs.FileSystem, d disk.Disk, args []string) error {
	switch args[0] {
	case "help":
		usage()
		return nil
	case "format":
		if err := filesys.Format(d); err != nil {
			return err
		}
		fmt.Println("disk formatted")
		return nil
	case "mount":
		if err := filesys.Mount(d); err != nil {
			return err
		}
		fmt.Println("disk mounted")
		return nil
	case "unmount":
		filesys.Unmount()
		return nil
	case "debug":
		fs.Debug(d)
		return nil
	case "create":
		inum, err := filesys.Create()
		if err != nil {
			return err
		}
		fmt.Printf("created inode %d\n", inum)
		return nil
	case "remove":
		nums, err := numArgs(args, 1)
		if err != nil {
			return err
		}
		if err := filesys.Remove(nums[0]); err != nil {
			return err
		}
		fmt.Printf("removed inode %d\n", nums[0])
		return nil
	case "stat":
		nums, err := numArgs(args, 1)
		if err != nil {
			return err
		}
		size, err := filesys.Stat(nums[0])
		if err != nil {
			return err
		}
		fmt.Printf("inode %d has size %d bytes\n", nums[0], size)
		return nil
	case "read":
		nums, err := numArgs(args, 3)
		if err != nil {
			return err
		}
		inum, length, offset := nums[0], nums[1], nums[2]
		buf := make([]byte, length)
		n, err := filesys.Read(inum, buf, length, offset)
		if err != nil {
			return err
		}
		os.Stdout.Write(buf[:n])
		fmt.Printf("\n%d bytes read\n", n)
		return nil
	case "write":
		if len(args) != 4 {
			return fmt.Errorf("expected <inode> <data> <offset>")
		}
		inum, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return err
		}
		offset, err := strconv.ParseUint(args[3], 10, 64)
		if err != nil {
			return err
		}
		data := []byte(args[2])
		n, err := filesys.Write(inum, data, uint64(len(data)), offset)
		if err != nil {
			return err
		}
		fmt.Printf("%d bytes written\n", n)
		return nil
	default:
		return fmt.Errorf("unknown command %q (try help)", args[0])
	}
}

func numArgs(args []string, n int) ([]uint64, error) {
	if len(args) != n+1 {
		return nil, fmt.Errorf("expected %d argument(s)", n)
	}
	nums := make([]uint64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseUint(args[i+1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", args[i+1])
		}
		nums[i] = v
	}
	return nums, nil
}
