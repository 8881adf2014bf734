package disk

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

var _ Disk = (*FileDisk)(nil)

// FileDisk is a disk backed by a flat file of numBlocks blocks.
type FileDisk struct {
	fd        int
	closed    bool
	numBlocks uint64
	reads     uint64
	writes    uint64
}

// NewFileDisk opens the image at path read-write, creating it if
// needed, and resizes it to exactly numBlocks*BlockSize bytes.
func NewFileDisk(path string, numBlocks uint64) (*FileDisk, error) {
	fd, err := unix.Open(path, unix.O_RDWR|unix.O_CREAT, 0666)
	if err != nil {
		return nil, fmt.Errorf("disk: open %s: %w", path, err)
	}
	var stat unix.Stat_t
	if err := unix.Fstat(fd, &stat); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("disk: stat %s: %w", path, err)
	}
	if uint64(stat.Size) != numBlocks*BlockSize {
		if err := unix.Ftruncate(fd, int64(numBlocks*BlockSize)); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("disk: truncate %s: %w", path, err)
		}
	}
	return &FileDisk{fd: fd, numBlocks: numBlocks}, nil
}

func (d *FileDisk) sanityCheck(a uint64, buf Block) error {
	if d.closed {
		return ErrClosed
	}
	if a >= d.numBlocks {
		return fmt.Errorf("%w: %d >= %d", ErrOutOfRange, a, d.numBlocks)
	}
	if buf == nil || uint64(len(buf)) != BlockSize {
		return ErrBadBuffer
	}
	return nil
}

func (d *FileDisk) ReadTo(a uint64, buf Block) error {
	if err := d.sanityCheck(a, buf); err != nil {
		return err
	}
	if _, err := unix.Pread(d.fd, buf, int64(a*BlockSize)); err != nil {
		return fmt.Errorf("disk: read block %d: %w", a, err)
	}
	d.reads++
	return nil
}

func (d *FileDisk) Read(a uint64) (Block, error) {
	buf := make(Block, BlockSize)
	if err := d.ReadTo(a, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *FileDisk) Write(a uint64, v Block) error {
	if err := d.sanityCheck(a, v); err != nil {
		return err
	}
	if _, err := unix.Pwrite(d.fd, v, int64(a*BlockSize)); err != nil {
		return fmt.Errorf("disk: write block %d: %w", a, err)
	}
	d.writes++
	return nil
}

func (d *FileDisk) Size() uint64 {
	return d.numBlocks
}

func (d *FileDisk) Reads() uint64 {
	return d.reads
}

func (d *FileDisk) Writes() uint64 {
	return d.writes
}

func (d *FileDisk) Close() error {
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	err := unix.Close(d.fd)
	fmt.Printf("%d disk block reads\n", d.reads)
	fmt.Printf("%d disk block writes\n", d.writes)
	return err
}

var _ Disk = (*MemDisk)(nil)

// MemDisk keeps its blocks in memory. It honors the same sanity checks
// and accounting as FileDisk, which makes it a drop-in substrate for
// tests.
type MemDisk struct {
	l      *sync.RWMutex
	closed bool
	blocks [][BlockSize]byte
	reads  uint64
	writes uint64
}

func NewMemDisk(numBlocks uint64) *MemDisk {
	blocks := make([][BlockSize]byte, numBlocks)
	return &MemDisk{l: new(sync.RWMutex), blocks: blocks}
}

func (d *MemDisk) sanityCheck(a uint64, buf Block) error {
	if d.closed {
		return ErrClosed
	}
	if a >= uint64(len(d.blocks)) {
		return fmt.Errorf("%w: %d >= %d", ErrOutOfRange, a, len(d.blocks))
	}
	if buf == nil || uint64(len(buf)) != BlockSize {
		return ErrBadBuffer
	}
	return nil
}

func (d *MemDisk) ReadTo(a uint64, buf Block) error {
	d.l.Lock()
	defer d.l.Unlock()
	if err := d.sanityCheck(a, buf); err != nil {
		return err
	}
	copy(buf, d.blocks[a][:])
	d.reads++
	return nil
}

func (d *MemDisk) Read(a uint64) (Block, error) {
	buf := make(Block, BlockSize)
	if err := d.ReadTo(a, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *MemDisk) Write(a uint64, v Block) error {
	d.l.Lock()
	defer d.l.Unlock()
	if err := d.sanityCheck(a, v); err != nil {
		return err
	}
	copy(d.blocks[a][:], v)
	d.writes++
	return nil
}

func (d *MemDisk) Size() uint64 {
	// this never changes so we assume it's safe to run lock-free
	return uint64(len(d.blocks))
}

func (d *MemDisk) Reads() uint64 {
	d.l.RLock()
	defer d.l.RUnlock()
	return d.reads
}

func (d *MemDisk) Writes() uint64 {
	d.l.RLock()
	defer d.l.RUnlock()
	return d.writes
}

func (d *MemDisk) Close() error {
	d.l.Lock()
	defer d.l.Unlock()
	if d.closed {
		return ErrClosed
	}
	d.closed = true
	fmt.Printf("%d disk block reads\n", d.reads)
	fmt.Printf("%d disk block writes\n", d.writes)
	return nil
}
