package fs

import "errors"

var (
	ErrMounted      = errors.New("fs: a disk is already mounted")
	ErrNotMounted   = errors.New("fs: no disk mounted")
	ErrBadMagic     = errors.New("fs: bad magic number")
	ErrBadLayout    = errors.New("fs: superblock does not match disk")
	ErrInvalidInode = errors.New("fs: invalid inode")
	ErrBadOffset    = errors.New("fs: offset past end of file")
	ErrNoFreeInode  = errors.New("fs: inode table is full")
	ErrNoFreeBlock  = errors.New("fs: no free blocks")
	ErrMaxFileSize  = errors.New("fs: maximum file size reached")
)
