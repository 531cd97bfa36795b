package xfs

import (
	"bytes"
	"encoding/binary"

	"golang.org/x/xerrors"

	"github.com/go-forensics/xfs-scavenger/log"
)

const (
	// SectorSize is the size of the sector holding the primary superblock.
	// Inode records never start inside it.
	SectorSize = 512

	// DefaultInodeSize is the sweep stride used when the superblock value
	// cannot be trusted.
	DefaultInodeSize = 512

	DefaultBlockSize = 4096
)

var (
	ErrFilesystemMismatch = xerrors.New("superblock magic mismatch, not an XFS filesystem")

	sbMagic = [4]byte{'X', 'F', 'S', 'B'}
)

// SuperBlock is the on-disk xfs_sb layout, all fields big-endian.
// https://github.com/torvalds/linux/blob/5bfc75d92efd494db37f5c4c173d3639d4772966/fs/xfs/libxfs/xfs_format.h#L172
type SuperBlock struct {
	Magicnum   [4]byte
	BlockSize  uint32
	Dblocks    uint64   // rfsblock
	Rblocks    uint64   // rfsblock
	Rextens    uint64   // rtblock
	UUID       [16]byte // uuid_t
	Logstart   uint64   // fsblock
	Rootino    uint64   // ino
	Rbmino     uint64
	Rsmino     uint64
	Rextsize   uint32
	Agblocks   uint32
	Agcount    uint32
	Rbblocks   uint32
	Logblocks  uint32
	Versionnum uint16
	Sectsize   uint16
	Inodesize  uint16
	Inopblock  uint16
	Fname      [12]byte
	Blocklog   uint8
	Sectlog    uint8
	Inodelog   uint8
	Inopblog   uint8
	Agdlklog   uint8
	Rextslog   uint8
	Inprogress uint8
	ImaxPct    uint8

	Icount    uint64
	Ifree     uint64
	Fdblocks  uint64
	Frextents uint64

	Uqunotino   uint64
	Gquotino    uint64
	Qflags      uint16
	Flags       uint8
	SharedVn    uint8
	Inoalignmt  uint32
	Unit        uint32
	Width       uint32
	Dirblklog   uint8
	Logsectlog  uint8
	Logsectsize uint16
	Logsunit    uint32
	Features2   uint32
}

// ParseSuperBlock decodes the primary superblock at offset zero and
// verifies its magic. Anything other than "XFSB" in the first four bytes
// fails with ErrFilesystemMismatch.
func ParseSuperBlock(img []byte) (*SuperBlock, error) {
	if len(img) < SectorSize {
		return nil, xerrors.Errorf("image too small for a superblock sector: %d bytes: %w", len(img), ErrFilesystemMismatch)
	}

	var sb SuperBlock
	if err := binary.Read(bytes.NewReader(img[:SectorSize]), binary.BigEndian, &sb); err != nil {
		return nil, xerrors.Errorf("failed to read superblock: %w", err)
	}
	if sb.Magicnum != sbMagic {
		return nil, xerrors.Errorf("magic %x: %w", sb.Magicnum, ErrFilesystemMismatch)
	}
	return &sb, nil
}

// ScanParams derives the block size and the inode stride for a raw sweep.
// A partially corrupt superblock must not stop the scan, so implausible
// values fall back to the defaults instead of failing.
func (sb *SuperBlock) ScanParams() (blockSize uint32, inodeSize int) {
	blockSize = sb.BlockSize
	if !plausibleSize(blockSize, 512, 1<<16) {
		log.Logger.Warnf("implausible block size %d, falling back to %d", sb.BlockSize, DefaultBlockSize)
		blockSize = DefaultBlockSize
	}

	inodeSize = int(sb.Inodesize)
	if !plausibleSize(uint32(sb.Inodesize), 256, 2048) {
		log.Logger.Warnf("implausible inode size %d, falling back to %d", sb.Inodesize, DefaultInodeSize)
		inodeSize = DefaultInodeSize
	}
	return blockSize, inodeSize
}

// plausibleSize reports whether n is a power of two within [min, max].
func plausibleSize(n, min, max uint32) bool {
	return n >= min && n <= max && n&(n-1) == 0
}
