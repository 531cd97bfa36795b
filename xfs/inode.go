package xfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/xerrors"

	"github.com/go-forensics/xfs-scavenger/log"
)

const (
	// InodeCoreSize is where the literal (data fork) area starts for v1/v2
	// inodes: the 96-byte core plus di_next_unlinked.
	InodeCoreSize = 100

	// InodeV3CoreSize is the v3 literal area offset, past CRC, change count,
	// inode number, uuid and crtime.
	InodeV3CoreSize = 176
)

// Inode fork formats.
// https://github.com/torvalds/linux/blob/5bfc75d92efd494db37f5c4c173d3639d4772966/fs/xfs/libxfs/xfs_format.h#L923
const (
	XFS_DINODE_FMT_DEV uint8 = iota
	XFS_DINODE_FMT_LOCAL
	XFS_DINODE_FMT_EXTENTS
	XFS_DINODE_FMT_BTREE
	XFS_DINODE_FMT_UUID
	XFS_DINODE_FMT_RMAP
)

var (
	ErrOutOfBounds = xerrors.New("inode record out of image bounds")

	inodeMagic = [2]byte{'I', 'N'}
)

// FileType is the top nibble of the inode mode field (S_IFMT >> 12).
type FileType uint8

const (
	TypeNone    FileType = 0x0
	TypeFifo    FileType = 0x1
	TypeChar    FileType = 0x2
	TypeDir     FileType = 0x4
	TypeBlock   FileType = 0x6
	TypeRegular FileType = 0x8
	TypeSymlink FileType = 0xA
	TypeSocket  FileType = 0xC
)

var fileTypeNames = map[FileType]string{
	TypeFifo:    "FIFO",
	TypeChar:    "Character Device",
	TypeDir:     "Directory",
	TypeBlock:   "Block Device",
	TypeRegular: "Regular File",
	TypeSymlink: "Symlink",
	TypeSocket:  "Socket",
}

// Known reports whether the type bits decode to a recognized, non-reserved
// file type. The zero value is not a type, it is the cleared state.
func (t FileType) Known() bool {
	_, ok := fileTypeNames[t]
	return ok
}

func (t FileType) String() string {
	if t == TypeNone {
		return "none"
	}
	if s, ok := fileTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("Unknown (0x%X)", uint8(t))
}

// InodeCore is the on-disk v2 dinode core, all fields big-endian. The v3
// extension (CRC, change count, crtime, embedded inode number) follows it on
// disk but nothing in the sweep needs those fields.
// https://github.com/torvalds/linux/blob/5bfc75d92efd494db37f5c4c173d3639d4772966/fs/xfs/libxfs/xfs_format.h#L792
type InodeCore struct {
	Magic        [2]byte
	Mode         uint16
	Version      uint8
	Format       uint8
	OnLink       uint16
	UID          uint32
	GID          uint32
	NLink        uint32
	ProjId       uint16
	Padding      [8]byte
	Flushiter    uint16
	Atime        Timestamp
	Mtime        Timestamp
	Ctime        Timestamp
	Size         uint64
	Nblocks      uint64
	Extsize      uint32
	Nextents     uint32
	Anextents    uint16
	Forkoff      uint8
	Aformat      uint8
	Dmevmask     uint32
	Dmstate      uint16
	Flags        uint16
	Gen          uint32
	NextUnlinked uint32
}

// IsValid reports whether the record carries the "IN" magic. Positions
// without it are not inodes and are never classified.
func (ic *InodeCore) IsValid() bool {
	return ic.Magic == inodeMagic
}

func (ic *InodeCore) FileType() FileType {
	return FileType(ic.Mode >> 12)
}

func (ic *InodeCore) IsDir() bool {
	return ic.FileType() == TypeDir
}

// literalOffset is where the inline data fork starts inside the record.
func (ic *InodeCore) literalOffset() int {
	if ic.Version >= 3 {
		return InodeV3CoreSize
	}
	return InodeCoreSize
}

// DecodeInode decodes the fixed-size record window at off. A window past the
// image end fails with ErrOutOfBounds; callers driving a sweep treat that as
// end of scan. A magic mismatch is not an error, the record decodes with
// IsValid() == false.
func DecodeInode(img []byte, off int64, inodeSize int) (*InodeCore, error) {
	if off < 0 || inodeSize < InodeCoreSize || off+int64(inodeSize) > int64(len(img)) {
		return nil, xerrors.Errorf("record window [%d, %d) exceeds image length %d: %w",
			off, off+int64(inodeSize), len(img), ErrOutOfBounds)
	}

	var ic InodeCore
	r := bytes.NewReader(img[off : off+int64(inodeSize)])
	if err := binary.Read(r, binary.BigEndian, &ic); err != nil {
		return nil, xerrors.Errorf("failed to read inode core: %w", err)
	}
	return &ic, nil
}

// Dir2SfHdr heads the inline entry list of a short-form directory. The
// parent inode number that follows it is 4 or 8 bytes wide per I8Count.
// https://github.com/torvalds/linux/blob/5bfc75d92efd494db37f5c4c173d3639d4772966/fs/xfs/libxfs/xfs_da_format.h#L203-L207
type Dir2SfHdr struct {
	Count   uint8
	I8Count uint8
}

// Dir2SfEntry is one inline directory entry.
// https://github.com/torvalds/linux/blob/5bfc75d92efd494db37f5c4c173d3639d4772966/fs/xfs/libxfs/xfs_da_format.h#L209-L220
type Dir2SfEntry struct {
	Namelen   uint8
	Offset    [2]uint8
	EntryName string
	Filetype  uint8
	Inumber   uint64
}

func (e Dir2SfEntry) Name() string {
	return e.EntryName
}

func (e Dir2SfEntry) FileType() uint8 {
	return e.Filetype
}

func (e Dir2SfEntry) InodeNumber() uint64 {
	return e.Inumber
}

func (e Dir2SfEntry) String() string {
	return fmt.Sprintf("%20s (type: %d, inode: %d)", e.Name(), e.Filetype, e.Inumber)
}

// WalkShortform reads the count-prefixed inline entry list following the
// inode core. The walk stops when the declared count is exhausted or the
// record boundary cuts an entry short, whichever comes first; entries
// already read are kept either way. The rec must have been decoded from img
// at off with the same inodeSize.
func WalkShortform(img []byte, off int64, inodeSize int, rec *InodeCore) []Dir2SfEntry {
	literal := rec.literalOffset()
	if literal >= inodeSize || off+int64(inodeSize) > int64(len(img)) {
		return nil
	}
	r := bytes.NewReader(img[off+int64(literal) : off+int64(inodeSize)])

	var hdr Dir2SfHdr
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil
	}
	// Skip the parent inode number.
	parentLen := int64(4)
	if hdr.I8Count != 0 {
		parentLen = 8
	}
	if _, err := r.Seek(parentLen, io.SeekCurrent); err != nil {
		return nil
	}

	var entries []Dir2SfEntry
	for i := 0; i < int(hdr.Count); i++ {
		entry, err := parseSfEntry(r, hdr.I8Count != 0)
		if err != nil {
			log.Logger.Debugf("short-form entry list truncated at %d of %d: %v", i, hdr.Count, err)
			break
		}
		entries = append(entries, *entry)
	}
	return entries
}

func parseSfEntry(r *bytes.Reader, i8count bool) (*Dir2SfEntry, error) {
	var entry Dir2SfEntry
	if err := binary.Read(r, binary.BigEndian, &entry.Namelen); err != nil {
		return nil, err
	}
	if entry.Namelen == 0 {
		return nil, xerrors.New("zero-length entry name")
	}
	if err := binary.Read(r, binary.BigEndian, &entry.Offset); err != nil {
		return nil, err
	}

	buf := make([]byte, entry.Namelen)
	n, err := r.Read(buf)
	if err != nil {
		return nil, err
	}
	if n != int(entry.Namelen) {
		return nil, xerrors.Errorf("failed to read name: expected namelen(%d) actual(%d)", entry.Namelen, n)
	}
	entry.EntryName = string(buf)

	if err := binary.Read(r, binary.BigEndian, &entry.Filetype); err != nil {
		return nil, err
	}

	if i8count {
		if err := binary.Read(r, binary.BigEndian, &entry.Inumber); err != nil {
			return nil, err
		}
	} else {
		var ino32 uint32
		if err := binary.Read(r, binary.BigEndian, &ino32); err != nil {
			return nil, err
		}
		entry.Inumber = uint64(ino32)
	}
	return &entry, nil
}
