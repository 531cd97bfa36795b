package xfs_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/go-forensics/xfs-scavenger/xfs"
)

// Helpers building synthetic images in memory. Offsets follow the defaults:
// 512-byte superblock sector, 512-byte inode stride.

const testInodeSize = 512

var testTime = xfs.Timestamp{Sec: 1690000000}

func testSuperBlock() xfs.SuperBlock {
	return xfs.SuperBlock{
		Magicnum:  [4]byte{'X', 'F', 'S', 'B'},
		BlockSize: 4096,
		Dblocks:   1,
		Agcount:   1,
		Sectsize:  512,
		Inodesize: testInodeSize,
	}
}

func buildImage(t *testing.T, slots int) []byte {
	t.Helper()
	img := make([]byte, slots*testInodeSize)
	putStruct(t, img, 0, testSuperBlock())
	return img
}

func putStruct(t *testing.T, img []byte, off int, v interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
		t.Fatalf("failed to encode struct: %v", err)
	}
	if off+buf.Len() > len(img) {
		t.Fatalf("struct at offset %d overflows image of %d bytes", off, len(img))
	}
	copy(img[off:], buf.Bytes())
}

func validInode(mode uint16, format uint8, ts xfs.Timestamp) xfs.InodeCore {
	return xfs.InodeCore{
		Magic:   [2]byte{'I', 'N'},
		Mode:    mode,
		Version: 2,
		Format:  format,
		NLink:   1,
		Atime:   ts,
		Mtime:   ts,
		Ctime:   ts,
	}
}

type sfTestEntry struct {
	name string
	ino  uint64
}

// putShortform writes a short-form entry list at off, in the 4-byte or
// 8-byte inumber encoding. count is written as declared, which may exceed
// the entries actually present.
func putShortform(t *testing.T, img []byte, off int, count uint8, i8 bool, entries []sfTestEntry) {
	t.Helper()
	var buf bytes.Buffer
	buf.WriteByte(count)
	if i8 {
		buf.WriteByte(1)
		binary.Write(&buf, binary.BigEndian, uint64(128))
	} else {
		buf.WriteByte(0)
		binary.Write(&buf, binary.BigEndian, uint32(128))
	}
	for _, e := range entries {
		buf.WriteByte(byte(len(e.name)))
		buf.Write([]byte{0, 0})
		buf.WriteString(e.name)
		buf.WriteByte(1)
		if i8 {
			binary.Write(&buf, binary.BigEndian, e.ino)
		} else {
			binary.Write(&buf, binary.BigEndian, uint32(e.ino))
		}
	}
	if off+buf.Len() > len(img) {
		t.Fatalf("short-form entries at offset %d overflow image", off)
	}
	copy(img[off:], buf.Bytes())
}
