// Command genimage writes a small synthetic XFS-shaped image for demos and
// manual testing: a valid superblock followed by a handful of crafted inode
// records covering the classification labels. It does not need mkfs.xfs or
// root privileges.
package main

import (
	"bytes"
	"encoding/binary"
	"log"
	"os"

	"github.com/go-forensics/xfs-scavenger/xfs"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: genimage <path>")
	}

	img := make([]byte, 8*xfs.DefaultInodeSize)

	sb := xfs.SuperBlock{
		Magicnum:  [4]byte{'X', 'F', 'S', 'B'},
		BlockSize: 4096,
		Dblocks:   1,
		Agcount:   1,
		Sectsize:  512,
		Inodesize: 512,
	}
	copy(sb.Fname[:], "scavtest")
	putStruct(img, 0, &sb)

	mtime := xfs.Timestamp{Sec: 1700000000}

	// Slot 1: an allocated regular file.
	putStruct(img, 512, &xfs.InodeCore{
		Magic:   [2]byte{'I', 'N'},
		Mode:    0x81A4,
		Version: 2,
		Format:  xfs.XFS_DINODE_FMT_EXTENTS,
		NLink:   1,
		Atime:   mtime,
		Mtime:   mtime,
		Ctime:   mtime,
		Size:    1024,
		Gen:     7,
	})

	// Slot 2: a deleted remnant, type bits cleared but timestamps stale.
	putStruct(img, 1024, &xfs.InodeCore{
		Magic:   [2]byte{'I', 'N'},
		Version: 2,
		Mtime:   mtime,
		Ctime:   mtime,
	})

	// Slot 3: a short-form directory with two inline entries.
	putStruct(img, 1536, &xfs.InodeCore{
		Magic:   [2]byte{'I', 'N'},
		Mode:    0x41ED,
		Version: 2,
		Format:  xfs.XFS_DINODE_FMT_LOCAL,
		NLink:   2,
		Atime:   mtime,
		Mtime:   mtime,
		Ctime:   mtime,
		Gen:     9,
	})
	putShortform(img, 1536+xfs.InodeCoreSize, 128, []sfEntry{
		{"evidence.txt", 131},
		{"notes", 132},
	})

	// Remaining slots stay zeroed: invalid records.

	if err := os.WriteFile(os.Args[1], img, 0o644); err != nil {
		log.Fatalf("failed to write image: %v", err)
	}
}

func putStruct(img []byte, off int, v interface{}) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
		log.Fatalf("failed to encode struct: %v", err)
	}
	copy(img[off:], buf.Bytes())
}

type sfEntry struct {
	name string
	ino  uint32
}

func putShortform(img []byte, off int, parent uint32, entries []sfEntry) {
	var buf bytes.Buffer
	buf.WriteByte(byte(len(entries))) // count
	buf.WriteByte(0)                  // i8count
	binary.Write(&buf, binary.BigEndian, parent)
	for _, e := range entries {
		buf.WriteByte(byte(len(e.name)))
		buf.Write([]byte{0, 0}) // offset
		buf.WriteString(e.name)
		buf.WriteByte(1) // filetype
		binary.Write(&buf, binary.BigEndian, e.ino)
	}
	copy(img[off:], buf.Bytes())
}
