package scavenge

import (
	"bytes"
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/xerrors"

	"github.com/go-forensics/xfs-scavenger/xfs"
)

func writeTestImage(t *testing.T) string {
	t.Helper()

	img := make([]byte, 8*xfs.DefaultInodeSize)
	sb := xfs.SuperBlock{
		Magicnum:  [4]byte{'X', 'F', 'S', 'B'},
		BlockSize: 4096,
		Sectsize:  512,
		Inodesize: 512,
	}
	put(t, img, 0, sb)

	ts := xfs.Timestamp{Sec: 1690000000}
	put(t, img, 512, xfs.InodeCore{
		Magic:   [2]byte{'I', 'N'},
		Mode:    0x81A4,
		Version: 2,
		Format:  xfs.XFS_DINODE_FMT_EXTENTS,
		Atime:   ts,
		Mtime:   ts,
		Ctime:   ts,
	})
	put(t, img, 1024, xfs.InodeCore{
		Magic:   [2]byte{'I', 'N'},
		Version: 2,
		Mtime:   ts,
	})

	path := filepath.Join(t.TempDir(), "image.xfs")
	if err := os.WriteFile(path, img, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func put(t *testing.T, img []byte, off int, v interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, v); err != nil {
		t.Fatal(err)
	}
	copy(img[off:], buf.Bytes())
}

func TestRunScan(t *testing.T) {
	path := writeTestImage(t)

	var out bytes.Buffer
	if err := runScan(context.Background(), path, &scanOptions{}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "Inode #1") {
		t.Errorf("output missing allocated inode: %q", got)
	}
	if !strings.Contains(got, "Probably Deleted") {
		t.Errorf("output missing deleted inode: %q", got)
	}
	if !strings.Contains(got, "Total inodes found: 2") {
		t.Errorf("output missing total: %q", got)
	}
}

func TestRunScanDeletedOnly(t *testing.T) {
	path := writeTestImage(t)

	var out bytes.Buffer
	if err := runScan(context.Background(), path, &scanOptions{deleted: true}, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := out.String()
	if strings.Contains(got, "Regular File") {
		t.Errorf("deleted-only output includes allocated inode: %q", got)
	}
	if !strings.Contains(got, "Total inodes found: 1") {
		t.Errorf("output missing total: %q", got)
	}
	if !strings.Contains(got, "mtime: 2023-") {
		t.Errorf("stale mtime not reported in calendar form: %q", got)
	}
	if !strings.Contains(got, "atime: unset") {
		t.Errorf("zero atime not reported as unset: %q", got)
	}
}

func TestRunScanRejectsForeignImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.ext4")
	if err := os.WriteFile(path, make([]byte, 4096), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err := runScan(context.Background(), path, &scanOptions{}, &out)
	if !xerrors.Is(err, xfs.ErrFilesystemMismatch) {
		t.Fatalf("expected ErrFilesystemMismatch, actual %v", err)
	}
}

func TestScanOptionsMode(t *testing.T) {
	tests := []struct {
		name string
		opts scanOptions
		want xfs.Label
	}{
		{name: "unfiltered", opts: scanOptions{}, want: xfs.LabelAny},
		{name: "allocated", opts: scanOptions{allocated: true}, want: xfs.LabelAllocated},
		{name: "deleted", opts: scanOptions{deleted: true}, want: xfs.LabelProbablyDeleted},
		{name: "shortform", opts: scanOptions{shortform: true}, want: xfs.LabelShortformDir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.mode(); got != tt.want {
				t.Errorf("expected %v, actual %v", tt.want, got)
			}
		})
	}
}
