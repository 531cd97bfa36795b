package xfs

import (
	"context"
	"io"

	"golang.org/x/xerrors"
)

// Result is one qualifying inode position out of a sweep.
type Result struct {
	Offset int64
	Ino    uint64
	Labels Label
	Type   FileType
	Atime  Timestamp
	Mtime  Timestamp
	Ctime  Timestamp
	Size   uint64
	Gen    uint32

	// Entries holds the inline directory entries when the short-form label
	// was selected and applies.
	Entries []Dir2SfEntry
}

// Scanner sweeps a raw image at inode-stride alignment, decoding and
// classifying each candidate record. The image is held read-only; two
// sweeps of the same image yield identical sequences.
type Scanner struct {
	img       []byte
	sb        *SuperBlock
	mode      Label
	inodeSize int

	start   int64
	off     int64
	invalid int
}

// NewScanner validates the superblock once and positions the sweep at the
// first stride-aligned offset past the superblock sector. mode selects
// which labels Next yields.
func NewScanner(img []byte, mode Label) (*Scanner, error) {
	sb, err := ParseSuperBlock(img)
	if err != nil {
		return nil, xerrors.Errorf("failed to validate superblock: %w", err)
	}
	_, inodeSize := sb.ScanParams()

	s := &Scanner{
		img:       img,
		sb:        sb,
		mode:      mode,
		inodeSize: inodeSize,
		start:     alignUp(SectorSize, int64(inodeSize)),
	}
	s.Reset()
	return s, nil
}

func (s *Scanner) SuperBlock() *SuperBlock {
	return s.sb
}

// InodeSize is the sweep stride in bytes.
func (s *Scanner) InodeSize() int {
	return s.inodeSize
}

// Invalid counts the positions since the last Reset whose record magic did
// not match. Invalid positions are skipped, never classified.
func (s *Scanner) Invalid() int {
	return s.invalid
}

// Reset rewinds the sweep to its starting offset.
func (s *Scanner) Reset() {
	s.off = s.start
	s.invalid = 0
}

// Next returns the next qualifying record in strictly ascending offset
// order, or io.EOF when the remaining image cannot hold another record.
// Cancellation is cooperative: the context is checked before each decode,
// never in the middle of one.
func (s *Scanner) Next(ctx context.Context) (*Result, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := DecodeInode(s.img, s.off, s.inodeSize)
		if err != nil {
			if xerrors.Is(err, ErrOutOfBounds) {
				return nil, io.EOF
			}
			return nil, xerrors.Errorf("failed to decode record at offset %d: %w", s.off, err)
		}
		off := s.off
		s.off += int64(s.inodeSize)

		if !rec.IsValid() {
			s.invalid++
			continue
		}

		labels := Classify(rec)
		if !labels.Has(s.mode) {
			continue
		}

		res := &Result{
			Offset: off,
			Ino:    uint64(off) / uint64(s.inodeSize),
			Labels: labels,
			Type:   rec.FileType(),
			Atime:  rec.Atime,
			Mtime:  rec.Mtime,
			Ctime:  rec.Ctime,
			Size:   rec.Size,
			Gen:    rec.Gen,
		}
		if labels.Has(LabelShortformDir) && s.mode.Has(LabelShortformDir) {
			res.Entries = WalkShortform(s.img, off, s.inodeSize, rec)
		}
		return res, nil
	}
}

// Scan runs a sweep to completion and collects every qualifying record.
func Scan(ctx context.Context, img []byte, mode Label) ([]Result, error) {
	s, err := NewScanner(img, mode)
	if err != nil {
		return nil, err
	}

	var results []Result
	for {
		res, err := s.Next(ctx)
		if err != nil {
			if xerrors.Is(err, io.EOF) {
				return results, nil
			}
			return nil, err
		}
		results = append(results, *res)
	}
}

func alignUp(n, align int64) int64 {
	return (n + align - 1) &^ (align - 1)
}
