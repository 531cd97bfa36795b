package xfs

import "strings"

// Label is a set of classification outcomes for one decoded record. The
// checks behind the labels are independent, so a record can carry more than
// one bit; an allocated directory with an inline fork is both Allocated and
// ShortformDir.
type Label uint8

const (
	LabelAllocated Label = 1 << iota
	LabelProbablyDeleted
	LabelShortformDir
	LabelUnrecognized

	// LabelAny selects every label an unfiltered scan reports. Unrecognized
	// positions are reported only when asked for explicitly.
	LabelAny = LabelAllocated | LabelProbablyDeleted | LabelShortformDir
)

func (l Label) Has(other Label) bool {
	return l&other != 0
}

func (l Label) String() string {
	var names []string
	if l.Has(LabelAllocated) {
		names = append(names, "Allocated")
	}
	if l.Has(LabelProbablyDeleted) {
		names = append(names, "Probably Deleted")
	}
	if l.Has(LabelShortformDir) {
		names = append(names, "Short-form Directory")
	}
	if l.Has(LabelUnrecognized) {
		names = append(names, "Unrecognized")
	}
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, ", ")
}

// IsAllocated reports a live inode: a committed, recognized file type and a
// full set of timestamps.
func IsAllocated(rec *InodeCore) bool {
	if !rec.FileType().Known() {
		return false
	}
	return !rec.Atime.IsZero() && !rec.Mtime.IsZero() && !rec.Ctime.IsZero()
}

// IsProbablyDeleted reports a deallocated remnant: the type bits were
// cleared but at least one stale timestamp survives until block reuse.
func IsProbablyDeleted(rec *InodeCore) bool {
	if rec.FileType().Known() {
		return false
	}
	return !rec.Atime.IsZero() || !rec.Mtime.IsZero() || !rec.Ctime.IsZero()
}

// IsShortformDir reports a directory whose entries live inline in the inode
// literal area rather than in extents.
func IsShortformDir(rec *InodeCore) bool {
	return rec.Format == XFS_DINODE_FMT_LOCAL && rec.IsDir()
}

// Classify runs every heuristic over a decoded record and returns the set
// of labels that hold. A record matching none of them is Unrecognized;
// malformed and legitimately empty inodes both land there. Pure function of
// the record, no precedence between the checks.
func Classify(rec *InodeCore) Label {
	var l Label
	if IsAllocated(rec) {
		l |= LabelAllocated
	}
	if IsProbablyDeleted(rec) {
		l |= LabelProbablyDeleted
	}
	if IsShortformDir(rec) {
		l |= LabelShortformDir
	}
	if l == 0 {
		l = LabelUnrecognized
	}
	return l
}
