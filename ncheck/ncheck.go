// Package ncheck resolves inode numbers to path names through the external
// xfs_ncheck(8) utility. The scanner itself never resolves names, it only
// supplies inode numbers; this package is the optional cross-reference
// consumer on top.
package ncheck

import (
	"bufio"
	"bytes"
	"io"
	"os/exec"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// Run invokes xfs_ncheck against the image path and parses its output into
// an inode-number to name map. The image is only ever read.
func Run(image string) (map[uint64]string, error) {
	out, err := exec.Command("xfs_ncheck", image).Output()
	if err != nil {
		return nil, xerrors.Errorf("failed to run xfs_ncheck: %w", err)
	}
	return Parse(bytes.NewReader(out))
}

// Parse reads "inode path" lines as produced by xfs_ncheck. Lines that do
// not parse are skipped rather than failing the whole map.
func Parse(r io.Reader) (map[uint64]string, error) {
	names := make(map[uint64]string)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		i := strings.IndexAny(line, " \t")
		if i < 0 {
			continue
		}
		ino, err := strconv.ParseUint(line[:i], 10, 64)
		if err != nil {
			continue
		}
		names[ino] = strings.TrimSpace(line[i:])
	}
	if err := sc.Err(); err != nil {
		return nil, xerrors.Errorf("failed to read xfs_ncheck output: %w", err)
	}
	return names, nil
}
