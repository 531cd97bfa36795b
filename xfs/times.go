package xfs

import "time"

// Timestamp is the on-disk xfs_timestamp_t pair of signed epoch seconds and
// nanosecond remainder. Pre-1970 seconds are legal.
type Timestamp struct {
	Sec  int32
	Nsec uint32
}

// IsZero reports whether both fields are exactly zero. The all-zero pair is
// the "never set" sentinel and must not surface as 1970-01-01.
func (t Timestamp) IsZero() bool {
	return t.Sec == 0 && t.Nsec == 0
}

// Time converts the stamp to UTC calendar time. The zero stamp maps to the
// zero time.Time, which callers test with time.Time.IsZero.
func (t Timestamp) Time() time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return time.Unix(int64(t.Sec), int64(t.Nsec)).UTC()
}
