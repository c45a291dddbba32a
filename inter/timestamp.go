package inter

import "time"

// Timestamp is a UNIX-epoch time in seconds.
type Timestamp uint64

// FromTime converts a time.Time into a Timestamp.
// Times before the epoch are clamped to zero.
func FromTime(t time.Time) Timestamp {
	sec := t.Unix()
	if sec < 0 {
		return 0
	}
	return Timestamp(sec)
}

// Time converts the Timestamp back into a time.Time.
func (t Timestamp) Time() time.Time {
	return time.Unix(int64(t), 0).UTC()
}
