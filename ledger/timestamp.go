package ledger

import "time"

// Timestamp is a point in time stored as unix nanoseconds. The integer form is
// what gets hashed, so two platforms agree on a block hash regardless of
// time zone or monotonic clock readings.
type Timestamp uint64

// FromTime converts a wall-clock time into a Timestamp.
func FromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixNano())
}

// Time returns the UTC wall-clock time.
func (t Timestamp) Time() time.Time {
	return time.Unix(0, int64(t)).UTC()
}

// Unix returns whole seconds since the epoch.
func (t Timestamp) Unix() int64 {
	return int64(t) / int64(time.Second)
}

// String renders the timestamp in RFC3339 with nanoseconds.
func (t Timestamp) String() string {
	return t.Time().Format(time.RFC3339Nano)
}
