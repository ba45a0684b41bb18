package resultstore

import (
	"fmt"
	"strconv"
)

// Key layout:
//
//	run:{unix_ns}:{run_id}  → msgpack-encoded kws.ClipReport
//	rid:{run_id}            → unix_ns of the run key (reverse index)
//
// Zero-padded nanosecond timestamps keep lexicographic key order equal to
// chronological order.

const (
	runSegment = "run"
	ridSegment = "rid"
)

func runKey(ts int64, runID string) Key {
	return Key{runSegment, fmt.Sprintf("%020d", ts), runID}
}

func runPrefix() Key {
	return Key{runSegment}
}

func ridKey(runID string) Key {
	return Key{ridSegment, runID}
}

// parseRunKey extracts the timestamp and run ID from a run key.
func parseRunKey(k Key) (int64, string, error) {
	if len(k) != 3 || k[0] != runSegment {
		return 0, "", fmt.Errorf("resultstore: malformed run key %q", k.String())
	}
	ts, err := strconv.ParseInt(k[1], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("resultstore: malformed run key timestamp: %w", err)
	}
	return ts, k[2], nil
}
