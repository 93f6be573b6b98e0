package visual

import "errors"

// Error taxonomy for the visual codec. All are per-frame/per-call
// failures the caller can retry on the next payload chunk or captured
// frame; none of them panics across the public boundary.
var (
	// ErrCapacityExceeded is returned at encode time when a caller-supplied
	// chunk is larger than the frame's DataSymbols.
	ErrCapacityExceeded = errors.New("visual: capacity exceeded")
	// ErrNotDetected means fewer than 3 finder clusters were located.
	ErrNotDetected = errors.New("visual: finder patterns not detected")
	// ErrRectificationFailed means the homography/warp step failed.
	ErrRectificationFailed = errors.New("visual: perspective rectification failed")
	// ErrUncorrectable means RS decode exceeded its correction radius.
	ErrUncorrectable = errors.New("visual: uncorrectable")
	// ErrBadMetadata means the metadata checksum failed or data_length
	// exceeded the payload region.
	ErrBadMetadata = errors.New("visual: bad metadata")
)
