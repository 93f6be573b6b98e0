package fec

import (
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// FrameErasureCodec recovers whole lost visual frames from VISUAL_PARITY
// control packets. Unlike RSCodec (which locates unknown-position byte
// errors inside one symbol stream), an erasure code needs to know exactly
// which shards are missing -- and a dropped camera frame gives us exactly
// that: the frame_id sequence makes the missing positions obvious. That is
// precisely what klauspost/reedsolomon is built for, so the cross-frame
// recovery path uses it directly instead of the hand-rolled codec.
type FrameErasureCodec struct {
	enc reedsolomon.Encoder
	dataFrames int
	parityFrames int
}

// NewFrameErasureCodec builds a codec over a group of dataFrames visual
// frames, able to reconstruct any dataFrames of them from any surviving
// dataFrames out of dataFrames+parityFrames total.
func NewFrameErasureCodec(dataFrames, parityFrames int) (*FrameErasureCodec, error) {
	enc, err := reedsolomon.New(dataFrames, parityFrames)
	if err != nil {
		return nil, fmt.Errorf("fec: frame erasure codec: %w", err)
	}
	return &FrameErasureCodec{enc: enc, dataFrames: dataFrames, parityFrames: parityFrames}, nil
}

// DataFrames returns the number of source frames per erasure group.
func (c *FrameErasureCodec) DataFrames() int { return c.dataFrames }

// ParityFrames returns the number of parity frames generated per group.
func (c *FrameErasureCodec) ParityFrames() int { return c.parityFrames }

// EncodeParity takes exactly DataFrames frame payloads (ragged lengths
// allowed; all are zero-padded up to the longest) and returns ParityFrames
// parity payloads sized to match, ready to be carried in VISUAL_PARITY
// acoustic packets alongside the group's frame_id range.
func (c *FrameErasureCodec) EncodeParity(frames [][]byte) ([][]byte, error) {
	if len(frames) != c.dataFrames {
		return nil, fmt.Errorf("fec: expected %d frames, got %d", c.dataFrames, len(frames))
	}
	shardLen := 0
	for _, f := range frames {
		if len(f) > shardLen {
			shardLen = len(f)
		}
	}
	shards := make([][]byte, c.dataFrames+c.parityFrames)
	for i, f := range frames {
		shards[i] = make([]byte, shardLen)
		copy(shards[i], f)
	}
	for i := c.dataFrames; i < len(shards); i++ {
		shards[i] = make([]byte, shardLen)
	}
	if err := c.enc.Encode(shards); err != nil {
		return nil, fmt.Errorf("fec: encode parity: %w", err)
	}
	return shards[c.dataFrames:], nil
}

// Reconstruct fills in missing data frames given the frames that did
// arrive. shards must have length DataFrames+ParityFrames; a nil entry
// marks a frame that was never received (or whose header CRC failed). It
// returns the recovered DataFrames data frames, each shardLen bytes long
// (callers trim trailing padding using the frame's own length field).
func (c *FrameErasureCodec) Reconstruct(shards [][]byte) ([][]byte, error) {
	if len(shards) != c.dataFrames+c.parityFrames {
		return nil, fmt.Errorf("fec: expected %d shards, got %d", c.dataFrames+c.parityFrames, len(shards))
	}
	working := make([][]byte, len(shards))
	copy(working, shards)
	if err := c.enc.Reconstruct(working); err != nil {
		return nil, fmt.Errorf("fec: reconstruct: %w", err)
	}
	ok, err := c.enc.Verify(working)
	if err != nil {
		return nil, fmt.Errorf("fec: verify: %w", err)
	}
	if !ok {
		return nil, ErrUncorrectable
	}
	return working[:c.dataFrames], nil
}
