package visual

import (
	"fmt"

	"github.com/jeongseonghan/hvatp/internal/fec"
)

// frameBlockSizes partitions totalSymbols into fec.RSCodec-sized shards of
// at most 255 symbols each ("messages exceeding 255 bytes
// are split into shards of <=255 bytes each, encoded independently,
// concatenated in order"), distributing the remainder across the first
// blocks so sizes differ by at most one symbol.
func frameBlockSizes(totalSymbols int) []int {
	if totalSymbols <= 0 {
		return nil
	}
	numBlocks := (totalSymbols + fec.MaxShardSymbols - 1) / fec.MaxShardSymbols
	base := totalSymbols / numBlocks
	rem := totalSymbols % numBlocks
	sizes := make([]int, numBlocks)
	for i := range sizes {
		sizes[i] = base
		if i < rem {
			sizes[i]++
		}
	}
	return sizes
}

// frameCodec is the RS codec for one visual frame's data region: a
// concatenation of one fec.RSCodec per shard, sized so the total output
// exactly fills total_symbols bytes.
type frameCodec struct {
	blocks []*fec.RSCodec
}

func newFrameCodec(totalSymbols int, eccLevel float64) (*frameCodec, error) {
	sizes := frameBlockSizes(totalSymbols)
	if len(sizes) == 0 {
		return nil, fmt.Errorf("visual: frame has no symbol capacity")
	}
	blocks := make([]*fec.RSCodec, len(sizes))
	for i, size := range sizes {
		codec, err := fec.NewRSCodecShard(size, eccLevel)
		if err != nil {
			return nil, fmt.Errorf("visual: shard %d: %w", i, err)
		}
		blocks[i] = codec
	}
	return &frameCodec{blocks: blocks}, nil
}

func (fc *frameCodec) dataSymbols() int {
	n := 0
	for _, b := range fc.blocks {
		n += b.DataShards()
	}
	return n
}

func (fc *frameCodec) paritySymbols() int {
	n := 0
	for _, b := range fc.blocks {
		n += b.ParityShards()
	}
	return n
}

func (fc *frameCodec) totalSymbols() int {
	n := 0
	for _, b := range fc.blocks {
		n += b.TotalShards()
	}
	return n
}

// encode requires data to be exactly dataSymbols bytes (callers pad).
func (fc *frameCodec) encode(data []byte) []byte {
	out := make([]byte, 0, fc.totalSymbols())
	offset := 0
	for _, b := range fc.blocks {
		n := b.DataShards()
		out = append(out, b.Encode(data[offset:offset+n])...)
		offset += n
	}
	return out
}

// decode requires received to be exactly totalSymbols bytes.
func (fc *frameCodec) decode(received []byte) ([]byte, int, error) {
	out := make([]byte, 0, fc.dataSymbols())
	corrected := 0
	offset := 0
	for _, b := range fc.blocks {
		n := b.TotalShards()
		decoded, c, err := b.Decode(received[offset : offset+n])
		if err != nil {
			return nil, corrected, fmt.Errorf("%w", ErrUncorrectable)
		}
		out = append(out, decoded...)
		corrected += c
		offset += n
	}
	return out, corrected, nil
}
