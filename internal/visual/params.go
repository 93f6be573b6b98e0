package visual

import (
	"fmt"

	"github.com/jeongseonghan/hvatp/internal/palette"
)

// Params configures one visual frame family: its color mode, grid size, and
// Reed-Solomon parity ratio. All derived fields follow deterministically
// from these three.
type Params struct {
	Mode palette.Mode
	ModuleCount int
	EccLevel float64
}

// NewParams validates and builds a Params. module_count must lie in
// [50, 500]; ecc_level in [0.25, 0.50] (this format configuration options).
func NewParams(mode palette.Mode, moduleCount int, eccLevel float64) (*Params, error) {
	if moduleCount < 50 || moduleCount > 500 {
		return nil, fmt.Errorf("visual: module_count %d outside [50, 500]", moduleCount)
	}
	if eccLevel < 0.25 || eccLevel > 0.50 {
		return nil, fmt.Errorf("visual: ecc_level %.3f outside [0.25, 0.50]", eccLevel)
	}
	return &Params{Mode: mode, ModuleCount: moduleCount, EccLevel: eccLevel}, nil
}

// CapacityInfo reports the derived symbol budget for a frame, letting a
// caller size payload chunks before encoding (mirrors the original
// implementation's capacity pre-check).
type CapacityInfo struct {
	DataModules int
	TotalSymbols int
	ParitySymbols int
	DataSymbols int
}

// CapacityInfo computes the derived capacity fields. data_modules is the
// number of positions IsReserved leaves free, so total_symbols always fits
// the data region the encoder fills. parity_symbols and data_symbols are
// derived from the actual <=255-symbol shard plan that will encode this
// frame, rather than the naive floor(total_symbols*ecc_level) split, so the
// reported capacity is always exactly achievable by frameCodec.
func (p *Params) CapacityInfo() CapacityInfo {
	m := p.ModuleCount
	dataModules := 0
	for y := 0; y < m; y++ {
		for x := 0; x < m; x++ {
			if !IsReserved(x, y, m) {
				dataModules++
			}
		}
	}
	totalSymbols := (dataModules * p.Mode.BitsPerModule()) / 8

	parity := 0
	for _, size := range frameBlockSizes(totalSymbols) {
		parity += int(float64(size)*p.EccLevel + 0.5)
	}
	return CapacityInfo{
		DataModules: dataModules,
		TotalSymbols: totalSymbols,
		ParitySymbols: parity,
		DataSymbols: totalSymbols - parity,
	}
}
