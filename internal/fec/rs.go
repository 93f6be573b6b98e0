package fec

import "fmt"

// MaxShardSymbols is the largest codeword length the GF(2^8) field
// supports: n = 255 symbols (alpha^255 wraps around to alpha^0).
const MaxShardSymbols = 255

// ErrUncorrectable is returned when a shard carries more byte errors than
// its parity can locate and fix.
var ErrUncorrectable = fmt.Errorf("fec: uncorrectable: error count exceeds correction radius")

// RSCodec is a systematic Reed-Solomon(255, k) code with k chosen from a
// parity ratio, matching the outer code described for the visual symbol
// stream. Messages longer than DataShards bytes are split into
// independent codewords and concatenated, since GF(2^8) caps a single
// codeword at 255 symbols.
type RSCodec struct {
	dataShards int
	parityShards int
	generator []byte
}

// NewRSCodec builds a codec sized so one shard occupies the full 255-symbol
// codeword, with parity/total ~= eccLevel. eccLevel must be in [0.25, 0.50]
// per the visual frame's allowed ECC range.
func NewRSCodec(eccLevel float64) (*RSCodec, error) {
	return NewRSCodecShard(MaxShardSymbols, eccLevel)
}

// NewRSCodecShard builds a codec with an explicit codeword length, for
// callers that need a smaller shard (e.g. tests, or a control packet whose
// payload is far under 255 bytes).
func NewRSCodecShard(shardSymbols int, eccLevel float64) (*RSCodec, error) {
	if eccLevel < 0.25 || eccLevel > 0.50 {
		return nil, fmt.Errorf("fec: ecc level %.3f outside [0.25, 0.50]", eccLevel)
	}
	if shardSymbols < 2 || shardSymbols > MaxShardSymbols {
		return nil, fmt.Errorf("fec: shard size %d outside [2, %d]", shardSymbols, MaxShardSymbols)
	}
	parity := int(float64(shardSymbols)*eccLevel + 0.5)
	if parity < 1 {
		parity = 1
	}
	data := shardSymbols - parity
	if data < 1 {
		return nil, fmt.Errorf("fec: ecc level %.3f leaves no data symbols in a %d-symbol shard", eccLevel, shardSymbols)
	}
	return &RSCodec{
		dataShards: data,
		parityShards: parity,
		generator: generatorPoly(parity),
	}, nil
}

// generatorPoly builds g(x) = product_{i=0}^{nsym-1} (x - alpha^i), stored
// highest-degree coefficient first.
func generatorPoly(nsym int) []byte {
	g := []byte{1}
	for i := 0; i < nsym; i++ {
		g = gfPolyMul(g, []byte{1, gfPow(2, i)})
	}
	return g
}

// DataShards returns the number of data symbols per codeword.
func (c *RSCodec) DataShards() int { return c.dataShards }

// ParityShards returns the number of parity symbols per codeword.
func (c *RSCodec) ParityShards() int { return c.parityShards }

// TotalShards returns DataShards+ParityShards.
func (c *RSCodec) TotalShards() int { return c.dataShards + c.parityShards }

// Encode appends systematic Reed-Solomon parity to data, splitting into
// DataShards-sized blocks (the final block zero-padded) when data is
// larger than one codeword's worth of symbols.
func (c *RSCodec) Encode(data []byte) []byte {
	numBlocks := (len(data) + c.dataShards - 1) / c.dataShards
	if numBlocks == 0 {
		numBlocks = 1
	}
	out := make([]byte, 0, numBlocks*c.TotalShards())
	for b := 0; b < numBlocks; b++ {
		start := b * c.dataShards
		end := start + c.dataShards
		block := make([]byte, c.dataShards)
		if start < len(data) {
			copy(block, data[start:min(end, len(data))])
		}
		out = append(out, c.encodeBlock(block)...)
	}
	return out
}

// encodeBlock performs the classic shift-register systematic encode: treat
// block||zeros as a polynomial (highest-degree coefficient first) and
// divide by the generator; the remainder becomes the parity tail.
func (c *RSCodec) encodeBlock(block []byte) []byte {
	remainder := make([]byte, c.dataShards+c.parityShards)
	copy(remainder, block)
	for i := 0; i < c.dataShards; i++ {
		coef := remainder[i]
		if coef == 0 {
			continue
		}
		for j := 0; j < len(c.generator); j++ {
			remainder[i+j] ^= gfMul(c.generator[j], coef)
		}
	}
	codeword := make([]byte, c.TotalShards())
	copy(codeword, block)
	copy(codeword[c.dataShards:], remainder[c.dataShards:c.dataShards+c.parityShards])
	return codeword
}

// Decode recovers the original data from a received byte stream, correcting
// up to ParityShards/2 byte errors per codeword. It returns the
// reassembled data symbols (one DataShards-sized chunk per codeword,
// including any trailing zero padding added at encode time) and the total
// number of corrected byte errors across all codewords.
func (c *RSCodec) Decode(received []byte) ([]byte, int, error) {
	total := c.TotalShards()
	if len(received)%total != 0 {
		return nil, 0, fmt.Errorf("fec: received length %d not a multiple of codeword size %d", len(received), total)
	}
	numBlocks := len(received) / total
	out := make([]byte, 0, numBlocks*c.dataShards)
	corrected := 0
	for b := 0; b < numBlocks; b++ {
		block := received[b*total : (b+1)*total]
		fixed, n, err := c.decodeBlock(block)
		if err != nil {
			return nil, corrected, err
		}
		out = append(out, fixed[:c.dataShards]...)
		corrected += n
	}
	return out, corrected, nil
}

// decodeBlock corrects one codeword in place (on a private copy) using
// syndrome computation, Berlekamp-Massey, Chien search and Forney's
// algorithm -- the classical GF(2^8) error-correcting decode. klauspost's
// erasure library cannot do this step: it reconstructs missing shards at
// known positions, but has no notion of locating an unknown-position byte
// flip.
func (c *RSCodec) decodeBlock(block []byte) ([]byte, int, error) {
	msg := make([]byte, len(block))
	copy(msg, block)

	synd := c.syndromes(msg)
	if allZero(synd) {
		return msg, 0, nil
	}

	errLoc := berlekampMassey(synd, c.parityShards)
	numErrors := len(errLoc) - 1
	if numErrors == 0 || numErrors*2 > c.parityShards {
		return nil, 0, ErrUncorrectable
	}

	locs, positions := chienSearch(errLoc, len(msg))
	if len(positions) != numErrors {
		return nil, 0, ErrUncorrectable
	}

	if err := correctErrata(msg, synd, errLoc, locs, positions, c.parityShards); err != nil {
		return nil, 0, err
	}

	if !allZero(c.syndromes(msg)) {
		return nil, 0, ErrUncorrectable
	}
	return msg, numErrors, nil
}

// syndromes evaluates the received codeword at alpha^0..alpha^(nsym-1),
// treating msg as a polynomial with the most significant symbol first.
func (c *RSCodec) syndromes(msg []byte) []byte {
	synd := make([]byte, c.parityShards)
	for i := 0; i < c.parityShards; i++ {
		synd[i] = gfPolyEval(msg, gfPow(2, i))
	}
	return synd
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// berlekampMassey finds the shortest LFSR (error locator polynomial) that
// generates the syndrome sequence S_0..S_{nsym-1}. The returned polynomial
// is highest-degree coefficient first, with a trailing constant term of 1.
func berlekampMassey(synd []byte, nsym int) []byte {
	errLoc := []byte{1}
	oldLoc := []byte{1}

	for i := 0; i < nsym; i++ {
		oldLoc = append(oldLoc, 0)

		var delta byte
		for j := 0; j < len(errLoc); j++ {
			if i-j < 0 {
				continue
			}
			delta ^= gfMul(errLoc[len(errLoc)-1-j], synd[i-j])
		}

		if delta == 0 {
			continue
		}

		if len(oldLoc) > len(errLoc) {
			newLoc := gfPolyScale(oldLoc, delta)
			oldLoc = gfPolyScale(errLoc, gfInverse(delta))
			errLoc = newLoc
		}
		errLoc = gfPolyAdd(errLoc, gfPolyScale(oldLoc, delta))
	}

	for len(errLoc) > 1 && errLoc[0] == 0 {
		errLoc = errLoc[1:]
	}
	return errLoc
}

// chienSearch brute-force-evaluates the error locator at alpha^-i for every
// message position, returning the location exponents (the power of alpha at
// which an error occurred) and the corresponding array indices into msg.
func chienSearch(errLoc []byte, msgLen int) (locs []int, positions []int) {
	for i := 0; i < msgLen; i++ {
		if gfPolyEval(errLoc, gfInverse(gfPow(2, i))) == 0 {
			locs = append(locs, i)
			positions = append(positions, msgLen-1-i)
		}
	}
	return locs, positions
}

// correctErrata runs Forney's algorithm to compute the magnitude of each
// located error and XORs it into msg.
func correctErrata(msg, synd, errLoc []byte, locs, positions []int, nsym int) error {
	omega := errorEvaluator(synd, errLoc, nsym)

	for k, pos := range positions {
		xInv := gfInverse(gfPow(2, locs[k]))

		denom := errLocDerivative(errLoc, xInv)
		if denom == 0 {
			return ErrUncorrectable
		}

		numer := gfMul(gfPow(2, locs[k]), gfPolyEval(omega, xInv))
		msg[pos] ^= gfDiv(numer, denom)
	}
	return nil
}

// errorEvaluator computes Omega(x) = [S(x) * Lambda(x)] mod x^nsym, kept in
// the same highest-degree-first convention as the rest of the codec.
func errorEvaluator(synd, errLoc []byte, nsym int) []byte {
	sDesc := make([]byte, len(synd))
	for i, s := range synd {
		sDesc[len(synd)-1-i] = s
	}
	product := gfPolyMul(sDesc, errLoc)
	if len(product) > nsym {
		product = product[len(product)-nsym:]
	}
	return product
}

// errLocDerivative evaluates the formal derivative of the error locator
// polynomial at y. In characteristic 2 the derivative keeps only the
// odd-degree terms, each with its exponent reduced by one.
func errLocDerivative(errLoc []byte, y byte) byte {
	l := len(errLoc) - 1
	var result byte
	for j := 1; j <= l; j += 2 {
		coeff := errLoc[l-j]
		if coeff == 0 {
			continue
		}
		result ^= gfMul(coeff, gfPow(y, j-1))
	}
	return result
}
