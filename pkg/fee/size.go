package fee

import (
	"math"
	"math/bits"
)

// PushdataPrefixSize returns the number of opcode bytes needed to push an
// n-byte payload: a direct push below 76 bytes, OP_PUSHDATA1 below 256,
// OP_PUSHDATA2 otherwise.
func PushdataPrefixSize(n int) int {
	switch {
	case n < 76:
		return 1
	case n < 256:
		return 2
	default:
		return 3
	}
}

// compactSizeExtra is the number of bytes a CompactSize count needs beyond
// the single byte already counted in the fixed overheads.
func compactSizeExtra(n uint64) uint64 {
	switch {
	case n < 0xfd:
		return 0
	case n <= 0xffff:
		return 2
	case n <= 0xffffffff:
		return 4
	default:
		return 8
	}
}

// txShape is the input/output layout of a transaction being modelled.
type txShape struct {
	inputs      uint64 // P2PKH fee-paying inputs
	tokenInputs uint64 // inputs carrying a token or mint baton
	outputs     uint64 // value-bearing outputs
	hasData     bool
	dataPayload uint64 // bytes after OP_RETURN
}

// size returns the serialized size of the shape:
//
//	overhead + inputs*InputSize + tokenInputs*TokenInputSize + outputs*OutputSize + dataOutput
//
// where dataOutput = OpReturnOverhead + payload. Arithmetic saturates at
// math.MaxUint64.
func (p Policy) size(s txShape) uint64 {
	n := uint64(p.BaseOverhead)
	n = satAdd(n, satMul(s.inputs, uint64(p.InputSize)))
	n = satAdd(n, satMul(s.tokenInputs, uint64(p.TokenInputSize)))
	n = satAdd(n, satMul(s.outputs, uint64(p.OutputSize)))

	outputCount := s.outputs
	if s.hasData {
		n = satAdd(n, p.dataOutputSize(s.dataPayload))
		outputCount = satAdd(outputCount, 1)
	}
	n = satAdd(n, compactSizeExtra(satAdd(s.inputs, s.tokenInputs)))
	n = satAdd(n, compactSizeExtra(outputCount))
	return n
}

// dataOutputSize is the size of a zero-value OP_RETURN output whose script
// carries payload bytes after the OP_RETURN opcode.
func (p Policy) dataOutputSize(payload uint64) uint64 {
	n := satAdd(uint64(p.OpReturnOverhead), payload)
	return satAdd(n, compactSizeExtra(satAdd(payload, 1)))
}

// pushSize is the size of pushing an n-byte payload, prefix included.
func pushSize(n int) uint64 {
	return uint64(PushdataPrefixSize(n)) + uint64(n)
}

// withMargin applies a percentage margin, rounding up.
func withMargin(size uint64, pct int) uint64 {
	if pct < 0 {
		pct = 0
	}
	hi, lo := bits.Mul64(size, uint64(100+pct))
	if hi != 0 {
		return math.MaxUint64
	}
	return ceilDiv(lo, 100)
}

// feeForSize converts a byte size into sats at ratePerKB, rounding up.
func feeForSize(size, ratePerKB uint64) uint64 {
	hi, lo := bits.Mul64(size, ratePerKB)
	if hi != 0 {
		return math.MaxUint64
	}
	return ceilDiv(lo, 1000)
}

func ceilDiv(a, b uint64) uint64 {
	q := a / b
	if a%b != 0 {
		q++
	}
	return q
}

func satAdd(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

func satMul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}
