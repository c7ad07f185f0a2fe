package statsd

/*

Copyright (c) 2017 Andrey Smirnov

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.

*/

import (
	"math"
	"strconv"
)

// Rate is a sampling rate, conceptually a fraction in (0, 1].
//
// Internally the fraction is kept as a rejection cutoff spread over the
// uint32 range: a call is recorded when a 32-bit random draw lands strictly
// above the cutoff. The fraction is converted exactly once, when the Rate is
// built, so recording calls compare integers and never touch floating
// point. The wire annotation ("|@0.1") is prerendered here too, encoding is
// a byte copy.
//
// The zero value records every call.
type Rate struct {
	// cut is the rejection cutoff: record when draw > cut. Zero accepts
	// without drawing, math.MaxUint32 rejects without drawing.
	cut uint32

	// every is the expected number of calls per recorded sample, used by
	// predictive subsampling to arm countdowns.
	every int64

	// suffix is the prerendered "|@<rate>" annotation, empty for rate 1.
	suffix string
}

// Always records every call and never consults the random source.
var Always = Rate{}

// Never drops every call, also without consulting the random source. Handy
// as a kill switch for a single metric.
var Never = Rate{cut: math.MaxUint32}

// NewRate converts a fractional sampling rate into the fixed-point form.
// Values of 1 and above collapse to Always, zero and below to Never.
func NewRate(rate float64) Rate {
	if rate >= 1 {
		return Always
	}

	if rate <= 0 {
		return Never
	}

	cut := uint32((1 - rate) * float64(math.MaxUint32))
	if cut == math.MaxUint32 {
		// keep tiny positive rates from collapsing into Never
		cut--
	}

	// rounded division, the truncation in cut would otherwise skew the
	// interval one short
	span := uint64(math.MaxUint32) - uint64(cut)

	return Rate{
		cut:    cut,
		every:  int64(((1 << 32) + span/2) / span),
		suffix: "|@" + strconv.FormatFloat(rate, 'f', -1, 64),
	}
}

// OneIn builds a rate recording one call out of every n, using integer
// arithmetic only, wire annotation included. Values of n below 2 collapse
// to Always.
func OneIn(n int) Rate {
	if n <= 1 {
		return Always
	}

	span := uint64(1<<32) / uint64(n)
	if span == 0 {
		span = 1
	}

	return Rate{
		cut:    uint32(uint64(math.MaxUint32) - span),
		every:  int64(n),
		suffix: oneInSuffix(int64(n)),
	}
}

// String renders the rate the way it would appear on the wire.
func (r Rate) String() string {
	if r.cut == 0 {
		return "1"
	}

	if r.suffix == "" {
		return "0"
	}

	return r.suffix[2:]
}

// oneInSuffix renders 1/n as "|@0.d…" by long division, so OneIn stays
// float-free even at construction. Non-terminating expansions stop after
// nine digits.
func oneInSuffix(n int64) string {
	buf := append(make([]byte, 0, 13), '|', '@', '0', '.')

	rem := int64(1)
	for i := 0; i < 9; i++ {
		rem *= 10
		buf = append(buf, byte('0'+rem/n))
		rem %= n

		if rem == 0 {
			break
		}
	}

	return string(buf)
}
