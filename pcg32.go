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
	"math/bits"
	"time"

	"go.uber.org/atomic"
)

// PCG-XSH-RR constants (O'Neill, pcg-random.org).
const (
	pcg32Mult = 6364136223846793005
	pcg32Incr = 1442695040888963407

	pcg32SeedBase = 5573589319906701683
)

// pcg32 is a PCG-XSH-RR generator with a single 64-bit state word shared by
// every goroutine using the client. The state advances by compare-and-swap,
// so no two callers can consume the same draw and sampling never waits on
// the packet buffer lock. A draw is two shifts, a rotate and one CAS.
type pcg32 struct {
	state atomic.Uint64
}

func newPCG32() *pcg32 {
	// run the base seed through two LCG steps with the clock mixed in
	// between, so restarts don't replay the sampling pattern
	seed := uint64(pcg32SeedBase)
	seed = seed*pcg32Mult + pcg32Incr + uint64(time.Now().UnixNano())
	seed = seed*pcg32Mult + pcg32Incr

	p := &pcg32{}
	p.state.Store(seed)

	return p
}

// draw advances the state and permutes the previous state into a uniform
// 32-bit value.
func (p *pcg32) draw() uint32 {
	var old uint64

	for {
		old = p.state.Load()
		if p.state.CompareAndSwap(old, old*pcg32Mult+pcg32Incr) {
			break
		}
	}

	return bits.RotateLeft32(uint32(((old>>18)^old)>>27), -int(old>>59))
}
