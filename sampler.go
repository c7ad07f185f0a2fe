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
	"sync"

	"go.uber.org/atomic"
)

// predictiveMinInterval is the expected interval, in calls per recorded
// sample, below which predictive mode still draws per call: for dense rates
// a draw is cheaper than the countdown bookkeeping.
const predictiveMinInterval = 256

// sample decides whether the current call is recorded. Rates of 1 and 0
// resolve without touching the random source, which keeps the common
// unsampled path deterministic and free.
func (t *transport) sample(stat string, rate Rate) bool {
	switch rate.cut {
	case 0:
		return true
	case math.MaxUint32:
		return false
	}

	if t.predict != nil && rate.every >= predictiveMinInterval {
		return t.predict.next(stat, rate, t.rng)
	}

	return t.rng.draw() > rate.cut
}

// predictor amortizes the random draw for very sparse rates: instead of one
// decision per call it draws the distance to the next recorded call once
// and counts down. Countdowns are kept per metric name, so a busy metric
// and a quiet one sharing a rate neither starve nor cluster each other.
// The map grows with the metric namespace, which statsd already assumes is
// bounded.
type predictor struct {
	countdowns sync.Map // metric name -> *atomic.Int64
}

// next charges the current call against the countdown for stat. The call
// that drives it to zero is recorded and re-arms the countdown; calls
// racing past zero before the re-arm lands are absorbed as rejections.
func (p *predictor) next(stat string, rate Rate, rng *pcg32) bool {
	v, ok := p.countdowns.Load(stat)
	if !ok {
		v, _ = p.countdowns.LoadOrStore(stat, atomic.NewInt64(interval(rate, rng)))
	}

	countdown := v.(*atomic.Int64)

	if countdown.Dec() == 0 {
		countdown.Store(interval(rate, rng))
		return true
	}

	return false
}

// interval draws the distance to the next recorded call, uniform in
// [every/2, 3*every/2), centered on the expected interval for the rate.
func interval(rate Rate, rng *pcg32) int64 {
	return rate.every/2 + int64(rng.draw())%rate.every
}
