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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSamplerTransport(predictive bool) *transport {
	trans := &transport{rng: newPCG32()}

	if predictive {
		trans.predict = &predictor{}
	}

	return trans
}

func countdownEntries(p *predictor) int {
	entries := 0

	p.countdowns.Range(func(_, _ any) bool {
		entries++
		return true
	})

	return entries
}

func TestSampleAlwaysNeverDraws(t *testing.T) {
	trans := newSamplerTransport(false)
	before := trans.rng.state.Load()

	for i := 0; i < 1000; i++ {
		require.True(t, trans.sample("some.metric", Always))
	}

	// untouched random state proves no draw was consumed
	require.Equal(t, before, trans.rng.state.Load())
}

func TestSampleNeverRejectsWithoutDraw(t *testing.T) {
	trans := newSamplerTransport(false)
	before := trans.rng.state.Load()

	for i := 0; i < 1000; i++ {
		require.False(t, trans.sample("some.metric", Never))
	}

	require.Equal(t, before, trans.rng.state.Load())
}

func TestSampleConvergence(t *testing.T) {
	for _, tc := range []struct {
		rate float64
		n    int
	}{
		{0.01, 10000},
		{0.5, 10000},
		{0.9, 10000},
	} {
		tc := tc

		t.Run(fmt.Sprintf("rate=%v", tc.rate), func(t *testing.T) {
			trans := newSamplerTransport(false)
			rate := NewRate(tc.rate)

			observed := 0
			for i := 0; i < tc.n; i++ {
				if trans.sample("some.metric", rate) {
					observed++
				}
			}

			// the window is n·p ± n·p·(1-p), many standard deviations
			// wide at these parameters, so a healthy generator cannot
			// flake here
			n, p := float64(tc.n), tc.rate
			window := n * p * (1 - p)

			assert.Greater(t, float64(observed), n*p-window)
			assert.Less(t, float64(observed), n*p+window)
		})
	}
}

func TestPredictiveCountdown(t *testing.T) {
	trans := newSamplerTransport(true)
	rate := OneIn(512)

	accepted := 0
	for i := 0; i < 512*10; i++ {
		if trans.sample("hot.metric", rate) {
			accepted++
		}
	}

	// countdowns are re-armed uniformly in [256, 768), so 5120 calls land
	// between 5120/768 and 5120/256 accepts, give or take the partially
	// consumed interval at the end
	assert.GreaterOrEqual(t, accepted, 5)
	assert.LessOrEqual(t, accepted, 21)

	assert.Equal(t, 1, countdownEntries(trans.predict))
}

func TestPredictivePerMetricCountdowns(t *testing.T) {
	trans := newSamplerTransport(true)
	rate := OneIn(512)

	acceptedA, acceptedB := 0, 0
	for i := 0; i < 512*10; i++ {
		if trans.sample("metric.a", rate) {
			acceptedA++
		}

		if trans.sample("metric.b", rate) {
			acceptedB++
		}
	}

	// each name runs its own countdown, neither starves
	assert.GreaterOrEqual(t, acceptedA, 5)
	assert.GreaterOrEqual(t, acceptedB, 5)
	assert.Equal(t, 2, countdownEntries(trans.predict))
}

func TestPredictiveKeepsDrawingForDenseRates(t *testing.T) {
	trans := newSamplerTransport(true)
	rate := OneIn(100) // expected interval below the predictive floor

	n := 100000
	observed := 0
	for i := 0; i < n; i++ {
		if trans.sample("dense.metric", rate) {
			observed++
		}
	}

	// no countdown state: this stayed on the per-call draw
	assert.Zero(t, countdownEntries(trans.predict))
	assert.InDelta(t, float64(n)/100, float64(observed), float64(n)*0.0099)
}

func TestPredictiveAlwaysShortCircuits(t *testing.T) {
	trans := newSamplerTransport(true)
	before := trans.rng.state.Load()

	for i := 0; i < 100; i++ {
		require.True(t, trans.sample("some.metric", Always))
	}

	require.Equal(t, before, trans.rng.state.Load())
	require.Zero(t, countdownEntries(trans.predict))
}
