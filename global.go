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
	"time"

	"go.uber.org/atomic"
)

// defaultClient backs the package-level recording functions. It stays nil
// until Init succeeds; the package-level functions are silent no-ops while
// it is nil, so call sites never have to guard against a client that is
// not set up yet.
var defaultClient atomic.Pointer[Client]

// Init constructs the process-wide default client used by the package
// level functions. The first successful call wins; later calls do nothing
// and return nil. The explicitly-constructed Client API does not depend
// on this in any way.
func Init(addr string, options ...Option) error {
	if defaultClient.Load() != nil {
		return nil
	}

	c, err := NewClient(addr, options...)
	if err != nil {
		return err
	}

	if !defaultClient.CompareAndSwap(nil, c) {
		// lost the race to a concurrent Init
		return c.Close()
	}

	return nil
}

// SetDefault replaces the process-wide default client and returns the
// previous one, nil if there was none. The caller owns closing the
// replaced client. Tests use this to point the package-level functions at
// a private destination and to restore the previous state afterwards.
func SetDefault(c *Client) *Client {
	return defaultClient.Swap(c)
}

// DefaultClient returns the process-wide default client, nil before Init.
func DefaultClient() *Client {
	return defaultClient.Load()
}

// Shutdown flushes and closes the process-wide default client. The
// package-level functions turn back into no-ops. Safe to call more than
// once and without a previous Init.
func Shutdown() error {
	c := defaultClient.Swap(nil)
	if c == nil {
		return nil
	}

	return c.Close()
}

// Count records a counter change on the default client.
func Count(stat string, count int64, rate Rate, tags ...Tag) error {
	if c := defaultClient.Load(); c != nil {
		return c.Count(stat, count, rate, tags...)
	}

	return nil
}

// FCount records a floating point counter change on the default client.
func FCount(stat string, count float64, rate Rate, tags ...Tag) error {
	if c := defaultClient.Load(); c != nil {
		return c.FCount(stat, count, rate, tags...)
	}

	return nil
}

// Incr increments a counter on the default client.
func Incr(stat string, count int64, tags ...Tag) error {
	if c := defaultClient.Load(); c != nil {
		return c.Incr(stat, count, tags...)
	}

	return nil
}

// Decr decrements a counter on the default client.
func Decr(stat string, count int64, tags ...Tag) error {
	if c := defaultClient.Load(); c != nil {
		return c.Decr(stat, count, tags...)
	}

	return nil
}

// FIncr increments a counter by a floating point value on the default
// client.
func FIncr(stat string, count float64, tags ...Tag) error {
	if c := defaultClient.Load(); c != nil {
		return c.FIncr(stat, count, tags...)
	}

	return nil
}

// FDecr decrements a counter by a floating point value on the default
// client.
func FDecr(stat string, count float64, tags ...Tag) error {
	if c := defaultClient.Load(); c != nil {
		return c.FDecr(stat, count, tags...)
	}

	return nil
}

// Timing records a duration event in milliseconds on the default client.
func Timing(stat string, delta int64, rate Rate, tags ...Tag) error {
	if c := defaultClient.Load(); c != nil {
		return c.Timing(stat, delta, rate, tags...)
	}

	return nil
}

// PrecisionTiming records a duration event on the default client.
func PrecisionTiming(stat string, delta time.Duration, rate Rate, tags ...Tag) error {
	if c := defaultClient.Load(); c != nil {
		return c.PrecisionTiming(stat, delta, rate, tags...)
	}

	return nil
}

// Gauge sets a gauge value on the default client.
func Gauge(stat string, value int64, rate Rate, tags ...Tag) error {
	if c := defaultClient.Load(); c != nil {
		return c.Gauge(stat, value, rate, tags...)
	}

	return nil
}

// GaugeDelta records a gauge change on the default client.
func GaugeDelta(stat string, value int64, rate Rate, tags ...Tag) error {
	if c := defaultClient.Load(); c != nil {
		return c.GaugeDelta(stat, value, rate, tags...)
	}

	return nil
}

// FGauge sets a floating point gauge value on the default client.
func FGauge(stat string, value float64, rate Rate, tags ...Tag) error {
	if c := defaultClient.Load(); c != nil {
		return c.FGauge(stat, value, rate, tags...)
	}

	return nil
}

// FGaugeDelta records a floating point gauge change on the default
// client.
func FGaugeDelta(stat string, value float64, rate Rate, tags ...Tag) error {
	if c := defaultClient.Load(); c != nil {
		return c.FGaugeDelta(stat, value, rate, tags...)
	}

	return nil
}

// SetAdd adds a unique element to a set on the default client.
func SetAdd(stat string, value string, rate Rate, tags ...Tag) error {
	if c := defaultClient.Load(); c != nil {
		return c.SetAdd(stat, value, rate, tags...)
	}

	return nil
}

// Flush forces the default client's partially filled packet out.
func Flush() error {
	if c := defaultClient.Load(); c != nil {
		return c.Flush()
	}

	return nil
}
