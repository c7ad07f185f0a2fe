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

import "time"

// Default settings.
const (
	// DefaultMetricPrefix is no prefix.
	DefaultMetricPrefix = ""

	// DefaultMaxPacketSize fits an ethernet frame, with room to spare for
	// the IP and UDP headers.
	DefaultMaxPacketSize = 1432

	// DefaultFlushInterval is zero: packets leave when they fill up or
	// when Flush is called, there is no background goroutine.
	DefaultFlushInterval = time.Duration(0)
)

// ClientOptions are statsd client settings, set at construction time via
// functions of type Option and immutable afterwards.
type ClientOptions struct {
	// Addr is the statsd server address, as "host:port".
	Addr string

	// MetricPrefix is prepended verbatim to every metric name.
	MetricPrefix string

	// MaxPacketSize is the UDP datagram budget in bytes. Metric lines are
	// batched up to this size, a line of its own over the budget still
	// goes out, as an oversized packet.
	MaxPacketSize int

	// FlushInterval, when positive, runs a background goroutine flushing
	// the partially filled packet this often, bounding delivery latency
	// in quiet periods.
	FlushInterval time.Duration

	// SampleRate applies to the convenience methods (Incr, Decr and
	// friends) which take no explicit rate.
	SampleRate Rate

	// Predictive switches sparse rates from a random draw per call to
	// per-metric countdowns armed around the expected interval.
	Predictive bool

	// ErrorHandler receives errors that have no caller to return to,
	// i.e. failures of background flushes. Nil drops them; they still
	// show up in GetLostPackets.
	ErrorHandler func(error)

	// TagFormat is the tag rendering style.
	TagFormat *TagFormat

	// DefaultTags are rendered into every metric, before per-call tags.
	DefaultTags []Tag
}

// Option is a configuration functor for NewClient.
type Option func(*ClientOptions)

// MetricPrefix sets the string prepended to every metric name.
func MetricPrefix(prefix string) Option {
	return func(o *ClientOptions) {
		o.MetricPrefix = prefix
	}
}

// MaxPacketSize sets the UDP datagram budget in bytes.
func MaxPacketSize(n int) Option {
	return func(o *ClientOptions) {
		o.MaxPacketSize = n
	}
}

// FlushInterval enables background flushing of partially filled packets
// every interval.
func FlushInterval(interval time.Duration) Option {
	return func(o *ClientOptions) {
		o.FlushInterval = interval
	}
}

// SampleRate sets the default sampling rate used by the convenience
// methods that take no explicit rate.
func SampleRate(rate Rate) Option {
	return func(o *ClientOptions) {
		o.SampleRate = rate
	}
}

// PredictiveSubsampling switches rates with an expected interval of 256
// calls and up from one random draw per call to per-metric countdowns.
// Denser rates keep drawing per call.
func PredictiveSubsampling() Option {
	return func(o *ClientOptions) {
		o.Predictive = true
	}
}

// ErrorHandler sets the function receiving errors of background flushes.
func ErrorHandler(handler func(error)) Option {
	return func(o *ClientOptions) {
		o.ErrorHandler = handler
	}
}

// TagStyle sets the tag rendering style (Datadog, InfluxDB, Graphite or
// Okmeter).
func TagStyle(style *TagFormat) Option {
	return func(o *ClientOptions) {
		o.TagFormat = style
	}
}

// DefaultTags sets the tags rendered into every metric.
func DefaultTags(tags ...Tag) Option {
	return func(o *ClientOptions) {
		o.DefaultTags = tags
	}
}
