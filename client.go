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
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Client is a statsd client: it samples, encodes and batches metric calls
// into UDP packets over one socket opened at construction.
type Client struct {
	options ClientOptions
	trans   *transport
}

// NewClient creates a statsd client sending to addr ("host:port").
//
// The socket is opened here and kept for the client's lifetime; a bad
// address or bad settings fail fast with ConfigurationError, before any
// metric could be recorded. Client settings are controlled via functions
// of type Option.
func NewClient(addr string, options ...Option) (*Client, error) {
	c := &Client{
		options: ClientOptions{
			Addr:          addr,
			MetricPrefix:  DefaultMetricPrefix,
			MaxPacketSize: DefaultMaxPacketSize,
			FlushInterval: DefaultFlushInterval,
			SampleRate:    Always,
			TagFormat:     TagFormatInfluxDB,
		},
	}

	for _, option := range options {
		option(&c.options)
	}

	if c.options.MaxPacketSize <= 0 {
		return nil, &ConfigurationError{Option: "MaxPacketSize", Err: errors.New("must be positive")}
	}

	if err := checkTags(c.options.DefaultTags); err != nil {
		return nil, &ConfigurationError{Option: "DefaultTags", Err: err}
	}

	conn, err := net.Dial("udp", c.options.Addr)
	if err != nil {
		return nil, &ConfigurationError{Option: "address", Err: err}
	}

	c.trans = &transport{
		maxPacketSize: c.options.MaxPacketSize,
		out:           conn,
		rng:           newPCG32(),
		// 1024 is room for the line that overflows the packet
		buf:          make([]byte, 0, c.options.MaxPacketSize+1024),
		errorHandler: c.options.ErrorHandler,
		shutdown:     make(chan struct{}),
	}

	if c.options.Predictive {
		c.trans.predict = &predictor{}
	}

	if c.options.FlushInterval > 0 {
		c.trans.shutdownWg.Add(1)
		go c.trans.flushLoop(c.options.FlushInterval)
	}

	return c, nil
}

// Close flushes buffered metrics and releases the socket. Clones share
// the socket: the first Close does the work, the rest are no-ops.
func (c *Client) Close() error {
	return c.trans.close()
}

// Flush forces the partially filled packet out immediately. Intended for
// graceful shutdown and for periods of traffic too low to fill packets,
// where batching delay would otherwise be unbounded.
func (c *Client) Flush() error {
	t := c.trans

	t.bufLock.Lock()
	err := t.flushBuf(len(t.buf))
	t.bufLock.Unlock()

	return err
}

// GetLostPackets returns the number of packets dropped on send failures
// during the client lifecycle.
func (c *Client) GetLostPackets() int64 {
	return c.trans.lostPackets.Load()
}

// CloneWithPrefix returns a copy of the client with the metric prefix
// replaced. The copy shares the socket, the packet buffer and the
// counters with the original.
func (c *Client) CloneWithPrefix(prefix string) *Client {
	clone := *c
	clone.options.MetricPrefix = prefix

	return &clone
}

// CloneWithPrefixExtension returns a copy of the client with extension
// appended to the metric prefix.
func (c *Client) CloneWithPrefixExtension(extension string) *Client {
	clone := *c
	clone.options.MetricPrefix = c.options.MetricPrefix + extension

	return &clone
}

// Count records a counter change, subject to rate.
//
// Zero changes are suppressed before the sampling decision, they carry no
// information.
func (c *Client) Count(stat string, count int64, rate Rate, tags ...Tag) error {
	if 0 == count {
		return nil
	}

	if !c.trans.sample(stat, rate) {
		return nil
	}

	if err := checkMetric(stat, tags); err != nil {
		return err
	}

	t := c.trans
	t.bufLock.Lock()
	lastLen := len(t.buf)

	t.buf = c.appendName(t.buf, stat, tags)
	t.buf = strconv.AppendInt(t.buf, count, 10)
	t.buf = c.appendSuffix(t.buf, "|c", rate, tags)

	err := t.checkBuf(lastLen)
	t.bufLock.Unlock()

	return err
}

// FCount records a floating point counter change, subject to rate.
func (c *Client) FCount(stat string, count float64, rate Rate, tags ...Tag) error {
	if 0 == count {
		return nil
	}

	if !c.trans.sample(stat, rate) {
		return nil
	}

	if err := checkMetric(stat, tags); err != nil {
		return err
	}

	t := c.trans
	t.bufLock.Lock()
	lastLen := len(t.buf)

	t.buf = c.appendName(t.buf, stat, tags)
	t.buf = strconv.AppendFloat(t.buf, count, 'f', -1, 64)
	t.buf = c.appendSuffix(t.buf, "|c", rate, tags)

	err := t.checkBuf(lastLen)
	t.bufLock.Unlock()

	return err
}

// Incr increments a counter at the configured default sample rate.
//
// Often used to note a particular event.
func (c *Client) Incr(stat string, count int64, tags ...Tag) error {
	return c.Count(stat, count, c.options.SampleRate, tags...)
}

// Decr decrements a counter at the configured default sample rate.
func (c *Client) Decr(stat string, count int64, tags ...Tag) error {
	return c.Count(stat, -count, c.options.SampleRate, tags...)
}

// FIncr increments a counter by a floating point value at the configured
// default sample rate.
func (c *Client) FIncr(stat string, count float64, tags ...Tag) error {
	return c.FCount(stat, count, c.options.SampleRate, tags...)
}

// FDecr decrements a counter by a floating point value at the configured
// default sample rate.
func (c *Client) FDecr(stat string, count float64, tags ...Tag) error {
	return c.FCount(stat, -count, c.options.SampleRate, tags...)
}

// Timing records a duration event, the time delta must be given in
// milliseconds. Negative deltas fail with EncodingError, a duration
// cannot be negative.
func (c *Client) Timing(stat string, delta int64, rate Rate, tags ...Tag) error {
	if !c.trans.sample(stat, rate) {
		return nil
	}

	if delta < 0 {
		return &EncodingError{Stat: stat, Reason: "negative timer value"}
	}

	if err := checkMetric(stat, tags); err != nil {
		return err
	}

	t := c.trans
	t.bufLock.Lock()
	lastLen := len(t.buf)

	t.buf = c.appendName(t.buf, stat, tags)
	t.buf = strconv.AppendInt(t.buf, delta, 10)
	t.buf = c.appendSuffix(t.buf, "|ms", rate, tags)

	err := t.checkBuf(lastLen)
	t.bufLock.Unlock()

	return err
}

// PrecisionTiming records a duration event keeping sub-millisecond
// resolution, rendered as a decimal fraction of milliseconds on the wire.
func (c *Client) PrecisionTiming(stat string, delta time.Duration, rate Rate, tags ...Tag) error {
	if !c.trans.sample(stat, rate) {
		return nil
	}

	if delta < 0 {
		return &EncodingError{Stat: stat, Reason: "negative timer value"}
	}

	if err := checkMetric(stat, tags); err != nil {
		return err
	}

	t := c.trans
	t.bufLock.Lock()
	lastLen := len(t.buf)

	t.buf = c.appendName(t.buf, stat, tags)
	t.buf = strconv.AppendFloat(t.buf, float64(delta)/float64(time.Millisecond), 'f', -1, 64)
	t.buf = c.appendSuffix(t.buf, "|ms", rate, tags)

	err := t.checkBuf(lastLen)
	t.bufLock.Unlock()

	return err
}

func (c *Client) igauge(stat string, sign []byte, value int64, rate Rate, tags []Tag) error {
	t := c.trans
	t.bufLock.Lock()
	lastLen := len(t.buf)

	t.buf = c.appendName(t.buf, stat, tags)
	t.buf = append(t.buf, sign...)
	t.buf = strconv.AppendInt(t.buf, value, 10)
	t.buf = c.appendSuffix(t.buf, "|g", rate, tags)

	err := t.checkBuf(lastLen)
	t.bufLock.Unlock()

	return err
}

func (c *Client) fgauge(stat string, sign []byte, value float64, rate Rate, tags []Tag) error {
	t := c.trans
	t.bufLock.Lock()
	lastLen := len(t.buf)

	t.buf = c.appendName(t.buf, stat, tags)
	t.buf = append(t.buf, sign...)
	t.buf = strconv.AppendFloat(t.buf, value, 'f', -1, 64)
	t.buf = c.appendSuffix(t.buf, "|g", rate, tags)

	err := t.checkBuf(lastLen)
	t.bufLock.Unlock()

	return err
}

// Gauge sets a constant value for the interval, subject to rate.
//
// Gauges keep their value until changed. The wire protocol reads a leading
// '-' as a delta, so setting a gauge to a negative value goes through an
// explicit reset to zero first; both lines ride in the same packet.
func (c *Client) Gauge(stat string, value int64, rate Rate, tags ...Tag) error {
	if !c.trans.sample(stat, rate) {
		return nil
	}

	if err := checkMetric(stat, tags); err != nil {
		return err
	}

	var err error

	if value < 0 {
		err = c.igauge(stat, nil, 0, rate, tags)
	}

	return multierr.Append(err, c.igauge(stat, nil, value, rate, tags))
}

// GaugeDelta records a change to a gauge value, subject to rate.
//
// Deltas always carry a leading '+' or '-': the '-' takes care of itself,
// the '+' has to be added by hand.
func (c *Client) GaugeDelta(stat string, value int64, rate Rate, tags ...Tag) error {
	if !c.trans.sample(stat, rate) {
		return nil
	}

	if err := checkMetric(stat, tags); err != nil {
		return err
	}

	if value < 0 {
		return c.igauge(stat, nil, value, rate, tags)
	}

	return c.igauge(stat, []byte{'+'}, value, rate, tags)
}

// FGauge sets a constant floating point value for the interval, subject
// to rate. Negative values go through the same reset to zero as Gauge.
func (c *Client) FGauge(stat string, value float64, rate Rate, tags ...Tag) error {
	if !c.trans.sample(stat, rate) {
		return nil
	}

	if err := checkMetric(stat, tags); err != nil {
		return err
	}

	var err error

	if value < 0 {
		err = c.igauge(stat, nil, 0, rate, tags)
	}

	return multierr.Append(err, c.fgauge(stat, nil, value, rate, tags))
}

// FGaugeDelta records a floating point change to a gauge value, subject
// to rate.
func (c *Client) FGaugeDelta(stat string, value float64, rate Rate, tags ...Tag) error {
	if !c.trans.sample(stat, rate) {
		return nil
	}

	if err := checkMetric(stat, tags); err != nil {
		return err
	}

	if value < 0 {
		return c.fgauge(stat, nil, value, rate, tags)
	}

	return c.fgauge(stat, []byte{'+'}, value, rate, tags)
}

// SetAdd adds a unique element to a set, subject to rate. The value lands
// on the wire as is, so it is validated like a metric name.
func (c *Client) SetAdd(stat string, value string, rate Rate, tags ...Tag) error {
	if !c.trans.sample(stat, rate) {
		return nil
	}

	if strings.ContainsAny(value, reservedChars) {
		return &EncodingError{Stat: stat, Reason: "set value contains a reserved character"}
	}

	if err := checkMetric(stat, tags); err != nil {
		return err
	}

	t := c.trans
	t.bufLock.Lock()
	lastLen := len(t.buf)

	t.buf = c.appendName(t.buf, stat, tags)
	t.buf = append(t.buf, value...)
	t.buf = c.appendSuffix(t.buf, "|s", rate, tags)

	err := t.checkBuf(lastLen)
	t.bufLock.Unlock()

	return err
}
