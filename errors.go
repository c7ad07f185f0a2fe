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

import "fmt"

// EncodingError is returned when a metric can't be rendered into the statsd
// wire format: the name (or a tag, or a set value) contains a protocol
// delimiter, or the value is outside the legal range for its kind. The
// metric is not recorded and no bytes reach the packet buffer.
type EncodingError struct {
	Stat   string
	Reason string
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("cannot encode metric %q: %s", e.Stat, e.Reason)
}

// SendError wraps an OS-level failure to hand a datagram to the socket.
// The packet is dropped and counted as lost, delivery is never retried.
type SendError struct {
	Err error
}

func (e *SendError) Error() string {
	return "sending UDP packet: " + e.Err.Error()
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// ConfigurationError is returned by NewClient for settings the client
// cannot start with, like an unresolvable address or a non-positive packet
// size. It always fails fast, before any metric could be recorded.
type ConfigurationError struct {
	Option string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Option, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
