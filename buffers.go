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

import "go.uber.org/multierr"

// checkBuf flushes complete lines once the buffer has grown past the
// packet budget. lastLen marks where the just-appended line starts: bytes
// before it are complete lines, bytes after it belong to the line that
// overflowed, which is preserved for the next packet.
//
// Caller must hold bufLock.
func (t *transport) checkBuf(lastLen int) error {
	if len(t.buf) <= t.maxPacketSize {
		return nil
	}

	err := t.flushBuf(lastLen)

	// a line that alone exceeds the budget leaves immediately as its own
	// oversized packet, it is never truncated and never blocks the buffer
	if len(t.buf) > t.maxPacketSize {
		err = multierr.Append(err, t.flushBuf(len(t.buf)))
	}

	return err
}

// flushBuf sends the first length bytes as one packet and slides the
// remaining bytes to the front of the buffer. An empty buffer is a no-op:
// no packet, no socket call.
//
// Caller must hold bufLock.
func (t *transport) flushBuf(length int) error {
	if length == 0 {
		return nil
	}

	// cut off \n at the end of the packet
	err := t.send(t.buf[:length-1])

	copied := copy(t.buf, t.buf[length:])
	t.buf = t.buf[:copied]

	return err
}
