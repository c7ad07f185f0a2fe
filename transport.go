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
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/multierr"
)

// sender is the seam between packet batching and the wire: one
// fire-and-forget write per packet. The UDP socket from net.Dial satisfies
// it directly; tests substitute in-memory recorders.
type sender interface {
	Write(packet []byte) (int, error)
	Close() error
}

// transport holds everything the clones of one client share: the socket,
// the packet buffer with its lock, the sampling machinery and the loss
// counter. The buffer and the socket are the only mutable state, both are
// guarded by bufLock; the random source synchronizes independently so
// sampling decisions never queue behind packet assembly.
type transport struct {
	maxPacketSize int

	out sender

	rng     *pcg32
	predict *predictor

	bufLock sync.Mutex
	buf     []byte

	lostPackets atomic.Int64

	errorHandler func(error)

	shutdown     chan struct{}
	shutdownOnce sync.Once
	shutdownWg   sync.WaitGroup
}

// send hands one packet to the socket. Failures count as lost packets and
// surface to the caller, nothing is retried.
func (t *transport) send(packet []byte) error {
	if _, err := t.out.Write(packet); err != nil {
		t.lostPackets.Inc()

		return &SendError{Err: err}
	}

	return nil
}

// close flushes what is buffered, stops the flush goroutine if one runs
// and releases the socket. Only the first call does the work, so clones
// sharing the transport may all be closed safely.
func (t *transport) close() error {
	var err error

	t.shutdownOnce.Do(func() {
		close(t.shutdown)
		t.shutdownWg.Wait()

		t.bufLock.Lock()
		err = t.flushBuf(len(t.buf))
		t.bufLock.Unlock()

		err = multierr.Append(err, t.out.Close())
	})

	return err
}
