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

// flushLoop drains the partially filled packet every interval, so metrics
// are not held back indefinitely when traffic is too low to fill packets.
// It runs only when FlushInterval is set; flush errors go to the error
// handler, there being no caller to return them to.
func (t *transport) flushLoop(interval time.Duration) {
	defer t.shutdownWg.Done()

	flushTicker := time.NewTicker(interval)
	defer flushTicker.Stop()

	for {
		select {
		case <-t.shutdown:
			return
		case <-flushTicker.C:
			t.bufLock.Lock()
			err := t.flushBuf(len(t.buf))
			t.bufLock.Unlock()

			if err != nil && t.errorHandler != nil {
				t.errorHandler(err)
			}
		}
	}
}
