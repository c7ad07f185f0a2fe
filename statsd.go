/*
Package statsd implements a statsd client tuned for very hot call sites.

With statsd architecture aggregation is performed on the statsd server side
(e.g. using high-performance servers like statsite), so an application
emits many metrics per user action; on top of that most call sites are
subsampled, recording only a small fraction of the calls and annotating
each recorded one with the sampling rate. The client is therefore built
around cheap rejection: every recording method takes a Rate converted to
fixed point at construction, the accept/reject decision is one integer
comparison against a shared PCG random draw, and a rejected call returns
before any locking, formatting or allocation can happen. Rates of 1
short-circuit without touching the random source at all. For extremely
sparse rates an opt-in predictive mode replaces the per-call draw with
per-metric countdowns armed around the expected interval.

Accepted metrics are rendered with zero-allocation strconv appends into a
single packet buffer under a mutex, batched up to the maximum packet size
and written to the UDP socket as one fire-and-forget datagram. The send
happens inline on the calling goroutine when the packet fills up; there is
no background machinery unless a flush interval is configured to bound
batching delay in quiet periods. Delivery is best-effort by design: send
failures surface as errors and count as lost packets, nothing is ever
retried.

Ideas were borrowed from the following statsd clients:

  - https://github.com/quipo/statsd
  - https://github.com/Unix4ever/statsd
  - https://github.com/alexcesaro/statsd/
  - https://github.com/armon/go-metrics
*/
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
