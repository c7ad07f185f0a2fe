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
	"math/rand"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func setupListener(t *testing.T) (*net.UDPConn, chan []byte) {
	inSocket, err := net.ListenUDP("udp4", &net.UDPAddr{
		IP: net.IPv4(127, 0, 0, 1),
	})
	if err != nil {
		t.Error(err)
	}

	received := make(chan []byte, 1024)

	go func() {
		for {
			buf := make([]byte, 1500)

			n, err := inSocket.Read(buf)
			if err != nil {
				return
			}

			received <- buf[0:n]
		}

	}()

	return inSocket, received
}

func TestWrongAddress(t *testing.T) {
	client, err := NewClient("BOOM:BOOM")
	if err == nil {
		_ = client.Close()
		t.Fatal("expected an error for a bad address")
	}

	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Errorf("unexpected error type: %v", err)
	}
}

func TestBadPacketSize(t *testing.T) {
	_, err := NewClient("127.0.0.1:8125", MaxPacketSize(0))

	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Errorf("unexpected error type: %v", err)
	}
}

func TestBadDefaultTags(t *testing.T) {
	_, err := NewClient("127.0.0.1:8125", DefaultTags(StringTag("host", "bad|host")))

	var confErr *ConfigurationError
	if !errors.As(err, &confErr) {
		t.Errorf("unexpected error type: %v", err)
	}
}

func TestCommands(t *testing.T) {
	inSocket, received := setupListener(t)

	client, err := NewClient(inSocket.LocalAddr().String(),
		MetricPrefix("foo."),
		MaxPacketSize(1400))
	if err != nil {
		t.Fatal(err)
	}

	clientTagged, err := NewClient(inSocket.LocalAddr().String(),
		TagStyle(TagFormatDatadog),
		DefaultTags(StringTag("host", "example.com"), Int64Tag("weight", 38)))
	if err != nil {
		t.Fatal(err)
	}

	compareOutput := func(actions func(), expected []string) func(*testing.T) {
		return func(t *testing.T) {
			actions()

			_ = client.Flush()
			_ = clientTagged.Flush()

			for _, exp := range expected {
				buf := <-received

				if string(buf) != exp {
					t.Errorf("unexpected part received: %#v != %#v", string(buf), exp)
				}
			}
		}
	}

	t.Run("Incr", compareOutput(
		func() { client.Incr("req.count", 30) },
		[]string{"foo.req.count:30|c"}))

	t.Run("IncrTaggedInflux", compareOutput(
		func() { client.Incr("req.count", 30, StringTag("app", "service"), IntTag("port", 80)) },
		[]string{"foo.req.count,app=service,port=80:30|c"}))

	t.Run("IncrTaggedDatadog", compareOutput(
		func() { clientTagged.Incr("req.count", 30, StringTag("app", "service"), IntTag("port", 80)) },
		[]string{"req.count:30|c|#host:example.com,weight:38,app:service,port:80"}))

	t.Run("Decr", compareOutput(
		func() { client.Decr("req.count", 30) },
		[]string{"foo.req.count:-30|c"}))

	t.Run("FIncr", compareOutput(
		func() { client.FIncr("req.count", 0.3) },
		[]string{"foo.req.count:0.3|c"}))

	t.Run("FDecr", compareOutput(
		func() { client.FDecr("req.count", 0.3) },
		[]string{"foo.req.count:-0.3|c"}))

	t.Run("Timing", compareOutput(
		func() { client.Timing("req.duration", 100, Always) },
		[]string{"foo.req.duration:100|ms"}))

	t.Run("TimingTaggedInflux", compareOutput(
		func() {
			client.Timing("req.duration", 100, Always, StringTag("app", "service"), IntTag("port", 80))
		},
		[]string{"foo.req.duration,app=service,port=80:100|ms"}))

	t.Run("TimingTaggedDatadog", compareOutput(
		func() {
			clientTagged.Timing("req.duration", 100, Always, StringTag("app", "service"), IntTag("port", 80))
		},
		[]string{"req.duration:100|ms|#host:example.com,weight:38,app:service,port:80"}))

	t.Run("PrecisionTiming", compareOutput(
		func() { client.PrecisionTiming("req.duration", 157356*time.Microsecond, Always) },
		[]string{"foo.req.duration:157.356|ms"}))

	t.Run("PrecisionTimingTaggedInflux", compareOutput(
		func() {
			client.PrecisionTiming("req.duration", 157356*time.Microsecond, Always, StringTag("app", "service"), IntTag("port", 80))
		},
		[]string{"foo.req.duration,app=service,port=80:157.356|ms"}))

	t.Run("PrecisionTimingTaggedDatadog", compareOutput(
		func() {
			clientTagged.PrecisionTiming("req.duration", 157356*time.Microsecond, Always, StringTag("app", "service"), IntTag("port", 80))
		},
		[]string{"req.duration:157.356|ms|#host:example.com,weight:38,app:service,port:80"}))

	t.Run("Gauge", compareOutput(
		func() { client.Gauge("req.clients", 33, Always); client.Gauge("req.clients", -533, Always) },
		[]string{"foo.req.clients:33|g\nfoo.req.clients:0|g\nfoo.req.clients:-533|g"}))

	t.Run("GaugeTaggedInflux", compareOutput(
		func() {
			client.Gauge("req.clients", 33, Always, StringTag("app", "service"), IntTag("port", 80))
			client.Gauge("req.clients", -533, Always, StringTag("app", "service"), IntTag("port", 80))
		},
		[]string{"foo.req.clients,app=service,port=80:33|g\nfoo.req.clients,app=service,port=80:0|g\nfoo.req.clients,app=service,port=80:-533|g"}))

	t.Run("GaugeDelta", compareOutput(
		func() {
			client.GaugeDelta("req.clients", 33, Always)
			client.GaugeDelta("req.clients", -533, Always)
		},
		[]string{"foo.req.clients:+33|g\nfoo.req.clients:-533|g"}))

	t.Run("GaugeDeltaTaggedDatadog", compareOutput(
		func() {
			clientTagged.GaugeDelta("req.clients", 33, Always)
			clientTagged.GaugeDelta("req.clients", -533, Always)
		},
		[]string{"req.clients:+33|g|#host:example.com,weight:38\nreq.clients:-533|g|#host:example.com,weight:38"}))

	t.Run("FGauge", compareOutput(
		func() { client.FGauge("req.clients", 33.5, Always); client.FGauge("req.clients", -533.3, Always) },
		[]string{"foo.req.clients:33.5|g\nfoo.req.clients:0|g\nfoo.req.clients:-533.3|g"}))

	t.Run("FGaugeTaggedInflux", compareOutput(
		func() {
			client.FGauge("req.clients", 33.5, Always, StringTag("app", "service"), IntTag("port", 80))
			client.FGauge("req.clients", -533.3, Always, StringTag("app", "service"), IntTag("port", 80))
		},
		[]string{"foo.req.clients,app=service,port=80:33.5|g\nfoo.req.clients,app=service,port=80:0|g\nfoo.req.clients,app=service,port=80:-533.3|g"}))

	t.Run("FGaugeDelta", compareOutput(
		func() {
			client.FGaugeDelta("req.clients", 33.5, Always)
			client.FGaugeDelta("req.clients", -533.3, Always)
		},
		[]string{"foo.req.clients:+33.5|g\nfoo.req.clients:-533.3|g"}))

	t.Run("FGaugeDeltaTaggedDatadog", compareOutput(
		func() {
			clientTagged.FGaugeDelta("req.clients", 33.5, Always)
			clientTagged.FGaugeDelta("req.clients", -533.3, Always)
		},
		[]string{"req.clients:+33.5|g|#host:example.com,weight:38\nreq.clients:-533.3|g|#host:example.com,weight:38"}))

	t.Run("SetAdd", compareOutput(
		func() { client.SetAdd("req.user", "bob", Always) },
		[]string{"foo.req.user:bob|s"}))

	t.Run("SetAddTaggedInflux", compareOutput(
		func() { client.SetAdd("req.user", "bob", Always, StringTag("app", "service"), IntTag("port", 80)) },
		[]string{"foo.req.user,app=service,port=80:bob|s"}))

	t.Run("SetAddTaggedDatadog", compareOutput(
		func() { clientTagged.SetAdd("req.user", "bob", Always, StringTag("app", "service"), IntTag("port", 80)) },
		[]string{"req.user:bob|s|#host:example.com,weight:38,app:service,port:80"}))

	t.Run("SplitIncr", compareOutput(
		func() {
			for i := 0; i < 100; i++ {
				client.Incr("req.count", 30)
			}
		},
		[]string{
			// 73 lines of 19 bytes fill the 1400-byte budget, the 74th
			// starts the next packet
			strings.TrimSuffix(strings.Repeat("foo.req.count:30|c\n", 73), "\n"),
			strings.TrimSuffix(strings.Repeat("foo.req.count:30|c\n", 27), "\n"),
		}))

	_ = client.Close()
	_ = clientTagged.Close()
	_ = inSocket.Close()
	close(received)
}

func TestBackgroundFlush(t *testing.T) {
	inSocket, received := setupListener(t)

	client, err := NewClient(inSocket.LocalAddr().String(),
		MetricPrefix("foo."),
		FlushInterval(50*time.Millisecond))
	if err != nil {
		t.Fatal(err)
	}

	client.Incr("req.count", 40)
	client.Incr("req.count", 20)

	select {
	case buf := <-received:
		if string(buf) != "foo.req.count:40|c\nfoo.req.count:20|c" {
			t.Errorf("unexpected part received: %#v", string(buf))
		}
	case <-time.After(time.Second):
		t.Errorf("timeout waiting for background flush")
	}

	_ = client.Close()
	_ = inSocket.Close()
	close(received)
}

func TestClones(t *testing.T) {
	inSocket, received := setupListener(t)

	client, err := NewClient(inSocket.LocalAddr().String(),
		MetricPrefix("foo."),
		MaxPacketSize(1400))
	if err != nil {
		t.Fatal(err)
	}

	client2 := client.CloneWithPrefix("bar.")
	client3 := client2.CloneWithPrefixExtension("blah.")

	compareOutput := func(actions func(), expected []string) func(*testing.T) {
		return func(t *testing.T) {
			actions()

			_ = client.Flush()

			for _, exp := range expected {
				var buf []byte
				select {
				case buf = <-received:
				case <-time.After(time.Second):
					t.Errorf("timeout waiting for %v", exp)
					return
				}

				if string(buf) != exp {
					t.Errorf("unexpected part received: %#v != %#v", string(buf), exp)
				}
			}
		}
	}

	t.Run("Original", compareOutput(
		func() { client.Incr("req.count", 30) },
		[]string{"foo.req.count:30|c"}))

	t.Run("CloneWithPrefix", compareOutput(
		func() { client2.Incr("req.count", 30) },
		[]string{"bar.req.count:30|c"}))

	t.Run("CloneWithPrefixExtension", compareOutput(
		func() { client3.Incr("req.count", 30) },
		[]string{"bar.blah.req.count:30|c"}))

	t.Run("SharedPacket", compareOutput(
		func() {
			// clones write into the same packet buffer
			client.Incr("req.count", 1)
			client2.Incr("req.count", 2)
			client3.Incr("req.count", 3)
		},
		[]string{"foo.req.count:1|c\nbar.req.count:2|c\nbar.blah.req.count:3|c"}))

	_ = client.Close()
	_ = client2.Close()
	_ = client3.Close()
	_ = inSocket.Close()
	close(received)
}

func TestConcurrent(t *testing.T) {
	inSocket, received := setupListener(t)

	client, err := NewClient(inSocket.LocalAddr().String(), MetricPrefix("foo."))
	if err != nil {
		t.Fatal(err)
	}

	var totalSent, totalReceived int64

	var wg1, wg2 sync.WaitGroup

	wg1.Add(1)

	go func() {
		for buf := range received {
			for _, part := range strings.Split(string(buf), "\n") {
				i1 := strings.Index(part, ":")
				i2 := strings.Index(part, "|")

				if i1 == -1 || i2 == -1 {
					t.Logf("non-parsable part: %#v", part)
					continue
				}

				count, err := strconv.ParseInt(part[i1+1:i2], 10, 64)
				if err != nil {
					t.Log(err)
					continue
				}

				atomic.AddInt64(&totalReceived, count)
			}
		}

		wg1.Done()
	}()

	workers := 16
	count := 1024

	for i := 0; i < workers; i++ {
		wg2.Add(1)

		go func(i int) {
			for j := 0; j < count; j++ {
				// to simulate real load, sleep a bit in between the stats calls
				time.Sleep(time.Duration(rand.ExpFloat64() * float64(time.Microsecond)))

				increment := i + j
				client.Incr("some.counter", int64(increment))

				atomic.AddInt64(&totalSent, int64(increment))
			}

			wg2.Done()
		}(i)
	}

	wg2.Wait()

	if client.GetLostPackets() > 0 {
		t.Errorf("some packets were lost during the test, results are not valid: %d", client.GetLostPackets())
	}

	_ = client.Close()

	// wait for 30 seconds for all the packets to be received
	for i := 0; i < 30; i++ {
		if atomic.LoadInt64(&totalSent) == atomic.LoadInt64(&totalReceived) {
			break
		}

		time.Sleep(time.Second)
	}

	_ = inSocket.Close()
	close(received)

	wg1.Wait()

	if atomic.LoadInt64(&totalSent) != atomic.LoadInt64(&totalReceived) {
		t.Errorf("sent != received: %v != %v", totalSent, totalReceived)
	}
}

func BenchmarkSimple(b *testing.B) {
	inSocket, err := net.ListenUDP("udp4", &net.UDPAddr{
		IP: net.IPv4(127, 0, 0, 1),
	})
	if err != nil {
		b.Error(err)
	}

	go func() {
		buf := make([]byte, 1500)
		for {
			_, err := inSocket.Read(buf)
			if err != nil {
				return
			}
		}

	}()

	c, err := NewClient(inSocket.LocalAddr().String(), MetricPrefix("metricPrefix"), MaxPacketSize(1432),
		FlushInterval(100*time.Millisecond))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		c.Incr("foo.bar.counter", 1)
		c.Gauge("foo.bar.gauge", 42, Always)
		c.PrecisionTiming("foo.bar.timing", 153*time.Millisecond, Always)
	}
	_ = c.Close()
	_ = inSocket.Close()
}

func BenchmarkComplexDelivery(b *testing.B) {
	inSocket, err := net.ListenUDP("udp4", &net.UDPAddr{
		IP: net.IPv4(127, 0, 0, 1),
	})
	if err != nil {
		b.Error(err)
	}

	go func() {
		buf := make([]byte, 1500)
		for {
			_, err := inSocket.Read(buf)
			if err != nil {
				return
			}
		}

	}()

	client, err := NewClient(inSocket.LocalAddr().String(), MetricPrefix("foo."))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		client.Incr("number.requests", 33)
		client.Timing("another.value", 157, Always)
		client.PrecisionTiming("response.time.for.some.api", 150*time.Millisecond, Always)
		client.PrecisionTiming("response.time.for.some.api.case1", 150*time.Millisecond, Always)
	}

	_ = client.Close()
	_ = inSocket.Close()
}

func BenchmarkTagged(b *testing.B) {
	inSocket, err := net.ListenUDP("udp4", &net.UDPAddr{
		IP: net.IPv4(127, 0, 0, 1),
	})
	if err != nil {
		b.Error(err)
	}

	go func() {
		buf := make([]byte, 1500)
		for {
			_, err := inSocket.Read(buf)
			if err != nil {
				return
			}
		}

	}()

	client, err := NewClient(inSocket.LocalAddr().String(), MetricPrefix("metricPrefix"), MaxPacketSize(1432),
		FlushInterval(100*time.Millisecond), DefaultTags(StringTag("host", "foo")))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		client.Incr("foo.bar.counter", 1, StringTag("route", "api.one"), IntTag("status", 200))
		client.Timing("another.value", 157, Always, StringTag("service", "db"))
		client.PrecisionTiming("response.time.for.some.api", 150*time.Millisecond, Always, IntTag("status", 404))
		client.PrecisionTiming("response.time.for.some.api.case1", 150*time.Millisecond, Always, StringTag("service", "db"), IntTag("status", 200))
	}
	_ = client.Close()
	_ = inSocket.Close()
}
