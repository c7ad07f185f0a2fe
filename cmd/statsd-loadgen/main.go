package main

import (
	"context"
	"time"

	statsd "github.com/hotpath/go-statsd"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

var (
	addr           string
	metricPrefix   string
	workers        int
	callsPerSecond int
	sampleOneIn    int
	duration       time.Duration
	predictive     bool
	logLevel       string
)

func init() {
	loadgenCmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8125", "statsd server address")
	loadgenCmd.Flags().StringVar(&metricPrefix, "prefix", "loadgen.", "prefix for generated metric names")
	loadgenCmd.Flags().IntVar(&workers, "workers", 8, "number of concurrent workers")
	loadgenCmd.Flags().IntVar(&callsPerSecond, "calls-per-second", 100000, "stats calls per second per worker, 0 to go as fast as possible")
	loadgenCmd.Flags().IntVar(&sampleOneIn, "sample-one-in", 1000, "record one call in this many, 1 to record everything")
	loadgenCmd.Flags().DurationVar(&duration, "duration", 10*time.Second, "how long to generate load for")
	loadgenCmd.Flags().BoolVar(&predictive, "predictive", false, "use predictive subsampling instead of a draw per call")
	loadgenCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level. panic|fatal|error|warning|info|debug")

	formatter := &log.TextFormatter{FullTimestamp: true}
	formatter.TimestampFormat = "2006-01-02 15:04:05.000"
	log.SetFormatter(formatter)
}

func main() {
	err := loadgenCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}

var loadgenCmd = &cobra.Command{
	Use:   "statsd-loadgen",
	Short: "hammer a statsd server with sampled counters to measure client throughput",
	Run: func(cmd *cobra.Command, args []string) {
		lvl, err := log.ParseLevel(logLevel)
		if err != nil {
			log.Fatalf("failed to parse log-level, %s", err.Error())
		}
		log.SetLevel(lvl)

		if err := run(); err != nil {
			log.Fatal(err)
		}
	},
}

func run() error {
	options := []statsd.Option{
		statsd.MetricPrefix(metricPrefix),
		statsd.FlushInterval(100 * time.Millisecond),
		statsd.ErrorHandler(func(err error) {
			log.WithError(err).Warn("background flush failed")
		}),
	}
	if predictive {
		options = append(options, statsd.PredictiveSubsampling())
	}

	client, err := statsd.NewClient(addr, options...)
	if err != nil {
		return err
	}

	rate := statsd.OneIn(sampleOneIn)

	log.WithFields(log.Fields{
		"addr":    addr,
		"workers": workers,
		"rate":    rate.String(),
	}).Info("starting load")

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	var calls atomic.Int64

	started := time.Now()

	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < workers; i++ {
		i := i

		g.Go(func() error {
			return worker(ctx, client, i, rate, &calls)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	elapsed := time.Since(started)

	if err := client.Flush(); err != nil {
		log.WithError(err).Warn("final flush failed")
	}

	log.WithFields(log.Fields{
		"calls":            calls.Load(),
		"calls-per-second": int64(float64(calls.Load()) / elapsed.Seconds()),
		"lost-packets":     client.GetLostPackets(),
	}).Info("load finished")

	return client.Close()
}

// worker issues stats calls in bursts, sleeping in between to hold the
// requested per-worker rate. Per-call errors are not checked, lost packets
// are picked up from the client counter in the final report.
func worker(ctx context.Context, client *statsd.Client, id int, rate statsd.Rate, calls *atomic.Int64) error {
	tag := statsd.IntTag("worker", id)

	burst := callsPerSecond / 100
	if burst == 0 {
		burst = 1
	}

	var pacer *time.Ticker
	if callsPerSecond > 0 {
		pacer = time.NewTicker(time.Duration(burst) * time.Second / time.Duration(callsPerSecond))
		defer pacer.Stop()
	}

	for {
		for i := 0; i < burst; i++ {
			_ = client.Count("requests", 1, rate, tag)
		}

		calls.Add(int64(burst))

		if pacer == nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}

			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-pacer.C:
		}
	}
}
