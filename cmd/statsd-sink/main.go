package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	listenAddr string
	logLevel   string
)

func init() {
	sinkCmd.Flags().StringVar(&listenAddr, "addr", "127.0.0.1:8125", "address to listen for statsd packets on")
	sinkCmd.Flags().StringVar(&logLevel, "log-level", "info", "log level. panic|fatal|error|warning|info|debug")

	formatter := &log.TextFormatter{FullTimestamp: true}
	formatter.TimestampFormat = "2006-01-02 15:04:05.000"
	log.SetFormatter(formatter)
}

func main() {
	err := sinkCmd.Execute()
	if err != nil {
		log.Fatal(err)
	}
}

var sinkCmd = &cobra.Command{
	Use:   "statsd-sink",
	Short: "listen for statsd packets and print every metric line",
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
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := net.ListenPacket("udp", listenAddr)
	if err != nil {
		return err
	}

	log.WithField("addr", conn.LocalAddr().String()).Info("listening")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()

		return conn.Close()
	})

	g.Go(func() error {
		buf := make([]byte, 65536)

		for {
			n, from, err := conn.ReadFrom(buf)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}

				return err
			}

			for _, line := range strings.Split(string(buf[:n]), "\n") {
				if line == "" {
					continue
				}

				log.WithField("from", from.String()).Info(line)
			}
		}
	})

	return g.Wait()
}
