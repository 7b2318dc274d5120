// Command k-join joins customer and order events by user_id and emits a
// customer snapshot for every event.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	kjoin "github.com/pickme-go/k-join"
	"github.com/pickme-go/k-join/logger"
	"github.com/pickme-go/metrics/v2"
)

func main() {
	config := kjoin.NewJoinBuilderConfig()
	if err := config.FromEnv(); err != nil {
		logger.DefaultLogger.Fatal(fmt.Sprintf(`cannot read environment: %+v`, err))
	}

	opts, err := parseFlags(flag.CommandLine, os.Args[1:], config)
	if err != nil {
		logger.DefaultLogger.Fatal(fmt.Sprintf(`parse flags: %+v`, err))
	}

	config.Logger = logger.New(opts.logLevel, opts.logColors)
	if opts.metrics {
		config.MetricsReporter = metrics.PrometheusReporter(metrics.ReporterConf{
			ConstLabels: map[string]string{
				`application_id`: config.ApplicationId,
			},
		})
	}

	stream, err := kjoin.NewJoinBuilder(config).Build()
	if err != nil {
		logger.DefaultLogger.Fatal(fmt.Sprintf(`cannot build stream: %+v`, err))
	}

	if opts.metrics {
		stream.Router().Handle(`/metrics`, promhttp.Handler())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := stream.Start(ctx); err != nil {
		logger.DefaultLogger.Fatal(fmt.Sprintf(`stream failed: %+v`, err))
	}
}
