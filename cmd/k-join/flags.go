package main

import (
	"flag"
	"strings"

	kjoin "github.com/pickme-go/k-join"
)

type options struct {
	logLevel  string
	logColors bool
	metrics   bool
}

// parseFlags overrides config with command line flags. Flag defaults are the
// current config values so flags take precedence over the environment.
func parseFlags(fs *flag.FlagSet, args []string, config *kjoin.JoinBuilderConfig) (options, error) {
	opts := options{}

	var sourceType, sinkType, brokers string

	fs.StringVar(&config.ApplicationId, `app-id`, config.ApplicationId, `application id, also the consumer group id`)
	fs.StringVar(&brokers, `brokers`, strings.Join(config.BootstrapServers, `,`), `comma separated kafka brokers`)
	fs.StringVar(&sourceType, `source`, string(config.Source.Type), `input source (file|kafka)`)
	fs.StringVar(&config.Source.File, `file`, config.Source.File, `newline delimited json input file`)
	fs.StringVar(&config.Source.Topic, `input-topic`, config.Source.Topic, `kafka input topic`)
	fs.StringVar(&sinkType, `sink`, string(config.Sink.Type), `snapshot sink (writer|kafka)`)
	fs.StringVar(&config.Sink.Topic, `output-topic`, config.Sink.Topic, `kafka snapshot topic`)
	fs.StringVar(&config.Store.Http.Host, `http`, config.Store.Http.Host, `query server address, disabled when empty`)
	fs.IntVar(&config.WorkerPool.NumOfWorkers, `workers`, config.WorkerPool.NumOfWorkers, `number of join workers`)
	fs.IntVar(&config.WorkerPool.WorkerBufferSize, `worker-buffer`, config.WorkerPool.WorkerBufferSize, `per worker task buffer`)
	fs.StringVar(&opts.logLevel, `log-level`, `INFO`, `log level`)
	fs.BoolVar(&opts.logColors, `log-colors`, false, `colored log output`)
	fs.BoolVar(&opts.metrics, `metrics`, true, `report prometheus metrics on /metrics`)

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	config.Source.Type = kjoin.SourceType(sourceType)
	config.Sink.Type = kjoin.SinkType(sinkType)
	config.BootstrapServers = nil
	for _, b := range strings.Split(brokers, `,`) {
		if b = strings.TrimSpace(b); b != `` {
			config.BootstrapServers = append(config.BootstrapServers, b)
		}
	}

	return opts, nil
}
