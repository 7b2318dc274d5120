package kjoin

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
)

func printInfo(b *JoinBuilder) {
	writeInfo(os.Stdout, b.config)
}

func writeInfo(w io.Writer, c *JoinBuilderConfig) {
	data := [][]string{
		{"kjoin.ApplicationId", c.ApplicationId},
		{"kjoin.BootstrapServers", strings.Join(c.BootstrapServers, `, `)},
		{``, ``},
		{"kjoin.Source.Type", string(c.Source.Type)},
	}

	if c.Source.Type == SourceFile {
		data = append(data, []string{"kjoin.Source.File", c.Source.File})
	} else {
		data = append(data,
			[]string{"kjoin.Source.Topic", c.Source.Topic},
			[]string{"kjoin.Consumer.GroupId", c.ApplicationId},
			[]string{"kjoin.Consumer.OffsetBegin", c.Consumer.OffsetBegin.String()},
			[]string{"kjoin.Consumer.BufferSize", fmt.Sprint(c.Consumer.BufferSize)},
		)
	}

	data = append(data, []string{``, ``}, []string{"kjoin.Sink.Type", string(c.Sink.Type)})
	if c.Sink.Type == SinkKafka {
		data = append(data,
			[]string{"kjoin.Sink.Topic", c.Sink.Topic},
			[]string{"kjoin.Sink.NumPartitions", fmt.Sprint(c.Sink.NumPartitions)},
			[]string{"kjoin.Sink.ReplicationFactor", fmt.Sprint(c.Sink.ReplicationFactor)},
			[]string{"kjoin.Sink.Buffer.Size", fmt.Sprint(c.Sink.Buffer.Size)},
			[]string{"kjoin.Sink.Buffer.FlushInterval", c.Sink.Buffer.FlushInterval.String()},
			[]string{"kjoin.Producer.RequiredAcks", c.Producer.RequiredAcks.String()},
			[]string{"kjoin.Producer.Retry", fmt.Sprint(c.Producer.Retry)},
			[]string{"kjoin.Producer.RetryBackOff", c.Producer.RetryBackOff.String()},
		)
	}

	data = append(data,
		[]string{``, ``},
		[]string{"kjoin.WorkerPool.NumOfWorkers", fmt.Sprint(c.WorkerPool.NumOfWorkers)},
		[]string{"kjoin.WorkerPool.WorkerBufferSize", fmt.Sprint(c.WorkerPool.WorkerBufferSize)},
		[]string{"kjoin.WorkerPool.Order", c.WorkerPool.Order.String()},
		[]string{"kjoin.SnapshotBufferSize", fmt.Sprint(c.SnapshotBufferSize)},
		[]string{``, ``},
		[]string{"kjoin.Store.Name", c.Store.Name},
		[]string{"kjoin.Store.NumOfShards", fmt.Sprint(c.Store.NumOfShards)},
		[]string{"kjoin.Store.Http.Host", c.Store.Http.Host},
	)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Config", "Value"})

	for _, v := range data {
		table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT})
		table.Append(v)
	}
	table.Render()
}
