package consumer

import (
	"fmt"
	"time"

	"github.com/Shopify/sarama"
	"github.com/google/uuid"
	"github.com/pickme-go/k-join/data"
	"github.com/pickme-go/log/v2"
	"github.com/pickme-go/metrics/v2"
)

type groupHandler struct {
	records         chan<- *data.Record
	logger          log.Logger
	endToEndLatency metrics.Observer
}

func (h *groupHandler) Setup(session sarama.ConsumerGroupSession) error {
	h.logger.Info(fmt.Sprintf(`partitions assigned %v`, extractTps(session.Claims())))
	return nil
}

func (h *groupHandler) Cleanup(session sarama.ConsumerGroupSession) error {
	h.logger.Info(fmt.Sprintf(`partitions revoked %v`, extractTps(session.Claims())))
	return nil
}

// ConsumeClaim forwards messages and marks them as consumed once handed over.
// Delivery is at least once: offsets are committed by sarama's auto commit.
func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		record := toRecord(msg)

		t := time.Since(msg.Timestamp)
		h.endToEndLatency.Observe(float64(t.Nanoseconds()/1e3), map[string]string{
			`topic`:     msg.Topic,
			`partition`: fmt.Sprint(msg.Partition),
		})
		h.logger.Trace(fmt.Sprintf(`record received after %s for %s`, t, record))

		select {
		case h.records <- record:
			session.MarkMessage(msg, ``)
		case <-session.Context().Done():
			return nil
		}
	}

	return nil
}

func toRecord(msg *sarama.ConsumerMessage) *data.Record {
	return &data.Record{
		Key:       msg.Key,
		Value:     msg.Value,
		Offset:    msg.Offset,
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Timestamp: msg.Timestamp,
		UUID:      uuid.New(),
	}
}

func extractTps(kafkaTps map[string][]int32) []TopicPartition {
	tps := make([]TopicPartition, 0)
	for topic, partitions := range kafkaTps {
		for _, p := range partitions {
			tps = append(tps, TopicPartition{
				Topic:     topic,
				Partition: p,
			})
		}
	}
	return tps
}
