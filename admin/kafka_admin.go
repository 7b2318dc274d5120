/**
 * Copyright 2018 PickMe (Digital Mobility Solutions Lanka (PVT) Ltd).
 * All rights reserved.
 * Authors:
 *    Gayan Yapa (gayan@pickme.lk)
 */

package admin

import (
	"fmt"

	"github.com/Shopify/sarama"
	"github.com/pickme-go/errors"
	"github.com/pickme-go/log/v2"
)

type Topic struct {
	Name              string
	NumPartitions     int32
	ReplicationFactor int16
	ConfigEntries     map[string]string
	Error             error
}

type KafkaAdmin interface {
	FetchInfo(topics []string) (map[string]*Topic, error)
	CreateTopics(topics map[string]*Topic) error
	DeleteTopics(topics []string) (map[string]error, error)
	Close()
}

type KafkaAdminConfig struct {
	BootstrapServers []string
	KafkaVersion     sarama.KafkaVersion
	Logger           log.Logger
}

type kafkaAdmin struct {
	admin  sarama.ClusterAdmin
	logger log.Logger
}

func NewKafkaAdmin(config *KafkaAdminConfig) (KafkaAdmin, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = config.KafkaVersion
	admin, err := sarama.NewClusterAdmin(config.BootstrapServers, saramaConfig)
	if err != nil {
		return nil, errors.WithPrevious(err, `cannot initiate cluster admin`)
	}

	return &kafkaAdmin{
		admin:  admin,
		logger: config.Logger.NewLog(log.Prefixed(`kafka-admin`)),
	}, nil
}

func (c *kafkaAdmin) FetchInfo(topics []string) (map[string]*Topic, error) {
	res, err := c.admin.DescribeTopics(topics)
	if err != nil {
		return nil, errors.WithPrevious(err, `cannot get metadata`)
	}

	topicInfo := make(map[string]*Topic)
	for _, tp := range res {
		topicInfo[tp.Name] = &Topic{
			Name:          tp.Name,
			NumPartitions: int32(len(tp.Partitions)),
		}
		if tp.Err != sarama.ErrNoError {
			topicInfo[tp.Name].Error = tp.Err
		}
	}

	return topicInfo, nil
}

func (c *kafkaAdmin) CreateTopics(topics map[string]*Topic) error {
	for name, info := range topics {
		details := &sarama.TopicDetail{
			NumPartitions:     info.NumPartitions,
			ReplicationFactor: info.ReplicationFactor,
			ConfigEntries:     map[string]*string{},
		}
		for k, v := range info.ConfigEntries {
			v := v
			details.ConfigEntries[k] = &v
		}

		err := c.admin.CreateTopic(name, details, false)
		if err != nil {
			if e, ok := err.(*sarama.TopicError); ok && e.Err == sarama.ErrTopicAlreadyExists {
				c.logger.Warn(fmt.Sprintf(`topic %s already exists`, name))
				continue
			}
			return errors.WithPrevious(err, fmt.Sprintf(`could not create topic %s`, name))
		}

		c.logger.Info(fmt.Sprintf(`topic %s created with %d partitions`, name, info.NumPartitions))
	}

	return nil
}

func (c *kafkaAdmin) DeleteTopics(topics []string) (map[string]error, error) {
	errs := make(map[string]error)
	for _, tp := range topics {
		if err := c.admin.DeleteTopic(tp); err != nil {
			errs[tp] = err
		}
	}

	if len(errs) > 0 {
		return errs, errors.New(`cannot delete topics`)
	}

	c.logger.Info(fmt.Sprintf(`topics %v deleted`, topics))

	return errs, nil
}

func (c *kafkaAdmin) Close() {
	if err := c.admin.Close(); err != nil {
		c.logger.Warn(fmt.Sprintf(`kafka admin cannot be closed due to %+v`, err))
	}
}

// EnsureTopics creates every topic not yet known to the cluster. Existing topics
// are left untouched.
func EnsureTopics(admin KafkaAdmin, topics map[string]*Topic) error {
	names := make([]string, 0, len(topics))
	for name := range topics {
		names = append(names, name)
	}

	info, err := admin.FetchInfo(names)
	if err != nil {
		return errors.WithPrevious(err, `cannot fetch topic info`)
	}

	missing := make(map[string]*Topic)
	for name, tp := range topics {
		existing, ok := info[name]
		if ok && existing.Error == nil {
			continue
		}
		missing[name] = tp
	}

	if len(missing) < 1 {
		return nil
	}

	return admin.CreateTopics(missing)
}
