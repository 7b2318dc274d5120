package join

import (
	"context"
	"fmt"

	kContext "github.com/pickme-go/k-join/context"
	"github.com/pickme-go/k-join/event"
	"github.com/pickme-go/log/v2"
	"github.com/pickme-go/metrics/v2"
)

// KeyValidator drops records which cannot be joined because they carry no user_id
type KeyValidator struct {
	logger  log.Logger
	dropped metrics.Counter
}

func NewKeyValidator(logger log.Logger, reporter metrics.Reporter) *KeyValidator {
	return &KeyValidator{
		logger: logger,
		dropped: reporter.Counter(metrics.MetricConf{
			Path:   `k_join_engine_records_dropped`,
			Labels: []string{`reason`},
		}),
	}
}

func (v *KeyValidator) Valid(ctx context.Context, record event.Record) bool {
	if _, ok := record.UserId(); ok {
		return true
	}

	msg := `no user id detected`
	if meta := kContext.Meta(ctx); meta != nil {
		msg = fmt.Sprintf(`%s (%s[%d] at offset %d)`, msg, meta.Topic, meta.Partition, meta.Offset)
	}

	v.logger.WarnContext(ctx, msg)
	v.dropped.Count(1, map[string]string{`reason`: `missing_key`})

	return false
}

// KeyOf maps a valid record to its join key
func KeyOf(record event.Record) (string, event.Record) {
	key, _ := record.UserId()
	return key, record
}
