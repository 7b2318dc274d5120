package join

import (
	"context"
	"fmt"

	"github.com/pickme-go/k-join/event"
	"github.com/pickme-go/log/v2"
	"github.com/pickme-go/metrics/v2"
)

// Outcome tells what a record did to the state it was applied to
type Outcome int

const (
	OutcomeNameUpdated Outcome = iota
	OutcomeNameUnchanged
	OutcomeOrderAppended
	OutcomeUnknownType
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNameUpdated:
		return `NameUpdated`
	case OutcomeNameUnchanged:
		return `NameUnchanged`
	case OutcomeOrderAppended:
		return `OrderAppended`
	default:
		return `UnknownType`
	}
}

// Apply is the state transition of the join. It dispatches on event.type:
//
//	customer: replaces the name when the record carries a non null one
//	order:    appends the whole record to the order history
//	other:    leaves the state as it is
//
// A snapshot of the resulting state is returned in every case.
func Apply(state EntityState, record event.Record) (EntityState, event.Snapshot, Outcome) {
	var outcome Outcome
	typ, _ := record.EventType()

	switch typ {
	case event.TypeCustomer:
		if name, ok := record.Name(); ok {
			state = state.withName(name)
			outcome = OutcomeNameUpdated
			break
		}
		state = state.touched()
		outcome = OutcomeNameUnchanged

	case event.TypeOrder:
		state = state.withOrder(record.Clone())
		outcome = OutcomeOrderAppended

	default:
		state = state.touched()
		outcome = OutcomeUnknownType
	}

	return state, state.Snapshot(), outcome
}

// UpdateRule applies records to states and reports records of unknown types
type UpdateRule struct {
	logger       log.Logger
	unknownTypes metrics.Counter
}

func NewUpdateRule(logger log.Logger, reporter metrics.Reporter) *UpdateRule {
	return &UpdateRule{
		logger: logger,
		unknownTypes: reporter.Counter(metrics.MetricConf{
			Path:   `k_join_engine_unknown_event_types`,
			Labels: []string{`type`},
		}),
	}
}

func (u *UpdateRule) Update(ctx context.Context, state EntityState, record event.Record) (EntityState, event.Snapshot) {
	next, snapshot, outcome := Apply(state, record)
	if outcome == OutcomeUnknownType {
		typ, ok := record.EventType()
		if !ok {
			typ = `<missing>`
		}

		u.logger.WarnContext(ctx, fmt.Sprintf(`unknown event type: %s (user_id: %s)`, typ, state.UserId))
		u.unknownTypes.Count(1, map[string]string{`type`: typ})
	}

	return next, snapshot
}
