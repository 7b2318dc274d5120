package event

import (
	"fmt"
)

const (
	FieldUserId = `user_id`
	FieldName   = `name`
	FieldEvent  = `event`
	FieldType   = `type`
)

const (
	TypeCustomer = `customer`
	TypeOrder    = `order`
)

// Record is a decoded input message. Besides the well known fields it keeps every
// event specific field (order_id, amounts, ...) so order records can be re-emitted
// as they were received.
//
// Records are treated as immutable once they enter the join engine.
type Record map[string]interface{}

// UserId returns the join key. A missing or null user_id is reported as absent,
// non string values are rendered with their default format.
func (r Record) UserId() (string, bool) {
	v, ok := r[FieldUserId]
	if !ok || v == nil {
		return ``, false
	}

	return stringify(v), true
}

// Name returns the customer name carried by the record, if any.
func (r Record) Name() (string, bool) {
	v, ok := r[FieldName]
	if !ok || v == nil {
		return ``, false
	}

	return stringify(v), true
}

// EventType returns event.type. Records without an event object, or whose type
// is not a string, have no type.
func (r Record) EventType() (string, bool) {
	e, ok := r[FieldEvent].(map[string]interface{})
	if !ok {
		return ``, false
	}

	typ, ok := e[FieldType].(string)
	return typ, ok
}

// Clone returns a deep copy of the record
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}

	return cloneValue(map[string]interface{}(r)).(map[string]interface{})
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case Record:
		return Record(cloneValue(map[string]interface{}(val)).(map[string]interface{}))
	case map[string]interface{}:
		m := make(map[string]interface{}, len(val))
		for k, item := range val {
			m[k] = cloneValue(item)
		}
		return m
	case []interface{}:
		s := make([]interface{}, len(val))
		for i, item := range val {
			s[i] = cloneValue(item)
		}
		return s
	default:
		return val
	}
}

func stringify(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprint(v)
}
