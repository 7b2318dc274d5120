package event

// Event is the discriminator object carried by records and snapshots
type Event struct {
	Type string `json:"type"`
}

// Snapshot is the joined view of an entity emitted after every accepted record.
// Its event type is always TypeCustomer, whatever the type of the record which
// produced it.
type Snapshot struct {
	UserId string   `json:"user_id"`
	Name   string   `json:"name"`
	Event  Event    `json:"event"`
	Orders []Record `json:"orders"`
}
