package events

import (
	"encoding/json"
	"time"
)

// Mutation actions carried by entity events.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// EntityEvent announces a successful mutation of one entity. Consumers fetch
// the entity themselves if they need more than the id; the event is a
// notification, not a change feed.
type EntityEvent struct {
	Collection string    `json:"collection"` // expenses, partners or categories
	Action     string    `json:"action"`
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewEntityEvent(collection, action, id string) *EntityEvent {
	return &EntityEvent{
		Collection: collection,
		Action:     action,
		ID:         id,
		Timestamp:  time.Now(),
	}
}

func (e *EntityEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EntityEventFromJSON(data []byte) (*EntityEvent, error) {
	var e EntityEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
