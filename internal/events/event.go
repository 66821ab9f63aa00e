// Package events carries document changes from the store to the reactive
// components that keep derived data consistent.
package events

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/anonto42/socialape/backend/internal/store"
	"github.com/pkg/errors"
)

type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpDeleted Op = "deleted"
)

// ChangeEvent describes one committed write. Before is empty for creates and
// After is empty for deletes.
type ChangeEvent struct {
	Collection string       `json:"collection"`
	Op         Op           `json:"op"`
	ID         string       `json:"id"`
	Before     store.Fields `json:"before,omitempty"`
	After      store.Fields `json:"after,omitempty"`
	At         time.Time    `json:"at"`
}

// Topic is the bus topic changes of op on collection are published to.
func Topic(collection string, op Op) string {
	return collection + "." + string(op)
}

func (e ChangeEvent) Topic() string {
	return Topic(e.Collection, e.Op)
}

// Message encodes the event as a watermill message.
func (e ChangeEvent) Message() (*message.Message, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, "encode change event")
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("collection", e.Collection)
	msg.Metadata.Set("op", string(e.Op))
	msg.Metadata.Set("id", e.ID)
	return msg, nil
}

// Decode reads an event back from a message. Numbers are kept as
// json.Number so integer fields survive the trip.
func Decode(msg *message.Message) (ChangeEvent, error) {
	var e ChangeEvent
	dec := json.NewDecoder(bytes.NewReader(msg.Payload))
	dec.UseNumber()
	if err := dec.Decode(&e); err != nil {
		return ChangeEvent{}, errors.Wrap(err, "decode change event")
	}
	return e, nil
}
