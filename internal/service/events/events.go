// Package events encodes note lifecycle events for the message broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/kotche/notekeeper/internal/model"
	"github.com/kotche/notekeeper/internal/service/kafka"
	"strconv"
)

type Publisher struct {
	broker kafka.Publisher
}

func NewPublisher(broker kafka.Publisher) *Publisher {
	return &Publisher{broker: broker}
}

// Publish keys messages by owner so one user's events stay ordered on a partition.
func (p *Publisher) Publish(ctx context.Context, event model.NoteEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.Type, err)
	}
	return p.broker.SendMessage(ctx, []byte(strconv.FormatInt(int64(event.OwnerID), 10)), value)
}

func Decode(value []byte) (model.NoteEvent, error) {
	var event model.NoteEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return model.NoteEvent{}, fmt.Errorf("failed to decode note event: %w", err)
	}
	if event.Type == "" || event.NoteID == 0 {
		return model.NoteEvent{}, fmt.Errorf("incomplete note event: %q", value)
	}
	return event, nil
}
