package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/couchcryptid/saferoute-scoring-service/internal/domain"
)

// EventSerializer implements Transformer by encoding route set events as
// JSON with routing headers.
type EventSerializer struct{}

// NewTransformer creates an EventSerializer.
func NewTransformer() *EventSerializer {
	return &EventSerializer{}
}

func (EventSerializer) Transform(_ context.Context, event domain.RouteSetScored) (domain.OutputEvent, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return domain.OutputEvent{}, fmt.Errorf("serialize route set event: %w", err)
	}
	return domain.OutputEvent{
		Key:   []byte(event.ID),
		Value: data,
		Headers: map[string]string{
			"hazard_source": event.HazardSource,
			"computed_at":   event.ComputedAt.Format(time.RFC3339),
		},
	}, nil
}
