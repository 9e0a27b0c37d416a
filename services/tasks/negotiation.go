package tasks

import (
	"encoding/json"
	"time"

	"chefdispatch/models"

	"github.com/hibiken/asynq"
)

const TypeNegotiationExpire = "negotiation:expire"

// NewNegotiationExpiryTask builds the deferred task that closes a
// negotiation at its deadline if the customer never responded.
func NewNegotiationExpiryTask(payload models.NegotiationExpiryPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeNegotiationExpire, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}
