package jobs

import (
	"time"

	"github.com/google/uuid"
)

// a Job is the envelope a queued unit of work travels in. Attempts is
// carried inside the envelope because the redis queue itself is just a
// list; the consumer re-enqueues with Attempts bumped.

type Job struct {
	ID        string    `json:"id"`
	Type      JobType   `json:"type"`
	Payload   []byte    `json:"payload"` // raw json
	Attempts  int       `json:"attempts"`
	MaxTries  int       `json:"maxTries"`
	RunAt     time.Time `json:"runAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// creation of a new job with defaults.

func NewJob(t JobType, payloadJSON []byte, runAt time.Time) (Job, error) {
	if !t.IsValid() {
		return Job{}, ErrInvalidJobType
	}

	now := time.Now().UTC()

	if runAt.IsZero() {
		runAt = now
	}

	j := Job{
		ID:        uuid.NewString(),
		Type:      t,
		Payload:   payloadJSON,
		Attempts:  0,
		MaxTries:  5,
		RunAt:     runAt,
		CreatedAt: now,
	}

	return j, nil
}
