package queue

import (
	"context"
	"time"

	"github.com/forevermatch/api/internal/jobs"
	"github.com/forevermatch/api/internal/queue/redisclient"
)

// EmailProducer is the request-path side of the email pipeline: it only
// enqueues, it never sends or retries. Duplicate-send hazards live with
// the worker.
type EmailProducer struct {
	client *redisclient.Client
}

func NewEmailProducer(client *redisclient.Client) *EmailProducer {
	return &EmailProducer{client: client}
}

func (p *EmailProducer) DispatchVerificationEmail(ctx context.Context, payload jobs.SendVerificationEmailPayload) error {
	raw, err := jobs.EncodePayload(jobs.JobSendVerificationEmail, payload)

	if err != nil {
		return err
	}

	j, err := jobs.NewJob(jobs.JobSendVerificationEmail, raw, time.Time{})

	if err != nil {
		return err
	}

	return p.client.Enqueue(ctx, j)
}
