package notifications

import (
	"context"

	"github.com/forevermatch/api/internal/jobs"
)

// DirectDispatcher sends the verification email inline, for deployments
// without redis. Same contract as the queue producer.
type DirectDispatcher struct {
	notifier Notifier
}

func NewDirectDispatcher(notifier Notifier) *DirectDispatcher {
	return &DirectDispatcher{notifier: notifier}
}

func (d *DirectDispatcher) DispatchVerificationEmail(ctx context.Context, p jobs.SendVerificationEmailPayload) error {
	return d.notifier.SendVerificationEmail(ctx, SendVerificationEmailInput{
		Email:           p.Email,
		VerificationURL: p.VerificationURL,
	})
}
