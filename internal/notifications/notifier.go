package notifications

import "context"

type SendVerificationEmailInput struct {
	Email           string
	VerificationURL string
}

type Notifier interface {
	SendVerificationEmail(ctx context.Context, input SendVerificationEmailInput) error
}
