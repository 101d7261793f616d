package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// EmailNotifier talks to a Resend-style transactional email API: a single
// JSON POST with a bearer key.
type EmailNotifier struct {
	apiURL string
	apiKey string
	from   string
	client *http.Client
}

func NewEmailNotifier(apiURL, apiKey, from string) *EmailNotifier {
	return &EmailNotifier{
		apiURL: apiURL,
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

func (n *EmailNotifier) SendVerificationEmail(ctx context.Context, in SendVerificationEmailInput) error {
	body := emailRequest{
		From:    n.from,
		To:      []string{in.Email},
		Subject: "Verify your Forever Match account",
		HTML: fmt.Sprintf(
			`<p>Welcome to Forever Match!</p><p>Please confirm your email address by clicking the link below. The link is valid for 24 hours.</p><p><a href=%q>Verify my email</a></p>`,
			in.VerificationURL,
		),
	}

	payload, err := json.Marshal(body)

	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.apiURL, bytes.NewReader(payload))

	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+n.apiKey)

	resp, err := n.client.Do(req)

	if err != nil {
		return err
	}

	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		// keep the provider's explanation, truncated
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email provider returned %d: %s", resp.StatusCode, string(msg))
	}

	return nil
}
