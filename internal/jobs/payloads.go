package jobs

import "encoding/json"

// SendVerificationEmailPayload carries everything the worker needs to send
// the email without a DB round trip.
type SendVerificationEmailPayload struct {
	UserID          string `json:"userId"`
	Email           string `json:"email"`
	VerificationURL string `json:"verificationUrl"`
	RequestID       string `json:"requestId,omitempty"` // optional: correlation
}

func (p SendVerificationEmailPayload) JSON() (json.RawMessage, error) {
	b, err := json.Marshal(p)

	if err != nil {
		return nil, err
	}
	return json.RawMessage(b), nil
}
