package jobs

import (
	"errors"
	"testing"
	"time"
)

func TestEncodeDecodePayload(t *testing.T) {
	in := SendVerificationEmailPayload{
		UserID:          "user-1",
		Email:           "sam@example.com",
		VerificationURL: "http://localhost:8080/verify-email?token=abc",
		RequestID:       "req-1",
	}

	b, err := EncodePayload(JobSendVerificationEmail, in)

	if err != nil {
		t.Fatalf("EncodePayload failed: %v", err)
	}

	j, err := NewJob(JobSendVerificationEmail, b, time.Time{})

	if err != nil {
		t.Fatalf("NewJob failed: %v", err)
	}
	if j.ID == "" {
		t.Fatalf("NewJob produced an empty ID")
	}
	if j.MaxTries != 5 {
		t.Fatalf("maxTries got %d, want 5", j.MaxTries)
	}
	if j.RunAt.IsZero() {
		t.Fatalf("zero runAt was not defaulted")
	}

	out, err := DecodePayload(j)

	if err != nil {
		t.Fatalf("DecodePayload failed: %v", err)
	}

	p, ok := out.(SendVerificationEmailPayload)

	if !ok {
		t.Fatalf("decoded payload has type %T", out)
	}
	if p != in {
		t.Fatalf("round trip mismatch: got %+v, want %+v", p, in)
	}
}

func TestEncodePayload_TypeMismatch(t *testing.T) {
	_, err := EncodePayload(JobSendVerificationEmail, struct{ X int }{1})

	if !errors.Is(err, ErrPayloadTypeMismatch) {
		t.Fatalf("got %v, want ErrPayloadTypeMismatch", err)
	}
}

func TestEncodePayload_UnknownType(t *testing.T) {
	_, err := EncodePayload(JobType("mystery"), SendVerificationEmailPayload{})

	if !errors.Is(err, ErrInvalidJobType) {
		t.Fatalf("got %v, want ErrInvalidJobType", err)
	}
}

func TestDecodePayload_Invalid(t *testing.T) {
	j := Job{Type: JobSendVerificationEmail}

	if _, err := DecodePayload(j); !errors.Is(err, ErrInvalidJobPayload) {
		t.Fatalf("empty payload: got %v, want ErrInvalidJobPayload", err)
	}

	j.Payload = []byte("{not json")

	if _, err := DecodePayload(j); !errors.Is(err, ErrInvalidJobPayload) {
		t.Fatalf("bad json: got %v, want ErrInvalidJobPayload", err)
	}

	j.Type = JobType("mystery")
	j.Payload = []byte("{}")

	if _, err := DecodePayload(j); !errors.Is(err, ErrInvalidJobType) {
		t.Fatalf("unknown type: got %v, want ErrInvalidJobType", err)
	}
}
