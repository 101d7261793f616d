package notifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestEmailNotifier_Send(t *testing.T) {
	var got emailRequest
	var auth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")

		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("request body was not json: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewEmailNotifier(srv.URL, "secret-key", "Forever Match <hello@forevermatch.example>")

	err := n.SendVerificationEmail(context.Background(), SendVerificationEmailInput{
		Email:           "sam@example.com",
		VerificationURL: "http://localhost:8080/verify-email?token=abc",
	})

	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if auth != "Bearer secret-key" {
		t.Fatalf("authorization got %q", auth)
	}
	if len(got.To) != 1 || got.To[0] != "sam@example.com" {
		t.Fatalf("to got %v", got.To)
	}
	if got.From != "Forever Match <hello@forevermatch.example>" {
		t.Fatalf("from got %q", got.From)
	}
	if !strings.Contains(got.HTML, "http://localhost:8080/verify-email?token=abc") {
		t.Fatalf("html does not carry the verification link: %s", got.HTML)
	}
}

func TestEmailNotifier_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"invalid from address"}`))
	}))
	defer srv.Close()

	n := NewEmailNotifier(srv.URL, "secret-key", "bogus")

	err := n.SendVerificationEmail(context.Background(), SendVerificationEmailInput{Email: "sam@example.com"})

	if err == nil {
		t.Fatalf("expected an error for a 422 response")
	}
	if !strings.Contains(err.Error(), "422") || !strings.Contains(err.Error(), "invalid from address") {
		t.Fatalf("error does not carry the provider detail: %v", err)
	}
}
