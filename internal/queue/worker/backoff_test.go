package worker

import (
	"testing"
	"time"
)

func TestRetryBackoff_Growth(t *testing.T) {
	jitter := 250 * time.Millisecond

	cases := []struct {
		attempt int
		base    time.Duration
	}{
		{0, 2 * time.Second},
		{1, 4 * time.Second},
		{2, 8 * time.Second},
		{3, 16 * time.Second},
	}

	for _, tc := range cases {
		got := RetryBackoff(tc.attempt)

		if got < tc.base || got >= tc.base+jitter {
			t.Fatalf("RetryBackoff(%d) = %v, want in [%v, %v)", tc.attempt, got, tc.base, tc.base+jitter)
		}
	}
}

func TestRetryBackoff_Cap(t *testing.T) {
	capDelay := 5 * time.Minute
	jitter := 250 * time.Millisecond

	for _, attempt := range []int{10, 20, 60} {
		got := RetryBackoff(attempt)

		if got < capDelay || got >= capDelay+jitter {
			t.Fatalf("RetryBackoff(%d) = %v, want in [%v, %v)", attempt, got, capDelay, capDelay+jitter)
		}
	}
}
