package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	inferrors "github.com/ahrav/go-recon/internal/inference/errors"
)

func TestPolicyDelay(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		err    error
		want   time.Duration
	}{
		{
			name:   "duration hint takes precedence",
			policy: NewPolicy(),
			err:    &inferrors.RateLimitError{Provider: "google", RetryHint: "12s"},
			want:   12 * time.Second,
		},
		{
			name:   "bare second count hint",
			policy: NewPolicy(),
			err:    &inferrors.RateLimitError{Provider: "google", RetryHint: "12"},
			want:   12 * time.Second,
		},
		{
			name:   "sub-second hint",
			policy: NewPolicy(),
			err:    &inferrors.RateLimitError{Provider: "google", RetryHint: "500ms"},
			want:   500 * time.Millisecond,
		},
		{
			name:   "absent hint uses default",
			policy: NewPolicy(),
			err:    &inferrors.RateLimitError{Provider: "google"},
			want:   DefaultDelay,
		},
		{
			name:   "unparsable hint uses default",
			policy: NewPolicy(),
			err:    &inferrors.RateLimitError{Provider: "google", RetryHint: "soon"},
			want:   DefaultDelay,
		},
		{
			name:   "negative hint uses default",
			policy: NewPolicy(),
			err:    &inferrors.RateLimitError{Provider: "google", RetryHint: "-5s"},
			want:   DefaultDelay,
		},
		{
			name:   "hint on provider error",
			policy: NewPolicy(),
			err: &inferrors.ProviderError{
				Provider:  "google",
				Type:      inferrors.ErrorTypeRateLimit,
				RetryHint: "3s",
			},
			want: 3 * time.Second,
		},
		{
			name:   "untyped error uses default",
			policy: NewPolicy(),
			err:    errors.New("429 too many requests"),
			want:   DefaultDelay,
		},
		{
			name:   "custom default applies without hint",
			policy: Policy{Default: 2 * time.Second},
			err:    &inferrors.RateLimitError{Provider: "google"},
			want:   2 * time.Second,
		},
		{
			name:   "hint overrides custom default",
			policy: Policy{Default: 2 * time.Second},
			err:    &inferrors.RateLimitError{Provider: "google", RetryHint: "12s"},
			want:   12 * time.Second,
		},
		{
			name:   "zero-value policy falls back to package default",
			policy: Policy{},
			err:    errors.New("rate limited"),
			want:   DefaultDelay,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Delay(tt.err))
		})
	}
}
