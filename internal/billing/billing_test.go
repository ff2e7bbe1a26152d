package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{"fully configured", Config{SecretKey: "sk_test_x", WebhookSecret: "whsec_x"}, true},
		{"missing webhook secret", Config{SecretKey: "sk_test_x"}, false},
		{"missing secret key", Config{WebhookSecret: "whsec_x"}, false},
		{"unconfigured", Config{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewService(tt.cfg).Enabled())
		})
	}
}

func TestCreateCheckout_RejectsNonPositiveCredits(t *testing.T) {
	svc := NewService(Config{SecretKey: "sk_test_x", WebhookSecret: "whsec_x"})

	_, err := svc.CreateCheckout("user-1", 0)
	require.Error(t, err)

	_, err = svc.CreateCheckout("user-1", -5)
	require.Error(t, err)
}

func TestParseWebhook_RejectsBadSignature(t *testing.T) {
	svc := NewService(Config{SecretKey: "sk_test_x", WebhookSecret: "whsec_x"})

	_, err := svc.ParseWebhook([]byte(`{}`), "bogus")
	require.Error(t, err)
}
