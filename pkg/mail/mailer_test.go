package mail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendWhenDisabled(t *testing.T) {
	mailer, err := NewSMTPMailer(SMTPSettings{Enabled: false})
	require.NoError(t, err)

	err = mailer.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "hi"})
	require.ErrorIs(t, err, ErrSMTPDisabled)
}

func TestNewSMTPMailerRequiresHostWhenEnabled(t *testing.T) {
	_, err := NewSMTPMailer(SMTPSettings{Enabled: true})
	require.Error(t, err)
}

func TestOTPMessageContent(t *testing.T) {
	msg := OTPMessage("user@example.com", "1234", 5)

	require.Equal(t, []string{"user@example.com"}, msg.To)
	require.Contains(t, msg.Subject, "verification code")
	require.Contains(t, msg.Body, "1234")
	require.Contains(t, msg.Body, "5 minutes")
}
