package email

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/eats-api/internal/config"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestService(t *testing.T, host string) (*Service, *capturedMail) {
	t.Helper()

	svc, err := NewService(config.EmailConfig{
		SMTPHost:    host,
		SMTPPort:    "2525",
		FromEmail:   "noreply@eats.test",
		FrontendURL: "https://eats.test",
	})
	require.NoError(t, err)

	captured := &capturedMail{}
	svc.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		captured.addr = addr
		captured.from = from
		captured.to = to
		captured.msg = string(msg)
		return nil
	}
	return svc, captured
}

func TestSendVerificationEmail(t *testing.T) {
	svc, captured := newTestService(t, "smtp.eats.test")

	err := svc.SendVerificationEmail(context.Background(), "a@x.com", "code 1")
	require.NoError(t, err)

	assert.Equal(t, "smtp.eats.test:2525", captured.addr)
	assert.Equal(t, "noreply@eats.test", captured.from)
	assert.Equal(t, []string{"a@x.com"}, captured.to)
	assert.Contains(t, captured.msg, "Subject: Verify your email address\r\n")
	assert.Contains(t, captured.msg, "code 1")
	assert.Contains(t, captured.msg, "https://eats.test/verify?code=code&#43;1")
}

func TestSendVerificationEmailEscapesInput(t *testing.T) {
	svc, captured := newTestService(t, "smtp.eats.test")

	require.NoError(t, svc.SendVerificationEmail(context.Background(), "<b>@x.com", "<script>"))
	assert.False(t, strings.Contains(captured.msg, "<script>"))
	assert.Contains(t, captured.msg, "&lt;script&gt;")
}

func TestSendVerificationEmailDisabled(t *testing.T) {
	svc, _ := newTestService(t, "")
	err := svc.SendVerificationEmail(context.Background(), "a@x.com", "c")
	require.ErrorIs(t, err, ErrDisabled)
}

func TestSendVerificationEmailFailure(t *testing.T) {
	svc, _ := newTestService(t, "smtp.eats.test")
	svc.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("connection refused")
	}

	err := svc.SendVerificationEmail(context.Background(), "a@x.com", "c")
	require.ErrorContains(t, err, "connection refused")
}

func TestSendVerificationEmailHonoursDeadline(t *testing.T) {
	svc, _ := newTestService(t, "smtp.eats.test")
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	svc.send = func(string, smtp.Auth, string, []string, []byte) error {
		<-release
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := svc.SendVerificationEmail(ctx, "a@x.com", "c")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
