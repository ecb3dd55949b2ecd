package smtp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailroom/pkg/mailer"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		s, err := New(Config{Host: "smtp.example.com", Port: 587}, nil)
		require.NoError(t, err)
		require.NotNil(t, s)
	})

	t.Run("missing host", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{Port: 587}, nil)
		require.ErrorIs(t, err, mailer.ErrInvalidConfig)
	})

	t.Run("port out of range", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{Host: "smtp.example.com", Port: 0}, nil)
		require.ErrorIs(t, err, mailer.ErrInvalidConfig)

		_, err = New(Config{Host: "smtp.example.com", Port: 70000}, nil)
		require.ErrorIs(t, err, mailer.ErrInvalidConfig)
	})

	t.Run("strips quote artifacts", func(t *testing.T) {
		t.Parallel()
		s, err := New(Config{Host: `"smtp.example.com"`, Port: 587, Username: "'user'"}, nil)
		require.NoError(t, err)
		assert.Equal(t, "smtp.example.com", s.config.Host)
		assert.Equal(t, "user", s.config.Username)
	})

	t.Run("quoted-only host is empty", func(t *testing.T) {
		t.Parallel()
		_, err := New(Config{Host: `""`, Port: 587}, nil)
		require.ErrorIs(t, err, mailer.ErrInvalidConfig)
	})
}

func TestMustNew_PanicsOnInvalidConfig(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		MustNew(Config{}, nil)
	})
}

func TestSender_Send_NoRecipients(t *testing.T) {
	t.Parallel()

	s, err := New(Config{Host: "smtp.example.com", Port: 587}, nil)
	require.NoError(t, err)

	err = s.Send(context.Background(), &mailer.Email{
		Subject: "x",
		HTML:    "<p>x</p>",
		From:    "a@x.com",
	})
	require.ErrorIs(t, err, mailer.ErrNoRecipient)
}

func TestSender_Send_CancelledContext(t *testing.T) {
	t.Parallel()

	s, err := New(Config{Host: "smtp.example.com", Port: 587}, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.Send(ctx, &mailer.Email{
		Subject: "x",
		HTML:    "<p>x</p>",
		From:    "a@x.com",
		To:      []string{"b@x.com"},
	})
	require.ErrorIs(t, err, mailer.ErrSendFailed)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSender_Send_ConnectionRefused(t *testing.T) {
	t.Parallel()

	// Port 1 on localhost is expected to refuse connections.
	s, err := New(Config{Host: "127.0.0.1", Port: 1, Timeout: time.Second}, nil)
	require.NoError(t, err)

	err = s.Send(context.Background(), &mailer.Email{
		Subject: "x",
		HTML:    "<p>x</p>",
		From:    "a@x.com",
		To:      []string{"b@x.com"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect")
}
