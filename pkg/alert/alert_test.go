package alert

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mousdieng/neo4flix/pkg/config"
)

type sent struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func testAlerter(cfg config.AlertConfig, sendErr error) (*EmailAlerter, *[]sent) {
	var log []sent
	a := NewEmailAlerter(cfg)
	a.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	a.send = func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
		log = append(log, sent{addr, auth, from, to, string(msg)})
		return sendErr
	}
	return a, &log
}

func TestNew(t *testing.T) {
	assert.IsType(t, NoOpAlerter{}, New(config.AlertConfig{}))
	assert.IsType(t, &EmailAlerter{}, New(config.AlertConfig{Enabled: true}))
	assert.NoError(t, NoOpAlerter{}.Alert(context.Background(), "s", "m"))
}

func TestEmailAlerter(t *testing.T) {
	cfg := config.AlertConfig{
		Enabled:  true,
		SMTPHost: "mail.local",
		SMTPPort: 587,
		Username: "ops",
		Password: "pw",
		From:     "neo4flix@local",
		To:       []string{"a@local", "b@local"},
	}

	t.Run("sends", func(t *testing.T) {
		a, log := testAlerter(cfg, nil)
		require.NoError(t, a.Alert(context.Background(), "Import failed\nBcc: x@evil", "line one\nline two"))
		require.Len(t, *log, 1)

		got := (*log)[0]
		assert.Equal(t, "mail.local:587", got.addr)
		assert.NotNil(t, got.auth)
		assert.Equal(t, "neo4flix@local", got.from)
		assert.Equal(t, cfg.To, got.to)
		assert.Contains(t, got.msg, "To: a@local,b@local\r\n")
		assert.Contains(t, got.msg, "Subject: [neo4flix] Import failed Bcc: x@evil\r\n")
		assert.Contains(t, got.msg, "Date: Fri, 01 Mar 2024 12:00:00 +0000\r\n")
		assert.True(t, strings.HasSuffix(got.msg, "\r\n\r\nline one\r\nline two\r\n"))
	})

	t.Run("anonymous", func(t *testing.T) {
		anon := cfg
		anon.Username = ""
		a, log := testAlerter(anon, nil)
		require.NoError(t, a.Alert(context.Background(), "s", "m"))
		assert.Nil(t, (*log)[0].auth)
	})

	t.Run("send error", func(t *testing.T) {
		a, _ := testAlerter(cfg, errors.New("connection refused"))
		err := a.Alert(context.Background(), "s", "m")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})

	t.Run("no recipients", func(t *testing.T) {
		none := cfg
		none.To = nil
		a, log := testAlerter(none, nil)
		assert.Error(t, a.Alert(context.Background(), "s", "m"))
		assert.Empty(t, *log)
	})

	t.Run("cancelled", func(t *testing.T) {
		a, log := testAlerter(cfg, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, a.Alert(ctx, "s", "m"), context.Canceled)
		assert.Empty(t, *log)
	})
}
