package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/telelbirds/internal/config"
)

func TestBuild(t *testing.T) {
	e := build(Message{
		From:    "support@telelbirds.com",
		To:      []string{"support@telelbirds.com"},
		Subject: "[Help] Broken incubator ",
		Body:    "Sent By: ada@example.com (ada)\n\nIt is cold.",
	})

	raw, err := e.Bytes()
	require.NoError(t, err)

	assert.Contains(t, string(raw), "Subject: [Help] Broken incubator")
	assert.Contains(t, string(raw), "To: support@telelbirds.com")
	assert.Contains(t, string(raw), "It is cold.")
}

func TestSendWithoutHost(t *testing.T) {
	m := NewMailer(config.SMTPConfig{Port: 587})
	assert.ErrorIs(t, m.Send(Message{Subject: "x"}), ErrNotConfigured)
}
