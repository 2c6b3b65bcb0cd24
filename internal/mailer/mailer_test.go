package mailer

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sheetcli/internal/errors"
)

func validMessage() Message {
	return Message{
		Host: "smtp.example.com",
		Port: 587,
		From: "sender@example.com",
		To:   []string{"one@example.com", "two@example.com"},
		Body: "    Name\n0  alpha",
	}
}

func TestSMTPSender_Validation(t *testing.T) {
	sender := NewSMTPSender(time.Second, nil)

	tests := []struct {
		name     string
		mutate   func(*Message)
		password string
	}{
		{"missing host", func(m *Message) { m.Host = "" }, "secret"},
		{"bad sender", func(m *Message) { m.From = "not-an-address" }, "secret"},
		{"no recipients", func(m *Message) { m.To = nil }, "secret"},
		{"bad recipient", func(m *Message) { m.To = []string{"ok@example.com", "nope"} }, "secret"},
		{"bad port", func(m *Message) { m.Port = 70000 }, "secret"},
		{"empty password", func(m *Message) {}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validMessage()
			tt.mutate(&msg)

			err := sender.Send(context.Background(), msg, tt.password)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeEmail))
		})
	}
}

func TestSMTPSender_ConnectionFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	msg := validMessage()
	msg.Host = "localhost"
	msg.Port = port

	err = NewSMTPSender(2*time.Second, nil).Send(context.Background(), msg, "secret")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeEmail))
	assert.Contains(t, apperrors.UserMessage(err), "failed to send email")
}

func TestBuildMessage(t *testing.T) {
	msg := validMessage()
	msg.Subject = "Excel Data"

	m, err := buildMessage(msg)
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)

	raw := buf.String()
	assert.Contains(t, raw, "Subject: Excel Data")
	assert.Contains(t, raw, "<sender@example.com>")
	assert.Contains(t, raw, "<one@example.com>")
	assert.Contains(t, raw, "<two@example.com>")
	assert.Contains(t, raw, "text/plain")
	assert.Contains(t, raw, "0  alpha")
}

func TestParseRecipients(t *testing.T) {
	assert.Equal(t, []string{"a@x.io", "b@x.io", "c@x.io"}, ParseRecipients(" a@x.io, b@x.io;c@x.io ,"))
	assert.Empty(t, ParseRecipients(""))
}
