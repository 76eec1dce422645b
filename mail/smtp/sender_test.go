package smtp

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pure-golang/webcore/mail"
)

func TestNewSender_DefaultTimeout(t *testing.T) {
	sender := NewSender(Config{Host: "localhost", Port: 2525})

	assert.Equal(t, "localhost", sender.cfg.Host)
	assert.Equal(t, 2525, sender.cfg.Port)
	assert.Equal(t, defaultTimeout, sender.cfg.Timeout)

	sender = NewSender(Config{Host: "localhost", Timeout: time.Second})
	assert.Equal(t, time.Second, sender.cfg.Timeout)
}

func TestSender_CloseTwice(t *testing.T) {
	sender := NewSender(Config{Host: "localhost", Port: 2525})

	assert.NoError(t, sender.Close())
	assert.NoError(t, sender.Close())
}

func TestSender_Send_WhenClosed(t *testing.T) {
	sender := NewSender(Config{Host: "localhost", Port: 2525, From: "sender@example.com"})
	require.NoError(t, sender.Close())

	err := sender.Send(context.Background(), mail.Message{To: "recipient@example.com", Text: "hi"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestSender_Send_NoFromAddress(t *testing.T) {
	sender := NewSender(Config{Host: "localhost", Port: 2525})

	err := sender.Send(context.Background(), mail.Message{To: "recipient@example.com"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no from address")
}

func TestSender_Send_NoRecipient(t *testing.T) {
	sender := NewSender(Config{Host: "localhost", Port: 2525, From: "sender@example.com"})

	err := sender.Send(context.Background(), mail.Message{Subject: "x"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, mail.ErrNoRecipient))
}

func TestSender_Send_InvalidRecipient(t *testing.T) {
	sender := NewSender(Config{Host: "localhost", Port: 2525, From: "sender@example.com"})

	err := sender.Send(context.Background(), mail.Message{To: "not an address"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipient")
}

func TestSender_BuildMessage(t *testing.T) {
	tests := []struct {
		name     string
		msg      mail.Message
		contains []string
		missing  []string
	}{
		{
			name:     "text and html",
			msg:      mail.Message{To: "user@example.com", Subject: "Both", Text: "plain body", HTML: "<p>html body</p>"},
			contains: []string{"Subject: Both", "user@example.com", "multipart/alternative", "text/plain", "text/html", "plain body", "<p>html body</p>"},
		},
		{
			name:     "html only",
			msg:      mail.Message{To: "user@example.com", Subject: "Html", HTML: "<p>only html</p>"},
			contains: []string{"text/html", "<p>only html</p>"},
			missing:  []string{"multipart/alternative"},
		},
		{
			name:     "text only",
			msg:      mail.Message{To: "user@example.com", Subject: "Text", Text: "only text"},
			contains: []string{"text/plain", "only text"},
			missing:  []string{"text/html"},
		},
	}

	sender := NewSender(Config{Host: "localhost", From: "App <noreply@yourapp.com>"})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := sender.buildMessage(tt.msg)
			require.NoError(t, err)

			var buf bytes.Buffer
			_, err = m.WriteTo(&buf)
			require.NoError(t, err)

			raw := buf.String()
			assert.Contains(t, raw, "noreply@yourapp.com")
			for _, s := range tt.contains {
				assert.Contains(t, raw, s)
			}
			for _, s := range tt.missing {
				assert.NotContains(t, raw, s)
			}
		})
	}
}

func TestSender_ClientOptions(t *testing.T) {
	assert.Len(t, NewSender(Config{Host: "h"}).clientOptions(), 4)
	assert.Len(t, NewSender(Config{Host: "h", Secure: true}).clientOptions(), 4)
	assert.Len(t, NewSender(Config{Host: "h", Username: "u", Password: "p"}).clientOptions(), 7)
}
