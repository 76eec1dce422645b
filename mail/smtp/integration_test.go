//go:build integration
// +build integration

package smtp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pure-golang/webcore/mail"
)

type mailhog struct {
	smtpHost string
	smtpPort int
	apiURL   string
}

// startMailHog runs MailHog: SMTP on 1025, captured messages on the 8025 API.
func startMailHog(t *testing.T) mailhog {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mailhog/mailhog:latest",
			ExposedPorts: []string{"1025/tcp", "8025/tcp"},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("1025/tcp"),
				wait.ForHTTP("/api/v2/messages").WithPort("8025/tcp"),
			),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := c.Terminate(ctx); err != nil {
			t.Logf("failed to terminate mailhog: %v", err)
		}
	})

	host, err := c.Host(ctx)
	require.NoError(t, err)
	smtpPort, err := c.MappedPort(ctx, "1025")
	require.NoError(t, err)
	apiPort, err := c.MappedPort(ctx, "8025")
	require.NoError(t, err)
	port, err := strconv.Atoi(smtpPort.Port())
	require.NoError(t, err)

	return mailhog{
		smtpHost: host,
		smtpPort: port,
		apiURL:   fmt.Sprintf("http://%s:%s", host, apiPort.Port()),
	}
}

type capturedMessages struct {
	Total int `json:"total"`
	Items []struct {
		Raw struct {
			From string   `json:"From"`
			To   []string `json:"To"`
			Data string   `json:"Data"`
		} `json:"Raw"`
	} `json:"items"`
}

func (m mailhog) messages(t *testing.T) capturedMessages {
	resp, err := http.Get(m.apiURL + "/api/v2/messages")
	require.NoError(t, err)
	defer resp.Body.Close()

	var out capturedMessages
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestSender_Integration_DeliversMultipart(t *testing.T) {
	hog := startMailHog(t)

	sender := NewSender(Config{
		Host:    hog.smtpHost,
		Port:    hog.smtpPort,
		From:    "App <noreply@yourapp.com>",
		Timeout: 10 * time.Second,
	})
	defer sender.Close()

	err := sender.Send(context.Background(), mail.Message{
		To:      "user@example.com",
		Subject: "Reset Your Password",
		Text:    "open https://app.test/reset?token=abc",
		HTML:    `<a href="https://app.test/reset?token=abc">Reset</a>`,
	})
	require.NoError(t, err)

	var got capturedMessages
	require.Eventually(t, func() bool {
		got = hog.messages(t)
		return got.Total == 1
	}, 5*time.Second, 100*time.Millisecond)

	raw := got.Items[0].Raw
	assert.Equal(t, "noreply@yourapp.com", raw.From)
	assert.Equal(t, []string{"user@example.com"}, raw.To)
	assert.Contains(t, raw.Data, "Subject: Reset Your Password")
	assert.True(t, strings.Contains(raw.Data, "text/plain") && strings.Contains(raw.Data, "text/html"))
}
