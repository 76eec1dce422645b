package resend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pure-golang/webcore/mail"
)

type emailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

func TestSender_Send_Success(t *testing.T) {
	var got emailRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		auth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"49a3999c-0ce1-4ea6-ab68-afcd6dc2e794"}`))
	}))
	defer srv.Close()

	sender, err := NewSender(Config{APIKey: "re_key", From: "noreply@yourapp.com", BaseURL: srv.URL})
	require.NoError(t, err)

	err = sender.Send(context.Background(), mail.Message{
		To:      "user@example.com",
		Subject: "Reset Your Password",
		HTML:    "<p>html</p>",
		Text:    "text",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer re_key", auth)
	assert.Equal(t, "noreply@yourapp.com", got.From)
	assert.Equal(t, []string{"user@example.com"}, got.To)
	assert.Equal(t, "Reset Your Password", got.Subject)
	assert.Equal(t, "<p>html</p>", got.HTML)
	assert.Equal(t, "text", got.Text)
}

func TestSender_Send_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid from field"}`))
	}))
	defer srv.Close()

	sender, err := NewSender(Config{APIKey: "re_key", From: "bad", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	err = sender.Send(context.Background(), mail.Message{To: "user@example.com", Text: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to send email via resend")
}

func TestSender_Send_Validation(t *testing.T) {
	sender, err := NewSender(Config{From: "noreply@yourapp.com"})
	require.NoError(t, err)
	err = sender.Send(context.Background(), mail.Message{To: "user@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")

	sender, err = NewSender(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.ErrorIs(t, sender.Send(context.Background(), mail.Message{}), mail.ErrNoRecipient)
}

func TestNewSender_BaseURL(t *testing.T) {
	sender, err := NewSender(Config{BaseURL: "http://localhost:9000/api"})
	require.NoError(t, err)
	assert.Equal(t, "/api/", sender.baseURL.Path)

	sender, err = NewSender(Config{})
	require.NoError(t, err)
	assert.Nil(t, sender.baseURL)
	assert.NoError(t, sender.Close())

	_, err = NewSender(Config{BaseURL: "://bad"})
	assert.Error(t, err)
}
