package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwilioSend(t *testing.T) {
	var got struct {
		path string
		to   string
		from string
		body string
		user string
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got.path = r.URL.Path
		got.to = r.PostForm.Get("To")
		got.from = r.PostForm.Get("From")
		got.body = r.PostForm.Get("Body")
		got.user, _, _ = r.BasicAuth()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM123"}`))
	}))
	defer server.Close()

	c := NewTwilioClient("AC123", "token", "+15550001111")
	c.baseURL = server.URL

	err := c.Send(context.Background(), "+919876543210", "hello")
	require.NoError(t, err)
	assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", got.path)
	assert.Equal(t, "+919876543210", got.to)
	assert.Equal(t, "+15550001111", got.from)
	assert.Equal(t, "hello", got.body)
	assert.Equal(t, "AC123", got.user)
}

func TestTwilioSendErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' phone number"}`))
	}))
	defer server.Close()

	c := NewTwilioClient("AC123", "token", "+15550001111")
	c.baseURL = server.URL

	err := c.Send(context.Background(), "bad", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "21211")
}

func TestMaskRecipient(t *testing.T) {
	assert.Equal(t, "*********3210", maskRecipient("+919876543210"))
	assert.Equal(t, "+91", maskRecipient("+91"))
}
