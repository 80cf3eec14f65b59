package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sender delivers one SMS message. Implementations must return an error on
// any delivery failure so callers can avoid persisting state for undelivered
// messages.
type Sender interface {
	Send(ctx context.Context, to, body string) error
}

// TwilioClient sends SMS through the Twilio Messages API.
type TwilioClient struct {
	accountSID string
	authToken  string
	from       string
	httpClient *http.Client
	baseURL    string
}

// NewTwilioClient creates a Twilio-backed Sender.
func NewTwilioClient(accountSID, authToken, from string) *TwilioClient {
	return &TwilioClient{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://api.twilio.com",
	}
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Send posts the message and treats any non-2xx response as a delivery
// failure.
func (c *TwilioClient) Send(ctx context.Context, to, body string) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)

	form := url.Values{
		"To":   {to},
		"From": {c.from},
		"Body": {body},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	raw, _ := io.ReadAll(resp.Body)
	var terr twilioError
	if json.Unmarshal(raw, &terr) == nil && terr.Message != "" {
		return fmt.Errorf("twilio error %d: %s", terr.Code, terr.Message)
	}
	return fmt.Errorf("twilio returned status %d", resp.StatusCode)
}

// DryRunSender logs instead of delivering. Used in local development and
// whenever Twilio credentials are absent.
type DryRunSender struct{}

func (DryRunSender) Send(_ context.Context, to, body string) error {
	log.Printf("[sms][dry-run] to=%s body=%q", maskRecipient(to), body)
	return nil
}

func maskRecipient(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
