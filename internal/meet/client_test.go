package meet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticToken(context.Context) (string, error) { return "test-token", nil }

func newTestClient(baseURL string) *Client {
	c := NewClient(staticToken)
	c.baseURL = baseURL
	return c
}

func TestMeetCodeFromLink(t *testing.T) {
	assert.Equal(t, "abc-defg-hij", meetCodeFromLink("https://meet.google.com/abc-defg-hij"))
	assert.Equal(t, "abc-defg-hij", meetCodeFromLink("https://meet.google.com/abc-defg-hij/"))
	assert.Equal(t, "abc-defg-hij", meetCodeFromLink("abc-defg-hij"))
}

func TestFetchJoinsEntries(t *testing.T) {
	start := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("/conferenceRecords", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Contains(t, r.URL.Query().Get("filter"), "abc-defg-hij")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"conferenceRecords": []map[string]any{
				// An unrelated earlier call for the same meeting code.
				{"name": "conferenceRecords/old", "startTime": start.Add(-48 * time.Hour), "endTime": start.Add(-47 * time.Hour)},
				{"name": "conferenceRecords/rec1", "startTime": start.Add(2 * time.Minute), "endTime": end.Add(-2 * time.Minute)},
			},
		})
	})
	mux.HandleFunc("/conferenceRecords/rec1/transcripts", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"transcripts": []map[string]string{{"name": "conferenceRecords/rec1/transcripts/t1"}},
		})
	})
	mux.HandleFunc("/conferenceRecords/rec1/transcripts/t1/entries", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"transcriptEntries": []map[string]any{
				{
					"text":        "and that is the plan",
					"startTime":   start.Add(10 * time.Minute),
					"participant": map[string]any{"user": map[string]string{"displayName": "Advisor"}},
				},
				{
					"text":        "welcome everyone",
					"startTime":   start.Add(5 * time.Minute),
					"participant": map[string]any{"user": map[string]string{"displayName": "Advisor"}},
				},
			},
		})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	transcript, err := newTestClient(server.URL).Fetch(context.Background(), "https://meet.google.com/abc-defg-hij", start, end)
	require.NoError(t, err)

	assert.Equal(t, "conferenceRecords/rec1", transcript.ConferenceRecordID)
	assert.Equal(t, "[10:05:00] Advisor: welcome everyone\n[10:10:00] Advisor: and that is the plan", transcript.Text)
}

func TestFetchNoOverlappingRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"conferenceRecords": []any{}})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), "https://meet.google.com/abc-defg-hij", time.Now(), time.Now().Add(time.Hour))
	assert.ErrorIs(t, err, ErrRecordNotFound)
}

func TestFetchTranscriptNotReady(t *testing.T) {
	start := time.Now()
	end := start.Add(time.Hour)

	mux := http.NewServeMux()
	mux.HandleFunc("/conferenceRecords", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"conferenceRecords": []map[string]any{
				{"name": "conferenceRecords/rec1", "startTime": start, "endTime": end},
			},
		})
	})
	mux.HandleFunc("/conferenceRecords/rec1/transcripts", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"transcripts": []any{}})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), "abc-defg-hij", start, end)
	assert.ErrorIs(t, err, ErrTranscriptNotReady)
}

func TestFetchAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), "abc-defg-hij", time.Now(), time.Now().Add(time.Hour))
	assert.Error(t, err)
}
