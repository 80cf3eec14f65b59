// Package meet retrieves conference transcripts from the Google Meet REST
// API (v2): conference record lookup by meeting code, then transcript
// entries joined into a readable text.
package meet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

var (
	// ErrRecordNotFound means no conference record overlaps the meeting
	// window; the meeting may not have happened yet.
	ErrRecordNotFound = errors.New("conference record not found")
	// ErrTranscriptNotReady means the record exists but Meet has not
	// produced a transcript yet.
	ErrTranscriptNotReady = errors.New("transcript not available")
)

// Transcript is a fetched conference transcript.
type Transcript struct {
	Text               string
	ConferenceRecordID string
}

// TranscriptFetcher retrieves the transcript for a meeting.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, meetLink string, start, end time.Time) (Transcript, error)
}

// TokenSource supplies a bearer token for the Meet API.
type TokenSource func(ctx context.Context) (string, error)

// Client is an HTTP TranscriptFetcher.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

// NewClient creates a Meet API client.
func NewClient(tokens TokenSource) *Client {
	return &Client{
		baseURL:    "https://meet.googleapis.com/v2",
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type conferenceRecord struct {
	Name      string    `json:"name"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type transcriptEntry struct {
	Text        string    `json:"text"`
	StartTime   time.Time `json:"startTime"`
	Participant struct {
		User struct {
			DisplayName string `json:"displayName"`
		} `json:"user"`
	} `json:"participant"`
}

// Fetch resolves the meeting code from the link, locates the overlapping
// conference record and joins its transcript entries.
func (c *Client) Fetch(ctx context.Context, meetLink string, start, end time.Time) (Transcript, error) {
	code := meetCodeFromLink(meetLink)

	recordID, err := c.findConferenceRecord(ctx, code, start, end)
	if err != nil {
		return Transcript{}, err
	}

	text, err := c.transcriptText(ctx, recordID)
	if err != nil {
		return Transcript{}, err
	}

	return Transcript{Text: text, ConferenceRecordID: recordID}, nil
}

func meetCodeFromLink(link string) string {
	parts := strings.Split(strings.TrimRight(link, "/"), "/")
	return parts[len(parts)-1]
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	token, err := c.tokens(ctx)
	if err != nil {
		return fmt.Errorf("meet token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build meet request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("meet api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("meet api returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode meet response: %w", err)
	}
	return nil
}

func (c *Client) findConferenceRecord(ctx context.Context, code string, start, end time.Time) (string, error) {
	filter := fmt.Sprintf(`space.meeting_code=%q`, code)
	var listed struct {
		ConferenceRecords []conferenceRecord `json:"conferenceRecords"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/conferenceRecords?filter="+url.QueryEscape(filter), &listed); err != nil {
		return "", err
	}

	for _, rec := range listed.ConferenceRecords {
		if !rec.StartTime.After(end) && !rec.EndTime.Before(start) {
			return rec.Name, nil
		}
	}
	return "", ErrRecordNotFound
}

func (c *Client) transcriptText(ctx context.Context, recordID string) (string, error) {
	var transcripts struct {
		Transcripts []struct {
			Name string `json:"name"`
		} `json:"transcripts"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/%s/transcripts", c.baseURL, recordID), &transcripts); err != nil {
		return "", err
	}
	if len(transcripts.Transcripts) == 0 {
		return "", ErrTranscriptNotReady
	}

	var entries struct {
		TranscriptEntries []transcriptEntry `json:"transcriptEntries"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("%s/%s/entries", c.baseURL, transcripts.Transcripts[0].Name), &entries); err != nil {
		return "", err
	}
	if len(entries.TranscriptEntries) == 0 {
		return "", ErrTranscriptNotReady
	}

	sorted := entries.TranscriptEntries
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartTime.Before(sorted[j].StartTime) })

	lines := make([]string, 0, len(sorted))
	for _, entry := range sorted {
		speaker := entry.Participant.User.DisplayName
		if speaker == "" {
			speaker = "Unknown"
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", entry.StartTime.Format("15:04:05"), speaker, entry.Text))
	}
	return strings.Join(lines, "\n"), nil
}
